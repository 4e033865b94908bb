package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"anpr-crossing/internal/model"
)

type staticParser map[string]model.Principal

func (p staticParser) Parse(token string) (model.Principal, error) {
	principal, ok := p[token]
	if !ok {
		return model.Principal{}, errors.New("unknown token")
	}
	return principal, nil
}

func TestAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := model.Principal{UserID: uuid.New(), Role: model.UserRoleViewer}

	r := gin.New()
	r.GET("/private", Auth(staticParser{"good": user}), func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, p.UserID.String())
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.status == http.StatusOK && w.Body.String() != user.UserID.String() {
				t.Errorf("body = %q, want user id", w.Body.String())
			}
		})
	}
}
