package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"anpr-crossing/internal/model"
)

func validClaims() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
}

func TestParseRoundTrip(t *testing.T) {
	p := NewParser("secret")
	want := model.Principal{UserID: uuid.New(), OrgID: uuid.New(), Role: model.UserRoleOperator}

	token, err := p.Issue(want, validClaims())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	got, err := p.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got != want {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseRejects(t *testing.T) {
	p := NewParser("secret")
	principal := model.Principal{UserID: uuid.New(), Role: model.UserRoleAdmin}

	expired, _ := p.Issue(principal, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))})
	noExpiry, _ := p.Issue(principal, jwt.RegisteredClaims{})
	otherKey, _ := NewParser("other").Issue(principal, validClaims())
	badRole, _ := p.Issue(model.Principal{UserID: uuid.New(), Role: "DRIVER"}, validClaims())

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", expired},
		{"missing expiry", noExpiry},
		{"wrong key", otherKey},
		{"unknown role", badRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
