package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"anpr-crossing/internal/http/middleware"
	"anpr-crossing/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RecordService interface {
	FindPlates(ctx context.Context, plateQuery string) ([]service.PlateInfo, error)
	FindReads(ctx context.Context, q service.ReadQuery) ([]service.ReadInfo, error)
	ExportReads(ctx context.Context, q service.ReadQuery) ([]byte, error)
	SyncVehicleToWhitelist(ctx context.Context, plateNumber string) (uuid.UUID, error)
}

// CrossingCounter exposes the running number of distinct tracks that entered the zone.
type CrossingCounter interface {
	Count() int
}

type Handler struct {
	records  RecordService
	counter  CrossingCounter
	cameraID string
	log      zerolog.Logger
}

func NewHandler(records RecordService, counter CrossingCounter, cameraID string, log zerolog.Logger) *Handler {
	return &Handler{
		records:  records,
		counter:  counter,
		cameraID: cameraID,
		log:      log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	public := r.Group("/api/v1")
	{
		public.GET("/crossings", h.getCrossings)
		public.GET("/plates", h.listPlates)
		public.GET("/reads", h.listReads)
	}

	protected := r.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.GET("/reads/export", h.exportReads)
		protected.POST("/lists/whitelist", h.syncVehicleToWhitelist)
	}
}

func (h *Handler) getCrossings(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse(gin.H{
		"camera_id": h.cameraID,
		"count":     h.counter.Count(),
	}))
}

func (h *Handler) listPlates(c *gin.Context) {
	plateQuery := strings.TrimSpace(c.Query("plate"))
	if plateQuery == "" {
		c.JSON(http.StatusBadRequest, errorResponse("plate parameter is required"))
		return
	}

	plates, err := h.records.FindPlates(c.Request.Context(), plateQuery)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(plates))
}

func (h *Handler) listReads(c *gin.Context) {
	reads, err := h.records.FindReads(c.Request.Context(), readQuery(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(reads))
}

func (h *Handler) exportReads(c *gin.Context) {
	data, err := h.records.ExportReads(c.Request.Context(), readQuery(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	if p, ok := middleware.GetPrincipal(c); ok {
		h.log.Info().Str("user_id", p.UserID.String()).Int("bytes", len(data)).Msg("plate reads exported")
	}

	filename := fmt.Sprintf("plate-reads-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *Handler) syncVehicleToWhitelist(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || !principal.CanManageLists() {
		c.JSON(http.StatusForbidden, errorResponse("not allowed to manage lists"))
		return
	}

	var req struct {
		PlateNumber string `json:"plate_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	plateID, err := h.records.SyncVehicleToWhitelist(c.Request.Context(), req.PlateNumber)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"plate_id":     plateID.String(),
		"plate_number": req.PlateNumber,
		"message":      "vehicle added to whitelist",
	})
}

func readQuery(c *gin.Context) service.ReadQuery {
	var q service.ReadQuery
	if plate := strings.TrimSpace(c.Query("plate")); plate != "" {
		q.Plate = &plate
	}
	if f := strings.TrimSpace(c.Query("from")); f != "" {
		q.From = &f
	}
	if t := strings.TrimSpace(c.Query("to")); t != "" {
		q.To = &t
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil {
		q.Limit = l
	}
	if o, err := strconv.Atoi(c.Query("offset")); err == nil {
		q.Offset = o
	}
	return q
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
