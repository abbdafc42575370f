package consultation

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
	consultationService "github.com/jwalitptl/clinic-api/internal/service/consultation"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

type Handler struct {
	service  consultationService.ConsultationServicer
	pageSize int
}

func NewHandler(service consultationService.ConsultationServicer, pageSize int) *Handler {
	return &Handler{service: service, pageSize: pageSize}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	consultations := r.Group("/consultations", middleware...)
	{
		consultations.GET("/", h.ListConsultations)
		consultations.POST("/", h.CreateConsultation)
		consultations.GET("/:id/", h.GetConsultation)
		consultations.PUT("/:id/", h.UpdateConsultation)
		consultations.PATCH("/:id/", h.PatchConsultation)
		consultations.DELETE("/:id/", h.DeleteConsultation)
		consultations.POST("/:id/change_status/", h.ChangeStatus)
	}
}

func (h *Handler) CreateConsultation(c *gin.Context) {
	var req model.ConsultationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	consultation, err := h.service.CreateConsultation(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, consultation)
}

func (h *Handler) GetConsultation(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	consultation, err := h.service.GetConsultation(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, consultation)
}

func (h *Handler) UpdateConsultation(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	var req model.ConsultationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	consultation, err := h.service.UpdateConsultation(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, consultation)
}

func (h *Handler) PatchConsultation(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	var req model.PatchConsultationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	consultation, err := h.service.PatchConsultation(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, consultation)
}

func (h *Handler) DeleteConsultation(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteConsultation(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	// a missing or malformed body is treated as an empty status
	var req model.ChangeStatusRequest
	_ = c.ShouldBindJSON(&req)

	if _, err := h.service.ChangeStatus(c.Request.Context(), id, req.Status); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Status updated"})
}

func (h *Handler) ListConsultations(c *gin.Context) {
	query, err := parseQuery(c)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.Paginate(c, h.pageSize, func(limit, offset int) (*model.Page[*model.Consultation], error) {
		query.Limit = limit
		query.Offset = offset
		return h.service.ListConsultations(c.Request.Context(), query)
	})
}

// parseQuery reads the list filters. Empty values are ignored; unknown ordering keys
// are dropped and the default applies when none remain.
func parseQuery(c *gin.Context) (*model.ConsultationQuery, error) {
	q := &model.ConsultationQuery{Ordering: model.DefaultConsultationOrdering}
	fields := map[string]string{}

	if v := c.Query("status"); v != "" {
		status := model.ConsultationStatus(v)
		if status.Valid() {
			q.Status = &status
		} else {
			fields["status"] = fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", v)
		}
	}

	if v := c.Query("created_at"); v != "" {
		created, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			fields["created_at"] = "Enter a valid date/time."
		} else {
			q.CreatedAt = &created
		}
	}

	q.DoctorLastName = firstQuery(c, "doctor__last_name", "doctor__user__last_name")
	q.PatientLastName = firstQuery(c, "patient__last_name", "patient__user__last_name")

	q.Search = c.Query("search")
	if v := c.Query("search_type"); v != "" {
		scope := model.SearchScope(v)
		if scope == model.SearchScopeAll || !scope.Valid() {
			fields["search_type"] = fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", v)
		} else {
			q.SearchScope = scope
		}
	}

	if v := c.Query("ordering"); v != "" {
		q.Ordering = model.NormalizeConsultationOrdering(v)
	}

	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidation(fields)
	}
	return q, nil
}

func firstQuery(c *gin.Context, keys ...string) *string {
	for _, k := range keys {
		if v := c.Query(k); v != "" {
			return &v
		}
	}
	return nil
}
