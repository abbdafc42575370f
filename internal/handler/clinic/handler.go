package clinic

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
	clinicService "github.com/jwalitptl/clinic-api/internal/service/clinic"
)

type Handler struct {
	service  clinicService.ClinicServicer
	pageSize int
}

func NewHandler(service clinicService.ClinicServicer, pageSize int) *Handler {
	return &Handler{service: service, pageSize: pageSize}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	clinics := r.Group("/clinics", middleware...)
	{
		clinics.GET("/", h.ListClinics)
		clinics.POST("/", h.CreateClinic)
		clinics.GET("/:id/", h.GetClinic)
		clinics.PUT("/:id/", h.UpdateClinic)
		clinics.PATCH("/:id/", h.PatchClinic)
		clinics.DELETE("/:id/", h.DeleteClinic)
	}
}

func (h *Handler) CreateClinic(c *gin.Context) {
	var req model.ClinicRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	clinic, err := h.service.CreateClinic(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, clinic)
}

func (h *Handler) GetClinic(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	clinic, err := h.service.GetClinic(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, clinic)
}

func (h *Handler) UpdateClinic(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	var req model.ClinicRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	clinic, err := h.service.UpdateClinic(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, clinic)
}

func (h *Handler) PatchClinic(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	var req model.PatchClinicRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	clinic, err := h.service.PatchClinic(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, clinic)
}

func (h *Handler) DeleteClinic(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteClinic(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListClinics(c *gin.Context) {
	handler.Paginate(c, h.pageSize, func(limit, offset int) (*model.Page[*model.Clinic], error) {
		return h.service.ListClinics(c.Request.Context(), limit, offset)
	})
}
