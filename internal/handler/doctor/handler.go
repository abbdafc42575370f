package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
	doctorService "github.com/jwalitptl/clinic-api/internal/service/doctor"
)

type Handler struct {
	service  doctorService.DoctorServicer
	pageSize int
}

func NewHandler(service doctorService.DoctorServicer, pageSize int) *Handler {
	return &Handler{service: service, pageSize: pageSize}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	doctors := r.Group("/doctors", middleware...)
	{
		doctors.GET("/", h.ListDoctors)
		doctors.POST("/", h.CreateDoctor)
		doctors.GET("/:id/", h.GetDoctor)
		doctors.PUT("/:id/", h.UpdateDoctor)
		doctors.DELETE("/:id/", h.DeleteDoctor)
	}
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req model.DoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	doctor, err := h.service.CreateDoctor(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, doctor)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	doctor, err := h.service.GetDoctor(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, doctor)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	var req model.DoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	doctor, err := h.service.UpdateDoctor(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, doctor)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteDoctor(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	handler.Paginate(c, h.pageSize, func(limit, offset int) (*model.Page[*model.Doctor], error) {
		return h.service.ListDoctors(c.Request.Context(), limit, offset)
	})
}
