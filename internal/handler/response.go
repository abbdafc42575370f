package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/pagination"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

const (
	MsgNotFound    = "Not found."
	MsgInvalidPage = "Invalid page."
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Error: message}
}

// RespondError writes err as a JSON error body. Errors outside the application taxonomy
// become 500s whose details are logged and never sent to the client.
func RespondError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.NewInternal(err)
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		log.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}

	_ = c.Error(err)

	message := appErr.Message
	if appErr.Kind == apperrors.KindNotFound {
		message = MsgNotFound
	}
	c.AbortWithStatusJSON(status, &ErrorResponse{
		Error:     message,
		Fields:    appErr.Fields,
		Retryable: appErr.Retryable,
	})
}

// BindJSON decodes the request body into obj and writes a 400 on failure.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if fields, ok := validator.FieldErrors(err); ok {
			RespondError(c, apperrors.NewFieldValidation(fields))
			return false
		}
		RespondError(c, apperrors.NewValidation(err.Error(), err))
		return false
	}
	return true
}

// ParseID reads the :id path parameter. A malformed id is reported as not found.
func ParseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apperrors.NewNotFound("resource", err))
		return uuid.Nil, false
	}
	return id, true
}

// Paginate serves one page of a list. An unparsable page number or one past the last
// page is answered with 404.
func Paginate[T any](c *gin.Context, pageSize int, list func(limit, offset int) (*model.Page[T], error)) {
	params, ok := pagination.FromContext(c, pageSize)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, NewErrorResponse(MsgInvalidPage))
		return
	}

	page, err := list(params.Limit(), params.Offset())
	if err != nil {
		RespondError(c, err)
		return
	}
	if !params.InRange(page.Total) {
		c.AbortWithStatusJSON(http.StatusNotFound, NewErrorResponse(MsgInvalidPage))
		return
	}

	c.JSON(http.StatusOK, pagination.NewResponse(c, page.Items, page.Total, params))
}
