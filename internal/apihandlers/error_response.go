package apihandlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"admatch/internal/models"
	"admatch/internal/store"
	"admatch/internal/taxonomy"
)

// APIError defines standard error response
// Example: { "error": { "code": "bad_request", "message": "limit must be positive" } }
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// JSONError sends a structured error response
func JSONError(ctx *gin.Context, status int, code, msg string) {
	ctx.JSON(status, errorResponse{Error: APIError{Code: code, Message: msg}})
}

// Convenience wrappers
func BadRequest(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusBadRequest, "bad_request", msg)
}

func NotFound(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusNotFound, "not_found", msg)
}

func Internal(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusInternalServerError, "internal_error", msg)
}

func Conflict(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusConflict, "conflict", msg)
}

func Unavailable(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusServiceUnavailable, "unavailable", msg)
}

func InvalidTaxonomy(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusUnprocessableEntity, "invalid_taxonomy", msg)
}

// RespondError maps a service error onto the matching error response.
func RespondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation), models.IsMalformed(err):
		BadRequest(ctx, err.Error())
	case errors.Is(err, models.ErrNotFound), errors.Is(err, store.ErrNotFound):
		NotFound(ctx, err.Error())
	case errors.Is(err, models.ErrInventoryUnavailable), errors.Is(err, models.ErrJobsUnavailable):
		Unavailable(ctx, err.Error())
	case errors.Is(err, store.ErrDuplicate):
		Conflict(ctx, err.Error())
	case errors.Is(err, taxonomy.ErrInvalidTaxonomy):
		InvalidTaxonomy(ctx, err.Error())
	default:
		log.WithField("path", ctx.FullPath()).WithError(err).Error("request failed")
		Internal(ctx, err.Error())
	}
}
