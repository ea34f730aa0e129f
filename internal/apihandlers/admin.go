package apihandlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReloadTaxonomyHandler rebuilds the taxonomy from its source. A broken
// artifact is reported and the current graph keeps serving.
func (h *APIHandler) ReloadTaxonomyHandler(c *gin.Context) {
	outcome, err := h.App.ReloadService.Reload(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *APIHandler) EnqueueAuditHandler(c *gin.Context) {
	var req AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	audit, err := h.App.AuditService.Enqueue(c.Request.Context(), req.Categories)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, audit)
}

func (h *APIHandler) GetAuditHandler(c *gin.Context) {
	audit, err := h.App.AuditService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, audit)
}
