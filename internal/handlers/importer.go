package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/genegraph/genegraph-backend/internal/platform/logger"
	"github.com/genegraph/genegraph-backend/internal/services"
)

type ImportHandler struct {
	log *logger.Logger
	svc *services.ImportService
}

func NewImportHandler(log *logger.Logger, svc *services.ImportService) *ImportHandler {
	return &ImportHandler{log: log.With("handler", "Import"), svc: svc}
}

type importRequest struct {
	Files []string `json:"files" binding:"required,min=1"`
}

func (h *ImportHandler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	report, err := h.svc.Run(c.Request.Context(), req.Files)
	if err != nil {
		h.log.Error("import run failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "import_failure", err)
		return
	}
	RespondOK(c, report)
}
