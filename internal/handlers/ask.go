package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/genegraph/genegraph-backend/internal/agent"
	"github.com/genegraph/genegraph-backend/internal/platform/logger"
)

type AskHandler struct {
	log   *logger.Logger
	agent *agent.Router
}

func NewAskHandler(log *logger.Logger, router *agent.Router) *AskHandler {
	return &AskHandler{log: log.With("handler", "Ask"), agent: router}
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

type askResponse struct {
	Question string       `json:"question"`
	Answer   agent.Answer `json:"answer"`
}

func (h *AskHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	answer, err := h.agent.Ask(c.Request.Context(), req.Question)
	if err != nil {
		var routingErr *agent.RoutingError
		if errors.As(err, &routingErr) {
			RespondError(c, http.StatusUnprocessableEntity, "no_tool", err)
			return
		}
		h.log.Error("question failed", "question", req.Question, "error", err)
		RespondError(c, http.StatusInternalServerError, "agent_failure", err)
		return
	}
	RespondOK(c, askResponse{Question: req.Question, Answer: answer})
}
