package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eureka-edu/studybuddy/internal/services"
)

type ConversationHandler struct {
	svc services.ConversationService
}

func NewConversationHandler(svc services.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

func (h *ConversationHandler) ListBySession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := h.svc.ListBySession(c.Request.Context(), userID, c.Param("session_id"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
