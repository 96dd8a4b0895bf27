package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eureka-edu/studybuddy/internal/services"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

type SessionHandler struct {
	svc     services.SessionService
	buffers services.BufferService
}

func NewSessionHandler(svc services.SessionService, buffers services.BufferService) *SessionHandler {
	return &SessionHandler{svc: svc, buffers: buffers}
}

type StartSessionRequest struct {
	Mode     string `json:"mode" binding:"required"` // text|voice
	Language string `json:"language"`                // nl|en
}

func (h *SessionHandler) Start(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.Start", "invalid request body", err))
		return
	}

	sess, err := h.svc.Start(c.Request.Context(), userID, req.Mode, req.Language)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *SessionHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.svc.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if sess.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "SessionHandler.Get", "forbidden", nil))
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)
	rows, err := h.svc.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *SessionHandler) End(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	sess, err := h.svc.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if sess.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "SessionHandler.End", "forbidden", nil))
		return
	}

	ended, err := h.svc.End(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ended)
}

// Turns exposes the voice pipeline status rows for one session.
func (h *SessionHandler) Turns(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	sess, err := h.svc.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if sess.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "SessionHandler.Turns", "forbidden", nil))
		return
	}

	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)
	rows, err := h.buffers.ListBySession(c.Request.Context(), sessionID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
