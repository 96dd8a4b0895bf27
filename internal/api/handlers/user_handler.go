package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eureka-edu/studybuddy/internal/models"
	"github.com/eureka-edu/studybuddy/internal/services"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

// UserHandler serves the admin user-management surface.
type UserHandler struct {
	users services.UserService
}

func NewUserHandler(users services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(c *gin.Context) {
	rows, err := h.users.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *UserHandler) SetActive(c *gin.Context) {
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "UserHandler.SetActive", "invalid request body", err))
		return
	}

	if err := h.users.SetActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *UserHandler) SetRole(c *gin.Context) {
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "UserHandler.SetRole", "invalid request body", err))
		return
	}

	if err := h.users.SetRole(c.Request.Context(), c.Param("id"), models.UserRole(req.Role)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type SetModeAccessRequest struct {
	ModeAccess string `json:"mode_access" binding:"required"`
}

func (h *UserHandler) SetModeAccess(c *gin.Context) {
	var req SetModeAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "UserHandler.SetModeAccess", "invalid request body", err))
		return
	}

	if err := h.users.SetModeAccess(c.Request.Context(), c.Param("id"), models.ModeAccess(req.ModeAccess)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
