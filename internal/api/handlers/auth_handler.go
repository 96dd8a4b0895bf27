package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eureka-edu/studybuddy/internal/models"
	"github.com/eureka-edu/studybuddy/internal/services"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

type AuthHandler struct {
	users services.UserService
}

func NewAuthHandler(users services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role"` // STUDENT|TEACHER; empty defaults to STUDENT
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.Register", "invalid request body", err))
		return
	}

	// Admin accounts are provisioned out of band.
	role := models.UserRole(req.Role)
	if role == models.RoleAdmin {
		writeError(c, utils.E(utils.CodeForbidden, "AuthHandler.Register", "cannot self-register as admin", nil))
		return
	}

	u, err := h.users.Register(c.Request.Context(), req.FirstName, req.LastName, req.Email, req.Password, role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.Login", "invalid request body", err))
		return
	}

	u, tok, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Token: tok, User: u})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	u, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
