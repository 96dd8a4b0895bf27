package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/eureka-edu/studybuddy/internal/api/handlers"
	"github.com/eureka-edu/studybuddy/internal/api/middleware"
)

type Deps struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Classroom    *handlers.ClassroomHandler
	Document     *handlers.DocumentHandler
	Session      *handlers.SessionHandler
	Conversation *handlers.ConversationHandler
	ChatWS       *handlers.ChatWSHandler
	VoiceWS      *handlers.VoiceWSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.POST("/auth/register", d.Auth.Register)
	r.POST("/auth/login", d.Auth.Login)

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.GET("/auth/me", d.Auth.Me)

	auth.POST("/documents", d.Document.Upload)
	auth.GET("/documents", d.Document.List)
	auth.PUT("/documents/:id/select", d.Document.Select)
	auth.PUT("/documents/:id/rename", d.Document.Rename)
	auth.DELETE("/documents/:id", d.Document.Delete)

	auth.POST("/session/start", d.Session.Start)
	auth.GET("/sessions", d.Session.List)
	auth.GET("/session/:session_id", d.Session.Get)
	auth.POST("/session/:session_id/end", d.Session.End)
	auth.GET("/session/:session_id/turns", d.Session.Turns)

	auth.GET("/conversation/:session_id", d.Conversation.ListBySession)

	// WebSocket
	auth.GET("/ws/chat/:session_id", d.ChatWS.SessionWS)
	auth.GET("/ws/voice/:session_id", d.VoiceWS.SessionWS)

	// Teacher surface
	teacher := auth.Group("/classrooms")
	teacher.Use(middleware.RequireTeacher())

	teacher.POST("", d.Classroom.Create)
	teacher.GET("", d.Classroom.List)
	teacher.GET("/:id", d.Classroom.Get)
	teacher.PUT("/:id/roster", d.Classroom.UpdateRoster)
	teacher.PUT("/:id/rename", d.Classroom.Rename)
	teacher.DELETE("/:id", d.Classroom.Delete)
	teacher.POST("/:id/assign", d.Classroom.AssignDocument)

	// Admin surface
	admin := auth.Group("/admin")
	admin.Use(middleware.RequireAdmin())

	admin.GET("/users", d.User.List)
	admin.PUT("/users/:id/active", d.User.SetActive)
	admin.PUT("/users/:id/role", d.User.SetRole)
	admin.PUT("/users/:id/mode", d.User.SetModeAccess)
}
