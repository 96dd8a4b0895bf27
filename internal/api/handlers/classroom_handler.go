package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eureka-edu/studybuddy/internal/services"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

type ClassroomHandler struct {
	svc services.ClassroomService
}

func NewClassroomHandler(svc services.ClassroomService) *ClassroomHandler {
	return &ClassroomHandler{svc: svc}
}

type CreateClassroomRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *ClassroomHandler) Create(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ClassroomHandler.Create", "invalid request body", err))
		return
	}

	room, err := h.svc.Create(c.Request.Context(), teacherID, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (h *ClassroomHandler) List(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}

	rows, err := h.svc.ListByTeacher(c.Request.Context(), teacherID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *ClassroomHandler) Get(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}

	room, err := h.svc.Get(c.Request.Context(), teacherID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

type UpdateRosterRequest struct {
	StudentIDs []string `json:"student_ids" binding:"required"`
}

func (h *ClassroomHandler) UpdateRoster(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ClassroomHandler.UpdateRoster", "invalid request body", err))
		return
	}

	if err := h.svc.UpdateRoster(c.Request.Context(), teacherID, c.Param("id"), req.StudentIDs); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type RenameClassroomRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *ClassroomHandler) Rename(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req RenameClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ClassroomHandler.Rename", "invalid request body", err))
		return
	}

	if err := h.svc.Rename(c.Request.Context(), teacherID, c.Param("id"), req.Name); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ClassroomHandler) Delete(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), teacherID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type AssignDocumentRequest struct {
	DocumentID string `json:"document_id" binding:"required"`
}

type AssignDocumentResponse struct {
	Assigned int `json:"assigned"`
}

func (h *ClassroomHandler) AssignDocument(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AssignDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ClassroomHandler.AssignDocument", "invalid request body", err))
		return
	}

	n, err := h.svc.AssignDocument(c.Request.Context(), teacherID, c.Param("id"), req.DocumentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, AssignDocumentResponse{Assigned: n})
}
