package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eureka-edu/studybuddy/internal/services"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

type DocumentHandler struct {
	svc services.DocumentService
}

func NewDocumentHandler(svc services.DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "DocumentHandler.Upload", "file field is required", err))
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "DocumentHandler.Upload", "failed to open upload", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "DocumentHandler.Upload", "failed to read upload", err))
		return
	}

	doc, err := h.svc.Upload(c.Request.Context(), userID, fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rows, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

type SelectDocumentRequest struct {
	Selected *bool `json:"selected" binding:"required"`
}

func (h *DocumentHandler) Select(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SelectDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "DocumentHandler.Select", "invalid request body", err))
		return
	}

	if err := h.svc.ToggleSelect(c.Request.Context(), userID, c.Param("id"), *req.Selected); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type RenameDocumentRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *DocumentHandler) Rename(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req RenameDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "DocumentHandler.Rename", "invalid request body", err))
		return
	}

	if err := h.svc.Rename(c.Request.Context(), userID, c.Param("id"), req.Name); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
