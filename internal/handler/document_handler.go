package handler

import (
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/pkg/errcode"
	"github.com/docvault/docvault/internal/pkg/response"
	"github.com/docvault/docvault/internal/service"
)

type DocumentHandler struct {
	documents *service.DocumentService
}

func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

func readFormFile(file *multipart.FileHeader) (*service.FileInput, error) {
	opened, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer opened.Close()
	data, err := io.ReadAll(opened)
	if err != nil {
		return nil, err
	}
	contentType := file.Header.Get("Content-Type")
	return &service.FileInput{
		Name: file.Filename,
		Type: contentType,
		Size: file.Size,
		Data: data,
	}, nil
}

func (h *DocumentHandler) Create(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "file is required")
		return
	}
	input, err := readFormFile(file)
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to read file")
		return
	}
	doc, err := h.documents.Create(c.Request.Context(), getUserID(c), service.DocumentCreateInput{
		Title:       c.PostForm("title"),
		Category:    c.PostForm("category"),
		Description: c.PostForm("description"),
		File:        input,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"document": doc})
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context(), getUserID(c), c.Query("category"), c.Query("search"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"count": len(docs), "items": docs})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"document": doc})
}

func (h *DocumentHandler) Update(c *gin.Context) {
	input := service.DocumentUpdateInput{
		Title:    c.PostForm("title"),
		Category: c.PostForm("category"),
	}
	if value, ok := c.GetPostForm("description"); ok {
		input.Description = &value
	}
	if file, err := c.FormFile("file"); err == nil {
		fileInput, err := readFormFile(file)
		if err != nil {
			response.Error(c, errcode.ErrInvalidFile, "failed to read file")
			return
		}
		input.File = fileInput
	}
	doc, err := h.documents.Update(c.Request.Context(), getUserID(c), c.Param("id"), input)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"document": doc})
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}
