package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zots0127/filehub/internal/domain/entities"
	"github.com/zots0127/filehub/internal/usecase"
)

// FileHandler exposes the deduplicating file store over HTTP.
type FileHandler struct {
	dedup  *usecase.DedupUseCase
	apiKey string
}

// NewFileHandler creates a new file handler. An empty apiKey disables
// authentication.
func NewFileHandler(dedup *usecase.DedupUseCase, apiKey string) *FileHandler {
	return &FileHandler{
		dedup:  dedup,
		apiKey: apiKey,
	}
}

// RegisterRoutes registers all file store routes.
func (h *FileHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.getHealth)

	api := router.Group("/api")
	if h.apiKey != "" {
		api.Use(h.authMiddleware())
	}

	api.POST("/files", h.uploadFile)
	api.GET("/files", h.listFiles)
	api.GET("/files/:id", h.getFile)
	api.GET("/files/:id/download", h.downloadFile)
	api.GET("/files/:id/references", h.listFileReferences)
	api.DELETE("/files/:id", h.deleteFile)
	api.GET("/references", h.listReferences)
	api.DELETE("/references/:id", h.deleteReference)
	api.GET("/stats", h.getStats)
}

func (h *FileHandler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-API-Key") != h.apiKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (h *FileHandler) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *FileHandler) uploadFile(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	result, err := h.dedup.Upload(c.Request.Context(), file, header.Filename, contentType, header.Size)
	if err != nil {
		h.writeError(c, err)
		return
	}

	switch result.Type {
	case entities.UploadTypeReference:
		c.JSON(http.StatusCreated, gin.H{
			"message": fmt.Sprintf("File content already exists as %s. Created a reference instead.",
				result.File.OriginalFilename),
			"type":      result.Type,
			"reference": result.Reference,
			"file":      result.File,
		})
	default:
		c.JSON(http.StatusCreated, gin.H{
			"message": "File uploaded successfully",
			"type":    result.Type,
			"file":    result.File,
		})
	}
}

func (h *FileHandler) listFiles(c *gin.Context) {
	filter, err := parseFileFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	files, err := h.dedup.ListFiles(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if files == nil {
		files = []*entities.File{}
	}

	c.JSON(http.StatusOK, gin.H{"count": len(files), "results": files})
}

func (h *FileHandler) getFile(c *gin.Context) {
	file, err := h.dedup.GetFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

func (h *FileHandler) downloadFile(c *gin.Context) {
	file, rc, err := h.dedup.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", file.FileType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.OriginalFilename))
	c.Header("Content-Length", strconv.FormatInt(file.Size, 10))
	if _, err := io.Copy(c.Writer, rc); err != nil {
		c.Abort()
	}
}

func (h *FileHandler) deleteFile(c *gin.Context) {
	if err := h.dedup.DeleteFile(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FileHandler) listFileReferences(c *gin.Context) {
	h.writeReferences(c, c.Param("id"))
}

func (h *FileHandler) listReferences(c *gin.Context) {
	h.writeReferences(c, c.Query("original_file"))
}

func (h *FileHandler) writeReferences(c *gin.Context, fileID string) {
	refs, err := h.dedup.ListReferences(c.Request.Context(), fileID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if refs == nil {
		refs = []*entities.FileReference{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(refs), "results": refs})
}

func (h *FileHandler) deleteReference(c *gin.Context) {
	if err := h.dedup.DeleteReference(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FileHandler) getStats(c *gin.Context) {
	stats, err := h.dedup.Stats(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// writeError maps domain failures to HTTP statuses. Internal detail is
// only exposed in debug mode.
func (h *FileHandler) writeError(c *gin.Context, err error) {
	var dup *entities.DuplicateNameError
	var refs *entities.ReferenceExistsError

	switch {
	case errors.Is(err, entities.ErrEmptyFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Duplicate file",
			"message": fmt.Sprintf("This file appears to be identical to %s", dup.ExistingFile),
		})
	case errors.As(err, &refs):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Cannot delete",
			"message": fmt.Sprintf("This file has %d references. Delete the references first.", refs.References),
		})
	case errors.Is(err, entities.ErrFileNotFound), errors.Is(err, entities.ErrReferenceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "message": err.Error()})
	default:
		message := "An unexpected error occurred. Please try again."
		if gin.Mode() == gin.DebugMode {
			message = err.Error()
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error", "message": message})
	}
}

func parseFileFilter(c *gin.Context) (*entities.FileFilter, error) {
	filter := &entities.FileFilter{
		Filename: c.Query("filename"),
		FileType: c.Query("file_type"),
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
	}

	if v := c.Query("min_size"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid min_size: %s", v)
		}
		filter.MinSize = &n
	}
	if v := c.Query("max_size"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid max_size: %s", v)
		}
		filter.MaxSize = &n
	}
	if v := c.Query("uploaded_after"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("invalid uploaded_after date: %s", v)
		}
		filter.UploadedAfter = &t
	}
	if v := c.Query("uploaded_before"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("invalid uploaded_before date: %s", v)
		}
		filter.UploadedBefore = &t
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid limit: %s", v)
		}
		filter.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid offset: %s", v)
		}
		filter.Offset = n
	}

	return filter, nil
}
