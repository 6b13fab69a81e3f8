package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yukoval-Dakia/stone/internal/config"
	"github.com/Yukoval-Dakia/stone/internal/domain"
	"github.com/Yukoval-Dakia/stone/internal/service"
)

type Handler struct {
	scientists service.ScientistService
	content    service.ContentService
	cfg        *config.AppConfig
	log        *zap.Logger
}

func NewHandler(scientists service.ScientistService, content service.ContentService, cfg *config.AppConfig, log *zap.Logger) *Handler {
	return &Handler{
		scientists: scientists,
		content:    content,
		cfg:        cfg,
		log:        log,
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (h *Handler) ListScientists(c *gin.Context) {
	views, err := h.scientists.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) GetScientist(c *gin.Context) {
	view, err := h.scientists.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) CreateScientist(c *gin.Context) {
	upload, err := h.readUpload(c, true)
	if err != nil {
		h.respondError(c, err)
		return
	}

	input := service.CreateScientistInput{
		Name:         c.PostForm("name"),
		Subject:      c.PostForm("subject"),
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Achievements: c.PostForm("achievements"),
		BirthYear:    c.PostForm("birthYear"),
		DeathYear:    c.PostForm("deathYear"),
		Color:        c.PostForm("color"),
	}

	view, err := h.scientists.Create(c.Request.Context(), input, upload)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) UpdateScientist(c *gin.Context) {
	upload, err := h.readUpload(c, false)
	if err != nil {
		h.respondError(c, err)
		return
	}

	values := h.formValues(c)
	upd := domain.ScientistUpdate{
		Name:         formField(values, "name"),
		Subject:      formField(values, "subject"),
		Title:        formField(values, "title"),
		Description:  formField(values, "description"),
		Achievements: formField(values, "achievements"),
		BirthYear:    formField(values, "birthYear"),
		DeathYear:    formField(values, "deathYear"),
		Color:        formField(values, "color"),
	}

	view, err := h.scientists.Update(c.Request.Context(), c.Param("id"), upd, upload)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) DeleteScientist(c *gin.Context) {
	if err := h.scientists.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "scientist deleted"})
}

func (h *Handler) GetPageBySlug(c *gin.Context) {
	page, err := h.content.PageBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.content.RecentPosts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *Handler) GetPost(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post id must be a number"})
		return
	}
	post, err := h.content.PostByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// readUpload pulls the image file off the multipart form and enforces the
// size and extension limits before anything reaches the service.
func (h *Handler) readUpload(c *gin.Context, required bool) (*service.FileUpload, error) {
	file, err := c.FormFile("image")
	if err != nil {
		if required {
			return nil, fmt.Errorf("image file is required: %w", domain.ErrValidation)
		}
		return nil, nil
	}

	if file.Size > h.cfg.MaxUploadSize {
		return nil, fmt.Errorf("image exceeds the upload size limit: %w", domain.ErrValidation)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !h.allowedFormat(ext) {
		return nil, fmt.Errorf("unsupported image format %q: %w", ext, domain.ErrValidation)
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeForExt(ext)
	}

	return &service.FileUpload{
		Data:        data,
		Filename:    file.Filename,
		ContentType: contentType,
	}, nil
}

func (h *Handler) allowedFormat(ext string) bool {
	for _, allowed := range h.cfg.AllowedFormats {
		if ext == allowed {
			return true
		}
	}
	return false
}

func contentTypeForExt(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

// formValues reads the body fields whether the client sent
// multipart/form-data or a plain urlencoded form.
func (h *Handler) formValues(c *gin.Context) url.Values {
	if form, err := c.MultipartForm(); err == nil {
		return url.Values(form.Value)
	}
	_ = c.Request.ParseForm()
	return c.Request.PostForm
}

// formField distinguishes "field absent" (nil, leave unchanged) from "field
// present but empty".
func formField(values url.Values, name string) *string {
	if vs, ok := values[name]; ok && len(vs) > 0 {
		return &vs[0]
	}
	return nil
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var upstream *domain.UpstreamError
	switch {
	case errors.As(err, &upstream):
		h.log.Error("Upstream content API failed",
			zap.Int("upstream_status", upstream.Status),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":           "upstream content API failed",
			"upstream_status": upstream.Status,
			"upstream_body":   upstream.Body,
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
