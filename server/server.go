package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"

	"auto_blog_publisher/pipeline"
	"auto_blog_publisher/publisher"
)

const (
	// generateTimeout bounds one pipeline run: up to 20 threads, two model
	// calls each.
	generateTimeout = 10 * time.Minute
	publishTimeout  = 2 * time.Minute
)

// Server exposes the pipeline and the staging area as a JSON API for the
// dashboard frontend.
type Server struct {
	runner  *pipeline.Runner
	staging *publisher.Staging
	pub     *publisher.Publisher
	log     zerolog.Logger
	md      goldmark.Markdown
}

// New creates a Server. pub may be nil when no remote store is configured;
// publish requests then fail with 503.
func New(runner *pipeline.Runner, staging *publisher.Staging, pub *publisher.Publisher, log zerolog.Logger) (*Server, error) {
	if runner == nil {
		return nil, errors.New("pipeline runner is required")
	}
	if staging == nil {
		return nil, errors.New("staging is required")
	}
	return &Server{
		runner:  runner,
		staging: staging,
		pub:     pub,
		log:     log.With().Str("component", "server").Logger(),
		md:      goldmark.New(),
	}, nil
}

// Routes creates and configures the gin router.
func (s *Server) Routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(s.recoveryMiddleware())
	router.Use(s.loggingMiddleware())

	router.GET("/health", s.health)

	api := router.Group("/api")
	{
		api.POST("/generate", s.generate)
		api.GET("/posts", s.listPosts)
		api.GET("/posts/:id/preview", s.previewPost)
		api.POST("/posts/:id/image", s.uploadImage)
		api.POST("/posts/:id/publish", s.publishPost)
		api.POST("/posts/:id/archive", s.archivePost)
		api.DELETE("/posts/:id", s.deletePost)
		api.DELETE("/temp", s.clearTemp)
	}
	return router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "auto_blog_publisher",
	})
}

type generateReq struct {
	Subreddit string `json:"subreddit"`
	Query     string `json:"query"`
}

// POST /api/generate — run the pipeline and stage every produced draft.
func (s *Server) generate(c *gin.Context) {
	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	if req.Subreddit == "" {
		req.Subreddit = "SkincareAddiction"
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), generateTimeout)
	defer cancel()

	posts, err := s.runner.Run(ctx, req.Subreddit, req.Query)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	drafts := make([]publisher.Draft, 0, len(posts))
	for _, post := range posts {
		id, err := s.staging.SaveDraft(post)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		drafts = append(drafts, publisher.Draft{ID: id, Post: post})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(drafts), "drafts": drafts})
}

// GET /api/posts — list staged drafts.
func (s *Server) listPosts(c *gin.Context) {
	drafts, err := s.staging.ListDrafts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if drafts == nil {
		drafts = []publisher.Draft{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(drafts), "drafts": drafts})
}

// GET /api/posts/:id/preview — render the draft body to HTML.
func (s *Server) previewPost(c *gin.Context) {
	post, err := s.staging.LoadDraft(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
		return
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(post.Body), &buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// POST /api/posts/:id/image — stage an image for a draft.
func (s *Server) uploadImage(c *gin.Context) {
	if _, err := s.staging.LoadDraft(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
		return
	}
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer file.Close()

	rel, err := s.staging.SaveImage(header.Filename, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"image": rel})
}

type publishReq struct {
	Image string `json:"image"`
}

// POST /api/posts/:id/publish — validate and commit a draft (and optional
// image) to the remote store.
func (s *Server) publishPost(c *gin.Context) {
	if s.pub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "remote content store is not configured"})
		return
	}
	post, err := s.staging.LoadDraft(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
		return
	}

	var req publishReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), publishTimeout)
	defer cancel()

	filename, err := s.pub.Publish(ctx, post, req.Image, time.Now())
	if err != nil {
		var validationErr *publisher.ValidationError
		var transportErr *publisher.TransportError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": validationErr.Reason,
				"field": validationErr.Field,
			})
		case errors.As(err, &transportErr):
			c.JSON(http.StatusBadGateway, gin.H{
				"error":  "remote store rejected the write",
				"file":   transportErr.Path,
				"status": transportErr.StatusCode,
				"detail": transportErr.Body,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": filename})
}

// POST /api/posts/:id/archive
func (s *Server) archivePost(c *gin.Context) {
	if err := s.staging.ArchiveDraft(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"archived": c.Param("id")})
}

// DELETE /api/posts/:id
func (s *Server) deletePost(c *gin.Context) {
	if err := s.staging.DeleteDraft(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// DELETE /api/temp — clear staged images and rendered posts.
func (s *Server) clearTemp(c *gin.Context) {
	if err := s.staging.Clear(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

func (s *Server) recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error().Interface("error", err).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		event := s.log.Info()
		if status >= 400 {
			event = s.log.Warn()
		}
		if status >= 500 {
			event = s.log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	}
}
