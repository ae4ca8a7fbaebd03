package ui

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"go.uber.org/zap"

	"idsampler/app"
)

//go:embed templates/*.html content/*.md static/*
var embeddedFiles embed.FS

// Config holds UI server configuration
type Config struct {
	Addr              string
	GinMode           string
	DefaultSampleSize int
	MaxUploadBytes    int64
	Version           string
}

// Server is the operator web UI and JSON API over a RunService
type Server struct {
	router    *gin.Engine
	http      *http.Server
	runs      *app.RunService
	templates *template.Template
	about     template.HTML
	config    Config
	logger    *zap.Logger
}

// NewServer parses the embedded templates and wires routes
func NewServer(cfg Config, runs *app.RunService, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	templates, err := template.New("").Funcs(funcMap()).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	aboutMD, err := embeddedFiles.ReadFile("content/about.md")
	if err != nil {
		return nil, fmt.Errorf("failed to read about page: %w", err)
	}

	s := &Server{
		router:    gin.New(),
		runs:      runs,
		templates: templates,
		about:     renderMarkdown(aboutMD),
		config:    cfg,
		logger:    logger.Named("ui"),
	}
	s.router.MaxMultipartMemory = cfg.MaxUploadBytes

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"fmtFloat": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
		"fmtTime": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("2006-01-02 15:04:05")
		},
	}
}

func renderMarkdown(md []byte) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank})
	return template.HTML(markdown.ToHTML(md, p, renderer))
}

func (s *Server) setupMiddleware() error {
	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger(s.logger))

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create static filesystem: %w", err)
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	return nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/about", s.handleAbout)
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.POST("/inputs/:kind", limitBody(s.config.MaxUploadBytes), s.handleUpload)
	api.POST("/run", s.handleRun)
	api.POST("/reset", s.handleReset)
	api.GET("/state", s.handleState)
	api.GET("/export", s.handleExport)
	api.GET("/runs", s.handleHistory)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("starting ID sampler UI", zap.String("addr", s.config.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// renderTemplate renders into a buffer first so a template error never
// produces a half-written page
func (s *Server) renderTemplate(c *gin.Context, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("template error", zap.String("template", name), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed"})
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
