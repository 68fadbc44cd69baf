package main

import (
	"bytes"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/halcen/marquee/pkg/templating"
)

// Server renders templates from the configured template dir and serves
// static assets next to them. Page paths map directly onto template
// names: GET /about renders about.html, GET / renders index.html.
type Server struct {
	config *Config
	logger *slog.Logger
	env    *templating.Environment
	mux    *http.ServeMux
}

// NewServer creates the server and registers its routes on the mux.
func NewServer(config *Config, logger *slog.Logger, env *templating.Environment) *Server {
	s := &Server{
		config: config,
		logger: logger,
		env:    env,
		mux:    http.NewServeMux(),
	}

	prefix := strings.TrimSuffix(config.Templates.StaticPrefix, "/") + "/"
	s.mux.Handle(prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(config.Server.StaticDir))))
	s.mux.HandleFunc("/", s.handlePage)

	return s
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(r.URL.Path, "/")
	if name == "" {
		name = "index"
	}
	name += ".html"

	// The template name comes from the URL; keep it inside the dir.
	if strings.Contains(name, "..") || strings.HasPrefix(name, "/") {
		http.NotFound(w, r)
		return
	}
	if _, err := os.Stat(filepath.Join(s.config.Templates.TemplateDir, filepath.FromSlash(name))); err != nil {
		http.NotFound(w, r)
		return
	}

	ctx := templating.Context{
		"request_path": r.URL.Path,
		"now":          time.Now(),
	}

	// Render to a buffer first so a failing template produces a clean
	// 500 instead of a half-written page.
	var buf bytes.Buffer
	if err := s.env.Render(&buf, name, ctx); err != nil {
		s.logger.Error("Template render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
