package templating

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// Context carries the values a template is rendered against. It is
// pongo2's context type, aliased so callers outside this package do not
// need to import the engine directly.
type Context = pongo2.Context

// Environment is the central controller for template rendering. It owns
// a pongo2 template set with a filesystem loader, exposes the url() and
// static() globals, and keeps the named-route registry used for URL
// reversal. Construct it once at startup; all methods are safe for
// concurrent use afterwards.
type Environment struct {
	logger *slog.Logger
	config *Config
	set    *pongo2.TemplateSet
	routes map[string]string
	mu     sync.RWMutex
}

// NewEnvironment creates and initializes a new Environment. It requires
// a logger and a configuration; the configured template directory must
// exist. Extensions listed in the config are registered with the engine
// in addition to the built-in spaceless and markdown tags; an extension
// whose name is already taken by another tag is an error.
func NewEnvironment(logger *slog.Logger, config *Config) (*Environment, error) {
	loader, err := pongo2.NewLocalFileSystemLoader(config.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create template loader: %w", err)
	}

	env := &Environment{
		logger: logger,
		config: config,
		set:    pongo2.NewSet("templating", loader),
		routes: map[string]string{},
	}
	env.set.Debug = config.Debug
	env.set.Globals.Update(pongo2.Context{
		"static": env.Static,
		"url":    env.reverseGlobal,
	})

	initFormats(config.DateFormat, config.TimeFormat)

	for _, ext := range config.Extensions {
		if err = pongo2.RegisterTag(ext.Name, ext.Parser); err != nil {
			return nil, fmt.Errorf("failed to register extension %q: %w", ext.Name, err)
		}
	}

	logger.Info("Template environment initialized", "dir", config.TemplateDir)
	return env, nil
}

// RegisterRoute adds a named URL pattern to the reversal registry.
// Placeholders are path segments starting with ':' and are filled
// positionally by Reverse, e.g. "/articles/:year/:slug".
func (e *Environment) RegisterRoute(name, pattern string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.routes[name] = pattern
}

// Reverse resolves a registered route name into a URL, substituting the
// pattern's placeholder segments with args in order. Every placeholder
// must be covered by exactly one argument; arguments are path-escaped.
func (e *Environment) Reverse(name string, args ...any) (string, error) {
	e.mu.RLock()
	pattern, ok := e.routes[name]
	e.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no route registered under %q", name)
	}

	segments := strings.Split(pattern, "/")
	used := 0
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		if used >= len(args) {
			return "", fmt.Errorf("route %q: missing argument for %q", name, seg)
		}
		segments[i] = url.PathEscape(fmt.Sprint(args[used]))
		used++
	}
	if used != len(args) {
		return "", fmt.Errorf("route %q takes %d arguments, got %d", name, used, len(args))
	}
	return strings.Join(segments, "/"), nil
}

// reverseGlobal backs the url() template function. A failed reversal is
// a template-author mistake, so it logs a warning and renders empty
// instead of aborting the whole response. Go callers wanting the error
// should use Reverse directly.
func (e *Environment) reverseGlobal(name string, args ...any) string {
	u, err := e.Reverse(name, args...)
	if err != nil {
		e.logger.Warn("url() could not reverse route", "name", name, "error", err)
		return ""
	}
	return u
}

// Static resolves an asset path against the configured static prefix,
// backing the static() template function.
func (e *Environment) Static(path string) string {
	u := strings.TrimSuffix(e.config.StaticPrefix, "/") + "/" + strings.TrimPrefix(path, "/")
	if e.config.StaticVersion != "" {
		u += "?v=" + url.QueryEscape(e.config.StaticVersion)
	}
	return u
}

// Render evaluates the named template against ctx and writes the output
// to w. Compiled templates are cached by the underlying set unless the
// environment is in debug mode.
func (e *Environment) Render(w io.Writer, name string, ctx Context) error {
	tpl, err := e.set.FromCache(name)
	if err != nil {
		return fmt.Errorf("failed to load template %q: %w", name, err)
	}
	return tpl.ExecuteWriter(ctx, w)
}

// RenderString compiles and renders a raw template string. This is
// ideal for testing or previewing templates without saving them to disk.
func (e *Environment) RenderString(content string, ctx Context) (string, error) {
	tpl, err := e.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse string template: %w", err)
	}
	return tpl.Execute(ctx)
}

// Refresh drops the compiled-template cache and recompiles every .html
// file under the template directory. This allows template updates to go
// live without restarting the application; a broken template surfaces
// here rather than on the next request.
func (e *Environment) Refresh() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.set.CleanCache()

	count := 0
	err := filepath.WalkDir(e.config.TemplateDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		rel, err := filepath.Rel(e.config.TemplateDir, path)
		if err != nil {
			return err
		}
		if _, err = e.set.FromCache(rel); err != nil {
			return fmt.Errorf("failed to compile template %q: %w", rel, err)
		}
		count++
		return nil
	})
	if err != nil {
		e.logger.Error("Template refresh failed", "error", err)
		return err
	}

	e.logger.Info("Loaded template files", "count", count)
	return nil
}
