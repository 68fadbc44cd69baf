package templating

import "github.com/flosch/pongo2/v6"

// Extension pairs a tag name with its pongo2 parser so that callers can
// add their own block tags through the environment configuration. The
// built-in spaceless and markdown tags are always present; configured
// extensions are appended on top of them.
type Extension struct {
	Name   string
	Parser pongo2.TagParser
}

// Config holds all configuration options for the template environment.
type Config struct {
	// TemplateDir is the root directory templates are loaded from.
	TemplateDir string `json:"template_dir"`

	// StaticPrefix is the URL prefix joined onto asset paths by the
	// static() template global.
	StaticPrefix string `json:"static_prefix"`

	// StaticVersion, when non-empty, is appended to static URLs as a
	// ?v= cache-busting query parameter.
	StaticVersion string `json:"static_version"`

	// Debug disables template caching so that edits are picked up on
	// every render. Leave off in production.
	Debug bool `json:"debug"`

	// DateFormat is the strftime pattern used by the date filter when
	// no parameter is given. The filter registry is shared by every
	// environment, so this default is process-wide: the first
	// environment constructed sets it, later environments do not
	// change it.
	DateFormat string `json:"date_format"`

	// TimeFormat is the strftime pattern used by the time filter when
	// no parameter is given. Process-wide, like DateFormat.
	TimeFormat string `json:"time_format"`

	// Extensions are additional block tags to register alongside the
	// built-in ones. Tag names share one engine-wide registry, so a
	// name that is already taken makes NewEnvironment fail. Tag
	// parsers are code, not data, so this field is not part of the
	// JSON representation.
	Extensions []Extension `json:"-"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		TemplateDir:  "./templates",
		StaticPrefix: "/static/",
		DateFormat:   "%B %d, %Y",
		TimeFormat:   "%H:%M",
	}
}
