package config

import (
	"path"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved configuration.
type Config struct {
	Library    LibraryConfig    `toml:"library" yaml:"library"`
	Database   DatabaseConfig   `toml:"database" yaml:"database"`
	Logging    LoggingConfig    `toml:"logging" yaml:"logging"`
	Projection ProjectionConfig `toml:"projection" yaml:"projection"`
	Watch      WatchConfig      `toml:"watch" yaml:"watch"`
	Editor     EditorConfig     `toml:"editor" yaml:"editor"`
}

// LibraryConfig locates the library.
type LibraryConfig struct {
	// Root is the folder holding all documents.
	Root string `toml:"root" yaml:"root" split_words:"true"`

	// LoadConcurrency bounds concurrent child reads.
	LoadConcurrency int `toml:"load_concurrency" yaml:"load_concurrency" split_words:"true"`
}

// DatabaseConfig locates the record database.
type DatabaseConfig struct {
	// URL is a sqlite:/// URL. Empty means library.db inside the
	// library's .increvise folder.
	URL string `toml:"url" yaml:"url" split_words:"true"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level" yaml:"level" split_words:"true"`

	// Format is console or json.
	Format string `toml:"format" yaml:"format" split_words:"true"`

	// File receives log output instead of stderr when set.
	File string `toml:"file" yaml:"file" split_words:"true"`
}

// ProjectionConfig configures range projection.
type ProjectionConfig struct {
	// LenientGeometry drops only the conflicting ranges of a document with
	// invalid geometry instead of disabling all of them.
	LenientGeometry bool `toml:"lenient_geometry" yaml:"lenient_geometry" split_words:"true"`
}

// WatchConfig configures child file watching.
type WatchConfig struct {
	Enabled  bool     `toml:"enabled" yaml:"enabled" split_words:"true"`
	Debounce Duration `toml:"debounce" yaml:"debounce" split_words:"true"`
}

// EditorConfig configures the open host.
type EditorConfig struct {
	// ReadOnly opens hosts in preview mode.
	ReadOnly bool `toml:"read_only" yaml:"read_only" split_words:"true"`

	// LineEnding forces lf or crlf on save. Empty keeps the host's own.
	LineEnding string `toml:"line_ending" yaml:"line_ending" split_words:"true"`

	// MaxShifts bounds the shift history kept per document.
	MaxShifts int `toml:"max_shifts" yaml:"max_shifts" split_words:"true"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Library: LibraryConfig{
			Root:            ".",
			LoadConcurrency: 8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: Duration(200 * time.Millisecond),
		},
		Editor: EditorConfig{
			MaxShifts: 256,
		},
	}
}

// ResolvedURL returns the database URL, defaulting to a file inside the
// library root.
func (d DatabaseConfig) ResolvedURL(root string) string {
	if d.URL != "" {
		return d.URL
	}
	return "sqlite:///" + filepath.Join(root, ".increvise", "library.db")
}

// Validate checks every section and returns the first problem found.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Library.Root) == "" {
		return invalid("library.root", "must not be empty")
	}
	if c.Library.LoadConcurrency < 1 {
		return invalid("library.load_concurrency", "must be at least 1, got %d", c.Library.LoadConcurrency)
	}
	if c.Database.URL != "" && !strings.HasPrefix(c.Database.URL, "sqlite:///") {
		return invalid("database.url", "only sqlite:/// URLs are supported, got %q", c.Database.URL)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("logging.level", "unknown level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return invalid("logging.format", "unknown format %q", c.Logging.Format)
	}
	if c.Watch.Debounce < 0 {
		return invalid("watch.debounce", "must not be negative")
	}
	switch strings.ToLower(c.Editor.LineEnding) {
	case "", "lf", "crlf":
	default:
		return invalid("editor.line_ending", "unknown line ending %q", c.Editor.LineEnding)
	}
	if c.Editor.MaxShifts < 1 {
		return invalid("editor.max_shifts", "must be at least 1, got %d", c.Editor.MaxShifts)
	}
	return nil
}

// Duration is a time.Duration written as "250ms" or "1s" in files and
// environment variables.
type Duration time.Duration

// Std returns the time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String returns the duration in Go syntax.
func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalText parses the Go duration syntax.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText writes the Go duration syntax.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalYAML parses the Go duration syntax.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// isYAML reports whether p names a YAML file.
func isYAML(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
