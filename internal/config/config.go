// Package config loads and validates a project's .codelibrarian/config.toml,
// merging it over the built-in defaults the way config.py's DEFAULT_CONFIG
// deep-merge did in the reference implementation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// IndexConfig controls file discovery.
type IndexConfig struct {
	Root      string   `toml:"root"`
	Exclude   []string `toml:"exclude"`
	Languages []string `toml:"languages"`
}

// EmbeddingsConfig controls the embedding provider used for semantic search.
type EmbeddingsConfig struct {
	APIURL     string `toml:"api_url"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
	BatchSize  int    `toml:"batch_size"`
	MaxChars   int    `toml:"max_chars"`
	Enabled    bool   `toml:"enabled"`
}

// DatabaseConfig controls where the SQLite index file lives.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// QueryRewriteConfig controls the optional LLM query-rewrite hook.
type QueryRewriteConfig struct {
	Enabled         bool    `toml:"enabled"`
	APIURL          string  `toml:"api_url"`
	Model           string  `toml:"model"`
	FocusMultiplier float64 `toml:"focus_multiplier"`
}

// Config is the full, merged project configuration.
type Config struct {
	Index        IndexConfig        `toml:"index"`
	Embeddings   EmbeddingsConfig   `toml:"embeddings"`
	Database     DatabaseConfig     `toml:"database"`
	QueryRewrite QueryRewriteConfig `toml:"query_rewrite"`

	// projectRoot is the directory config.toml was found in (or the
	// cwd, if none was found); relative paths in Index.Root and
	// Database.Path resolve against it.
	projectRoot string
}

// LanguageExtensions maps a file extension to its language tag.
var LanguageExtensions = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".go":   "go",
	".rs":   "rust",
	".java": "java",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cxx":  "cpp",
	".h":    "cpp",
	".hpp":  "cpp",
}

// Default returns the built-in configuration every field ultimately
// falls back to.
func Default() *Config {
	return &Config{
		Index: IndexConfig{
			Root:      ".",
			Exclude:   []string{"**/.git/**", "**/node_modules/**", "**/vendor/**", "**/.codelibrarian/**", "**/dist/**", "**/build/**", "**/__pycache__/**"},
			Languages: []string{"python", "javascript", "typescript", "go", "rust", "java", "cpp"},
		},
		Embeddings: EmbeddingsConfig{
			APIURL:     "http://localhost:11434/v1/embeddings",
			Model:      "nomic-embed-text",
			Dimensions: 768,
			BatchSize:  32,
			MaxChars:   2000,
			Enabled:    true,
		},
		Database: DatabaseConfig{
			Path: ".codelibrarian/index.db",
		},
		QueryRewrite: QueryRewriteConfig{
			Enabled:         false,
			APIURL:          "http://localhost:11434/v1/chat/completions",
			Model:           "llama3.1",
			FocusMultiplier: 0.5,
		},
	}
}

// DefaultConfigTOML is written to .codelibrarian/config.toml the first
// time a project is initialized.
const DefaultConfigTOML = `[index]
root = "."
exclude = ["**/.git/**", "**/node_modules/**", "**/vendor/**", "**/.codelibrarian/**", "**/dist/**", "**/build/**", "**/__pycache__/**"]
languages = ["python", "javascript", "typescript", "go", "rust", "java", "cpp"]

[embeddings]
api_url = "http://localhost:11434/v1/embeddings"
model = "nomic-embed-text"
dimensions = 768
batch_size = 32
max_chars = 2000
enabled = true

[database]
path = ".codelibrarian/index.db"

[query_rewrite]
enabled = false
api_url = "http://localhost:11434/v1/chat/completions"
model = "llama3.1"
focus_multiplier = 0.5
`

// Load reads and merges the config.toml at path over the defaults.
// A missing file is not an error: Default() is returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.projectRoot = filepath.Dir(path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromCWD finds the project root above the current directory and
// loads its config.toml, or returns defaults rooted at the cwd if no
// project marker is found.
func LoadFromCWD() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root := FindProjectRoot(cwd)
	return Load(filepath.Join(root, ".codelibrarian", "config.toml"))
}

// FindProjectRoot walks up from start looking for a .codelibrarian or
// .git directory, returning start unchanged if neither is found.
func FindProjectRoot(start string) string {
	dir := start
	for {
		if dirExists(filepath.Join(dir, ".codelibrarian")) || dirExists(filepath.Join(dir, ".git")) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (c *Config) validate() error {
	if c.Embeddings.Dimensions <= 0 {
		return fmt.Errorf("embeddings.dimensions must be positive, got %d", c.Embeddings.Dimensions)
	}
	if c.Embeddings.BatchSize <= 0 {
		return fmt.Errorf("embeddings.batch_size must be positive, got %d", c.Embeddings.BatchSize)
	}
	if c.QueryRewrite.FocusMultiplier < 0 || c.QueryRewrite.FocusMultiplier > 1 {
		return fmt.Errorf("query_rewrite.focus_multiplier must be in [0,1], got %f", c.QueryRewrite.FocusMultiplier)
	}
	return nil
}

// ProjectRoot returns the directory config.toml was loaded from.
func (c *Config) ProjectRoot() string {
	if c.projectRoot == "" {
		return "."
	}
	return c.projectRoot
}

// IndexRoot resolves Index.Root against the project root.
func (c *Config) IndexRoot() string {
	if filepath.IsAbs(c.Index.Root) {
		return c.Index.Root
	}
	return filepath.Join(c.ProjectRoot(), c.Index.Root)
}

// DatabasePath resolves Database.Path against the project root.
func (c *Config) DatabasePath() string {
	if filepath.IsAbs(c.Database.Path) {
		return c.Database.Path
	}
	return filepath.Join(c.ProjectRoot(), c.Database.Path)
}

// IsExcluded reports whether relPath matches one of the configured
// exclude globs. Patterns are matched with doublestar semantics
// (a leading/trailing "**" spans path separators); see matchGlob.
func (c *Config) IsExcluded(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range c.Index.Exclude {
		if matchGlob(pattern, relPath) {
			return true
		}
	}
	return false
}

// LanguageForFile returns the configured language tag for a file
// path's extension, or "" if unrecognized or not in Index.Languages.
func (c *Config) LanguageForFile(path string) string {
	lang, ok := LanguageExtensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return ""
	}
	for _, allowed := range c.Index.Languages {
		if allowed == lang {
			return lang
		}
	}
	return ""
}
