package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the per-project configuration file name.
const ProjectFile = "framelint.yml"

// Config controls a run. Environment variables set the process defaults;
// the project file overrides them for the tree being checked.
type Config struct {
	Enabled      bool
	Strict       bool
	OutputFormat string
	Jobs         int
	Addr         string
	MCPAddr      string

	// Exclude holds discovery glob patterns relative to the project root.
	Exclude []string

	// Recognition extensions merged into the built-in sets.
	SchemaBases       []string
	FrameTypes        []string
	PreservingMethods []string
}

// Load reads the environment-driven defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Enabled:      true,
		Strict:       getEnvBool("FRAMELINT_STRICT", false),
		OutputFormat: getEnv("FRAMELINT_FORMAT", "human"),
		Jobs:         getEnvInt("FRAMELINT_JOBS", runtime.NumCPU()),
		Addr:         getEnv("FRAMELINT_ADDR", ":8321"),
		MCPAddr:      getEnv("FRAMELINT_MCP_ADDR", ":8322"),
	}
	if cfg.OutputFormat != "human" && cfg.OutputFormat != "json" {
		return nil, fmt.Errorf("invalid FRAMELINT_FORMAT %q: want human or json", cfg.OutputFormat)
	}
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	return cfg, nil
}

// projectFile is the yaml shape of framelint.yml. Pointer fields distinguish
// "absent" from zero values so the file only overrides what it sets.
type projectFile struct {
	Enabled           *bool    `yaml:"enabled"`
	Strict            *bool    `yaml:"strict"`
	Exclude           []string `yaml:"exclude"`
	SchemaBases       []string `yaml:"schema_bases"`
	FrameTypes        []string `yaml:"frame_types"`
	PreservingMethods []string `yaml:"preserving_methods"`
}

// ApplyProjectFile overlays the project configuration found at root, if any.
// A missing file is not an error; a malformed one is.
func (c *Config) ApplyProjectFile(root string) error {
	path := filepath.Join(root, ProjectFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	var pf projectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if pf.Enabled != nil {
		c.Enabled = *pf.Enabled
	}
	if pf.Strict != nil {
		c.Strict = *pf.Strict
	}
	c.Exclude = append(c.Exclude, pf.Exclude...)
	c.SchemaBases = append(c.SchemaBases, pf.SchemaBases...)
	c.FrameTypes = append(c.FrameTypes, pf.FrameTypes...)
	c.PreservingMethods = append(c.PreservingMethods, pf.PreservingMethods...)
	return nil
}

// FindProjectRoot walks up from start to the nearest directory containing
// framelint.yml, pyproject.toml, or .git. It falls back to start itself.
func FindProjectRoot(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return start
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for cur := dir; ; {
		for _, marker := range []string{ProjectFile, "pyproject.toml", ".git"} {
			if _, err := os.Stat(filepath.Join(cur, marker)); err == nil {
				return cur
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir
		}
		cur = parent
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
