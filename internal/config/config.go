// Package config loads the client configuration: defaults, then the
// global file under the user's home, then the project file, then
// environment overrides. Config files are JSON with // and /* */
// comments allowed.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type ServerConfig struct {
	BaseURL        string `json:"base_url"`
	TimeoutMS      int    `json:"timeout_ms"`
	ProbeTimeoutMS int    `json:"probe_timeout_ms"`
}

type EngineConfig struct {
	// Command overrides executable discovery. Empty means search PATH and
	// the usual install locations.
	Command     string   `json:"command"`
	Args        []string `json:"args"`
	AutoStart   bool     `json:"auto_start"`
	CORSOrigins []string `json:"cors_origins"`
}

type SkillsConfig struct {
	Paths []string `json:"paths"`
}

type UIConfig struct {
	Locale   string `json:"locale"`
	Plain    bool   `json:"plain"`
	Markdown bool   `json:"markdown"`
}

type StorageConfig struct {
	BaseDir string `json:"base_dir"`
}

type Config struct {
	Server  ServerConfig  `json:"server"`
	Engine  EngineConfig  `json:"engine"`
	Skills  SkillsConfig  `json:"skills"`
	UI      UIConfig      `json:"ui"`
	Storage StorageConfig `json:"storage"`
}

// SettingsPath is where the preference database lives.
func (c Config) SettingsPath() string {
	return filepath.Join(c.Storage.BaseDir, "settings.db")
}

type fileEngineConfig struct {
	Command     *string   `json:"command"`
	Args        *[]string `json:"args"`
	AutoStart   *bool     `json:"auto_start"`
	CORSOrigins *[]string `json:"cors_origins"`
}

type fileUIConfig struct {
	Locale   *string `json:"locale"`
	Plain    *bool   `json:"plain"`
	Markdown *bool   `json:"markdown"`
}

type fileConfig struct {
	Server  *ServerConfig     `json:"server"`
	Engine  *fileEngineConfig `json:"engine"`
	Skills  *SkillsConfig     `json:"skills"`
	UI      *fileUIConfig     `json:"ui"`
	Storage *StorageConfig    `json:"storage"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			BaseURL:        "http://127.0.0.1:4096",
			TimeoutMS:      30000,
			ProbeTimeoutMS: 10000,
		},
		Engine: EngineConfig{
			AutoStart:   true,
			CORSOrigins: []string{"http://localhost:1420"},
		},
		Skills: SkillsConfig{
			Paths: []string{"./.opencode/skill", "~/.config/opencode/skill"},
		},
		UI: UIConfig{
			Locale:   "en",
			Markdown: true,
		},
		Storage: StorageConfig{BaseDir: "~/.openwork"},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	for _, globalPath := range globalConfigPaths() {
		if err := mergeFromFile(&cfg, globalPath); err != nil {
			return Config{}, err
		}
	}

	resolvedPath := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(os.Getenv("OPENWORK_CONFIG_PATH")); envPath != "" {
		resolvedPath = envPath
	}
	if resolvedPath == "" {
		resolvedPath = findProjectConfigPath()
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return applyEnv(cfg)
}

func globalConfigPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(home, ".openwork", "config.json")}
}

func findProjectConfigPath() string {
	candidates := []string{
		"openwork.config.json",
		".openwork/config.json",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	cleaned := stripJSONComments(data)
	var fileCfg fileConfig
	if err := json.Unmarshal(cleaned, &fileCfg); err != nil {
		return fmt.Errorf("parse config %q: %w", resolved, err)
	}
	applyFileConfig(cfg, fileCfg)
	return nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Server != nil {
		if strings.TrimSpace(fc.Server.BaseURL) != "" {
			cfg.Server.BaseURL = fc.Server.BaseURL
		}
		if fc.Server.TimeoutMS > 0 {
			cfg.Server.TimeoutMS = fc.Server.TimeoutMS
		}
		if fc.Server.ProbeTimeoutMS > 0 {
			cfg.Server.ProbeTimeoutMS = fc.Server.ProbeTimeoutMS
		}
	}
	if fc.Engine != nil {
		if fc.Engine.Command != nil {
			cfg.Engine.Command = *fc.Engine.Command
		}
		if fc.Engine.Args != nil {
			cfg.Engine.Args = append([]string(nil), (*fc.Engine.Args)...)
		}
		if fc.Engine.AutoStart != nil {
			cfg.Engine.AutoStart = *fc.Engine.AutoStart
		}
		if fc.Engine.CORSOrigins != nil {
			cfg.Engine.CORSOrigins = append([]string(nil), (*fc.Engine.CORSOrigins)...)
		}
	}
	if fc.Skills != nil {
		cfg.Skills = *fc.Skills
	}
	if fc.UI != nil {
		if fc.UI.Locale != nil {
			cfg.UI.Locale = *fc.UI.Locale
		}
		if fc.UI.Plain != nil {
			cfg.UI.Plain = *fc.UI.Plain
		}
		if fc.UI.Markdown != nil {
			cfg.UI.Markdown = *fc.UI.Markdown
		}
	}
	if fc.Storage != nil {
		if strings.TrimSpace(fc.Storage.BaseDir) != "" {
			cfg.Storage.BaseDir = fc.Storage.BaseDir
		}
	}
}

func normalize(cfg *Config) error {
	def := Default()

	cfg.Server.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Server.BaseURL), "/")
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = def.Server.BaseURL
	}
	if cfg.Server.TimeoutMS <= 0 {
		cfg.Server.TimeoutMS = def.Server.TimeoutMS
	}
	if cfg.Server.ProbeTimeoutMS <= 0 {
		cfg.Server.ProbeTimeoutMS = def.Server.ProbeTimeoutMS
	}

	cfg.Engine.Command = strings.TrimSpace(cfg.Engine.Command)
	if len(cfg.Engine.CORSOrigins) == 0 {
		cfg.Engine.CORSOrigins = def.Engine.CORSOrigins
	}

	if len(cfg.Skills.Paths) == 0 {
		cfg.Skills.Paths = def.Skills.Paths
	}
	cfg.Skills.Paths = normalizePaths(cfg.Skills.Paths)

	cfg.UI.Locale = strings.ToLower(strings.TrimSpace(cfg.UI.Locale))
	if cfg.UI.Locale == "" {
		cfg.UI.Locale = def.UI.Locale
	}

	baseDir, err := expandPath(cfg.Storage.BaseDir)
	if err != nil {
		return err
	}
	if baseDir == "" {
		baseDir, err = expandPath(def.Storage.BaseDir)
		if err != nil {
			return err
		}
	}
	cfg.Storage.BaseDir = baseDir
	return nil
}

func applyEnv(cfg Config) (Config, error) {
	if v := strings.TrimSpace(os.Getenv("OPENWORK_SERVER_URL")); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENWORK_TIMEOUT_MS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid OPENWORK_TIMEOUT_MS: %q", v)
		}
		cfg.Server.TimeoutMS = n
	}
	if v := strings.TrimSpace(os.Getenv("OPENWORK_ENGINE_COMMAND")); v != "" {
		cfg.Engine.Command = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENWORK_LOCALE")); v != "" {
		cfg.UI.Locale = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("OPENWORK_DATA_DIR")); v != "" {
		cfg.Storage.BaseDir = v
	}

	return cfg, normalize(&cfg)
}

func normalizePaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := map[string]struct{}{}
	for _, p := range paths {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			continue
		}
		if _, ok := seen[expanded]; ok {
			continue
		}
		seen[expanded] = struct{}{}
		out = append(out, expanded)
	}
	return out
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return filepath.Abs(path)
}

func stripJSONComments(data []byte) []byte {
	const (
		stateNormal = iota
		stateString
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	escaped := false
	out := bytes.Buffer{}

	for i := 0; i < len(data); i++ {
		c := data[i]
		next := byte(0)
		if i+1 < len(data) {
			next = data[i+1]
		}

		switch state {
		case stateNormal:
			if c == '"' {
				state = stateString
				out.WriteByte(c)
				continue
			}
			if c == '/' && next == '/' {
				state = stateLineComment
				i++
				continue
			}
			if c == '/' && next == '*' {
				state = stateBlockComment
				i++
				continue
			}
			out.WriteByte(c)
		case stateString:
			out.WriteByte(c)
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == '"' {
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out.WriteByte(c)
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				i++
			}
		}
	}

	return out.Bytes()
}
