/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

// CanvasConfig holds the initial state of a canvas controller.
type CanvasConfig struct {
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Background    string `yaml:"background"` // color or image source, empty for none
	ShowAreaNames bool   `yaml:"show_area_names"`
	OptimizeView  bool   `yaml:"optimize_view"`
	Disabled      bool   `yaml:"disabled"`
	ShowTooltip   bool   `yaml:"show_tooltip"`
	StickyDraw    bool   `yaml:"sticky_draw"`
}

type RenderConfig struct {
	Format        string `yaml:"format"` // "png" | "svg" | "pdf"
	FontFile      string `yaml:"font_file"`
	TextureDir    string `yaml:"texture_dir"`
	TextureSmooth bool   `yaml:"texture_smooth"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Render        RenderConfig  `yaml:"render"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Canvas:        CanvasConfig{Width: 800, Height: 600, ShowTooltip: true},
		Render:        RenderConfig{Format: "png", TextureSmooth: true},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile    = "ACV_CONFIG"
	EnvCanvasWidth   = "ACV_CANVAS_WIDTH"
	EnvCanvasHeight  = "ACV_CANVAS_HEIGHT"
	EnvBackground    = "ACV_BACKGROUND"
	EnvShowNames     = "ACV_SHOW_AREA_NAMES"
	EnvOptimizeView  = "ACV_OPTIMIZE_VIEW"
	EnvRenderFormat  = "ACV_RENDER_FORMAT"
	EnvFontFile      = "ACV_FONT_FILE"
	EnvTextureDir    = "ACV_TEXTURE_DIR"
	EnvTextureSmooth = "ACV_TEXTURE_SMOOTH"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "ACV_LOG_LEVEL"
	EnvLogFormat = "ACV_LOG_FORMAT"
	EnvLogSource = "ACV_LOG_SOURCE"
	EnvLogFile   = "ACV_LOG_FILE"
)

// ErrUnsupportedFormat is returned by Validate for unknown render formats.
var ErrUnsupportedFormat = errors.New("unsupported render format")

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "AnnotCanvas")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "AnnotCanvas")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "annotcanvas")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// ACV_CONFIG replaces the per-user path.
func Load() (AppConfig, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return LoadFile(p)
	}
	path, err := ConfigPath()
	if err != nil {
		return Defaults(), err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path. A missing file yields the defaults.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, err
	}
	applyEnvOverrides(&cfg)
	return cfg, cfg.Validate()
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

func SaveFile(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate checks the values a canvas cannot start with.
func (c AppConfig) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas size %dx%d must be positive", c.Canvas.Width, c.Canvas.Height)
	}
	switch c.Render.Format {
	case "png", "svg", "pdf":
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, c.Render.Format)
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Canvas.Width > 0 {
		dst.Canvas.Width = src.Canvas.Width
	}
	if src.Canvas.Height > 0 {
		dst.Canvas.Height = src.Canvas.Height
	}
	if strings.TrimSpace(src.Canvas.Background) != "" {
		dst.Canvas.Background = strings.TrimSpace(src.Canvas.Background)
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Canvas.ShowAreaNames = src.Canvas.ShowAreaNames
	dst.Canvas.OptimizeView = src.Canvas.OptimizeView
	dst.Canvas.Disabled = src.Canvas.Disabled
	dst.Canvas.ShowTooltip = src.Canvas.ShowTooltip
	dst.Canvas.StickyDraw = src.Canvas.StickyDraw
	// render
	if strings.TrimSpace(src.Render.Format) != "" {
		dst.Render.Format = strings.ToLower(strings.TrimSpace(src.Render.Format))
	}
	if strings.TrimSpace(src.Render.FontFile) != "" {
		dst.Render.FontFile = strings.TrimSpace(src.Render.FontFile)
	}
	if strings.TrimSpace(src.Render.TextureDir) != "" {
		dst.Render.TextureDir = strings.TrimSpace(src.Render.TextureDir)
	}
	dst.Render.TextureSmooth = src.Render.TextureSmooth
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvCanvasWidth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Canvas.Width = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvCanvasHeight)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Canvas.Height = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackground)); v != "" {
		cfg.Canvas.Background = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvShowNames)); v != "" {
		cfg.Canvas.ShowAreaNames = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvOptimizeView)); v != "" {
		cfg.Canvas.OptimizeView = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvRenderFormat)); v != "" {
		cfg.Render.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvFontFile)); v != "" {
		cfg.Render.FontFile = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTextureDir)); v != "" {
		cfg.Render.TextureDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTextureSmooth)); v != "" {
		cfg.Render.TextureSmooth = truthy(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"canvas.width":           EnvCanvasWidth,
	"canvas.height":          EnvCanvasHeight,
	"canvas.background":      EnvBackground,
	"canvas.show_area_names": EnvShowNames,
	"canvas.optimize_view":   EnvOptimizeView,
	"render.format":          EnvRenderFormat,
	"render.font_file":       EnvFontFile,
	"render.texture_dir":     EnvTextureDir,
	"render.texture_smooth":  EnvTextureSmooth,
	"logging.level":          EnvLogLevel,
	"logging.format":         EnvLogFormat,
	"logging.source":         EnvLogSource,
	"logging.file":           EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
