// Package config provides configuration loading for the supervisor and
// session bridge. Values come from, in increasing precedence: built-in
// defaults, an optional sisyphus.toml, and SISYPHUS_* environment
// variables. A .env file in the working directory is loaded first so local
// setups can keep the webhook URL out of their shell profile.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ConfigFileName is the optional TOML config file looked up in the
// working directory.
const ConfigFileName = "sisyphus.toml"

// Config holds all tunables for the supervisor and bridge.
type Config struct {
	// WebhookURL receives lifecycle notifications. Empty or the
	// documented placeholder disables notification entirely.
	WebhookURL string `toml:"webhook_url"`

	// Model identifies the worker model; forwarded to the agent CLI and
	// used as the label on notifications.
	Model string `toml:"model"`

	// AgentBin is the agent CLI binary.
	AgentBin string `toml:"agent_bin"`

	// WorkDir is the confinement path the worker operates in. It is
	// passed through to the agent unmodified; the agent's own sandboxing
	// enforces it.
	WorkDir string `toml:"work_dir"`

	// LogsDir holds session interaction logs and mission run logs.
	LogsDir string `toml:"logs_dir"`

	// MissionFile contains the full mission instruction used on the
	// first iteration.
	MissionFile string `toml:"mission_file"`

	// Artifact is the shared completion artifact scanned for the
	// sentinel after every iteration.
	Artifact string `toml:"artifact"`
}

// Defaults returns the built-in configuration. WorkDir is left empty;
// Load fills it with the requested directory unless the file or
// environment override it.
func Defaults() *Config {
	return &Config{
		AgentBin:    "claude",
		LogsDir:     "logs",
		MissionFile: "PROMPT.md",
		Artifact:    "mission_log.txt",
	}
}

// Load assembles configuration for the given working directory.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = "."
	}

	// Best-effort .env; absence is the normal case.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	cfg := Defaults()

	tomlPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(tomlPath); err == nil {
		if _, err := toml.DecodeFile(tomlPath, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", ConfigFileName, err)
		}
	}

	applyEnv(cfg)

	// The requested directory is the confinement path unless the file or
	// environment named a different one; it passes through unmodified.
	if cfg.WorkDir == "" {
		cfg.WorkDir = dir
	}
	return cfg, nil
}

// applyEnv overlays SISYPHUS_* variables onto cfg.
func applyEnv(cfg *Config) {
	setIfEnv(&cfg.WebhookURL, "SISYPHUS_WEBHOOK_URL")
	setIfEnv(&cfg.Model, "SISYPHUS_MODEL")
	setIfEnv(&cfg.AgentBin, "SISYPHUS_AGENT_BIN")
	setIfEnv(&cfg.WorkDir, "SISYPHUS_WORKDIR")
	setIfEnv(&cfg.LogsDir, "SISYPHUS_LOGS_DIR")
	setIfEnv(&cfg.MissionFile, "SISYPHUS_MISSION_FILE")
	setIfEnv(&cfg.Artifact, "SISYPHUS_ARTIFACT")
}

func setIfEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// StatePath returns the location of the persisted supervisor state for a
// working directory.
func (c *Config) StatePath() string {
	return filepath.Join(c.WorkDir, ".sisyphus", "state.json")
}

// ArtifactPath resolves the completion artifact relative to the work dir.
func (c *Config) ArtifactPath() string {
	if filepath.IsAbs(c.Artifact) {
		return c.Artifact
	}
	return filepath.Join(c.WorkDir, c.Artifact)
}

// MissionFilePath resolves the mission file relative to the work dir.
func (c *Config) MissionFilePath() string {
	if filepath.IsAbs(c.MissionFile) {
		return c.MissionFile
	}
	return filepath.Join(c.WorkDir, c.MissionFile)
}

// LogsPath resolves the logs directory relative to the work dir.
func (c *Config) LogsPath() string {
	if filepath.IsAbs(c.LogsDir) {
		return c.LogsDir
	}
	return filepath.Join(c.WorkDir, c.LogsDir)
}
