package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.taskman/taskman.toml or OS-specific config dir)
// 3. Project config file (taskman.toml or .taskman.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := load(fs, args, false)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	return load(fs, args, true)
}

func load(fs *flag.FlagSet, args []string, track bool) (*ConfigWithSources, error) {
	var sources map[string]ConfigSource
	if track {
		sources = make(map[string]ConfigSource)
	}
	cfg := &Config{}

	// 1. Set defaults
	setDefaults(cfg)
	if sources != nil {
		for _, field := range configFields() {
			sources[field] = SourceDefault
		}
	}

	// 2. Try to load from user config file
	userConfigFile := findUserConfigFile()
	if userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	projectConfigFile := findProjectConfigFile()
	if projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	// 4. Override from environment
	loadFromEnv(cfg, sources)

	// 5. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return &ConfigWithSources{
		Config:  cfg,
		Sources: sources,
	}, nil
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"tasks_file",
		"backup_file",
		"export_file",
		"dirs",
		"due_soon_days",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"no_color",
	}
}

// loadConfigFile decodes the TOML file at path over cfg. Keys present in the
// file are attributed to source when sources is non-nil.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if sources == nil {
		return nil
	}
	for _, field := range configFields() {
		if md.IsDefined(field) {
			sources[field] = source
		}
	}
	return nil
}

// finalizeConfig computes derived values and validates paths.
func finalizeConfig(cfg *Config) error {
	// Determine project root
	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	if cfg.DueSoonDays < 0 {
		return fmt.Errorf("due_soon_days must not be negative, got %d", cfg.DueSoonDays)
	}

	// Expand ~ and make paths absolute if they're relative
	cfg.TasksFile = ResolvePath(cfg.ProjectRoot, cfg.TasksFile)
	cfg.BackupFile = ResolvePath(cfg.ProjectRoot, cfg.BackupFile)
	cfg.ExportFile = ResolvePath(cfg.ProjectRoot, cfg.ExportFile)
	dirs := make([]string, 0, len(cfg.Dirs))
	for _, dir := range cfg.Dirs {
		if dir == "" {
			continue
		}
		dirs = append(dirs, ResolvePath(cfg.ProjectRoot, dir))
	}
	cfg.Dirs = dirs

	return nil
}
