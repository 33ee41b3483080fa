package utils

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AppConfig is the optional on-disk YAML configuration for the phashcluster
// tool: hasher geometry, clustering defaults, and default store paths.
type AppConfig struct {
	DCTSize            int    `yaml:"dct_size"`
	BitBudget          int    `yaml:"bit_budget"`
	ExtractionPolicy   string `yaml:"extraction_policy"`
	CompactionInterval string `yaml:"compaction_interval"`
	Workers            int    `yaml:"workers"`
	HashesDBPath       string `yaml:"hashes_db_path"`
	StageDBPath        string `yaml:"stage_db_path"`
}

// DefaultAppConfig returns the tool's built-in defaults, used whenever no
// config file is given or a key is left unset after loading one.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DCTSize:            32,
		BitBudget:          64,
		ExtractionPolicy:   "block",
		CompactionInterval: "5m",
		Workers:            4,
		HashesDBPath:       "hashes.db",
		StageDBPath:        "stage.db",
	}
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "phashcluster.yaml"
	}
	return filepath.Join(homeDir, ".config", "phashcluster", "config.yaml")
}

// ConfigManager handles configuration loading and saving
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a new configuration manager
func NewConfigManager(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// LoadConfig loads configuration from YAML file
func (cm *ConfigManager) LoadConfig(cfg interface{}) error {
	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}

	return nil
}

// SaveConfig saves configuration to YAML file
func (cm *ConfigManager) SaveConfig(cfg interface{}) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(cm.configPath, data, 0644)
}

// ConfigExists checks if configuration file exists
func (cm *ConfigManager) ConfigExists() bool {
	_, err := os.Stat(cm.configPath)
	return !os.IsNotExist(err)
}
