package platform

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// VaultConfig is the optional per-vault configuration file, stored at
// {vault}/{systemDir}/config.yaml. Explicit options always win over it.
type VaultConfig struct {
	BudgetBytes int64 `yaml:"budget_bytes"`
	DebounceMS  int   `yaml:"debounce_ms"`
	BackupKeep  int   `yaml:"backup_keep"`
	Watch       *bool `yaml:"watch"`
}

// loadVaultConfig reads the vault config file. A missing file yields a zero
// config and no error; a malformed one is an error (the vault should not
// silently run with half-applied settings).
func loadVaultConfig(vaultPath, systemDir string) (VaultConfig, error) {
	var cfg VaultConfig

	path := filepath.Join(vaultPath, systemDir, "config.yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
