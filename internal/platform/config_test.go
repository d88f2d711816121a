package platform

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/mulch/pkg/persist"
)

func writeVaultConfig(t *testing.T, vault, content string) {
	t.Helper()
	sysDir := filepath.Join(vault, DefaultSystemDir)
	if err := os.MkdirAll(sysDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sysDir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadVaultConfig(t *testing.T) {
	t.Run("missing file is a zero config", func(t *testing.T) {
		cfg, err := loadVaultConfig(t.TempDir(), DefaultSystemDir)
		if err != nil {
			t.Fatal(err)
		}
		if cfg != (VaultConfig{}) {
			t.Errorf("got %+v", cfg)
		}
	})

	t.Run("values are read", func(t *testing.T) {
		vault := t.TempDir()
		writeVaultConfig(t, vault, "budget_bytes: 1024\ndebounce_ms: 150\nbackup_keep: 5\nwatch: true\n")

		cfg, err := loadVaultConfig(vault, DefaultSystemDir)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.BudgetBytes != 1024 || cfg.DebounceMS != 150 || cfg.BackupKeep != 5 {
			t.Errorf("got %+v", cfg)
		}
		if cfg.Watch == nil || !*cfg.Watch {
			t.Error("watch not read")
		}
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		vault := t.TempDir()
		writeVaultConfig(t, vault, "budget_bytes: [broken\n")

		if _, err := loadVaultConfig(vault, DefaultSystemDir); err == nil {
			t.Error("malformed config accepted")
		}
	})
}

func TestNew_VaultConfigApplies(t *testing.T) {
	vault := t.TempDir()
	writeVaultConfig(t, vault, "debounce_ms: 10\nbackup_keep: 7\n")

	app, err := New(vault, WithAutoInit(true))
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close(context.Background())

	state, ok := app.Manager.State().(persist.ManagerState)
	if !ok {
		t.Fatalf("unexpected state type %T", app.Manager.State())
	}
	if state.Debounce != 10*time.Millisecond {
		t.Errorf("debounce = %v", state.Debounce)
	}
	if state.BackupKeep != 7 {
		t.Errorf("backup keep = %d", state.BackupKeep)
	}
}

func TestNew_ExplicitOptionsWinOverConfig(t *testing.T) {
	vault := t.TempDir()
	writeVaultConfig(t, vault, "debounce_ms: 10\n")

	app, err := New(vault, WithAutoInit(true), WithDebounce(90*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close(context.Background())

	state := app.Manager.State().(persist.ManagerState)
	if state.Debounce != 90*time.Millisecond {
		t.Errorf("debounce = %v", state.Debounce)
	}
}

func TestNew_MalformedConfigFailsOpen(t *testing.T) {
	vault := t.TempDir()
	writeVaultConfig(t, vault, "watch: {{nope\n")

	if _, err := New(vault, WithAutoInit(true)); err == nil {
		t.Error("malformed vault config accepted")
	}
}
