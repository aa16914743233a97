package cli

import (
	"strconv"

	"github.com/calvinalkan/remind/internal/config"
)

func cmdPrintConfig(ioCtx *IO, cfg config.Config) error {
	ioCtx.Println("vault_dir=" + cfg.VaultDirAbs)
	ioCtx.Println("default_folder=" + cfg.DefaultFolder)
	ioCtx.Println("check_interval_minutes=" + strconv.Itoa(cfg.CheckIntervalMinutes))

	if cfg.ScanFolder != "" {
		ioCtx.Println("scan_folder=" + cfg.ScanFolder)
	}

	if cfg.LogLevel != "" {
		ioCtx.Println("log_level=" + cfg.LogLevel)
	}

	ioCtx.Println("")
	ioCtx.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Vault == "" {
		ioCtx.Println("(defaults only)")

		return nil
	}

	if cfg.Sources.Global != "" {
		ioCtx.Println("global_config=" + cfg.Sources.Global)
	}

	if cfg.Sources.Vault != "" {
		ioCtx.Println("vault_config=" + cfg.Sources.Vault)
	}

	return nil
}
