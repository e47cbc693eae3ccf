package paysheet

import "log/slog"

const (
	DefaultStorageKey = "paysheet:payments"
	DefaultFileName   = "payments.xlsx"
	DefaultSheetName  = "Payments"
)

type Config struct {
	StorageKey string
	FileName   string
	SheetName  string
	AutoExport bool
	Logger     *slog.Logger
}

func (cfg *Config) applyDefaults() {
	if cfg.StorageKey == "" {
		cfg.StorageKey = DefaultStorageKey
	}

	if cfg.FileName == "" {
		cfg.FileName = DefaultFileName
	}

	if cfg.SheetName == "" {
		cfg.SheetName = DefaultSheetName
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}

func resolveConfig(cfgs []*Config) *Config {
	cfg := &Config{}
	if len(cfgs) > 0 && cfgs[0] != nil {
		cp := *cfgs[0]
		cfg = &cp
	}

	cfg.applyDefaults()
	return cfg
}
