// Package config loads the daemon configuration from environment variables.
// Every field names its variable with an env tag and may carry a default.
package config

import (
	"net"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Paysheet PaysheetConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	// Host is the interface to bind to
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

type PaysheetConfig struct {
	// DBPath is the key-value log file, or ":memory:"
	DBPath string `env:"PAYSHEET_DB_PATH" default:"paysheet.db"`

	// KeyPrefix is prepended to every dataset name to form its storage key
	KeyPrefix string `env:"PAYSHEET_KEY_PREFIX" default:"paysheet:"`

	// Persistence is either "sync" or "async"
	Persistence string `env:"PAYSHEET_PERSISTENCE" default:"sync"`

	FileName  string `env:"PAYSHEET_FILE_NAME" default:"payments.xlsx"`
	SheetName string `env:"PAYSHEET_SHEET_NAME" default:"Payments"`

	// ExportDir receives a copy of the workbook on every export when set
	ExportDir  string `env:"PAYSHEET_EXPORT_DIR"`
	AutoExport bool   `env:"PAYSHEET_AUTO_EXPORT" default:"false"`

	// Headless turns every dataset operation into a no-op
	Headless bool `env:"PAYSHEET_HEADLESS" default:"false"`
}

type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr is the listen address of the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
