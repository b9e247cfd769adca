// Package config provides the engine configuration payload and its loading.
package config

import (
	"encoding/json"
	"strings"

	"github.com/satishbabariya/nlsql/internal/apperr"
)

// DBType tags one of the supported SQL backends.
type DBType string

const (
	// MySQL backend.
	MySQL DBType = "MySQL"
	// PostgreSQL backend.
	PostgreSQL DBType = "PostgreSQL"
	// SQLite backend.
	SQLite DBType = "SQLite"
)

// DBTypes lists every supported backend.
var DBTypes = []DBType{MySQL, PostgreSQL, SQLite}

// String returns the dialect name used in prompts and payloads.
func (t DBType) String() string {
	return string(t)
}

// Valid reports whether t is one of the supported backends.
func (t DBType) Valid() bool {
	switch t {
	case MySQL, PostgreSQL, SQLite:
		return true
	}
	return false
}

// ParseDBType parses a backend tag. Matching is case-insensitive and accepts
// the common driver aliases.
func ParseDBType(s string) (DBType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql":
		return MySQL, nil
	case "postgresql", "postgres", "pg":
		return PostgreSQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return "", apperr.New(apperr.ConfigError, "unknown db_type %q", s)
}

// UnmarshalJSON accepts only the exact tags of the payload contract.
func (t *DBType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return apperr.Wrap(apperr.ConfigError, err, "db_type must be a string")
	}
	v := DBType(s)
	if !v.Valid() {
		return apperr.New(apperr.ConfigError, "unknown db_type %q", s)
	}
	*t = v
	return nil
}

// Config is the engine configuration. It is replaced wholesale on every
// configure call.
type Config struct {
	DBType           DBType `json:"db_type" mapstructure:"db_type"`
	ConnectionString string `json:"connection_string" mapstructure:"connection_string"`
	AICLIPath        string `json:"ai_cli_path" mapstructure:"ai_cli_path"`
	AIModelPath      string `json:"ai_model_path" mapstructure:"ai_model_path"`
	// SQLKnowledge grows by the introspected schema once the engine is configured.
	SQLKnowledge string `json:"sql_knowledge" mapstructure:"sql_knowledge"`
}

// Parse decodes a configuration payload.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		if apperr.Is(err, apperr.ConfigError) {
			return Config{}, err
		}
		return Config{}, apperr.Wrap(apperr.ConfigError, err, "")
	}
	return cfg, nil
}

// Validate checks the fields the engine cannot work without.
func (c Config) Validate() error {
	if !c.DBType.Valid() {
		return apperr.New(apperr.ConfigError, "unknown db_type %q", string(c.DBType))
	}
	if strings.TrimSpace(c.ConnectionString) == "" {
		return apperr.New(apperr.ConfigError, "connection_string is required")
	}
	return nil
}
