package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/satishbabariya/nlsql/internal/apperr"
)

// AppFs is the filesystem configuration files are read from and written to.
var AppFs = afero.NewOsFs()

const (
	configName = ".nlsql"
	envPrefix  = "NLSQL"

	// DefaultMaxTokens is the token budget handed to the inference binary.
	DefaultMaxTokens = 128
)

// Settings holds everything the command line host needs: the engine payload
// plus host-side options.
type Settings struct {
	Engine Config

	// KnowledgeDir is a directory of SQL files used to seed the knowledge text.
	KnowledgeDir string
	// MaxTokens is the inference token budget.
	MaxTokens int
	// Prime runs the warm-up inference call after configuring.
	Prime bool
	// Timeout bounds each engine operation; zero means no deadline.
	Timeout time.Duration
	// Debug enables debug logging.
	Debug bool
	// Telemetry selects the telemetry adapter ("noop" or "prometheus").
	Telemetry string
}

// Loader reads Settings from config files, .env files and the environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader searching the working directory and the user's
// home directory for .nlsql.yaml.
func NewLoader() (*Loader, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, apperr.Wrap(apperr.ConfigError, err, "cannot locate home directory")
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "nlsql"))

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("db_type", string(SQLite))
	v.SetDefault("max_tokens", DefaultMaxTokens)
	v.SetDefault("prime", false)
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("debug", false)
	v.SetDefault("telemetry", "noop")

	return &Loader{v: v}, nil
}

// Viper exposes the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// SetConfigFile pins an explicit config file instead of searching.
func (l *Loader) SetConfigFile(path string) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return apperr.Wrap(apperr.ConfigError, err, "invalid config path")
	}
	l.v.SetConfigFile(expanded)
	return nil
}

// Load reads the configuration sources and returns the merged settings.
func (l *Loader) Load() (*Settings, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && l.v.ConfigFileUsed() != "" {
			return nil, apperr.Wrap(apperr.ConfigError, err, "failed to read %s", l.v.ConfigFileUsed())
		}
	}

	dbType, err := ParseDBType(l.v.GetString("db_type"))
	if err != nil {
		return nil, err
	}

	s := &Settings{
		Engine: Config{
			DBType:           dbType,
			ConnectionString: l.v.GetString("connection_string"),
			AICLIPath:        l.v.GetString("ai_cli_path"),
			AIModelPath:      l.v.GetString("ai_model_path"),
			SQLKnowledge:     l.v.GetString("sql_knowledge"),
		},
		KnowledgeDir: l.v.GetString("knowledge_dir"),
		MaxTokens:    l.v.GetInt("max_tokens"),
		Prime:        l.v.GetBool("prime"),
		Timeout:      l.v.GetDuration("timeout"),
		Debug:        l.v.GetBool("debug"),
		Telemetry:    l.v.GetString("telemetry"),
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = DefaultMaxTokens
	}
	if s.KnowledgeDir != "" {
		if s.KnowledgeDir, err = homedir.Expand(s.KnowledgeDir); err != nil {
			return nil, apperr.Wrap(apperr.ConfigError, err, "invalid knowledge_dir")
		}
	}
	if s.Engine.AIModelPath != "" {
		if s.Engine.AIModelPath, err = homedir.Expand(s.Engine.AIModelPath); err != nil {
			return nil, apperr.Wrap(apperr.ConfigError, err, "invalid ai_model_path")
		}
	}

	return s, nil
}

// SaveConfig writes settings to path, or to ~/.config/nlsql/.nlsql.yaml when
// path is empty.
func (l *Loader) SaveConfig(s *Settings, path string) (string, error) {
	l.v.Set("db_type", string(s.Engine.DBType))
	l.v.Set("connection_string", s.Engine.ConnectionString)
	l.v.Set("ai_cli_path", s.Engine.AICLIPath)
	l.v.Set("ai_model_path", s.Engine.AIModelPath)
	l.v.Set("knowledge_dir", s.KnowledgeDir)
	l.v.Set("max_tokens", s.MaxTokens)
	l.v.Set("prime", s.Prime)

	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", apperr.Wrap(apperr.IOError, err, "")
		}
		dir := filepath.Join(home, ".config", "nlsql")
		if err := AppFs.MkdirAll(dir, 0o755); err != nil {
			return "", apperr.Wrap(apperr.IOError, err, "")
		}
		path = filepath.Join(dir, configName+".yaml")
	}

	if err := l.v.WriteConfigAs(path); err != nil {
		return "", apperr.Wrap(apperr.IOError, err, "failed to write %s", path)
	}
	return path, nil
}

// loadDotEnv applies .env without overriding the environment, then
// .env.local with override.
func loadDotEnv() error {
	for _, f := range []struct {
		name     string
		override bool
	}{
		{".env", false},
		{".env.local", true},
	} {
		if _, err := AppFs.Stat(f.name); err != nil {
			continue
		}
		file, err := AppFs.Open(f.name)
		if err != nil {
			return apperr.Wrap(apperr.IOError, err, "")
		}
		values, err := godotenv.Parse(file)
		file.Close()
		if err != nil {
			return apperr.Wrap(apperr.ConfigError, err, "failed to parse %s", f.name)
		}
		for k, val := range values {
			if _, exists := os.LookupEnv(k); exists && !f.override {
				continue
			}
			os.Setenv(k, val)
		}
	}
	return nil
}
