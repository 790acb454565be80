package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	DBFileName = "agrolink.db"

	defaultBusyTimeout  = 5 * time.Second
	maxBusyTimeout      = time.Minute
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"
	defaultLogMaxSizeMB = 10
	defaultLogMaxFiles  = 5
	defaultDotEnvFile   = ".env"
)

var ErrInvalidConfig = errors.New("invalid config")

// StorageMode selects where marketplace data lives. Only local storage is
// implemented; remote is accepted so configs written for it still load.
type StorageMode string

const (
	StorageModeLocal  StorageMode = "local"
	StorageModeRemote StorageMode = "remote"
)

type Config struct {
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
}

type StorageConfig struct {
	Path        string        `toml:"path"`
	Mode        StorageMode   `toml:"mode"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type LoggingConfig struct {
	Level     string `toml:"level"`
	Format    string `toml:"format"`
	File      string `toml:"file"`
	MaxSizeMB int    `toml:"max_size_mb"`
	MaxFiles  int    `toml:"max_files"`
}

type LoadOptions struct {
	ConfigPath string
	// DotEnvPath defaults to .env in the working directory. A missing file is
	// not an error.
	DotEnvPath string
	Env        map[string]string
	Flags      FlagOverrides
}

type FlagOverrides struct {
	DBPath   *string
	LogLevel *string
}

type LoadReport struct {
	ConfigPath string
	DotEnvPath string
	Warnings   []string
}

func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Path:        "",
			Mode:        StorageModeLocal,
			BusyTimeout: defaultBusyTimeout,
		},
		Logging: LoggingConfig{
			Level:     defaultLogLevel,
			Format:    defaultLogFormat,
			File:      "",
			MaxSizeMB: defaultLogMaxSizeMB,
			MaxFiles:  defaultLogMaxFiles,
		},
	}
}

// Load layers defaults, the TOML file, the .env file, the process
// environment (or opts.Env) and flags, in increasing precedence.
func Load(opts LoadOptions) (Config, LoadReport, error) {
	cfg := DefaultConfig()
	report := LoadReport{Warnings: []string{}}

	dotEnv, dotEnvPath, err := readDotEnv(opts)
	if err != nil {
		return Config{}, report, err
	}
	report.DotEnvPath = dotEnvPath
	env := layeredEnv{opts: opts, dotEnv: dotEnv}

	configPath, err := resolveConfigPath(opts, env)
	if err != nil {
		return Config{}, report, fmt.Errorf("resolve config path: %w", err)
	}
	loaded, err := loadAndApplyFile(configPath, &cfg)
	if err != nil {
		return Config{}, report, err
	}
	if loaded {
		report.ConfigPath = configPath
	}

	if err := applyEnvOverrides(&cfg, env); err != nil {
		return Config{}, report, err
	}
	applyFlagOverrides(&cfg, opts.Flags)

	if cfg.Storage.Path == "" {
		home, err := dataDir(env.lookup)
		if err != nil {
			return Config{}, report, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.Storage.Path = filepath.Join(home, DBFileName)
	}

	if err := validate(cfg); err != nil {
		return Config{}, report, err
	}
	if cfg.Storage.Mode == StorageModeRemote {
		report.Warnings = append(report.Warnings, "storage.mode remote is not implemented; using the local store")
	}

	return cfg, report, nil
}

type rawConfig struct {
	Storage *rawStorage `toml:"storage"`
	Logging *rawLogging `toml:"logging"`
}

type rawStorage struct {
	Path        *string `toml:"path"`
	Mode        *string `toml:"mode"`
	BusyTimeout *string `toml:"busy_timeout"`
}

type rawLogging struct {
	Level     *string `toml:"level"`
	Format    *string `toml:"format"`
	File      *string `toml:"file"`
	MaxSizeMB *int    `toml:"max_size_mb"`
	MaxFiles  *int    `toml:"max_files"`
}

func loadAndApplyFile(path string, cfg *Config) (bool, error) {
	if path == "" {
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read config file %q: %w", path, err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false, fmt.Errorf("%w: parse TOML file %q: %v", ErrInvalidConfig, path, err)
	}

	if err := applyRawConfig(cfg, raw); err != nil {
		return false, err
	}
	return true, nil
}

func applyRawConfig(cfg *Config, raw rawConfig) error {
	if raw.Storage != nil {
		setString(raw.Storage.Path, &cfg.Storage.Path)
		if raw.Storage.Mode != nil {
			cfg.Storage.Mode = StorageMode(*raw.Storage.Mode)
		}
		if err := setDuration("storage.busy_timeout", raw.Storage.BusyTimeout, &cfg.Storage.BusyTimeout); err != nil {
			return err
		}
	}

	if raw.Logging != nil {
		setString(raw.Logging.Level, &cfg.Logging.Level)
		setString(raw.Logging.Format, &cfg.Logging.Format)
		setString(raw.Logging.File, &cfg.Logging.File)
		setInt(raw.Logging.MaxSizeMB, &cfg.Logging.MaxSizeMB)
		setInt(raw.Logging.MaxFiles, &cfg.Logging.MaxFiles)
	}

	return nil
}

func applyEnvOverrides(cfg *Config, env layeredEnv) error {
	if value, ok := env.lookup("AGROLINK_DB_PATH"); ok {
		cfg.Storage.Path = value
	}
	if value, ok := env.lookup("AGROLINK_STORAGE_MODE"); ok {
		cfg.Storage.Mode = StorageMode(value)
	}
	if value, ok := env.lookup("AGROLINK_BUSY_TIMEOUT"); ok {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: parse AGROLINK_BUSY_TIMEOUT: %v", ErrInvalidConfig, err)
		}
		cfg.Storage.BusyTimeout = d
	}

	if value, ok := env.lookup("AGROLINK_LOG_LEVEL"); ok {
		cfg.Logging.Level = value
	}
	if value, ok := env.lookup("AGROLINK_LOG_FORMAT"); ok {
		cfg.Logging.Format = value
	}
	if value, ok := env.lookup("AGROLINK_LOG_FILE"); ok {
		cfg.Logging.File = value
	}
	if value, ok := env.lookup("AGROLINK_LOG_MAX_SIZE_MB"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: parse AGROLINK_LOG_MAX_SIZE_MB: %v", ErrInvalidConfig, err)
		}
		cfg.Logging.MaxSizeMB = parsed
	}
	if value, ok := env.lookup("AGROLINK_LOG_MAX_FILES"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: parse AGROLINK_LOG_MAX_FILES: %v", ErrInvalidConfig, err)
		}
		cfg.Logging.MaxFiles = parsed
	}

	return nil
}

func applyFlagOverrides(cfg *Config, flags FlagOverrides) {
	if flags.DBPath != nil && *flags.DBPath != "" {
		cfg.Storage.Path = *flags.DBPath
	}
	if flags.LogLevel != nil && *flags.LogLevel != "" {
		cfg.Logging.Level = *flags.LogLevel
	}
}

func validate(cfg Config) error {
	switch cfg.Storage.Mode {
	case StorageModeLocal, StorageModeRemote:
	default:
		return fmt.Errorf("%w: storage.mode must be %q or %q, got %q", ErrInvalidConfig, StorageModeLocal, StorageModeRemote, cfg.Storage.Mode)
	}
	if cfg.Storage.BusyTimeout <= 0 || cfg.Storage.BusyTimeout > maxBusyTimeout {
		return fmt.Errorf("%w: storage.busy_timeout must be > 0 and <= %s", ErrInvalidConfig, maxBusyTimeout)
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: logging.level %q is not one of debug, info, warn, error", ErrInvalidConfig, cfg.Logging.Level)
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: logging.format must be text or json, got %q", ErrInvalidConfig, cfg.Logging.Format)
	}
	if cfg.Logging.MaxSizeMB < 0 || cfg.Logging.MaxFiles < 0 {
		return fmt.Errorf("%w: logging rotation limits must not be negative", ErrInvalidConfig)
	}
	return nil
}

func setDuration(field string, raw *string, target *time.Duration) error {
	if raw == nil {
		return nil
	}
	d, err := time.ParseDuration(*raw)
	if err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, field, err)
	}
	*target = d
	return nil
}

func setString(raw *string, target *string) {
	if raw == nil {
		return
	}
	*target = *raw
}

func setInt(raw *int, target *int) {
	if raw == nil {
		return
	}
	*target = *raw
}

// layeredEnv resolves a key from opts.Env, then the process environment, then
// the .env file.
type layeredEnv struct {
	opts   LoadOptions
	dotEnv map[string]string
}

func (e layeredEnv) lookup(key string) (string, bool) {
	if value, ok := lookupEnv(e.opts.Env, key); ok {
		return value, true
	}
	value, ok := e.dotEnv[key]
	return value, ok
}

func readDotEnv(opts LoadOptions) (map[string]string, string, error) {
	path := opts.DotEnvPath
	if path == "" {
		path = defaultDotEnvFile
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, "", nil
		}
		return nil, "", fmt.Errorf("%w: read dotenv file %q: %v", ErrInvalidConfig, path, err)
	}
	return values, path, nil
}

func resolveConfigPath(opts LoadOptions, env layeredEnv) (string, error) {
	if opts.ConfigPath != "" {
		return opts.ConfigPath, nil
	}
	if value, ok := env.lookup("AGROLINK_CONFIG_PATH"); ok {
		return value, nil
	}
	return defaultConfigPath(opts.Env)
}

func lookupEnv(env map[string]string, key string) (string, bool) {
	if env != nil {
		if value, ok := env[key]; ok {
			return value, true
		}
	}
	return os.LookupEnv(key)
}

// DataDir is the directory holding the store file: $AGROLINK_HOME, else the
// platform data directory.
func DataDir(env map[string]string) (string, error) {
	return dataDir(func(key string) (string, bool) { return lookupEnv(env, key) })
}

func dataDir(lookup func(string) (string, bool)) (string, error) {
	if value, ok := lookup("AGROLINK_HOME"); ok && value != "" {
		return value, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "Agrolink"), nil
	}

	dataHome := filepath.Join(home, ".local", "share")
	if xdgDataHome, ok := lookup("XDG_DATA_HOME"); ok && xdgDataHome != "" {
		dataHome = xdgDataHome
	}
	return filepath.Join(dataHome, "agrolink"), nil
}

func defaultConfigPath(env map[string]string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "Agrolink", "config.toml"), nil
	}

	configHome := filepath.Join(home, ".config")
	if xdgConfigHome, ok := lookupEnv(env, "XDG_CONFIG_HOME"); ok && xdgConfigHome != "" {
		configHome = xdgConfigHome
	}
	return filepath.Join(configHome, "agrolink", "config.toml"), nil
}
