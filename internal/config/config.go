package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

type Config struct {
	DB      DBConfig      `yaml:"db" mapstructure:"db"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Sync    SyncConfig    `yaml:"sync" mapstructure:"sync"`
}

type DBConfig struct {
	Driver   string `yaml:"driver" mapstructure:"driver"`
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Name     string `yaml:"name" mapstructure:"name"`
	// Path is the database file when Driver is sqlite3.
	Path string `yaml:"path" mapstructure:"path"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr" mapstructure:"addr"`
	JWTSecret   string   `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// StorageConfig picks where the CLI keeps its local copy.
type StorageConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"`
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
}

// SyncConfig enables the remote copy for the CLI. UserID 0 means local only.
type SyncConfig struct {
	UserID   int64         `yaml:"user_id" mapstructure:"user_id"`
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

func DefaultConfig() *Config {
	return &Config{
		DB: DBConfig{
			Driver: "postgres",
			Host:   "localhost",
			Port:   5432,
			Name:   "focusflow",
			Path:   filepath.Join(HomeDir(), "focusflow.db"),
		},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"http://localhost:5173"},
		},
		Storage: StorageConfig{
			Backend: StoreFile,
			DataDir: HomeDir(),
		},
		Sync: SyncConfig{
			Debounce: time.Second,
		},
	}
}

// Load layers defaults, ~/.focusflow/config.yaml, ./.focusflow/config.yaml
// and finally environment variables.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range []string{GlobalConfigPath(), ProjectConfigPath()} {
		if err := loadFile(path, cfg); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

func applyEnv(cfg *Config) error {
	setString(&cfg.DB.Driver, "DB_DRIVER")
	setString(&cfg.DB.Host, "DB_HOST")
	setString(&cfg.DB.User, "DB_USER")
	setString(&cfg.DB.Password, "DB_PASSWORD")
	setString(&cfg.DB.Name, "DB_NAME")
	setString(&cfg.DB.Path, "DB_PATH")
	setString(&cfg.Server.Addr, "FOCUSFLOW_ADDR")
	setString(&cfg.Server.JWTSecret, "JWT_SECRET")
	setString(&cfg.Storage.Backend, "FOCUSFLOW_STORE")
	setString(&cfg.Storage.DataDir, "FOCUSFLOW_DATA_DIR")

	// unparsable port falls back like the API always did
	if s := os.Getenv("DB_PORT"); s != "" {
		if port, err := strconv.Atoi(s); err == nil {
			cfg.DB.Port = port
		}
	}
	if s := os.Getenv("FOCUSFLOW_USER_ID"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("FOCUSFLOW_USER_ID: %w", err)
		}
		cfg.Sync.UserID = id
	}
	if s := os.Getenv("FOCUSFLOW_SYNC_DEBOUNCE"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("FOCUSFLOW_SYNC_DEBOUNCE: %w", err)
		}
		cfg.Sync.Debounce = d
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// ConnString is the DSN for the configured driver.
func (c *Config) ConnString() string {
	if c.DB.Driver == "sqlite3" {
		return c.DB.Path
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name,
	)
}

// YAML renders the config with secrets masked.
func (c *Config) YAML() ([]byte, error) {
	masked := *c
	if masked.DB.Password != "" {
		masked.DB.Password = "********"
	}
	if masked.Server.JWTSecret != "" {
		masked.Server.JWTSecret = "********"
	}
	return yaml.Marshal(&masked)
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	b, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".focusflow"
	}
	return filepath.Join(home, ".focusflow")
}

func GlobalConfigPath() string {
	return filepath.Join(HomeDir(), "config.yaml")
}

func ProjectConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".focusflow", "config.yaml")
	}
	return filepath.Join(cwd, ".focusflow", "config.yaml")
}
