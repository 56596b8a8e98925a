package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Stream   StreamConfig   `mapstructure:"stream"`
	Intake   IntakeConfig   `mapstructure:"intake"`
	Board    BoardConfig    `mapstructure:"board"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Features FeaturesConfig `mapstructure:"features"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StreamConfig points at the external task-update WebSocket feed.
type StreamConfig struct {
	URL               string        `mapstructure:"url"`
	HandshakeTimeout  time.Duration `mapstructure:"handshake_timeout"`
	ReconnectInterval time.Duration `mapstructure:"reconnect_interval"`
	ReadLimit         int64         `mapstructure:"read_limit"`
	Buffer            int           `mapstructure:"buffer"`
}

// IntakeConfig points at the external task-intake service.
type IntakeConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type BoardConfig struct {
	Nodes         []string `mapstructure:"nodes"`
	DefaultWorker string   `mapstructure:"default_worker"`
	Capacity      int      `mapstructure:"capacity"`
}

type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Retention       time.Duration `mapstructure:"retention"`
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type LoggerConfig struct {
	Level            string     `mapstructure:"level"`
	Encoding         string     `mapstructure:"encoding"`
	OutputPaths      []string   `mapstructure:"output_paths"`
	ErrorOutputPaths []string   `mapstructure:"error_output_paths"`
	File             FileConfig `mapstructure:"file"`
}

// FileConfig enables a rotating log file next to the regular outputs.
type FileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type FeaturesConfig struct {
	RequestIDHeader      string `mapstructure:"request_id_header"`
	EnableRequestLogging bool   `mapstructure:"enable_request_logging"`
}

type AuthConfig struct {
	AdminAPIKey    string   `mapstructure:"admin_api_key"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("stream.url", "ws://localhost:8081/ws")
	v.SetDefault("stream.handshake_timeout", 10*time.Second)
	v.SetDefault("stream.reconnect_interval", 0)
	v.SetDefault("stream.read_limit", 0)
	v.SetDefault("stream.buffer", 64)

	v.SetDefault("intake.base_url", "http://localhost:8080")
	v.SetDefault("intake.timeout", 10*time.Second)

	v.SetDefault("board.nodes", []string{"manager", "worker-1", "worker-2", "worker-3"})
	v.SetDefault("board.default_worker", "manager")
	v.SetDefault("board.capacity", 12)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "distritask.db")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.retention", 7*24*time.Hour)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("logger.output_paths", []string{"stdout"})
	v.SetDefault("logger.error_output_paths", []string{"stderr"})
	v.SetDefault("logger.file.max_size_mb", 100)
	v.SetDefault("logger.file.max_backups", 3)
	v.SetDefault("logger.file.max_age_days", 28)

	v.SetDefault("features.request_id_header", "X-Request-ID")
	v.SetDefault("features.enable_request_logging", true)

	v.SetDefault("auth.allowed_origins", []string{"http://localhost:3000"})
}

// Load reads the config file at path (optional) and overlays DISTRITASK_* env vars.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DISTRITASK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Board.Capacity <= 0 {
		return fmt.Errorf("board.capacity must be positive, got %d", c.Board.Capacity)
	}
	if len(c.Board.Nodes) == 0 {
		return fmt.Errorf("board.nodes must list at least one node")
	}
	if c.Stream.URL == "" {
		return fmt.Errorf("stream.url is required")
	}
	if c.Intake.BaseURL == "" {
		return fmt.Errorf("intake.base_url is required")
	}
	return nil
}
