// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "TASKMGR"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Repository RepositoryConfig `mapstructure:"repository"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Files      FilesConfig      `mapstructure:"files"`
	Client     ClientConfig     `mapstructure:"client"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimitRPM    int           `mapstructure:"rate_limit_rpm"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int32         `mapstructure:"max_connections"`
	MinConnections int32         `mapstructure:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

type RepositoryConfig struct {
	Type string `mapstructure:"type"` // "postgres" or "inmemory"
}

// AuthConfig controls bearer token verification. An empty secret means tokens
// are decoded without signature verification.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type FilesConfig struct {
	Dir     string `mapstructure:"dir"`
	MaxSize int64  `mapstructure:"max_size"`
}

// ClientConfig is read by taskctl only.
type ClientConfig struct {
	BaseURL               string        `mapstructure:"base_url"`
	NotificationsDB       string        `mapstructure:"notifications_db"`
	RefreshInterval       time.Duration `mapstructure:"refresh_interval"`
	Retries               uint64        `mapstructure:"retries"`
	RequestTimeout        time.Duration `mapstructure:"request_timeout"`
	AssignedToUsersPolicy string        `mapstructure:"assigned_to_users_policy"`
	ViewerEmail           string        `mapstructure:"viewer_email"`
	ViewerName            string        `mapstructure:"viewer_name"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit_rpm", 100)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.idle_timeout", 5*time.Minute)

	v.SetDefault("logging.development", false)
	v.SetDefault("repository.type", "inmemory")

	v.SetDefault("files.dir", "uploads/images")
	v.SetDefault("files.max_size", 5*1024*1024)

	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.notifications_db", defaultNotificationsDB())
	v.SetDefault("client.refresh_interval", 30*time.Second)
	v.SetDefault("client.retries", 3)
	v.SetDefault("client.request_timeout", 30*time.Second)
	v.SetDefault("client.assigned_to_users_policy", "inclusive")
}

// Load reads the YAML file at path (if it exists), then applies TASKMGR_*
// environment overrides on top of the defaults. An empty path means config.yml.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = "config.yml"
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Repository.Type {
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres repository")
		}
	case "inmemory":
	default:
		return fmt.Errorf("unknown repository.type %q", c.Repository.Type)
	}
	if c.Files.MaxSize <= 0 {
		return fmt.Errorf("files.max_size must be positive")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func defaultNotificationsDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "taskctl-notifications.db"
	}
	return home + "/.config/taskctl/notifications.db"
}
