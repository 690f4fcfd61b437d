package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Password     PasswordConfig     `mapstructure:"password"`
	Feed         FeedConfig         `mapstructure:"feed"`
	Post         PostConfig         `mapstructure:"post"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Notification NotificationConfig `mapstructure:"notification"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	LogQueries   bool   `mapstructure:"log_queries"`
}

type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topics  Topics   `mapstructure:"topics"`
	GroupID string   `mapstructure:"group_id"`
}

type Topics struct {
	SocialEvents string `mapstructure:"social_events"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_time"`
}

// PasswordConfig holds the argon2id cost parameters. Memory is in KiB.
type PasswordConfig struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt_length"`
	KeyLength   uint32 `mapstructure:"key_length"`
}

type FeedConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

type PostConfig struct {
	MinBeers int `mapstructure:"min_beers"`
	MaxBeers int `mapstructure:"max_beers"`
}

type RateLimitConfig struct {
	AuthRequests int           `mapstructure:"auth_requests"`
	AuthWindow   time.Duration `mapstructure:"auth_window"`
}

type NotificationConfig struct {
	MaxItems int64         `mapstructure:"max_items"`
	TTL      time.Duration `mapstructure:"ttl"`
}

const envPrefix = "BEERBUDDY"

// LoadConfig reads CONFIG_PATH (default configs/config.yaml). A missing file
// leaves the defaults and environment overrides in place.
func LoadConfig() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	return LoadConfigFrom(configPath)
}

func LoadConfigFrom(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "beerbuddy")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.log_queries", false)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topics.social_events", "beerbuddy.social-events")
	v.SetDefault("kafka.group_id", "beerbuddy-notifications")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expire_time", "15m")

	v.SetDefault("password.memory", 64*1024)
	v.SetDefault("password.iterations", 3)
	v.SetDefault("password.parallelism", 4)
	v.SetDefault("password.salt_length", 16)
	v.SetDefault("password.key_length", 32)

	v.SetDefault("feed.default_limit", 10)
	v.SetDefault("feed.max_limit", 50)

	v.SetDefault("post.min_beers", 1)
	v.SetDefault("post.max_beers", 12)

	v.SetDefault("rate_limit.auth_requests", 20)
	v.SetDefault("rate_limit.auth_window", "1m")

	v.SetDefault("notification.max_items", 100)
	v.SetDefault("notification.ttl", "720h")
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required (set BEERBUDDY_JWT_SECRET)")
	}
	if c.JWT.ExpireTime <= 0 {
		return errors.New("jwt.expire_time must be positive")
	}
	if c.Post.MinBeers > c.Post.MaxBeers {
		return fmt.Errorf("post.min_beers (%d) exceeds post.max_beers (%d)", c.Post.MinBeers, c.Post.MaxBeers)
	}
	if c.Feed.DefaultLimit <= 0 || c.Feed.DefaultLimit > c.Feed.MaxLimit {
		return fmt.Errorf("feed.default_limit must be in 1..%d", c.Feed.MaxLimit)
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Addr is the listen address for http.Server. A bare port such as "9090"
// listens on all interfaces.
func (c *ServerConfig) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
