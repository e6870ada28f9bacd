package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string      `yaml:"environment" default:"development" validate:"required"`
	Log         Log         `yaml:"log"`
	Server      Server      `yaml:"server"`
	Metrics     Metrics     `yaml:"metrics"`
	Data        Data        `yaml:"data"`
	Quotes      Quotes      `yaml:"quotes"`
	ClickHouse  ClickHouse  `yaml:"clickhouse"`
	Redis       Redis       `yaml:"redis"`
	Subscribers Subscribers `yaml:"subscribers"`
	Cache       Cache       `yaml:"cache"`
	Queue       Queue       `yaml:"queue"`
	Telegram    Telegram    `yaml:"telegram"`
	Mail        Mail        `yaml:"mail"`
	Kafka       Kafka       `yaml:"kafka"`
}

type Log struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=json console"`
	Output string `yaml:"output" default:"stdout"`
}

type Server struct {
	Enabled         bool          `yaml:"enabled" default:"true"`
	Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	RunBurst        int           `yaml:"run_burst" default:"3" validate:"gte=1"`
	RunsPerMinute   float64       `yaml:"runs_per_minute" default:"6" validate:"gt=0"`
}

type Metrics struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

type Data struct {
	Dir             string `yaml:"dir" default:"./data" validate:"required"`
	TextFile        string `yaml:"text_file" default:"market_close.txt" validate:"required"`
	SpreadsheetFile string `yaml:"spreadsheet_file" default:"market_close.xlsx" validate:"required"`
}

type Quotes struct {
	Provider   string            `yaml:"provider" default:"yahoo" validate:"oneof=yahoo financego clickhouse"`
	SearchURL  string            `yaml:"search_url" default:"https://query2.finance.yahoo.com/v1/finance/search"`
	ChartURL   string            `yaml:"chart_url" default:"https://query1.finance.yahoo.com/v8/finance/chart"`
	Timeout    time.Duration     `yaml:"timeout" default:"10s" validate:"gt=0"`
	Workers    int               `yaml:"workers" default:"1" validate:"gte=1,lte=32"`
	SearchKeys map[string]string `yaml:"search_keys"`
	Table      string            `yaml:"table" default:"marketclose.daily_close"`
}

type ClickHouse struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"marketclose"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"10s"`
}

type Redis struct {
	Addr     string `yaml:"addr" default:"localhost:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix" default:"marketclose"`
}

type Subscribers struct {
	Backend string `yaml:"backend" default:"file" validate:"oneof=file redis"`
	File    string `yaml:"file" default:"chats.txt"`
	Key     string `yaml:"key" default:"subscribers"`
}

type Cache struct {
	Backend string        `yaml:"backend" default:"memory" validate:"oneof=memory redis"`
	TTL     time.Duration `yaml:"ttl" default:"168h"`
}

type Queue struct {
	Backend    string        `yaml:"backend" default:"inline" validate:"oneof=inline redis"`
	Workers    int           `yaml:"workers" default:"1" validate:"gte=1"`
	RetryLimit int           `yaml:"retry_limit" default:"0" validate:"gte=0"`
	RetryDelay time.Duration `yaml:"retry_delay" default:"30s"`
	RunTimeout time.Duration `yaml:"run_timeout" default:"5m" validate:"gt=0"`
}

type Telegram struct {
	Enabled      bool          `yaml:"enabled" default:"true"`
	Token        string        `yaml:"token"`
	APIURL       string        `yaml:"api_url" default:"https://api.telegram.org"`
	Mode         string        `yaml:"mode" default:"polling" validate:"oneof=polling webhook"`
	PollInterval time.Duration `yaml:"poll_interval" default:"10s" validate:"gt=0"`
	WebhookPath  string        `yaml:"webhook_path" default:"/telegram/webhook"`
	AllowedChats []string      `yaml:"allowed_chats"`
	Notification string        `yaml:"notification" default:"Market close is ready - please check your mail"`
	Timeout      time.Duration `yaml:"timeout" default:"30s"`
}

type Mail struct {
	Enabled    bool          `yaml:"enabled" default:"true"`
	Host       string        `yaml:"host" default:"smtp.yandex.ru"`
	Port       int           `yaml:"port" default:"465"`
	Username   string        `yaml:"username"`
	Password   string        `yaml:"password"`
	Sender     string        `yaml:"sender"`
	SenderName string        `yaml:"sender_name" default:"Market Close"`
	Switch     string        `yaml:"switch" default:"test" validate:"oneof=prod test"`
	ToProd     []string      `yaml:"to_prod"`
	ToTest     []string      `yaml:"to_test"`
	Cc         []string      `yaml:"cc"`
	Body       string        `yaml:"body" default:"--\nBest regards"`
	Timeout    time.Duration `yaml:"timeout" default:"30s"`
}

type Kafka struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic" default:"marketclose.reports"`
	RequiredAcks int           `yaml:"required_acks" default:"-1"`
	Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
	MaxAttempts  int           `yaml:"max_attempts" default:"3"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
}

var validate = validator.New()

// Default returns a configuration populated only from struct defaults.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes on top of the defaults.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML, overrides with environment variables and validates.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.ApplyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides secrets and deployment specifics from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("TELEGRAM_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := getenv("MAIL_SENDER"); v != "" {
		c.Mail.Sender = v
		if c.Mail.Username == "" {
			c.Mail.Username = v
		}
	}
	if v := getenv("MAIL_PASSWORD"); v != "" {
		c.Mail.Password = v
	}
	if v := getenv("MAIL_SWITCH"); v != "" {
		c.Mail.Switch = v
	}
	if v := getenv("MAIL_TO_PROD"); v != "" {
		c.Mail.ToProd = splitList(v)
	}
	if v := getenv("MAIL_TO_TEST"); v != "" {
		c.Mail.ToTest = splitList(v)
	}
	if v := getenv("MAIL_CC"); v != "" {
		c.Mail.Cc = splitList(v)
	}
	if v := getenv("QUOTES_PROVIDER"); v != "" {
		c.Quotes.Provider = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := getenv("DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

// Validate checks struct constraints and the cross-field rules between sections.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Telegram.Enabled && c.Telegram.Token == "" {
		return errors.New("telegram.token is required when telegram is enabled")
	}
	if c.Mail.Enabled {
		if c.Mail.Sender == "" {
			return errors.New("mail.sender is required when mail is enabled")
		}
		if len(c.Mail.Recipients()) == 0 {
			return fmt.Errorf("mail.to_%s cannot be empty", c.Mail.Switch)
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Quotes.Provider == "clickhouse" && c.ClickHouse.Host == "" {
		return errors.New("clickhouse.host is required for the clickhouse quote provider")
	}
	if c.Telegram.Mode == "webhook" && !c.Server.Enabled {
		return errors.New("telegram webhook mode needs server.enabled")
	}
	return nil
}

// Recipients returns the To list selected by the prod/test switch.
func (m Mail) Recipients() []string {
	if m.Switch == "prod" {
		return m.ToProd
	}
	return m.ToTest
}

// UsesRedis reports whether any component is configured against Redis.
func (c *Config) UsesRedis() bool {
	return c.Subscribers.Backend == "redis" || c.Cache.Backend == "redis" || c.Queue.Backend == "redis"
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
