package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "yahoo", c.Quotes.Provider)
	assert.Equal(t, 1, c.Quotes.Workers)
	assert.Equal(t, "test", c.Mail.Switch)
	assert.Equal(t, "--\nBest regards", c.Mail.Body)
	assert.Equal(t, "Market close is ready - please check your mail", c.Telegram.Notification)
	assert.Equal(t, 10*time.Second, c.Telegram.PollInterval)
	assert.Equal(t, 0, c.Queue.RetryLimit)
	assert.Equal(t, "market_close.xlsx", c.Data.SpreadsheetFile)
	assert.False(t, c.UsesRedis())
}

func TestParse_ExampleFile(t *testing.T) {
	b, err := os.ReadFile(filepath.Join("..", "..", "config", "config.example.yaml"))
	require.NoError(t, err)

	c, err := Parse(b)
	require.NoError(t, err)
	assert.Equal(t, "^TNX", c.Quotes.SearchKeys["us10y"])
	assert.Equal(t, 4, c.Quotes.Workers)
	assert.Equal(t, "json", c.Log.Format)

	c.ApplyEnv(env(map[string]string{
		"TELEGRAM_TOKEN": "123:abc",
		"MAIL_SENDER":    "desk@example.com",
		"MAIL_PASSWORD":  "secret",
		"MAIL_TO_TEST":   "a@example.com, b@example.com",
	}))
	require.NoError(t, c.Validate())
	assert.Equal(t, "desk@example.com", c.Mail.Username)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, c.Mail.Recipients())
}

func TestLoadWithEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telegram:\n  enabled: false\nmail:\n  enabled: false\n"), 0o644))
	t.Setenv("QUOTES_PROVIDER", "financego")
	t.Setenv("HTTP_PORT", "9090")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "financego", c.Quotes.Provider)
	assert.Equal(t, 9090, c.Server.Port)
}

func TestApplyEnv_Switch(t *testing.T) {
	c := Default()
	c.ApplyEnv(env(map[string]string{
		"MAIL_SWITCH":   "prod",
		"MAIL_TO_PROD":  "desk@example.com",
		"MAIL_CC":       "boss@example.com",
		"KAFKA_BROKERS": "k1:9092,k2:9092",
		"DATA_DIR":      "/var/lib/marketclose",
	}))
	assert.Equal(t, []string{"desk@example.com"}, c.Mail.Recipients())
	assert.Equal(t, []string{"boss@example.com"}, c.Mail.Cc)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "/var/lib/marketclose", c.Data.Dir)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := Default()
		c.Telegram.Token = "t"
		c.Mail.Sender = "desk@example.com"
		c.Mail.ToTest = []string{"a@example.com"}
		return c
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		msg    string
	}{
		{"telegram token", func(c *Config) { c.Telegram.Token = "" }, "telegram.token"},
		{"mail sender", func(c *Config) { c.Mail.Sender = "" }, "mail.sender"},
		{"mail recipients", func(c *Config) { c.Mail.Switch = "prod" }, "mail.to_prod"},
		{"kafka brokers", func(c *Config) { c.Kafka.Enabled = true }, "kafka.brokers"},
		{"clickhouse host", func(c *Config) { c.Quotes.Provider = "clickhouse" }, "clickhouse.host"},
		{"webhook without server", func(c *Config) { c.Telegram.Mode = "webhook"; c.Server.Enabled = false }, "webhook"},
		{"provider", func(c *Config) { c.Quotes.Provider = "bloomberg" }, "Provider"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "Level"},
		{"poll interval", func(c *Config) { c.Telegram.PollInterval = -time.Second }, "PollInterval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestUsesRedis(t *testing.T) {
	c := Default()
	c.Queue.Backend = "redis"
	assert.True(t, c.UsesRedis())
}
