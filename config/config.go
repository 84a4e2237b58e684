package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database      DatabaseConfig      `yaml:"database"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Redis         RedisConfig         `yaml:"redis"`
	DeliveryWatch DeliveryWatchConfig `yaml:"deliverywatch"`
	Carrier       CarrierConfig       `yaml:"carrier"`
	Notify        NotifyConfig        `yaml:"notify"`
	Crypto        CryptoConfig        `yaml:"crypto"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// ConnString builds a pgx connection string, defaulting sslmode to "disable".
func (d DatabaseConfig) ConnString() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.DBName, sslMode)
}

type KafkaConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	NotificationsTopicName string `yaml:"notifications_topic_name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type DeliveryWatchConfig struct {
	LogLevel string `yaml:"log_level"`

	WorkerPollIntervalSeconds int    `yaml:"worker_poll_interval_seconds"`
	WorkerRecordDelayMillis   int    `yaml:"worker_record_delay_millis"`
	WorkerRateLimitPerMinute  int    `yaml:"worker_rate_limit_per_minute"`
	WorkerHTTPAddr            string `yaml:"worker_http_addr"`

	CarrierTimeoutSeconds int `yaml:"carrier_timeout_seconds"`
	NotifyTimeoutSeconds  int `yaml:"notify_timeout_seconds"`

	ContactCacheTTLSeconds int `yaml:"contact_cache_ttl_seconds"`

	RelayConsumerGroup   string `yaml:"relay_consumer_group"`
	RelayDedupTTLSeconds int    `yaml:"relay_dedup_ttl_seconds"`
}

type CarrierConfig struct {
	Mode    string `yaml:"mode"` // "trackerdelivery" | "track24" | "fake"
	BaseURL string `yaml:"base_url"`

	// Track24 only.
	APIKey string `yaml:"api_key"`
	Domain string `yaml:"domain"`
}

type NotifyConfig struct {
	Mode      string `yaml:"mode"` // "sms" | "kafka"
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	From      string `yaml:"from"`
}

type CryptoConfig struct {
	// ContactKey is the AES-128 key (16 bytes, raw) used for stored phone numbers.
	ContactKey string `yaml:"contact_key"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}
