package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
database:
  host: "localhost"
  port: 5432
  username: "u"
  password: "p"
  name: "db"
kafka:
  host: "localhost"
  port: 9092
  notifications_topic_name: "shipment.notifications"
redis:
  host: "localhost"
  port: 6379
deliverywatch:
  log_level: "debug"
  worker_poll_interval_seconds: 120
  worker_record_delay_millis: 500
  worker_http_addr: ":8082"
carrier:
  mode: "trackerdelivery"
  base_url: "https://apis.tracker.delivery"
notify:
  mode: "kafka"
crypto:
  contact_key: "0123456789abcdef"
`), 0o600))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.Equal(t, "u", cfg.Database.Username)
	require.Equal(t, "shipment.notifications", cfg.Kafka.NotificationsTopicName)
	require.Equal(t, 6379, cfg.Redis.Port)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Equal(t, 120, cfg.DeliveryWatch.WorkerPollIntervalSeconds)
	require.Equal(t, 500, cfg.DeliveryWatch.WorkerRecordDelayMillis)
	require.Equal(t, "trackerdelivery", cfg.Carrier.Mode)
	require.Equal(t, "kafka", cfg.Notify.Mode)
	require.Equal(t, "0123456789abcdef", cfg.Crypto.ContactKey)
}

func TestDatabaseConfig_ConnString(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, Username: "u", Password: "p", DBName: "db"}
	require.Equal(t, "postgres://u:p@h:5432/db?sslmode=disable", d.ConnString())

	d.SSLMode = "require"
	require.Equal(t, "postgres://u:p@h:5432/db?sslmode=require", d.ConnString())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
