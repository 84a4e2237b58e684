package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/DeliveryWatch/config"
	"github.com/BearBump/DeliveryWatch/internal/broker/kafka"
	"github.com/BearBump/DeliveryWatch/internal/cache/rediscache"
	"github.com/BearBump/DeliveryWatch/internal/integrations/notify/smsgateway"
	"github.com/BearBump/DeliveryWatch/internal/logging"
)

type relayApp struct {
	ctx      context.Context
	cancel   context.CancelFunc
	relay    *relay
	consumer *kafka.Consumer
	cache    *rediscache.RedisCache
	topic    string
	group    string
}

func mustBootstrapRelay() *relayApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	logging.Setup(os.Stdout, cfg.DeliveryWatch.LogLevel, "service", "notify-relay")

	s := relaySettingsFromConfig(cfg)

	rc := rediscache.New(cfg.Redis.Addr())
	sms := smsgateway.New(cfg.Notify.BaseURL, cfg.Notify.APIKey, cfg.Notify.APISecret, cfg.Notify.From, s.sendTimeout)

	brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
	consumer := kafka.NewConsumer(brokers, s.topic, s.group)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &relayApp{
		ctx:      ctx,
		cancel:   cancel,
		relay:    newRelay(sms, rc, s.dedupTTL, s.sendTimeout),
		consumer: consumer,
		cache:    rc,
		topic:    s.topic,
		group:    s.group,
	}
}

type relaySettings struct {
	topic       string
	group       string
	dedupTTL    time.Duration
	sendTimeout time.Duration
}

func relaySettingsFromConfig(cfg *config.Config) relaySettings {
	s := relaySettings{
		topic:       cfg.Kafka.NotificationsTopicName,
		group:       cfg.DeliveryWatch.RelayConsumerGroup,
		dedupTTL:    time.Duration(cfg.DeliveryWatch.RelayDedupTTLSeconds) * time.Second,
		sendTimeout: time.Duration(cfg.DeliveryWatch.NotifyTimeoutSeconds) * time.Second,
	}
	if s.topic == "" {
		s.topic = "shipment.notifications"
	}
	if s.group == "" {
		s.group = "notify-relay"
	}
	if s.dedupTTL <= 0 {
		s.dedupTTL = 24 * time.Hour
	}
	if s.sendTimeout <= 0 {
		s.sendTimeout = 10 * time.Second
	}
	return s
}

func (a *relayApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.consumer != nil {
		_ = a.consumer.Close()
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
}

func (a *relayApp) Run() error {
	return runRelay(a.ctx, a.relay, a.consumer, a.topic, a.group)
}
