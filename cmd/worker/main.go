package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openregulations/docketflow/config"
	"github.com/openregulations/docketflow/internal/clients"
	"github.com/openregulations/docketflow/internal/clients/kafka_client"
	"github.com/openregulations/docketflow/internal/consumers"
	"github.com/openregulations/docketflow/internal/db"
	"github.com/openregulations/docketflow/internal/logging"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := kafka_client.GetKafkaConfig()

	for {
		err := kafka_client.InitProducer(cfg)
		if err == nil {
			break
		}

		slog.Warn("Kafka init failed, retrying...", slog.String("error", err.Error()))
		time.Sleep(5 * time.Second)
	}
	defer kafka_client.CloseProducer()

	clients.InitValkey()
	defer clients.CloseValkey()

	db.InitDynamoDB()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stopChan
		slog.Info("Shutting down worker gracefully...")
		cancel()
	}()

	kafka_client.RegisterConsumer(kafka_client.KAFKA_TOPIC_ANALYSIS_REQUESTS, consumers.StartAnalysisConsumer)

	if err := kafka_client.StartConsumer(ctx, cfg); err != nil {
		slog.Error("[Main] Failed to start consumer",
			slog.String("error", err.Error()))
	}
}
