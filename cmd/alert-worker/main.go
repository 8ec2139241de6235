package main

import (
	"context"
	"errors"
	"os"
	"time"

	"finanzapp/internal/amqp"
	"finanzapp/internal/cli"
	"finanzapp/internal/log"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentAMQP)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentAMQP)

	logger.Info("Starting alert-worker",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, func(context.Context) {
		if err := client.Close(); err != nil {
			logger.Error("Failed to close AMQP client", log.FieldError, err)
		}
	})

	err = client.ConsumeAlerts(ctx, func(ctx context.Context, msg *amqp.AlertMessage) error {
		logger.InfoContext(ctx, msg.Alert.Title,
			"message_id", msg.ID,
			log.FieldBand, string(msg.Alert.Band),
			log.FieldSpent, msg.Alert.Payload.Spent.String(),
			log.FieldLimit, msg.Alert.Payload.Limit.String(),
			"body", msg.Alert.Body,
			"priority", msg.Alert.Priority)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
		logger.Error("Alert consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Alert worker stopped")
}
