package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Debasish241/RealTime-Chatapp/internal/configuration"
	"github.com/Debasish241/RealTime-Chatapp/internal/mail"
	"github.com/Debasish241/RealTime-Chatapp/internal/queue"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	flag.Parse()

	config, err := configuration.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	natsQueue, err := queue.Connect(config.Nats.Url)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsQueue.Close()

	consumer := mail.NewConsumer(natsQueue, config.SMTP, logger)
	if err := consumer.Start(); err != nil {
		log.Fatalf("Failed to start mail consumer: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received signal: %v. Shutting down mailer...", sig)
}
