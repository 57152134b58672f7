package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/Tyrowin/roomchat/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment variables")
	}
	setupLogger()

	log.Info("Starting room chat server...")

	config := server.NewConfigFromEnv()
	gateway := server.New(config)
	go gateway.Run()

	httpServer := server.CreateServer(gateway.Config().Port, server.SetupRoutes(gateway))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.StartServer(httpServer)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Fatal("Server error")
		}
		return
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	timeout := gateway.Config().ShutdownTimeout
	if err := server.ShutdownServer(httpServer, timeout); err != nil {
		log.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	if err := gateway.Shutdown(timeout); err != nil {
		log.WithError(err).Warn("Gateway did not shut down cleanly")
	}
	log.Info("Server stopped")
}

func setupLogger() {
	level, err := log.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
