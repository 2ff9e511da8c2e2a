package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"weechat-relay/internal/config"
	"weechat-relay/internal/host"
	"weechat-relay/internal/relay"
)

var version = "0.1.0"

func main() {
	_ = godotenv.Load()

	defaultListen := getEnv("RELAY_LISTEN_ADDR", ":9000")
	defaultPassword := getEnv("RELAY_PASSWORD", "")
	defaultTOTP := getEnv("RELAY_TOTP_SECRET", "")
	defaultConfigFile := getEnv("RELAY_CONFIG_FILE", "")
	defaultVerbose := getEnv("VERBOSE", "false") == "true"

	listenAddr := flag.String("listen", defaultListen, "HTTP/WebSocket listen address (env: RELAY_LISTEN_ADDR)")
	password := flag.String("password", defaultPassword, "relay password (env: RELAY_PASSWORD)")
	totpSecret := flag.String("totp-secret", defaultTOTP, "base32 TOTP secret, empty disables two-factor (env: RELAY_TOTP_SECRET)")
	configFile := flag.String("config", defaultConfigFile, "ini-style config file to load on top of defaults (env: RELAY_CONFIG_FILE)")
	verbose := flag.Bool("v", defaultVerbose, "verbose logging (env: VERBOSE)")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	log := logger.WithField("component", "relay")

	log.Infof("weechat-relay v%s", version)
	log.Infof("listening on: %s", *listenAddr)

	store := config.New()
	config.RegisterRelayDefaults(store)
	if *configFile != "" {
		f, err := os.Open(*configFile)
		if err != nil {
			log.Fatalf("failed to open config file: %v", err)
		}
		if err := config.LoadINI(store, "relay", f); err != nil {
			f.Close()
			log.Fatalf("failed to load config file: %v", err)
		}
		f.Close()
	}
	if *password != "" {
		if err := store.Set("relay.network.password", *password); err != nil {
			log.Fatalf("failed to set password: %v", err)
		}
	}

	mem := host.NewMemory()
	srv := relay.NewServer(mem, store, log)
	srv.TOTPSecret = *totpSecret

	httpServer := &http.Server{
		Addr:    *listenAddr,
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info("relay running, press Ctrl+C to stop...")

	select {
	case sig := <-sigChan:
		log.Infof("received signal %v, shutting down...", sig)
	case err := <-errCh:
		log.Errorf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}

	log.Info("relay stopped, goodbye!")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
