package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"taxiclient/api"
	"taxiclient/cache"
	"taxiclient/config"
	"taxiclient/pkg/errs"
	"taxiclient/pkg/logger"
	"taxiclient/service"
	"taxiclient/session"
	"taxiclient/socket"
)

// hostHandshake stands in for the embedding application's bootstrap:
// the credential and actor id are opaque strings supplied from outside.
func hostHandshake() (string, string, error) {
	return os.Getenv("SESSION_CREDENTIAL"), os.Getenv("ACTOR_ID"), nil
}

func main() {
	// 1. Load Config
	cfg := config.Load()

	// 2. Initialize Logger
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	ctx := context.Background()

	// 3. Wait for the host handshake to yield a credential
	sess := session.New(hostHandshake, cfg.HandshakeMaxRetries, cfg.HandshakeRetryBase, log)
	if err := sess.Await(ctx); err != nil {
		log.Error("host handshake never became ready", logger.Error(err))
		os.Exit(1)
	}

	// 4. RPC client and role resolution
	client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, sess.Credential, log)
	if err := sess.Resolve(ctx, client); err != nil {
		if errors.Is(err, errs.ErrRoleNotAssigned) {
			log.Warning("no role selected yet, negotiation is blocked until one is chosen")
		} else {
			log.Error("failed to resolve role", logger.Error(err))
			os.Exit(1)
		}
	}

	// 5. Cache, push channel and services
	store := cache.New()
	channel := socket.New(cfg.SocketURL, sess.Credential, cfg.SocketMaxRetries, cfg.SocketRetryBase, log)
	svc := service.New(client, store, channel, sess, log)
	defer svc.Close()

	if err := channel.Open(ctx); err != nil {
		log.Error("failed to open push channel", logger.Error(err))
		os.Exit(1)
	}

	log.Info("🚕 negotiation client is running")

	// 6. Graceful shutdown listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info("shutting down")
}
