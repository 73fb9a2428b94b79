package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/config"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/events"
	kafkax "github.com/ariefcatur/go-commerce-ledger.git/internal/kafka"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/notify"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/redisx"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-notifier",
	}

	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := config.Atoi(os.Getenv("NOTIFIER_WORKERS"), 4)

	// satu consumer per topic, group sama
	topics := []string{
		events.TopicPaymentAuthorized,
		events.TopicPaymentFailed,
		events.TopicOrderCancelled,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, topic := range topics {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers)
		t := topic
		g.Go(func() error {
			log.Printf("notifier consumer started: group=%s topic=%s workers=%d", group, t, workers)
			return cons.Start(gctx, svc.Handle)
		})
	}

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Println("shutting down consumers...")
	case <-gctx.Done():
	}
	cancel()
	if err := g.Wait(); err != nil {
		log.Printf("consumer exit: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
