package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/catalog"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/config"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/events"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/httpx"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/idempotency"
	kafkax "github.com/ariefcatur/go-commerce-ledger.git/internal/kafka"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/orders"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/payments"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/pg"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/postgres"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/redisx"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/stock"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, satu per topic
	pAuth := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicPaymentAuthorized, 1024)
	pAuth.Start(ctx)
	pFail := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicPaymentFailed, 1024)
	pFail.Start(ctx)
	pPaid := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderPaid, 1024)
	pPaid.Start(ctx)
	pCancel := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderCancelled, 1024)
	pCancel.Start(ctx)
	pStock := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicStockAdjusted, 1024)
	pStock.Start(ctx)
	producers := []*kafkax.Producer{pAuth, pFail, pPaid, pCancel, pStock}

	emitter := events.NewEmitter(cfg.ServiceName).
		Register(events.TopicPaymentAuthorized, pAuth).
		Register(events.TopicPaymentFailed, pFail).
		Register(events.TopicOrderPaid, pPaid).
		Register(events.TopicOrderCancelled, pCancel).
		Register(events.TopicStockAdjusted, pStock)

	// Repos & services
	ledger := stock.NewLedger(&stock.PgRepo{DB: db})
	cat := &catalog.PgCatalog{DB: db}
	idemSvc := idempotency.NewService(&idempotency.PgRepo{DB: db})
	orderSvc := orders.NewService(&orders.PgRepo{DB: db}, cat, ledger, emitter)
	paySvc := payments.NewService(&payments.PgRepo{DB: db}, orderSvc, pg.NewMockClient(), idemSvc, emitter)

	// Router & handlers
	router := httpx.NewRouter()
	(&httpx.OrdersHandler{Svc: orderSvc, Catalog: cat, Redis: rdb}).Register(router)
	(&httpx.PaymentsHandler{Svc: paySvc, Redis: rdb}).Register(router)
	(&httpx.StockHandler{Ledger: ledger, Emitter: emitter}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// sweeper key idempotency expired
		err := idemSvc.RunSweeper(gctx, cfg.SweepInterval)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Println("shutting down...")
	case <-gctx.Done():
	}

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	cancel()
	if err := g.Wait(); err != nil {
		log.Printf("exit: %v", err)
	}
	for _, p := range producers {
		p.WaitClosed() // Start loop sudah flush & close saat ctx cancel
	}
}
