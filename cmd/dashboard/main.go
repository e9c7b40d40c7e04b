package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-merchant-orders/internal/backend"
	"github.com/ariefcatur/go-merchant-orders/internal/bridge"
	"github.com/ariefcatur/go-merchant-orders/internal/config"
	"github.com/ariefcatur/go-merchant-orders/internal/httpx"
	kafkax "github.com/ariefcatur/go-merchant-orders/internal/kafka"
	"github.com/ariefcatur/go-merchant-orders/internal/notify"
	"github.com/ariefcatur/go-merchant-orders/internal/orders"
	"github.com/ariefcatur/go-merchant-orders/internal/postgres"
	"github.com/ariefcatur/go-merchant-orders/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("%v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis: online flag + dedup envelope
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer untuk keputusan operator
	prod := kafkax.NewProducer(cfg.KafkaBrokers, cfg.DecisionTopic, 1024)
	prod.Start(ctx)

	sinks := []notify.DecisionSink{
		&kafkax.DecisionPublisher{Producer: prod, ServiceName: cfg.ServiceName},
	}

	// DB (opsional)
	var journal httpx.Journal
	if cfg.PostgresDSN != "" {
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("db connect: %v", err)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
		repo := &orders.JournalRepo{DB: db}
		sinks = append(sinks, repo)
		journal = repo
	} else {
		log.Println("POSTGRES_DSN kosong, decision journal disabled")
	}

	hub := httpx.NewHub()
	go hub.Run(ctx)

	svc := notify.NewService(notify.Deps{
		Backend: &backend.Client{
			BaseURL: cfg.BackendURL,
			Token:   cfg.BackendToken,
			Timeout: cfg.BackendTimeout,
		},
		Sinks:      sinks,
		MerchantID: cfg.MerchantID,
		OnChange:   hub.Publish,
	})
	go svc.Run(ctx)

	// Transport bridge
	var tr bridge.Transport
	switch cfg.Transport {
	case "kafka":
		tr = &bridge.Kafka{Brokers: cfg.KafkaBrokers, Topic: orders.TopicMerchantOrders}
	case "ws":
		tr = &bridge.WebSocket{URL: cfg.SocketURL, Secret: []byte(cfg.SocketSecret)}
	default:
		log.Fatalf("unknown BRIDGE_TRANSPORT %q (ws|kafka)", cfg.Transport)
	}
	br := bridge.New(tr, bridge.Options{
		Flags:          &redisx.OnlineFlag{RDB: rdb},
		Dedup:          &redisx.Deduper{RDB: rdb, Service: cfg.ServiceName},
		ReconnectDelay: cfg.ReconnectDelay,
	})
	unbind := svc.Bind(br)
	defer unbind()

	if err := svc.Init(ctx); err != nil {
		// tidak fatal, Init bisa diulang lewat reload dashboard
		log.Printf("init backlog: %v", err)
	}

	id := bridge.Identity{MerchantID: cfg.MerchantID, Role: cfg.MerchantRole}
	if ok, err := br.Restore(ctx, id); err != nil {
		log.Printf("restore online flag: %v", err)
	} else if ok {
		log.Printf("restored online session for %s", id.MerchantID)
	}

	router := httpx.NewRouter()
	dh := &httpx.DashboardHandler{
		Service:  svc,
		Bridge:   br,
		Identity: id,
		Journal:  journal,
		Hub:      hub,
	}
	dh.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s (transport=%s merchant=%s)", cfg.HTTPAddr, cfg.Transport, cfg.MerchantID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		// handler yang masih jalan bisa Publish; producer sudah menolak pesan setelah Close
		log.Printf("http shutdown: %v", err)
	}
	// flag online tetap disimpan supaya restart langsung reconnect
	if err := br.Close(ctx2); err != nil {
		log.Printf("bridge close: %v", err)
	}
	svc.Dispose()
	prod.Close()      // tutup inbox -> flush & close writer
	cancel()          // stop producer loop, hub, countdown ticker
	prod.WaitClosed() // drain
}
