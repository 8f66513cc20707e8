package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blackjack-lite/internal/auth"
	"blackjack-lite/internal/config"
	"blackjack-lite/internal/gateway"
	"blackjack-lite/internal/ledger"
	"blackjack-lite/internal/lobby"
)

func main() {
	configPath := flag.String("config", "", "path to server config TOML")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[Server] Failed to load config: %v", err)
	}

	store, storeMode, err := ledger.NewStore(cfg.Ledger.Mode, cfg.Ledger.Path, cfg.Ledger.DSN)
	if err != nil {
		log.Fatalf("[Server] Failed to init ledger store: %v", err)
	}
	led, err := ledger.New(store, ledger.Options{
		DefaultBalance: cfg.Ledger.DefaultBalance,
		FlushDebounce:  cfg.FlushDebounce(),
	})
	if err != nil {
		log.Fatalf("[Server] Failed to init ledger: %v", err)
	}

	authService := auth.NewManager()
	lby := lobby.New(cfg.GameRules(), led)
	gw := gateway.New(authService, lby, led)
	authHTTP := auth.NewHTTPHandler(authService, led)
	ledgerHTTP := ledger.NewHTTPHandler(authService, led)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	authHTTP.RegisterRoutes(mux)
	ledgerHTTP.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	// idle session sweep
	sweepDone := make(chan struct{})
	if idle := cfg.IdleTimeout(); idle > 0 {
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-sweepDone:
					return
				case <-ticker.C:
					for _, res := range lby.ExpireIdle(idle) {
						gw.AnnounceResolution(res)
					}
				}
			}
		}()
	}

	go func() {
		log.Printf("[Server] Ledger mode: %s", storeMode)
		log.Printf("[Server] Starting WebSocket server on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[Server] Failed to start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Printf("[Server] Shutting down")

	close(sweepDone)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[Server] Shutdown error: %v", err)
	}
	if err := led.Close(); err != nil {
		log.Printf("[Server] Ledger close error: %v", err)
	}
	_ = authService.Close()
}
