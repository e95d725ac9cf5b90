package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Garsondee/vr-targets/internal/game"
	"github.com/Garsondee/vr-targets/internal/stream"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	variant := flag.String("variant", "targetvr", "game variant (targetvr, trafficvr)")
	seed := flag.Int64("seed", 1, "RNG seed for target placement")
	buffer := flag.Int("command-buffer", 64, "queued client commands before drops")
	flag.Parse()

	cfg, err := game.ConfigFor(*variant)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.Seed = *seed
	session, err := game.NewSession(cfg)
	if err != nil {
		log.Fatalf("session: %v", err)
	}

	hub := stream.NewHub(*buffer)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.Handle("/api/stats", hub.StatsHandler())
	srv := &http.Server{Addr: *addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		fmt.Println("Scene server listening on", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	if err := stream.NewLoop(session, hub).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("loop: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	fmt.Print(session.SimLog.Summary(session.State))
}
