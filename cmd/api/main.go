package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gatherly.app/internal/auth"
	"gatherly.app/internal/httpapi"
	"gatherly.app/internal/invite"
	"gatherly.app/internal/obs"
	"gatherly.app/internal/social"
	"gatherly.app/internal/store/pg"
)

var version = "0.3.1"

const blacklistSweepInterval = 10 * time.Minute

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("GATHERLY_COMMIT"))

	authSecret := os.Getenv("GATHERLY_AUTH_SECRET")
	inviteSecret := os.Getenv("GATHERLY_INVITE_SECRET")
	if authSecret == "" || inviteSecret == "" {
		log.Fatal("GATHERLY_AUTH_SECRET and GATHERLY_INVITE_SECRET are required")
	}
	// One secret per signing domain: a session token must never be
	// replayable as an invite.
	if authSecret == inviteSecret {
		log.Fatal("GATHERLY_AUTH_SECRET and GATHERLY_INVITE_SECRET must differ")
	}

	authCodec, err := auth.NewCodec("auth", authSecret)
	if err != nil {
		log.Fatalf("auth codec: %v", err)
	}
	inviteCodec, err := auth.NewCodec("invite", inviteSecret)
	if err != nil {
		log.Fatalf("invite codec: %v", err)
	}

	baseURL := os.Getenv("GATHERLY_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// Postgres when a DSN is configured, in-memory otherwise (dev mode).
	var (
		store     social.Store
		blacklist auth.BlacklistStore
		probe     httpapi.ReadyProbe
	)
	if dsn := os.Getenv("GATHERLY_PG_DSN"); dsn != "" {
		pgStore, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer pgStore.Close()
		store = pgStore
		blacklist = pgStore
		probe = httpapi.ReadyProbe{DB: pgStore.DB()}
	} else {
		log.Print("GATHERLY_PG_DSN not set, using in-memory store")
		mem := social.NewInMemory()
		store = mem
		blacklist = mem
	}

	invites, err := invite.NewService(inviteCodec, store, baseURL)
	if err != nil {
		log.Fatalf("invite service: %v", err)
	}

	api, err := httpapi.New(httpapi.Config{
		Store:      store,
		Blacklist:  blacklist,
		AuthCodec:  authCodec,
		Invites:    invites,
		ReadyProbe: probe,
		Version:    version,
	})
	if err != nil {
		log.Fatalf("httpapi: %v", err)
	}

	addr := os.Getenv("GATHERLY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting gatherly-api %s on %s", version, srv.Addr)

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	// Sweep dead blacklist rows so revoked-token storage stays bounded.
	go func() {
		ticker := time.NewTicker(blacklistSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				if n, err := blacklist.PurgeExpired(rootCtx); err != nil {
					log.Printf("blacklist purge: %v", err)
				} else if n > 0 {
					log.Printf("blacklist purge: removed %d entries", n)
				}
			}
		}
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	cancelRoot()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
