// File: cmd/server/main.go
// MUD Engine - process entry point: wires the world store, session
// registry, event bus, combat engine, monster lifecycle, scheduler,
// broadcast router, and command dispatcher behind the Telnet
// transport, then runs until a shutdown signal arrives.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mudengine/internal/adminws"
	"mudengine/internal/broadcast"
	"mudengine/internal/combat"
	"mudengine/internal/command"
	"mudengine/internal/config"
	"mudengine/internal/database"
	"mudengine/internal/eventbus"
	"mudengine/internal/monster"
	"mudengine/internal/movement"
	"mudengine/internal/scheduler"
	"mudengine/internal/server"
	"mudengine/internal/session"
	"mudengine/internal/telnet"
	"mudengine/internal/world"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.LogConfig()
	log.Printf("%s v%s starting up...", cfg.ServerName, cfg.ServerVersion)

	if err := database.Initialize(cfg); err != nil {
		log.Fatalf("database init: %v", err)
	}
	defer database.Close()

	if err := database.InitCache(cfg); err != nil {
		log.Printf("redis cache disabled: %v", err)
	}
	defer database.GetCache().Close()

	bus := eventbus.New(nil)
	bus.Start()
	defer bus.Stop()

	store := world.New(cfg.DefaultSpawnRoomID, nil)
	if err := store.Load(); err != nil {
		log.Fatalf("world load: %v", err)
	}

	sessions := session.NewRegistry(bus,
		time.Duration(cfg.SessionIdleTimeoutMins)*time.Minute,
		time.Duration(cfg.SessionReaperIntervalSecs)*time.Second, nil)
	go sessions.RunReaper()
	defer sessions.Stop()

	router := broadcast.New(sessions, bus)

	combatEngine := combat.NewEngine(store, sessions, bus, router,
		time.Duration(cfg.CombatTurnTimeoutSecs)*time.Second, cfg.DefaultSpawnRoomID, nil)

	lifecycle := monster.New(store, bus, router, nil)
	go lifecycle.Run()
	defer lifecycle.Stop()

	sched := scheduler.New(bus, router, nil)
	go sched.Run()
	go sched.RunDayNight()
	defer sched.Stop()

	mover := &movement.Mover{Store: store, Sessions: sessions, Bus: bus, Broadcast: router, Combat: combatEngine, Scheduler: sched}

	ctx := &command.Context{
		Store: store, Sessions: sessions, Bus: bus, Broadcaster: router,
		Mover: mover, Combat: combatEngine, Lifecycle: lifecycle, Scheduler: sched, Config: cfg,
	}
	registry := command.NewStandardRegistry(bus)
	srv := &server.Server{Ctx: ctx, Cfg: cfg, Commands: registry}

	ln, err := telnet.Listen(fmt.Sprintf(":%d", cfg.TelnetPort))
	if err != nil {
		log.Fatalf("telnet listen: %v", err)
	}
	go func() {
		log.Printf("Telnet listening on :%d", cfg.TelnetPort)
		err := ln.Serve(func(conn *telnet.Conn) {
			sess := session.New(nextSessionID(), conn, conn.RemoteAddrString())
			srv.HandleConnection(sess)
		})
		if err != nil {
			log.Printf("telnet listener stopped: %v", err)
		}
	}()

	hub := adminws.NewHub(bus, nil)
	mux := http.NewServeMux()
	mux.Handle("/admin/ws", hub)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Printf("Admin websocket: ws://localhost:%d/admin/ws", cfg.ServerPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("admin http server error: %v", err)
		}
	}()

	bus.Publish(eventbus.Event{Kind: eventbus.ServerStarted, Source: "main"})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal: %v", sig)
	performGracefulShutdown(ln, httpServer, sessions, bus, cfg)
}

// performGracefulShutdown mirrors the teacher's five-numbered-step
// sequence, retargeted at the telnet listener and session registry.
func performGracefulShutdown(ln *telnet.Listener, httpServer *http.Server, sessions *session.Registry, bus *eventbus.Bus, cfg *config.Config) {
	log.Printf("%s v%s shutting down...", cfg.ServerName, cfg.ServerVersion)

	log.Println("[1/5] Stopping new connections...")
	ln.Close()

	log.Println("[2/5] Notifying connected players...")
	for _, s := range sessions.AllAuthenticated() {
		s.IO.WriteLine("\r\nServer is shutting down. Goodbye!\r\n")
		s.IO.Close("server shutdown")
	}

	log.Println("[3/5] Flushing session logout timestamps...")
	for _, s := range sessions.AllAuthenticated() {
		if pid := s.PlayerID(); pid != "" {
			database.UpdatePlayerLogoutStamp(pid)
		}
	}

	log.Println("[4/5] Publishing shutdown event...")
	bus.Publish(eventbus.Event{Kind: eventbus.ServerStopping, Source: "main"})
	time.Sleep(200 * time.Millisecond)

	log.Println("[5/5] Shutting down admin HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSecs)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("admin http server shutdown error: %v", err)
	}

	log.Printf("%s v%s offline.", cfg.ServerName, cfg.ServerVersion)
}

var sessionCounter int64

func nextSessionID() string {
	sessionCounter++
	return fmt.Sprintf("sess-%d-%d", time.Now().UnixNano(), sessionCounter)
}
