package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/queue"
	"github.com/claude/liftlog/internal/sync"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "LiftLog server URL (e.g. https://liftlog.tail1234.ts.net)")
	stateDir := flag.String("state-dir", "", "queue state directory (default ~/.liftlog-agent)")
	interval := flag.Duration("interval", sync.DefaultInterval, "background drain interval")
	enqueue := flag.String("enqueue", "", "enqueue one action (e.g. UPDATE_SET) and exit after draining")
	payload := flag.String("payload", "{}", "JSON payload for -enqueue")
	once := flag.Bool("once", false, "drain the queue once and exit")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-agent", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-agent -server <URL> [-once] [-enqueue ACTION -payload JSON]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	*serverURL = strings.TrimRight(*serverURL, "/")

	dir := *stateDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		dir = filepath.Join(homeDir, ".liftlog-agent")
	}

	q, err := queue.Open(dir)
	if err != nil {
		log.Error("failed to open queue", "error", err)
		os.Exit(1)
	}
	defer q.Close()

	engine := sync.NewEngine(q, sync.NewClient(*serverURL), log, func(count int) {
		log.Debug("pending actions", "count", count)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *enqueue != "" {
		action := models.ActionType(*enqueue)
		if !action.Valid() {
			log.Error("unknown action", "action", *enqueue)
			os.Exit(1)
		}
		if !json.Valid([]byte(*payload)) {
			log.Error("payload is not valid JSON")
			os.Exit(1)
		}
		id, err := engine.Enqueue(ctx, action, json.RawMessage(*payload))
		if err != nil {
			log.Error("enqueue failed", "error", err)
			os.Exit(1)
		}
		log.Info("action enqueued", "id", id, "action", action)
		reportDepth(q, log)
		return
	}

	if *once {
		engine.Sync(ctx)
		reportDepth(q, log)
		return
	}

	engine.SetInterval(*interval)
	log.Info("agent starting", "server", *serverURL, "state_dir", dir, "interval", *interval)
	engine.Run(ctx)
	log.Info("agent stopped")
}

func reportDepth(q *queue.Queue, log *slog.Logger) {
	count, err := q.Count()
	if err != nil {
		log.Warn("counting queue failed", "error", err)
		return
	}
	log.Info("queue depth", "count", count)
}
