package chronicler

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/hearthglen/chronicler/internal/app"
	"github.com/hearthglen/chronicler/internal/chronicle"
	"github.com/hearthglen/chronicler/internal/dice"
	"github.com/hearthglen/chronicler/internal/narrative"
	"github.com/hearthglen/chronicler/internal/storage/memory"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DataDir == "" {
		t.Fatal("data dir default missing")
	}
	if cfg.ContextBudget <= 0 {
		t.Fatalf("context budget = %d", cfg.ContextBudget)
	}
	if cfg.RecentScenes <= 0 {
		t.Fatalf("recent scenes = %d", cfg.RecentScenes)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("CHRONICLER_SESSION", "from-env")
	t.Setenv("CHRONICLER_CONTEXT_BUDGET", "1000")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-session", "from-flag", "-context-budget", "2048"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Session != "from-flag" {
		t.Fatalf("session = %s", cfg.Session)
	}
	if cfg.ContextBudget != 2048 {
		t.Fatalf("context budget = %d", cfg.ContextBudget)
	}
}

func TestLoadOrCreateSession(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	existing := chronicle.NewSession("sess-1", time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	if err := store.SaveSession(ctx, existing); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := loadOrCreateSession(ctx, store, "sess-1")
	if err != nil {
		t.Fatalf("load existing: %v", err)
	}
	if loaded.ID != "sess-1" || !loaded.CreatedAt.Equal(existing.CreatedAt) {
		t.Fatalf("loaded = %+v", loaded)
	}

	created, err := loadOrCreateSession(ctx, store, "sess-2")
	if err != nil {
		t.Fatalf("create named: %v", err)
	}
	if created.ID != "sess-2" {
		t.Fatalf("created id = %s", created.ID)
	}

	fresh, err := loadOrCreateSession(ctx, store, "")
	if err != nil {
		t.Fatalf("create fresh: %v", err)
	}
	if fresh.ID == "" {
		t.Fatal("fresh session has no id")
	}
}

func newTestService(t *testing.T) *app.Service {
	t.Helper()
	session := chronicle.NewSession("sess-1", time.Now().UTC())
	log := chronicle.NewLog(session, memory.New(),
		chronicle.WithRegistry(chronicle.CoreRegistry()))
	assembler := narrative.New(narrative.Budget{Limit: 100000, RecentScenes: 3}, nil)
	svc, err := app.New(log, assembler, nil, app.WithRNG(dice.NewSeeded(1)))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestExecLineSceneLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	var out bytes.Buffer

	if _, err := execLine(ctx, svc, "mira", "/scene The Tavern @ Dockside", &out); err != nil {
		t.Fatalf("/scene: %v", err)
	}
	if !strings.Contains(out.String(), "started") {
		t.Fatalf("output = %q", out.String())
	}
	stats := svc.Stats()
	if stats.SceneCount != 1 || stats.ActiveSceneID == "" {
		t.Fatalf("stats = %+v", stats)
	}

	out.Reset()
	if _, err := execLine(ctx, svc, "mira", "/roll 2d6+3", &out); err != nil {
		t.Fatalf("/roll: %v", err)
	}
	if !strings.Contains(out.String(), "2d6:") {
		t.Fatalf("roll output = %q", out.String())
	}

	out.Reset()
	if _, err := execLine(ctx, svc, "mira", "/end a quiet night", &out); err != nil {
		t.Fatalf("/end: %v", err)
	}
	if svc.Stats().ActiveSceneID != "" {
		t.Fatal("scene still active")
	}
}

func TestExecLineErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	var out bytes.Buffer

	if _, err := execLine(ctx, svc, "mira", "/roll d0", &out); err == nil {
		t.Fatal("expected notation error")
	}
	if _, err := execLine(ctx, svc, "mira", "/end", &out); err == nil {
		t.Fatal("expected no-active-scene error")
	}
	if _, err := execLine(ctx, svc, "mira", "/teleport", &out); err == nil {
		t.Fatal("expected unknown command error")
	}
}

func TestExecLineQuit(t *testing.T) {
	svc := newTestService(t)
	quit, err := execLine(context.Background(), svc, "mira", "/quit", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("/quit: %v", err)
	}
	if !quit {
		t.Fatal("quit not signaled")
	}
}

func TestSplitSceneArgs(t *testing.T) {
	tests := []struct {
		args     string
		title    string
		location string
	}{
		{"The Tavern @ Dockside", "The Tavern", "Dockside"},
		{"The Tavern", "The Tavern", ""},
		{"Meeting @ the docks @ night", "Meeting @ the docks", "night"},
	}
	for _, tt := range tests {
		title, location := splitSceneArgs(tt.args)
		if title != tt.title || location != tt.location {
			t.Fatalf("splitSceneArgs(%q) = %q, %q", tt.args, title, location)
		}
	}
}
