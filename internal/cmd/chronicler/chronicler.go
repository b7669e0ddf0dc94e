// Package chronicler parses command flags and runs the interactive session
// loop.
package chronicler

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hearthglen/chronicler/internal/ai"
	"github.com/hearthglen/chronicler/internal/app"
	"github.com/hearthglen/chronicler/internal/chronicle"
	"github.com/hearthglen/chronicler/internal/narrative"
	"github.com/hearthglen/chronicler/internal/platform/config"
	"github.com/hearthglen/chronicler/internal/platform/id"
	"github.com/hearthglen/chronicler/internal/storage"
	"github.com/hearthglen/chronicler/internal/storage/sqlite"
)

// Config holds chronicler command configuration.
type Config struct {
	DataDir       string `env:"CHRONICLER_DATA_DIR" envDefault:"."`
	Session       string `env:"CHRONICLER_SESSION"`
	Player        string `env:"CHRONICLER_PLAYER" envDefault:"player"`
	Model         string `env:"CHRONICLER_MODEL" envDefault:"gpt-4o-mini"`
	APIKey        string `env:"OPENAI_API_KEY"`
	BaseURL       string `env:"OPENAI_BASE_URL"`
	ContextBudget int    `env:"CHRONICLER_CONTEXT_BUDGET" envDefault:"4096"`
	RecentScenes  int    `env:"CHRONICLER_RECENT_SCENES" envDefault:"3"`
	Debug         bool   `env:"CHRONICLER_DEBUG"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory holding the session database")
	fs.StringVar(&cfg.Session, "session", cfg.Session, "Session id to resume (created when missing)")
	fs.StringVar(&cfg.Player, "player", cfg.Player, "Actor name recorded for your input")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "Generation model")
	fs.IntVar(&cfg.ContextBudget, "context-budget", cfg.ContextBudget, "Context budget in tokens")
	fs.IntVar(&cfg.RecentScenes, "recent-scenes", cfg.RecentScenes, "Recency window of full scenes in context")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run opens the session store, resumes or creates the session, and drives
// the interactive loop until the context is canceled or the player quits.
func Run(ctx context.Context, cfg Config) error {
	logger := newLogger(cfg.Debug)

	store, err := sqlite.Open(filepath.Join(cfg.DataDir, "chronicler.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	session, err := loadOrCreateSession(ctx, store, cfg.Session)
	if err != nil {
		return err
	}
	log := chronicle.NewLog(session, store,
		chronicle.WithLogger(logger),
		chronicle.WithRegistry(chronicle.CoreRegistry()))

	estimator, err := narrative.Tiktoken(cfg.Model)
	if err != nil {
		logger.Warn().Err(err).Str("model", cfg.Model).Msg("no tokenizer for model; budgeting by characters")
		estimator = narrative.CharCount()
	}
	assembler := narrative.New(narrative.Budget{
		Limit:        cfg.ContextBudget,
		RecentScenes: cfg.RecentScenes,
	}, estimator)

	var generator ai.Generator
	if cfg.APIKey != "" {
		client, err := ai.NewClient(ai.ClientConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		}, logger)
		if err != nil {
			return err
		}
		generator = client
	} else {
		logger.Warn().Msg("OPENAI_API_KEY not set; narration disabled, dice and log commands still work")
	}

	svc, err := app.New(log, assembler, generator, app.WithLogger(logger))
	if err != nil {
		return err
	}

	fmt.Printf("chronicler session %s (model %s)\n", session.ID, cfg.Model)
	fmt.Println(`commands: /scene <title> [@ <location>], /end [summary], /roll <notation>, /recap, /stats, /quit`)
	if err := repl(ctx, svc, cfg.Player, os.Stdin, os.Stdout); err != nil {
		return err
	}
	return svc.Flush(context.WithoutCancel(ctx))
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.NewConsoleWriter()).Level(level).With().Timestamp().Logger()
}

// loadOrCreateSession resumes the named session, creating it when missing.
// An empty id always creates a fresh session.
func loadOrCreateSession(ctx context.Context, store storage.SessionStore, sessionID string) (*chronicle.Session, error) {
	if sessionID != "" {
		session, err := store.LoadSession(ctx, sessionID)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return chronicle.NewSession(sessionID, time.Now().UTC()), nil
	}

	sessionID, err := id.NewID()
	if err != nil {
		return nil, err
	}
	return chronicle.NewSession(sessionID, time.Now().UTC()), nil
}

// repl reads lines until EOF, /quit, or context cancellation.
func repl(ctx context.Context, svc *app.Service, player string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		quit, err := execLine(ctx, svc, player, strings.TrimSpace(scanner.Text()), out)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if quit {
			return nil
		}
	}
}

// execLine handles one REPL line. Slash commands drive the log directly;
// anything else is narrated.
func execLine(ctx context.Context, svc *app.Service, player, line string, out io.Writer) (quit bool, err error) {
	switch {
	case line == "":
		return false, nil

	case line == "/quit":
		return true, nil

	case strings.HasPrefix(line, "/scene"):
		title, location := splitSceneArgs(strings.TrimSpace(strings.TrimPrefix(line, "/scene")))
		if title == "" {
			return false, fmt.Errorf("usage: /scene <title> [@ <location>]")
		}
		sceneID, err := svc.StartScene(ctx, title, location, []string{player})
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "scene %s started\n", sceneID)
		return false, nil

	case strings.HasPrefix(line, "/end"):
		summary := strings.TrimSpace(strings.TrimPrefix(line, "/end"))
		if err := svc.EndScene(ctx, summary); err != nil {
			return false, err
		}
		fmt.Fprintln(out, "scene ended")
		return false, nil

	case strings.HasPrefix(line, "/roll"):
		notation := strings.TrimSpace(strings.TrimPrefix(line, "/roll"))
		if notation == "" {
			return false, fmt.Errorf("usage: /roll <notation>")
		}
		results, err := svc.Roll(ctx, notation, player)
		if err != nil {
			return false, err
		}
		for _, result := range results {
			fmt.Fprintln(out, result.Describe())
		}
		return false, nil

	case line == "/recap":
		pkg := svc.BuildContext()
		for _, block := range pkg.Blocks {
			fmt.Fprint(out, block.Text)
		}
		fmt.Fprintf(out, "(%d units", pkg.Consumed)
		if pkg.BudgetExceeded {
			fmt.Fprint(out, ", over budget")
		}
		fmt.Fprintln(out, ")")
		return false, nil

	case line == "/stats":
		stats := svc.Stats()
		fmt.Fprintf(out, "session %s: %d scenes, %d events\n", stats.SessionID, stats.SceneCount, stats.EventCount)
		for eventType, count := range stats.EventTypes {
			fmt.Fprintf(out, "  %s: %d\n", eventType, count)
		}
		if stats.ActiveSceneID != "" {
			fmt.Fprintf(out, "  active scene: %s\n", stats.ActiveSceneID)
		}
		return false, nil

	case strings.HasPrefix(line, "/"):
		return false, fmt.Errorf("unknown command %q", strings.Fields(line)[0])

	default:
		reply, err := svc.Narrate(ctx, line, player)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(out, reply.Text)
		return false, nil
	}
}

// splitSceneArgs splits "title @ location" into its parts.
func splitSceneArgs(args string) (title, location string) {
	if idx := strings.LastIndex(args, "@"); idx >= 0 {
		return strings.TrimSpace(args[:idx]), strings.TrimSpace(args[idx+1:])
	}
	return args, ""
}
