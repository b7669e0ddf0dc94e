// Package app wires the dice roller, the session log, the context
// assembler, and the narration generator into the game-facing service.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hearthglen/chronicler/internal/ai"
	"github.com/hearthglen/chronicler/internal/chronicle"
	"github.com/hearthglen/chronicler/internal/dice"
	"github.com/hearthglen/chronicler/internal/narrative"
)

// GameMaster is the actor recorded for generated narration.
const GameMaster = "gm"

// DefaultSystemPrompt frames the generator as the table's game master.
const DefaultSystemPrompt = "You are the game master of a tabletop " +
	"roleplaying session. Narrate in second person, keep continuity with " +
	"the session context you are given, and use the provided tools for " +
	"dice rolls and scene management instead of inventing outcomes."

// Service exposes the operations a host program (REPL, bot, server) drives
// a session with.
type Service struct {
	log       *chronicle.Log
	assembler *narrative.Assembler
	generator ai.Generator
	tools     *ai.Registry
	rng       dice.Source
	system    string
	logger    zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRNG overrides the dice source, for deterministic tests.
func WithRNG(src dice.Source) Option {
	return func(s *Service) { s.rng = src }
}

// WithLogger sets the structured logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithSystemPrompt replaces the default game-master framing.
func WithSystemPrompt(prompt string) Option {
	return func(s *Service) { s.system = prompt }
}

// New builds a service around an open session log. The generator may be nil
// for dice-and-log-only use; Narrate then fails cleanly.
func New(log *chronicle.Log, assembler *narrative.Assembler, generator ai.Generator, opts ...Option) (*Service, error) {
	s := &Service{
		log:       log,
		assembler: assembler,
		generator: generator,
		tools:     ai.NewRegistry(),
		rng:       dice.NewCrypto(),
		system:    DefaultSystemPrompt,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.registerCoreTools(); err != nil {
		return nil, err
	}
	return s, nil
}

// SessionID returns the underlying session's identifier.
func (s *Service) SessionID() string {
	return s.log.SessionID()
}

// StartScene opens a new scene, ending any active one.
func (s *Service) StartScene(ctx context.Context, title, location string, participants []string) (string, error) {
	return s.log.StartScene(ctx, title, location, participants)
}

// EndScene finalizes the active scene with an optional summary.
func (s *Service) EndScene(ctx context.Context, summary string) error {
	return s.log.EndScene(ctx, summary)
}

// Roll parses and evaluates dice notation for an actor. Each evaluation is
// recorded as a dice_roll event when a scene is active; rolls outside any
// scene still succeed, they just leave no record.
func (s *Service) Roll(ctx context.Context, notation, actor string) ([]dice.Result, error) {
	spec, err := dice.Parse(notation)
	if err != nil {
		return nil, err
	}
	results, err := dice.RollAll(spec, s.rng)
	if err != nil {
		return nil, err
	}

	for _, result := range results {
		payload, err := chronicle.MarshalPayload(chronicle.DiceRollPayload{
			Notation: spec.Notation,
			Total:    result.Total,
			Detail:   result.Describe(),
			Seed:     result.Seed,
		})
		if err != nil {
			return nil, err
		}
		if _, err := s.log.LogEvent(ctx, chronicle.EventDiceRoll, actor, payload, nil); err != nil {
			if errors.Is(err, chronicle.ErrNoActiveScene) {
				break
			}
			return results, err
		}
	}
	return results, nil
}

// Narrate runs one narration turn: the player's input is logged, the
// session context is assembled, the generator replies (running any tool
// rounds), and both the tool calls and the final narration are appended to
// the active scene. Requires an active scene and a configured generator.
func (s *Service) Narrate(ctx context.Context, input, actor string) (ai.Reply, error) {
	if s.generator == nil {
		return ai.Reply{}, fmt.Errorf("no generator configured")
	}

	payload, err := chronicle.MarshalPayload(chronicle.PlayerActionPayload{Text: input})
	if err != nil {
		return ai.Reply{}, err
	}
	if _, err := s.log.LogEvent(ctx, chronicle.EventPlayerAction, actor, payload, nil); err != nil {
		return ai.Reply{}, err
	}

	pkg := s.assembler.Build(s.log.Snapshot())
	if pkg.BudgetExceeded {
		s.logger.Warn().Int("consumed", pkg.Consumed).Msg("current scene alone exceeds the context budget")
	}

	reply, err := s.generator.Generate(ctx, ai.Request{
		Context: pkg,
		Input:   input,
		System:  s.system,
		Tools:   s.tools.Tools(),
		Invoke:  s.tools.Invoker(),
	})
	if err != nil {
		return ai.Reply{}, err
	}

	for _, call := range reply.ToolCalls {
		callPayload, err := chronicle.MarshalPayload(chronicle.ToolCallPayload{
			Name:      call.Name,
			Arguments: rawJSON(call.Arguments),
			Result:    rawJSON(call.Result),
		})
		if err != nil {
			return reply, err
		}
		if _, err := s.log.LogEvent(ctx, chronicle.EventToolCall, GameMaster, callPayload, nil); err != nil {
			// Scene tools may have ended the active scene mid-turn; the
			// reply is still valid, only the audit record is lost.
			if errors.Is(err, chronicle.ErrNoActiveScene) {
				break
			}
			return reply, err
		}
	}

	if reply.Text != "" {
		narration, err := chronicle.MarshalPayload(chronicle.NarrationPayload{Text: reply.Text})
		if err != nil {
			return reply, err
		}
		if _, err := s.log.LogEvent(ctx, chronicle.EventNarration, GameMaster, narration, nil); err != nil &&
			!errors.Is(err, chronicle.ErrNoActiveScene) {
			return reply, err
		}
	}
	return reply, nil
}

// BuildContext assembles the current context package without generating.
func (s *Service) BuildContext() narrative.Package {
	return s.assembler.Build(s.log.Snapshot())
}

// Stats summarizes the session.
func (s *Service) Stats() chronicle.Stats {
	return s.log.Stats()
}

// Recent returns the last n events in chronological order.
func (s *Service) Recent(n int) []chronicle.Event {
	return s.log.Recent(n)
}

// Flush retries persistence of the session document.
func (s *Service) Flush(ctx context.Context) error {
	return s.log.Flush(ctx)
}

// rawJSON embeds a tool string verbatim when it is already JSON, and as a
// JSON string otherwise.
func rawJSON(value string) json.RawMessage {
	if value == "" {
		return nil
	}
	if json.Valid([]byte(value)) {
		return json.RawMessage(value)
	}
	quoted, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return quoted
}

type rollArgs struct {
	Notation string `json:"notation"`
	Actor    string `json:"actor"`
}

type startSceneArgs struct {
	Title        string   `json:"title"`
	Location     string   `json:"location"`
	Participants []string `json:"participants"`
}

type endSceneArgs struct {
	Summary string `json:"summary"`
}

// registerCoreTools wires the dice and scene operations the generator may
// call mid-turn.
func (s *Service) registerCoreTools() error {
	tools := []ai.Tool{
		{
			Name:        "roll_dice",
			Description: "Roll dice notation such as d20, 2d6+3, 4d6kh3 or d20adv and return the totals.",
			Schema: json.RawMessage(`{"type":"object","properties":{` +
				`"notation":{"type":"string","description":"dice notation to evaluate"},` +
				`"actor":{"type":"string","description":"who the roll is for"}},` +
				`"required":["notation"]}`),
			Handler: s.handleRollDice,
		},
		{
			Name:        "start_scene",
			Description: "Start a new scene, ending the current one without a summary.",
			Schema: json.RawMessage(`{"type":"object","properties":{` +
				`"title":{"type":"string"},` +
				`"location":{"type":"string"},` +
				`"participants":{"type":"array","items":{"type":"string"}}},` +
				`"required":["title"]}`),
			Handler: s.handleStartScene,
		},
		{
			Name:        "end_scene",
			Description: "End the current scene with a one-line summary of what happened.",
			Schema: json.RawMessage(`{"type":"object","properties":{` +
				`"summary":{"type":"string"}},"required":["summary"]}`),
			Handler: s.handleEndScene,
		},
	}
	for _, tool := range tools {
		if err := s.tools.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) handleRollDice(ctx context.Context, arguments string) (string, error) {
	var args rollArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("roll_dice arguments: %w", err)
	}
	actor := args.Actor
	if actor == "" {
		actor = GameMaster
	}
	results, err := s.Roll(ctx, args.Notation, actor)
	if err != nil {
		return "", err
	}

	type rolled struct {
		Total  int    `json:"total"`
		Detail string `json:"detail"`
	}
	out := make([]rolled, 0, len(results))
	for _, result := range results {
		out = append(out, rolled{Total: result.Total, Detail: result.Describe()})
	}
	raw, err := json.Marshal(map[string]any{"notation": args.Notation, "results": out})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *Service) handleStartScene(ctx context.Context, arguments string) (string, error) {
	var args startSceneArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("start_scene arguments: %w", err)
	}
	sceneID, err := s.StartScene(ctx, args.Title, args.Location, args.Participants)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`{"scene_id":%q}`, sceneID), nil
}

func (s *Service) handleEndScene(ctx context.Context, arguments string) (string, error) {
	var args endSceneArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("end_scene arguments: %w", err)
	}
	if err := s.EndScene(ctx, args.Summary); err != nil {
		return "", err
	}
	return `{"ended":true}`, nil
}
