package narrative

import (
	"github.com/hearthglen/chronicler/internal/chronicle"
)

// BlockKind identifies which layer produced a context block.
type BlockKind string

const (
	// BlockSummary is a one-line recap of an older ended scene.
	BlockSummary BlockKind = "summary"
	// BlockScene is the full raw event text of a recent ended scene.
	BlockScene BlockKind = "scene"
	// BlockCurrentScene is the full raw event text of the active scene.
	BlockCurrentScene BlockKind = "current_scene"
)

// Block is one ordered chunk of assembled context.
type Block struct {
	Kind    BlockKind
	SceneID string
	Title   string
	Text    string
	// Cost is the block's size in estimator units.
	Cost int
}

// Package is the bounded context handed verbatim to the generation
// service. Blocks are in true chronological order: summaries of the oldest
// scenes first, then recent scenes raw, then the current scene last.
type Package struct {
	Blocks []Block
	// Consumed is the total cost of every included block, current scene
	// included.
	Consumed int
	// BudgetExceeded signals that the always-included current scene alone
	// overran the budget. Informational, not an error.
	BudgetExceeded bool
}

// Assembler selects and orders session history under a budget.
type Assembler struct {
	budget    Budget
	estimator Estimator
}

// New returns an assembler. A nil estimator defaults to CharCount.
func New(budget Budget, estimator Estimator) *Assembler {
	if estimator == nil {
		estimator = CharCount()
	}
	return &Assembler{budget: budget, estimator: estimator}
}

// Build assembles a context package from a session snapshot. The session
// must not be mutated during the call; pass a Log.Snapshot().
//
// Selection works backward from now, each layer stopping once the budget
// is exhausted:
//
//  1. The active scene, whole, unconditionally. Truncating it would tear
//     the immediate narrative, so this layer alone may exceed the budget
//     (flagged via BudgetExceeded).
//  2. Ended scenes newest first, each included whole or not at all, until
//     the recency window or the remaining budget runs out.
//  3. Summaries of every remaining ended scene, oldest first, greedily
//     while they fit. Scenes without a summary are skipped, never
//     synthesized here.
func (a *Assembler) Build(session *chronicle.Session) Package {
	var pkg Package

	var current *chronicle.Scene
	var ended []chronicle.Scene
	for i := range session.Scenes {
		scene := session.Scenes[i]
		if scene.Active {
			current = &session.Scenes[i]
			continue
		}
		ended = append(ended, scene)
	}

	// Layer 1: the current scene is exempt from budget enforcement.
	var currentBlock *Block
	if current != nil {
		text := renderScene(*current)
		cost := a.estimator.Estimate(text)
		currentBlock = &Block{
			Kind:    BlockCurrentScene,
			SceneID: current.ID,
			Title:   current.Title,
			Text:    text,
			Cost:    cost,
		}
		pkg.Consumed += cost
		if cost > a.budget.Limit {
			pkg.BudgetExceeded = true
		}
	}

	// Layer 2: recent ended scenes, newest first, whole scenes only.
	rawIncluded := make([]Block, 0, a.budget.RecentScenes)
	cut := len(ended)
	for i := len(ended) - 1; i >= 0 && len(rawIncluded) < a.budget.RecentScenes; i-- {
		text := renderScene(ended[i])
		cost := a.estimator.Estimate(text)
		if cost > a.budget.Remaining(pkg.Consumed) {
			break
		}
		rawIncluded = append(rawIncluded, Block{
			Kind:    BlockScene,
			SceneID: ended[i].ID,
			Title:   ended[i].Title,
			Text:    text,
			Cost:    cost,
		})
		pkg.Consumed += cost
		cut = i
	}

	// Layer 3: summaries of everything older, oldest first.
	var summaries []Block
	for _, scene := range ended[:cut] {
		if scene.Summary == "" {
			continue
		}
		text := renderSummary(scene)
		cost := a.estimator.Estimate(text)
		if cost > a.budget.Remaining(pkg.Consumed) {
			break
		}
		summaries = append(summaries, Block{
			Kind:    BlockSummary,
			SceneID: scene.ID,
			Title:   scene.Title,
			Text:    text,
			Cost:    cost,
		})
		pkg.Consumed += cost
	}

	// Emit in chronological order: the raw scenes were collected newest
	// first, so reverse them back into story order.
	pkg.Blocks = append(pkg.Blocks, summaries...)
	for i := len(rawIncluded) - 1; i >= 0; i-- {
		pkg.Blocks = append(pkg.Blocks, rawIncluded[i])
	}
	if currentBlock != nil {
		pkg.Blocks = append(pkg.Blocks, *currentBlock)
	}
	return pkg
}
