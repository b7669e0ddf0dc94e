package dice

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// TermRoll records the evaluation of a single term.
type TermRoll struct {
	// Term is the evaluated term after any advantage expansion.
	Term Term
	// Rolled holds the raw values in draw order. Empty for modifiers.
	Rolled []int
	// Kept holds the values retained after the keep clause, sorted by the
	// keep order. Equal to Rolled (unsorted) when no keep clause applies.
	Kept []int
	// Subtotal is the sum of Kept, or the modifier value.
	Subtotal int
}

// Result is an immutable record of one evaluation of a Spec.
type Result struct {
	Spec     Spec
	Terms    []TermRoll
	Total    int
	Seed     *int64 // set only when rolled through RollSeeded
	RolledAt time.Time
}

// Roll evaluates a spec once against the provided random source.
//
// # Determinism
//
// Roll is deterministic with respect to the source: the same Spec evaluated
// against the same value sequence always produces the same Result.
//
// # Advantage
//
// Advantage and disadvantage are not separate code paths. Before evaluation
// the expression's single dice term is rewritten to {Count: 2, Keep: {mode,
// 1}}, so "1d20adv" and "2d20kh1" are identical in distribution and shape.
//
// Spec.Repeat is ignored here; use RollAll for repeated evaluation.
func Roll(spec Spec, src Source) (Result, error) {
	if err := spec.Validate(); err != nil {
		return Result{}, err
	}

	result := Result{
		Spec:     spec,
		Terms:    make([]TermRoll, 0, len(spec.Terms)),
		RolledAt: time.Now().UTC(),
	}

	for _, term := range spec.Terms {
		if !term.IsModifier() && spec.Mode != Normal {
			term = expandMode(term, spec.Mode)
		}
		rolled := rollTerm(term, src)
		result.Terms = append(result.Terms, rolled)
		result.Total += rolled.Subtotal
	}
	return result, nil
}

// RollAll evaluates a spec honoring its repeat count, returning
// max(1, spec.Repeat) independent results drawn from the same source.
func RollAll(spec Spec, src Source) ([]Result, error) {
	n := spec.Repeat
	if n < 1 {
		n = 1
	}
	results := make([]Result, 0, n)
	for i := 0; i < n; i++ {
		result, err := Roll(spec, src)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// RollSeeded evaluates a spec with a fresh source seeded from seed and
// records the seed on each result for replay.
func RollSeeded(spec Spec, seed int64) ([]Result, error) {
	results, err := RollAll(spec, NewSeeded(seed))
	if err != nil {
		return nil, err
	}
	for i := range results {
		s := seed
		results[i].Seed = &s
	}
	return results, nil
}

// expandMode rewrites a single-die term into the two-die keep-one form.
func expandMode(term Term, mode Mode) Term {
	keep := &Keep{Mode: KeepHighest, N: 1}
	if mode == Disadvantage {
		keep.Mode = KeepLowest
	}
	term.Count = 2
	term.Keep = keep
	return term
}

// rollTerm draws and scores a single term.
func rollTerm(term Term, src Source) TermRoll {
	if term.IsModifier() {
		return TermRoll{Term: term, Subtotal: term.Modifier}
	}

	rolled := make([]int, term.Count)
	for i := range rolled {
		rolled[i] = src.Intn(term.Sides) + 1
	}

	kept := rolled
	if term.Keep != nil {
		sorted := append([]int(nil), rolled...)
		if term.Keep.Mode == KeepHighest {
			sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		} else {
			sort.Ints(sorted)
		}
		kept = sorted[:term.Keep.N]
	}

	subtotal := 0
	for _, v := range kept {
		subtotal += v
	}
	return TermRoll{Term: term, Rolled: rolled, Kept: kept, Subtotal: subtotal}
}

// Describe renders a human-readable breakdown such as
// "4d6kh3: [5 3 6 1] kept [6 5 3] = 14".
func (r Result) Describe() string {
	var b strings.Builder
	for i, tr := range r.Terms {
		if tr.Term.IsModifier() {
			switch {
			case i == 0:
				fmt.Fprintf(&b, "%d", tr.Term.Modifier)
			case tr.Term.Modifier >= 0:
				fmt.Fprintf(&b, " + %d", tr.Term.Modifier)
			default:
				fmt.Fprintf(&b, " - %d", -tr.Term.Modifier)
			}
			continue
		}
		if i > 0 {
			b.WriteString(" + ")
		}
		fmt.Fprintf(&b, "%dd%d", tr.Term.Count, tr.Term.Sides)
		if tr.Term.Keep != nil {
			fmt.Fprintf(&b, "%s%d", tr.Term.Keep.Mode, tr.Term.Keep.N)
		}
		fmt.Fprintf(&b, ": %v", tr.Rolled)
		if tr.Term.Keep != nil {
			fmt.Fprintf(&b, " kept %v", tr.Kept)
		}
	}
	fmt.Fprintf(&b, " = %d", r.Total)
	return b.String()
}
