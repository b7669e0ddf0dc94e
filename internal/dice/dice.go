// Package dice parses and evaluates dice notation such as "4d6kh3",
// "2d20+5", "d20adv" and "3#2d6".
//
// Parsing and rolling are split: Parse turns a notation string into a Spec
// with no randomness involved, and Roll evaluates a Spec against an
// injectable random Source. The same Spec rolled against the same Source
// sequence always produces the same Result.
package dice

import "errors"

// KeepMode selects which end of the sorted draw survives a keep clause.
type KeepMode int

const (
	// KeepHighest retains the N largest values.
	KeepHighest KeepMode = iota
	// KeepLowest retains the N smallest values.
	KeepLowest
)

// String returns the notation suffix for the keep mode.
func (m KeepMode) String() string {
	if m == KeepLowest {
		return "kl"
	}
	return "kh"
}

// Keep retains a subset of a term's dice by rank before summing.
type Keep struct {
	Mode KeepMode
	N    int
}

// Mode is an expression-level roll mode.
type Mode int

const (
	// Normal rolls the expression as written.
	Normal Mode = iota
	// Advantage expands the single dice term to two dice keeping the highest.
	Advantage
	// Disadvantage expands the single dice term to two dice keeping the lowest.
	Disadvantage
)

// Term is one additive element of a dice expression.
//
// A dice term has Sides >= 1 and Count >= 1. A flat modifier term has
// Sides == 0 and its signed value in Modifier.
type Term struct {
	Count    int
	Sides    int
	Keep     *Keep
	Modifier int
}

// IsModifier reports whether the term is a flat modifier rather than dice.
func (t Term) IsModifier() bool {
	return t.Sides == 0
}

// Spec is a parsed dice expression.
type Spec struct {
	// Notation is the source string the spec was parsed from. Empty for
	// specs constructed programmatically.
	Notation string
	// Terms are evaluated in order; their subtotals sum into the total.
	Terms []Term
	// Mode applies advantage or disadvantage to the expression's single
	// dice term at evaluation time.
	Mode Mode
	// Repeat asks for that many independent evaluations of the spec.
	// Zero and one both mean a single roll.
	Repeat int
}

// ErrEmptySpec indicates a spec with no terms was rolled.
var ErrEmptySpec = errors.New("dice: spec has no terms")

// ErrInvalidSpec indicates a spec with an out-of-range count, sides, keep
// or mode combination was rolled.
var ErrInvalidSpec = errors.New("dice: invalid spec")

// Validate checks a spec against the roller's contract.
//
// The roller is more permissive than the parser: one-sided dice are legal
// here (they always roll 1) while the notation grammar rejects sides < 2.
func (s Spec) Validate() error {
	if len(s.Terms) == 0 {
		return ErrEmptySpec
	}
	diceTerms := 0
	for _, term := range s.Terms {
		if term.IsModifier() {
			continue
		}
		diceTerms++
		if term.Count < 1 || term.Sides < 1 {
			return ErrInvalidSpec
		}
		if term.Keep != nil && (term.Keep.N < 1 || term.Keep.N > term.Count) {
			return ErrInvalidSpec
		}
	}
	if diceTerms == 0 {
		return ErrInvalidSpec
	}
	if s.Mode != Normal {
		// The two-dice-keep-one expansion is only well defined for a
		// lone single-die term with no keep clause of its own.
		if diceTerms != 1 {
			return ErrInvalidSpec
		}
		for _, term := range s.Terms {
			if !term.IsModifier() && (term.Count != 1 || term.Keep != nil) {
				return ErrInvalidSpec
			}
		}
	}
	return nil
}
