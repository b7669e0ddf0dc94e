package dice

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidNotation is the sentinel matched by every parse failure.
// Use errors.Is(err, ErrInvalidNotation) to branch; the concrete error is a
// *NotationError carrying the offending string and position.
var ErrInvalidNotation = errors.New("dice: invalid notation")

// NotationError reports where and why a notation string failed to parse.
type NotationError struct {
	Notation string
	Pos      int // byte offset into the whitespace-stripped, lowercased input
	Reason   string
}

// Error implements the error interface.
func (e *NotationError) Error() string {
	return fmt.Sprintf("dice: invalid notation %q at %d: %s", e.Notation, e.Pos, e.Reason)
}

// Is reports whether target is the invalid-notation sentinel.
func (e *NotationError) Is(target error) bool {
	return target == ErrInvalidNotation
}

// parser is a single left-to-right scan over the compacted input. The
// grammar is LL(1) at the token level so no backtracking is needed beyond
// remembering the position before an optional digit run.
type parser struct {
	input string
	pos   int
}

// Parse parses dice notation into a Spec.
//
// Grammar:
//
//	expression   := term (('+' | '-') term)*
//	term         := count? 'd' sides keepClause? advClause? | integer
//	keepClause   := 'kh' digits | 'kl' digits
//	advClause    := 'adv' | 'dis'
//	repeatPrefix := digits '#'
//
// Whitespace is ignored and letters are case-insensitive. Parse is
// deterministic and side-effect-free: the same string always yields the
// same Spec. Failures are reported as *NotationError matching
// ErrInvalidNotation.
func Parse(notation string) (Spec, error) {
	compact := strings.ToLower(stripSpace(notation))
	p := &parser{input: compact}
	if compact == "" {
		return Spec{}, p.failf(0, "empty expression")
	}

	spec := Spec{Notation: notation}

	repeat, err := p.repeatPrefix()
	if err != nil {
		return Spec{}, err
	}
	spec.Repeat = repeat

	sign := 1
	for {
		term, mode, err := p.term(sign)
		if err != nil {
			return Spec{}, err
		}
		if mode != Normal {
			if spec.Mode != Normal {
				return Spec{}, p.failf(p.pos, "advantage specified more than once")
			}
			spec.Mode = mode
		}
		spec.Terms = append(spec.Terms, term)

		if p.done() {
			break
		}
		switch p.peek() {
		case '+':
			sign = 1
		case '-':
			sign = -1
		default:
			return Spec{}, p.failf(p.pos, "expected '+' or '-'")
		}
		p.pos++
		if p.done() {
			return Spec{}, p.failf(p.pos, "dangling operator")
		}
	}

	if err := validateParsed(spec); err != nil {
		return Spec{}, &NotationError{Notation: notation, Pos: 0, Reason: err.Error()}
	}
	return spec, nil
}

// validateParsed applies the grammar constraints that span multiple tokens.
func validateParsed(spec Spec) error {
	diceTerms := 0
	for _, term := range spec.Terms {
		if !term.IsModifier() {
			diceTerms++
		}
	}
	if diceTerms == 0 {
		return errors.New("expression has no dice term")
	}
	if spec.Mode != Normal {
		if diceTerms != 1 {
			return errors.New("advantage requires exactly one dice term")
		}
		for _, term := range spec.Terms {
			if term.IsModifier() {
				continue
			}
			if term.Count != 1 {
				return errors.New("advantage requires a single die")
			}
			if term.Keep != nil {
				return errors.New("advantage cannot combine with a keep clause")
			}
		}
	}
	return nil
}

// repeatPrefix consumes an optional "N#" prefix and returns N, or 1.
func (p *parser) repeatPrefix() (int, error) {
	start := p.pos
	value, width := p.digits()
	if width > 0 && !p.done() && p.peek() == '#' {
		if value < 1 {
			return 0, p.failf(start, "repeat count must be at least 1")
		}
		p.pos++
		if p.done() {
			return 0, p.failf(p.pos, "repeat prefix without expression")
		}
		return value, nil
	}
	p.pos = start
	return 1, nil
}

// term parses one dice term or flat modifier, applying sign to modifiers.
func (p *parser) term(sign int) (Term, Mode, error) {
	start := p.pos
	value, width := p.digits()

	if p.done() || p.peek() != 'd' {
		if width == 0 {
			return Term{}, Normal, p.failf(p.pos, "expected dice term or modifier")
		}
		return Term{Modifier: sign * value}, Normal, nil
	}

	// Dice term. A modifier sign in front of dice ("2d6+-1d4") is not in
	// the grammar; negative dice terms are rejected here.
	if sign < 0 {
		return Term{}, Normal, p.failf(start, "dice terms cannot be subtracted")
	}

	count := 1
	if width > 0 {
		count = value
	}
	if count < 1 {
		return Term{}, Normal, p.failf(start, "dice count must be at least 1")
	}

	p.pos++ // consume 'd'
	sidesStart := p.pos
	sides, sidesWidth := p.digits()
	if sidesWidth == 0 {
		return Term{}, Normal, p.failf(sidesStart, "missing die size")
	}
	if sides < 2 {
		return Term{}, Normal, p.failf(sidesStart, "die size must be at least 2")
	}

	term := Term{Count: count, Sides: sides}

	keep, err := p.keepClause(count)
	if err != nil {
		return Term{}, Normal, err
	}
	term.Keep = keep

	mode := p.advClause()
	if mode != Normal && keep != nil {
		return Term{}, Normal, p.failf(p.pos, "advantage cannot combine with a keep clause")
	}
	return term, mode, nil
}

// keepClause consumes an optional "kh N" / "kl N" clause.
func (p *parser) keepClause(count int) (*Keep, error) {
	if p.done() || p.peek() != 'k' {
		return nil, nil
	}
	start := p.pos
	p.pos++
	if p.done() {
		return nil, p.failf(start, "incomplete keep clause")
	}
	var mode KeepMode
	switch p.peek() {
	case 'h':
		mode = KeepHighest
	case 'l':
		mode = KeepLowest
	default:
		return nil, p.failf(p.pos, "keep clause must be 'kh' or 'kl'")
	}
	p.pos++
	n, width := p.digits()
	if width == 0 {
		return nil, p.failf(p.pos, "keep clause missing count")
	}
	if n < 1 {
		return nil, p.failf(start, "keep count must be at least 1")
	}
	if n > count {
		return nil, p.failf(start, "keep count exceeds dice count")
	}
	return &Keep{Mode: mode, N: n}, nil
}

// advClause consumes an optional "adv" / "dis" suffix.
func (p *parser) advClause() Mode {
	switch {
	case strings.HasPrefix(p.input[p.pos:], "adv"):
		p.pos += len("adv")
		return Advantage
	case strings.HasPrefix(p.input[p.pos:], "dis"):
		p.pos += len("dis")
		return Disadvantage
	}
	return Normal
}

// digits consumes a run of ASCII digits, returning the value and its width.
func (p *parser) digits() (int, int) {
	start := p.pos
	value := 0
	for !p.done() {
		c := p.input[p.pos]
		if c < '0' || c > '9' {
			break
		}
		value = value*10 + int(c-'0')
		p.pos++
	}
	return value, p.pos - start
}

func (p *parser) peek() byte {
	return p.input[p.pos]
}

func (p *parser) done() bool {
	return p.pos >= len(p.input)
}

func (p *parser) failf(pos int, format string, args ...any) error {
	return &NotationError{
		Notation: p.input,
		Pos:      pos,
		Reason:   fmt.Sprintf(format, args...),
	}
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s)
}
