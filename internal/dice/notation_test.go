package dice

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		notation string
		want     Spec
	}{
		{
			notation: "d20",
			want: Spec{
				Notation: "d20",
				Terms:    []Term{{Count: 1, Sides: 20}},
				Repeat:   1,
			},
		},
		{
			notation: "2d6+3",
			want: Spec{
				Notation: "2d6+3",
				Terms:    []Term{{Count: 2, Sides: 6}, {Modifier: 3}},
				Repeat:   1,
			},
		},
		{
			notation: "1d20-2",
			want: Spec{
				Notation: "1d20-2",
				Terms:    []Term{{Count: 1, Sides: 20}, {Modifier: -2}},
				Repeat:   1,
			},
		},
		{
			notation: "4d6kh3",
			want: Spec{
				Notation: "4d6kh3",
				Terms:    []Term{{Count: 4, Sides: 6, Keep: &Keep{Mode: KeepHighest, N: 3}}},
				Repeat:   1,
			},
		},
		{
			notation: "2d20kl1",
			want: Spec{
				Notation: "2d20kl1",
				Terms:    []Term{{Count: 2, Sides: 20, Keep: &Keep{Mode: KeepLowest, N: 1}}},
				Repeat:   1,
			},
		},
		{
			notation: "d20adv",
			want: Spec{
				Notation: "d20adv",
				Terms:    []Term{{Count: 1, Sides: 20}},
				Mode:     Advantage,
				Repeat:   1,
			},
		},
		{
			notation: "1d20dis+5",
			want: Spec{
				Notation: "1d20dis+5",
				Terms:    []Term{{Count: 1, Sides: 20}, {Modifier: 5}},
				Mode:     Disadvantage,
				Repeat:   1,
			},
		},
		{
			notation: "6#4d6kh3",
			want: Spec{
				Notation: "6#4d6kh3",
				Terms:    []Term{{Count: 4, Sides: 6, Keep: &Keep{Mode: KeepHighest, N: 3}}},
				Repeat:   6,
			},
		},
		{
			notation: "2d6 + 1d8 + 2",
			want: Spec{
				Notation: "2d6 + 1d8 + 2",
				Terms:    []Term{{Count: 2, Sides: 6}, {Count: 1, Sides: 8}, {Modifier: 2}},
				Repeat:   1,
			},
		},
		{
			notation: "2D6KH1",
			want: Spec{
				Notation: "2D6KH1",
				Terms:    []Term{{Count: 2, Sides: 6, Keep: &Keep{Mode: KeepHighest, N: 1}}},
				Repeat:   1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.notation, func(t *testing.T) {
			got, err := Parse(tt.notation)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.notation, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Parse(%q) = %+v, want %+v", tt.notation, got, tt.want)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"d0",
		"d1",
		"0d6",
		"3d6kh5",
		"3d6kh0",
		"2d6k3",
		"d",
		"2d",
		"d20x",
		"d20advdis",
		"2d20adv",
		"d20adv+d4",
		"d20kh1adv",
		"banana",
		"5",
		"5+3",
		"2d6+",
		"2d6-",
		"0#d20",
		"3#",
		"2d6--1",
		"2d6-1d4",
	}

	for _, notation := range tests {
		t.Run(notation, func(t *testing.T) {
			_, err := Parse(notation)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", notation)
			}
			if !errors.Is(err, ErrInvalidNotation) {
				t.Fatalf("Parse(%q) error = %v, want ErrInvalidNotation", notation, err)
			}
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	for _, notation := range []string{"d20", "4d6kh3", "6#4d6kh3", "2d20+5-1"} {
		first, err := Parse(notation)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", notation, err)
		}
		second, err := Parse(notation)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", notation, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("Parse(%q) not deterministic: %+v vs %+v", notation, first, second)
		}
	}
}

func TestParse_ErrorReportsPosition(t *testing.T) {
	_, err := Parse("2d6kh9")
	var notationErr *NotationError
	if !errors.As(err, &notationErr) {
		t.Fatalf("expected *NotationError, got %T", err)
	}
	if notationErr.Reason == "" {
		t.Fatal("expected a reason on the notation error")
	}
}
