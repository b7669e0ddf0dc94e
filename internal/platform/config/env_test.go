package config

import "testing"

func TestParseEnvAppliesDefaultsAndValues(t *testing.T) {
	type cfg struct {
		DataDir string `env:"CHRONICLER_TEST_DATA_DIR" envDefault:"data"`
		Budget  int    `env:"CHRONICLER_TEST_BUDGET" envDefault:"8000"`
	}

	t.Setenv("CHRONICLER_TEST_BUDGET", "123")

	var c cfg
	if err := ParseEnv(&c); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if c.DataDir != "data" {
		t.Fatalf("DataDir = %q, want default %q", c.DataDir, "data")
	}
	if c.Budget != 123 {
		t.Fatalf("Budget = %d, want 123", c.Budget)
	}
}
