package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.SessionMinutes != 25 {
		t.Errorf("Expected session minutes 25, got %d", cfg.SessionMinutes)
	}
	if cfg.ShortBreakMinutes != 5 {
		t.Errorf("Expected short break minutes 5, got %d", cfg.ShortBreakMinutes)
	}
	if cfg.LongBreakMinutes != 15 {
		t.Errorf("Expected long break minutes 15, got %d", cfg.LongBreakMinutes)
	}
	if cfg.DBPath == "" {
		t.Errorf("Expected default db path to be set")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FOCUSBLOOM_SESSION_MINUTES", "50")
	t.Setenv("FOCUSBLOOM_SHORT_BREAK_MINUTES", "10")
	t.Setenv("FOCUSBLOOM_DB_PATH", "/tmp/fb.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.SessionMinutes != 50 {
		t.Errorf("Expected session minutes 50, got %d", cfg.SessionMinutes)
	}
	if cfg.ShortBreakMinutes != 10 {
		t.Errorf("Expected short break minutes 10, got %d", cfg.ShortBreakMinutes)
	}
	if cfg.DBPath != "/tmp/fb.db" {
		t.Errorf("Expected db path /tmp/fb.db, got %s", cfg.DBPath)
	}

	sc := cfg.SessionConfig()
	if sc.SessionMinutes != 50 || sc.ShortBreakMinutes != 10 || sc.LongBreakMinutes != 15 {
		t.Errorf("Unexpected session config: %+v", sc)
	}
}

func TestLoadRejectsNonPositiveDurations(t *testing.T) {
	t.Setenv("FOCUSBLOOM_SESSION_MINUTES", "0")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for zero session minutes")
	}
}
