package models

// Default session durations in minutes, used when no settings row exists
// and no environment override is set.
const (
	DefaultSessionMinutes    = 25
	DefaultShortBreakMinutes = 5
	DefaultLongBreakMinutes  = 15
)

// SessionConfig holds the configured durations for focus sessions and the
// breaks between them. All values are minutes and expected to be positive.
type SessionConfig struct {
	SessionMinutes    int `json:"session_minutes"`
	ShortBreakMinutes int `json:"short_break_minutes"`
	LongBreakMinutes  int `json:"long_break_minutes"`
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		SessionMinutes:    DefaultSessionMinutes,
		ShortBreakMinutes: DefaultShortBreakMinutes,
		LongBreakMinutes:  DefaultLongBreakMinutes,
	}
}

type PhaseKind string

const (
	PhaseFocus      PhaseKind = "focus"
	PhaseShortBreak PhaseKind = "short_break"
	PhaseLongBreak  PhaseKind = "long_break"
)

// SessionPhase is one interval in an expanded schedule: a focus session or
// the break that follows it.
type SessionPhase struct {
	Kind    PhaseKind `json:"kind"`
	Minutes int       `json:"minutes"`
}
