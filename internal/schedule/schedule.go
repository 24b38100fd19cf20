// Package schedule computes when a block of focus sessions ends.
//
// Sessions are numbered 1..N. Every completed session except the last is
// followed by a break; every 4th session's break is a long break, the rest
// are short. The arithmetic is wall-clock local time, no zone conversion.
package schedule

import (
	"time"

	"github.com/ldi/focusbloom/pkg/models"
)

// longBreakEvery is the session interval after which the inserted break is
// a long break instead of a short one.
const longBreakEvery = 4

// TotalMinutes returns the elapsed minutes for a block of focusSessions
// sessions including the breaks between them. A non-positive count yields 0;
// callers are expected not to pass negative values.
func TotalMinutes(focusSessions int, cfg models.SessionConfig) int {
	if focusSessions <= 0 {
		return 0
	}

	total := focusSessions * cfg.SessionMinutes
	for i := 1; i < focusSessions; i++ {
		if i%longBreakEvery == 0 {
			total += cfg.LongBreakMinutes
		} else {
			total += cfg.ShortBreakMinutes
		}
	}
	return total
}

// EndTime returns start plus the total scheduled minutes for focusSessions
// sessions under cfg. With zero sessions the start is returned unchanged.
func EndTime(start time.Time, focusSessions int, cfg models.SessionConfig) time.Time {
	minutes := TotalMinutes(focusSessions, cfg)
	if minutes == 0 {
		return start
	}
	return start.Add(time.Duration(minutes) * time.Minute)
}

// Plan expands the schedule into its ordered phases. The sum of the phase
// durations always equals TotalMinutes for the same inputs.
func Plan(focusSessions int, cfg models.SessionConfig) []models.SessionPhase {
	if focusSessions <= 0 {
		return nil
	}

	phases := make([]models.SessionPhase, 0, 2*focusSessions-1)
	for i := 1; i <= focusSessions; i++ {
		phases = append(phases, models.SessionPhase{
			Kind:    models.PhaseFocus,
			Minutes: cfg.SessionMinutes,
		})
		if i == focusSessions {
			break
		}
		if i%longBreakEvery == 0 {
			phases = append(phases, models.SessionPhase{
				Kind:    models.PhaseLongBreak,
				Minutes: cfg.LongBreakMinutes,
			})
		} else {
			phases = append(phases, models.SessionPhase{
				Kind:    models.PhaseShortBreak,
				Minutes: cfg.ShortBreakMinutes,
			})
		}
	}
	return phases
}
