package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Period lengths in seconds.
const (
	RegulationPeriods = 4
	regulationLength  = 12 * 60
	overtimeLength    = 5 * 60
)

// PeriodLength returns the length of the period in seconds.
func PeriodLength(period int) int {
	if period > RegulationPeriods {
		return overtimeLength
	}
	return regulationLength
}

// PeriodStart returns the seconds elapsed in the game before the period
// begins.
func PeriodStart(period int) int {
	if period > RegulationPeriods {
		return RegulationPeriods*regulationLength + (period-RegulationPeriods-1)*overtimeLength
	}
	return (period - 1) * regulationLength
}

// ElapsedInPeriod converts a "MM:SS" game clock (time remaining) into seconds
// elapsed within the period.
func ElapsedInPeriod(clock string, period int) (int, error) {
	minStr, secStr, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, clock)
	}
	minutes, err := strconv.Atoi(minStr)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, clock)
	}
	// Some feeds carry tenths in the final minute ("0:04.5"); truncate them.
	secStr, _, _ = strings.Cut(secStr, ".")
	seconds, err := strconv.Atoi(secStr)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, clock)
	}
	maxMinutes := PeriodLength(period) / 60
	// A signed "-0:30" parses as in range, so signs are rejected outright.
	if strings.ContainsAny(clock, "+-") ||
		minutes < 0 || minutes > maxMinutes || seconds < 0 || seconds > 59 ||
		(minutes == maxMinutes && seconds > 0) {
		return 0, fmt.Errorf("%w: %q out of range for period %d", ErrBadClock, clock, period)
	}
	// 7:34 left of 12:00 -> 4 minutes 26 seconds elapsed.
	return (maxMinutes-minutes-1)*60 + (60 - seconds), nil
}

// Elapsed returns seconds since tip-off for a period and game clock.
func Elapsed(clock string, period int) (int, error) {
	inPeriod, err := ElapsedInPeriod(clock, period)
	if err != nil {
		return 0, err
	}
	return PeriodStart(period) + inPeriod, nil
}

// Elapsed returns seconds since tip-off for the event.
func (e *Event) Elapsed() (int, error) {
	return Elapsed(e.GameClock, e.Period)
}
