// Package cronspec validates crontab schedule expressions and job commands.
// All checks are pure: no I/O, no shared state, safe to call concurrently.
package cronspec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ScheduleErrorKind names what went wrong inside a schedule expression.
type ScheduleErrorKind int

const (
	WrongFieldCount ScheduleErrorKind = iota
	BadStep
	BadRange
	BadListValue
	BadValue
	BadFormat
)

func (k ScheduleErrorKind) String() string {
	switch k {
	case WrongFieldCount:
		return "wrong field count"
	case BadStep:
		return "bad step"
	case BadRange:
		return "bad range"
	case BadListValue:
		return "bad list value"
	case BadValue:
		return "bad value"
	default:
		return "bad format"
	}
}

// ScheduleError reports an invalid schedule expression. Field is empty for
// WrongFieldCount, otherwise the name of the offending field.
type ScheduleError struct {
	Kind  ScheduleErrorKind
	Field string
	Token string
}

func (e *ScheduleError) Error() string {
	if e.Kind == WrongFieldCount {
		return "schedule must have 5 fields: minute hour day month weekday"
	}
	return fmt.Sprintf("%s field: %s: %q", e.Field, e.Kind, e.Token)
}

// CommandErrorKind names what went wrong with a job command.
type CommandErrorKind int

const (
	EmptyCommand CommandErrorKind = iota
	DangerousCommand
)

// CommandError reports an invalid or suspicious job command.
type CommandError struct {
	Kind    CommandErrorKind
	Command string
}

func (e *CommandError) Error() string {
	if e.Kind == EmptyCommand {
		return "command is empty"
	}
	return fmt.Sprintf("command matches a destructive pattern, check carefully: %s", e.Command)
}

type fieldRange struct {
	name string
	min  int
	max  int
}

// Standard 5-field crontab: minute hour day-of-month month day-of-week.
// Day-of-week allows 0..7 (0 and 7 are both Sunday).
var fieldRanges = [5]fieldRange{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day", 1, 31},
	{"month", 1, 12},
	{"weekday", 0, 7},
}

// Destructive-command signatures. A match is a soft block: the caller
// decides whether to surface it as a hard validation failure. This is not
// a sandbox.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)rm\s+-rf\s+/`),
	regexp.MustCompile(`(?i)dd\s+if=.*of=/dev/`),
	regexp.MustCompile(`(?i)mkfs\.`),
	regexp.MustCompile(`(?i)format\s+`),
}

// ValidateSchedule checks a 5-field crontab expression. Each field accepts
// exactly one of: `*`, `*/N`, `A-B`, a comma list, or a bare integer.
func ValidateSchedule(expr string) error {
	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return &ScheduleError{Kind: WrongFieldCount, Token: expr}
	}

	for i, part := range parts {
		if err := validateField(part, fieldRanges[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateField(part string, r fieldRange) error {
	if part == "*" {
		return nil
	}

	// step: */N
	if strings.HasPrefix(part, "*/") {
		step, err := strconv.Atoi(part[2:])
		if err != nil || step <= 0 {
			return &ScheduleError{Kind: BadStep, Field: r.name, Token: part}
		}
		return nil
	}

	// range: A-B
	if strings.Contains(part, "-") {
		ends := strings.Split(part, "-")
		if len(ends) != 2 {
			return &ScheduleError{Kind: BadRange, Field: r.name, Token: part}
		}
		start, err1 := strconv.Atoi(ends[0])
		end, err2 := strconv.Atoi(ends[1])
		if err1 != nil || err2 != nil {
			return &ScheduleError{Kind: BadRange, Field: r.name, Token: part}
		}
		if start < r.min || start > r.max || end < r.min || end > r.max || start > end {
			return &ScheduleError{Kind: BadRange, Field: r.name, Token: part}
		}
		return nil
	}

	// list: a,b,c
	if strings.Contains(part, ",") {
		for _, tok := range strings.Split(part, ",") {
			v, err := strconv.Atoi(tok)
			if err != nil || v < r.min || v > r.max {
				return &ScheduleError{Kind: BadListValue, Field: r.name, Token: part}
			}
		}
		return nil
	}

	// bare integer
	v, err := strconv.Atoi(part)
	if err != nil {
		return &ScheduleError{Kind: BadFormat, Field: r.name, Token: part}
	}
	if v < r.min || v > r.max {
		return &ScheduleError{Kind: BadValue, Field: r.name, Token: part}
	}
	return nil
}

// ValidateCommand rejects empty commands and flags ones matching a fixed
// set of destructive signatures (recursive root delete, raw device writes,
// filesystem formats).
func ValidateCommand(cmd string) error {
	if strings.TrimSpace(cmd) == "" {
		return &CommandError{Kind: EmptyCommand}
	}
	for _, p := range dangerousPatterns {
		if p.MatchString(cmd) {
			return &CommandError{Kind: DangerousCommand, Command: cmd}
		}
	}
	return nil
}
