// Package chat talks to the assistant in its three modes and keeps a capped
// per-mode history next to the session.
package chat

import (
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/uniassist/internal/errors"
)

type Mode string

const (
	ModeAssistant Mode = "assistant" // General questions
	ModeKnowledge Mode = "knowledge" // Answers grounded in the user's uploaded files
	ModeSchedule  Mode = "schedule"  // Questions about the timetable and tasks
)

// Modes lists every chat mode.
var Modes = []Mode{ModeAssistant, ModeKnowledge, ModeSchedule}

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown chat mode %q", apperrors.ErrInvalidInput, s)
}
