package cue

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// bell rings the terminal bell.
const bell = "\a"

// Console writes cues to a terminal.
type Console struct {
	// mu serializes writes.
	mu sync.Mutex
	// w receives the cue lines.
	w io.Writer
	// ring appends the terminal bell to the firing line.
	ring bool
}

// NewConsole creates a Console emitter writing to w. With ring set the firing
// line also rings the terminal bell.
func NewConsole(w io.Writer, ring bool) *Console {
	return &Console{w: w, ring: ring}
}

// Speak prints the spoken text.
func (c *Console) Speak(_ context.Context, text, voiceID string) error {
	return c.write(fmt.Sprintf("> %s (%s)\n", text, voiceID))
}

// PlaySound prints the firing line.
func (c *Console) PlaySound(_ context.Context, soundID string) error {
	line := fmt.Sprintf("> %s!\n", strings.ToUpper(strings.ReplaceAll(soundID, "_", " ")))
	if c.ring {
		line = bell + line
	}

	return c.write(line)
}

func (c *Console) write(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := io.WriteString(c.w, line); err != nil {
		return fmt.Errorf("write cue: %w", err)
	}

	return nil
}
