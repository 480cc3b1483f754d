package console

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/oshokin/sprint-start/internal/domain/starter"
	"github.com/oshokin/sprint-start/internal/service/sequence"
)

// console executes prompt commands against a controller and a store.
type console struct {
	// ctrl runs the sequence.
	ctrl *sequence.Controller
	// store persists the configuration and settings.
	store sequence.ConfigStore
	// out receives every line.
	out io.Writer
	// mu serializes writes from the prompt and the renderer.
	mu sync.Mutex
}

func newConsole(ctrl *sequence.Controller, store sequence.ConfigStore, out io.Writer) *console {
	return &console{
		ctrl:  ctrl,
		store: store,
		out:   out,
	}
}

// execute runs one prompt line and reports whether the console should quit.
func (c *console) execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		c.start()

		return false
	}

	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "start", "s", "go":
		c.start()
	case "reset", "r", "stop":
		c.ctrl.Reset()
	case "status", "st":
		c.printStatus()
	case "config", "c":
		c.printConfig(ctx)
	case "set":
		c.set(ctx, args)
	case "defaults":
		c.saveConfig(ctx, starter.DefaultStarterConfig())
	case "list", "ls":
		c.printCatalogs()
	case "help", "?":
		c.printHelp()
	case "quit", "exit", "q":
		c.ctrl.Reset()
		c.println("Bye")

		return true
	default:
		c.printf("Unknown command: %s (type 'help' for commands)\n", cmd)
	}

	return false
}

func (c *console) start() {
	if !c.ctrl.Start() {
		c.printf("Sequence in progress (%s), type 'reset' to abort\n", c.ctrl.State())
	}
}

//nolint:cyclop // One branch per setting.
func (c *console) set(ctx context.Context, args []string) {
	if len(args) < 2 {
		c.println("Usage: set mark|set|variability|voice|starter|theme <value>")

		return
	}

	value := strings.Join(args[1:], " ")
	cfg := c.store.LoadStarterConfig(ctx)

	switch strings.ToLower(args[0]) {
	case "mark":
		mark, err := strconv.Atoi(value)
		if err != nil {
			c.printf("Invalid mark delay %q\n", value)

			return
		}

		cfg.MarkDelaySeconds = mark
	case "set":
		set, err := strconv.ParseFloat(value, 64)
		if err != nil {
			c.printf("Invalid set delay %q\n", value)

			return
		}

		cfg.SetDelaySeconds = set
	case "variability", "var":
		v, err := starter.ParseVariability(value)
		if err != nil {
			c.printf("%v\n", err)

			return
		}

		cfg.Variability = v
	case "voice", "starter", "theme":
		c.setSelection(ctx, strings.ToLower(args[0]), value)

		return
	default:
		c.printf("Unknown setting %q\n", args[0])

		return
	}

	if err := cfg.Validate(); err != nil {
		c.printf("%v\n", err)

		return
	}

	c.saveConfig(ctx, cfg)
}

func (c *console) setSelection(ctx context.Context, field, value string) {
	s := c.store.LoadSettings(ctx)

	switch field {
	case "voice":
		s.Voice = matchName(value, optionNames(starter.Voices()))
	case "starter":
		s.Starter = matchName(value, optionNames(starter.Starters()))
	case "theme":
		s.Theme = matchName(value, starter.Themes())
	}

	if check := s; check.Normalize() {
		c.printf("Unknown %s %q (type 'list' for choices)\n", field, value)

		return
	}

	if err := c.store.SaveSettings(ctx, s); err != nil {
		c.printf("Failed to save settings: %v\n", err)

		return
	}

	c.printConfig(ctx)
}

func (c *console) saveConfig(ctx context.Context, cfg starter.StarterConfig) {
	if err := c.store.SaveStarterConfig(ctx, cfg); err != nil {
		c.printf("Failed to save config: %v\n", err)

		return
	}

	c.printConfig(ctx)
}

// render prints state changes and countdown ticks until the channel closes.
func (c *console) render(snapshots <-chan starter.Snapshot) {
	last := starter.StateIdle
	first := true

	for snap := range snapshots {
		switch {
		case first:
			first = false
		case snap.State != last:
			c.println(stateLine(snap))
		case snap.State == starter.StateOnYourMarks:
			c.printf("  %.0f\n", snap.Remaining)
		}

		last = snap.State
	}
}

func stateLine(snap starter.Snapshot) string {
	switch snap.State {
	case starter.StateOnYourMarks:
		return fmt.Sprintf("[%s] %.0f sec", snap.State, snap.Remaining)
	default:
		return fmt.Sprintf("[%s]", snap.State)
	}
}

func (c *console) printStatus() {
	snap := c.ctrl.Snapshot()

	line := stateLine(snap)
	if snap.State == starter.StateOnYourMarks {
		line = fmt.Sprintf("[%s] %.0f of %.0f sec", snap.State, snap.Remaining, snap.Total)
	}

	c.println(line)
}

func (c *console) printConfig(ctx context.Context) {
	cfg := c.store.LoadStarterConfig(ctx)
	s := c.store.LoadSettings(ctx)

	c.printf("Starter: %s\nSettings: voice %s, starter %s, theme %s\n", cfg.String(), s.Voice, s.Starter, s.Theme)
}

func (c *console) printCatalogs() {
	c.printf("Voices: %s\n", strings.Join(optionNames(starter.Voices()), ", "))
	c.printf("Starters: %s\n", strings.Join(optionNames(starter.Starters()), ", "))
	c.printf("Themes: %s\n", strings.Join(starter.Themes(), ", "))

	labels := make([]string, 0, len(starter.Variabilities()))
	for _, v := range starter.Variabilities() {
		labels = append(labels, v.Label())
	}

	c.printf("Variability: %s\n", strings.Join(labels, ", "))
}

func (c *console) printHelp() {
	c.println(`Sprint starter commands:
  <Enter>, start           - Start a sequence
  reset                    - Abort the running sequence
  status                   - Show the sequence state
  config                   - Show the starter configuration and settings
  set mark <5..30>         - Seconds from "On your marks" to "Set"
  set set <1.25..3.00>     - Seconds from "Set" to the start signal, step 0.25
  set variability <v>      - None, Low, Med or High
  set voice|starter|theme  - Change a selection (see 'list')
  defaults                 - Restore the default starter configuration
  list                     - Show voices, starters, themes and variabilities
  help                     - Show this help
  quit                     - Exit`)
}

func (c *console) println(s string) {
	c.printf("%s\n", s)
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, format, args...) //nolint:errcheck // Terminal output.
}

// matchName returns the catalog name equal to value ignoring case, or value.
func matchName(value string, names []string) string {
	for _, name := range names {
		if strings.EqualFold(name, value) {
			return name
		}
	}

	return value
}

func optionNames(options []starter.Option) []string {
	names := make([]string, len(options))
	for i, o := range options {
		names[i] = o.Name
	}

	return names
}
