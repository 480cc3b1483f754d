package cue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/oshokin/sprint-start/internal/logger"
)

// Template placeholders.
const (
	placeholderText  = "{text}"
	placeholderVoice = "{voice}"
	placeholderFile  = "{file}"
)

// SoundExtension is the file extension of the firing sound assets.
const SoundExtension = ".mp3"

var (
	// ErrSoundUnavailable is returned when the requested sound asset does not exist.
	ErrSoundUnavailable = errors.New("sound unavailable")
	// ErrUnsupportedOS indicates there is no default command for the current OS.
	ErrUnsupportedOS = errors.New("unsupported operating system")
	// errEmptyTemplate is returned when a command template has no program.
	errEmptyTemplate = errors.New("empty command template")
)

// Runner starts a program without waiting for it to finish.
type Runner func(ctx context.Context, name string, args ...string) error

// Command plays cues by starting OS commands built from templates.
type Command struct {
	// speech is the speech command template, one element per argument.
	speech []string
	// sound is the sound command template, one element per argument.
	sound []string
	// soundsDir holds the <id>.mp3 assets.
	soundsDir string
	// voices maps voice IDs to the names the speech command expects.
	voices map[string]string
	// run starts the commands.
	run Runner
}

// CommandOption configures a Command emitter.
type CommandOption func(*Command)

// WithSpeechTemplate overrides the speech command. The template is split on
// whitespace; {voice} and {text} are substituted per argument. A custom
// template receives voice IDs unmapped unless WithVoiceNames follows it.
func WithSpeechTemplate(template string) CommandOption {
	return func(c *Command) {
		if fields := strings.Fields(template); len(fields) > 0 {
			c.speech = fields
			c.voices = nil
		}
	}
}

// WithVoiceNames maps voice IDs such as en-GB to the value substituted for
// {voice}. IDs missing from names are passed through.
func WithVoiceNames(names map[string]string) CommandOption {
	return func(c *Command) {
		c.voices = names
	}
}

// WithSoundTemplate overrides the sound command. The template is split on
// whitespace; {file} is substituted per argument.
func WithSoundTemplate(template string) CommandOption {
	return func(c *Command) {
		if fields := strings.Fields(template); len(fields) > 0 {
			c.sound = fields
		}
	}
}

// WithRunner replaces the function that starts commands.
func WithRunner(run Runner) CommandOption {
	return func(c *Command) {
		if run != nil {
			c.run = run
		}
	}
}

// NewCommand creates an emitter using the platform's default commands unless
// overridden by options.
func NewCommand(soundsDir string, options ...CommandOption) *Command {
	speech, sound, _ := DefaultTemplates(runtime.GOOS)

	c := &Command{
		speech:    speech,
		sound:     sound,
		soundsDir: soundsDir,
		voices:    DefaultVoiceNames(runtime.GOOS),
		run:       startDetached,
	}

	for _, opt := range options {
		opt(c)
	}

	return c
}

// DefaultTemplates returns the built-in speech and sound commands for goos:
//   - darwin:  `say -v {voice} {text}` (voice names from DefaultVoiceNames) and `afplay {file}`
//   - linux:   `espeak-ng -v {voice} {text}` and `ffplay -nodisp -autoexit {file}`
//   - windows: PowerShell System.Speech and Windows.Media.MediaPlayer
func DefaultTemplates(goos string) ([]string, []string, error) {
	switch strings.ToLower(goos) {
	case "darwin":
		return []string{"say", "-v", placeholderVoice, placeholderText},
			[]string{"afplay", placeholderFile},
			nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return []string{"espeak-ng", "-v", placeholderVoice, placeholderText},
			[]string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", placeholderFile},
			nil
	case "windows":
		return []string{
				"powershell.exe", "-NoProfile", "-Command",
				"Add-Type -AssemblyName System.Speech; " +
					"$s = New-Object System.Speech.Synthesis.SpeechSynthesizer; " +
					"$s.SelectVoiceByHints('NotSet', 'NotSet', 0, [Globalization.CultureInfo]'" + placeholderVoice + "'); " +
					"$s.Speak('" + placeholderText + "')",
			},
			[]string{
				"powershell.exe", "-NoProfile", "-Command",
				"Add-Type -AssemblyName PresentationCore; " +
					"$p = New-Object System.Windows.Media.MediaPlayer; " +
					"$p.Open([uri]'" + placeholderFile + "'); $p.Play(); Start-Sleep -Seconds 3",
			},
			nil
	default:
		return nil, nil, fmt.Errorf("no cue commands for %s: %w", goos, ErrUnsupportedOS)
	}
}

// DefaultVoiceNames returns the voice names the default speech command of
// goos expects. Only `say` on darwin takes names instead of locales.
func DefaultVoiceNames(goos string) map[string]string {
	if strings.ToLower(goos) != "darwin" {
		return nil
	}

	return map[string]string{
		"en-US": "Samantha",
		"en-GB": "Daniel",
		"en-AU": "Karen",
	}
}

// Speak starts the speech command.
func (c *Command) Speak(ctx context.Context, text, voiceID string) error {
	voice := voiceID
	if name, ok := c.voices[voiceID]; ok {
		voice = name
	}

	args := expand(c.speech, strings.NewReplacer(
		placeholderText, quote(text),
		placeholderVoice, quote(voice),
	))

	return c.start(ctx, args)
}

// PlaySound starts the sound command for <soundsDir>/<soundID>.mp3.
func (c *Command) PlaySound(ctx context.Context, soundID string) error {
	path, err := c.SoundPath(soundID)
	if err != nil {
		return err
	}

	args := expand(c.sound, strings.NewReplacer(placeholderFile, quote(path)))

	return c.start(ctx, args)
}

// SoundPath resolves the asset of soundID and checks that it exists.
func (c *Command) SoundPath(soundID string) (string, error) {
	if soundID == "" || strings.ContainsAny(soundID, `/\`) {
		return "", fmt.Errorf("sound %q: %w", soundID, ErrSoundUnavailable)
	}

	path, err := filepath.Abs(filepath.Join(c.soundsDir, soundID+SoundExtension))
	if err != nil {
		return "", fmt.Errorf("resolve sound %q: %w", soundID, err)
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("sound %q at %s: %w", soundID, path, ErrSoundUnavailable)
	}

	return path, nil
}

func (c *Command) start(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errEmptyTemplate
	}

	logger.DebugKV(ctx, "Starting cue command", "command", args[0], "args", args[1:])

	if err := c.run(ctx, args[0], args[1:]...); err != nil {
		return fmt.Errorf("start %s: %w", args[0], err)
	}

	return nil
}

// startDetached starts the command and reaps it in the background.
func startDetached(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			logger.WarnKV(ctx, "Cue command exited with error", "command", name, "error", err)
		}
	}()

	return nil
}

func expand(template []string, r *strings.Replacer) []string {
	args := make([]string, len(template))
	for i, arg := range template {
		args[i] = r.Replace(arg)
	}

	return args
}

// quote escapes single quotes for the PowerShell templates; other platforms
// receive each value as one argv element and are unaffected.
func quote(value string) string {
	if runtime.GOOS != "windows" {
		return value
	}

	return strings.ReplaceAll(value, "'", "''")
}
