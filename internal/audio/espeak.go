package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ESpeakConfig holds configuration for espeak-ng playback
type ESpeakConfig struct {
	Binary    string // Executable name or path (default: "espeak-ng")
	Pitch     int    // Pitch adjustment, 0 to 99 (default: 50)
	Amplitude int    // Volume/amplitude, 0 to 200 (default: 100)
}

// DefaultConfig returns the default espeak-ng configuration
func DefaultConfig() *ESpeakConfig {
	return &ESpeakConfig{
		Binary:    "espeak-ng",
		Pitch:     50,
		Amplitude: 100,
	}
}

// ESpeak speaks Portuguese text through espeak-ng. Starting an utterance
// kills the one still playing.
type ESpeak struct {
	config *ESpeakConfig
	logger *zap.SugaredLogger

	mu      sync.Mutex
	current *exec.Cmd
	done    chan struct{}
}

// New creates a new ESpeak instance with the given configuration
func New(config *ESpeakConfig, logger *zap.SugaredLogger) (*ESpeak, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Binary == "" {
		config.Binary = "espeak-ng"
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	// Check if espeak-ng is installed
	if err := checkInstalled(config.Binary); err != nil {
		return nil, err
	}

	return &ESpeak{config: config, logger: logger}, nil
}

// Name returns the engine name
func (e *ESpeak) Name() string {
	return "espeak-ng"
}

// ListVoices returns the Portuguese voices espeak-ng knows about
func (e *ESpeak) ListVoices(ctx context.Context) ([]Voice, error) {
	out, err := exec.CommandContext(ctx, e.config.Binary, "--voices=pt").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list voices: %w", err)
	}
	return ParseVoices(bytes.NewReader(out))
}

// Speak plays text with a pt-PT voice, or the engine default if there is
// none. Failures are logged and otherwise ignored.
func (e *ESpeak) Speak(text string, slow bool, rate float64) {
	if strings.TrimSpace(text) == "" {
		return
	}

	cmd := exec.Command(e.config.Binary, e.args(context.Background(), slow, rate)...)
	cmd.Stdin = strings.NewReader(text)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()
	if err := cmd.Start(); err != nil {
		e.logger.Debugw("speech failed to start", "error", err)
		return
	}
	e.current = cmd
	done := make(chan struct{})
	e.done = done

	go func() {
		err := cmd.Wait()

		e.mu.Lock()
		if e.current == cmd {
			e.current = nil
		}
		e.mu.Unlock()
		close(done)

		if err != nil {
			e.logger.Debugw("speech ended with error", "error", err)
		}
	}()
}

// Stop cancels the current utterance
func (e *ESpeak) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

// Wait blocks until the latest utterance has finished or was stopped
func (e *ESpeak) Wait() {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Speaking reports whether an utterance is playing
func (e *ESpeak) Speaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}

// Export writes the utterance to a WAV file instead of playing it
func (e *ESpeak) Export(ctx context.Context, text string, slow bool, rate float64, outputFile string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}

	// Ensure output directory exists
	dir := filepath.Dir(outputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	args := append(e.args(ctx, slow, rate), "-w", outputFile)
	cmd := exec.CommandContext(ctx, e.config.Binary, args...)
	cmd.Stdin = strings.NewReader(text)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("espeak-ng failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

func (e *ESpeak) args(ctx context.Context, slow bool, rate float64) []string {
	var args []string

	voices, err := e.ListVoices(ctx)
	if err != nil {
		e.logger.Debugw("voice listing failed, using default voice", "error", err)
	}
	if voice, ok := SelectVoice(voices); ok {
		args = append(args, "-v", voice.Lang)
	}

	return append(args,
		"-s", strconv.Itoa(WordsPerMinute(EffectiveRate(slow, rate))),
		"-p", strconv.Itoa(e.config.Pitch),
		"-a", strconv.Itoa(e.config.Amplitude),
	)
}

func (e *ESpeak) stopLocked() {
	if e.current == nil || e.current.Process == nil {
		return
	}
	if err := e.current.Process.Kill(); err != nil {
		e.logger.Debugw("failed to stop speech", "error", err)
	}
	e.current = nil
}

// checkInstalled verifies that espeak-ng is available on the system
func checkInstalled(binary string) error {
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("espeak-ng is not installed or not in PATH: %w", err)
	}
	return nil
}
