package processor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"codeberg.org/snonux/bomdia/internal/session"
)

const consoleHelp = `Type English text to translate it. Commands:
  :translate          translate the current input now
  :clear              clear input and output
  :save               save the current translation
  :copy               copy the current translation to the clipboard
  :speak              speak the current translation
  :history            show the translation history
  :saved              show the saved translations
  :set <name> <value> set autoTranslate, slowSpeech or voiceRate
  :prefs              show the preferences
  :help               show this help
  :quit               leave`

// drainTimeout bounds how long leaving the console waits for a scheduled
// or running translation
const drainTimeout = 30 * time.Second

// syncWriter serializes writes from the console and the translation callbacks
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(b)
}

// console prints the result of every finished attempt, whether it was
// started by a command or by the auto-translate timer
type console struct {
	p *Processor

	mu      sync.Mutex
	loading bool
}

// RunInteractive runs the console on in until :quit, end of input or ctx is done
func (p *Processor) RunInteractive(ctx context.Context, in io.Reader) error {
	c := &console{p: p}
	p.store.Subscribe(c.onChange)

	fmt.Fprintln(p.out, "bomdia: English to European Portuguese. Type :help for commands.")

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				c.drain(ctx)
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if quit := c.handle(ctx, line); quit {
				c.drain(ctx)
				return nil
			}
		}
	}
}

func (c *console) handle(ctx context.Context, line string) bool {
	p := c.p
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if !strings.HasPrefix(line, ":") {
		p.store.SetInputText(ctx, line)
		if !p.store.Preferences().AutoTranslate {
			p.store.RequestManualTranslate(ctx)
		}
		return false
	}

	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ":quit", ":q", ":exit":
		return true
	case ":translate", ":t":
		if _, ran := p.store.RequestManualTranslate(ctx); !ran {
			fmt.Fprintln(p.out, "Nothing to translate.")
		}
	case ":clear":
		p.store.Clear()
		fmt.Fprintln(p.out, "Cleared.")
	case ":save":
		if p.store.Save() {
			fmt.Fprintln(p.out, "Saved.")
		} else {
			fmt.Fprintln(p.out, "Nothing to save.")
		}
	case ":copy":
		if p.store.Copy() {
			fmt.Fprintln(p.out, "Copied to clipboard.")
		} else {
			fmt.Fprintln(p.out, "Nothing copied.")
		}
	case ":speak":
		p.store.Speak()
	case ":history":
		p.PrintHistory()
	case ":saved":
		p.PrintSaved()
	case ":set":
		if len(fields) != 3 {
			fmt.Fprintln(p.out, "Usage: :set <name> <value>")
			break
		}
		if err := p.store.TogglePreference(fields[1], fields[2]); err != nil {
			fmt.Fprintf(p.out, "Error: %v\n", err)
			break
		}
		c.printPreferences()
	case ":prefs":
		c.printPreferences()
	case ":help", ":h":
		fmt.Fprintln(p.out, consoleHelp)
	default:
		fmt.Fprintf(p.out, "Unknown command %s, type :help\n", fields[0])
	}
	return false
}

// onChange prints the outcome when an attempt finishes
func (c *console) onChange(snap session.Snapshot) {
	c.mu.Lock()
	finished := c.loading && !snap.Loading
	c.loading = snap.Loading
	c.mu.Unlock()

	if !finished {
		return
	}
	if snap.Error != "" {
		fmt.Fprintf(c.p.out, "Error: %s\n", snap.Error)
		return
	}
	if snap.FallbackUsed {
		fmt.Fprintf(c.p.out, "pt: %s (offline phrase table)\n", snap.Output)
		return
	}
	fmt.Fprintf(c.p.out, "pt: %s\n", snap.Output)
}

func (c *console) printPreferences() {
	prefs := c.p.store.Preferences()
	fmt.Fprintf(c.p.out, "autoTranslate=%t slowSpeech=%t voiceRate=%.2f\n",
		prefs.AutoTranslate, prefs.SlowSpeech, prefs.VoiceRate)
}

// drain waits for a scheduled or running automatic translation
func (c *console) drain(ctx context.Context) {
	deadline := time.After(drainTimeout)
	for !c.p.resolver.Idle() {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}
