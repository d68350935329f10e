package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/bomdia/internal"
	"codeberg.org/snonux/bomdia/internal/anki"
	"codeberg.org/snonux/bomdia/internal/audio"
	"codeberg.org/snonux/bomdia/internal/batch"
	"codeberg.org/snonux/bomdia/internal/cli"
	"codeberg.org/snonux/bomdia/internal/clipboard"
	"codeberg.org/snonux/bomdia/internal/dictionary"
	"codeberg.org/snonux/bomdia/internal/models"
	"codeberg.org/snonux/bomdia/internal/resolver"
	"codeberg.org/snonux/bomdia/internal/session"
	"codeberg.org/snonux/bomdia/internal/storage"
	"codeberg.org/snonux/bomdia/internal/translation"
)

// ErrTranslationFailed is returned when neither the remote service nor the
// phrase table produced a translation
var ErrTranslationFailed = errors.New(resolver.FailureMessage)

// ErrNothingToExport is returned by ExportAnki when nothing was saved
var ErrNothingToExport = errors.New("no saved translations to export")

// Exporter writes the pronunciation of text to an audio file
type Exporter interface {
	Export(ctx context.Context, text string, slow bool, rate float64, outputFile string) error
}

// Dependencies are the collaborators of a Processor
type Dependencies struct {
	Remote      translation.Translator
	Local       resolver.Matcher
	Persistence storage.Store
	Speaker     session.Speaker
	Clipboard   session.Clipboard
	Exporter    Exporter
	Preferences session.Preferences
	StalePolicy session.StalePolicy
	Debounce    time.Duration
	Logger      *zap.SugaredLogger

	// Out and Err default to os.Stdout and os.Stderr
	Out io.Writer
	Err io.Writer
}

// Processor handles the main translation logic
type Processor struct {
	flags    *cli.Flags
	logger   *zap.SugaredLogger
	persist  storage.Store
	resolver *resolver.Resolver
	store    *session.Store
	speaker  session.Speaker
	exporter Exporter
	out      io.Writer
	errOut   io.Writer
}

// NewProcessor creates a processor from the viper configuration
func NewProcessor(ctx context.Context, flags *cli.Flags, logger *zap.SugaredLogger) (*Processor, error) {
	remote, err := translation.NewFromConfig(ctx, cli.TranslationConfig(), logger)
	if err != nil {
		return nil, err
	}

	local, err := cli.Dictionary()
	if err != nil {
		return nil, err
	}

	policy, err := cli.StalePolicy()
	if err != nil {
		return nil, err
	}

	backend, dir := cli.StorageBackend()
	persist, err := storage.Open(backend, dir)
	if err != nil {
		// The session still works, it just forgets everything on exit
		logger.Warnw("storage unavailable, continuing in memory", "backend", backend, "dir", dir, "error", err)
		persist = storage.NewMemoryStore()
	}

	deps := Dependencies{
		Remote:      remote,
		Local:       local,
		Persistence: persist,
		Clipboard:   clipboard.New(),
		Preferences: cli.Preferences(flags.Manual),
		StalePolicy: policy,
		Debounce:    cli.Debounce(),
		Logger:      logger,
	}

	speaker := audio.NewSpeaker(audio.DefaultConfig(), logger)
	deps.Speaker = speaker
	if exporter, ok := speaker.(Exporter); ok {
		deps.Exporter = exporter
	}

	return New(flags, deps)
}

// New creates a processor around explicit dependencies
func New(flags *cli.Flags, deps Dependencies) (*Processor, error) {
	if deps.Remote == nil {
		return nil, fmt.Errorf("remote translator is required")
	}
	if deps.Local == nil {
		deps.Local = dictionary.Default()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop().Sugar()
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Err == nil {
		deps.Err = os.Stderr
	}
	if deps.Persistence == nil {
		deps.Persistence = storage.NewMemoryStore()
	}
	if flags.ExportAudio != "" && deps.Exporter == nil {
		return nil, fmt.Errorf("audio export requires espeak-ng")
	}

	r := resolver.New(deps.Remote, deps.Local, nil,
		resolver.WithDebounce(deps.Debounce),
		resolver.WithLogger(deps.Logger))

	prefs := deps.Preferences
	store := session.New(r, session.Options{
		Persistence: deps.Persistence,
		Speaker:     deps.Speaker,
		Clipboard:   deps.Clipboard,
		Logger:      deps.Logger,
		Preferences: &prefs,
		StalePolicy: deps.StalePolicy,
	})

	return &Processor{
		flags:    flags,
		logger:   deps.Logger,
		persist:  deps.Persistence,
		resolver: r,
		store:    store,
		speaker:  deps.Speaker,
		exporter: deps.Exporter,
		out:      &syncWriter{w: deps.Out},
		errOut:   deps.Err,
	}, nil
}

// Store returns the session store
func (p *Processor) Store() *session.Store {
	return p.store
}

// Close stops the session and releases the persistence backend
func (p *Processor) Close() error {
	p.store.Close()
	return p.persist.Close()
}

// ProcessSingle translates text once and applies the --save, --copy,
// --speak and --export-audio flags to the result
func (p *Processor) ProcessSingle(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}

	p.store.SetAutoTranslate(false)
	outcome, err := p.translate(ctx, text)
	if err != nil {
		return err
	}

	fmt.Fprintln(p.out, formatOutcome(outcome))
	p.afterTranslation(ctx, outcome)

	if p.flags.Speak {
		p.store.Speak()
		if w, ok := p.speaker.(interface{ Wait() }); ok {
			w.Wait()
		}
	}
	return nil
}

// ProcessBatch translates every phrase of the batch file
func (p *Processor) ProcessBatch(ctx context.Context) error {
	entries, err := batch.ReadBatchFile(p.flags.BatchFile)
	if err != nil {
		return err
	}

	p.store.SetAutoTranslate(false)

	// Track statistics
	processedCount := 0
	fallbackCount := 0
	mismatchCount := 0
	errorCount := 0

	for i, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		outcome, err := p.translate(ctx, entry.English)
		if err != nil {
			fmt.Fprintf(p.errOut, "Error translating '%s' (line %d): %s\n", entry.English, entry.Line, outcome.Message())
			errorCount++
			continue
		}

		processedCount++
		if outcome.FallbackUsed {
			fallbackCount++
		}
		fmt.Fprintf(p.out, "%d/%d: %s -> %s\n", i+1, len(entries), entry.English, formatOutcome(outcome))

		if entry.Expected != "" && dictionary.Normalize(entry.Expected) != dictionary.Normalize(outcome.TranslatedText) {
			fmt.Fprintf(p.out, "  expected: %s\n", entry.Expected)
			mismatchCount++
		}

		p.afterTranslation(ctx, outcome)
	}

	// Print summary
	fmt.Fprintf(p.out, "\n=== Batch Translation Summary ===\n")
	fmt.Fprintf(p.out, "Total phrases: %d\n", len(entries))
	fmt.Fprintf(p.out, "Translated: %d\n", processedCount)
	fmt.Fprintf(p.out, "From phrase table: %d\n", fallbackCount)
	if mismatchCount > 0 {
		fmt.Fprintf(p.out, "Differing from expected: %d\n", mismatchCount)
	}
	if errorCount > 0 {
		fmt.Fprintf(p.out, "Errors: %d\n", errorCount)
	}
	fmt.Fprintf(p.out, "=================================\n")

	return nil
}

// PrintHistory prints the translation history, most recent first
func (p *Processor) PrintHistory() {
	history := p.store.History()
	if len(history) == 0 {
		fmt.Fprintln(p.out, "History is empty.")
		return
	}
	for _, r := range history {
		fmt.Fprintln(p.out, formatRecord(r))
	}
}

// PrintSaved prints the saved translations, most recent first
func (p *Processor) PrintSaved() {
	saved := p.store.Saved()
	if len(saved) == 0 {
		fmt.Fprintln(p.out, "No saved translations.")
		return
	}
	for _, item := range saved {
		fmt.Fprintf(p.out, "%s  %s -> %s\n", item.Time().Format("2006-01-02 15:04"), item.SourceText, item.TranslatedText)
	}
}

// ExportAnki writes the saved translations as flashcards to the --anki file.
// With --export-audio every card also gets its pronunciation attached.
func (p *Processor) ExportAnki(ctx context.Context) error {
	saved := p.store.Saved()
	if len(saved) == 0 {
		return ErrNothingToExport
	}

	cards := anki.CardsFromSaved(saved)
	if p.flags.ExportAudio != "" {
		prefs := p.store.Preferences()
		for i := range cards {
			file := filepath.Join(p.flags.ExportAudio, internal.SanitizeFilename(cards[i].English)+".wav")
			if err := p.exporter.Export(ctx, cards[i].Portuguese, prefs.SlowSpeech, prefs.VoiceRate, file); err != nil {
				fmt.Fprintf(p.errOut, "Warning: failed to export audio for '%s': %v\n", cards[i].English, err)
				continue
			}
			cards[i].AudioFile = file
		}
	}

	gen := anki.NewGenerator(cards...)
	var err error
	if p.flags.AnkiCSV {
		err = gen.GenerateCSV(p.flags.Anki, true)
	} else {
		err = gen.GenerateAPKG(p.flags.Anki, p.flags.DeckName)
	}
	if err != nil {
		return fmt.Errorf("failed to export Anki cards: %w", err)
	}

	total, withAudio := gen.Stats()
	fmt.Fprintf(p.out, "Exported %d cards (%d with audio) to %s\n", total, withAudio, p.flags.Anki)
	return nil
}

// translate runs one manual attempt for text
func (p *Processor) translate(ctx context.Context, text string) (resolver.Outcome, error) {
	p.store.SetInputText(ctx, text)
	outcome, ran := p.store.RequestManualTranslate(ctx)
	if !ran {
		return outcome, fmt.Errorf("text cannot be empty")
	}
	if outcome.State == resolver.Failed {
		p.logger.Debugw("translation failed", "text", text, "error", outcome.Err)
		return outcome, ErrTranslationFailed
	}
	return outcome, nil
}

// afterTranslation applies the save, copy and export flags
func (p *Processor) afterTranslation(ctx context.Context, outcome resolver.Outcome) {
	if p.flags.Save && p.store.Save() {
		fmt.Fprintln(p.out, "Saved.")
	}

	if p.flags.Copy {
		if p.store.Copy() {
			fmt.Fprintln(p.out, "Copied to clipboard.")
		} else {
			fmt.Fprintln(p.errOut, "Warning: could not copy to clipboard")
		}
	}

	if p.flags.ExportAudio != "" {
		prefs := p.store.Preferences()
		file := filepath.Join(p.flags.ExportAudio, internal.SanitizeFilename(outcome.Source)+".wav")
		if err := p.exporter.Export(ctx, outcome.TranslatedText, prefs.SlowSpeech, prefs.VoiceRate, file); err != nil {
			fmt.Fprintf(p.errOut, "Warning: failed to export audio: %v\n", err)
		} else {
			fmt.Fprintf(p.out, "Audio saved to: %s\n", file)
		}
	}
}

func formatOutcome(outcome resolver.Outcome) string {
	if outcome.FallbackUsed {
		return outcome.TranslatedText + " (offline phrase table)"
	}
	return outcome.TranslatedText
}

func formatRecord(r models.TranslationRecord) string {
	var tags []string
	if r.FallbackUsed {
		tags = append(tags, "offline")
	}
	if r.Saved {
		tags = append(tags, "saved")
	}

	line := fmt.Sprintf("%s  %s -> %s", r.Time().Format("2006-01-02 15:04"), r.Source, r.Target)
	if len(tags) > 0 {
		line += " [" + strings.Join(tags, ", ") + "]"
	}
	return line
}
