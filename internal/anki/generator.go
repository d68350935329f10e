// Package anki exports saved translations as Anki flashcards, either as a
// CSV import file or as an .apkg package.
package anki

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"codeberg.org/snonux/bomdia/internal/models"
)

// Card represents a single Anki flashcard
type Card struct {
	English    string // The English phrase
	Portuguese string // The European Portuguese translation
	AudioFile  string // Optional path to a pronunciation file
	Notes      string // Optional notes
}

// CardsFromSaved turns saved items into cards, keeping their order
func CardsFromSaved(items []models.SavedItem) []Card {
	cards := make([]Card, 0, len(items))
	for _, item := range items {
		cards = append(cards, Card{
			English:    item.SourceText,
			Portuguese: item.TranslatedText,
			Notes:      "Saved " + item.Time().Format("2006-01-02"),
		})
	}
	return cards
}

// Generator creates Anki-compatible import files
type Generator struct {
	cards []Card
}

// NewGenerator creates a new Anki generator
func NewGenerator(cards ...Card) *Generator {
	return &Generator{cards: cards}
}

// AddCard adds a card to the collection
func (g *Generator) AddCard(card Card) {
	g.cards = append(g.cards, card)
}

// Cards returns the cards of the collection
func (g *Generator) Cards() []Card {
	return g.cards
}

// GenerateCSV creates a CSV file for Anki import
func (g *Generator) GenerateCSV(outputPath string, includeHeaders bool) error {
	// Create output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	// Create CSV writer
	writer := csv.NewWriter(file)

	// Write headers if requested
	if includeHeaders {
		headers := []string{"English", "Portuguese", "Audio", "Notes"}
		if err := writer.Write(headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	// Write cards
	for _, card := range g.cards {
		record := []string{
			card.English,
			card.Portuguese,
			formatAudioField(card.AudioFile),
			card.Notes,
		}

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write card: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// GenerateAPKG creates a proper .apkg file for Anki import
func (g *Generator) GenerateAPKG(outputPath, deckName string) error {
	apkgGen := NewAPKGGenerator(deckName)
	for _, card := range g.cards {
		apkgGen.AddCard(card)
	}
	return apkgGen.GenerateAPKG(outputPath)
}

// Stats returns statistics about the card collection
func (g *Generator) Stats() (totalCards, withAudio int) {
	totalCards = len(g.cards)
	for _, card := range g.cards {
		if card.AudioFile != "" {
			withAudio++
		}
	}
	return
}

// formatAudioField formats the audio file reference for Anki
func formatAudioField(audioFile string) string {
	if audioFile == "" {
		return ""
	}

	// Anki audio format: [sound:filename.wav]
	return fmt.Sprintf("[sound:%s]", filepath.Base(audioFile))
}
