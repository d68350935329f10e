package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultDeckName is used when no deck name is given
const DefaultDeckName = "Portuguese Phrases"

// APKGGenerator creates Anki package files (.apkg)
type APKGGenerator struct {
	deckName string
	deckID   int64
	modelID  int64
	now      time.Time
	cards    []Card
	// media maps the name used in card fields to the numbered file in the package
	media map[string]int
}

// NewAPKGGenerator creates a new APKG generator
func NewAPKGGenerator(deckName string) *APKGGenerator {
	if deckName == "" {
		deckName = DefaultDeckName
	}

	// Generate IDs based on timestamp to ensure uniqueness
	now := time.Now()
	return &APKGGenerator{
		deckName: deckName,
		deckID:   now.UnixMilli(),
		modelID:  now.UnixMilli() + 1,
		now:      now,
		media:    make(map[string]int),
	}
}

// AddCard adds a card to the generator
func (g *APKGGenerator) AddCard(card Card) {
	g.cards = append(g.cards, card)
}

// GenerateAPKG creates an .apkg file
func (g *APKGGenerator) GenerateAPKG(outputPath string) error {
	// Create temporary directory for building the package
	tempDir, err := os.MkdirTemp("", "anki_export_*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	// Copy media files first, card fields refer to them
	if err := g.copyMediaFiles(tempDir); err != nil {
		return fmt.Errorf("failed to copy media files: %w", err)
	}

	if err := g.createMediaMapping(tempDir); err != nil {
		return fmt.Errorf("failed to create media mapping: %w", err)
	}

	dbPath := filepath.Join(tempDir, "collection.anki2")
	if err := g.createDatabase(dbPath); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	if err := createZipPackage(tempDir, outputPath); err != nil {
		return fmt.Errorf("failed to create zip package: %w", err)
	}
	return nil
}

// createDatabase creates the Anki SQLite database
func (g *APKGGenerator) createDatabase(dbPath string) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, query := range schema {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}

	if err := g.insertCollection(db); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}

	if err := g.insertNotesAndCards(db); err != nil {
		return fmt.Errorf("failed to insert notes and cards: %w", err)
	}
	return nil
}

var schema = []string{
	`CREATE TABLE col (
		id integer PRIMARY KEY, crt integer NOT NULL, mod integer NOT NULL,
		scm integer NOT NULL, ver integer NOT NULL, dty integer NOT NULL,
		usn integer NOT NULL, ls integer NOT NULL, conf text NOT NULL,
		models text NOT NULL, decks text NOT NULL, dconf text NOT NULL,
		tags text NOT NULL
	)`,
	`CREATE TABLE notes (
		id integer PRIMARY KEY, guid text NOT NULL, mid integer NOT NULL,
		mod integer NOT NULL, usn integer NOT NULL, tags text NOT NULL,
		flds text NOT NULL, sfld text NOT NULL, csum integer NOT NULL,
		flags integer NOT NULL, data text NOT NULL
	)`,
	`CREATE TABLE cards (
		id integer PRIMARY KEY, nid integer NOT NULL, did integer NOT NULL,
		ord integer NOT NULL, mod integer NOT NULL, usn integer NOT NULL,
		type integer NOT NULL, queue integer NOT NULL, due integer NOT NULL,
		ivl integer NOT NULL, factor integer NOT NULL, reps integer NOT NULL,
		lapses integer NOT NULL, left integer NOT NULL, odue integer NOT NULL,
		odid integer NOT NULL, flags integer NOT NULL, data text NOT NULL
	)`,
	`CREATE TABLE revlog (
		id integer PRIMARY KEY, cid integer NOT NULL, usn integer NOT NULL,
		ease integer NOT NULL, ivl integer NOT NULL, lastIvl integer NOT NULL,
		factor integer NOT NULL, time integer NOT NULL, type integer NOT NULL
	)`,
	`CREATE TABLE graves (usn integer NOT NULL, oid integer NOT NULL, type integer NOT NULL)`,
	`CREATE INDEX ix_notes_csum ON notes (csum)`,
	`CREATE INDEX ix_notes_usn ON notes (usn)`,
	`CREATE INDEX ix_cards_usn ON cards (usn)`,
	`CREATE INDEX ix_cards_nid ON cards (nid)`,
	`CREATE INDEX ix_cards_sched ON cards (did, queue, due)`,
	`CREATE INDEX ix_revlog_usn ON revlog (usn)`,
	`CREATE INDEX ix_revlog_cid ON revlog (cid)`,
}

// insertCollection inserts the collection metadata
func (g *APKGGenerator) insertCollection(db *sql.DB) error {
	now := g.now.Unix()

	deck := func(id int64, name, desc string) map[string]interface{} {
		return map[string]interface{}{
			"id": id, "name": name, "mod": now, "desc": desc,
			"collapsed": false, "dyn": 0, "conf": 1, "usn": 0,
			"newToday": []int{0, 0}, "revToday": []int{0, 0},
			"lrnToday": []int{0, 0}, "timeToday": []int{0, 0},
			"browserCollapsed": false, "extendNew": 10, "extendRev": 50,
		}
	}
	decks := map[string]interface{}{"1": deck(1, "Default", "")}
	decks[strconv.FormatInt(g.deckID, 10)] = deck(g.deckID, g.deckName, "European Portuguese phrases saved with bomdia")

	models := map[string]interface{}{
		strconv.FormatInt(g.modelID, 10): g.noteType(),
	}

	conf := map[string]interface{}{
		"nextPos": 1, "estTimes": true, "activeDecks": []int64{1},
		"sortType": "noteFld", "sortBackwards": false, "addToCur": true,
		"curDeck": 1, "newSpread": 0, "dueCounts": true, "collapseTime": 1200,
		"timeLim": 0, "schedVer": 1, "curModel": strconv.FormatInt(g.modelID, 10),
		"dayLearnFirst": false,
	}

	dconf := map[string]interface{}{
		"1": map[string]interface{}{
			"id": 1, "name": "Default", "dyn": 0,
			"new": map[string]interface{}{
				"delays": []int{1, 10}, "ints": []int{1, 4, 7}, "initialFactor": 2500,
				"perDay": 20, "order": 1, "bury": true, "separate": true,
			},
			"lapse": map[string]interface{}{
				"delays": []int{10}, "mult": 0, "minInt": 1, "leechFails": 8, "leechAction": 0,
			},
			"rev": map[string]interface{}{
				"perDay": 100, "ease4": 1.3, "fuzz": 0.05, "maxIvl": 36500,
				"ivlFct": 1, "bury": true, "minSpace": 1,
			},
			"timer": 0, "maxTaken": 60, "usn": 0, "mod": now,
			"autoplay": true, "replayq": true,
		},
	}

	encoded := make([]string, 0, 4)
	for _, v := range []interface{}{conf, models, decks, dconf} {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		encoded = append(encoded, string(data))
	}

	_, err := db.Exec(`INSERT INTO col VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		1,        // id
		now,      // crt
		now*1000, // mod
		now*1000, // scm
		11,       // ver (schema version)
		0,        // dty
		0,        // usn
		0,        // ls
		encoded[0], encoded[1], encoded[2], encoded[3],
		"{}", // tags
	)
	return err
}

// noteType creates the note type configuration
func (g *APKGGenerator) noteType() map[string]interface{} {
	field := func(name string, ord int) map[string]interface{} {
		return map[string]interface{}{
			"name": name, "ord": ord, "sticky": false, "rtl": false,
			"font": "Arial", "size": 20, "media": []string{},
		}
	}

	return map[string]interface{}{
		"id":    g.modelID,
		"name":  "Phrases from bomdia (Basic + Reverse)",
		"type":  0,
		"mod":   g.now.Unix(),
		"usn":   -1,
		"sortf": 0,
		"did":   g.deckID,
		"req":   [][]interface{}{{0, "all", []int{0}}, {1, "all", []int{1}}},
		"vers":  []int{},
		"tags":  []string{},
		"flds": []map[string]interface{}{
			field("English", 0),
			field("Portuguese", 1),
			field("Audio", 2),
			field("Notes", 3),
		},
		"tmpls": []map[string]interface{}{
			{"name": "Forward", "ord": 0, "qfmt": frontTemplate, "afmt": backTemplate, "did": nil, "bqfmt": "", "bafmt": ""},
			{"name": "Reverse", "ord": 1, "qfmt": reverseFrontTemplate, "afmt": reverseBackTemplate, "did": nil, "bqfmt": "", "bafmt": ""},
		},
		"css":       css,
		"latexPre":  "\\documentclass[12pt]{article}\n\\begin{document}",
		"latexPost": "\\end{document}",
	}
}

const frontTemplate = `<div class="english">{{English}}</div>`

const backTemplate = `{{FrontSide}}

<hr id="answer">

<div class="portuguese">{{Portuguese}}</div>
{{#Audio}}<div class="audio">{{Audio}}</div>{{/Audio}}
{{#Notes}}<div class="notes">{{Notes}}</div>{{/Notes}}`

const reverseFrontTemplate = `<div class="portuguese">{{Portuguese}}</div>
{{#Audio}}<div class="audio">{{Audio}}</div>{{/Audio}}`

const reverseBackTemplate = `{{FrontSide}}

<hr id="answer">

<div class="english">{{English}}</div>
{{#Notes}}<div class="notes">{{Notes}}</div>{{/Notes}}`

const css = `.card {
  font-family: Arial, sans-serif;
  font-size: 20px;
  text-align: center;
  color: #333;
  background-color: white;
}

.english {
  font-size: 28px;
  font-weight: bold;
  color: #2c3e50;
  margin: 20px 0;
}

.portuguese {
  font-size: 32px;
  font-weight: bold;
  color: #006600;
  margin: 20px 0;
}

.notes {
  font-size: 16px;
  color: #7f8c8d;
  font-style: italic;
}`

// insertNotesAndCards inserts all notes and cards into the database
func (g *APKGGenerator) insertNotesAndCards(db *sql.DB) error {
	mod := g.now.Unix()
	cardQuery := `INSERT INTO cards VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')`

	for i, card := range g.cards {
		// Generate unique IDs, leaving space for 2 cards per note
		noteID := g.now.UnixMilli() + int64(i*3)

		audioField := ""
		if name := mediaName(i, card.AudioFile); name != "" {
			if _, ok := g.media[name]; ok {
				audioField = fmt.Sprintf("[sound:%s]", name)
			}
		}

		// Join fields with field separator (ASCII 31)
		fields := strings.Join([]string{card.English, card.Portuguese, audioField, card.Notes}, "\x1f")
		guid := fmt.Sprintf("bd_%d_%d", g.now.Unix(), i)

		_, err := db.Exec(`INSERT INTO notes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			noteID,       // id
			guid,         // guid
			g.modelID,    // mid
			mod,          // mod
			-1,           // usn
			"",           // tags
			fields,       // flds
			card.English, // sfld (sort field)
			0,            // csum
			0,            // flags
			"",           // data
		)
		if err != nil {
			return fmt.Errorf("failed to insert note: %w", err)
		}

		// Forward and reverse card; due is the position of new cards
		for ord := 0; ord < 2; ord++ {
			cardID := noteID + int64(ord) + 1
			if _, err := db.Exec(cardQuery, cardID, noteID, g.deckID, ord, mod, -1, noteID+int64(ord)); err != nil {
				return fmt.Errorf("failed to insert card %d of note %d: %w", ord, noteID, err)
			}
		}
	}
	return nil
}

// mediaName is the unique name of the audio file of card i inside the package
func mediaName(i int, audioFile string) string {
	if audioFile == "" {
		return ""
	}
	return fmt.Sprintf("bomdia_%d_%s", i, filepath.Base(audioFile))
}

// copyMediaFiles copies media files and assigns them numbers
func (g *APKGGenerator) copyMediaFiles(tempDir string) error {
	for i, card := range g.cards {
		name := mediaName(i, card.AudioFile)
		if name == "" || !fileExists(card.AudioFile) {
			continue
		}

		num := len(g.media)
		if err := copyFile(card.AudioFile, filepath.Join(tempDir, strconv.Itoa(num))); err != nil {
			return fmt.Errorf("failed to copy audio file %s: %w", card.AudioFile, err)
		}
		g.media[name] = num
	}
	return nil
}

// createMediaMapping creates the media mapping JSON file
func (g *APKGGenerator) createMediaMapping(tempDir string) error {
	// Reverse mapping (number -> filename)
	mapping := make(map[string]string, len(g.media))
	for name, num := range g.media {
		mapping[strconv.Itoa(num)] = name
	}

	data, err := json.Marshal(mapping)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(tempDir, "media"), data, 0644)
}

// createZipPackage creates the final .apkg zip file
func createZipPackage(tempDir, outputPath string) error {
	zipFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer zipFile.Close()

	archive := zip.NewWriter(zipFile)

	err = filepath.Walk(tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		relPath, err := filepath.Rel(tempDir, path)
		if err != nil {
			return err
		}

		writer, err := archive.Create(relPath)
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(writer, file)
		return err
	})
	if err != nil {
		return err
	}
	return archive.Close()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}
