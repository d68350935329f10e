package batch

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		fileContent string
		want        []PhraseEntry
	}{
		{
			name:        "empty file",
			fileContent: "",
			want:        nil,
		},
		{
			name:        "only whitespace",
			fileContent: "   \n\t\r\n   ",
			want:        nil,
		},
		{
			name: "phrases with expected translations",
			fileContent: `good morning = bom dia
thank you = obrigado`,
			want: []PhraseEntry{
				{Line: 1, English: "good morning", Expected: "bom dia"},
				{Line: 2, English: "thank you", Expected: "obrigado"},
			},
		},
		{
			name: "comments and empty lines",
			fileContent: `# greetings

good morning
  # indented comment
  see you later  
`,
			want: []PhraseEntry{
				{Line: 3, English: "good morning"},
				{Line: 5, English: "see you later"},
			},
		},
		{
			name:        "windows line endings",
			fileContent: "hello\r\nthank you = obrigado\r\ncat",
			want: []PhraseEntry{
				{Line: 1, English: "hello"},
				{Line: 2, English: "thank you", Expected: "obrigado"},
				{Line: 3, English: "cat"},
			},
		},
		{
			name:        "multiple equals signs",
			fileContent: `a = b = c`,
			want: []PhraseEntry{
				{Line: 1, English: "a", Expected: "b = c"},
			},
		},
		{
			name:        "empty English part",
			fileContent: "= bom dia\ngood night =",
			want: []PhraseEntry{
				{Line: 2, English: "good night"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.fileContent))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadBatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phrases.txt")
	if err := os.WriteFile(path, []byte("good morning\n# skip\nthank you = obrigado\n"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	got, err := ReadBatchFile(path)
	if err != nil {
		t.Fatalf("ReadBatchFile() error = %v", err)
	}
	if len(got) != 2 || got[1].Expected != "obrigado" {
		t.Errorf("ReadBatchFile() = %+v", got)
	}
}

func TestReadBatchFileMissing(t *testing.T) {
	if _, err := ReadBatchFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Expected error for missing file")
	}
}
