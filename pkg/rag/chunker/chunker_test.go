package chunker

import (
	"strings"
	"testing"
	"time"
)

func TestSplitTextShortInput(t *testing.T) {
	c := New()

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "fits in one chunk",
			input:    "Quarterly revenue grew by 12 percent.",
			expected: []string{"Quarterly revenue grew by 12 percent."},
		},
		{
			name:     "trims surrounding whitespace",
			input:    "  padded text  ",
			expected: []string{"padded text"},
		},
		{
			name:     "empty input yields nothing",
			input:    "",
			expected: []string{},
		},
		{
			name:     "whitespace only yields nothing",
			input:    "   \n\t  ",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.SplitText(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d chunks, got %d: %v", len(tt.expected), len(got), got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("chunk %d: expected %q, got %q", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestSplitTextWindowing(t *testing.T) {
	c := &Chunker{ChunkSize: 100, Overlap: 20}

	sentence := "The weekly sales report shows steady growth across regions. "
	text := strings.Repeat(sentence, 20)

	chunks := c.SplitText(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for %d chars, got %d", len(text), len(chunks))
	}
	for i, chunk := range chunks {
		if chunk == "" {
			t.Errorf("chunk %d is empty", i)
		}
		if len(chunk) > c.ChunkSize {
			t.Errorf("chunk %d exceeds chunk size: %d chars", i, len(chunk))
		}
	}
	// Sentence-aligned cutting: chunks should end at sentence boundaries
	for i, chunk := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(chunk, ".") {
			t.Errorf("chunk %d does not end at a sentence boundary: %q", i, chunk)
		}
	}
}

func TestSplitTextPrefersParagraphBreak(t *testing.T) {
	c := &Chunker{ChunkSize: 100, Overlap: 20}

	first := "Alpha paragraph about revenue."
	second := "Beta paragraph about churn. It continues with more detail to push past the window size limit here."
	text := first + "\n\n" + second

	chunks := c.SplitText(text)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != first {
		t.Errorf("expected first chunk to end at paragraph break, got %q", chunks[0])
	}
}

func TestSplitTextAlwaysTerminates(t *testing.T) {
	c := &Chunker{ChunkSize: 50, Overlap: 40}

	// Break points early in each window force the overlap step backward
	// unless forward progress is enforced.
	text := strings.Repeat("Ok. "+strings.Repeat("x", 60), 10)

	done := make(chan []string, 1)
	go func() {
		done <- c.SplitText(text)
	}()

	select {
	case chunks := <-done:
		if len(chunks) == 0 {
			t.Fatal("expected chunks from non-empty input")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("SplitText did not terminate")
	}
}

func TestChunkDocumentPlainText(t *testing.T) {
	c := New()

	chunks, err := c.ChunkDocument([]byte("Support tickets dropped last month."), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Type != "text" || chunks[0].Section != 1 || chunks[0].Page != 0 {
		t.Errorf("unexpected chunk metadata: %+v", chunks[0])
	}
}

func TestChunkDocumentPaged(t *testing.T) {
	c := New()

	content := "Page one content.\fPage two content.\f\f"
	chunks, err := c.ChunkDocument([]byte(content), "report.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Page != 1 || chunks[1].Page != 2 {
		t.Errorf("expected pages 1 and 2, got %d and %d", chunks[0].Page, chunks[1].Page)
	}
	for _, chunk := range chunks {
		if chunk.Type != "paged" {
			t.Errorf("expected paged type, got %q", chunk.Type)
		}
	}
}

func TestChunkDocumentCSV(t *testing.T) {
	c := New()

	content := "region,amount\nNorth,1200\nSouth,950\n"
	chunks, err := c.ChunkDocument([]byte(content), "sales.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected summary + 2 row chunks, got %d", len(chunks))
	}
	if chunks[0].Type != "csv_summary" {
		t.Errorf("expected csv_summary first, got %q", chunks[0].Type)
	}
	if chunks[0].Text != "CSV with 2 rows and columns: region, amount" {
		t.Errorf("unexpected summary text: %q", chunks[0].Text)
	}
	if chunks[1].Text != "region: North | amount: 1200" {
		t.Errorf("unexpected row text: %q", chunks[1].Text)
	}
	if chunks[1].Row != 1 || chunks[2].Row != 2 {
		t.Errorf("unexpected row numbers: %d, %d", chunks[1].Row, chunks[2].Row)
	}
}

func TestChunkDocumentJSON(t *testing.T) {
	c := New()

	chunks, err := c.ChunkDocument([]byte(`{"customer":"Acme","mrr":4200}`), "accounts.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Type != "json" {
		t.Errorf("expected json type, got %q", chunks[0].Type)
	}
	if !strings.Contains(chunks[0].Text, `"customer": "Acme"`) {
		t.Errorf("expected pretty-printed json, got %q", chunks[0].Text)
	}
}

func TestChunkDocumentInvalidJSON(t *testing.T) {
	c := New()

	_, err := c.ChunkDocument([]byte("{not json"), "broken.json")
	if err == nil {
		t.Fatal("expected error for invalid json")
	}
}
