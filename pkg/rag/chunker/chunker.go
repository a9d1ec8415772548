package chunker

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"ai-bizops-be/pkg/errs"
)

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// Chunk is one indexable text segment extracted from a document.
// Page is 1-based and 0 for non-paged sources. Section numbers the
// split windows of continuous text, Row the records of tabular input.
type Chunk struct {
	Text    string
	Page    int
	Section int
	Row     int
	Type    string
}

type Chunker struct {
	ChunkSize int
	Overlap   int
}

func New() *Chunker {
	return &Chunker{
		ChunkSize: DefaultChunkSize,
		Overlap:   DefaultOverlap,
	}
}

// ChunkDocument splits raw document content into ordered chunks. The
// extraction strategy is chosen by file extension; unknown extensions
// are treated as plain text. Paged text uses form feeds as page breaks.
func (c *Chunker) ChunkDocument(content []byte, fileName string) ([]Chunk, error) {
	ext := strings.ToLower(filepath.Ext(fileName))

	switch ext {
	case ".csv":
		return c.chunkCSV(content)
	case ".json":
		return c.chunkJSON(content)
	default:
		if bytes.ContainsRune(content, '\f') {
			return c.chunkPaged(string(content)), nil
		}
		return c.chunkText(string(content)), nil
	}
}

func (c *Chunker) chunkText(text string) []Chunk {
	chunks := []Chunk{}
	for i, piece := range c.SplitText(text) {
		chunks = append(chunks, Chunk{
			Text:    piece,
			Section: i + 1,
			Type:    "text",
		})
	}
	return chunks
}

func (c *Chunker) chunkPaged(text string) []Chunk {
	chunks := []Chunk{}
	for pageNum, page := range strings.Split(text, "\f") {
		if strings.TrimSpace(page) == "" {
			continue
		}
		for _, piece := range c.SplitText(page) {
			chunks = append(chunks, Chunk{
				Text: piece,
				Page: pageNum + 1,
				Type: "paged",
			})
		}
	}
	return chunks
}

func (c *Chunker) chunkCSV(content []byte) ([]Chunk, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errs.Wrap(errs.KindIndexing, "parse csv", err)
	}
	if len(records) == 0 {
		return []Chunk{}, nil
	}

	header := records[0]
	rows := records[1:]

	chunks := []Chunk{}
	for i, row := range rows {
		fields := []string{}
		for j, val := range row {
			if j >= len(header) || strings.TrimSpace(val) == "" {
				continue
			}
			fields = append(fields, fmt.Sprintf("%s: %s", header[j], val))
		}
		rowText := strings.Join(fields, " | ")
		if strings.TrimSpace(rowText) == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			Text: rowText,
			Row:  i + 1,
			Type: "csv",
		})
	}

	// Summary chunk first so column-level questions match it
	summary := fmt.Sprintf("CSV with %d rows and columns: %s", len(rows), strings.Join(header, ", "))
	chunks = append([]Chunk{{Text: summary, Type: "csv_summary"}}, chunks...)

	return chunks, nil
}

func (c *Chunker) chunkJSON(content []byte) ([]Chunk, error) {
	var data any
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, errs.Wrap(errs.KindIndexing, "parse json", err)
	}

	pretty, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, errs.Wrap(errs.KindIndexing, "render json", err)
	}

	chunks := []Chunk{}
	for i, piece := range c.SplitText(string(pretty)) {
		chunks = append(chunks, Chunk{
			Text:    piece,
			Section: i + 1,
			Type:    "json",
		})
	}
	return chunks, nil
}

var sentenceSeparators = []string{". ", "! ", "? ", "\n"}

// SplitText slides an overlapping window over the text, preferring to cut
// at the last paragraph break inside the window, then the last sentence
// end, then the hard window boundary. Whitespace-only chunks are dropped.
func (c *Chunker) SplitText(text string) []string {
	if len(text) <= c.ChunkSize {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return []string{}
		}
		return []string{trimmed}
	}

	chunks := []string{}
	start := 0

	for start < len(text) {
		end := start + c.ChunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			if paraBreak := strings.LastIndex(text[start:end], "\n\n"); paraBreak > 0 {
				end = start + paraBreak
			} else {
				for _, sep := range sentenceSeparators {
					if sentBreak := strings.LastIndex(text[start:end], sep); sentBreak > 0 {
						end = start + sentBreak + len(sep)
						break
					}
				}
			}
		}

		chunk := strings.TrimSpace(text[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(text) {
			break
		}

		next := end - c.Overlap
		if next <= start {
			// A break point landed inside the overlap region; skip the
			// overlap for this step so the window always moves forward.
			next = end
		}
		start = next
	}

	return chunks
}
