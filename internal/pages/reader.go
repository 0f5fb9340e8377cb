// Package pages reads machine-extracted page documents from an input
// directory: one JSON file per source page, with image files in an
// images/ sibling directory.
package pages

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Document is one extracted source page.
type Document struct {
	BookPage int      `json:"book_page"`
	PDFPage  int      `json:"pdf_page"`
	Content  Content  `json:"content"`
	Metadata Metadata `json:"extraction_metadata"`

	// Path of the source file, set by the reader.
	Path string `json:"-"`
}

type Content struct {
	MainConcept string     `json:"main_concept"`
	Text        string     `json:"text"`
	KeyPoints   string     `json:"key_points"`
	Questions   []Question `json:"questions"`
	Images      []Image    `json:"images"`
}

type Question struct {
	ID            any      `json:"id"`
	Type          string   `json:"type"`
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Rationale     string   `json:"rationale"`
}

type Image struct {
	Filename         string `json:"filename"`
	Description      string `json:"description"`
	MedicalRelevance string `json:"medical_relevance"`
	ContentType      string `json:"content_type"`
	Context          string `json:"context"`
}

type Metadata struct {
	Timestamp            string  `json:"timestamp"`
	ExtractionConfidence float64 `json:"extraction_confidence"`
	HumanValidated       bool    `json:"human_validated"`
	Notes                string  `json:"notes"`
	Category             string  `json:"category"`
	Reference            string  `json:"reference"`
}

// Reader discovers and parses page documents under a directory.
type Reader struct {
	dir string
}

// NewReader creates a reader for the given input directory.
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// Dir returns the input directory.
func (r *Reader) Dir() string {
	return r.dir
}

// ListDocuments returns the page document paths in deterministic name
// order. A missing or unreadable directory is an error; the caller treats
// it as fatal for the whole run.
func (r *Reader) ListDocuments() ([]string, error) {
	info, err := os.Stat(r.dir)
	if err != nil {
		return nil, fmt.Errorf("input directory %s: %w", r.dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %s is not a directory", r.dir)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", r.dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			paths = append(paths, filepath.Join(r.dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadDocument parses a single page document.
func (r *Reader) ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed JSON in %s: %w", filepath.Base(path), err)
	}
	doc.Path = path
	return &doc, nil
}

// ImagePath resolves where the bytes for an extracted image live: the
// images/ sibling directory first, then next to the documents.
func (r *Reader) ImagePath(filename string) string {
	nested := filepath.Join(r.dir, "images", filename)
	if _, err := os.Stat(nested); err == nil {
		return nested
	}
	return filepath.Join(r.dir, filename)
}

// Validate checks the required document shape. Nested question and image
// problems are handled per record by the coordinator, not here.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Content.MainConcept) == "" {
		return fmt.Errorf("document %s has no main concept", filepath.Base(d.Path))
	}
	return nil
}

// ContextText returns the surrounding text used for contextual slug
// disambiguation.
func (d *Document) ContextText() string {
	parts := []string{d.Content.Text, d.Content.KeyPoints, d.Metadata.Notes}
	var nonEmpty []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// ConceptContent returns the body text stored on the concept. Extraction
// output does not always carry a text block; key points stand in then.
func (d *Document) ConceptContent() string {
	if strings.TrimSpace(d.Content.Text) != "" {
		return d.Content.Text
	}
	return d.Content.KeyPoints
}
