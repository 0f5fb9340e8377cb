// Command generate_fixtures writes a small directory of sample page
// documents for trying out the importer locally.
// Usage: go run cmd/generate_fixtures/main.go [-out path/to/dir] [-malformed]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/medprep/importer/internal/pages"
)

const defaultOutputDir = "./fixtures"

func main() {
	outDir := flag.String("out", defaultOutputDir, "output directory for fixture documents")
	malformed := flag.Bool("malformed", false, "also write one malformed document")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	log.Printf("Generating fixture documents in %s...", *outDir)

	for i, doc := range sampleDocuments() {
		name := filepath.Join(*outDir, filename(i))
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode %s: %v", name, err)
		}
		if err := os.WriteFile(name, data, 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", name, err)
		}
		log.Printf("Wrote: %s (%s)", name, doc.Content.MainConcept)
	}

	if *malformed {
		name := filepath.Join(*outDir, "page_999.json")
		if err := os.WriteFile(name, []byte(`{"content": {`), 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", name, err)
		}
		log.Printf("Wrote: %s (intentionally malformed)", name)
	}

	log.Printf("Done. Import with: importer import -input %s", *outDir)
}

func filename(i int) string {
	return fmt.Sprintf("page_%03d.json", i+101)
}

func sampleDocuments() []pages.Document {
	return []pages.Document{
		{
			BookPage: 101,
			PDFPage:  113,
			Content: pages.Content{
				MainConcept: "Heart Failure",
				Text:        "Acute heart failure requires rapid assessment of airway, breathing and circulation.",
				KeyPoints:   "Monitor daily weight. Restrict sodium. Elevate head of bed.",
				Questions: []pages.Question{
					{
						ID:            1,
						Type:          "MC",
						QuestionText:  "Which finding most strongly suggests fluid overload?",
						Options:       []string{"Weight gain of 2 kg in 2 days", "Dry mucous membranes", "Flat neck veins", "Hypotension"},
						CorrectAnswer: "1",
						Rationale:     "Rapid weight gain is the most sensitive indicator of fluid retention.",
					},
					{
						ID:            2,
						Type:          "prioritization",
						QuestionText:  "Place the interventions for acute pulmonary edema in priority order.",
						Options:       []string{"Administer diuretic", "Position upright", "Apply oxygen", "Notify provider"},
						CorrectAnswer: "2, 3, 1, 4",
						Rationale:     "Positioning and oxygenation precede medication.",
					},
				},
				Images: []pages.Image{
					{
						Filename:         "page_101_img_01.png",
						Description:      "Diagram of left-sided versus right-sided failure",
						MedicalRelevance: "high",
					},
				},
			},
			Metadata: pages.Metadata{
				Timestamp:            "2025-11-02T09:14:33Z",
				ExtractionConfidence: 0.93,
				Category:             "Cardiovascular Disorders",
				Reference:            "Ch. 34, Medical-Surgical Nursing",
			},
		},
		{
			BookPage: 102,
			PDFPage:  114,
			Content: pages.Content{
				MainConcept: "Heart Failure",
				Text:        "Chronic heart failure management focuses on medication adherence and lifestyle.",
				KeyPoints:   "ACE inhibitors reduce afterload. Beta blockers improve survival.",
				Questions: []pages.Question{
					{
						ID:            1,
						Type:          "SATA",
						QuestionText:  "Which teaching points apply to chronic heart failure? Select all that apply.",
						Options:       []string{"Weigh daily", "Double the diuretic when short of breath", "Limit sodium", "Report 1.5 kg overnight gain"},
						CorrectAnswer: "1, 3, 4",
						Rationale:     "Medication changes belong to the provider.",
					},
				},
			},
			Metadata: pages.Metadata{
				Timestamp:            "2025-11-02T09:15:41Z",
				ExtractionConfidence: 0.88,
				Category:             "Cardiovascular Disorders",
				Reference:            "Ch. 34, Medical-Surgical Nursing",
			},
		},
		{
			BookPage: 240,
			PDFPage:  252,
			Content: pages.Content{
				MainConcept: "Diabetic Ketoacidosis",
				Text:        "DKA presents with hyperglycemia, ketosis and metabolic acidosis.",
				KeyPoints:   "Fluids first, then insulin. Watch potassium closely.",
				Questions: []pages.Question{
					{
						ID:            1,
						Type:          "fill_in_blank",
						QuestionText:  "The first intervention for a client in DKA is administration of ____.",
						Options:       []string{"isotonic fluids", "regular insulin", "potassium", "bicarbonate"},
						CorrectAnswer: "1",
						Rationale:     "Volume resuscitation precedes insulin.",
					},
				},
			},
			Metadata: pages.Metadata{
				Timestamp:            "2025-11-02T09:44:02Z",
				ExtractionConfidence: 0.91,
				Category:             "Endocrine Disorders",
				Reference:            "Ch. 51, Medical-Surgical Nursing",
			},
		},
	}
}
