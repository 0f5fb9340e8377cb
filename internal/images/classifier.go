// Package images classifies extracted images: content type from the file
// extension and association target from ownership.
package images

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Target names which entity an image belongs to.
type Target string

const (
	TargetConcept    Target = "concept"
	TargetQuestion   Target = "question"
	TargetStandalone Target = "standalone"
)

// contentTypes maps file extensions to MIME types. Unknown extensions
// default to image/jpeg, the dominant format in the corpus.
var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

const defaultContentType = "image/jpeg"

// Classification is the result of classifying one image.
type Classification struct {
	ContentType string
	Target      Target
}

// ContentTypeFor derives the MIME type from the filename extension.
func ContentTypeFor(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if contentType, ok := contentTypes[ext]; ok {
		return contentType
	}
	return defaultContentType
}

// Classify determines content type and association target. Setting both a
// concept and a question owner is a structural error in the input.
func Classify(filename string, conceptID, questionID *uint) (Classification, error) {
	if conceptID != nil && questionID != nil {
		return Classification{}, fmt.Errorf("image %s references both a concept and a question", filename)
	}

	target := TargetStandalone
	switch {
	case conceptID != nil:
		target = TargetConcept
	case questionID != nil:
		target = TargetQuestion
	}

	return Classification{
		ContentType: ContentTypeFor(filename),
		Target:      target,
	}, nil
}
