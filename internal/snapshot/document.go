// Package snapshot converts between live record store state and portable,
// self-contained documents with all image bytes inlined, and reconciles
// imported documents back into the store via merge or replace.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hnakamura/examdeck/internal/deck"
)

// Version is the document version written by this release. Older documents
// (1.0.0 tag-less, 1.2.0 global tags, 1.3.0 exam-scoped tags) are accepted on
// import; the per-exam shape arrived with 2.0.0.
const Version = "2.0.0"

// ErrInvalidDocument marks a document rejected before any state mutation.
var ErrInvalidDocument = errors.New("invalid snapshot document")

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a user-supplied format name.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	}
	return "", fmt.Errorf("invalid format: %s (expected json or yaml)", raw)
}

// Data is the whole-dataset payload. Collections are pointers so a missing
// key can be told apart from an empty one during validation.
type Data struct {
	Exams     *[]deck.Exam     `json:"exams" yaml:"exams"`
	Questions *[]deck.Question `json:"questions" yaml:"questions"`
	Tags      *[]deck.Tag      `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Document is a portable snapshot in one of the two shapes in use:
// whole-dataset (Data set) or per-exam (Exam and Questions set).
type Document struct {
	Version   string    `json:"version" yaml:"version"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`

	Data *Data `json:"data,omitempty" yaml:"data,omitempty"`

	Exam      *deck.Exam       `json:"exam,omitempty" yaml:"exam,omitempty"`
	Questions *[]deck.Question `json:"questions,omitempty" yaml:"questions,omitempty"`
	Tags      *[]deck.Tag      `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// PerExam reports whether the document uses the per-exam shape.
func (d *Document) PerExam() bool {
	return d.Exam != nil
}

// Validate checks that the required collections are present. Absent tags are
// tolerated (they default to empty); absent exams or questions reject the
// document before any state mutation occurs.
func (d *Document) Validate() error {
	if d.Data == nil && d.Exam == nil {
		return fmt.Errorf("%w: neither data section nor exam present", ErrInvalidDocument)
	}
	if d.Data != nil {
		if d.Data.Exams == nil {
			return fmt.Errorf("%w: missing exams collection", ErrInvalidDocument)
		}
		if d.Data.Questions == nil {
			return fmt.Errorf("%w: missing questions collection", ErrInvalidDocument)
		}
		return nil
	}
	if d.Questions == nil {
		return fmt.Errorf("%w: missing questions collection", ErrInvalidDocument)
	}
	return nil
}

// records flattens the document into record store collections, defaulting
// absent tags to empty. Validate must have passed.
func (d *Document) records() deck.State {
	if d.Data != nil {
		state := deck.State{
			Exams:     *d.Data.Exams,
			Questions: *d.Data.Questions,
		}
		if d.Data.Tags != nil {
			state.Tags = *d.Data.Tags
		}
		return state
	}

	state := deck.State{
		Exams:     []deck.Exam{*d.Exam},
		Questions: *d.Questions,
	}
	if d.Tags != nil {
		state.Tags = *d.Tags
	}
	return state
}

// Encode serializes the document in the given format.
func (d *Document) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("yaml.Marshal > %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("json.MarshalIndent > %w", err)
		}
		return data, nil
	}
}

// Parse decodes and validates a document, sniffing JSON vs YAML from the
// first non-space byte.
func Parse(data []byte) (*Document, error) {
	trimmed := strings.TrimLeftFunc(string(data), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}

	var doc Document
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}
