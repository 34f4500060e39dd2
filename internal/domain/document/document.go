package document

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const (
	// MaxBodySize is the maximum stored body size in bytes.
	MaxBodySize = 163840 // 160KB
	// MaxURLLength bounds the saved URL.
	MaxURLLength = 2048
	// MaxTags bounds the number of tags per document.
	MaxTags = 32
)

// Fields holds the mutable, user-visible attributes of a saved URL.
type Fields struct {
	URL        string
	Title      string
	Summary    string
	Body       string
	Category   string
	SourceType string
	Tags       []string
	Archived   bool
}

// Document is a saved URL with its optional embedding vector.
type Document struct {
	id          string
	fields      Fields
	createdAt   time.Time
	vector      []float32
	vectorModel string
}

// New validates and creates a Document without a vector.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. URL is required.
func New(id string, f Fields, createdAt time.Time) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > 256 {
		return Document{}, fmt.Errorf("document ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("document ID must be alphanumeric with underscores and hyphens")
	}
	if strings.TrimSpace(f.URL) == "" {
		return Document{}, fmt.Errorf("url is required")
	}
	if len(f.URL) > MaxURLLength {
		return Document{}, fmt.Errorf("url too long (max %d)", MaxURLLength)
	}
	if len(f.Body) > MaxBodySize {
		return Document{}, fmt.Errorf("body too large (max %d bytes)", MaxBodySize)
	}
	if len(f.Tags) > MaxTags {
		return Document{}, fmt.Errorf("too many tags (max %d)", MaxTags)
	}
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	f.Tags = cloneTags(f.Tags)
	return Document{id: id, fields: f, createdAt: createdAt.UTC()}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id string, f Fields, createdAt time.Time, vector []float32, vectorModel string) Document {
	return Document{id: id, fields: f, createdAt: createdAt, vector: vector, vectorModel: vectorModel}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// URL returns the saved URL.
func (d *Document) URL() string { return d.fields.URL }

// Title returns the page title.
func (d *Document) Title() string { return d.fields.Title }

// Summary returns the generated summary.
func (d *Document) Summary() string { return d.fields.Summary }

// Body returns the truncated plain-text body.
func (d *Document) Body() string { return d.fields.Body }

// Category returns the category label.
func (d *Document) Category() string { return d.fields.Category }

// SourceType returns the source type label (article, video, ...).
func (d *Document) SourceType() string { return d.fields.SourceType }

// Tags returns the ordered tag list.
func (d *Document) Tags() []string { return d.fields.Tags }

// Archived reports whether the user archived the document.
func (d *Document) Archived() bool { return d.fields.Archived }

// Fields returns a copy of the mutable attributes.
func (d *Document) Fields() Fields {
	f := d.fields
	f.Tags = cloneTags(f.Tags)
	return f
}

// CreatedAt returns the creation timestamp.
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// Vector returns the embedding vector, nil when not yet embedded.
func (d *Document) Vector() []float32 { return d.vector }

// VectorModel returns the model that produced the vector.
func (d *Document) VectorModel() string { return d.vectorModel }

// HasVector reports whether the document has been embedded.
func (d *Document) HasVector() bool { return len(d.vector) > 0 }

// WithVector returns a copy with the given vector set.
func (d *Document) WithVector(v []float32, model string) Document {
	return Document{id: d.id, fields: d.fields, createdAt: d.createdAt, vector: v, vectorModel: model}
}

// ContainsText reports whether lowerQuery occurs in the lower-cased title, summary or body.
func (d *Document) ContainsText(lowerQuery string) bool {
	return strings.Contains(strings.ToLower(d.fields.Title), lowerQuery) ||
		strings.Contains(strings.ToLower(d.fields.Summary), lowerQuery) ||
		strings.Contains(strings.ToLower(d.fields.Body), lowerQuery)
}

// EmbeddingText builds the text sent to the embedding model:
// title, summary and the first bodyPrefix runes of body joined with " | ".
// Empty parts are skipped; a document with none of them embeds its URL.
func (d *Document) EmbeddingText(bodyPrefix int) string {
	parts := make([]string, 0, 3)
	if d.fields.Title != "" {
		parts = append(parts, d.fields.Title)
	}
	if d.fields.Summary != "" {
		parts = append(parts, d.fields.Summary)
	}
	if d.fields.Body != "" {
		parts = append(parts, prefix(d.fields.Body, bodyPrefix))
	}
	if len(parts) == 0 {
		return d.fields.URL
	}
	return strings.Join(parts, " | ")
}

func prefix(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	c := make([]string, len(tags))
	copy(c, tags)
	return c
}
