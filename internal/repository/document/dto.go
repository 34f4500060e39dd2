package document

import (
	"encoding/json"
	"strconv"
	"time"

	domdoc "github.com/kailas-cloud/linkdex/internal/domain/document"
	"github.com/kailas-cloud/linkdex/internal/domain/vector"
)

// Hash field names of a stored document.
const (
	fieldURL         = "url"
	fieldTitle       = "title"
	fieldSummary     = "summary"
	fieldBody        = "body"
	fieldCategory    = "category"
	fieldSourceType  = "source_type"
	fieldTags        = "tags"
	fieldArchived    = "archived"
	fieldCreatedAt   = "created_at"
	fieldVector      = "vector"
	fieldVectorModel = "vector_model"
)

// buildHashFields converts a domain Document into a flat map[string]string for HSET.
// The vector is written separately by SetVector.
func buildHashFields(doc *domdoc.Document) map[string]string {
	tags, _ := json.Marshal(nonNilTags(doc.Tags()))
	return map[string]string{
		fieldURL:        doc.URL(),
		fieldTitle:      doc.Title(),
		fieldSummary:    doc.Summary(),
		fieldBody:       doc.Body(),
		fieldCategory:   doc.Category(),
		fieldSourceType: doc.SourceType(),
		fieldTags:       string(tags),
		fieldArchived:   strconv.FormatBool(doc.Archived()),
		fieldCreatedAt:  strconv.FormatInt(doc.CreatedAt().UnixMilli(), 10),
	}
}

// parseHashFields converts a flat hash map back into a domain Document.
// Malformed tags or vector bytes hydrate as empty rather than failing the read.
func parseHashFields(id string, m map[string]string) domdoc.Document {
	var tags []string
	if raw := m[fieldTags]; raw != "" {
		_ = json.Unmarshal([]byte(raw), &tags)
	}
	archived, _ := strconv.ParseBool(m[fieldArchived])
	createdMs, _ := strconv.ParseInt(m[fieldCreatedAt], 10, 64)

	var vec []float32
	if raw := m[fieldVector]; raw != "" {
		if v, err := vector.Decode([]byte(raw)); err == nil {
			vec = v
		}
	}

	return domdoc.Reconstruct(id, domdoc.Fields{
		URL:        m[fieldURL],
		Title:      m[fieldTitle],
		Summary:    m[fieldSummary],
		Body:       m[fieldBody],
		Category:   m[fieldCategory],
		SourceType: m[fieldSourceType],
		Tags:       tags,
		Archived:   archived,
	}, time.UnixMilli(createdMs).UTC(), vec, m[fieldVectorModel])
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
