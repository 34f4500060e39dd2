package filter

import (
	"strings"

	"github.com/kailas-cloud/linkdex/internal/domain"
	"github.com/kailas-cloud/linkdex/internal/domain/document"
)

// MaxLabelLength bounds category and source type filter values.
const MaxLabelLength = 64

// Filter narrows a search to documents with matching labels.
// Empty fields match everything; a nil archived flag matches both states.
type Filter struct {
	category   string
	sourceType string
	archived   *bool
}

// New validates and creates a Filter.
func New(category, sourceType string, archived *bool) (Filter, error) {
	category = strings.TrimSpace(category)
	sourceType = strings.TrimSpace(sourceType)
	if len(category) > MaxLabelLength {
		return Filter{}, domain.InvalidRequestf("category too long (max %d)", MaxLabelLength)
	}
	if len(sourceType) > MaxLabelLength {
		return Filter{}, domain.InvalidRequestf("source_type too long (max %d)", MaxLabelLength)
	}
	var a *bool
	if archived != nil {
		v := *archived
		a = &v
	}
	return Filter{category: category, sourceType: sourceType, archived: a}, nil
}

// Category returns the category filter, empty when unset.
func (f Filter) Category() string { return f.category }

// SourceType returns the source type filter, empty when unset.
func (f Filter) SourceType() string { return f.sourceType }

// Archived returns the archived flag filter, nil when unset.
func (f Filter) Archived() *bool { return f.archived }

// WithArchivedDefault returns a copy whose archived flag is v when unset.
func (f Filter) WithArchivedDefault(v bool) Filter {
	if f.archived != nil {
		return f
	}
	f.archived = &v
	return f
}

// IsEmpty reports whether the filter matches every document.
func (f Filter) IsEmpty() bool {
	return f.category == "" && f.sourceType == "" && f.archived == nil
}

// Matches reports whether doc satisfies every set field.
func (f Filter) Matches(doc *document.Document) bool {
	if f.category != "" && doc.Category() != f.category {
		return false
	}
	if f.sourceType != "" && doc.SourceType() != f.sourceType {
		return false
	}
	if f.archived != nil && doc.Archived() != *f.archived {
		return false
	}
	return true
}
