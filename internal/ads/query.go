// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ads

import (
	"fmt"
	"strings"
)

// Publication year bounds accepted in queries.
const (
	MinYear = 1800
	MaxYear = 2100
)

// maxQueryLength is the longest q parameter the API accepts.
const maxQueryLength = 1000

// Record fields addressable by term clauses, in ADS query syntax.
const (
	FieldTitle    = "title"
	FieldAbstract = "abs"
	FieldFulltext = "full"
)

// allFields is the default clause target set, in emission order.
var allFields = []string{FieldTitle, FieldAbstract, FieldFulltext}

// Query holds the user-facing search parameters. Build translates them
// into an ADS query string.
type Query struct {
	// Terms are the search keywords or phrases. At least one is required.
	Terms []string

	// Fields selects which record fields the terms match against:
	// title, abstract, or full (full text). Empty means all three.
	Fields []string

	// Author restricts matches to the given author name.
	Author string

	// YearFrom and YearTo bound the publication year. Zero leaves the
	// corresponding bound at MinYear or MaxYear.
	YearFrom int
	YearTo   int

	// MinCitations drops records with fewer citations.
	MinCitations int

	// RefereedOnly restricts matches to refereed publications.
	RefereedOnly bool

	// Collection restricts matches to one ADS database collection
	// (e.g. "astronomy", "physics", "general").
	Collection string
}

// IsEmpty reports whether the query contains no searchable terms.
func (q Query) IsEmpty() bool {
	for _, t := range q.Terms {
		if strings.TrimSpace(t) != "" {
			return false
		}
	}
	return true
}

// Build validates the query and assembles the ADS q parameter. Term
// clauses are emitted per field and OR-ed inside one group; author,
// year, citation, and collection filters are AND-ed onto it:
//
//	(title:"quenched galaxy" OR abs:"quenched galaxy") AND year:[2015 TO 2024]
//
// Validation failures wrap ErrInvalidRequest and occur before any
// network call.
func (q Query) Build() (string, error) {
	if q.IsEmpty() {
		return "", fmt.Errorf("%w: no search terms: provide at least one keyword or phrase", ErrInvalidRequest)
	}

	fields, err := normalizeFields(q.Fields)
	if err != nil {
		return "", err
	}

	var clauses []string
	for _, f := range fields {
		for _, term := range q.Terms {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			clauses = append(clauses, fmt.Sprintf("%s:%q", f, term))
		}
	}

	parts := []string{"(" + strings.Join(clauses, " OR ") + ")"}

	if q.Author != "" {
		parts = append(parts, fmt.Sprintf("author:%q", q.Author))
	}

	if q.YearFrom != 0 || q.YearTo != 0 {
		from, to := q.YearFrom, q.YearTo
		if from == 0 {
			from = MinYear
		}
		if to == 0 {
			to = MaxYear
		}
		if from < MinYear || from > MaxYear || to < MinYear || to > MaxYear {
			return "", fmt.Errorf("%w: year bounds must be between %d and %d", ErrInvalidRequest, MinYear, MaxYear)
		}
		if from > to {
			return "", fmt.Errorf("%w: year range %d-%d is inverted", ErrInvalidRequest, from, to)
		}
		parts = append(parts, fmt.Sprintf("year:[%d TO %d]", from, to))
	}

	if q.MinCitations < 0 {
		return "", fmt.Errorf("%w: minimum citations must be non-negative", ErrInvalidRequest)
	}
	if q.MinCitations > 0 {
		parts = append(parts, fmt.Sprintf("citation_count:[%d TO *]", q.MinCitations))
	}

	if q.RefereedOnly {
		parts = append(parts, "property:refereed")
	}

	if q.Collection != "" {
		parts = append(parts, fmt.Sprintf("database:%q", q.Collection))
	}

	built := strings.Join(parts, " AND ")
	if len(built) > maxQueryLength {
		return "", fmt.Errorf("%w: query exceeds maximum length (%d characters)", ErrInvalidRequest, maxQueryLength)
	}
	return built, nil
}

// normalizeFields canonicalizes field names, accepting the query-syntax
// names and their common long forms. Duplicates collapse; order follows
// first mention.
func normalizeFields(fields []string) ([]string, error) {
	if len(fields) == 0 {
		return allFields, nil
	}

	var out []string
	seen := make(map[string]bool)
	for _, f := range fields {
		var canon string
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "title":
			canon = FieldTitle
		case "abs", "abstract":
			canon = FieldAbstract
		case "full", "fulltext", "full_text", "full-text":
			canon = FieldFulltext
		default:
			return nil, fmt.Errorf("%w: unknown search field %q (use title, abstract, or full)", ErrInvalidRequest, f)
		}
		if !seen[canon] {
			seen[canon] = true
			out = append(out, canon)
		}
	}
	return out, nil
}
