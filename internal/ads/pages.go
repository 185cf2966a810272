// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ads

// Page size bounds enforced by the API.
const (
	// DefaultRows is the page size used when none is configured.
	DefaultRows = 100

	// MaxRows is the largest page size the API allows per request.
	MaxRows = 2000
)

// PageRequest describes one bounded slice of a search: a start offset
// and the number of rows to request.
type PageRequest struct {
	Start int
	Rows  int
}

// Pages slices a search into page requests covering min(total, max)
// records. Offsets ascend by rows and the final page is trimmed, so the
// plan never requests more records than the cap. A zero or negative max
// means all matches; rows outside [1, MaxRows] are clamped.
func Pages(total, max, rows int) []PageRequest {
	if rows <= 0 {
		rows = DefaultRows
	}
	if rows > MaxRows {
		rows = MaxRows
	}

	want := total
	if max > 0 && max < want {
		want = max
	}

	var pages []PageRequest
	for start := 0; start < want; start += rows {
		n := rows
		if start+n > want {
			n = want - start
		}
		pages = append(pages, PageRequest{Start: start, Rows: n})
	}
	return pages
}
