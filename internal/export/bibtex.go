// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/ads-finder/pkg/types"
)

// WriteBibTeX writes one BibTeX entry per paper, separated by blank
// lines. Papers without a server-provided entry get a minimal generated
// one so the bibliography stays complete.
func WriteBibTeX(rs types.ResultSet, w io.Writer) error {
	if len(rs.Papers) == 0 {
		return nil
	}

	entries := make([]string, len(rs.Papers))
	for i, p := range rs.Papers {
		if p.BibTeX != "" {
			entries[i] = p.BibTeX
		} else {
			entries[i] = fallbackEntry(p)
		}
	}
	_, err := io.WriteString(w, strings.Join(entries, "\n\n")+"\n")
	return err
}

// fallbackEntry builds a minimal @article entry from the metadata we
// hold when the export endpoint did not supply one.
func fallbackEntry(p types.Paper) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@article{%s,\n", p.Bibcode)
	fmt.Fprintf(&b, "  title = {%s},\n", p.Title)
	if p.Year != 0 {
		fmt.Fprintf(&b, "  year = %d,\n", p.Year)
	}
	if p.Pub != "" {
		fmt.Fprintf(&b, "  journal = {%s},\n", p.Pub)
	}
	fmt.Fprintf(&b, "  url = {%s}\n}", p.ADSURL())
	return b.String()
}
