package eval

import (
	"github.com/clipperhouse/displaywidth"
	"github.com/clipperhouse/uax29/v2/graphemes"
)

// graphemeSlice splits s into user-perceived characters (grapheme
// clusters), the unit cut/rev/length transforms operate on
// rather than raw bytes or runes.
func graphemeSlice(s string) []string {
	var out []string
	seg := graphemes.NewSegmenter([]byte(s))
	for seg.Next() {
		out = append(out, string(seg.Bytes()))
	}
	return out
}

func graphemeCount(s string) int {
	return len(graphemeSlice(s))
}

// displayWidthOf returns the terminal column width of s, used by the
// "scr" (screen-aware) variants cutscr and lengthscr.
func displayWidthOf(s string) int {
	return displaywidth.String(s)
}
