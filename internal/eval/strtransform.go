package eval

import "strings"

// hideTransform implements ${hide:ch,s}: every grapheme of s becomes ch.
func hideTransform(ch, s string) string {
	if ch == "" {
		return s
	}
	units := graphemeSlice(s)
	return strings.Repeat(ch, len(units))
}

// cutTransform implements ${cut:max,suffix,s} / ${cutscr:max,suffix,s}. A
// negative max cuts from the end instead of the start. scr variants count
// display columns rather than grapheme units.
func cutTransform(screen bool, maxArg, suffix, s string) string {
	max := atoiDefault(maxArg, 0)
	if max == 0 {
		return ""
	}
	fromEnd := max < 0
	if fromEnd {
		max = -max
	}

	if screen {
		return cutByWidth(s, max, suffix, fromEnd)
	}
	return cutByGrapheme(s, max, suffix, fromEnd)
}

func cutByGrapheme(s string, max int, suffix string, fromEnd bool) string {
	units := graphemeSlice(s)
	if len(units) <= max {
		return s
	}
	if fromEnd {
		return suffix + strings.Join(units[len(units)-max:], "")
	}
	return strings.Join(units[:max], "") + suffix
}

func cutByWidth(s string, max int, suffix string, fromEnd bool) string {
	units := graphemeSlice(s)
	if displayWidthOf(s) <= max {
		return s
	}
	if fromEnd {
		width := 0
		i := len(units)
		for i > 0 {
			w := displayWidthOf(units[i-1])
			if width+w > max {
				break
			}
			width += w
			i--
		}
		return suffix + strings.Join(units[i:], "")
	}
	width := 0
	i := 0
	for i < len(units) {
		w := displayWidthOf(units[i])
		if width+w > max {
			break
		}
		width += w
		i++
	}
	return strings.Join(units[:i], "") + suffix
}

// revTransform implements ${rev:s} / ${revscr:s}: reverse by grapheme unit.
// Both variants reverse the same unit sequence; revscr exists in the
// catalog for symmetry with cutscr/lengthscr, distinguished when display
// width (not unit count) governs terminal layout downstream.
func revTransform(_ bool, s string) string {
	units := graphemeSlice(s)
	for i, j := 0, len(units)-1; i < j; i, j = i+1, j-1 {
		units[i], units[j] = units[j], units[i]
	}
	return strings.Join(units, "")
}
