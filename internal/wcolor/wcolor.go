// Package wcolor implements the internal color-token scheme used by both
// the expression evaluator's ${color:...} transform and the API protocol
// layer's ansi/weechat/strip color-decoding modes.
package wcolor

import (
	"strconv"
	"strings"

	"weechat-relay/internal/intern"
)

const (
	marker = '\x01'
	term   = '\x02'
)

// Mode selects how Transform renders embedded color tokens.
type Mode string

const (
	ModeAnsi    Mode = "ansi"
	ModeWeechat Mode = "weechat"
	ModeStrip   Mode = "strip"
)

var ansiCodes = map[string]string{
	"reset": "0", "bold": "1", "reverse": "7", "italic": "3", "underline": "4",
	"black": "30", "red": "31", "green": "32", "yellow": "33", "blue": "34",
	"magenta": "35", "cyan": "36", "white": "37", "default": "39",
	"lightred": "91", "lightgreen": "92", "lightyellow": "93", "lightblue": "94",
	"lightmagenta": "95", "lightcyan": "96", "lightwhite": "97", "gray": "90",
}

// Encode wraps a color spec (e.g. "bold,red" or "yellow") in the internal
// marker pair so it can travel through further substitution untouched
// until a rendering mode is chosen.
func Encode(spec string) string {
	return string(marker) + spec + string(term)
}

// Transform replaces every marker/term pair embedded in s according to
// mode: ansi emits SGR escapes, weechat passes the spec through unchanged
// (the relay client already understands weechat's own color syntax), and
// strip removes the token entirely.
func Transform(s string, mode Mode) string {
	if !strings.ContainsRune(s, marker) {
		return s
	}
	var out strings.Builder
	i := 0
	for i < len(s) {
		start := strings.IndexByte(s[i:], marker)
		if start < 0 {
			out.WriteString(s[i:])
			break
		}
		out.WriteString(s[i : i+start])
		specStart := i + start + 1
		end := strings.IndexByte(s[specStart:], term)
		if end < 0 {
			out.WriteString(s[i+start:])
			break
		}
		spec := s[specStart : specStart+end]
		switch mode {
		case ModeAnsi:
			out.WriteString(ansiEscape(spec))
		case ModeStrip:
			// omit entirely
		default:
			out.WriteString(string(marker) + spec + string(term))
		}
		i = specStart + end + 1
	}
	return out.String()
}

// ansiEscape renders a color spec as an SGR escape. Attribute tokens are
// interned for the duration of one call and each handle is freed before
// returning, so no string is shared across calls.
func ansiEscape(spec string) string {
	attrs := strings.Split(spec, ",")
	codes := make([]string, 0, len(attrs))
	for _, raw := range attrs {
		h := intern.Get(strings.TrimSpace(strings.ToLower(raw)))
		defer intern.Free(h)
		name := h.String()
		if code, ok := ansiCodes[name]; ok {
			codes = append(codes, code)
			continue
		}
		if n, err := strconv.Atoi(name); err == nil {
			codes = append(codes, strconv.Itoa(n))
		}
	}
	if len(codes) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(codes, ";") + "m"
}
