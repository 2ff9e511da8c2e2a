package eval

import (
	"regexp"
	"strconv"
	"strings"
)

// parseRegexFlags strips a leading "(?eins-eins)"-style flag prefix from
// pattern: e=extended (no-op under Go's
// RE2 syntax, already extended), i=case-insensitive, n=newline-sensitive,
// s=no-substring (only the full match is exposed, no capture groups).
func parseRegexFlags(pattern string) (clean string, caseInsensitive, newlineSensitive, noSubstring bool) {
	if !strings.HasPrefix(pattern, "(?") {
		return pattern, false, false, false
	}
	end := strings.Index(pattern, ")")
	if end < 0 {
		return pattern, false, false, false
	}
	body := pattern[2:end]
	for _, r := range body {
		if r != 'e' && r != 'i' && r != 'n' && r != 's' && r != '-' {
			return pattern, false, false, false
		}
	}
	negate := false
	for _, r := range body {
		switch r {
		case '-':
			negate = true
		case 'i':
			caseInsensitive = !negate
		case 'n':
			newlineSensitive = !negate
		case 's':
			noSubstring = !negate
		}
	}
	return pattern[end+1:], caseInsensitive, newlineSensitive, noSubstring
}

func compileRegex(pattern string) (*regexp.Regexp, error) {
	clean, ci, nl, _ := parseRegexFlags(pattern)
	if ci {
		clean = "(?i)" + clean
	}
	if nl {
		clean = "(?m)" + clean
	} else {
		clean = "(?s)" + clean
	}
	return regexp.Compile(clean)
}

// applyRegexReplace implements the options.regex / options.regex_replace
// contract: compile the pattern, and for each non-empty match in source
// run regexReplace through the substitution machinery with the match
// array bound to ${re:...}.
func (e *Evaluator) applyRegexReplace(source, pattern, replace string, ctx *Context) (string, error) {
	_, _, _, noSub := parseRegexFlags(pattern)
	re, err := compileRegex(pattern)
	if err != nil {
		// regex compilation error returns the source with no replacements
		return source, nil
	}

	var out strings.Builder
	last := 0
	replIdx := 0
	for _, m := range re.FindAllStringSubmatchIndex(source, -1) {
		start, end := m[0], m[1]
		if start == end {
			continue
		}
		out.WriteString(source[last:start])

		groups := make([]string, 0, len(m)/2)
		for i := 0; i < len(m); i += 2 {
			if m[i] < 0 {
				groups = append(groups, "")
				continue
			}
			groups = append(groups, source[m[i]:m[i+1]])
		}
		if noSub && len(groups) > 1 {
			groups = groups[:1]
		}

		child := ctx.child()
		child.regexGroups = groups
		child.replIndex = replIdx

		replaced, err := e.evaluate(replace, child)
		if err != nil {
			return source, err
		}
		out.WriteString(replaced)

		last = end
		replIdx++
	}
	out.WriteString(source[last:])
	return out.String(), nil
}

// reTransform implements ${re:...}: numeric group reference, "+"  (last
// non-empty group), "#" (group count), "repl_index" (replacement
// counter), and the ".c+N" grapheme-overwrite form.
func reTransform(args string, ctx *Context) string {
	switch {
	case args == "+":
		return ctx.lastNonEmptyGroup()
	case args == "#":
		if len(ctx.regexGroups) == 0 {
			return "0"
		}
		return strconv.Itoa(len(ctx.regexGroups) - 1)
	case args == "repl_index":
		return strconv.Itoa(ctx.replIndex)
	case strings.HasPrefix(args, "."):
		return reOverwriteGrapheme(args, ctx)
	default:
		n, err := strconv.Atoi(args)
		if err != nil {
			return ""
		}
		return ctx.group(n)
	}
}

func reOverwriteGrapheme(args string, ctx *Context) string {
	// form: .c+N
	rest := []rune(args[1:])
	if len(rest) < 3 || rest[1] != '+' {
		return ""
	}
	ch := rest[0]
	n, err := strconv.Atoi(string(rest[2:]))
	if err != nil {
		return ""
	}
	group := ctx.group(n)
	count := graphemeCount(group)
	return strings.Repeat(string(ch), count)
}
