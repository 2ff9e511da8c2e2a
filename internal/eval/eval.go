package eval

import (
	"fmt"
	"strconv"
	"strings"
)

// knownTransforms lists every identifier recognized as "name:args" rather
// than as a literal reference. Anything not in this set (and not a zero-arg form) falls through to reference
// resolution, which is also how "unknown transform returns the verbatim
// body" is satisfied: an unrecognized name simply never resolves.
var knownTransforms = map[string]bool{
	"esc": true, "chars": true, "lower": true, "upper": true, "hide": true,
	"cut": true, "cutscr": true, "rev": true, "revscr": true, "repeat": true,
	"length": true, "lengthscr": true, "split": true, "split_shell": true,
	"base_encode": true, "base_decode": true, "color": true, "modifier": true,
	"info": true, "date": true, "env": true, "if": true, "calc": true,
	"random": true, "translate": true, "define": true, "re": true,
	"eval": true, "eval_cond": true, "hl": true, "raw_hl": true, "raw": true,
}

// zeroArgTransforms may appear with no colon at all (${date}).
var zeroArgTransforms = map[string]bool{"date": true}

// Evaluator holds no state of its own; all per-call state lives in
// Context. It exists as a receiver so helper methods can recurse cleanly.
type Evaluator struct{}

// Evaluate runs the top-level entry point: either a plain substitution
// pass, a condition-mode boolean evaluation, or (when options.regex is
// set) a regex-driven replacement pass.
func Evaluate(source string, ctx *Context, opts Options) (string, error) {
	if ctx == nil {
		ctx = NewContext(nil, nil, nil, nil)
	}
	ctx.prefix = opts.prefix()
	ctx.suffix = opts.suffix()
	ctx.debugOut = opts.DebugOutput
	ctx.debugLevel = opts.Debug
	ctx.depth = 0

	e := &Evaluator{}

	if opts.Regex != "" {
		return e.applyRegexReplace(source, opts.Regex, opts.RegexReplace, ctx)
	}
	if opts.Condition {
		ok, err := e.evalCondition(source, ctx)
		if err != nil {
			return "", err
		}
		if ok {
			return "1", nil
		}
		return "0", nil
	}
	return e.evaluate(source, ctx)
}

// evaluate scans src for prefix...suffix substitutions, recursing into
// evalBody for each one found. Once ctx.depth reaches maxDepth, the
// remaining text is returned literally.
func (e *Evaluator) evaluate(src string, ctx *Context) (string, error) {
	if ctx.depth >= maxDepth {
		return src, nil
	}

	var out strings.Builder
	i := 0
	for i < len(src) {
		idx := strings.Index(src[i:], ctx.prefix)
		if idx < 0 {
			out.WriteString(src[i:])
			break
		}
		out.WriteString(src[i : i+idx])

		bodyStart := i + idx + len(ctx.prefix)
		end, ok := findMatchingEnd(src, bodyStart, ctx.prefix, ctx.suffix)
		if !ok {
			// unterminated prefix: verbatim from the unmatched point onward
			out.WriteString(src[i+idx:])
			i = len(src)
			break
		}

		body := src[bodyStart:end]
		ctx.depth++
		result, err := e.evalBody(body, ctx)
		ctx.depth--
		if err != nil {
			return "", err
		}
		e.trace(body, ctx, result)
		out.WriteString(result)

		i = end + len(ctx.suffix)
	}
	return out.String(), nil
}

// findMatchingEnd locates the suffix that closes the substitution started
// at bodyStart, treating any nested prefix occurrence as increasing depth
// so "${eval:${foo}}" finds the outer suffix rather than the inner one.
func findMatchingEnd(src string, bodyStart int, prefix, suffix string) (int, bool) {
	depth := 1
	i := bodyStart
	for i < len(src) {
		if strings.HasPrefix(src[i:], prefix) {
			depth++
			i += len(prefix)
			continue
		}
		if strings.HasPrefix(src[i:], suffix) {
			depth--
			if depth == 0 {
				return i, true
			}
			i += len(suffix)
			continue
		}
		i++
	}
	return 0, false
}

func (e *Evaluator) trace(expr string, ctx *Context, result string) {
	if ctx.debugLevel <= 0 || ctx.debugOut == nil {
		return
	}
	ctx.nextTraceID++
	indent := strings.Repeat("  ", ctx.depth)
	fmt.Fprintf(ctx.debugOut, "%s[%d] depth=%d expr=%q result=%q\n",
		indent, ctx.nextTraceID, ctx.depth, expr, result)
}

// evalBody interprets the text between a matched prefix/suffix pair:
// either a backslash escape shorthand, a "transform:args" call, or a bare
// reference.
func (e *Evaluator) evalBody(body string, ctx *Context) (string, error) {
	if strings.HasPrefix(body, "\\") {
		return unescape(body), nil
	}

	name, args, hasColon := splitFirstColon(body)
	if !hasColon {
		if zeroArgTransforms[name] {
			return e.callTransform(name, "", ctx)
		}
		return e.resolveReference(body, ctx), nil
	}
	if !knownTransforms[name] {
		return e.resolveReference(body, ctx), nil
	}
	return e.callTransform(name, args, ctx)
}

func splitFirstColon(body string) (name, rest string, ok bool) {
	idx := strings.IndexByte(body, ':')
	if idx < 0 {
		return body, "", false
	}
	return body[:idx], body[idx+1:], true
}

// splitArgsN splits comma-separated args into exactly n fields, with the
// final field absorbing any remaining commas verbatim (so the last
// argument — typically the payload string — may itself contain commas).
func splitArgsN(args string, n int) []string {
	parts := strings.SplitN(args, ",", n)
	for len(parts) < n {
		parts = append(parts, "")
	}
	return parts
}

func (e *Evaluator) resolveReference(ref string, ctx *Context) string {
	ref = strings.TrimSpace(ref)

	if v, ok := ctx.lookupVar(ref); ok {
		return v
	}
	if strings.HasPrefix(ref, "sec.data.") {
		key := strings.TrimPrefix(ref, "sec.data.")
		if ctx.Lookup != nil {
			if v, ok := ctx.Lookup.SecData(key); ok {
				return v
			}
		}
		return ctx.prefix + ref + ctx.suffix
	}
	if strings.Contains(ref, "[") || strings.HasPrefix(ref, "hdata") {
		if ctx.Lookup != nil {
			if v, ok := ctx.Lookup.HData(ref); ok {
				return v
			}
		}
		return ctx.prefix + ref + ctx.suffix
	}
	if strings.Count(ref, ".") >= 2 && ctx.Lookup != nil {
		if v, ok := ctx.Lookup.Config(ref); ok {
			return v
		}
	}
	if ctx.Lookup != nil {
		if v, ok := ctx.Lookup.HData(ref); ok {
			return v
		}
	}
	return ctx.prefix + ref + ctx.suffix
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
