package eval

import (
	"math/rand"
	"os"
	"strconv"
	"strings"

	"weechat-relay/internal/wcolor"
	"weechat-relay/internal/wstring"
)

// callTransform dispatches a recognized "name:args" body to its
// implementation. Most transforms evaluate their raw args through the
// substitution machinery before acting on the result; a few (if, define,
// re, raw, raw_hl) deliberately skip that pre-evaluation because they need
// to control evaluation order themselves.
func (e *Evaluator) callTransform(name, rawArgs string, ctx *Context) (string, error) {
	switch name {
	case "esc":
		arg, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		return unescape(arg), nil

	case "chars":
		arg, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		return charClass(strings.TrimSpace(arg)), nil

	case "lower":
		arg, err := e.evaluate(rawArgs, ctx)
		return strings.ToLower(arg), err

	case "upper":
		arg, err := e.evaluate(rawArgs, ctx)
		return strings.ToUpper(arg), err

	case "hide":
		arg, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		parts := splitArgsN(arg, 2)
		return hideTransform(parts[0], parts[1]), nil

	case "cut", "cutscr":
		arg, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		parts := splitArgsN(arg, 3)
		return cutTransform(name == "cutscr", parts[0], parts[1], parts[2]), nil

	case "rev", "revscr":
		arg, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		return revTransform(name == "revscr", arg), nil

	case "repeat":
		arg, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		parts := splitArgsN(arg, 2)
		n := atoiDefault(parts[0], 0)
		if n < 0 {
			n = 0
		}
		return strings.Repeat(parts[1], n), nil

	case "length", "lengthscr":
		arg, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		if name == "lengthscr" {
			return strconv.Itoa(displayWidthOf(arg)), nil
		}
		return strconv.Itoa(graphemeCount(arg)), nil

	case "split":
		arg, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		parts := splitArgsN(arg, 4)
		return splitTransform(parts[0], parts[1], parts[2], parts[3]), nil

	case "split_shell":
		arg, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		parts := splitArgsN(arg, 2)
		items, err := wstring.SplitShell(parts[1])
		if err != nil {
			return "", nil
		}
		return selectSplitItem(parts[0], items), nil

	case "base_encode", "base_decode":
		arg, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		parts := splitArgsN(arg, 2)
		base := wstring.Base(strings.TrimSpace(parts[0]))
		if name == "base_encode" {
			enc, err := wstring.Encode(base, []byte(parts[1]))
			if err != nil {
				return "", nil
			}
			return enc, nil
		}
		dec, err := wstring.Decode(base, parts[1])
		if err != nil {
			return "", nil
		}
		return string(dec), nil

	case "color":
		arg, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		return wcolor.Encode(arg), nil

	case "modifier":
		arg, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		parts := splitArgsN(arg, 3)
		if ctx.Lookup != nil {
			if v, ok := ctx.Lookup.Modifier(parts[0], parts[1], parts[2]); ok {
				return v, nil
			}
		}
		return "", nil

	case "info":
		arg, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		parts := strings.SplitN(arg, ",", 2)
		infoArgs := ""
		if len(parts) > 1 {
			infoArgs = parts[1]
		}
		if ctx.Lookup != nil {
			if v, ok := ctx.Lookup.Info(parts[0], infoArgs); ok {
				return v, nil
			}
		}
		return "", nil

	case "date":
		arg, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		return dateTransform(arg), nil

	case "env":
		arg, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		v, _ := os.LookupEnv(strings.TrimSpace(arg))
		return v, nil

	case "if":
		return e.ifTransform(rawArgs, ctx)

	case "calc":
		arg, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		result, err := calc(arg)
		if err != nil {
			return "", nil
		}
		return result, nil

	case "random":
		arg, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		parts := splitArgsN(arg, 2)
		lo := atoiDefault(parts[0], 0)
		hi := atoiDefault(parts[1], 0)
		if hi < lo {
			lo, hi = hi, lo
		}
		return strconv.Itoa(lo + rand.Intn(hi-lo+1)), nil

	case "translate":
		// No translation catalog is wired in this implementation; the
		// text is still substitution-evaluated and passed through.
		return e.evaluate(rawArgs, ctx)

	case "define":
		parts := splitArgsN(rawArgs, 2)
		value, err := e.evaluate(parts[1], ctx)
		if err != nil {
			return "", err
		}
		ctx.define(strings.TrimSpace(parts[0]), value)
		return "", nil

	case "re":
		return reTransform(rawArgs, ctx), nil

	case "eval":
		first, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		return e.evaluate(first, ctx)

	case "eval_cond":
		ok, err := e.evalCondition(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		if ok {
			return "1", nil
		}
		return "0", nil

	case "hl":
		arg, err := e.evaluate(rawArgs, ctx)
		if err != nil {
			return "", err
		}
		return hlMarker(arg), nil

	case "raw_hl":
		return hlMarker(rawArgs), nil

	case "raw":
		return rawArgs, nil
	}

	return e.resolveReference(name+":"+rawArgs, ctx), nil
}

// hlMarker wraps s in the syntax-highlight token pair, mirroring the
// marker/term scheme wcolor uses for color tokens.
func hlMarker(s string) string {
	return "\x03" + s + "\x04"
}

// ifTransform implements ${if:cond?then:else}. cond, then and else are
// located by scanning for the top-level '?' and ':' — top-level meaning
// outside any nested prefix/suffix substitution — so that only the
// selected branch is ever evaluated (matching the side-effect-visible
// semantics of ${define:...} inside a branch).
func (e *Evaluator) ifTransform(args string, ctx *Context) (string, error) {
	cond, thenExpr, elseExpr, ok := splitIfArgs(args, ctx.prefix, ctx.suffix)
	if !ok {
		v, err := e.evaluate(args, ctx)
		return v, err
	}
	result, err := e.evalCondition(cond, ctx)
	if err != nil {
		return "", err
	}
	if result {
		return e.evaluate(thenExpr, ctx)
	}
	return e.evaluate(elseExpr, ctx)
}

func splitIfArgs(s, prefix, suffix string) (cond, then, els string, ok bool) {
	depth := 0
	qPos, cPos := -1, -1
	i := 0
	for i < len(s) {
		switch {
		case strings.HasPrefix(s[i:], prefix):
			depth++
			i += len(prefix)
			continue
		case strings.HasPrefix(s[i:], suffix):
			if depth > 0 {
				depth--
			}
			i += len(suffix)
			continue
		case depth == 0 && s[i] == '?' && qPos < 0:
			qPos = i
		case depth == 0 && s[i] == ':' && qPos >= 0 && cPos < 0:
			cPos = i
		}
		i++
	}
	if qPos < 0 || cPos < 0 {
		return "", "", "", false
	}
	return s[:qPos], s[qPos+1 : cPos], s[cPos+1:], true
}

// splitTransform implements ${split:n,seps,flags,s}: n selects an item by
// index (0-based), "count" returns the item count, and "*" returns every
// item joined back with ",".
func splitTransform(nArg, seps, flagsArg, s string) string {
	flags, err := wstring.ParseSplitFlags(flagsArg)
	if err != nil {
		return ""
	}
	items := wstring.Split(s, seps, flags)
	return selectSplitItem(nArg, items)
}

func selectSplitItem(nArg string, items []string) string {
	switch strings.TrimSpace(nArg) {
	case "count":
		return strconv.Itoa(len(items))
	case "*", "":
		return wstring.Join(items, ",")
	default:
		n := atoiDefault(nArg, -1)
		if n < 0 || n >= len(items) {
			return ""
		}
		return items[n]
	}
}
