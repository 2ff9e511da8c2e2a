// Package eval implements the recursive ${...} expression evaluator:
// substitution, the transform catalog, condition mode, regex replacement
// and the 32-level recursion guard.
package eval

import "strings"

// maxDepth bounds recursive evaluation.
const maxDepth = 32

// Vars is a flat string-keyed variable mapping, used for the evaluator's
// three mapping kinds (pointers, extra vars, user vars).
type Vars map[string]string

// Lookup resolves names the evaluator cannot answer from its in-memory
// mappings alone: info callbacks, config options, hdata paths, modifier
// hooks and the secured-data store. All of these are host collaborator
// concerns; a nil Lookup makes every such reference resolve to
// "not found" rather than erroring.
type Lookup interface {
	// Info resolves ${info:name[,args]}.
	Info(name, args string) (string, bool)
	// Config resolves ${file.section.option}.
	Config(path string) (string, bool)
	// HData resolves ${hdata[selector].path}.
	HData(selector string) (string, bool)
	// Modifier runs ${modifier:name,data,s}.
	Modifier(name, data, s string) (string, bool)
	// SecData resolves ${sec.data.KEY}.
	SecData(key string) (string, bool)
}

// Options is the recognized options map passed alongside a source string.
type Options struct {
	Prefix                string // default "${"
	Suffix                string // default "}"
	Condition             bool   // type == "condition"
	ExtraEval             bool   // extra == "eval"
	Regex                 string
	RegexReplace          string
	RegexReplacementIndex int
	Debug                 int // 0, 1 or 2

	// DebugOutput collects the pretty-printed trace when Debug > 0.
	DebugOutput *strings.Builder
}

func (o Options) prefix() string {
	if o.Prefix == "" {
		return "${"
	}
	return o.Prefix
}

func (o Options) suffix() string {
	if o.Suffix == "" {
		return "}"
	}
	return o.Suffix
}

// Context carries the three mappings, regex state, recursion depth and
// debug trace through a single top-level Evaluate call and its recursive
// descendants.
type Context struct {
	Pointers  Vars
	ExtraVars Vars
	UserVars  Vars
	Lookup    Lookup

	prefix, suffix string
	depth          int
	nextTraceID    int

	// regexGroups holds the active regex match (group 0 = whole match),
	// consumed by the ${re:N} / ${re:+} / ${re:#} / ${re:repl_index} forms.
	regexGroups []string
	replIndex   int

	debugOut   *strings.Builder
	debugLevel int
}

// NewContext builds an evaluation context with the given mappings. Any of
// the three may be nil, treated as empty.
func NewContext(pointers, extra, user Vars, lookup Lookup) *Context {
	return &Context{
		Pointers:  pointers,
		ExtraVars: extra,
		UserVars:  user,
		Lookup:    lookup,
	}
}

func (c *Context) lookupVar(name string) (string, bool) {
	if c.UserVars != nil {
		if v, ok := c.UserVars[name]; ok {
			return v, true
		}
	}
	if c.ExtraVars != nil {
		if v, ok := c.ExtraVars[name]; ok {
			return v, true
		}
	}
	if c.Pointers != nil {
		if v, ok := c.Pointers[name]; ok {
			return v, true
		}
	}
	return "", false
}

func (c *Context) define(name, value string) {
	if c.UserVars == nil {
		c.UserVars = make(Vars)
	}
	c.UserVars[name] = value
}

// child returns a shallow copy of c sharing the same variable mappings and
// lookup but free to carry its own regex-match state and recursion depth,
// used when entering a regex replacement template.
func (c *Context) child() *Context {
	cp := *c
	return &cp
}

func (c *Context) group(n int) string {
	if n < 0 || n >= len(c.regexGroups) {
		return ""
	}
	return c.regexGroups[n]
}

func (c *Context) lastNonEmptyGroup() string {
	for i := len(c.regexGroups) - 1; i >= 1; i-- {
		if c.regexGroups[i] != "" {
			return c.regexGroups[i]
		}
	}
	return ""
}
