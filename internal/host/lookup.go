package host

import (
	"strconv"
	"strings"

	"weechat-relay/internal/config"
)

// EvalLookup adapts a Memory host (plus a config store and a secured-data
// map) into the eval.Lookup contract, so ${info:...}, ${hdata...},
// ${modifier:...} and ${sec.data.KEY} can be resolved when evaluating
// expressions on behalf of a connected client.
type EvalLookup struct {
	Host      *Memory
	Store     *config.Store
	Secrets   map[string]string
	Modifiers map[string]func(data, s string) string
}

// Info implements ${info:name[,args]}. Only the handful of info names the
// relay and evaluator actually consult are wired; anything else misses.
func (l *EvalLookup) Info(name, args string) (string, bool) {
	switch name {
	case "version":
		return "4.0.0", true
	case "version_number":
		return "67108864", true
	case "buffer_plugin":
		if b, ok := l.Host.Buffer(args); ok {
			if idx := strings.Index(b.Name, "."); idx >= 0 {
				return b.Name[:idx], true
			}
		}
		return "", false
	case "inactivity":
		return "0", true
	}
	return "", false
}

// Config implements ${file.section.option} by delegating to the store.
func (l *EvalLookup) Config(path string) (string, bool) {
	if l.Store == nil {
		return "", false
	}
	return l.Store.Get(path)
}

// HData implements a small subset of ${hdata...} selectors: resolving a
// buffer's name/short_name/title by id, e.g. "buffer.123.name".
func (l *EvalLookup) HData(selector string) (string, bool) {
	parts := strings.SplitN(selector, ".", 3)
	if len(parts) != 3 || parts[0] != "buffer" {
		return "", false
	}
	b, ok := l.Host.Buffer(parts[1])
	if !ok {
		return "", false
	}
	switch parts[2] {
	case "name":
		return b.Name, true
	case "short_name":
		return b.ShortName, true
	case "title":
		return b.Title, true
	case "number":
		return strconv.Itoa(b.Number), true
	}
	return "", false
}

func (l *EvalLookup) Modifier(name, data, s string) (string, bool) {
	if l.Modifiers == nil {
		return "", false
	}
	fn, ok := l.Modifiers[name]
	if !ok {
		return "", false
	}
	return fn(data, s), true
}

func (l *EvalLookup) SecData(key string) (string, bool) {
	if l.Secrets == nil {
		return "", false
	}
	v, ok := l.Secrets[key]
	return v, ok
}
