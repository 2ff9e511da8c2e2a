// Package api implements the relay's HTTP+WebSocket "api" protocol:
// route table, entity serialization and the handshake/version/buffers/
// hotlist/completion/input/ping/sync handlers.
package api

import (
	"weechat-relay/internal/host"
	"weechat-relay/internal/wcolor"
	"weechat-relay/pkg/apiproto"
)

// ColorMode is the request-level or sync-level color rendering choice
// (Mode column: ansi, weechat, strip).
type ColorMode string

const (
	ColorAnsi    ColorMode = "ansi"
	ColorWeechat ColorMode = "weechat"
	ColorStrip   ColorMode = "strip"
)

func (m ColorMode) wcolorMode() wcolor.Mode {
	switch m {
	case ColorWeechat:
		return wcolor.ModeWeechat
	case ColorStrip:
		return wcolor.ModeStrip
	default:
		return wcolor.ModeAnsi
	}
}

func render(s string, mode ColorMode) string {
	return wcolor.Transform(s, mode.wcolorMode())
}

// Buffer serializes a host.Buffer, optionally including lines and the
// nicklist tree (the "lines?"/"nicklist_root?" optional fields from spec
// §4.5), with every color-bearing string field rendered per mode.
func Buffer(b *host.Buffer, mode ColorMode, includeLines, includeNicks bool) apiproto.Buffer {
	out := apiproto.Buffer{
		ID:                    b.ID,
		Name:                  b.Name,
		ShortName:             b.ShortName,
		Number:                b.Number,
		Type:                  string(b.Type),
		Hidden:                b.Hidden,
		Title:                 render(b.Title, mode),
		Modes:                 b.Modes,
		InputPrompt:           render(b.InputPrompt, mode),
		Input:                 b.Input,
		InputPosition:         b.InputPosition,
		InputMultiline:        b.InputMultiline,
		Nicklist:              b.Nicklist,
		NicklistCaseSensitive: b.NicklistCaseSensitive,
		NicklistDisplayGroups: b.NicklistDisplayGroups,
		TimeDisplayed:         b.TimeDisplayed,
		LocalVariables:        b.LocalVariables,
	}
	for _, k := range b.Keys {
		out.Keys = append(out.Keys, apiproto.BufferKey{Key: k.Key, Command: k.Command})
	}
	if includeLines {
		for _, l := range b.Lines {
			out.Lines = append(out.Lines, Line(l, mode))
		}
	}
	if includeNicks && b.NicklistRoot != nil {
		root := NickGroup(b.NicklistRoot, mode)
		out.NicklistRoot = &root
	}
	return out
}

// Lines converts a slice of lines, honoring the "last |N|" selection
// already applied by the caller ("lines" query parameter).
func Lines(lines []*host.Line, mode ColorMode) []apiproto.Line {
	out := make([]apiproto.Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, Line(l, mode))
	}
	return out
}

func Line(l *host.Line, mode ColorMode) apiproto.Line {
	return apiproto.Line{
		ID:          l.ID,
		Y:           l.Y,
		Date:        apiproto.ISOTime(l.Date),
		DatePrinted: apiproto.ISOTime(l.DatePrinted),
		Displayed:   l.Displayed,
		Highlight:   l.Highlight,
		NotifyLevel: l.NotifyLevel,
		Prefix:      render(l.Prefix, mode),
		Message:     render(l.Message, mode),
		Tags:        l.Tags,
	}
}

func Nick(n *host.Nick, mode ColorMode) apiproto.Nick {
	return apiproto.Nick{
		ID:              n.ID,
		ParentGroupID:   n.ParentGroupID,
		Prefix:          render(n.Prefix, mode),
		PrefixColorName: n.PrefixColorName,
		PrefixColor:     render(n.PrefixColor, mode),
		Name:            n.Name,
		ColorName:       n.ColorName,
		Color:           render(n.Color, mode),
		Visible:         n.Visible,
	}
}

func NickGroup(g *host.NickGroup, mode ColorMode) apiproto.NickGroup {
	out := apiproto.NickGroup{
		ID:            g.ID,
		ParentGroupID: g.ParentGroupID,
		Name:          g.Name,
		ColorName:     g.ColorName,
		Color:         render(g.Color, mode),
		Visible:       g.Visible,
	}
	for _, sub := range g.Groups {
		out.Groups = append(out.Groups, NickGroup(sub, mode))
	}
	for _, n := range g.Nicks {
		out.Nicks = append(out.Nicks, Nick(n, mode))
	}
	return out
}

func Hotlist(entries []*host.HotlistEntry) []apiproto.HotlistEntry {
	out := make([]apiproto.HotlistEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, apiproto.HotlistEntry{
			Priority: int(e.Priority),
			Date:     apiproto.ISOTime(e.Date),
			BufferID: e.BufferID,
			Count:    e.Count,
		})
	}
	return out
}

func CompletionResult(c *host.Completion) apiproto.Completion {
	return apiproto.Completion{
		Context:         string(c.Context),
		BaseWord:        c.BaseWord,
		PositionReplace: c.PositionReplace,
		AddSpace:        c.AddSpace,
		List:            c.List,
	}
}
