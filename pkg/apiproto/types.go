// Package apiproto defines the JSON wire shapes of the relay's "api"
// protocol: HTTP request/response bodies, the WebSocket event envelope,
// and the entity serialization the handlers produce. This is JSON over
// HTTP/WebSocket rather than weechat's legacy binary relay protocol, but
// it plays the exact same role: the one place that knows how host.Host
// entities become bytes on the wire.
package apiproto

import (
	"encoding/json"
	"time"
)

// HandshakeRequest is the body of POST /api/handshake.
type HandshakeRequest struct {
	PasswordHashAlgo []string `json:"password_hash_algo,omitempty"`
}

// HandshakeResponse is returned by POST /api/handshake.
type HandshakeResponse struct {
	PasswordHashAlgo      string `json:"password_hash_algo"`
	PasswordHashIterations int   `json:"password_hash_iterations"`
	TOTP                  bool   `json:"totp"`
}

// VersionResponse is returned by GET /api/version.
type VersionResponse struct {
	WeechatVersion      string `json:"weechat_version"`
	WeechatVersionGit   string `json:"weechat_version_git"`
	WeechatVersionNumber string `json:"weechat_version_number"`
	RelayAPIVersion     string `json:"relay_api_version"`
	RelayAPIVersionNumber int  `json:"relay_api_version_number"`
}

// BufferKey serializes host.BufferKey.
type BufferKey struct {
	Key     string `json:"key"`
	Command string `json:"command"`
}

// Buffer serializes host.Buffer.
type Buffer struct {
	ID                    int64             `json:"id"`
	Name                  string            `json:"name"`
	ShortName             string            `json:"short_name"`
	Number                int               `json:"number"`
	Type                  string            `json:"type"`
	Hidden                bool              `json:"hidden"`
	Title                 string            `json:"title"`
	Modes                 string            `json:"modes"`
	InputPrompt           string            `json:"input_prompt"`
	Input                 string            `json:"input"`
	InputPosition         int               `json:"input_position"`
	InputMultiline        bool              `json:"input_multiline"`
	Nicklist              bool              `json:"nicklist"`
	NicklistCaseSensitive bool              `json:"nicklist_case_sensitive"`
	NicklistDisplayGroups bool              `json:"nicklist_display_groups"`
	TimeDisplayed         bool              `json:"time_displayed"`
	LocalVariables        map[string]string `json:"local_variables"`
	Keys                  []BufferKey       `json:"keys"`
	Lines                 []Line            `json:"lines,omitempty"`
	NicklistRoot          *NickGroup        `json:"nicklist_root,omitempty"`
}

// Line serializes host.Line.
type Line struct {
	ID          int64    `json:"id"`
	Y           int      `json:"y"`
	Date        string   `json:"date"`
	DatePrinted string   `json:"date_printed"`
	Displayed   bool     `json:"displayed"`
	Highlight   bool     `json:"highlight"`
	NotifyLevel int      `json:"notify_level"`
	Prefix      string   `json:"prefix"`
	Message     string   `json:"message"`
	Tags        []string `json:"tags"`
}

// ISOTime formats t as ISO-8601 UTC with microsecond precision
// ("%FT%T.%fZ" in strftime notation), the shape required for
// Line.Date and Line.DatePrinted.
func ISOTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000Z")
}

// Nick serializes host.Nick.
type Nick struct {
	ID              int64  `json:"id"`
	ParentGroupID   int64  `json:"parent_group_id"`
	Prefix          string `json:"prefix"`
	PrefixColorName string `json:"prefix_color_name"`
	PrefixColor     string `json:"prefix_color"`
	Name            string `json:"name"`
	ColorName       string `json:"color_name"`
	Color           string `json:"color"`
	Visible         bool   `json:"visible"`
}

// NickGroup serializes host.NickGroup.
type NickGroup struct {
	ID            int64       `json:"id"`
	ParentGroupID int64       `json:"parent_group_id"`
	Name          string      `json:"name"`
	ColorName     string      `json:"color_name"`
	Color         string      `json:"color"`
	Visible       bool        `json:"visible"`
	Groups        []NickGroup `json:"groups"`
	Nicks         []Nick      `json:"nicks"`
}

// HotlistEntry serializes host.HotlistEntry.
type HotlistEntry struct {
	Priority int    `json:"priority"`
	Date     string `json:"date"`
	BufferID int64  `json:"buffer_id"`
	Count    [4]int `json:"count"`
}

// Completion serializes host.Completion.
type Completion struct {
	Context         string   `json:"context"`
	BaseWord        string   `json:"base_word"`
	PositionReplace int      `json:"position_replace"`
	AddSpace        bool     `json:"add_space"`
	List            []string `json:"list"`
}

// CompletionRequest is the body of POST /api/completion.
type CompletionRequest struct {
	BufferID   *int64 `json:"buffer_id,omitempty"`
	BufferName string `json:"buffer_name,omitempty"`
	Command    string `json:"command"`
	Position   int    `json:"position,omitempty"`
}

// InputRequest is the body of POST /api/input.
type InputRequest struct {
	BufferID   *int64 `json:"buffer_id,omitempty"`
	BufferName string `json:"buffer_name,omitempty"`
	Command    string `json:"command"`
}

// PingRequest/PingResponse are the optional body and echo of POST /api/ping.
type PingRequest struct {
	Data string `json:"data,omitempty"`
}

type PingResponse struct {
	Data string `json:"data,omitempty"`
}

// SyncRequest is the body of POST /api/sync; Nicks/Input/Colors default to
// true/true/"ansi" respectively when omitted, applied by the handler.
type SyncRequest struct {
	Sync   *bool   `json:"sync,omitempty"`
	Nicks  *bool   `json:"nicks,omitempty"`
	Input  *bool   `json:"input,omitempty"`
	Colors *string `json:"colors,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RequestEnvelope is the body of a WebSocket text frame carrying a client
// request: "<METHOD> <PATH>" plus an optional id the response should echo
// back and an optional JSON body.
type RequestEnvelope struct {
	Request   string          `json:"request"`
	RequestID *string         `json:"request_id,omitempty"`
	Body      json.RawMessage `json:"body,omitempty"`
}

// ResponseEnvelope is the WebSocket reply to a RequestEnvelope. It carries
// the same information an HTTP response line + body would, plus enough of
// the original request to let a client correlate replies that may arrive
// out of order relative to other traffic on the same connection.
type ResponseEnvelope struct {
	Code        int             `json:"code"`
	Message     string          `json:"message"`
	Request     string          `json:"request"`
	RequestBody json.RawMessage `json:"request_body"`
	RequestID   *string         `json:"request_id"`
	BodyType    *string         `json:"body_type"`
	Body        any             `json:"body"`
}

// EventEnvelope is a server-pushed WebSocket frame reporting a host signal
// to a synced client. Code is always 0; Message duplicates EventName for
// clients that key off a single field regardless of frame kind.
type EventEnvelope struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	EventName string `json:"event_name"`
	BufferID  int64  `json:"buffer_id"`
	BodyType  *string `json:"body_type"`
	Body      any    `json:"body"`
}
