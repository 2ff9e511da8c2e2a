// Package host models the WeeChat-side collaborator the relay core talks
// to: buffers, lines, nicklists, hotlist entries and completion, plus the
// signal/hdata/info_get/modifier_exec contract the API protocol layer and
// the expression evaluator both consult.
package host

import "time"

// BufferType distinguishes a normal line-oriented buffer from a free
// (application-controlled layout) buffer.
type BufferType string

const (
	BufferFormatted BufferType = "formatted"
	BufferFree      BufferType = "free"
)

// Buffer mirrors Buffer object.
type Buffer struct {
	ID                     int64
	Name                   string
	ShortName              string
	Number                 int
	Type                   BufferType
	Hidden                 bool
	Title                  string
	Modes                  string
	InputPrompt            string
	Input                  string
	InputPosition          int
	InputMultiline         bool
	Nicklist               bool
	NicklistCaseSensitive  bool
	NicklistDisplayGroups  bool
	TimeDisplayed          bool
	LocalVariables         map[string]string
	Keys                   []BufferKey
	Lines                  []*Line
	NicklistRoot           *NickGroup
}

// BufferKey is one of a buffer's Keys entries.
type BufferKey struct {
	Key     string
	Command string
}

// Line mirrors Line data object. Date and DatePrinted are
// formatted as ISO-8601 UTC with microsecond precision by the API layer,
// not here — this struct keeps them as time.Time so callers can reformat
// or compare freely.
type Line struct {
	ID           int64
	Y            int
	Date         time.Time
	DatePrinted  time.Time
	Displayed    bool
	Highlight    bool
	NotifyLevel  int
	Prefix       string
	Message      string
	Tags         []string
}

// Nick mirrors Nick object.
type Nick struct {
	ID              int64
	ParentGroupID   int64 // -1 if root-owned
	Prefix          string
	PrefixColorName string
	PrefixColor     string
	Name            string
	ColorName       string
	Color           string
	Visible         bool
}

// NickGroup mirrors Nick group object.
type NickGroup struct {
	ID            int64
	ParentGroupID int64
	Name          string
	ColorName     string
	Color         string
	Visible       bool
	Groups        []*NickGroup
	Nicks         []*Nick
}

// HotlistPriority is one of the four priority bands.
type HotlistPriority int

const (
	HotlistLow HotlistPriority = iota
	HotlistMessage
	HotlistPrivate
	HotlistHighlight
)

// HotlistEntry mirrors Hotlist entry object. Count holds the
// four occurrence counts in [low, message, private, highlight] order.
type HotlistEntry struct {
	Priority HotlistPriority
	Date     time.Time
	BufferID int64
	Count    [4]int
}

// CompletionContext distinguishes the kind of word being completed.
type CompletionContext string

const (
	CompletionNone        CompletionContext = ""
	CompletionCommand     CompletionContext = "command"
	CompletionCommandArg  CompletionContext = "command_arg"
	CompletionAuto        CompletionContext = "auto"
)

// Completion mirrors Completion object.
type Completion struct {
	Context         CompletionContext
	BaseWord        string
	PositionReplace int
	AddSpace        bool
	List            []string
}
