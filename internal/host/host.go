package host

// Signal names the relay's event fan-out subscribes to.
const (
	SignalBufferOpened         = "buffer_opened"
	SignalBufferTypeChanged    = "buffer_type_changed"
	SignalBufferMoved          = "buffer_moved"
	SignalBufferMerged         = "buffer_merged"
	SignalBufferUnmerged       = "buffer_unmerged"
	SignalBufferHidden         = "buffer_hidden"
	SignalBufferUnhidden       = "buffer_unhidden"
	SignalBufferRenamed        = "buffer_renamed"
	SignalBufferTitleChanged   = "buffer_title_changed"
	SignalBufferModesChanged   = "buffer_modes_changed"
	SignalBufferLocalvarSet    = "buffer_localvar_set"
	SignalBufferLocalvarChange = "buffer_localvar_changed"
	SignalBufferLocalvarDel    = "buffer_localvar_del"
	SignalBufferCleared        = "buffer_cleared"
	SignalBufferClosing        = "buffer_closing"
	SignalBufferClosed         = "buffer_closed"
	SignalBufferLineAdded      = "buffer_line_added"
	SignalNicklistGroupAdded   = "nicklist_group_added"
	SignalNicklistGroupChanged = "nicklist_group_changed"
	SignalNicklistGroupRemoving = "nicklist_group_removing"
	SignalNicklistNickAdded    = "nicklist_nick_added"
	SignalNicklistNickChanged  = "nicklist_nick_changed"
	SignalNicklistNickRemoving = "nicklist_nick_removing"
	SignalInputTextChanged     = "input_text_changed"
	SignalUpgrade              = "upgrade"
	SignalUpgradeEnded         = "upgrade_ended"
)

// Event is delivered to a signal subscriber. Exactly one of Buffer, Line,
// NickGroup or Nick is populated depending on the signal's body type
// ("Body type" column); buffer_closed and upgrade* signals
// leave all four nil.
type Event struct {
	Signal    string
	Buffer    *Buffer
	Line      *Line
	NickGroup *NickGroup
	Nick      *Nick
	// ClosedBufferID carries the id recovered from the closing-map for a
	// buffer_closed event, since the buffer pointer is already invalid.
	ClosedBufferID int64
	// BufferID associates an event with a buffer when the payload itself
	// (Line, NickGroup, Nick) doesn't carry one. Left at zero when the
	// signal isn't buffer-scoped.
	BufferID int64
}

// Host is the collaborator contract the relay client state machine and
// API protocol layer hold against: the thing that actually owns buffers,
// lines, nicklists and the hotlist, and that commands get executed
// against. A relay built against a real WeeChat core satisfies this by
// wrapping hdata/infolist access; Memory (in this package) is an
// in-process reference implementation for tests and standalone use.
type Host interface {
	Buffers() []*Buffer
	Buffer(idOrName string) (*Buffer, bool)
	Hotlist() []*HotlistEntry
	Completion(bufferID int64, command string, position int) (*Completion, error)
	ExecuteInput(bufferID int64, command string) error

	// Subscribe registers fn to be called for every Event on the named
	// signal, returning an unsubscribe function. Matches
	// unhook(hook)'s idempotence guarantee:
	// calling the returned function more than once is a no-op.
	Subscribe(signal string, fn func(Event)) (unsubscribe func())
}
