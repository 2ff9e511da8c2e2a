package host

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"weechat-relay/internal/hashtable"
)

// Memory is an in-process Host: one connection's worth of buffers, lines,
// nicklists and hotlist entries, held in memory and exposed with a signal
// fan-out so multiple relay clients can each subscribe independently.
type Memory struct {
	mu      sync.RWMutex
	buffers *hashtable.Map[int64, *Buffer]
	byName  map[string]int64
	nextID  int64
	hotlist []*HotlistEntry

	// closing records the buffer id population that buffer_closing wrote,
	// read (and removed) by buffer_closed once the buffer pointer is no
	// longer valid. Using hashtable.Map here (rather than a plain map)
	// means a full Close of the host discards every still-pending
	// closing-id entry with one Destroy call.
	closing *hashtable.Map[int64, int64]

	subsMu sync.Mutex
	subs   map[string][]*subscription
	nextSub int64

	inputHandler func(bufferID int64, command string) error
	commands     []string
}

type subscription struct {
	id int64
	fn func(Event)
}

// NewMemory returns an empty in-memory host.
func NewMemory() *Memory {
	return &Memory{
		buffers: hashtable.New[int64, *Buffer](nil),
		byName:  make(map[string]int64),
		closing: hashtable.New[int64, int64](nil),
		subs:    make(map[string][]*subscription),
	}
}

// Close tears down the host: every buffer is dropped and every pending
// closing-id entry is discarded, matching hashtable.Map's "destroy
// everything on shutdown" contract instead of waiting on the garbage
// collector for a host that's going away entirely (process shutdown,
// test teardown).
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buffers.Destroy()
	m.closing.Destroy()
	m.byName = make(map[string]int64)
}

// SetInputHandler installs the function ExecuteInput calls; without one,
// ExecuteInput is a no-op that always succeeds (useful in tests that only
// care about routing, not command execution).
func (m *Memory) SetInputHandler(fn func(bufferID int64, command string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputHandler = fn
}

// CreateBuffer allocates a new buffer with a fresh id and emits
// buffer_opened.
func (m *Memory) CreateBuffer(name, shortName string, typ BufferType) *Buffer {
	m.mu.Lock()
	m.nextID++
	b := &Buffer{
		ID:             m.nextID,
		Name:           name,
		ShortName:      shortName,
		Number:         m.buffers.Len() + 1,
		Type:           typ,
		LocalVariables: make(map[string]string),
	}
	m.byName[name] = b.ID
	m.mu.Unlock()
	m.buffers.Set(b.ID, b)

	m.emit(Event{Signal: SignalBufferOpened, Buffer: b, BufferID: b.ID})
	return b
}

// CloseBuffer implements the buffer_closing -> buffers_closing ->
// buffer_closed sequence: buffer_closing records the id in
// the closing map before anything is torn down; buffer_closed reads it
// back (defaulting to -1 on a lookup miss) since by the time that event
// fires the buffer pointer itself is already gone.
func (m *Memory) CloseBuffer(id int64) {
	b, ok := m.buffers.Get(id)
	if !ok {
		return
	}
	m.emit(Event{Signal: SignalBufferClosing, Buffer: b, BufferID: b.ID})

	m.closing.Set(id, id)
	m.buffers.Remove(id)
	m.mu.Lock()
	delete(m.byName, b.Name)
	m.mu.Unlock()

	closedID := m.takeClosingID(id)
	m.emit(Event{Signal: SignalBufferClosed, ClosedBufferID: closedID})
}

func (m *Memory) takeClosingID(id int64) int64 {
	closedID, ok := m.closing.Get(id)
	if !ok {
		return -1
	}
	m.closing.Remove(id)
	return closedID
}

func (m *Memory) Buffers() []*Buffer {
	out := make([]*Buffer, 0, m.buffers.Len())
	m.buffers.Each(func(_ int64, b *Buffer) {
		out = append(out, b)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Buffer resolves idOrName either as a numeric id or as a buffer's full
// name, matching the /api/buffers/{id|name} route.
func (m *Memory) Buffer(idOrName string) (*Buffer, bool) {
	if id, err := strconv.ParseInt(idOrName, 10, 64); err == nil {
		return m.buffers.Get(id)
	}
	m.mu.RLock()
	id, ok := m.byName[idOrName]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return m.buffers.Get(id)
}

// AppendLine appends a line to buffer id's line list and emits
// buffer_line_added.
func (m *Memory) AppendLine(bufferID int64, line *Line) error {
	b, ok := m.buffers.Get(bufferID)
	if !ok {
		return fmt.Errorf("host: unknown buffer %d", bufferID)
	}
	m.mu.Lock()
	line.ID = int64(len(b.Lines) + 1)
	line.Y = len(b.Lines)
	b.Lines = append(b.Lines, line)
	m.mu.Unlock()

	m.emit(Event{Signal: SignalBufferLineAdded, Line: line, BufferID: bufferID})
	return nil
}

func (m *Memory) Hotlist() []*HotlistEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*HotlistEntry, len(m.hotlist))
	copy(out, m.hotlist)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// RaiseHotlist bumps buffer bufferID's entry at the given priority,
// creating the entry if it doesn't already exist.
func (m *Memory) RaiseHotlist(bufferID int64, priority HotlistPriority, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.hotlist {
		if e.BufferID == bufferID {
			e.Priority = priority
			e.Date = at
			e.Count[priority]++
			return
		}
	}
	entry := &HotlistEntry{Priority: priority, Date: at, BufferID: bufferID}
	entry.Count[priority]++
	m.hotlist = append(m.hotlist, entry)
}

// Completion runs a minimal completion engine: it only completes command
// names previously registered via RegisterCommand (there is no built-in
// set), which is enough to exercise the /api/completion
// contract without a full WeeChat command tree.
func (m *Memory) Completion(bufferID int64, command string, position int) (*Completion, error) {
	if _, ok := m.Buffer(strconv.FormatInt(bufferID, 10)); !ok {
		return nil, fmt.Errorf("host: unknown buffer %d", bufferID)
	}
	if position <= 0 || position > len(command) {
		position = len(command)
	}
	prefix := command[:position]

	ctx := CompletionNone
	base := prefix
	if strings.HasPrefix(prefix, "/") {
		ctx = CompletionCommand
		base = strings.TrimPrefix(prefix, "/")
	}

	var list []string
	m.mu.RLock()
	for _, name := range m.commands {
		if strings.HasPrefix(name, base) {
			list = append(list, name)
		}
	}
	m.mu.RUnlock()
	sort.Strings(list)

	return &Completion{
		Context:         ctx,
		BaseWord:        base,
		PositionReplace: position - len(base),
		AddSpace:        len(list) == 1,
		List:            list,
	}, nil
}

// RegisterCommand adds a command name Completion can suggest.
func (m *Memory) RegisterCommand(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, name)
}

func (m *Memory) ExecuteInput(bufferID int64, command string) error {
	m.mu.RLock()
	handler := m.inputHandler
	m.mu.RUnlock()
	if handler == nil {
		return nil
	}
	return handler(bufferID, command)
}

func (m *Memory) Subscribe(signal string, fn func(Event)) (unsubscribe func()) {
	m.subsMu.Lock()
	m.nextSub++
	id := m.nextSub
	sub := &subscription{id: id, fn: fn}
	m.subs[signal] = append(m.subs[signal], sub)
	m.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subsMu.Lock()
			defer m.subsMu.Unlock()
			list := m.subs[signal]
			for i, s := range list {
				if s.id == id {
					m.subs[signal] = append(list[:i], list[i+1:]...)
					return
				}
			}
		})
	}
}

func (m *Memory) emit(ev Event) {
	m.subsMu.Lock()
	subs := append([]*subscription(nil), m.subs[ev.Signal]...)
	m.subsMu.Unlock()
	for _, s := range subs {
		s.fn(ev)
	}
}
