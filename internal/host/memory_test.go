package host

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndLookupBuffer(t *testing.T) {
	m := NewMemory()
	b := m.CreateBuffer("irc.freenode.#weechat", "#weechat", BufferFormatted)

	byID, ok := m.Buffer("1")
	require.True(t, ok)
	assert.Equal(t, b, byID)

	byName, ok := m.Buffer("irc.freenode.#weechat")
	require.True(t, ok)
	assert.Equal(t, b, byName)
}

func TestBufferOpenedEventFires(t *testing.T) {
	m := NewMemory()
	var got Event
	unsub := m.Subscribe(SignalBufferOpened, func(e Event) { got = e })
	defer unsub()

	m.CreateBuffer("server.buf", "buf", BufferFormatted)
	require.NotNil(t, got.Buffer)
	assert.Equal(t, "server.buf", got.Buffer.Name)
}

func TestCloseBufferClosingMapPattern(t *testing.T) {
	m := NewMemory()
	b := m.CreateBuffer("server.buf", "buf", BufferFormatted)

	var closedID int64 = -99
	unsub := m.Subscribe(SignalBufferClosed, func(e Event) { closedID = e.ClosedBufferID })
	defer unsub()

	m.CloseBuffer(b.ID)
	assert.Equal(t, b.ID, closedID)

	_, ok := m.Buffer(b.Name)
	assert.False(t, ok)
}

func TestTakeClosingIDMissDefaultsToNegativeOne(t *testing.T) {
	m := NewMemory()
	assert.Equal(t, int64(-1), m.takeClosingID(42))
}

func TestAppendLineEmitsEvent(t *testing.T) {
	m := NewMemory()
	b := m.CreateBuffer("server.buf", "buf", BufferFormatted)

	var got *Line
	m.Subscribe(SignalBufferLineAdded, func(e Event) { got = e.Line })

	require.NoError(t, m.AppendLine(b.ID, &Line{Message: "hello", Date: time.Now()}))
	require.NotNil(t, got)
	assert.Equal(t, "hello", got.Message)
	assert.Len(t, b.Lines, 1)
}

func TestHotlistOrderingByPriority(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	m.RaiseHotlist(1, HotlistLow, now)
	m.RaiseHotlist(2, HotlistHighlight, now)
	m.RaiseHotlist(3, HotlistMessage, now)

	entries := m.Hotlist()
	require.Len(t, entries, 3)
	assert.Equal(t, HotlistHighlight, entries[0].Priority)
	assert.Equal(t, HotlistLow, entries[2].Priority)
}

func TestCompletionCommand(t *testing.T) {
	m := NewMemory()
	b := m.CreateBuffer("server.buf", "buf", BufferFormatted)
	m.RegisterCommand("join")
	m.RegisterCommand("jump")
	m.RegisterCommand("part")

	c, err := m.Completion(b.ID, "/j", 2)
	require.NoError(t, err)
	assert.Equal(t, CompletionCommand, c.Context)
	assert.ElementsMatch(t, []string{"join", "jump"}, c.List)
}

func TestExecuteInputCallsHandler(t *testing.T) {
	m := NewMemory()
	b := m.CreateBuffer("server.buf", "buf", BufferFormatted)

	var gotCmd string
	m.SetInputHandler(func(bufferID int64, command string) error {
		gotCmd = command
		return nil
	})
	require.NoError(t, m.ExecuteInput(b.ID, "/me waves"))
	assert.Equal(t, "/me waves", gotCmd)
}

func TestEvalLookupHData(t *testing.T) {
	m := NewMemory()
	b := m.CreateBuffer("server.#chan", "#chan", BufferFormatted)
	lookup := &EvalLookup{Host: m}

	name, ok := lookup.HData("buffer." + strconv.FormatInt(b.ID, 10) + ".name")
	require.True(t, ok)
	assert.Equal(t, "server.#chan", name)
}
