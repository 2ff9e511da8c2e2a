package hashtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapSetGetRemove(t *testing.T) {
	m := New[string, int](nil)
	m.Set("a", 1)
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	m.Remove("a")
	_, ok = m.Get("a")
	assert.False(t, ok)
}

func TestMapDestroyInvokesOnFree(t *testing.T) {
	var freed []string
	m := New[string, int](func(k string, v int) {
		freed = append(freed, k)
	})
	m.Set("a", 1)
	m.Set("b", 2)
	m.Destroy()
	assert.ElementsMatch(t, []string{"a", "b"}, freed)
	assert.Equal(t, 0, m.Len())
}

func TestMapAtMostOneItemPerKey(t *testing.T) {
	m := New[string, int](nil)
	m.Set("a", 1)
	m.Set("a", 2)
	assert.Equal(t, 1, m.Len())
	v, _ := m.Get("a")
	assert.Equal(t, 2, v)
}
