package intern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetReturnsSamePointerForEqualContent(t *testing.T) {
	a := Get("hello")
	b := Get("hello")
	assert.Same(t, a, b)
	assert.Equal(t, "hello", a.String())
	Free(a)
	Free(b)
}

func TestFreeRemovesOnZeroRefcount(t *testing.T) {
	before := Len()
	h := Get("unique-intern-test-value")
	assert.Equal(t, before+1, Len())
	Free(h)
	assert.Equal(t, before, Len())
}

func TestDistinctContentGetsDistinctHandles(t *testing.T) {
	a := Get("foo")
	b := Get("bar")
	assert.NotSame(t, a, b)
	Free(a)
	Free(b)
}
