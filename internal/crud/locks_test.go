package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocks_For(t *testing.T) {
	l := NewLocks()
	a := l.For("farms")
	assert.Same(t, a, l.For("farms"))
	assert.NotSame(t, a, l.For("crops"))
	assert.NotSame(t, a, NewLocks().For("farms"))
}
