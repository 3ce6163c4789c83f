package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixed []int

func (f *fixed) Intn(n int) int {
	v := (*f)[0]
	*f = (*f)[1:]
	return v % n
}

func TestBetween_Inclusive(t *testing.T) {
	src := New(42)
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		v := Between(src, 4, 8)
		assert.GreaterOrEqual(t, v, 4)
		assert.LessOrEqual(t, v, 8)
		seen[v] = true
	}
	assert.Len(t, seen, 5, "every value in [4, 8] should appear")
}

func TestBetween_SwappedBounds(t *testing.T) {
	src := &fixed{0, 2}
	assert.Equal(t, 3, Between(src, 5, 3))
	assert.Equal(t, 5, Between(src, 5, 3))
}

func TestPick(t *testing.T) {
	src := &fixed{1}
	assert.Equal(t, "b", Pick(src, []string{"a", "b", "c"}))
}

func TestNew_SameSeedSameSequence(t *testing.T) {
	a, b := New(7), New(7)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}
