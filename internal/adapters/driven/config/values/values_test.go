package values

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "groq", String("groq"))
	assert.Empty(t, String(3))
	assert.Empty(t, String(nil))
}

func TestInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{42, 42},
		{int64(500), 500},
		{float64(3.9), 3},
		{" 12 ", 12},
		{"twelve", 0},
		{true, 0},
		{nil, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Int(tt.in), "Int(%#v)", tt.in)
	}
}

func TestBool(t *testing.T) {
	assert.True(t, Bool(true))
	assert.True(t, Bool("true"))
	assert.True(t, Bool("1"))
	assert.False(t, Bool("nope"))
	assert.False(t, Bool(1))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 30*time.Second, Duration("30s"))
	assert.Equal(t, 2*time.Minute, Duration(2*time.Minute))
	assert.Equal(t, 20*time.Second, Duration(int64(20)))
	assert.Equal(t, 5*time.Second, Duration(5))
	assert.Zero(t, Duration("soon"))
	assert.Zero(t, Duration(nil))
}
