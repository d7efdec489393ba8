package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type voice struct {
	Note     int     `json:"note"`
	Velocity float32 `json:"velocity"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}
	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecs_Interchangeable(t *testing.T) {
	in := []voice{{Note: 60, Velocity: 0.5}, {Note: 64, Velocity: 1}}

	std := MustMarshal(JSON{}, in)
	fast := MustMarshal(GoJSON{}, in)
	assert.JSONEq(t, string(std), string(fast))

	var out []voice
	require.NoError(t, GoJSON{}.Unmarshal(std, &out))
	assert.Equal(t, in, out)
}

func TestMustMarshal_Panics(t *testing.T) {
	assert.Panics(t, func() { MustMarshal(JSON{}, make(chan int)) })
}
