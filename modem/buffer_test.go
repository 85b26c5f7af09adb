package modem_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/wifigw/modem"
)

func TestResponseBuffer(t *testing.T) {
	t.Run("growth doubles and preserves content", func(t *testing.T) {
		buf, err := modem.NewResponseBuffer(4, 0)
		require.NoError(t, err)
		require.Equal(t, 4, buf.Cap())

		input := []byte("0123456789abcdefg")
		for i, c := range input {
			before := string(buf.Bytes())
			require.NoError(t, buf.WriteByte(c))

			assert.GreaterOrEqual(t, buf.Cap(), i+1)
			assert.Equal(t, before, string(buf.Bytes()[:i]), "bytes before index %d changed", i)
		}

		assert.Equal(t, input, buf.Bytes())
		assert.Equal(t, len(input), buf.Len())
		assert.Equal(t, 32, buf.Cap())
	})

	t.Run("default initial size", func(t *testing.T) {
		buf, err := modem.NewResponseBuffer(0, 0)
		require.NoError(t, err)
		assert.Equal(t, modem.DefaultInitialBufferSize, buf.Cap())
		assert.Zero(t, buf.Len())
	})

	t.Run("write grows across several doublings at once", func(t *testing.T) {
		buf, err := modem.NewResponseBuffer(2, 0)
		require.NoError(t, err)

		data := bytes.Repeat([]byte("x"), 100)
		n, err := buf.Write(data)
		require.NoError(t, err)
		assert.Equal(t, 100, n)
		assert.Equal(t, 128, buf.Cap())
		assert.Equal(t, data, buf.Bytes())
	})

	t.Run("capacity is clamped to the maximum", func(t *testing.T) {
		buf, err := modem.NewResponseBuffer(4, 6)
		require.NoError(t, err)

		n, err := buf.Write([]byte("abcdef"))
		require.NoError(t, err)
		assert.Equal(t, 6, n)
		assert.Equal(t, 6, buf.Cap())

		err = buf.WriteByte('g')
		require.ErrorIs(t, err, modem.ErrBufferAllocation)
		assert.Equal(t, []byte("abcdef"), buf.Bytes(), "content survives a failed growth")
	})

	t.Run("partial write reports bytes kept", func(t *testing.T) {
		buf, err := modem.NewResponseBuffer(2, 3)
		require.NoError(t, err)

		n, err := buf.Write([]byte("hello"))
		assert.ErrorIs(t, err, modem.ErrBufferAllocation)
		assert.Equal(t, 3, n)
		assert.Equal(t, []byte("hel"), buf.Bytes())
	})
}

func TestResponseBufferContainsAny(t *testing.T) {
	buf, err := modem.NewResponseBuffer(4, 0)
	require.NoError(t, err)

	tokens := [][]byte{[]byte("SEND OK"), []byte("ALREADY CONNECTED")}
	assert.False(t, buf.ContainsAny(tokens))

	_, _ = buf.Write([]byte("\r\nSEND "))
	assert.False(t, buf.ContainsAny(tokens))

	_, _ = buf.Write([]byte("OK\r\n"))
	assert.True(t, buf.ContainsAny(tokens))

	assert.False(t, buf.ContainsAny(nil), "no tokens never match")
	assert.False(t, buf.ContainsAny([][]byte{{}}), "empty tokens are ignored")
}
