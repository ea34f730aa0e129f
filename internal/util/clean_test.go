package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksBinary(t *testing.T) {
	assert.False(t, LooksBinary([]byte("version: 1\n")))
	assert.True(t, LooksBinary([]byte("abc\x00def")))
	assert.False(t, LooksBinary(nil))

	// Only the leading bytes are inspected.
	late := make([]byte, maxBinaryCheckBytes+10)
	for i := range late {
		late[i] = 'a'
	}
	late[len(late)-1] = 0
	assert.False(t, LooksBinary(late))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain", []byte("ai: [technology]"), "ai: [technology]"},
		{"bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("version: x")...), "version: x"},
		{"smart quotes", []byte("\u201Cai\u201D \u2013 it\u2019s"), "\"ai\" - it's"},
		{"nbsp", []byte("machine\u00a0learning"), "machine learning"},
		{"invalid utf8", []byte("ai\xff"), "ai\uFFFD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanText(tt.in, "test")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanText_RejectsBinary(t *testing.T) {
	_, err := CleanText([]byte("a\x00b"), "blob.bin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blob.bin")
}
