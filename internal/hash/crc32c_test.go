package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C(t *testing.T) {
	// Standard check value for CRC-32C.
	assert.Equal(t, uint32(0xE3069283), CRC32C([]byte("123456789")))
	assert.Zero(t, CRC32C(nil))
}

func TestNewCRC32C_Streaming(t *testing.T) {
	h := NewCRC32C()
	_, _ = h.Write([]byte("12345"))
	_, _ = h.Write([]byte("6789"))
	assert.Equal(t, CRC32C([]byte("123456789")), h.Sum32())
}
