package mem

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRead(t *testing.T) {
	u := Read()
	assert.Positive(t, u.HeapSys)

	rss, ok := PeakRSS()
	if runtime.GOOS == "windows" {
		assert.False(t, ok)
		return
	}
	assert.True(t, ok)
	assert.Positive(t, rss)
	assert.GreaterOrEqual(t, rss, u.PeakRSS)
}
