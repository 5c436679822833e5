package passengerlist

import (
	"testing"

	"github.com/hupe1980/skyindex/index"
	"github.com/hupe1980/skyindex/index/indextest"
)

func TestConformance(t *testing.T) {
	indextest.RunPassengerIndex(t, func() index.PassengerIndex { return New() })
}
