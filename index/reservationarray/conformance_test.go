package reservationarray

import (
	"testing"

	"github.com/hupe1980/skyindex/index"
	"github.com/hupe1980/skyindex/index/indextest"
)

func TestConformance(t *testing.T) {
	indextest.RunReservationIndex(t, func() index.ReservationIndex {
		return New(func(o *Options) { o.Growth.InitialCap = 4 })
	})
}
