package model

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationKey_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b ReservationKey
		want int
	}{
		{"equal", ReservationKey{1, 2, "1A"}, ReservationKey{1, 2, "1A"}, 0},
		{"flight first", ReservationKey{1, 9, "9Z"}, ReservationKey{2, 1, "1A"}, -1},
		{"passenger second", ReservationKey{1, 3, "1A"}, ReservationKey{1, 2, "9Z"}, 1},
		{"seat lexicographic", ReservationKey{1, 2, "10A"}, ReservationKey{1, 2, "9A"}, -1},
		{"negative ids", ReservationKey{-5, 0, ""}, ReservationKey{0, 0, ""}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
			assert.Equal(t, -tt.want, tt.b.Compare(tt.a))
		})
	}
}

func TestCompareReservations_Sort(t *testing.T) {
	rs := []Reservation{
		{FlightID: 2, PassengerID: 1, SeatNumber: "1A"},
		{FlightID: 1, PassengerID: 2, SeatNumber: "2A"},
		{FlightID: 1, PassengerID: 1, SeatNumber: "1B"},
		{FlightID: 1, PassengerID: 1, SeatNumber: "1A"},
	}
	slices.SortFunc(rs, CompareReservations)

	assert.Equal(t, ReservationKey{1, 1, "1A"}, rs[0].Key())
	assert.Equal(t, ReservationKey{1, 1, "1B"}, rs[1].Key())
	assert.Equal(t, ReservationKey{1, 2, "2A"}, rs[2].Key())
	assert.Equal(t, ReservationKey{2, 1, "1A"}, rs[3].Key())
}

func TestValidate_FieldLimits(t *testing.T) {
	require.NoError(t, Flight{FlightNumber: "AA100", Capacity: 10}.Validate())

	err := Flight{FlightNumber: strings.Repeat("X", MaxFlightNumberLen+1)}.Validate()
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "flight_number", fe.Field)

	assert.Error(t, Flight{Capacity: -1}.Validate())
	assert.Error(t, Passenger{Name: strings.Repeat("n", MaxPassengerNameLen+1)}.Validate())
	assert.Error(t, Reservation{SeatNumber: "12345678901"}.Validate())
	assert.NoError(t, Reservation{SeatNumber: "12A"}.Validate())
}

func TestDataset_Validate(t *testing.T) {
	ds := Dataset{
		Flights:      []Flight{{ID: 1, Capacity: 1}},
		Passengers:   []Passenger{{ID: 1}, {ID: 2, PassportNumber: strings.Repeat("9", 21)}},
		Reservations: []Reservation{{FlightID: 1, PassengerID: 1, SeatNumber: "1A"}},
	}
	err := ds.Validate()
	var re *RecordError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "passenger", re.Kind)
	assert.Equal(t, 1, re.Index)

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "passport_number", fe.Field)

	ds.Passengers = ds.Passengers[:1]
	require.NoError(t, ds.Validate())
}
