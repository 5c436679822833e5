package dataset

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/skyindex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFlights(t *testing.T) {
	in := "id,flight_number,origin,destination,departure_time,capacity\n" +
		"1000,AA101,New York,London,2025-03-01 08:30:00,180\n" +
		"1001,\"BA 7\",\"Paris, Orly\",Rome,2025-03-02 12:00:00,0\n"

	flights, err := ReadFlights(strings.NewReader(in), "flights.csv")
	require.NoError(t, err)
	require.Len(t, flights, 2)

	assert.Equal(t, model.Flight{
		ID:            1000,
		FlightNumber:  "AA101",
		Origin:        "New York",
		Destination:   "London",
		DepartureTime: time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC),
		Capacity:      180,
	}, flights[0])
	assert.Equal(t, "Paris, Orly", flights[1].Origin)
	assert.Zero(t, flights[1].Capacity)
}

func TestReadPassengersAndReservations(t *testing.T) {
	passengers, err := ReadPassengers(strings.NewReader(
		"id,name,passport_number\n2000,Ada Smith,AB123456\n2001,Grace Lee,CD654321\n"), "passengers.csv")
	require.NoError(t, err)
	assert.Equal(t, []model.Passenger{
		{ID: 2000, Name: "Ada Smith", PassportNumber: "AB123456"},
		{ID: 2001, Name: "Grace Lee", PassportNumber: "CD654321"},
	}, passengers)

	reservations, err := ReadReservations(strings.NewReader(
		"flight_id,passenger_id,booking_date,seat_number\n1000,2000,2024-12-24 10:00:00,12A\n1000,2001,2024-12-25,12B\n"), "reservations.csv")
	require.NoError(t, err)
	require.Len(t, reservations, 2)
	assert.Equal(t, time.Date(2024, 12, 24, 10, 0, 0, 0, time.UTC), reservations[0].BookingDate)
	assert.Equal(t, time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), reservations[1].BookingDate, "date-only timestamps")
	assert.Equal(t, "12B", reservations[1].SeatNumber)
}

func TestRead_CamelCaseHeader(t *testing.T) {
	in := "flightId,passengerId,bookingDate,seatNumber\n1000,2000,2024-12-24,1A\n"
	reservations, err := ReadReservations(strings.NewReader(in), "reservations.csv")
	require.NoError(t, err)
	require.Len(t, reservations, 1)
}

func TestRead_Empty(t *testing.T) {
	flights, err := ReadFlights(strings.NewReader(""), "flights.csv")
	require.NoError(t, err)
	assert.Empty(t, flights)

	flights, err = ReadFlights(strings.NewReader("id,flight_number,origin,destination,departure_time,capacity\n"), "flights.csv")
	require.NoError(t, err)
	assert.Empty(t, flights)
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		line    int
		wantErr error
		contain string
	}{
		{
			name:    "WrongHeader",
			in:      "id,full_name,passport_number\n",
			line:    1,
			wantErr: ErrHeader,
		},
		{
			name:    "BadID",
			in:      "id,name,passport_number\n2000,Ada,AB1\nx,Bob,CD2\n",
			line:    3,
			contain: "column id",
		},
		{
			name:    "IDOverflow",
			in:      "id,name,passport_number\n99999999999,Ada,AB1\n",
			line:    2,
			wantErr: strconv.ErrRange,
		},
		{
			name:    "FieldCount",
			in:      "id,name,passport_number\n2000,Ada\n",
			line:    2,
			contain: "wrong number of fields",
		},
		{
			name:    "NameTooLong",
			in:      "id,name,passport_number\n2000," + strings.Repeat("a", model.MaxPassengerNameLen+1) + ",AB1\n",
			line:    2,
			contain: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadPassengers(strings.NewReader(tt.in), "passengers.csv")
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, "passengers.csv", pe.File)
			assert.Equal(t, tt.line, pe.Line)
			assert.Contains(t, err.Error(), "passengers.csv:"+strconv.Itoa(tt.line))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.contain != "" {
				assert.Contains(t, err.Error(), tt.contain)
			}
		})
	}
}

func TestRead_BadTimestamp(t *testing.T) {
	in := "id,flight_number,origin,destination,departure_time,capacity\n1000,AA1,A,B,01/03/2025,10\n"
	_, err := ReadFlights(strings.NewReader(in), "flights.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column departure_time")
}

func TestWriteRead(t *testing.T) {
	ds := Generate(Small, 7)

	var buf bytes.Buffer
	require.NoError(t, WriteFlights(&buf, ds.Flights))
	assert.True(t, strings.HasPrefix(buf.String(), strings.Join(FlightHeader, ",")+"\n"))

	flights, err := ReadFlights(&buf, "flights.csv")
	require.NoError(t, err)
	assert.Equal(t, ds.Flights, flights)

	buf.Reset()
	require.NoError(t, WriteReservations(&buf, ds.Reservations))
	reservations, err := ReadReservations(&buf, "reservations.csv")
	require.NoError(t, err)
	assert.Equal(t, ds.Reservations, reservations)
}
