package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/skyindex/model"
)

// DateLayout is accepted for timestamps that carry no time of day.
const DateLayout = "2006-01-02"

// ErrHeader is returned when a file's header row does not match its schema.
var ErrHeader = errors.New("dataset: unexpected header")

// ParseError locates a malformed or invalid record.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	FlightHeader      = []string{"id", "flight_number", "origin", "destination", "departure_time", "capacity"}
	PassengerHeader   = []string{"id", "name", "passport_number"}
	ReservationHeader = []string{"flight_id", "passenger_id", "booking_date", "seat_number"}
)

type schema[T interface{ Validate() error }] struct {
	header []string
	parse  func(row []string) (T, error)
	format func(v T) []string
}

var flightSchema = schema[model.Flight]{
	header: FlightHeader,
	parse: func(row []string) (model.Flight, error) {
		id, err := parseInt32("id", row[0])
		if err != nil {
			return model.Flight{}, err
		}
		dep, err := parseTime("departure_time", row[4])
		if err != nil {
			return model.Flight{}, err
		}
		capacity, err := parseInt32("capacity", row[5])
		if err != nil {
			return model.Flight{}, err
		}
		return model.Flight{
			ID:            id,
			FlightNumber:  row[1],
			Origin:        row[2],
			Destination:   row[3],
			DepartureTime: dep,
			Capacity:      capacity,
		}, nil
	},
	format: func(f model.Flight) []string {
		return []string{
			strconv.FormatInt(int64(f.ID), 10),
			f.FlightNumber,
			f.Origin,
			f.Destination,
			formatTime(f.DepartureTime),
			strconv.FormatInt(int64(f.Capacity), 10),
		}
	},
}

var passengerSchema = schema[model.Passenger]{
	header: PassengerHeader,
	parse: func(row []string) (model.Passenger, error) {
		id, err := parseInt32("id", row[0])
		if err != nil {
			return model.Passenger{}, err
		}
		return model.Passenger{ID: id, Name: row[1], PassportNumber: row[2]}, nil
	},
	format: func(p model.Passenger) []string {
		return []string{strconv.FormatInt(int64(p.ID), 10), p.Name, p.PassportNumber}
	},
}

var reservationSchema = schema[model.Reservation]{
	header: ReservationHeader,
	parse: func(row []string) (model.Reservation, error) {
		fid, err := parseInt32("flight_id", row[0])
		if err != nil {
			return model.Reservation{}, err
		}
		pid, err := parseInt32("passenger_id", row[1])
		if err != nil {
			return model.Reservation{}, err
		}
		booked, err := parseTime("booking_date", row[2])
		if err != nil {
			return model.Reservation{}, err
		}
		return model.Reservation{FlightID: fid, PassengerID: pid, BookingDate: booked, SeatNumber: row[3]}, nil
	},
	format: func(r model.Reservation) []string {
		return []string{
			strconv.FormatInt(int64(r.FlightID), 10),
			strconv.FormatInt(int64(r.PassengerID), 10),
			formatTime(r.BookingDate),
			r.SeatNumber,
		}
	},
}

// ReadFlights decodes a flights CSV. file names the source in errors.
func ReadFlights(r io.Reader, file string) ([]model.Flight, error) {
	return decode(r, file, flightSchema)
}

// ReadPassengers decodes a passengers CSV.
func ReadPassengers(r io.Reader, file string) ([]model.Passenger, error) {
	return decode(r, file, passengerSchema)
}

// ReadReservations decodes a reservations CSV.
func ReadReservations(r io.Reader, file string) ([]model.Reservation, error) {
	return decode(r, file, reservationSchema)
}

// WriteFlights encodes flights with a header row.
func WriteFlights(w io.Writer, flights []model.Flight) error {
	return encode(w, flightSchema, flights)
}

// WritePassengers encodes passengers with a header row.
func WritePassengers(w io.Writer, passengers []model.Passenger) error {
	return encode(w, passengerSchema, passengers)
}

// WriteReservations encodes reservations with a header row.
func WriteReservations(w io.Writer, reservations []model.Reservation) error {
	return encode(w, reservationSchema, reservations)
}

func decode[T interface{ Validate() error }](r io.Reader, file string, s schema[T]) ([]T, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = len(s.header)

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, csvError(file, err)
	}
	if !headerMatches(head, s.header) {
		return nil, &ParseError{File: file, Line: 1, Err: fmt.Errorf("%w: got %q, want %q", ErrHeader, strings.Join(head, ","), strings.Join(s.header, ","))}
	}

	var out []T
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, csvError(file, err)
		}
		line, _ := cr.FieldPos(0)
		v, err := s.parse(row)
		if err == nil {
			err = v.Validate()
		}
		if err != nil {
			return nil, &ParseError{File: file, Line: line, Err: err}
		}
		out = append(out, v)
	}
}

func encode[T interface{ Validate() error }](w io.Writer, s schema[T], records []T) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.header); err != nil {
		return err
	}
	for _, v := range records {
		if err := cw.Write(s.format(v)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvError(file string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{File: file, Line: pe.Line, Err: pe.Err}
	}
	return &ParseError{File: file, Err: err}
}

// headerMatches compares case-insensitively and ignores underscores, so
// camelCase headers ("flightNumber") are accepted as well.
func headerMatches(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	norm := func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	}
	for i := range want {
		if norm(got[i]) != norm(want[i]) {
			return false
		}
	}
	return true
}

func parseInt32(column, s string) (int32, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", column, err)
	}
	return int32(v), nil
}

func parseTime(column, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation(model.TimeLayout, s, time.UTC)
	if err == nil {
		return t, nil
	}
	if t, derr := time.ParseInLocation(DateLayout, s, time.UTC); derr == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("column %s: %w", column, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(model.TimeLayout)
}
