// Package model defines the record types shared by every skyindex backend.
//
// # Identity
//
//   - Flight: keyed by ID
//   - Passenger: keyed by ID
//   - Reservation: keyed by ReservationKey (FlightID, PassengerID, SeatNumber)
//
// Records are plain values. Indexes copy them on insert and never retain
// pointers into caller memory.
//
// # Field Limits
//
// String fields have upper bounds (MaxFlightNumberLen and friends). Validate
// reports violations as *FieldError; indexes never truncate.
package model
