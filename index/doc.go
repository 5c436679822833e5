// Package index defines the flight, passenger and reservation index contracts
// and the logic shared by their implementations.
//
// Each contract has a baseline and an optimized implementation:
//
//   - FlightIndex: flightbst (unbalanced BST) and flightavl (AVL tree)
//   - PassengerIndex: passengerlist (sorted linked list) and passengerhash (chained hash table)
//   - ReservationIndex: reservationarray (dynamic array) and reservationbst (composite-key BST)
//
// Both implementations of a contract return identical results for identical
// input, so they can be benchmarked against each other.
//
// # Upsert Semantics
//
// Inserting a record whose key already exists replaces the stored value.
// Len never counts a key twice.
//
// # Capacity
//
// ReservationIndex.AddWithValidation enforces that a flight's unique passenger
// count never exceeds its capacity. A passenger already on the flight may
// always book an additional seat. See Admit.
//
// # Concurrency
//
// Indexes are single-threaded. Callers must not share one across goroutines
// without external synchronization.
package index
