// Package testutil provides testing utilities for skyindex.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded RNG, record builders and a small fixture dataset.
//
// # Random Input
//
//	rng := testutil.NewRNG(seed)
//	flights := rng.ShuffledFlights(1000, 100) // ids 1..1000 in random order
//	ids := rng.Perm(500)
//
// # Fixture
//
//	ds := testutil.Fixture()
//
// Fixture holds two flights, three passengers and four reservations; flight 1
// has three reservations held by two distinct passengers.
package testutil
