package skyindex_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/skyindex"
	"github.com/hupe1980/skyindex/capacity"
	"github.com/hupe1980/skyindex/dataset"
	"github.com/hupe1980/skyindex/testutil"
)

// ExampleBuild demonstrates building both prototypes and running a lookup.
func ExampleBuild() {
	orch, err := skyindex.Build(context.Background(), testutil.Fixture())
	if err != nil {
		log.Fatal(err)
	}
	defer orch.Close()

	for _, r := range orch.Reports() {
		fmt.Printf("%s: %d flights, %d passengers, %d reservations\n",
			r.Prototype, r.Flights, r.Passengers, r.Reservations)
	}
	// Output:
	// baseline: 2 flights, 3 passengers, 4 reservations
	// optimized: 2 flights, 3 passengers, 4 reservations
}

// ExampleOrchestrator_Compare demonstrates dispatching one query to both engines.
func ExampleOrchestrator_Compare() {
	ctx := context.Background()
	orch, err := skyindex.Build(ctx, testutil.Fixture())
	if err != nil {
		log.Fatal(err)
	}
	defer orch.Close()

	c, err := orch.Compare(ctx, skyindex.CountUnique(1))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(c.Query, c.Baseline.Value, c.Optimized.Value, c.Agree)
	// Output: count_unique(1) 2 2 true
}

// ExampleEngine_PassengersOnFlight demonstrates the seat listing of a flight.
func ExampleEngine_PassengersOnFlight() {
	orch, err := skyindex.Build(context.Background(), testutil.Fixture())
	if err != nil {
		log.Fatal(err)
	}
	defer orch.Close()

	for _, b := range orch.Engine(skyindex.Optimized).PassengersOnFlight(1) {
		extra := ""
		if b.AdditionalSeat {
			extra = " (additional seat)"
		}
		fmt.Printf("%s %s%s\n", b.Reservation.SeatNumber, b.Passenger.Name, extra)
	}
	// Output:
	// 1A Ada Lovelace
	// 1B Ada Lovelace (additional seat)
	// 2A Grace Hopper
}

// ExampleEngine_Book demonstrates capacity admission.
func ExampleEngine_Book() {
	ctx := context.Background()
	orch, err := skyindex.Build(ctx, testutil.Fixture(), skyindex.WithValidation(capacity.AtMost))
	if err != nil {
		log.Fatal(err)
	}
	defer orch.Close()

	e := orch.Engine(skyindex.Optimized)
	fmt.Println(e.Book(ctx, testutil.Reservation(1, 3, "3A")) != nil)
	fmt.Println(e.Book(ctx, testutil.Reservation(2, 3, "5D")))
	// Output:
	// true
	// <nil>
}

// Example_generated demonstrates building from a generated dataset.
func Example_generated() {
	ds := dataset.Generate(dataset.Small, 42)

	orch, err := skyindex.Build(context.Background(), ds, skyindex.WithValidation(capacity.Exact))
	if err != nil {
		log.Fatal(err)
	}
	defer orch.Close()

	reports, err := orch.Engine(skyindex.Optimized).ValidateAll(context.Background())
	fmt.Println(len(reports), err)
	// Output: 0 <nil>
}
