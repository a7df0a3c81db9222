// Package lib provides a Go SDK to project the progress towards the terminal
// total difficulty (TTD) programmatically.
//
// This package allows applications to import historical progress series and
// merge estimates, and to generate projections, without shelling out to the
// ttdproj CLI binary.
//
// # Quick Start
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.ImportProgress(ctx, "/data/progress.yaml")
//	client.ImportEstimate(ctx, "/data/estimate.json")
//
//	proj, err := client.Project(ctx, &lib.ProjectOpts{IncludeTarget: true})
//	for _, p := range proj.Projected {
//	    fmt.Printf("%s %.4f%%\n", p.Timestamp, p.Percent)
//	}
//
// # Pure projections
//
// [GenerateProjection] doesn't need a client nor storage, it projects a single
// observed point up to a target:
//
//	points, err := lib.GenerateProjection(lib.ProgressPoint{Timestamp: last, Percent: 97.5}, target)
//
// Points are one minute apart, start on the first minute boundary after the
// observation and stop before the target. The 100% point at the target is only
// included by [Client.Project] when [ProjectOpts].IncludeTarget is set.
//
// # Watching
//
// [Client.Watch] polls the storage and calls a handler every time the projection
// changes, it blocks until the context is cancelled.
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: There is no progress or estimate stored yet.
//   - [ErrAlreadyExists]: The snapshot or estimate is already stored.
//   - [ErrNotValid]: Invalid input (e.g. a malformed timestamp or difficulty).
//   - [ErrInvalidState]: The stored data can't be projected (e.g. an empty series).
//
// # Testing
//
// Use [StorageMemory] to write tests without a database:
//
//	client, _ := lib.New(ctx, lib.Config{Storage: lib.StorageMemory})
//	defer client.Close()
//
// # Thread Safety
//
// A [Client] is safe for concurrent use from multiple goroutines.
package lib
