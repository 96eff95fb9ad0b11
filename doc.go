// Package simpool provides a discrete-event simulator of a parent
// coordinator managing a bounded pool of workers over a single shared
// mailbox and a set of handshake signals.
//
// The coordinator replays a timestamped command script to spawn workers,
// route randomly selected text lines to them as work items, and terminate
// them; each worker persists received items to its own journal and reports
// completion back through the shared acknowledgement signal.
//
// End-users typically interact with the simulator via the high-level
// Service façade exposed by this package:
//
//	srv := simpool.New(
//		simpool.WithScriptURL("config.txt"),
//		simpool.WithTextURL("lines.txt"),
//		simpool.WithCapacity(4),
//	)
//	result, err := srv.Runtime().Run(ctx)
//
// The service layers live in sub-packages: mailbox (the handshake
// exchange), worker (the per-worker loop), coordinator (the timestep loop
// and worker table), script and text (input collaborators), journal
// (per-worker artifacts) and event (the simulation event feed).
package simpool
