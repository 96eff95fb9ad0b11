package coordinator

// WorkerReport summarises one worker's lifetime, recorded at reap time.
type WorkerReport struct {
	Label        string
	WorkerID     string
	Slot         int
	ActivatedAt  int
	TerminatedAt int
	Lines        int

	// Err is non-nil when the worker exited abnormally (panic, journal or
	// handshake failure) rather than through a clean termination handshake.
	Err error
}

// ActiveFor returns the worker's active duration in timesteps.
func (r WorkerReport) ActiveFor() int {
	return r.TerminatedAt - r.ActivatedAt
}

// Result summarises a completed simulation run.
type Result struct {
	// Timesteps is the number of iterated timesteps (halt inclusive).
	Timesteps int

	// Deliveries counts work items delivered and acknowledged.
	Deliveries int

	// Workers lists every reaped worker in termination order.
	Workers []WorkerReport
}
