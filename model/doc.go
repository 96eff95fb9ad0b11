// Package model contains the in-memory representation of a simulation
// script: the timestamped actions the coordinator replays and the validated
// plan that aggregates them. Scripts are typically loaded from a text file
// via the script service; the model package holds no I/O.
package model
