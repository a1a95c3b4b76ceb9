// Package service wires the matching core to its collaborators: the
// sequencer and the trade outbox. It is the only write entry point into
// the engine; transports and harnesses go through it or, for raw
// benchmarks, straight to the Book.
package service
