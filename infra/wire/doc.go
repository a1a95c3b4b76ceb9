// Package wire defines the binary encoding of outbound feed events.
//
// Events are encoded as protobuf wire-format fields via the low-level
// protowire API rather than generated message types: the feed path has a
// fixed, small schema and a hand-rolled encoder keeps it reflection-free.
// Any protobuf consumer can decode the payload against the matching
// schema. On top of the payload sits a length+CRC frame so stored events
// are validated end to end, independent of the transport.
package wire
