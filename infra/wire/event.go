package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Event is one outbound feed record: a single execution, stamped with the
// engine sequence that produced it.
//
// Wire schema (all varint fields):
//
//	1 seq          uint64
//	2 incoming_id  uint64
//	3 matched_id   uint64
//	4 price        uint32
//	5 volume       uint64
//	6 unix_nanos   int64
type Event struct {
	Seq        uint64
	IncomingID uint64
	MatchedID  uint64
	Price      uint32
	Volume     uint64
	UnixNanos  int64
}

const (
	fieldSeq = 1 + iota
	fieldIncomingID
	fieldMatchedID
	fieldPrice
	fieldVolume
	fieldUnixNanos
)

// AppendEvent appends the wire encoding of e to buf and returns the
// extended slice.
func AppendEvent(buf []byte, e *Event) []byte {
	buf = protowire.AppendTag(buf, fieldSeq, protowire.VarintType)
	buf = protowire.AppendVarint(buf, e.Seq)
	buf = protowire.AppendTag(buf, fieldIncomingID, protowire.VarintType)
	buf = protowire.AppendVarint(buf, e.IncomingID)
	buf = protowire.AppendTag(buf, fieldMatchedID, protowire.VarintType)
	buf = protowire.AppendVarint(buf, e.MatchedID)
	buf = protowire.AppendTag(buf, fieldPrice, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(e.Price))
	buf = protowire.AppendTag(buf, fieldVolume, protowire.VarintType)
	buf = protowire.AppendVarint(buf, e.Volume)
	buf = protowire.AppendTag(buf, fieldUnixNanos, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(e.UnixNanos))
	return buf
}

// ParseEvent decodes one Event from data. Unknown fields are skipped so
// the schema can grow.
func ParseEvent(data []byte) (Event, error) {
	var e Event
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Event{}, fmt.Errorf("wire: bad tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		if typ != protowire.VarintType {
			skip := protowire.ConsumeFieldValue(num, typ, data)
			if skip < 0 {
				return Event{}, fmt.Errorf("wire: bad field %d: %w", num, protowire.ParseError(skip))
			}
			data = data[skip:]
			continue
		}

		v, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return Event{}, fmt.Errorf("wire: bad varint in field %d: %w", num, protowire.ParseError(n))
		}
		data = data[n:]

		switch num {
		case fieldSeq:
			e.Seq = v
		case fieldIncomingID:
			e.IncomingID = v
		case fieldMatchedID:
			e.MatchedID = v
		case fieldPrice:
			e.Price = uint32(v)
		case fieldVolume:
			e.Volume = v
		case fieldUnixNanos:
			e.UnixNanos = int64(v)
		}
	}
	return e, nil
}
