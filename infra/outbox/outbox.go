// Package outbox persists outbound feed frames until the publisher has
// confirmed delivery. Records move NEW -> SENT -> ACKED; anything not yet
// ACKED is re-offered on the next publisher pass, giving the feed
// at-least-once delivery across restarts.
package outbox

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	default:
		return "UNKNOWN"
	}
}

// Record is one stored feed frame plus its delivery bookkeeping.
type Record struct {
	Seq         uint64
	State       State
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

// value encoding: [state:1][retries:4][lastAttempt:8][payload]
const headerLen = 1 + 4 + 8

func encodeValue(r *Record) []byte {
	buf := make([]byte, headerLen+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	copy(buf[headerLen:], r.Payload)
	return buf
}

func decodeValue(seq uint64, b []byte) (*Record, error) {
	if len(b) < headerLen {
		return nil, errors.New("outbox: record too short")
	}
	return &Record{
		Seq:         seq,
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     append([]byte(nil), b[headerLen:]...),
	}, nil
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

// Outbox is a pebble-backed store keyed by big-endian sequence, so
// iteration order is publish order.
type Outbox struct {
	db *pebble.DB
}

func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("outbox: open %s: %w", dir, err)
	}
	return &Outbox{db: db}, nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

// Put stores a fresh frame under seq in state NEW. The write is synced:
// a frame accepted here must survive a crash.
func (o *Outbox) Put(seq uint64, payload []byte) error {
	rec := Record{Seq: seq, State: StateNew, Payload: payload}
	return o.db.Set(seqKey(seq), encodeValue(&rec), pebble.Sync)
}

// ScanPending visits every non-ACKED record in sequence order. Returning
// an error from fn stops the scan.
func (o *Outbox) ScanPending(fn func(*Record) error) error {
	iter, err := o.db.NewIter(nil)
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq := binary.BigEndian.Uint64(iter.Key())
		rec, err := decodeValue(seq, iter.Value())
		if err != nil {
			return err
		}
		if rec.State == StateAcked {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// MarkSent transitions a record to SENT and bumps its attempt counter.
func (o *Outbox) MarkSent(seq uint64) error {
	return o.transition(seq, func(r *Record) {
		r.State = StateSent
		r.Retries++
		r.LastAttempt = time.Now().UnixNano()
	})
}

// MarkAcked transitions a record to ACKED.
func (o *Outbox) MarkAcked(seq uint64) error {
	return o.transition(seq, func(r *Record) {
		r.State = StateAcked
	})
}

func (o *Outbox) transition(seq uint64, mut func(*Record)) error {
	key := seqKey(seq)
	val, closer, err := o.db.Get(key)
	if err != nil {
		return fmt.Errorf("outbox: seq %d: %w", seq, err)
	}
	rec, err := decodeValue(seq, val)
	closer.Close()
	if err != nil {
		return err
	}
	mut(rec)
	return o.db.Set(key, encodeValue(rec), pebble.Sync)
}

// TruncateAcked deletes ACKED records with seq <= upTo.
func (o *Outbox) TruncateAcked(upTo uint64) error {
	iter, err := o.db.NewIter(nil)
	if err != nil {
		return err
	}
	defer iter.Close()

	batch := o.db.NewBatch()
	defer batch.Close()
	for iter.First(); iter.Valid(); iter.Next() {
		seq := binary.BigEndian.Uint64(iter.Key())
		if seq > upTo {
			break
		}
		if len(iter.Value()) >= 1 && State(iter.Value()[0]) == StateAcked {
			if err := batch.Delete(seqKey(seq), nil); err != nil {
				return err
			}
		}
	}
	if err := iter.Error(); err != nil {
		return err
	}
	return o.db.Apply(batch, pebble.Sync)
}
