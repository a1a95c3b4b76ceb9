package outbox

import (
	"bytes"
	"testing"
)

func openTest(t *testing.T) *Outbox {
	t.Helper()
	o, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { o.Close() })
	return o
}

func pendingSeqs(t *testing.T, o *Outbox) []uint64 {
	t.Helper()
	var seqs []uint64
	err := o.ScanPending(func(r *Record) error {
		seqs = append(seqs, r.Seq)
		return nil
	})
	if err != nil {
		t.Fatalf("ScanPending: %v", err)
	}
	return seqs
}

func TestOutboxPutScan(t *testing.T) {
	o := openTest(t)

	for seq := uint64(1); seq <= 3; seq++ {
		if err := o.Put(seq, []byte{byte(seq)}); err != nil {
			t.Fatalf("Put(%d): %v", seq, err)
		}
	}

	var got []*Record
	if err := o.ScanPending(func(r *Record) error {
		got = append(got, r)
		return nil
	}); err != nil {
		t.Fatalf("ScanPending: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("pending=%d, want 3", len(got))
	}
	for i, r := range got {
		if r.Seq != uint64(i+1) {
			t.Fatalf("scan out of order: %v", got)
		}
		if r.State != StateNew {
			t.Fatalf("seq %d state = %v, want NEW", r.Seq, r.State)
		}
		if !bytes.Equal(r.Payload, []byte{byte(r.Seq)}) {
			t.Fatalf("seq %d payload mangled", r.Seq)
		}
	}
}

func TestOutboxStateTransitions(t *testing.T) {
	o := openTest(t)
	if err := o.Put(1, []byte("x")); err != nil {
		t.Fatal(err)
	}

	if err := o.MarkSent(1); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	// SENT but not ACKED is still pending: it must be re-offered.
	if seqs := pendingSeqs(t, o); len(seqs) != 1 {
		t.Fatalf("pending after MarkSent = %v, want [1]", seqs)
	}

	if err := o.MarkAcked(1); err != nil {
		t.Fatalf("MarkAcked: %v", err)
	}
	if seqs := pendingSeqs(t, o); len(seqs) != 0 {
		t.Fatalf("pending after MarkAcked = %v, want none", seqs)
	}
}

func TestOutboxRetriesCount(t *testing.T) {
	o := openTest(t)
	if err := o.Put(1, []byte("x")); err != nil {
		t.Fatal(err)
	}
	o.MarkSent(1)
	o.MarkSent(1)

	var rec *Record
	o.ScanPending(func(r *Record) error {
		rec = r
		return nil
	})
	if rec == nil || rec.Retries != 2 {
		t.Fatalf("retries = %+v, want 2", rec)
	}
	if rec.LastAttempt == 0 {
		t.Fatal("LastAttempt not stamped")
	}
}

func TestOutboxTruncateAcked(t *testing.T) {
	o := openTest(t)
	for seq := uint64(1); seq <= 4; seq++ {
		o.Put(seq, []byte("x"))
	}
	o.MarkSent(1)
	o.MarkAcked(1)
	o.MarkSent(2)
	o.MarkAcked(2)

	// Seq 3 is not acked; truncation must leave it alone even though it
	// is within range.
	if err := o.TruncateAcked(3); err != nil {
		t.Fatalf("TruncateAcked: %v", err)
	}

	seqs := pendingSeqs(t, o)
	if len(seqs) != 2 || seqs[0] != 3 || seqs[1] != 4 {
		t.Fatalf("pending after truncate = %v, want [3 4]", seqs)
	}
}

func TestOutboxSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	o, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	o.Put(1, []byte("durable"))
	o.MarkSent(1)
	if err := o.Close(); err != nil {
		t.Fatal(err)
	}

	o2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer o2.Close()

	var rec *Record
	o2.ScanPending(func(r *Record) error {
		rec = r
		return nil
	})
	if rec == nil || rec.State != StateSent || string(rec.Payload) != "durable" {
		t.Fatalf("record lost across reopen: %+v", rec)
	}
}
