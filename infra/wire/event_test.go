package wire

import "testing"

func TestEventRoundTrip(t *testing.T) {
	in := Event{
		Seq:        7,
		IncomingID: 1001,
		MatchedID:  42,
		Price:      10050,
		Volume:     300,
		UnixNanos:  1700000000000000000,
	}

	frame := Frame(AppendEvent(nil, &in))
	payload, err := Unframe(frame)
	if err != nil {
		t.Fatalf("Unframe: %v", err)
	}
	out, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v != %+v", out, in)
	}
}

func TestUnframeRejectsCorruption(t *testing.T) {
	frame := Frame(AppendEvent(nil, &Event{Seq: 1, Volume: 5}))

	frame[5] ^= 0xff
	if _, err := Unframe(frame); err != ErrFrameChecksum {
		t.Fatalf("corrupted frame: err = %v, want checksum mismatch", err)
	}

	if _, err := Unframe(frame[:6]); err != ErrFrameTruncated {
		t.Fatalf("short frame: err = %v, want truncated", err)
	}
}
