package crc16

import "testing"

func TestAppendAndValidate_RoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x00},
		[]byte("DIG D04 - WS"),
		{0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	}

	for _, p := range payloads {
		framed := Append(append([]byte(nil), p...))
		if !Validate(framed) {
			t.Errorf("Validate failed for payload %v (framed %v)", p, framed)
		}
	}
}

func TestValidate_DetectsCorruption(t *testing.T) {
	framed := Append([]byte("hello world"))
	framed[0] ^= 0xFF

	if Validate(framed) {
		t.Fatal("expected Validate to reject corrupted data")
	}
}

func TestValidate_TooShort(t *testing.T) {
	if Validate([]byte{0x01}) {
		t.Fatal("expected Validate to reject buffers shorter than 2 bytes")
	}
}
