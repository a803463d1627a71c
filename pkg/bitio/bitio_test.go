package bitio

import "testing"

func TestReadBits_CrossesByteBoundary(t *testing.T) {
	// 0b10110100 0b11110000
	data := []byte{0xB4, 0xF0}
	r := NewReader(data)

	v, err := r.ReadBits(4)
	if err != nil || v != 0b1011 {
		t.Fatalf("first nibble: got %b, err %v", v, err)
	}

	v, err = r.ReadBits(6)
	if err != nil || v != 0b010011 {
		t.Fatalf("6-bit field: got %b, err %v", v, err)
	}

	v, err = r.ReadBits(6)
	if err != nil || v != 0b110000 {
		t.Fatalf("trailing 6 bits: got %b, err %v", v, err)
	}
}

func TestReadBits_RejectsOverrun(t *testing.T) {
	r := NewReader([]byte{0xFF})
	if _, err := r.ReadBits(9); err == nil {
		t.Fatal("expected error reading past end of buffer")
	}
}

func TestSkipBitsAndAlign(t *testing.T) {
	r := NewReader([]byte{0xFF, 0xAA, 0x55})
	if err := r.SkipBits(4); err != nil {
		t.Fatal(err)
	}
	r.AlignToByte()
	if r.BytePos() != 1 {
		t.Fatalf("expected byte pos 1, got %d", r.BytePos())
	}

	v, err := r.ReadBits(8)
	if err != nil || v != 0xAA {
		t.Fatalf("expected 0xAA, got %x, err %v", v, err)
	}
}

func TestBitsLeft(t *testing.T) {
	r := NewReader([]byte{0x00, 0x00})
	if r.BitsLeft() != 16 {
		t.Fatalf("expected 16, got %d", r.BitsLeft())
	}
	_, _ = r.ReadBits(10)
	if r.BitsLeft() != 6 {
		t.Fatalf("expected 6, got %d", r.BitsLeft())
	}
}
