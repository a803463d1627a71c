package audio

import (
	"testing"

	"github.com/openedi/dabcore/pkg/crc16"
)

const testFrameSize = 24

// buildSuperframeFrames constructs 5 logical frames of testFrameSize
// bytes each, encoding a valid DAB+ header (48kHz, SBR, stereo, no PS
// -> 3 AUs) with a firecode over the first frame and CRC-valid AUs.
func buildSuperframeFrames(t *testing.T) [][]byte {
	t.Helper()
	total := testFrameSize * 5

	// Layout: 2 firecode bytes (filled in below), then the header
	// dac_rate=1 sbr=1 channel_mode=1 ps=0 mpeg_surround=000 and 2 AU
	// pointers (12 bits each) padded to a byte boundary -> 4 bytes. The
	// AUs run up to the trailing 10*numAUs RS parity bytes:
	// 2 + 4 + 3*28 + 30 = 120 = 5*testFrameSize.
	const numAUs = 3
	auPayloadLen := 24
	auLen := auPayloadLen + 2 /*crc*/ + xpadTailBytesPerAU

	ptr1 := auLen
	ptr2 := auLen * 2
	hw := &bitWriter{}
	hw.writeBits(1, 1) // dac_rate=1 (48kHz)
	hw.writeBits(1, 1) // sbr_flag=1
	hw.writeBits(1, 1) // aac_channel_mode=1 (stereo)
	hw.writeBits(0, 1) // ps_flag=0
	hw.writeBits(0, 3) // mpeg_surround_config
	hw.writeBits(uint32(ptr1), 12)
	hw.writeBits(uint32(ptr2), 12)
	header := hw.bytes() // bytes() pads the trailing partial byte with zeros

	body := make([]byte, 0, total)
	body = append(body, 0x00, 0x00) // firecode, filled in below
	body = append(body, header...)
	for i := 0; i < numAUs; i++ {
		payload := make([]byte, auPayloadLen)
		for b := range payload {
			payload[b] = byte(i*10 + b)
		}
		au := crc16.Append(payload)
		au = append(au, 0xAA, 0xBB) // xpad tail
		body = append(body, au...)
	}

	rsParity := make([]byte, 10*numAUs)
	body = append(body, rsParity...)

	for len(body) < total {
		body = append(body, 0x00)
	}
	if len(body) > total {
		t.Fatalf("constructed superframe body overflow: %d > %d", len(body), total)
	}

	firecoded := crc16.Calculate(body[2:11])
	body[0] = byte(firecoded >> 8)
	body[1] = byte(firecoded)

	frames := make([][]byte, 5)
	for i := range frames {
		frames[i] = body[i*testFrameSize : (i+1)*testFrameSize]
	}
	return frames
}

func TestAssembler_LocksAndEmitsSegment(t *testing.T) {
	a := NewAssembler(5, testFrameSize/8, 64, nil)
	frames := buildSuperframeFrames(t)

	var seg *AacSegment
	for _, f := range frames {
		s, ok := a.PushFrame(f)
		if ok {
			seg = s
		}
	}

	if seg == nil {
		t.Fatal("expected a completed AacSegment after 5 frames")
	}
	if len(seg.Frames) != int(seg.Format.AUCount) {
		t.Fatalf("frames.len()=%d != au_count=%d", len(seg.Frames), seg.Format.AUCount)
	}
	if seg.Format.SamplerateKHz != 48 || seg.Format.Channels != 2 || !seg.Format.SBR {
		t.Fatalf("unexpected format: %+v", seg.Format)
	}
	for i, frame := range seg.Frames {
		if len(frame) != 24 {
			t.Fatalf("AU %d: expected 24 decoded bytes, got %d", i, len(frame))
		}
	}
}

func TestAssembler_HuntsBeforeFirecode(t *testing.T) {
	a := NewAssembler(5, testFrameSize/8, 64, nil)
	garbage := make([]byte, testFrameSize)
	for i := 0; i < 4; i++ {
		if _, ok := a.PushFrame(garbage); ok {
			t.Fatal("should not lock on garbage frames")
		}
	}
	if a.state != stateHunting {
		t.Fatalf("expected still hunting, got state %v", a.state)
	}
}

func TestAssembler_BadAUCRCYieldsZeroLengthFrame(t *testing.T) {
	a := NewAssembler(5, testFrameSize/8, 64, nil)
	frames := buildSuperframeFrames(t)
	// Corrupt a byte inside AU0's payload (but outside the firecode's
	// protected range, bytes 2-10) without fixing its CRC.
	frames[0][12] ^= 0xFF

	var seg *AacSegment
	for _, f := range frames {
		if s, ok := a.PushFrame(f); ok {
			seg = s
		}
	}
	if seg == nil {
		t.Fatal("expected a segment even with one bad AU")
	}
	if len(seg.Frames[0]) != 0 {
		t.Fatalf("expected zero-length frame for bad CRC AU, got %d bytes", len(seg.Frames[0]))
	}
	if len(seg.Frames) != 3 {
		t.Fatalf("expected 3 positional frame entries, got %d", len(seg.Frames))
	}
}

func TestAssembler_ForceHuntingDiscardsPartialSuperframe(t *testing.T) {
	a := NewAssembler(5, testFrameSize/8, 64, nil)
	frames := buildSuperframeFrames(t)
	a.PushFrame(frames[0])
	a.PushFrame(frames[1])
	a.ForceHunting()

	if a.state != stateHunting || len(a.frames) != 0 {
		t.Fatal("expected ForceHunting to reset to Hunting with no partial frames")
	}
}
