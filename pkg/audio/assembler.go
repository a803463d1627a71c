package audio

import (
	"github.com/openedi/dabcore/pkg/bitio"
	"github.com/openedi/dabcore/pkg/crc16"
)

type lockState int

const (
	stateHunting lockState = iota
	stateSyncing
	stateLocked
)

// Telemetry receives the counters the superframe assembler raises.
type Telemetry interface {
	AUCRCBad()
	Oversize()
}

const (
	superframeFrameCount = 5
	maxSuperframeBytes   = 2880
	xpadTailBytesPerAU   = 2 // X-PAD tail bytes taken from the end of each AU
)

// Assembler locks onto DAB+ superframe boundaries for one subchannel
// and emits one AacSegment per complete superframe (spec.md §4.7).
type Assembler struct {
	subChID     uint8
	frameSize   int
	bitrateKbps uint16
	telemetry   Telemetry

	state      lockState
	frames     [][]byte
	badStrikes int
}

// NewAssembler creates an assembler for a subchannel whose logical
// frame size is sizeCU*8 bytes (spec.md §4.7: "Each logical frame is a
// fixed-size byte block whose size equals the subchannel CU size × 8").
func NewAssembler(subChID uint8, sizeCU uint16, bitrateKbps uint16, tel Telemetry) *Assembler {
	return &Assembler{
		subChID:     subChID,
		frameSize:   int(sizeCU) * 8,
		bitrateKbps: bitrateKbps,
		telemetry:   tel,
	}
}

// ForceHunting drops any in-progress superframe and returns to Hunting,
// as the AF layer's lost-frame indication requires.
func (a *Assembler) ForceHunting() {
	a.state = stateHunting
	a.frames = nil
	a.badStrikes = 0
}

// PushFrame feeds one logical frame (frameSize bytes) for this
// subchannel, returning a completed AacSegment once every 5th frame of
// a locked superframe arrives.
func (a *Assembler) PushFrame(frame []byte) (*AacSegment, bool) {
	if a.frameSize <= 0 || len(frame) != a.frameSize {
		return nil, false
	}

	if len(a.frames) == 0 {
		if !firecodeValid(frame) {
			if a.state != stateHunting {
				a.badStrikes++
				if a.badStrikes >= 2 {
					a.state = stateHunting
					a.badStrikes = 0
				}
			}
			return nil, false
		}
		a.badStrikes = 0
		a.frames = append(a.frames, frame)
		if a.state == stateHunting {
			a.state = stateSyncing
		}
		return nil, false
	}

	a.frames = append(a.frames, frame)
	if len(a.frames) < superframeFrameCount {
		return nil, false
	}

	superframe := make([]byte, 0, maxSuperframeBytes)
	for _, f := range a.frames {
		superframe = append(superframe, f...)
	}
	a.frames = a.frames[:0]
	if a.state == stateSyncing {
		a.state = stateLocked
	}

	seg := a.parseSuperframe(superframe)
	if seg == nil {
		return nil, false
	}
	seg.SCId = a.subChID
	return seg, true
}

// firecodeValid checks the firecode CRC at a logical frame's first 2
// bytes against the CRC16-CCITT of the following 9 bytes (ETSI TS
// 102 563 §5.2).
func firecodeValid(frame []byte) bool {
	if len(frame) < 11 {
		return false
	}
	got := uint16(frame[0])<<8 | uint16(frame[1])
	return got == crc16.Calculate(frame[2:11])
}

func (a *Assembler) parseSuperframe(sf []byte) *AacSegment {
	if len(sf) > maxSuperframeBytes {
		if a.telemetry != nil {
			a.telemetry.Oversize()
		}
		return nil
	}

	r := bitio.NewReader(sf)
	_ = r.SkipBits(16) // header_firecode, already checked by firecodeValid
	dacRate, _ := r.ReadBit()
	sbrFlag, _ := r.ReadBit()
	channelMode, _ := r.ReadBit()
	psFlag, _ := r.ReadBit()
	_, _ = r.ReadBits(3) // mpeg_surround_config: recorded nowhere, unused

	outputRateHz := 32000
	if dacRate {
		outputRateHz = 48000
	}
	numAUs := numAUsFor(dacRate, sbrFlag)

	pointers := make([]int, 0, numAUs-1)
	for i := 0; i < numAUs-1; i++ {
		v, err := r.ReadBits(12)
		if err != nil {
			return nil
		}
		pointers = append(pointers, int(v))
	}
	r.AlignToByte()
	headerEnd := r.BytePos()

	// The last AU's end is the superframe length minus the trailing
	// Reed-Solomon parity block (10 bytes per AU), which this core
	// strips without using for error recovery (spec.md §4.7 step 4).
	payloadEnd := len(sf) - 10*numAUs
	if payloadEnd < headerEnd {
		payloadEnd = headerEnd
	}

	bounds := make([]int, 0, numAUs+1)
	bounds = append(bounds, headerEnd)
	for _, p := range pointers {
		bounds = append(bounds, headerEnd+p)
	}
	bounds = append(bounds, payloadEnd)

	frames := make([][]byte, 0, numAUs)
	xpad := make([][]byte, 0, numAUs)
	for i := 0; i < numAUs; i++ {
		start, end := bounds[i], bounds[i+1]
		if start < 0 || end > len(sf) || start > end {
			frames = append(frames, nil)
			xpad = append(xpad, nil)
			continue
		}
		au := sf[start:end]
		audioBytes, xpadBytes := splitXPAD(au)
		if !crc16.Validate(audioBytes) {
			if a.telemetry != nil {
				a.telemetry.AUCRCBad()
			}
			frames = append(frames, nil)
		} else {
			frames = append(frames, audioBytes[:len(audioBytes)-2])
		}
		xpad = append(xpad, xpadBytes)
	}

	channelConfig := channelConfigFor(channelMode)
	asc := buildASC(outputRateHz, sbrFlag, psFlag, channelConfig)

	channels := uint8(1)
	if channelMode {
		channels = 2
	}

	format := AudioFormat{
		SBR: sbrFlag, PS: psFlag, Codec: codecName(sbrFlag, psFlag),
		SamplerateKHz: uint16(outputRateHz / 1000), BitrateKbps: a.bitrateKbps,
		AUCount: uint8(numAUs), Channels: channels, ASC: asc,
	}

	return &AacSegment{Format: format, Frames: frames, XPAD: xpad}
}

// splitXPAD separates an AU's trailing xpadTailBytesPerAU X-PAD bytes
// from its audio+CRC payload.
func splitXPAD(au []byte) (audio []byte, xpad []byte) {
	if len(au) <= xpadTailBytesPerAU {
		return au, nil
	}
	split := len(au) - xpadTailBytesPerAU
	return au[:split], au[split:]
}

func numAUsFor(dacRate, sbr bool) int {
	switch {
	case !dacRate && sbr:
		return 2
	case dacRate && sbr:
		return 3
	case !dacRate && !sbr:
		return 4
	default: // dacRate && !sbr
		return 6
	}
}
