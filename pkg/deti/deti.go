// Package deti decodes the "deti" tag payload spec.md §4.4 describes:
// the DAB ETI-equivalent record, carrying the FIC byte run and a
// per-subchannel stream characterization table for one 24 ms logical
// frame.
//
// The on-wire layout this core expects follows the field widths
// spec.md §4.4 names (FCT 8 bits, FICF 1 bit, NST 4 bits) extended with
// a stream-characterization table shaped like ETSI EN 300 799's
// FC/STC record (SCId/SAD/TPL/STL), since spec.md is silent on the
// exact STC packing.
package deti

import "github.com/openedi/dabcore/pkg/bitio"

// FICBlockBytes is the fixed FIC block size for 24 ms frames at the
// standard EDI bitrate (spec.md §4.4: "96 bytes for 24 ms frames at
// the standard bitrate").
const FICBlockBytes = 96

// Stream describes one subchannel stream declared by a DETI record's
// stream-characterization table.
type Stream struct {
	SubchannelID uint8
	StartAddress uint16 // Capacity Unit address (SAD)
	TPL          uint8  // type/protection level code
	SizeCU       uint16 // logical-frame size in Capacity Units (STL)
}

// Header is the decoded "deti" tag payload.
type Header struct {
	FCT     uint8 // frame counter, wraps mod 250
	FICF    bool
	Streams []Stream
	FIC     []byte // present only if FICF is set
}

const (
	streamEntryBits = 32 // SCId(6) SAD(10) TPL(6) STL(10)
)

// Parse decodes a "deti" tag payload into a Header. It reports ok=false
// if the payload is too short to hold its own declared fields.
func Parse(payload []byte) (Header, bool) {
	if len(payload) < 2 {
		return Header{}, false
	}

	fct := payload[0]
	flags := payload[1]
	ficf := flags&0x80 != 0
	nst := int(flags >> 3 & 0x0F)

	r := bitio.NewReader(payload[2:])
	streams := make([]Stream, 0, nst)
	for i := 0; i < nst; i++ {
		if r.BitsLeft() < streamEntryBits {
			return Header{}, false
		}
		scid, _ := r.ReadBits(6)
		sad, _ := r.ReadBits(10)
		tpl, _ := r.ReadBits(6)
		stl, _ := r.ReadBits(10)
		streams = append(streams, Stream{
			SubchannelID: uint8(scid),
			StartAddress: uint16(sad),
			TPL:          uint8(tpl),
			SizeCU:       uint16(stl),
		})
	}
	r.AlignToByte()

	h := Header{FCT: fct, FICF: ficf, Streams: streams}
	if ficf {
		start := r.BytePos()
		if start+FICBlockBytes > len(payload[2:]) {
			return Header{}, false
		}
		h.FIC = payload[2+start : 2+start+FICBlockBytes]
	}
	return h, true
}

// BitrateKbps estimates a stream's bitrate from its size in Capacity
// Units, the same approximation pkg/fic's approxBitrateKbps uses:
// roughly 2.667 kbit/s per Capacity Unit. TPL is not taken into account.
func (s Stream) BitrateKbps() uint16 {
	return uint16(uint32(s.SizeCU) * 8 / 3)
}
