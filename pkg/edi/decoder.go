package edi

// Decoder chains Byte Intake, the AF/PFT Framer, and the Tag Stream
// Demuxer: feed() never blocks and hands whole AF frames' tag items
// downstream as soon as they're available.
type Decoder struct {
	intake      *Intake
	telemetry   Telemetry
	haveLastSeq bool
	lastSeq     uint16
}

// NewDecoder creates an empty Decoder.
func NewDecoder(tel Telemetry) *Decoder {
	return &Decoder{intake: NewIntake(tel), telemetry: tel}
}

// Feed appends data and extracts as many complete AF frames as
// possible, invoking onFrame for each with its tag items and whether
// a sequence-number gap was detected immediately before it (signaling
// downstream assemblers should force a resync).
func (d *Decoder) Feed(data []byte, onFrame func(frame Frame, tags []TagItem, lost bool)) {
	d.intake.Feed(data)

	for {
		buf := d.intake.Bytes()
		if len(buf) == 0 {
			return
		}
		if isPFTSync(buf) {
			d.intake.Advance(2)
			continue
		}

		consumed, result, frame := scanAF(buf)
		switch result {
		case scanNeedMore:
			if consumed > 0 {
				d.intake.Advance(consumed)
				continue
			}
			return
		case scanBadCRC:
			d.intake.Advance(consumed)
			if d.telemetry != nil {
				d.telemetry.AFCRCBad()
			}
		case scanFrame:
			d.intake.Advance(consumed)
			lost := d.checkSequence(frame.Sequence)
			tags := DemuxTags(frame.Payload)
			onFrame(frame, tags, lost)
		}
	}
}

func (d *Decoder) checkSequence(seq uint16) bool {
	lost := false
	if d.haveLastSeq {
		gap := int(seq) - int(d.lastSeq) - 1
		if gap < 0 {
			gap += 1 << 16
		}
		if gap > 0 {
			lost = true
			if d.telemetry != nil {
				d.telemetry.FramesLost(gap)
			}
		}
	}
	d.lastSeq = seq
	d.haveLastSeq = true
	return lost
}

// Reset discards all buffered bytes and sequence tracking.
func (d *Decoder) Reset() {
	d.intake.Reset()
	d.haveLastSeq = false
}
