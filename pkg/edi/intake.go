// Package edi implements Byte Intake, the AF/PFT Framer, and the Tag
// Stream Demuxer (spec.md §4.1-4.3): turning an arbitrary-sized byte
// stream into validated AF frames and then into named tag payloads.
package edi

const (
	maxBufferBytes    = 2 * 1024 * 1024
	truncateKeepBytes = 64 * 1024
)

// Telemetry receives the counters the intake/framer layer raises.
type Telemetry interface {
	ResyncLoss(discardedBytes int)
	FramesLost(n int)
	AFCRCBad()
}

// Intake is the single growable ring buffer spec.md §4.1 describes.
// feed() appends; callers drain complete frames from the front.
type Intake struct {
	buf []byte
	tel Telemetry
}

// NewIntake creates an empty intake buffer.
func NewIntake(tel Telemetry) *Intake {
	return &Intake{tel: tel}
}

// Feed appends data, truncating to the last 64 KiB (with a ResyncLoss
// counter) if the buffer grows past 2 MiB without a valid sync ever
// draining it.
func (in *Intake) Feed(data []byte) {
	in.buf = append(in.buf, data...)
	if len(in.buf) >= maxBufferBytes {
		discarded := 0
		if len(in.buf) > truncateKeepBytes {
			discarded = len(in.buf) - truncateKeepBytes
			kept := make([]byte, truncateKeepBytes)
			copy(kept, in.buf[len(in.buf)-truncateKeepBytes:])
			in.buf = kept
		}
		if in.tel != nil {
			in.tel.ResyncLoss(discarded)
		}
	}
}

// Bytes exposes the buffered (not-yet-consumed) bytes.
func (in *Intake) Bytes() []byte { return in.buf }

// Advance drops n bytes from the front of the buffer.
func (in *Intake) Advance(n int) {
	if n >= len(in.buf) {
		in.buf = in.buf[:0]
		return
	}
	in.buf = in.buf[n:]
}

// Reset discards all buffered bytes.
func (in *Intake) Reset() { in.buf = in.buf[:0] }
