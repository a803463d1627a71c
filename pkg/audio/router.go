package audio

// Router demultiplexes EST tag payloads by subchannel id to the
// assembler responsible for that subchannel (spec.md §4.6). Per-stream
// state lives entirely in the Assembler, not here.
type Router struct {
	telemetry   Telemetry
	assemblers  map[uint8]*Assembler
	sizes       map[uint8]uint16
	bitrates    map[uint8]uint16
}

// NewRouter creates an empty router.
func NewRouter(tel Telemetry) *Router {
	return &Router{
		telemetry:  tel,
		assemblers: make(map[uint8]*Assembler),
		sizes:      make(map[uint8]uint16),
		bitrates:   make(map[uint8]uint16),
	}
}

// SetSubchannel (re)configures the logical frame size for a
// subchannel, as the DETI stream table announces it. A changed size or
// bitrate discards any in-progress superframe for that subchannel.
func (r *Router) SetSubchannel(subChID uint8, sizeCU uint16, bitrateKbps uint16) {
	if r.sizes[subChID] == sizeCU && r.bitrates[subChID] == bitrateKbps {
		return
	}
	r.sizes[subChID] = sizeCU
	r.bitrates[subChID] = bitrateKbps
	r.assemblers[subChID] = NewAssembler(subChID, sizeCU, bitrateKbps, r.telemetry)
}

// Feed routes one EST payload (already split into its constituent
// logical frame, one per subchannel CIF slot) to its assembler.
func (r *Router) Feed(subChID uint8, frame []byte) (*AacSegment, bool) {
	asm, ok := r.assemblers[subChID]
	if !ok {
		return nil, false
	}
	return asm.PushFrame(frame)
}

// ForceHunting resets every assembler to Hunting, as a lost-frame
// indication from the AF layer requires.
func (r *Router) ForceHunting() {
	for _, asm := range r.assemblers {
		asm.ForceHunting()
	}
}

// Reset discards all assemblers and subchannel configuration.
func (r *Router) Reset() {
	r.assemblers = make(map[uint8]*Assembler)
	r.sizes = make(map[uint8]uint16)
	r.bitrates = make(map[uint8]uint16)
}
