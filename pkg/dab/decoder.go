// Package dab is the top-level orchestrator spec.md §2 and §4.10
// describe: it chains Byte Intake/AF-PFT/Tag-Demux (pkg/edi), the DETI
// Decoder (pkg/deti), the FIC/FIG Parser (pkg/fic), the MSC Stream
// Router and DAB+ Superframe Assembler (pkg/audio), and the PAD Engine
// (pkg/pad), publishing everything through one events.Dispatcher.
//
// Decoder is the only type a host needs to know about: construct one
// with NewDecoder, call Feed with whatever bytes arrive off the wire
// (any chunking), and register callbacks on the events.Sink handed to
// NewDecoder to receive EnsembleUpdated/AacSegment/DlObject/MotImage.
package dab

import (
	"github.com/openedi/dabcore/pkg/audio"
	"github.com/openedi/dabcore/pkg/clock"
	"github.com/openedi/dabcore/pkg/deti"
	"github.com/openedi/dabcore/pkg/edi"
	"github.com/openedi/dabcore/pkg/events"
	"github.com/openedi/dabcore/pkg/fic"
	"github.com/openedi/dabcore/pkg/logger"
	"github.com/openedi/dabcore/pkg/pad"
)

// Decoder holds all session state for one EDI byte stream.
type Decoder struct {
	edi        *edi.Decoder
	fic        *fic.Parser
	audio      *audio.Router
	pad        *pad.Engine
	dispatcher *events.Dispatcher

	clk     clock.Clock
	log     logger.Sink
	metrics MetricsSink

	// streamTable is the subchannel table from the most recently seen
	// "deti" tag, indexed by EST ordinal (spec.md §4.4: "For each EST
	// stream declared in DETI, it associates a subchannel_id").
	streamTable []deti.Stream
	sawResync   bool
}

// NewDecoder creates a Decoder. clk, log, and metrics may all be nil
// except clk, which must report real or simulated wall-clock time for
// the §4.5 EnsembleUpdated rate limit; pass clock.Real() in production.
func NewDecoder(sink events.Sink, clk clock.Clock, log logger.Sink, metrics MetricsSink) *Decoder {
	d := &Decoder{clk: clk, log: log, metrics: metrics}
	d.dispatcher = events.NewDispatcher(sink, func() {
		if d.metrics != nil {
			d.metrics.ReentryError()
		}
	})
	d.edi = edi.NewDecoder(ediTelemetry{d})
	d.fic = fic.NewParser(ficTelemetry{d})
	d.audio = audio.NewRouter(audioTelemetry{d})
	d.pad = pad.NewEngine(padTelemetry{d})
	return d
}

// Feed appends data (of any length, including zero) to the pipeline.
// It never blocks and never returns an error; ResultCode reports what
// happened for host observability only — nothing requires checking it.
func (d *Decoder) Feed(data []byte) ResultCode {
	d.dispatcher.Enter()
	defer d.dispatcher.Leave()
	if d.dispatcher.Reentrant() {
		d.dispatcher.ForceInternalError(events.InternalError{
			Message: "Feed called re-entrantly from a listener callback",
		})
		if d.metrics != nil {
			d.metrics.ReentryError()
		}
		return Dropped
	}
	if len(data) == 0 {
		return NoOp
	}

	d.sawResync = false
	d.edi.Feed(data, d.handleFrame)
	d.maybeEmitEnsemble()

	if d.sawResync {
		return OversizeTruncated
	}
	return Accepted
}

// Reset discards all session state — intake buffer, sequence tracking,
// ensemble, subchannel/assembler configuration, and PAD reassembly —
// but does not unregister the host's listeners (spec.md §4.10).
func (d *Decoder) Reset() {
	d.edi.Reset()
	d.fic.Reset()
	d.audio.Reset()
	d.pad.Reset()
	d.streamTable = nil
	d.sawResync = false
}

// Ensemble exposes the live ensemble being built, mainly so a host can
// inspect state between feeds without waiting for the next
// EnsembleUpdated event.
func (d *Decoder) Ensemble() *fic.Ensemble { return d.fic.Ensemble() }

func (d *Decoder) handleFrame(frame edi.Frame, tags []edi.TagItem, lost bool) {
	if !edi.IsKnownProtocol(frame.ProtocolTag) {
		d.dispatcher.UnknownFrame(events.UnknownFrame{ProtocolTag: frame.ProtocolTag})
		if d.metrics != nil {
			d.metrics.UnknownFrame()
		}
		return
	}
	if lost {
		// AF-level sequence gap: every in-progress superframe is now
		// misaligned, so every subchannel assembler must re-hunt.
		d.audio.ForceHunting()
	}
	for _, tag := range tags {
		d.handleTag(tag)
	}
}

func (d *Decoder) handleTag(tag edi.TagItem) {
	switch {
	case tag.Name == "*ptr":
		d.handlePtr(tag.Payload)
	case tag.Name == "deti":
		d.handleDETI(tag.Payload)
	case len(tag.Name) == 4 && tag.Name[:3] == "est":
		d.handleEST(tag.Name, tag.Payload)
	case tag.Name == "dsti":
		// Packet-mode data streams: ignored by this core (spec.md §4.3).
	case tag.Name == "*dmy":
		// Padding: ignored.
	default:
		// Unrecognized tag name inside a known AF frame: ignored, the
		// same convention as an unrecognized FIG type.
	}
}

// handlePtr validates the protocol/profile preamble spec.md §4.3
// requires ("must equal DETI profile"). A mismatch is logged, not
// fatal: the frame's other tags are still processed, since a
// malformed preamble is a recoverable stream error, not a reason to
// drop otherwise-valid data.
func (d *Decoder) handlePtr(payload []byte) {
	if len(payload) < 4 || string(payload[:4]) != "DETI" {
		if d.log != nil {
			d.log.Warn("AF frame *ptr tag did not carry the DETI profile")
		}
	}
}

func (d *Decoder) handleDETI(payload []byte) {
	hdr, ok := deti.Parse(payload)
	if !ok {
		return
	}
	d.streamTable = hdr.Streams
	for _, s := range hdr.Streams {
		d.audio.SetSubchannel(s.SubchannelID, s.SizeCU, s.BitrateKbps())
	}
	if hdr.FICF {
		d.fic.ParseFIC(hdr.FIC)
	}
}

func (d *Decoder) handleEST(name string, payload []byte) {
	idx, ok := estIndex(name)
	if !ok || idx >= len(d.streamTable) {
		return
	}
	subChID := d.streamTable[idx].SubchannelID

	seg, ok := d.audio.Feed(subChID, payload)
	if !ok {
		return
	}

	comp, found := d.fic.Ensemble().ComponentForSubchannel(subChID)
	if !found {
		// Semantic gap (spec.md §3): the service component referencing
		// this subchannel isn't known yet. Drop the artifact, not the
		// pipeline — a later FIG will map it and subsequent AUs will
		// emit normally.
		return
	}

	if comp.AudioFormat == nil {
		ref := toAudioFormatRef(seg.Format)
		comp.AudioFormat = &ref
	}
	seg.SCId = comp.SCId

	d.dispatcher.AacSegment(*seg)
	if d.metrics != nil {
		d.metrics.AacSegmentEmitted()
	}

	for _, xpad := range seg.XPAD {
		d.pad.Feed(comp.SCId, xpad, d.emitDL, d.emitMOT)
	}
}

func (d *Decoder) emitDL(dl pad.DL) {
	d.dispatcher.DlObject(dl)
	if d.metrics != nil {
		d.metrics.DlObjectEmitted()
	}
}

func (d *Decoder) emitMOT(sls pad.SLS) {
	d.dispatcher.MotImage(sls)
	if d.metrics != nil {
		d.metrics.MotImageEmitted()
	}
}

func (d *Decoder) maybeEmitEnsemble() {
	now := d.clk.NowMillis()
	if !d.fic.DueForEmit(now) {
		return
	}
	d.dispatcher.EnsembleUpdated(d.fic.Ensemble().Snapshot())
	if d.metrics != nil {
		d.metrics.EnsembleUpdated()
	}
	d.fic.MarkEmitted(now)
}

// estIndex parses the stream ordinal out of an "est<n>" tag name,
// where n is a single ASCII digit or uppercase letter (spec.md §4.3:
// "ascii digits 0..9, A..").
func estIndex(name string) (int, bool) {
	if len(name) != 4 {
		return 0, false
	}
	c := name[3]
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'A' && c <= 'Z':
		return 10 + int(c-'A'), true
	default:
		return 0, false
	}
}

func toAudioFormatRef(f audio.AudioFormat) fic.AudioFormatRef {
	return fic.AudioFormatRef{
		SBR: f.SBR, PS: f.PS, Codec: f.Codec,
		SamplerateKHz: f.SamplerateKHz, BitrateKbps: f.BitrateKbps,
		AUCount: f.AUCount, Channels: f.Channels,
		ASC: append([]byte(nil), f.ASC...),
	}
}
