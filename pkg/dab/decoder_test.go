package dab

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openedi/dabcore/pkg/clock"
	"github.com/openedi/dabcore/pkg/crc16"
	"github.com/openedi/dabcore/pkg/events"
	"github.com/openedi/dabcore/pkg/fic"
)

// fakeMetrics counts every MetricsSink call by name, for assertions.
type fakeMetrics struct{ calls map[string]int }

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{calls: make(map[string]int)} }

func (f *fakeMetrics) FramesLost(int)      { f.calls["FramesLost"]++ }
func (f *fakeMetrics) ResyncLoss()         { f.calls["ResyncLoss"]++ }
func (f *fakeMetrics) AFCRCBad()           { f.calls["AFCRCBad"]++ }
func (f *fakeMetrics) FIBCRCBad()          { f.calls["FIBCRCBad"]++ }
func (f *fakeMetrics) AUCRCBad()           { f.calls["AUCRCBad"]++ }
func (f *fakeMetrics) Oversize()           { f.calls["Oversize"]++ }
func (f *fakeMetrics) UnknownCharset()     { f.calls["UnknownCharset"]++ }
func (f *fakeMetrics) FIGConflict()        { f.calls["FIGConflict"]++ }
func (f *fakeMetrics) MotDedupSuppressed() { f.calls["MotDedupSuppressed"]++ }
func (f *fakeMetrics) ReentryError()       { f.calls["ReentryError"]++ }
func (f *fakeMetrics) UnknownFrame()       { f.calls["UnknownFrame"]++ }
func (f *fakeMetrics) EnsembleUpdated()    { f.calls["EnsembleUpdated"]++ }
func (f *fakeMetrics) AacSegmentEmitted()  { f.calls["AacSegmentEmitted"]++ }
func (f *fakeMetrics) DlObjectEmitted()    { f.calls["DlObjectEmitted"]++ }
func (f *fakeMetrics) MotImageEmitted()    { f.calls["MotImageEmitted"]++ }

// buildAF assembles one CRC-checked AF frame carrying tag as its
// protocol tag and payload as its tag-stream body.
func buildAF(seq uint16, tag string, payload []byte) []byte {
	length := len(payload)
	buf := []byte{
		'A', 'F',
		byte(length >> 24), byte(length >> 16), byte(length >> 8), byte(length),
		byte(seq >> 8), byte(seq),
		0x80, // crcFlag
	}
	buf = append(buf, []byte(tag)...)
	buf = append(buf, payload...)
	return crc16.Append(buf)
}

// tagItem builds one *tag item (spec.md §4.3: name + 32-bit bit length + payload).
func tagItem(name string, payload []byte) []byte {
	bitLen := uint32(len(payload)) * 8
	out := []byte(name)
	out = append(out, byte(bitLen>>24), byte(bitLen>>16), byte(bitLen>>8), byte(bitLen))
	return append(out, payload...)
}

// buildFIB encodes one 32-byte FIB: a single FIG (type, payload) padded
// to 30 bytes with an ignored FIG type 2 filler, plus its CRC16 trailer.
func buildFIB(figType byte, figPayload []byte) []byte {
	body := []byte{(figType << 5) | byte(len(figPayload)-1)}
	body = append(body, figPayload...)
	padLen := 30 - len(body)
	if padLen > 0 {
		body = append(body, (2<<5)|byte(padLen-2))
		body = append(body, make([]byte, padLen-1)...)
	}
	return crc16.Append(body)
}

// ensembleLabelFIG builds a FIG 1/0 ensemble-label payload (header +
// 2 reserved bytes + 16-byte EBU-Latin label + 16-bit short-label mask).
func ensembleLabelFIG(label string) []byte {
	raw := make([]byte, 16)
	copy(raw, label)
	payload := []byte{0x00, 0x00, 0x00} // header (charset 0, ext 0) + 2 reserved
	payload = append(payload, raw...)
	payload = append(payload, 0xFF, 0xFF) // short-label mask: all chars
	return payload
}

// detiPayload builds a "deti" tag payload with FICF set and no declared
// streams, carrying exactly 96 bytes of FIC (3 FIBs).
func detiPayload(fic []byte) []byte {
	out := []byte{0x00, 0x80} // FCT=0, FICF=1, NST=0
	return append(out, fic...)
}

func oneServiceLabelFIC(label string) []byte {
	fib0 := buildFIB(1, ensembleLabelFIG(label))
	filler := buildFIB(2, make([]byte, 29))
	out := append([]byte{}, fib0...)
	out = append(out, filler...)
	out = append(out, filler...)
	return out
}

func TestFeed_NoOp(t *testing.T) {
	d := NewDecoder(events.Sink{}, clock.NewManual(0), nil, nil)
	assert.Equal(t, NoOp, d.Feed(nil))
	assert.Equal(t, NoOp, d.Feed([]byte{}))
}

func TestFeed_UnknownProtocolTag(t *testing.T) {
	var got events.UnknownFrame
	count := 0
	sink := events.Sink{OnUnknownFrame: func(f events.UnknownFrame) { got = f; count++ }}
	m := newFakeMetrics()
	d := NewDecoder(sink, clock.NewManual(0), nil, m)

	frame := buildAF(0, "XXXX", []byte("irrelevant"))
	rc := d.Feed(frame)

	assert.Equal(t, Accepted, rc)
	require.Equal(t, 1, count)
	assert.Equal(t, "XXXX", got.ProtocolTag)
	assert.Equal(t, 1, m.calls["UnknownFrame"])
}

func TestFeed_EnsembleUpdatedFromFIC(t *testing.T) {
	var got string
	count := 0
	m := newFakeMetrics()

	d := NewDecoder(events.Sink{
		OnEnsembleUpdated: func(e fic.Ensemble) {
			got = e.Label
			count++
		},
	}, clock.NewManual(0), nil, m)

	ptrPayload := []byte{'D', 'E', 'T', 'I', 0x01, 0x00}
	ficBytes := oneServiceLabelFIC("DABCORE TEST")
	afPayload := append([]byte{}, tagItem("*ptr", ptrPayload)...)
	afPayload = append(afPayload, tagItem("deti", detiPayload(ficBytes))...)
	frame := buildAF(0, "PTFT", afPayload)

	rc := d.Feed(frame)

	assert.Equal(t, Accepted, rc)
	require.Equal(t, 1, count)
	assert.Equal(t, "DABCORE TEST", got)
	assert.Equal(t, 1, m.calls["EnsembleUpdated"])
}

func TestFeed_ReentrancyDetected(t *testing.T) {
	m := newFakeMetrics()
	var errCount int
	var d *Decoder
	d = NewDecoder(events.Sink{
		OnEnsembleUpdated: func(fic.Ensemble) {
			// A listener calling back into Feed is a protocol violation
			// (spec.md §4.9); this must be refused, not recursed into.
			d.Feed([]byte("irrelevant"))
		},
		OnInternalError: func(events.InternalError) { errCount++ },
	}, clock.NewManual(0), nil, m)

	ptrPayload := []byte{'D', 'E', 'T', 'I', 0x01, 0x00}
	ficBytes := oneServiceLabelFIC("REENTRY")
	afPayload := append([]byte{}, tagItem("*ptr", ptrPayload)...)
	afPayload = append(afPayload, tagItem("deti", detiPayload(ficBytes))...)
	frame := buildAF(0, "PTFT", afPayload)

	rc := d.Feed(frame)

	assert.Equal(t, Accepted, rc)
	assert.Equal(t, 1, errCount)
	assert.Equal(t, 1, m.calls["ReentryError"])
}

func TestReset_ClearsEnsemble(t *testing.T) {
	d := NewDecoder(events.Sink{}, clock.NewManual(0), nil, nil)

	ptrPayload := []byte{'D', 'E', 'T', 'I', 0x01, 0x00}
	ficBytes := oneServiceLabelFIC("BEFORE RESET")
	afPayload := append([]byte{}, tagItem("*ptr", ptrPayload)...)
	afPayload = append(afPayload, tagItem("deti", detiPayload(ficBytes))...)
	frame := buildAF(0, "PTFT", afPayload)
	d.Feed(frame)
	require.True(t, d.Ensemble().HasLabel)

	d.Reset()
	assert.False(t, d.Ensemble().HasLabel)
	assert.Equal(t, "", d.Ensemble().Label)
}

// TestEnsembleSnapshot_DeterministicAcrossIdenticalFeeds feeds the same
// bytes into two independent decoders and checks their resulting
// Ensemble snapshots deep-equal: the directory is purely a function of
// the FIC bytes seen, not of incidental allocation order.
func TestEnsembleSnapshot_DeterministicAcrossIdenticalFeeds(t *testing.T) {
	build := func() fic.Ensemble {
		var snap fic.Ensemble
		d := NewDecoder(events.Sink{
			OnEnsembleUpdated: func(e fic.Ensemble) { snap = e },
		}, clock.NewManual(0), nil, nil)

		ptrPayload := []byte{'D', 'E', 'T', 'I', 0x01, 0x00}
		ficBytes := oneServiceLabelFIC("DETERMINISTIC")
		afPayload := append([]byte{}, tagItem("*ptr", ptrPayload)...)
		afPayload = append(afPayload, tagItem("deti", detiPayload(ficBytes))...)
		d.Feed(buildAF(0, "PTFT", afPayload))
		return snap
	}

	a, b := build(), build()
	diff := cmp.Diff(a, b,
		cmpopts.IgnoreUnexported(fic.Ensemble{}, fic.Service{}),
	)
	assert.Empty(t, diff)
}

func TestEstIndex(t *testing.T) {
	cases := []struct {
		name    string
		wantIdx int
		wantOK  bool
	}{
		{"est0", 0, true},
		{"est9", 9, true},
		{"estA", 10, true},
		{"estZ", 35, true},
		{"est!", 0, false},
		{"esta", 0, false}, // lowercase not accepted, spec names 0..9,A..
		{"xxxx", 0, false},
	}
	for _, c := range cases {
		idx, ok := estIndex(c.name)
		assert.Equal(t, c.wantOK, ok, c.name)
		if ok {
			assert.Equal(t, c.wantIdx, idx, c.name)
		}
	}
}
