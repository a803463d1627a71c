package audio

// AudioFormat describes the codec configuration derived from one
// superframe's DAB+ header (spec.md §3 AudioFormat).
type AudioFormat struct {
	SBR           bool
	PS            bool
	Codec         string // "HE-AAC" | "HE-AACv2" | "AAC-LC"
	SamplerateKHz uint16
	BitrateKbps   uint16
	AUCount       uint8
	Channels      uint8
	ASC           []byte
}

// AacSegment is one superframe's worth of decoded access units,
// emitted per spec.md §4.7 step 7.
type AacSegment struct {
	SCId       uint8
	Format     AudioFormat
	Frames     [][]byte
	XPAD       [][]byte // one X-PAD tail per AU, parallel to Frames
}

func codecName(sbr, ps bool) string {
	switch {
	case sbr && ps:
		return "HE-AACv2"
	case sbr:
		return "HE-AAC"
	default:
		return "AAC-LC"
	}
}
