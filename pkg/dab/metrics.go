package dab

// MetricsSink is the full counter surface spec.md §7 calls for: stream
// errors, semantic-gap drops, programmer errors, and event-emission
// counts. *metrics.Collector satisfies this by structural typing; the
// core never imports pkg/metrics, so a host that doesn't care about
// telemetry can pass nil.
type MetricsSink interface {
	FramesLost(n int)
	ResyncLoss()
	AFCRCBad()
	FIBCRCBad()
	AUCRCBad()
	Oversize()
	UnknownCharset()
	FIGConflict()
	MotDedupSuppressed()
	ReentryError()
	UnknownFrame()
	EnsembleUpdated()
	AacSegmentEmitted()
	DlObjectEmitted()
	MotImageEmitted()
}
