package dab

import "github.com/openedi/dabcore/pkg/events"

// The adapters below let one optional MetricsSink satisfy the several
// small per-package Telemetry interfaces (edi.Telemetry, fic.Telemetry,
// audio.Telemetry, pad.Telemetry) without those packages importing
// pkg/dab or pkg/metrics. Every method is nil-safe: a Decoder built
// with metrics=nil still runs, it just doesn't count anything.

type ediTelemetry struct{ d *Decoder }

func (t ediTelemetry) ResyncLoss(discardedBytes int) {
	t.d.sawResync = true
	if t.d.metrics != nil {
		t.d.metrics.ResyncLoss()
	}
	if t.d.log != nil {
		t.d.log.Warn("edi intake resynced, buffer truncated")
	}
	t.d.dispatcher.ResyncLoss(events.ResyncLoss{DiscardedBytes: discardedBytes})
}

func (t ediTelemetry) FramesLost(n int) {
	if t.d.metrics != nil {
		t.d.metrics.FramesLost(n)
	}
}

func (t ediTelemetry) AFCRCBad() {
	if t.d.metrics != nil {
		t.d.metrics.AFCRCBad()
	}
}

type ficTelemetry struct{ d *Decoder }

func (t ficTelemetry) FIBCRCBad() {
	if t.d.metrics != nil {
		t.d.metrics.FIBCRCBad()
	}
}

func (t ficTelemetry) UnknownCharset() {
	if t.d.metrics != nil {
		t.d.metrics.UnknownCharset()
	}
}

func (t ficTelemetry) FIGConflict() {
	if t.d.metrics != nil {
		t.d.metrics.FIGConflict()
	}
}

type audioTelemetry struct{ d *Decoder }

func (t audioTelemetry) AUCRCBad() {
	if t.d.metrics != nil {
		t.d.metrics.AUCRCBad()
	}
}

func (t audioTelemetry) Oversize() {
	if t.d.metrics != nil {
		t.d.metrics.Oversize()
	}
}

type padTelemetry struct{ d *Decoder }

func (t padTelemetry) Oversize() {
	if t.d.metrics != nil {
		t.d.metrics.Oversize()
	}
}

func (t padTelemetry) MotDedupSuppressed() {
	if t.d.metrics != nil {
		t.d.metrics.MotDedupSuppressed()
	}
}
