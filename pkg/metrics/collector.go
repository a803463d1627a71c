// Package metrics collects the telemetry counters spec.md §7 calls for
// (recoverable stream errors, semantic-gap drops, programmer errors),
// exported for dashboards via a Prometheus HTTP endpoint. The core
// decoder never imports this package: it only calls the
// dab.MetricsSink capability, so dropping metrics entirely costs the
// host nothing.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector collects dabcore decoder telemetry.
type Collector struct {
	framesLost          prometheus.Counter
	resyncLoss          prometheus.Counter
	afCRCBad            prometheus.Counter
	fibCRCBad           prometheus.Counter
	auCRCBad            prometheus.Counter
	oversize            prometheus.Counter
	unknownCharset      prometheus.Counter
	figConflict         prometheus.Counter
	motDedupSuppressed  prometheus.Counter
	reentryErrors       prometheus.Counter
	unknownFrames       prometheus.Counter
	ensembleUpdates     prometheus.Counter
	aacSegmentsEmitted  prometheus.Counter
	dlObjectsEmitted    prometheus.Counter
	motImagesEmitted    prometheus.Counter
}

// NewCollector creates a new metrics collector with all counters
// registered under the "dabcore" namespace.
func NewCollector() *Collector {
	newCounter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dabcore",
			Name:      name,
			Help:      help,
		})
	}

	return &Collector{
		framesLost:         newCounter("frames_lost_total", "AF sequence gaps observed"),
		resyncLoss:         newCounter("resync_loss_total", "intake buffer truncations due to lost sync"),
		afCRCBad:           newCounter("af_crc_bad_total", "AF frames dropped for bad CRC16"),
		fibCRCBad:          newCounter("fib_crc_bad_total", "FIBs dropped for bad CRC16"),
		auCRCBad:           newCounter("au_crc_bad_total", "AAC access units dropped for bad CRC16"),
		oversize:           newCounter("oversize_total", "reassembly buffers aborted for exceeding their cap"),
		unknownCharset:     newCounter("unknown_charset_total", "FIG 1 labels with an unrecognized charset selector"),
		figConflict:        newCounter("fig_conflict_total", "re-announced FIG 0/1 subchannels with changed parameters"),
		motDedupSuppressed: newCounter("mot_dedup_suppressed_total", "MOT objects suppressed as duplicates of a prior broadcast"),
		reentryErrors:      newCounter("reentry_errors_total", "listener callbacks that re-entered Feed"),
		unknownFrames:      newCounter("unknown_frames_total", "AF frames with an unrecognized protocol tag"),
		ensembleUpdates:    newCounter("ensemble_updates_total", "EnsembleUpdated events emitted"),
		aacSegmentsEmitted: newCounter("aac_segments_emitted_total", "AacSegment events emitted"),
		dlObjectsEmitted:   newCounter("dl_objects_emitted_total", "DlObject events emitted"),
		motImagesEmitted:   newCounter("mot_images_emitted_total", "MotImage events emitted"),
	}
}

// Register registers all counters with the given Prometheus registerer.
func (c *Collector) Register(reg prometheus.Registerer) {
	reg.MustRegister(
		c.framesLost, c.resyncLoss, c.afCRCBad, c.fibCRCBad, c.auCRCBad,
		c.oversize, c.unknownCharset, c.figConflict, c.motDedupSuppressed,
		c.reentryErrors, c.unknownFrames, c.ensembleUpdates,
		c.aacSegmentsEmitted, c.dlObjectsEmitted, c.motImagesEmitted,
	)
}

// The methods below satisfy dab.MetricsSink.

func (c *Collector) FramesLost(n int)        { c.framesLost.Add(float64(n)) }
func (c *Collector) ResyncLoss()             { c.resyncLoss.Inc() }
func (c *Collector) AFCRCBad()               { c.afCRCBad.Inc() }
func (c *Collector) FIBCRCBad()              { c.fibCRCBad.Inc() }
func (c *Collector) AUCRCBad()               { c.auCRCBad.Inc() }
func (c *Collector) Oversize()               { c.oversize.Inc() }
func (c *Collector) UnknownCharset()         { c.unknownCharset.Inc() }
func (c *Collector) FIGConflict()            { c.figConflict.Inc() }
func (c *Collector) MotDedupSuppressed()     { c.motDedupSuppressed.Inc() }
func (c *Collector) ReentryError()           { c.reentryErrors.Inc() }
func (c *Collector) UnknownFrame()           { c.unknownFrames.Inc() }
func (c *Collector) EnsembleUpdated()        { c.ensembleUpdates.Inc() }
func (c *Collector) AacSegmentEmitted()      { c.aacSegmentsEmitted.Inc() }
func (c *Collector) DlObjectEmitted()        { c.dlObjectsEmitted.Inc() }
func (c *Collector) MotImageEmitted()        { c.motImagesEmitted.Inc() }
