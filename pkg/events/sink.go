// Package events implements spec.md §4.9's Event Bus as a typed sink
// rather than a DOM-style dynamic listener map (spec.md §9 "Event bus
// in a non-OO world"): a struct of optional function fields, set once
// at construction, invoked synchronously on the caller's goroutine.
//
// Grounded on the teacher's bridge.PeerSubscriptionChecker
// function-value-as-capability pattern and web.Event's typed-payload
// shape, collapsed here into one listener struct instead of a class
// hierarchy.
package events

import (
	"github.com/openedi/dabcore/pkg/audio"
	"github.com/openedi/dabcore/pkg/fic"
	"github.com/openedi/dabcore/pkg/pad"
)

// UnknownFrame is raised for an AF frame whose protocol tag this core
// does not recognize (spec.md §4.2).
type UnknownFrame struct {
	ProtocolTag string
}

// ResyncLoss is raised once per intake-buffer truncation (spec.md §4.1).
type ResyncLoss struct {
	DiscardedBytes int
}

// InternalError is spec.md §7's "Programmer errors" channel: listener
// re-entry, or any other condition the core refuses to silently drop.
type InternalError struct {
	Message string
}

// Sink is the capability set a host registers to receive decoded
// events. Every field is optional; the Dispatcher only calls the ones
// that are set. Callbacks are invoked synchronously and must not call
// back into Decoder.Feed (spec.md §4.9); they also must not retain the
// Ensemble/AacSegment/DL/SLS value's internal slices beyond the call
// without copying, since the decoder may reuse its buffers after return.
type Sink struct {
	OnEnsembleUpdated func(fic.Ensemble)
	OnAacSegment      func(audio.AacSegment)
	OnDlObject        func(pad.DL)
	OnMotImage        func(pad.SLS)
	OnUnknownFrame    func(UnknownFrame)
	OnResyncLoss      func(ResyncLoss)
	OnInternalError   func(InternalError)
}

func (s Sink) ensembleUpdated(e fic.Ensemble) {
	if s.OnEnsembleUpdated != nil {
		s.OnEnsembleUpdated(e)
	}
}

func (s Sink) aacSegment(seg audio.AacSegment) {
	if s.OnAacSegment != nil {
		s.OnAacSegment(seg)
	}
}

func (s Sink) dlObject(dl pad.DL) {
	if s.OnDlObject != nil {
		s.OnDlObject(dl)
	}
}

func (s Sink) motImage(sls pad.SLS) {
	if s.OnMotImage != nil {
		s.OnMotImage(sls)
	}
}

func (s Sink) unknownFrame(f UnknownFrame) {
	if s.OnUnknownFrame != nil {
		s.OnUnknownFrame(f)
	}
}

func (s Sink) resyncLoss(r ResyncLoss) {
	if s.OnResyncLoss != nil {
		s.OnResyncLoss(r)
	}
}

func (s Sink) internalError(err InternalError) {
	if s.OnInternalError != nil {
		s.OnInternalError(err)
	}
}

// Dispatcher wraps a Sink with the re-entrancy guard spec.md §4.9
// requires: a listener callback that calls back into Feed is detected
// and reported as an InternalError instead of recursing.
//
// The guard is a single depth counter owned by the Decoder's Feed
// method (Enter/Leave bracket the whole Feed call, including nested
// calls a listener makes back into it). Event dispatch methods below
// don't bump the counter themselves — they only read it: dispatch==1
// means "called from the outermost Feed", anything higher means a
// listener callback currently on the stack re-entered Feed.
type Dispatcher struct {
	sink      Sink
	dispatch  int
	onReentry func()
}

// NewDispatcher creates a Dispatcher around sink. onReentry, if set, is
// invoked (instead of the offending callback) when re-entrancy is detected.
func NewDispatcher(sink Sink, onReentry func()) *Dispatcher {
	return &Dispatcher{sink: sink, onReentry: onReentry}
}

// Enter marks the start of a Feed call; Leave marks its end. Reentrant
// reports whether the current dispatch depth indicates a nested Feed
// call (i.e., one invoked from within a listener callback).
func (d *Dispatcher) Enter() { d.dispatch++ }
func (d *Dispatcher) Leave() { d.dispatch-- }
func (d *Dispatcher) Reentrant() bool { return d.dispatch > 1 }

// ForceInternalError reports err directly, bypassing the depth check.
// Used by the Decoder when it detects re-entrancy at the top of Feed,
// before any ordinary event dispatch would have run.
func (d *Dispatcher) ForceInternalError(err InternalError) {
	d.sink.internalError(err)
}

func (d *Dispatcher) guard(kind string) bool {
	if d.Reentrant() {
		if d.onReentry != nil {
			d.onReentry()
		}
		d.sink.internalError(InternalError{Message: "listener re-entered Feed during " + kind + " dispatch"})
		return false
	}
	return true
}

func (d *Dispatcher) EnsembleUpdated(e fic.Ensemble) {
	if d.guard("EnsembleUpdated") {
		d.sink.ensembleUpdated(e)
	}
}

func (d *Dispatcher) AacSegment(seg audio.AacSegment) {
	if d.guard("AacSegment") {
		d.sink.aacSegment(seg)
	}
}

func (d *Dispatcher) DlObject(dl pad.DL) {
	if d.guard("DlObject") {
		d.sink.dlObject(dl)
	}
}

func (d *Dispatcher) MotImage(sls pad.SLS) {
	if d.guard("MotImage") {
		d.sink.motImage(sls)
	}
}

func (d *Dispatcher) UnknownFrame(f UnknownFrame) {
	if d.guard("UnknownFrame") {
		d.sink.unknownFrame(f)
	}
}

func (d *Dispatcher) ResyncLoss(r ResyncLoss) {
	if d.guard("ResyncLoss") {
		d.sink.resyncLoss(r)
	}
}

func (d *Dispatcher) InternalError(err InternalError) {
	if d.guard("InternalError") {
		d.sink.internalError(err)
	}
}
