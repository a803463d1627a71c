package fic

import (
	"github.com/openedi/dabcore/pkg/crc16"
)

// Telemetry receives the counters the FIG parser raises. dab.Decoder
// supplies an implementation backed by an optional metrics.Sink.
type Telemetry interface {
	FIBCRCBad()
	UnknownCharset()
	FIGConflict()
}

const (
	fibSize        = 32 // 30 bytes of FIGs + 2-byte CRC16
	emitEveryNFIBs = 4  // spec.md §4.5: one EnsembleUpdated per N FIBs or 200ms
	emitEveryMillis = 200
)

// Parser decodes FIC bytes (a run of FIBs) into a live Ensemble,
// rate-limiting change notification per spec.md §4.5.
type Parser struct {
	ensemble  *Ensemble
	telemetry Telemetry

	dirty          bool
	fibsSinceEmit  int
	lastEmitMillis int64
	everEmitted    bool
}

// NewParser creates a Parser with a fresh empty Ensemble.
func NewParser(tel Telemetry) *Parser {
	return &Parser{ensemble: NewEnsemble(), telemetry: tel}
}

// Ensemble returns the live ensemble being built.
func (p *Parser) Ensemble() *Ensemble { return p.ensemble }

// Reset discards all ensemble state, as dab.Decoder.Reset requires.
func (p *Parser) Reset() {
	p.ensemble = NewEnsemble()
	p.dirty = false
	p.fibsSinceEmit = 0
	p.everEmitted = false
}

// ParseFIC splits a FIC byte run into FIBs, validates each FIB's
// CRC16-CCITT, and dispatches the FIGs it carries. FIBs with a bad CRC
// are dropped (spec.md §4.5: "Reject FIBs with bad CRC").
func (p *Parser) ParseFIC(fic []byte) {
	for off := 0; off+fibSize <= len(fic); off += fibSize {
		fib := fic[off : off+fibSize]
		if !crc16.Validate(fib) {
			if p.telemetry != nil {
				p.telemetry.FIBCRCBad()
			}
			continue
		}
		p.parseFIGs(fib[:fibSize-2])
		p.fibsSinceEmit++
	}
}

func (p *Parser) parseFIGs(fib []byte) {
	pos := 0
	for pos < len(fib) {
		header := fib[pos]
		figType := header >> 5
		figLen := int(header&0x1F) + 1
		pos++
		if pos+figLen > len(fib) {
			return // truncated FIG, stop scanning this FIB
		}
		payload := fib[pos : pos+figLen]
		pos += figLen

		switch figType {
		case 0:
			p.dispatchFIG0(payload)
		case 1:
			p.dispatchFIG1(payload)
		default:
			// Unknown FIG type: ignored silently per spec.md §4.3 convention.
		}
	}
}

// DueForEmit reports whether the accumulated changes should be flushed
// as an EnsembleUpdated event: either N FIBs have passed, or 200ms of
// clock time have, whichever is sooner — and only if something changed.
func (p *Parser) DueForEmit(nowMillis int64) bool {
	if !p.dirty {
		return false
	}
	if !p.everEmitted {
		return true
	}
	if p.fibsSinceEmit >= emitEveryNFIBs {
		return true
	}
	return nowMillis-p.lastEmitMillis >= emitEveryMillis
}

// MarkEmitted clears the dirty flag after the host has emitted the
// current snapshot.
func (p *Parser) MarkEmitted(nowMillis int64) {
	p.dirty = false
	p.fibsSinceEmit = 0
	p.lastEmitMillis = nowMillis
	p.everEmitted = true
}

func (p *Parser) markDirty() { p.dirty = true }
