// Package fic decodes the Fast Information Channel — FIG type 0 and 1
// extensions — into the live Ensemble directory spec.md §3 and §4.5
// describe: ensemble label, services, service components and
// subchannels.
//
// The Ensemble type is the "stateful string-indexed registry" design
// note from spec.md §9 calls for, grounded on the teacher's
// peer.SubscriptionState map-of-state-by-id shape but without its
// mutex: the whole pipeline runs on one goroutine (spec.md §5), so the
// only copying needed is the deep Snapshot handed to event listeners.
package fic

// Ensemble is the root multiplex directory.
type Ensemble struct {
	EID         uint16
	Label       string
	HasLabel    bool
	ShortLabel  string
	HasShortLabel bool
	ALFlag      bool
	ECC         byte
	HasECC      bool
	AltFrequencyCount int

	services    map[uint32]*Service
	subchannels map[uint8]*Subchannel

	// scidAlloc maps (SID, SCIdS) pairs to the globally unique scid
	// values used by AacSegment/DL/MotImage events. Populated lazily
	// from FIG 0/2 component order and overridable by FIG 0/8.
	scidAlloc map[scidKey]uint8
	scidOf    map[uint8]scidKey
	nextScid  uint8
}

type scidKey struct {
	sid   uint32
	scids uint8
}

// Service is a programme or data service within the ensemble.
type Service struct {
	SID           uint32
	Label         string
	HasLabel      bool
	ShortLabel    string
	HasShortLabel bool
	ProgrammeType *uint8

	components map[uint8]*ServiceComponent // keyed by global scid
}

// ServiceComponent is one audio or data component of a Service.
type ServiceComponent struct {
	SCId          uint8 // global scid
	SubchannelID  uint8
	HasSubchannel bool
	Language      string
	HasLanguage   bool
	Label         string
	HasLabel      bool
	UserApps      []string
	AudioFormat   *AudioFormatRef
}

// AudioFormatRef mirrors audio.AudioFormat so that pkg/fic does not
// import pkg/audio. The dab
// package keeps the two in sync by copying audio.AudioFormat fields in
// here whenever the first AacSegment for a scid is produced.
type AudioFormatRef struct {
	SBR           bool
	PS            bool
	Codec         string
	SamplerateKHz uint16
	BitrateKbps   uint16
	AUCount       uint8
	Channels      uint8
	ASC           []byte
}

// Subchannel describes a fixed-bandwidth slice of the MSC.
type Subchannel struct {
	ID      uint8
	Start   uint16
	Size    uint16
	Bitrate uint16
	PL      string
}

// NewEnsemble creates an empty ensemble, as at session start.
func NewEnsemble() *Ensemble {
	return &Ensemble{
		services:    make(map[uint32]*Service),
		subchannels: make(map[uint8]*Subchannel),
		scidAlloc:   make(map[scidKey]uint8),
		scidOf:      make(map[uint8]scidKey),
	}
}

// Services returns the services in the ensemble in ascending SID order.
func (e *Ensemble) Services() []*Service {
	out := make([]*Service, 0, len(e.services))
	for _, s := range e.services {
		out = append(out, s)
	}
	sortServices(out)
	return out
}

// Service looks up a service by SID.
func (e *Ensemble) Service(sid uint32) (*Service, bool) {
	s, ok := e.services[sid]
	return s, ok
}

func (e *Ensemble) serviceOrCreate(sid uint32) *Service {
	s, ok := e.services[sid]
	if !ok {
		s = &Service{SID: sid, components: make(map[uint8]*ServiceComponent)}
		e.services[sid] = s
	}
	return s
}

// Subchannels returns the subchannels in the ensemble in ascending id order.
func (e *Ensemble) Subchannels() []*Subchannel {
	out := make([]*Subchannel, 0, len(e.subchannels))
	for _, s := range e.subchannels {
		out = append(out, s)
	}
	sortSubchannels(out)
	return out
}

// Subchannel looks up a subchannel by id.
func (e *Ensemble) Subchannel(id uint8) (*Subchannel, bool) {
	s, ok := e.subchannels[id]
	return s, ok
}

// Components returns a service's components in ascending scid order.
func (s *Service) Components() []*ServiceComponent {
	out := make([]*ServiceComponent, 0, len(s.components))
	for _, c := range s.components {
		out = append(out, c)
	}
	sortComponents(out)
	return out
}

// Component looks up a component by its global scid.
func (e *Ensemble) Component(scid uint8) (*ServiceComponent, *Service, bool) {
	key, ok := e.scidOf[scid]
	if !ok {
		return nil, nil, false
	}
	svc, ok := e.services[key.sid]
	if !ok {
		return nil, nil, false
	}
	comp, ok := svc.components[scid]
	return comp, svc, ok
}

// ComponentForSubchannel finds the service component currently mapped
// to subChID, if any. Used to label AacSegment/DL/MotImage events with
// the scid the MSC Stream Router's subchannel-keyed payloads belong to
// (spec.md §3: "Every ServiceComponent.subchannel_id that appears must
// correspond to a Subchannel already in the ensemble").
func (e *Ensemble) ComponentForSubchannel(subChID uint8) (*ServiceComponent, bool) {
	for _, svc := range e.services {
		for _, c := range svc.components {
			if c.HasSubchannel && c.SubchannelID == subChID {
				return c, true
			}
		}
	}
	return nil, false
}

// scidFor resolves the stable global scid for a (SID, SCIdS) pair,
// allocating a fresh one the first time the pair is observed.
func (e *Ensemble) scidFor(sid uint32, scids uint8) uint8 {
	key := scidKey{sid: sid, scids: scids}
	if scid, ok := e.scidAlloc[key]; ok {
		return scid
	}
	scid := e.nextScid
	e.nextScid++
	e.scidAlloc[key] = scid
	e.scidOf[scid] = key
	return scid
}

// assignScid lets FIG 0/8 force a specific scid for a (SID, SCIdS)
// pair, remapping any component already allocated under the old id.
func (e *Ensemble) assignScid(sid uint32, scids uint8, scid uint8) {
	key := scidKey{sid: sid, scids: scids}
	old, existed := e.scidAlloc[key]
	if existed && old == scid {
		return
	}

	svc, ok := e.services[sid]
	if ok && existed {
		if comp, ok := svc.components[old]; ok {
			delete(svc.components, old)
			comp.SCId = scid
			svc.components[scid] = comp
			delete(e.scidOf, old)
		}
	}

	e.scidAlloc[key] = scid
	e.scidOf[scid] = key
	if scid >= e.nextScid {
		e.nextScid = scid + 1
	}
}

func sortServices(s []*Service) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1].SID > s[j].SID; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func sortSubchannels(s []*Subchannel) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1].ID > s[j].ID; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func sortComponents(s []*ServiceComponent) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1].SCId > s[j].SCId; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// Snapshot deep-copies the ensemble for handing to an event listener,
// per spec.md §9 ("Callbacks that suspend" — listeners get a snapshot,
// not a live reference).
func (e *Ensemble) Snapshot() Ensemble {
	cp := Ensemble{
		EID:           e.EID,
		Label:         e.Label,
		HasLabel:      e.HasLabel,
		ShortLabel:    e.ShortLabel,
		HasShortLabel: e.HasShortLabel,
		ALFlag:        e.ALFlag,
		ECC:           e.ECC,
		HasECC:        e.HasECC,
		AltFrequencyCount: e.AltFrequencyCount,
		services:      make(map[uint32]*Service, len(e.services)),
		subchannels:   make(map[uint8]*Subchannel, len(e.subchannels)),
	}
	for sid, svc := range e.services {
		svcCopy := &Service{
			SID: svc.SID, Label: svc.Label, HasLabel: svc.HasLabel,
			ShortLabel: svc.ShortLabel, HasShortLabel: svc.HasShortLabel,
			components: make(map[uint8]*ServiceComponent, len(svc.components)),
		}
		if svc.ProgrammeType != nil {
			pt := *svc.ProgrammeType
			svcCopy.ProgrammeType = &pt
		}
		for scid, c := range svc.components {
			cc := *c
			if c.AudioFormat != nil {
				afCopy := *c.AudioFormat
				afCopy.ASC = append([]byte(nil), c.AudioFormat.ASC...)
				cc.AudioFormat = &afCopy
			}
			cc.UserApps = append([]string(nil), c.UserApps...)
			svcCopy.components[scid] = &cc
		}
		cp.services[sid] = svcCopy
	}
	for id, sc := range e.subchannels {
		scCopy := *sc
		cp.subchannels[id] = &scCopy
	}
	return cp
}
