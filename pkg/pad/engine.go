package pad

// perScid holds one service component's PAD reassembly state.
type perScid struct {
	queue []byte

	dlText    *dlAssembly
	dlCommand *dlAssembly
	label     string
	hasLabel  bool

	mot        map[uint16]*motAssembly
	lastHashes map[uint16]string
}

func newPerScid() *perScid {
	return &perScid{
		dlText:     newDLAssembly(),
		dlCommand:  newDLAssembly(),
		mot:        make(map[uint16]*motAssembly),
		lastHashes: make(map[uint16]string),
	}
}

// Engine reassembles the X-PAD byte stream into DL/DL Plus and MOT
// slideshow events, one perScid state machine per service component.
type Engine struct {
	telemetry Telemetry
	byScid    map[uint8]*perScid
}

// NewEngine creates an empty PAD engine.
func NewEngine(tel Telemetry) *Engine {
	return &Engine{telemetry: tel, byScid: make(map[uint8]*perScid)}
}

// Reset discards all per-scid reassembly state.
func (e *Engine) Reset() {
	e.byScid = make(map[uint8]*perScid)
}

// Feed appends one AU's X-PAD tail bytes for scid and parses out any
// complete data-group segments, invoking onDL / onMOT for each
// completed Dynamic Label or MOT slideshow event.
func (e *Engine) Feed(scid uint8, xpad []byte, onDL func(DL), onMOT func(SLS)) {
	if len(xpad) == 0 {
		return
	}
	st, ok := e.byScid[scid]
	if !ok {
		st = newPerScid()
		e.byScid[scid] = st
	}
	st.queue = append(st.queue, xpad...)

	for {
		appType, ok := peekAppType(st.queue)
		if !ok {
			return
		}
		switch appType {
		case appTypeDLText, appTypeDLCommand:
			seg, consumed, ok := parseDLSegment(st.queue)
			if !ok {
				return
			}
			st.queue = st.queue[consumed:]
			e.handleDL(scid, st, seg, onDL)
		case appTypeMOTHeader, appTypeMOTBody:
			seg, consumed, ok := parseMOTSegment(st.queue)
			if !ok {
				return
			}
			st.queue = st.queue[consumed:]
			e.handleMOT(scid, st, seg, onMOT)
		default:
			// Unrecognized AppType: drop one byte and resync, since we
			// cannot know the intended frame length.
			st.queue = st.queue[1:]
		}
	}
}

func (e *Engine) handleDL(scid uint8, st *perScid, seg dlSegment, onDL func(DL)) {
	if seg.appType == appTypeDLText {
		joined, complete := st.dlText.add(seg, e.telemetry)
		if !complete {
			return
		}
		st.label = string(joined)
		st.hasLabel = true
		if onDL != nil {
			onDL(DL{SCId: scid, Label: st.label})
		}
		return
	}

	joined, complete := st.dlCommand.add(seg, e.telemetry)
	if !complete || !st.hasLabel {
		return
	}
	tags := decodeDLPlusTags(joined, st.label)
	if onDL != nil {
		onDL(DL{SCId: scid, Label: st.label, DLPlus: tags})
	}
}

func (e *Engine) handleMOT(scid uint8, st *perScid, seg motSegment, onMOT func(SLS)) {
	asm, ok := st.mot[seg.transportID]
	if !ok {
		asm = newMOTAssembly()
		st.mot[seg.transportID] = asm
	}
	headerBytes, bodyBytes, complete := asm.add(seg, e.telemetry)
	if !complete {
		return
	}
	delete(st.mot, seg.transportID)

	hdr, ok := parseMOTHeader(headerBytes)
	if !ok {
		return
	}
	mimetype := hdr.mimetype()
	if mimetype == "" {
		return
	}

	hash := hashOf(bodyBytes)
	if prior, ok := st.lastHashes[seg.transportID]; ok && prior == hash {
		if e.telemetry != nil {
			e.telemetry.MotDedupSuppressed()
		}
		return
	}
	st.lastHashes[seg.transportID] = hash

	sls := SLS{
		SCId:     scid,
		Mimetype: mimetype,
		Data:     bodyBytes,
		MD5:      hash,
		HasMD5:   true,
		Len:      len(bodyBytes),
	}
	if w, h, ok := imageDimensions(mimetype, bodyBytes); ok {
		sls.Width, sls.Height, sls.HasSize = w, h, true
	}
	if onMOT != nil {
		onMOT(sls)
	}
}
