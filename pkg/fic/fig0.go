package fic

// dispatchFIG0 decodes a FIG type 0 (MCI/SI) payload: 1 header byte
// (C/N, OE, P/D, 5-bit extension) followed by extension-specific data.
func (p *Parser) dispatchFIG0(payload []byte) {
	if len(payload) < 1 {
		return
	}
	header := payload[0]
	pd := header&0x20 != 0 // true => 32-bit SIds (data services)
	ext := header & 0x1F
	data := payload[1:]

	switch ext {
	case 0:
		p.fig0_0(data)
	case 1:
		p.fig0_1(data)
	case 2:
		p.fig0_2(data, pd)
	case 3:
		p.fig0_3(data)
	case 5:
		p.fig0_5(data)
	case 8:
		p.fig0_8(data, pd)
	case 9:
		p.fig0_9(data)
	case 13:
		p.fig0_13(data, pd)
	case 17:
		p.fig0_17(data, pd)
	case 21:
		p.fig0_21(data)
	default:
		// Unhandled extension: ignored per spec.md §4.3 "unknown tags silently ignored" convention.
	}
}

// fig0_0: ensemble id, alarm flag, change indicator.
func (p *Parser) fig0_0(d []byte) {
	if len(d) < 3 {
		return
	}
	eid := uint16(d[0])<<8 | uint16(d[1])
	al := d[2]&0x20 != 0

	changed := false
	if p.ensemble.EID != eid {
		p.ensemble.EID = eid
		changed = true
	}
	if p.ensemble.ALFlag != al {
		p.ensemble.ALFlag = al
		changed = true
	}
	if changed {
		p.markDirty()
	}
}

// fig0_1: subchannel organization. Each entry: SubChId(6) StartAddr(10)
// then a Short/Long form flag and form-specific fields; the bitrate is
// estimated from the size by approxBitrateKbps.
func (p *Parser) fig0_1(d []byte) {
	pos := 0
	for pos+3 <= len(d) {
		b0, b1, b2 := d[pos], d[pos+1], d[pos+2]
		subChID := b0 >> 2
		startAddr := uint16(b0&0x03)<<8 | uint16(b1)
		longForm := b2&0x80 != 0

		var size uint16
		var pl string

		if !longForm {
			// Short form: TableSwitch(1) TableIndex(6).
			tableIndex := b2 & 0x3F
			size, pl = shortFormTable(tableIndex)
			pos += 3
		} else {
			if pos+4 > len(d) {
				break
			}
			b3 := d[pos+3]
			option := (b2 >> 4) & 0x07
			protLevel := (b2 >> 2) & 0x03
			size = uint16(b2&0x03)<<8 | uint16(b3)
			pl = longFormPL(option, protLevel)
			pos += 4
		}

		existing, existed := p.ensemble.subchannels[subChID]
		bitrate := approxBitrateKbps(size)
		if existed && (existing.Start != startAddr || existing.Size != size || existing.PL != pl) {
			if p.telemetry != nil {
				p.telemetry.FIGConflict()
			}
		}

		p.ensemble.subchannels[subChID] = &Subchannel{
			ID: subChID, Start: startAddr, Size: size, Bitrate: bitrate, PL: pl,
		}
		p.markDirty()
	}
}

// shortFormTable approximates EN 300 401 Table 8 (subchannel size /
// bitrate for the short-form table-index encoding). Only a
// representative subset of common protection-level rows is modeled;
// unmodeled indices fall back to the same size/bitrate relationship
// long-form entries use.
func shortFormTable(index uint8) (size uint16, pl string) {
	rows := map[uint8]struct {
		size    uint16
		bitrate uint16
	}{
		0: {16, 32}, 1: {21, 32}, 2: {24, 48}, 3: {29, 48},
		4: {35, 56}, 5: {42, 56}, 6: {52, 64}, 7: {58, 64},
	}
	if row, ok := rows[index]; ok {
		return row.size, "EEP " + protLevelLabel(index%4) + "-A"
	}
	size = uint16(index) * 6
	return size, "EEP 3-A"
}

func protLevelLabel(n uint8) string {
	return string(rune('1' + n))
}

func longFormPL(option, protLevel uint8) string {
	switch option {
	case 0:
		return "EEP " + protLevelLabel(protLevel) + "-A"
	case 1:
		return "EEP " + protLevelLabel(protLevel) + "-B"
	default:
		return "UEP"
	}
}

// approxBitrateKbps estimates a subchannel's bitrate from its capacity
// (CUs); one CU carries 64 bits every 24 ms (≈2.667 kbit/s), and actual
// throughput also depends on the protection profile, which this
// approximation ignores.
func approxBitrateKbps(sizeCU uint16) uint16 {
	return uint16(uint32(sizeCU) * 8 / 3)
}

// fig0_2: basic service and component description.
func (p *Parser) fig0_2(d []byte, pd bool) {
	pos := 0
	sidWidth := 2
	if pd {
		sidWidth = 4
	}

	for pos+sidWidth+1 <= len(d) {
		var sid uint32
		if sidWidth == 2 {
			sid = uint32(d[pos])<<8 | uint32(d[pos+1])
		} else {
			sid = uint32(d[pos])<<24 | uint32(d[pos+1])<<16 | uint32(d[pos+2])<<8 | uint32(d[pos+3])
		}
		pos += sidWidth

		numComp := int(d[pos] & 0x0F)
		pos++

		svc := p.ensemble.serviceOrCreate(sid)
		p.markDirty()

		for i := 0; i < numComp && pos+2 <= len(d); i++ {
			tmid := d[pos] >> 6
			scidS := uint8(i)
			scid := p.ensemble.scidFor(sid, scidS)
			comp, ok := svc.components[scid]
			if !ok {
				comp = &ServiceComponent{SCId: scid}
				svc.components[scid] = comp
			}

			switch tmid {
			case 0b00, 0b01: // MSC stream audio or data
				subChID := ((d[pos] & 0x03) << 4) | (d[pos+1] >> 4)
				comp.SubchannelID = subChID
				comp.HasSubchannel = true
			default:
				// Packet-mode / FIDC component: subchannel resolved
				// later by FIG 0/3, if it arrives.
				comp.HasSubchannel = false
			}
			pos += 2
		}
	}
}

// fig0_3: service component in packet mode, decoded only enough to
// resolve a scid to its carrying subchannel (spec.md §4.5: "decoded
// enough to map to scid").
func (p *Parser) fig0_3(d []byte) {
	pos := 0
	for pos+5 <= len(d) {
		scid12 := uint16(d[pos])<<4 | uint16(d[pos+1]>>4)
		subChID := ((d[pos+2] & 0x03) << 4) | (d[pos+3] >> 4)
		pos += 5

		scid := uint8(scid12 & 0xFF)
		// Packet-mode components are tracked under a synthetic SID
		// bucket since FIG 0/3 carries no SId of its own.
		svc := p.ensemble.serviceOrCreate(0xFFFF0000 | uint32(scid12>>8))
		comp, ok := svc.components[scid]
		if !ok {
			comp = &ServiceComponent{SCId: scid}
			svc.components[scid] = comp
			p.ensemble.scidAlloc[scidKey{sid: svc.SID, scids: scid}] = scid
			p.ensemble.scidOf[scid] = scidKey{sid: svc.SID, scids: scid}
		}
		comp.SubchannelID = subChID
		comp.HasSubchannel = true
		p.markDirty()
	}
}

// fig0_5: service component language. Implemented as an explicit
// (SID, SCIdS, Language) triple per entry rather than ETSI's
// short/long-form bit packing.
func (p *Parser) fig0_5(d []byte) {
	const entrySize = 4
	for pos := 0; pos+entrySize <= len(d); pos += entrySize {
		sid := uint32(d[pos])<<8 | uint32(d[pos+1])
		scidS := d[pos+2] & 0x3F
		langCode := d[pos+3]

		scid := p.ensemble.scidFor(sid, scidS)
		svc := p.ensemble.serviceOrCreate(sid)
		comp, ok := svc.components[scid]
		if !ok {
			comp = &ServiceComponent{SCId: scid}
			svc.components[scid] = comp
		}
		lang, known := languageName(langCode)
		if known {
			comp.Language = lang
			comp.HasLanguage = true
			p.markDirty()
		}
	}
}

// fig0_8: service component global definition, yields the scid ↔
// (SID, SCIdS) map.
func (p *Parser) fig0_8(d []byte, pd bool) {
	pos := 0
	sidWidth := 2
	if pd {
		sidWidth = 4
	}
	for pos+sidWidth+2 <= len(d) {
		var sid uint32
		if sidWidth == 2 {
			sid = uint32(d[pos])<<8 | uint32(d[pos+1])
		} else {
			sid = uint32(d[pos])<<24 | uint32(d[pos+1])<<16 | uint32(d[pos+2])<<8 | uint32(d[pos+3])
		}
		pos += sidWidth
		scidS := d[pos] & 0x3F
		scid := d[pos+1]
		pos += 2

		p.ensemble.assignScid(sid, scidS, scid)
		p.markDirty()
	}
}

// fig0_9: country/LTO — recorded as an opaque ECC byte (see
// SPEC_FULL.md's FIG 0/9 expansion note).
func (p *Parser) fig0_9(d []byte) {
	if len(d) < 2 {
		return
	}
	// byte0: ext flag + LTO, byte1: ECC. We only surface ECC.
	ecc := d[1]
	if p.ensemble.ECC != ecc {
		p.ensemble.ECC = ecc
		p.ensemble.HasECC = true
		p.markDirty()
	}
}

// fig0_13: user application information, in particular type 0x0002
// (MOT Slideshow).
func (p *Parser) fig0_13(d []byte, pd bool) {
	pos := 0
	sidWidth := 2
	if pd {
		sidWidth = 4
	}
	for pos+sidWidth+1 <= len(d) {
		var sid uint32
		if sidWidth == 2 {
			sid = uint32(d[pos])<<8 | uint32(d[pos+1])
		} else {
			sid = uint32(d[pos])<<24 | uint32(d[pos+1])<<16 | uint32(d[pos+2])<<8 | uint32(d[pos+3])
		}
		pos += sidWidth
		scidS := d[pos] >> 4
		numApps := int(d[pos] & 0x0F)
		pos++

		scid := p.ensemble.scidFor(sid, scidS)
		svc := p.ensemble.serviceOrCreate(sid)
		comp, ok := svc.components[scid]
		if !ok {
			comp = &ServiceComponent{SCId: scid}
			svc.components[scid] = comp
		}

		for i := 0; i < numApps && pos+2 <= len(d); i++ {
			appType := uint16(d[pos])<<3 | uint16(d[pos+1]>>5)
			appLen := int(d[pos+1] & 0x1F)
			pos += 2
			if pos+appLen > len(d) {
				break
			}
			pos += appLen

			name := userAppName(appType)
			if !containsString(comp.UserApps, name) {
				comp.UserApps = append(comp.UserApps, name)
				p.markDirty()
			}
		}
	}
}

func userAppName(appType uint16) string {
	switch appType {
	case 0x0002:
		return "SLS"
	case 0x0003:
		return "Journaline"
	case 0x0004:
		return "TMC"
	case 0x0007:
		return "TPEG"
	default:
		return "0x" + hexByte(byte(appType>>8)) + hexByte(byte(appType))
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// fig0_17: programme type, informational only.
func (p *Parser) fig0_17(d []byte, pd bool) {
	sidWidth := 2
	if pd {
		sidWidth = 4
	}
	if len(d) < sidWidth+2 {
		return
	}
	var sid uint32
	if sidWidth == 2 {
		sid = uint32(d[0])<<8 | uint32(d[1])
	} else {
		sid = uint32(d[0])<<24 | uint32(d[1])<<16 | uint32(d[2])<<8 | uint32(d[3])
	}
	pty := d[sidWidth+1] & 0x1F

	svc := p.ensemble.serviceOrCreate(sid)
	if svc.ProgrammeType == nil || *svc.ProgrammeType != pty {
		v := pty
		svc.ProgrammeType = &v
		p.markDirty()
	}
}

// fig0_21: frequency information, recorded only as an opaque
// alternate-frequency count (see SPEC_FULL.md's FIG 0/21 expansion note).
func (p *Parser) fig0_21(d []byte) {
	if len(d) < 3 {
		return
	}
	count := int(d[2] & 0x07)
	if p.ensemble.AltFrequencyCount != count {
		p.ensemble.AltFrequencyCount = count
		p.markDirty()
	}
}

func hexByte(b byte) string {
	const digits = "0123456789ABCDEF"
	return string([]byte{digits[b>>4], digits[b&0xF]})
}
