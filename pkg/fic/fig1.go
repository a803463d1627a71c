package fic

// dispatchFIG1 decodes a FIG type 1 (label) payload: 1 header byte
// (4-bit charset, OE, 3-bit extension) followed by extension-specific
// label data.
func (p *Parser) dispatchFIG1(payload []byte) {
	if len(payload) < 1 {
		return
	}
	header := payload[0]
	charset := header >> 4
	ext := header & 0x07
	data := payload[1:]

	switch ext {
	case 0:
		p.fig1_0(data, charset)
	case 1:
		p.fig1_1(data, charset)
	case 4:
		p.fig1_4(data, charset)
	case 5:
		p.fig1_5(data, charset)
	default:
		// Unhandled extension: ignored silently.
	}
}

// decodeLabel renders 16 raw label bytes per the charset selector.
// Charset 0 is EBU Latin, 15 is UTF-8; any other value is unknown and
// is rendered as '?' for every non-0x00 byte (0x00 padding bytes are
// dropped, as for the other charsets).
func (p *Parser) decodeLabel(raw []byte, charset byte) string {
	switch charset {
	case 0:
		return DecodeEBULatin(raw)
	case 15:
		trimmed := raw
		for len(trimmed) > 0 && trimmed[len(trimmed)-1] == 0x00 {
			trimmed = trimmed[:len(trimmed)-1]
		}
		return string(trimmed)
	default:
		if p.telemetry != nil {
			p.telemetry.UnknownCharset()
		}
		runes := make([]rune, 0, len(raw))
		for _, c := range raw {
			if c == 0x00 {
				continue
			}
			runes = append(runes, '?')
		}
		return string(runes)
	}
}

// shortLabelFromMask picks the characters of a 16-character label the
// 16-bit character-flag field marks for the abbreviated form: bit 15
// (MSB) corresponds to label[0], bit 0 to label[15].
func shortLabelFromMask(label []rune, mask uint16) string {
	var out []rune
	for i := 0; i < len(label) && i < 16; i++ {
		bit := uint(15 - i)
		if mask&(1<<bit) != 0 {
			out = append(out, label[i])
		}
	}
	return string(out)
}

func labelRunes(raw []byte, charset byte, p *Parser) []rune {
	decoded := p.decodeLabel(raw, charset)
	runes := []rune(decoded)
	// decodeLabel trims trailing 0x00 padding; pad back out to 16 so
	// the bitmask in the trailer indexes consistently.
	for len(runes) < 16 {
		runes = append(runes, ' ')
	}
	return runes
}

// trimLabel strips the trailing space padding a 16-character label
// field carries on the wire (spec.md §8 seed scenario 1: the emitted
// label is "DIG D04 - WS", not the padded 16-character field). The
// full, untrimmed runes are still used for the short-label bitmask,
// which indexes into all 16 positions regardless of trailing blanks.
func trimLabel(runes []rune) string {
	end := len(runes)
	for end > 0 && runes[end-1] == ' ' {
		end--
	}
	return string(runes[:end])
}

// fig1_0: ensemble label.
func (p *Parser) fig1_0(d []byte, charset byte) {
	if len(d) < 20 {
		return
	}
	raw := d[2:18]
	mask := uint16(d[18])<<8 | uint16(d[19])

	runes := labelRunes(raw, charset, p)
	label := trimLabel(runes)
	short := trimLabel([]rune(shortLabelFromMask(runes, mask)))

	changed := false
	if p.ensemble.Label != label {
		p.ensemble.Label = label
		p.ensemble.HasLabel = true
		changed = true
	}
	if p.ensemble.ShortLabel != short {
		p.ensemble.ShortLabel = short
		p.ensemble.HasShortLabel = true
		changed = true
	}
	if changed {
		p.markDirty()
	}
}

// fig1_1: programme service label.
func (p *Parser) fig1_1(d []byte, charset byte) {
	if len(d) < 20 {
		return
	}
	sid := uint32(d[0])<<8 | uint32(d[1])
	raw := d[2:18]
	mask := uint16(d[18])<<8 | uint16(d[19])

	runes := labelRunes(raw, charset, p)
	label := trimLabel(runes)
	short := trimLabel([]rune(shortLabelFromMask(runes, mask)))

	svc := p.ensemble.serviceOrCreate(sid)
	changed := false
	if svc.Label != label {
		svc.Label = label
		svc.HasLabel = true
		changed = true
	}
	if svc.ShortLabel != short {
		svc.ShortLabel = short
		svc.HasShortLabel = true
		changed = true
	}
	if changed {
		p.markDirty()
	}
}

// fig1_4: service-component label, keyed by (SID, SCIdS).
func (p *Parser) fig1_4(d []byte, charset byte) {
	if len(d) < 21 {
		return
	}
	sid := uint32(d[0])<<8 | uint32(d[1])
	scidS := d[2] & 0x0F
	raw := d[3:19]

	label := trimLabel([]rune(p.decodeLabel(raw, charset)))

	scid := p.ensemble.scidFor(sid, scidS)
	svc := p.ensemble.serviceOrCreate(sid)
	comp, ok := svc.components[scid]
	if !ok {
		comp = &ServiceComponent{SCId: scid}
		svc.components[scid] = comp
	}
	if comp.Label != label {
		comp.Label = label
		comp.HasLabel = true
		p.markDirty()
	}
}

// fig1_5: data-service label (32-bit SId).
func (p *Parser) fig1_5(d []byte, charset byte) {
	if len(d) < 22 {
		return
	}
	sid := uint32(d[0])<<24 | uint32(d[1])<<16 | uint32(d[2])<<8 | uint32(d[3])
	raw := d[4:20]
	mask := uint16(d[20])<<8 | uint16(d[21])

	runes := labelRunes(raw, charset, p)
	label := trimLabel(runes)
	short := trimLabel([]rune(shortLabelFromMask(runes, mask)))

	svc := p.ensemble.serviceOrCreate(sid)
	changed := false
	if svc.Label != label {
		svc.Label = label
		svc.HasLabel = true
		changed = true
	}
	if svc.ShortLabel != short {
		svc.ShortLabel = short
		svc.HasShortLabel = true
		changed = true
	}
	if changed {
		p.markDirty()
	}
}
