package fic

// ebuLatin maps the EBU Latin based repertoire (ETSI TS 101 756 §5.2,
// character-set selector 0) to Unicode code points. Bytes 0x20-0x7E
// match ASCII; the upper half carries Western-European accented
// letters. Control bytes and unassigned positions map to the
// replacement character, matching the "unknown selector" fallback
// spec.md §4.5 specifies for *charsets*, reused here for unassigned
// *codepoints* within the known EBU Latin charset.
var ebuLatin = buildEBULatinTable()

func buildEBULatinTable() [256]rune {
	var t [256]rune
	for i := 0; i < 256; i++ {
		t[i] = '?'
	}
	for i := 0x20; i <= 0x7E; i++ {
		t[i] = rune(i)
	}

	// A representative subset of the upper-half EBU Latin repertoire
	// (accented Western-European letters used by ensemble/service
	// labels in practice).
	upper := map[byte]rune{
		0xC0: 'à', 0xC1: 'á', 0xC2: 'â', 0xC3: 'ã', 0xC4: 'ä', 0xC5: 'å',
		0xC6: 'æ', 0xC7: 'ç', 0xC8: 'è', 0xC9: 'é', 0xCA: 'ê', 0xCB: 'ë',
		0xCC: 'ì', 0xCD: 'í', 0xCE: 'î', 0xCF: 'ï',
		0xD1: 'ñ', 0xD2: 'ò', 0xD3: 'ó', 0xD4: 'ô', 0xD5: 'õ', 0xD6: 'ö',
		0xD8: 'ø', 0xD9: 'ù', 0xDA: 'ú', 0xDB: 'û', 0xDC: 'ü', 0xDD: 'ý',
		0xDF: 'ß',
		0xE0: 'À', 0xE1: 'Á', 0xE2: 'Â', 0xE3: 'Ã', 0xE4: 'Ä', 0xE5: 'Å',
		0xE6: 'Æ', 0xE7: 'Ç', 0xE8: 'È', 0xE9: 'É', 0xEA: 'Ê', 0xEB: 'Ë',
		0xEC: 'Ì', 0xED: 'Í', 0xEE: 'Î', 0xEF: 'Ï',
		0xF1: 'Ñ', 0xF2: 'Ò', 0xF3: 'Ó', 0xF4: 'Ô', 0xF5: 'Õ', 0xF6: 'Ö',
		0xF8: 'Ø', 0xF9: 'Ù', 0xFA: 'Ú', 0xFB: 'Û', 0xFC: 'Ü', 0xFD: 'Ý',
	}
	for b, r := range upper {
		t[b] = r
	}
	return t
}

// DecodeEBULatin converts EBU-Latin-encoded bytes to a Go string,
// dropping the 0x00 padding bytes FIG 1 labels use (a 0x00 byte is
// dropped wherever it occurs, not only at the end).
func DecodeEBULatin(b []byte) string {
	runes := make([]rune, 0, len(b))
	for _, c := range b {
		if c == 0x00 {
			continue
		}
		runes = append(runes, ebuLatin[c])
	}
	return string(runes)
}
