package fic

// languageName maps the ETSI TS 101 756 Table 9 language codes used by
// FIG 0/5 to their common names. Unlisted codes are reported unknown
// rather than guessed at.
func languageName(code byte) (string, bool) {
	names := map[byte]string{
		0x08: "English",
		0x09: "German",
		0x0A: "Spanish",
		0x0F: "French",
		0x15: "Italian",
		0x18: "Dutch",
		0x1B: "Polish",
		0x1E: "Swedish",
		0x24: "Czech",
		0x2B: "Hungarian",
		0x2C: "Norwegian",
		0x3A: "Danish",
		0x3F: "Finnish",
		0x57: "Welsh",
	}
	name, ok := names[code]
	return name, ok
}
