package pad

import (
	"crypto/md5"
	"encoding/hex"
)

// imageDimensions parses a JPEG or PNG's magic bytes for its pixel
// dimensions without pulling in an image decoder (spec.md §4.8b:
// "no external decoder").
func imageDimensions(mimetype string, data []byte) (width, height int, ok bool) {
	switch mimetype {
	case "image/jpeg":
		return jpegDimensions(data)
	case "image/png":
		return pngDimensions(data)
	default:
		return 0, 0, false
	}
}

// jpegDimensions scans JPEG markers for the first SOFn (start of
// frame) segment and reads its height/width fields.
func jpegDimensions(data []byte) (width, height int, ok bool) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, 0, false
	}
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			pos++
			continue
		}
		marker := data[pos+1]
		if marker == 0xD8 || marker == 0xD9 || (marker >= 0xD0 && marker <= 0xD7) {
			pos += 2
			continue
		}
		segLen := int(data[pos+2])<<8 | int(data[pos+3])
		if segLen < 2 || pos+2+segLen > len(data) {
			return 0, 0, false
		}
		isSOF := marker >= 0xC0 && marker <= 0xCF && marker != 0xC4 && marker != 0xC8 && marker != 0xCC
		if isSOF {
			seg := data[pos+4:]
			if len(seg) < 5 {
				return 0, 0, false
			}
			h := int(seg[1])<<8 | int(seg[2])
			w := int(seg[3])<<8 | int(seg[4])
			return w, h, true
		}
		pos += 2 + segLen
	}
	return 0, 0, false
}

// pngDimensions reads the fixed-offset width/height fields of a PNG's
// leading IHDR chunk.
func pngDimensions(data []byte) (width, height int, ok bool) {
	sig := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	if len(data) < 8+8+8 {
		return 0, 0, false
	}
	for i, b := range sig {
		if data[i] != b {
			return 0, 0, false
		}
	}
	if string(data[12:16]) != "IHDR" {
		return 0, 0, false
	}
	w := int(data[16])<<24 | int(data[17])<<16 | int(data[18])<<8 | int(data[19])
	h := int(data[20])<<24 | int(data[21])<<16 | int(data[22])<<8 | int(data[23])
	return w, h, true
}

// hashOf computes the stable MD5 fingerprint spec.md §4.8b calls for
// ("a stable fingerprint for host-side dedup").
func hashOf(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
