package pad

import "sort"

// motAssembly accumulates one MOT object's header and body segments,
// keyed by TransportId (spec.md §4.8b).
type motAssembly struct {
	headerSegs   map[uint16][]byte
	bodySegs     map[uint16][]byte
	haveHeadLast bool
	lastHeadSeg  uint16
	haveBodyLast bool
	lastBodySeg  uint16
	totalBytes   int
}

func newMOTAssembly() *motAssembly {
	return &motAssembly{
		headerSegs: make(map[uint16][]byte),
		bodySegs:   make(map[uint16][]byte),
	}
}

// add folds in one header or body segment, returning the joined header
// and body bytes once both are fully present.
func (a *motAssembly) add(seg motSegment, tel Telemetry) (header, body []byte, complete bool) {
	target := a.bodySegs
	if seg.appType == appTypeMOTHeader {
		target = a.headerSegs
	}
	if _, dup := target[seg.segNum]; !dup {
		a.totalBytes += len(seg.payload)
	}
	target[seg.segNum] = seg.payload

	if seg.appType == appTypeMOTHeader {
		if seg.last {
			a.haveHeadLast = true
			a.lastHeadSeg = seg.segNum
		}
	} else {
		if seg.last {
			a.haveBodyLast = true
			a.lastBodySeg = seg.segNum
		}
	}

	if a.totalBytes > maxMOTBytes {
		if tel != nil {
			tel.Oversize()
		}
		*a = *newMOTAssembly()
		return nil, nil, false
	}

	if !a.haveHeadLast || !a.haveBodyLast {
		return nil, nil, false
	}
	headerBytes, ok := joinSegments(a.headerSegs, a.lastHeadSeg)
	if !ok {
		return nil, nil, false
	}
	bodyBytes, ok := joinSegments(a.bodySegs, a.lastBodySeg)
	if !ok {
		return nil, nil, false
	}
	return headerBytes, bodyBytes, true
}

func joinSegments(segs map[uint16][]byte, lastSegNum uint16) ([]byte, bool) {
	for i := uint16(0); i <= lastSegNum; i++ {
		if _, ok := segs[i]; !ok {
			return nil, false
		}
	}
	nums := make([]uint16, 0, len(segs))
	for n := range segs {
		if n <= lastSegNum {
			nums = append(nums, n)
		}
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })

	var out []byte
	for _, n := range nums {
		out = append(out, segs[n]...)
	}
	return out, true
}

// motHeader is the decoded MOT header segment (ETSI EN 301 234): byte0
// = ContentType(4) ContentSubType(4); byte1 = flags
// (HasCategoryID(1) HasTriggerTime(1) unused(6)); followed by
// CategoryID (1 byte, if present), TriggerTime (4 bytes big-endian
// seconds, if present), then a length-prefixed ContentName
// (1 length byte + UTF-8 bytes).
type motHeader struct {
	ContentType    byte
	ContentSubType byte
	ContentName    string
	HasCategoryID  bool
	CategoryID     byte
	HasTriggerTime bool
	TriggerTime    uint32
}

func parseMOTHeader(d []byte) (motHeader, bool) {
	if len(d) < 2 {
		return motHeader{}, false
	}
	h := motHeader{
		ContentType:    d[0] >> 4,
		ContentSubType: d[0] & 0x0F,
	}
	flags := d[1]
	pos := 2

	if flags&0x80 != 0 {
		if pos >= len(d) {
			return motHeader{}, false
		}
		h.HasCategoryID = true
		h.CategoryID = d[pos]
		pos++
	}
	if flags&0x40 != 0 {
		if pos+4 > len(d) {
			return motHeader{}, false
		}
		h.HasTriggerTime = true
		h.TriggerTime = uint32(d[pos])<<24 | uint32(d[pos+1])<<16 | uint32(d[pos+2])<<8 | uint32(d[pos+3])
		pos += 4
	}
	if pos < len(d) {
		nameLen := int(d[pos])
		pos++
		if pos+nameLen <= len(d) {
			h.ContentName = string(d[pos : pos+nameLen])
		}
	}
	return h, true
}

const (
	motContentTypeImage = 2

	motSubTypeGIF  = 1
	motSubTypeJPEG = 2
	motSubTypeBMP  = 3
	motSubTypePNG  = 4
)

// mimetype maps a MOT header's ContentType/ContentSubType to a MIME
// type string, per spec.md §4.8b's "image/jpeg, image/png" examples.
func (h motHeader) mimetype() string {
	if h.ContentType != motContentTypeImage {
		return ""
	}
	switch h.ContentSubType {
	case motSubTypeJPEG:
		return "image/jpeg"
	case motSubTypePNG:
		return "image/png"
	case motSubTypeGIF:
		return "image/gif"
	case motSubTypeBMP:
		return "image/bmp"
	default:
		return ""
	}
}
