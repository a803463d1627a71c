package pad

import (
	"sort"
	"strconv"
)

// dlAssembly accumulates one generation of DL (or DL Plus command)
// segments, discarding and restarting on a toggle flip mid-assembly
// (spec.md §4.8a).
type dlAssembly struct {
	started    bool
	toggle     bool
	segments   map[uint8][]byte
	haveLast   bool
	lastSegNum uint8
	totalBytes int
}

func newDLAssembly() *dlAssembly {
	return &dlAssembly{segments: make(map[uint8][]byte)}
}

// add folds in one segment, returning the joined payload once the
// generation is complete (every segment 0..lastSegNum present and a
// Last-flagged segment has been seen).
func (a *dlAssembly) add(seg dlSegment, tel Telemetry) (joined []byte, complete bool) {
	if !a.started {
		a.reset(seg.toggle)
	} else if seg.toggle != a.toggle {
		a.reset(seg.toggle)
	}

	if _, dup := a.segments[seg.segNum]; !dup {
		a.totalBytes += len(seg.payload)
	}
	a.segments[seg.segNum] = seg.payload
	if seg.last {
		a.haveLast = true
		a.lastSegNum = seg.segNum
	}

	if a.totalBytes > maxDLBytes {
		if tel != nil {
			tel.Oversize()
		}
		a.reset(seg.toggle)
		return nil, false
	}

	if !a.haveLast {
		return nil, false
	}
	for i := uint8(0); i <= a.lastSegNum; i++ {
		if _, ok := a.segments[i]; !ok {
			return nil, false
		}
	}

	nums := make([]uint8, 0, len(a.segments))
	for n := range a.segments {
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })

	out := make([]byte, 0, a.totalBytes)
	for _, n := range nums {
		if n > a.lastSegNum {
			continue
		}
		out = append(out, a.segments[n]...)
	}
	a.segments = make(map[uint8][]byte)
	a.haveLast = false
	a.lastSegNum = 0
	a.totalBytes = 0
	a.started = false
	return out, true
}

func (a *dlAssembly) reset(toggle bool) {
	a.started = true
	a.toggle = toggle
	a.segments = make(map[uint8][]byte)
	a.haveLast = false
	a.lastSegNum = 0
	a.totalBytes = 0
}

// decodeDLPlusTags parses the DL Plus command payload (spec.md §4.8a:
// "parse content-type tags (content_type, start, length) against the
// text"). Payload layout: byte0 = ItemToggle(1) ItemRunning(1)
// NumTags(6), then NumTags * 3-byte tags (ContentType, Start, Length).
func decodeDLPlusTags(payload []byte, label string) []DlPlusTag {
	if len(payload) < 1 {
		return nil
	}
	numTags := int(payload[0] & 0x3F)
	tags := make([]DlPlusTag, 0, numTags)
	pos := 1
	for i := 0; i < numTags && pos+3 <= len(payload); i++ {
		contentType := payload[pos]
		start := int(payload[pos+1])
		length := int(payload[pos+2])
		pos += 3

		if start < 0 || length <= 0 || start+length > len(label) {
			continue
		}
		tags = append(tags, DlPlusTag{
			Kind:   dlPlusContentTypeName(contentType),
			Start:  start,
			Length: length,
		})
	}
	return tags
}

// dlPlusContentTypeName maps a subset of the ETSI TS 102 980 Annex A
// content-type table to its name. Codes outside this subset render as
// a numeric fallback rather than a guessed name.
func dlPlusContentTypeName(code byte) string {
	names := map[byte]string{
		1:  "ITEM.TITLE",
		2:  "ITEM.ALBUM",
		3:  "ITEM.TRACKNUMBER",
		4:  "ITEM.ARTIST",
		5:  "ITEM.COMPOSITION",
		6:  "ITEM.MOVEMENT",
		7:  "ITEM.CONDUCTOR",
		8:  "ITEM.COMPOSER",
		9:  "ITEM.BAND",
		10: "ITEM.COMMENT",
		11: "ITEM.GENRE",
		12: "INFO.NEWS",
		13: "INFO.NEWS.LOCAL",
		14: "INFO.SPORT",
		15: "INFO.WEATHER",
		16: "INFO.TRAFFIC",
	}
	if name, ok := names[code]; ok {
		return name
	}
	return "UNKNOWN." + strconv.Itoa(int(code))
}
