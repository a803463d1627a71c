package pad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func encodeDLSegment(appType byte, toggle, first, last bool, segNum uint8, payload []byte) []byte {
	b0 := appType << 3
	if toggle {
		b0 |= 0x04
	}
	if first {
		b0 |= 0x02
	}
	if last {
		b0 |= 0x01
	}
	out := []byte{b0, segNum, byte(len(payload) >> 8), byte(len(payload))}
	return append(out, payload...)
}

func TestEngine_DLTextJoinsInOrder(t *testing.T) {
	e := NewEngine(nil)
	parts := []string{"ARTBAT - ", "Love is Gonna ", "Save Us"}

	var got DL
	var got2 int
	for i, p := range parts {
		seg := encodeDLSegment(appTypeDLText, false, i == 0, i == len(parts)-1, uint8(i), []byte(p))
		e.Feed(7, seg, func(dl DL) { got = dl; got2++ }, nil)
	}

	assert.Equal(t, 1, got2, "expected exactly one DlObject emitted")
	assert.Equal(t, "ARTBAT - Love is Gonna Save Us", got.Label)
}

func TestEngine_DLTextReorderedYieldsSameLabel(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		parts := []string{"Hello ", "Rapid ", "World ", "Reordered"}
		segs := make([][]byte, len(parts))
		for i, p := range parts {
			segs[i] = encodeDLSegment(appTypeDLText, false, i == 0, i == len(parts)-1, uint8(i), []byte(p))
		}
		indices := make([]int, len(segs))
		for i := range indices {
			indices[i] = i
		}
		order := rapid.Permutation(indices).Draw(rt, "order")

		e := NewEngine(nil)
		var got DL
		count := 0
		for _, idx := range order {
			e.Feed(1, segs[idx], func(dl DL) { got = dl; count++ }, nil)
		}

		assert.Equal(rt, 1, count)
		assert.Equal(rt, "Hello Rapid World Reordered", got.Label)
	})
}

func TestEngine_DLToggleFlipDiscardsPartial(t *testing.T) {
	e := NewEngine(nil)
	seg0 := encodeDLSegment(appTypeDLText, false, true, false, 0, []byte("partial-"))
	e.Feed(1, seg0, func(dl DL) { t.Fatal("should not emit yet") }, nil)

	var got DL
	got.Label = ""
	flipped := encodeDLSegment(appTypeDLText, true, true, true, 0, []byte("complete"))
	e.Feed(1, flipped, func(dl DL) { got = dl }, nil)

	assert.Equal(t, "complete", got.Label)
}

func TestEngine_DLPlusTagsSliceIntoLabel(t *testing.T) {
	e := NewEngine(nil)
	label := "ARTBAT - Love is Gonna Save Us"
	lblSeg := encodeDLSegment(appTypeDLText, false, true, true, 0, []byte(label))
	e.Feed(3, lblSeg, func(DL) {}, nil)

	// tags: ITEM.ARTIST at [0,6), ITEM.TITLE at [9,30)
	tagBytes := []byte{
		0x02, // ItemToggle/Running clear, NumTags=2
		4, 0, 6,
		1, 9, 21,
	}
	cmdSeg := encodeDLSegment(appTypeDLCommand, false, true, true, 0, tagBytes)

	var got DL
	e.Feed(3, cmdSeg, func(dl DL) { got = dl }, nil)

	assert.Len(t, got.DLPlus, 2)
	for _, tag := range got.DLPlus {
		slice := got.Label[tag.Start : tag.Start+tag.Length]
		assert.NotEmpty(t, slice)
		switch tag.Kind {
		case "ITEM.ARTIST":
			assert.Equal(t, "ARTBAT", slice)
		case "ITEM.TITLE":
			assert.Equal(t, "Love is Gonna Save Us", slice)
		}
	}
}
