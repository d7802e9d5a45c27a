package scan

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerialRangeAscending(t *testing.T) {
	got := SerialRange{Start: 1, End: 100}.Order()
	want := make([]uint16, 0, 100)
	for p := 1; p <= 100; p++ {
		want = append(want, uint16(p))
	}
	assert.Equal(t, want, got)
}

func TestRandomRangeIsPermutation(t *testing.T) {
	for _, n := range []struct{ start, end uint16 }{{1, 10}, {1, 1000}, {1000, 2000}} {
		got := RandomRange{Start: n.start, End: n.end}.Order()
		want := make([]uint16, 0)
		for p := int(n.start); p <= int(n.end); p++ {
			want = append(want, uint16(p))
		}
		sortedGot := append([]uint16(nil), got...)
		sort.Slice(sortedGot, func(i, j int) bool { return sortedGot[i] < sortedGot[j] })
		assert.Equal(t, want, sortedGot)
		assert.Len(t, got, len(want))
	}
}

func TestRandomRangeIsShuffled(t *testing.T) {
	got := RandomRange{Start: 1, End: 100}.Order()
	want := make([]uint16, 0, 100)
	for p := 1; p <= 100; p++ {
		want = append(want, uint16(p))
	}
	assert.NotEqual(t, want, got)
}

func TestPickManualSerial(t *testing.T) {
	strategy := Pick(0, 0, false, []uint16{80, 443}, Serial)
	assert.Equal(t, []uint16{80, 443}, strategy.Order())
}

func TestPickManualRandomIsPermutation(t *testing.T) {
	ports := []uint16{1, 2, 3, 4, 5, 6, 7, 8, 9}
	strategy := Pick(0, 0, false, ports, Random)
	got := strategy.Order()
	sortedGot := append([]uint16(nil), got...)
	sort.Slice(sortedGot, func(i, j int) bool { return sortedGot[i] < sortedGot[j] })
	assert.Equal(t, ports, sortedGot)
}

func TestFilterExcludedPreservesOrder(t *testing.T) {
	ports := []uint16{80, 443, 22, 8080}
	excluded := map[uint16]struct{}{443: {}}
	assert.Equal(t, []uint16{80, 22, 8080}, filterExcluded(ports, excluded))
}
