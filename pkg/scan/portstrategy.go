package scan

import (
	"math/rand"
)

// Order selects whether ports are visited ascending or permuted.
type Order int

const (
	Serial Order = iota
	Random
)

// Strategy produces the ordered port sequence a scan will visit.
type Strategy interface {
	Order() []uint16
}

// Pick chooses a Strategy the way the original scanner does: when hasRange
// is set the range is used and ports is ignored, otherwise the explicit
// port list is used; order selects serial vs random within that source.
func Pick(rangeStart, rangeEnd uint16, hasRange bool, ports []uint16, order Order) Strategy {
	switch {
	case order == Serial && !hasRange:
		return manual{ports: ports}
	case order == Random && !hasRange:
		shuffled := append([]uint16(nil), ports...)
		rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		return manual{ports: shuffled}
	case order == Serial:
		return SerialRange{Start: rangeStart, End: rangeEnd}
	default:
		return RandomRange{Start: rangeStart, End: rangeEnd}
	}
}

type manual struct {
	ports []uint16
}

func (m manual) Order() []uint16 { return m.ports }

// SerialRange yields start..end ascending.
type SerialRange struct {
	Start, End uint16
}

func (r SerialRange) Order() []uint16 {
	out := make([]uint16, 0, int(r.End)-int(r.Start)+1)
	for p := int(r.Start); p <= int(r.End); p++ {
		out = append(out, uint16(p))
	}
	return out
}

// RandomRange yields a full-period permutation of start..end produced by
// a Linear Congruential Generator walk, so the whole range never needs
// materializing or sorting to shuffle.
type RandomRange struct {
	Start, End uint16
}

func (r RandomRange) Order() []uint16 {
	n := uint32(r.End) - uint32(r.Start) + 1
	out := make([]uint16, 0, n)
	if n == 0 {
		return out
	}
	start := uint32(r.Start)
	step := pickCoprimeStep(n)
	firstPick := uint32(rand.Int63n(int64(n)))
	pick := firstPick
	for {
		out = append(out, uint16(start+pick))
		next := (pick + step) % n
		if next == firstPick {
			break
		}
		pick = next
	}
	return out
}

// pickCoprimeStep chooses a step coprime with n, drawn from the middle
// half of the range [n/4, n-n/4) to avoid degenerate short cycles near
// the boundaries. Falls back to n-1, always coprime with n, after 10
// failed draws.
func pickCoprimeStep(n uint32) uint32 {
	if n <= 1 {
		return 1
	}
	boundary := n / 4
	lower := boundary
	upper := n - boundary
	if upper <= lower {
		return n - 1
	}
	for i := 0; i < 10; i++ {
		candidate := lower + uint32(rand.Int63n(int64(upper-lower)))
		if gcd(n, candidate) == 1 {
			return candidate
		}
	}
	return n - 1
}

func gcd(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// filterExcluded removes excluded ports, preserving order.
func filterExcluded(ports []uint16, excluded map[uint16]struct{}) []uint16 {
	if len(excluded) == 0 {
		return ports
	}
	out := make([]uint16, 0, len(ports))
	for _, p := range ports {
		if _, skip := excluded[p]; skip {
			continue
		}
		out = append(out, p)
	}
	return out
}
