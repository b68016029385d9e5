package pivot

// Accumulator keeps running statistics for one directive within one group.
// The zero value is ready to use; max and min stay unset until the first Fold.
type Accumulator struct {
	Sum   int64
	Count int64

	max, min int64
	set      bool
}

// Fold adds v. It reports false, leaving a untouched, if the sum would
// overflow int64.
func (a *Accumulator) Fold(v int64) bool {
	s := a.Sum + v
	if (v > 0 && s < a.Sum) || (v < 0 && s > a.Sum) {
		return false
	}
	a.Sum = s
	a.Count++
	if !a.set {
		a.max, a.min, a.set = v, v, true
		return true
	}
	if v > a.max {
		a.max = v
	}
	if v < a.min {
		a.min = v
	}
	return true
}

// Max returns the largest folded value; ok is false before the first Fold.
func (a *Accumulator) Max() (v int64, ok bool) { return a.max, a.set }

// Min returns the smallest folded value; ok is false before the first Fold.
func (a *Accumulator) Min() (v int64, ok bool) { return a.min, a.set }

// Avg returns Sum/Count truncated toward zero; ok is false when Count is 0.
func (a *Accumulator) Avg() (v int64, ok bool) {
	if a.Count == 0 {
		return 0, false
	}
	return a.Sum / a.Count, true
}
