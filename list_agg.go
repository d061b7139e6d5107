package corsair

import (
	"math"
	"sort"
)

// ============================================================================
// Aggregation Operations
// ============================================================================
//
// Each row reduces to one scalar. A null row always yields a null output.
// Null elements are skipped by every reduction; an empty (or all-null-
// element) row yields the reduction identity for sum and null for the
// reductions that have no identity. Output dtypes come from the static
// promotion tables in dtype.go.

// Sum reduces each row to the sum of its elements. Narrow integers widen
// per sumResultType so row sums cannot overflow; Bool rows count their true
// elements into UInt32. An empty non-null row sums to zero.
func (l *ListSeries) Sum() (*Series, error) {
	elem := l.values.DType()
	outType, ok := sumResultType[elem]
	if !ok {
		return nil, invalidOperationErrorf("list.sum not supported for dtype %s", l.listType)
	}

	b := newSeriesBuilder(outType, l.values.Unit(), nil, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNull()
			continue
		}
		start, end := l.rowBounds(i)
		switch elem.physical() {
		case physBool:
			var count int64
			for j := start; j < end; j++ {
				if l.values.IsValid(j) && l.values.Bools()[j] {
					count++
				}
			}
			b.appendInt(count)
		case physInt:
			var sum int64
			for j := start; j < end; j++ {
				if l.values.IsValid(j) {
					sum += l.values.Ints()[j]
				}
			}
			b.appendInt(sum)
		case physFloat:
			var sum float64
			for j := start; j < end; j++ {
				if l.values.IsValid(j) {
					sum += l.values.Floats()[j]
				}
			}
			b.appendFloat(sum)
		}
	}
	return b.finish(l.name), nil
}

// Mean reduces each row to the mean of its non-null elements; a row with no
// reducible element yields null. Integer rows produce Float64, Float32 rows
// keep their precision, Duration rows stay Duration.
func (l *ListSeries) Mean() (*Series, error) {
	elem := l.values.DType()
	outType, ok := meanResultType[elem]
	if !ok {
		return nil, invalidOperationErrorf("list.mean not supported for dtype %s", l.listType)
	}

	b := newSeriesBuilder(outType, l.values.Unit(), nil, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNull()
			continue
		}
		start, end := l.rowBounds(i)
		var sum float64
		var count int64
		for j := start; j < end; j++ {
			if !l.values.IsValid(j) {
				continue
			}
			switch elem.physical() {
			case physInt:
				sum += float64(l.values.Ints()[j])
			case physFloat:
				sum += l.values.Floats()[j]
			case physBool:
				if l.values.Bools()[j] {
					sum++
				}
			}
			count++
		}
		if count == 0 {
			b.appendNull()
			continue
		}
		if outType == Duration {
			b.appendInt(int64(sum / float64(count)))
		} else {
			b.appendFloat(sum / float64(count))
		}
	}
	return b.finish(l.name), nil
}

// minMax reduces each row to its extreme element, preserving the element
// dtype (including String, Categorical and temporal subtypes).
func (l *ListSeries) minMax(wantMax bool, op string) (*Series, error) {
	elem := l.values.DType()
	if elem.physical() == physNone {
		return nil, invalidOperationErrorf("%s not supported for dtype %s", op, l.listType)
	}

	b := newSeriesBuilder(elem, l.values.Unit(), l.values.Dict(), l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNull()
			continue
		}
		start, end := l.rowBounds(i)
		best := -1
		for j := start; j < end; j++ {
			if !l.values.IsValid(j) {
				continue
			}
			if best < 0 {
				best = j
				continue
			}
			less := elemLess(l.values, j, best)
			if (wantMax && !less && !elemEqual(l.values, j, best)) || (!wantMax && less) {
				best = j
			}
		}
		if best < 0 {
			b.appendNull()
			continue
		}
		b.appendFrom(l.values, best)
	}
	return b.finish(l.name), nil
}

// Min reduces each row to its minimum element
func (l *ListSeries) Min() (*Series, error) {
	return l.minMax(false, "list.min")
}

// Max reduces each row to its maximum element
func (l *ListSeries) Max() (*Series, error) {
	return l.minMax(true, "list.max")
}

// argMinMax returns the position of each row's extreme element as UInt32
func (l *ListSeries) argMinMax(wantMax bool, op string) (*Series, error) {
	elem := l.values.DType()
	if elem.physical() == physNone {
		return nil, invalidOperationErrorf("%s not supported for dtype %s", op, l.listType)
	}

	b := newSeriesBuilder(UInt32, 0, nil, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNull()
			continue
		}
		start, end := l.rowBounds(i)
		best := -1
		for j := start; j < end; j++ {
			if !l.values.IsValid(j) {
				continue
			}
			if best < 0 {
				best = j
				continue
			}
			less := elemLess(l.values, j, best)
			if (wantMax && !less && !elemEqual(l.values, j, best)) || (!wantMax && less) {
				best = j
			}
		}
		if best < 0 {
			b.appendNull()
			continue
		}
		b.appendInt(int64(best - start))
	}
	return b.finish(l.name), nil
}

// ArgMin returns the index of each row's minimum element (UInt32)
func (l *ListSeries) ArgMin() (*Series, error) {
	return l.argMinMax(false, "list.arg_min")
}

// ArgMax returns the index of each row's maximum element (UInt32)
func (l *ListSeries) ArgMax() (*Series, error) {
	return l.argMinMax(true, "list.arg_max")
}

// Median reduces each row to the median of its non-null elements
func (l *ListSeries) Median() (*Series, error) {
	elem := l.values.DType()
	if !elem.IsNumeric() {
		return nil, invalidOperationErrorf("list.median not supported for dtype %s", l.listType)
	}
	outType := Float64
	if elem == Float32 {
		outType = Float32
	}

	b := newSeriesBuilder(outType, 0, nil, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNull()
			continue
		}
		vals := l.rowFloats(i)
		if len(vals) == 0 {
			b.appendNull()
			continue
		}
		sort.Float64s(vals)
		mid := len(vals) / 2
		if len(vals)%2 == 1 {
			b.appendFloat(vals[mid])
		} else {
			b.appendFloat((vals[mid-1] + vals[mid]) / 2)
		}
	}
	return b.finish(l.name), nil
}

// Std reduces each row to the standard deviation of its non-null elements
// with the given delta degrees of freedom.
func (l *ListSeries) Std(ddof int) (*Series, error) {
	v, err := l.Var(ddof)
	if err != nil {
		return nil, err
	}
	b := newSeriesBuilder(v.DType(), 0, nil, v.Len())
	for i := 0; i < v.Len(); i++ {
		if !v.IsValid(i) {
			b.appendNull()
			continue
		}
		b.appendFloat(math.Sqrt(v.Floats()[i]))
	}
	return b.finish(l.name), nil
}

// Var reduces each row to the variance of its non-null elements with the
// given delta degrees of freedom.
func (l *ListSeries) Var(ddof int) (*Series, error) {
	elem := l.values.DType()
	if !elem.IsNumeric() {
		return nil, invalidOperationErrorf("list.var not supported for dtype %s", l.listType)
	}
	outType := Float64
	if elem == Float32 {
		outType = Float32
	}

	b := newSeriesBuilder(outType, 0, nil, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNull()
			continue
		}
		vals := l.rowFloats(i)
		if len(vals) <= ddof {
			b.appendNull()
			continue
		}
		var sum float64
		for _, x := range vals {
			sum += x
		}
		mean := sum / float64(len(vals))
		var ss float64
		for _, x := range vals {
			d := x - mean
			ss += d * d
		}
		b.appendFloat(ss / float64(len(vals)-ddof))
	}
	return b.finish(l.name), nil
}

// rowFloats collects row i's non-null elements as float64
func (l *ListSeries) rowFloats(i int) []float64 {
	start, end := l.rowBounds(i)
	out := make([]float64, 0, end-start)
	for j := start; j < end; j++ {
		if !l.values.IsValid(j) {
			continue
		}
		switch l.values.DType().physical() {
		case physInt:
			out = append(out, float64(l.values.Ints()[j]))
		case physFloat:
			out = append(out, l.values.Floats()[j])
		}
	}
	return out
}

// Unique de-duplicates each row's elements. First occurrences are kept in
// input order when maintainOrder is set; a null element counts as one
// distinct value.
func (l *ListSeries) Unique(maintainOrder bool) (*ListSeries, error) {
	b := newListBuilder(l.values.DType(), l.values.Unit(), l.values.Dict(), l.length, l.values.Len())
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNullRow()
			continue
		}
		start, end := l.rowBounds(i)
		seen := make(map[interface{}]struct{}, end-start)
		seenNull := false
		idxs := make([]int64, 0, end-start)
		for j := start; j < end; j++ {
			if !l.values.IsValid(j) {
				if !seenNull {
					seenNull = true
					idxs = append(idxs, -1)
				}
				continue
			}
			k := elemKey(l.values, j)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			idxs = append(idxs, int64(j))
		}
		// Without maintain_order the engine is still deterministic; first
		// occurrence order is simply not part of the contract.
		_ = maintainOrder
		b.appendTakeRow(l.values, idxs)
	}
	return b.finish(l.name), nil
}

// NUnique counts each row's distinct elements as UInt32, counting a null
// element once. A null row yields null; an empty row yields 0.
func (l *ListSeries) NUnique() (*Series, error) {
	b := newSeriesBuilder(UInt32, 0, nil, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNull()
			continue
		}
		start, end := l.rowBounds(i)
		seen := make(map[interface{}]struct{}, end-start)
		seenNull := false
		for j := start; j < end; j++ {
			if !l.values.IsValid(j) {
				seenNull = true
				continue
			}
			seen[elemKey(l.values, j)] = struct{}{}
		}
		n := int64(len(seen))
		if seenNull {
			n++
		}
		b.appendInt(n)
	}
	return b.finish(l.name), nil
}

// Contains reports per row whether the value occurs among its elements.
// With nullsEqual=false the result is three-valued: true when found, null
// when not found but the row holds a null element (unknown), false only when
// the row has no nulls and the value is absent; a null target can then never
// produce true. With nullsEqual=true a null target matches null elements as
// ordinary equality and the unknown case collapses to a definite boolean.
func (l *ListSeries) Contains(value Param, nullsEqual bool) (*Series, error) {
	eq, err := l.elemMatcher(value, "list.contains")
	if err != nil {
		return nil, err
	}

	b := newSeriesBuilder(Bool, 0, nil, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNull()
			continue
		}
		target, targetOK := eq.target(i)
		start, end := l.rowBounds(i)
		found := false
		hasNull := false
		for j := start; j < end; j++ {
			if !l.values.IsValid(j) {
				hasNull = true
				continue
			}
			if targetOK && eq.match(j, target) {
				found = true
				break
			}
		}
		switch {
		case !targetOK && nullsEqual:
			b.appendBool(hasNull)
		case !targetOK:
			// Null target under strict equality is unknown unless proven
			// absent from a null-free row.
			if hasNull {
				b.appendNull()
			} else {
				b.appendBool(false)
			}
		case found:
			b.appendBool(true)
		case hasNull && !nullsEqual:
			b.appendNull()
		default:
			b.appendBool(false)
		}
	}
	return b.finish(l.name), nil
}

// CountMatches counts per row how many elements equal the value (UInt32).
// Null elements never match a non-null value.
func (l *ListSeries) CountMatches(value Param) (*Series, error) {
	eq, err := l.elemMatcher(value, "list.count_matches")
	if err != nil {
		return nil, err
	}

	b := newSeriesBuilder(UInt32, 0, nil, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNull()
			continue
		}
		target, targetOK := eq.target(i)
		start, end := l.rowBounds(i)
		var count int64
		for j := start; j < end; j++ {
			if !l.values.IsValid(j) {
				continue
			}
			if targetOK && eq.match(j, target) {
				count++
			}
		}
		b.appendInt(count)
	}
	return b.finish(l.name), nil
}

// Any reduces each Bool row to whether any non-null element is true.
// An empty row yields false; a null row yields null.
func (l *ListSeries) Any() (*Series, error) {
	if l.values.DType() != Bool {
		return nil, invalidOperationErrorf("list.any not supported for dtype %s", l.listType)
	}
	b := newSeriesBuilder(Bool, 0, nil, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNull()
			continue
		}
		start, end := l.rowBounds(i)
		result := false
		for j := start; j < end; j++ {
			if l.values.IsValid(j) && l.values.Bools()[j] {
				result = true
				break
			}
		}
		b.appendBool(result)
	}
	return b.finish(l.name), nil
}

// All reduces each Bool row to whether every non-null element is true.
// An empty row yields true; a null row yields null.
func (l *ListSeries) All() (*Series, error) {
	if l.values.DType() != Bool {
		return nil, invalidOperationErrorf("list.all not supported for dtype %s", l.listType)
	}
	b := newSeriesBuilder(Bool, 0, nil, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNull()
			continue
		}
		start, end := l.rowBounds(i)
		result := true
		for j := start; j < end; j++ {
			if l.values.IsValid(j) && !l.values.Bools()[j] {
				result = false
				break
			}
		}
		b.appendBool(result)
	}
	return b.finish(l.name), nil
}

// Diff computes each row's lagged difference with lag n: out[j] = x[j] -
// x[j-n]. The first n positions of each row are null (trailing positions for
// a negative lag); a null operand yields a null difference. Output dtype
// follows diffResultType (dates and times difference into durations at their
// matching resolution, unsigned integers widen to a signed rank).
func (l *ListSeries) Diff(n int64) (*ListSeries, error) {
	elem := l.values.DType()
	res, ok := diffResultType[elem]
	if !ok {
		return nil, invalidOperationErrorf("list.diff not supported for dtype %s", l.listType)
	}
	outUnit := res.unit
	if elem == Datetime || elem == Duration {
		outUnit = l.values.Unit()
	}
	// Date values are stored as days; their differences surface in
	// millisecond durations.
	scale := int64(1)
	if elem == Date {
		scale = 86_400_000
	}

	b := newListBuilder(res.dtype, outUnit, nil, l.length, l.values.Len())
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNullRow()
			continue
		}
		start, end := l.rowBounds(i)
		rowLen := end - start
		for j := 0; j < rowLen; j++ {
			k := j - int(n)
			if k < 0 || k >= rowLen {
				b.vb.appendNull()
				continue
			}
			cur, prev := start+j, start+k
			if !l.values.IsValid(cur) || !l.values.IsValid(prev) {
				b.vb.appendNull()
				continue
			}
			switch elem.physical() {
			case physInt:
				b.vb.appendInt((l.values.Ints()[cur] - l.values.Ints()[prev]) * scale)
			case physFloat:
				b.vb.appendFloat(l.values.Floats()[cur] - l.values.Floats()[prev])
			}
		}
		b.sealRow()
	}
	return b.finish(l.name), nil
}

// ============================================================================
// Element comparison helpers
// ============================================================================

// elemLess orders two valid elements of the same series. Categorical
// elements order by their decoded strings.
func elemLess(s *Series, a, b int) bool {
	switch s.DType().physical() {
	case physInt:
		if s.DType() == Categorical {
			return s.Dict()[s.Ints()[a]] < s.Dict()[s.Ints()[b]]
		}
		return s.Ints()[a] < s.Ints()[b]
	case physFloat:
		return s.Floats()[a] < s.Floats()[b]
	case physString:
		return s.Strings()[a] < s.Strings()[b]
	case physBool:
		return !s.Bools()[a] && s.Bools()[b]
	}
	return false
}

// elemEqual compares two valid elements of the same series
func elemEqual(s *Series, a, b int) bool {
	switch s.DType().physical() {
	case physInt:
		if s.DType() == Categorical {
			return s.Dict()[s.Ints()[a]] == s.Dict()[s.Ints()[b]]
		}
		return s.Ints()[a] == s.Ints()[b]
	case physFloat:
		return s.Floats()[a] == s.Floats()[b]
	case physString:
		return s.Strings()[a] == s.Strings()[b]
	case physBool:
		return s.Bools()[a] == s.Bools()[b]
	}
	return false
}

// elemKey returns a comparable map key for a valid element
func elemKey(s *Series, i int) interface{} {
	switch s.DType().physical() {
	case physInt:
		if s.DType() == Categorical {
			return s.Dict()[s.Ints()[i]]
		}
		return s.Ints()[i]
	case physFloat:
		return s.Floats()[i]
	case physString:
		return s.Strings()[i]
	case physBool:
		return s.Bools()[i]
	}
	return nil
}

// elemMatcher resolves a Contains/CountMatches target against the element
// dtype: string-backed elements (String, Categorical) take string targets,
// floats take float targets, Bool takes booleans and the integer/temporal
// dtypes take integers.
type elemMatcher struct {
	l *ListSeries
	i *intParam
	f *floatParam
	s *stringParam
	b *boolParam
}

func (l *ListSeries) elemMatcher(value Param, op string) (*elemMatcher, error) {
	m := &elemMatcher{l: l}
	var err error
	switch {
	case l.values.DType() == String || l.values.DType() == Categorical:
		m.s, err = resolveStringParam(value, l.length, op)
	case l.values.DType().physical() == physFloat:
		m.f, err = resolveFloatParam(value, l.length, op)
	case l.values.DType().physical() == physBool:
		m.b, err = resolveBoolParam(value, l.length, op)
	case l.values.DType().physical() == physInt:
		m.i, err = resolveIntParam(value, l.length, op)
	default:
		err = invalidOperationErrorf("%s not supported for dtype %s", op, l.listType)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// target returns the row's target value (boxed) and whether it is non-null
func (m *elemMatcher) target(row int) (interface{}, bool) {
	switch {
	case m.s != nil:
		v, ok := m.s.at(row)
		return v, ok
	case m.f != nil:
		v, ok := m.f.at(row)
		return v, ok
	case m.b != nil:
		v, ok := m.b.at(row)
		return v, ok
	default:
		v, ok := m.i.at(row)
		return v, ok
	}
}

// match compares valid element j against a non-null target
func (m *elemMatcher) match(j int, target interface{}) bool {
	s := m.l.values
	switch {
	case m.s != nil:
		if s.DType() == Categorical {
			return s.Dict()[s.Ints()[j]] == target.(string)
		}
		return s.Strings()[j] == target.(string)
	case m.f != nil:
		return s.Floats()[j] == target.(float64)
	case m.b != nil:
		return s.Bools()[j] == target.(bool)
	default:
		return s.Ints()[j] == target.(int64)
	}
}
