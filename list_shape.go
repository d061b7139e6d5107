package corsair

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// ============================================================================
// Ordering & Shape Operations
// ============================================================================

// Sort sorts each row's elements. The sort is stable and dtype-preserving;
// null elements go to the end when nullsLast is set, otherwise to the front.
func (l *ListSeries) Sort(descending, nullsLast bool) (*ListSeries, error) {
	elem := l.values.DType()
	if elem.physical() == physNone {
		return nil, invalidOperationErrorf("list.sort not supported for dtype %s", l.listType)
	}

	b := newListBuilder(elem, l.values.Unit(), l.values.Dict(), l.length, l.values.Len())
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNullRow()
			continue
		}
		start, end := l.rowBounds(i)
		valid := make([]int64, 0, end-start)
		nulls := make([]int64, 0)
		for j := start; j < end; j++ {
			if l.values.IsValid(j) {
				valid = append(valid, int64(j))
			} else {
				nulls = append(nulls, -1)
			}
		}
		sort.SliceStable(valid, func(a, b int) bool {
			less := elemLess(l.values, int(valid[a]), int(valid[b]))
			if descending {
				return !less && !elemEqual(l.values, int(valid[a]), int(valid[b]))
			}
			return less
		})
		var idxs []int64
		if nullsLast {
			idxs = append(valid, nulls...)
		} else {
			idxs = append(nulls, valid...)
		}
		b.appendTakeRow(l.values, idxs)
	}
	return b.finish(l.name), nil
}

// Reverse reverses each row's observable element order
func (l *ListSeries) Reverse() *ListSeries {
	b := newListBuilder(l.values.DType(), l.values.Unit(), l.values.Dict(), l.length, l.values.Len())
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNullRow()
			continue
		}
		start, end := l.rowBounds(i)
		idxs := make([]int64, 0, end-start)
		for j := end - 1; j >= start; j-- {
			idxs = append(idxs, int64(j))
		}
		b.appendTakeRow(l.values, idxs)
	}
	return b.finish(l.name)
}

// Shift shifts each row's elements by n positions, filling the vacated end
// with nulls. n resolves per row; a null n makes the entire row null, and a
// magnitude at or beyond the row length makes the row all-null at its
// original length. A one-row column broadcasts itself to a longer n.
func (l *ListSeries) Shift(n Param) (*ListSeries, error) {
	l = l.broadcastRows(n)
	amt, err := resolveIntParam(n, l.length, "list.shift")
	if err != nil {
		return nil, err
	}

	b := newListBuilder(l.values.DType(), l.values.Unit(), l.values.Dict(), l.length, l.values.Len())
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNullRow()
			continue
		}
		nv, ok := amt.at(i)
		if !ok {
			b.appendNullRow()
			continue
		}
		rowLen := int64(l.rowLen(i))
		if nv >= rowLen || -nv >= rowLen {
			b.appendNullElems(int(rowLen))
			continue
		}
		base := int64(l.offsets[i])
		idxs := make([]int64, rowLen)
		for j := int64(0); j < rowLen; j++ {
			src := j - nv
			if src < 0 || src >= rowLen {
				idxs[j] = -1
			} else {
				idxs[j] = base + src
			}
		}
		b.appendTakeRow(l.values, idxs)
	}
	return b.finish(l.name), nil
}

// SampleN draws a without-replacement random sample of n elements from each
// row. n resolves against the list's own row count (a length-1 parameter
// self-broadcasts, and a one-row column broadcasts itself to a longer n);
// identical seed and input always produce identical output. A null n makes
// the row null; n clamps to the row length.
func (l *ListSeries) SampleN(n Param, seed uint64) (*ListSeries, error) {
	l = l.broadcastRows(n)
	cnt, err := resolveIntParam(n, l.length, "list.sample")
	if err != nil {
		return nil, err
	}
	return l.sample(func(i int, rowLen int64) (int64, bool) {
		v, ok := cnt.at(i)
		if !ok {
			return 0, false
		}
		if v > rowLen {
			v = rowLen
		}
		if v < 0 {
			v = 0
		}
		return v, true
	}, seed)
}

// SampleFraction draws a without-replacement random sample sized as a
// fraction of each row's length, with the same resolution and determinism
// rules as SampleN.
func (l *ListSeries) SampleFraction(fraction Param, seed uint64) (*ListSeries, error) {
	l = l.broadcastRows(fraction)
	frac, err := resolveFloatParam(fraction, l.length, "list.sample")
	if err != nil {
		return nil, err
	}
	return l.sample(func(i int, rowLen int64) (int64, bool) {
		v, ok := frac.at(i)
		if !ok {
			return 0, false
		}
		k := int64(v * float64(rowLen))
		if k > rowLen {
			k = rowLen
		}
		if k < 0 {
			k = 0
		}
		return k, true
	}, seed)
}

// sample draws k(i) elements per row using one seeded generator consumed in
// row order, which makes the output a pure function of (seed, input).
func (l *ListSeries) sample(k func(i int, rowLen int64) (int64, bool), seed uint64) (*ListSeries, error) {
	rng := rand.New(rand.NewSource(int64(seed)))

	b := newListBuilder(l.values.DType(), l.values.Unit(), l.values.Dict(), l.length, l.values.Len())
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNullRow()
			continue
		}
		rowLen := int64(l.rowLen(i))
		kv, ok := k(i, rowLen)
		if !ok {
			b.appendNullRow()
			continue
		}
		base := int64(l.offsets[i])
		perm := rng.Perm(int(rowLen))
		idxs := make([]int64, 0, kv)
		for _, p := range perm[:kv] {
			idxs = append(idxs, base+int64(p))
		}
		b.appendTakeRow(l.values, idxs)
	}
	return b.finish(l.name), nil
}

// DropNulls removes null elements from each row, preserving relative order.
// A null row remains null.
func (l *ListSeries) DropNulls() *ListSeries {
	b := newListBuilder(l.values.DType(), l.values.Unit(), l.values.Dict(), l.length, l.values.Len())
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNullRow()
			continue
		}
		start, end := l.rowBounds(i)
		idxs := make([]int64, 0, end-start)
		for j := start; j < end; j++ {
			if l.values.IsValid(j) {
				idxs = append(idxs, int64(j))
			}
		}
		b.appendTakeRow(l.values, idxs)
	}
	return b.finish(l.name)
}

// Concat appends the other list column's rows element-wise to this one.
// other must have one row (broadcast) or exactly this column's row count;
// element dtypes unify via common-supertype promotion. A null row on either
// side makes the output row null.
func (l *ListSeries) Concat(other *ListSeries) (*ListSeries, error) {
	if other.Len() != 1 && other.Len() != l.Len() {
		return nil, shapeErrorf("list.concat: other length %d doesn't match row count %d", other.Len(), l.Len())
	}

	super, err := commonSuperType(l.values.DType(), other.values.DType())
	if err != nil {
		return nil, err
	}
	unit := l.values.Unit()
	left := l.values
	right := other.values
	var dict []string
	if super == Categorical {
		// both sides decode through one merged dictionary; the right side's
		// codes are rewritten, the left side's stay valid because the merged
		// dictionary extends the left one
		right, dict = mergeCategorical(left, right)
	} else {
		left = left.cast(super, unit)
		right = right.cast(super, unit)
	}
	b := newListBuilder(super, unit, dict, l.length, left.Len()+right.Len())
	for i := 0; i < l.length; i++ {
		oi := i
		if other.Len() == 1 {
			oi = 0
		}
		if !l.IsValid(i) || !other.IsValid(oi) {
			b.appendNullRow()
			continue
		}
		lStart, lEnd := l.rowBounds(i)
		oStart, oEnd := other.rowBounds(oi)
		for j := lStart; j < lEnd; j++ {
			b.vb.appendFrom(left, j)
		}
		for j := oStart; j < oEnd; j++ {
			b.vb.appendFrom(right, j)
		}
		b.sealRow()
	}
	return b.finish(l.name), nil
}

// mergeCategorical recodes other's values into a dictionary extending base's.
// Codes valid against base's dictionary remain valid against the merged one.
func mergeCategorical(base, other *Series) (*Series, []string) {
	merged := append([]string{}, base.Dict()...)
	index := make(map[string]int64, len(merged))
	for i, v := range merged {
		index[v] = int64(i)
	}
	recode := make([]int64, len(other.Dict()))
	for i, v := range other.Dict() {
		code, ok := index[v]
		if !ok {
			code = int64(len(merged))
			merged = append(merged, v)
			index[v] = code
		}
		recode[i] = code
	}

	b := newSeriesBuilder(Categorical, 0, merged, other.Len())
	for i := 0; i < other.Len(); i++ {
		if !other.IsValid(i) {
			b.appendNull()
			continue
		}
		b.appendInt(recode[other.Ints()[i]])
	}
	return b.finish(other.Name()), merged
}

// Join concatenates each row's string elements with a separator. The
// separator resolves per row and a null separator makes the row null. With
// ignoreNulls=false any null element poisons the row to null; with true null
// elements are skipped. An empty non-null row joins to an empty string.
func (l *ListSeries) Join(separator Param, ignoreNulls bool) (*Series, error) {
	if l.values.DType() != String {
		return nil, computeErrorf("list.join expects String elements, got %s", l.listType)
	}
	sep, err := resolveStringParam(separator, l.length, "list.join")
	if err != nil {
		return nil, err
	}

	b := newSeriesBuilder(String, 0, nil, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNull()
			continue
		}
		sv, ok := sep.at(i)
		if !ok {
			b.appendNull()
			continue
		}
		start, end := l.rowBounds(i)
		parts := make([]string, 0, end-start)
		poisoned := false
		for j := start; j < end; j++ {
			if !l.values.IsValid(j) {
				if !ignoreNulls {
					poisoned = true
					break
				}
				continue
			}
			parts = append(parts, l.values.Strings()[j])
		}
		if poisoned {
			b.appendNull()
			continue
		}
		b.appendString(strings.Join(parts, sv))
	}
	return b.finish(l.name), nil
}

// ToStructOptions configures ToStruct. Width is taken from Fields when
// given, else from UpperBound, else discovered by an eager full pass over
// the rows (a lazily scheduled caller needs the field count before
// execution, which is why discovery cannot be deferred). Field names come
// from Fields, else FieldName, else the default field_%d scheme.
type ToStructOptions struct {
	Fields     []string
	FieldName  func(i int) string
	UpperBound int
}

// ToStruct converts each row into a fixed-width record with one field per
// element position. Rows shorter than the width pad trailing fields with
// null; longer rows truncate. An all-null row yields a record whose every
// field is null.
func (l *ListSeries) ToStruct(opts ToStructOptions) (*StructSeries, error) {
	width := 0
	switch {
	case len(opts.Fields) > 0:
		width = len(opts.Fields)
	case opts.UpperBound > 0:
		width = opts.UpperBound
	default:
		for i := 0; i < l.length; i++ {
			if l.IsValid(i) && l.rowLen(i) > width {
				width = l.rowLen(i)
			}
		}
	}

	nameFor := func(i int) string { return fmt.Sprintf("field_%d", i) }
	if opts.FieldName != nil {
		nameFor = opts.FieldName
	}
	names := make([]string, width)
	for i := range names {
		if len(opts.Fields) > 0 {
			names[i] = opts.Fields[i]
		} else {
			names[i] = nameFor(i)
		}
	}

	fields := make([]*Series, width)
	for f := 0; f < width; f++ {
		idxs := make([]int64, l.length)
		for i := 0; i < l.length; i++ {
			if !l.IsValid(i) || f >= l.rowLen(i) {
				idxs[i] = -1
				continue
			}
			idxs[i] = int64(l.offsets[i]) + int64(f)
		}
		fields[f] = l.values.take(idxs).Rename(names[f])
	}
	return NewStructSeries(l.name, names, fields)
}

// ToArray converts the list column to a fixed-width array column. Unlike
// ToStruct there is no padding or truncation: any non-null row whose length
// differs from width fails the whole call with a compute error.
func (l *ListSeries) ToArray(width int) (*ArraySeries, error) {
	if width <= 0 {
		return nil, computeErrorf("array width must be positive, got %d", width)
	}
	for i := 0; i < l.length; i++ {
		if l.IsValid(i) && l.rowLen(i) != width {
			return nil, computeErrorf("not all elements have the specified width %d", width)
		}
	}

	valid := make([]bool, l.length)
	idxs := make([]int64, 0, l.length*width)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			for j := 0; j < width; j++ {
				idxs = append(idxs, -1)
			}
			continue
		}
		valid[i] = true
		base := int64(l.offsets[i])
		for j := 0; j < width; j++ {
			idxs = append(idxs, base+int64(j))
		}
	}

	out, err := NewArraySeries(l.name, width, l.values.take(idxs))
	if err != nil {
		return nil, err
	}
	out.validity = buildBitmap(valid)
	return out, nil
}
