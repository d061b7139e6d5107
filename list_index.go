package corsair

import "math"

// ============================================================================
// Index & Slice Operations
// ============================================================================

// nullIndexSentinel marks a null index element inside a per-row index list.
// It can never collide with a real index because row lengths fit in int32.
const nullIndexSentinel = math.MinInt64

// Get returns the element at the given index of each row as a flat Series.
// The index may be scalar or per-row; negative indices count from the row's
// end. A null index or a null row yields a null result. When nullOnOOB is
// false, any resolved index outside [-len, len) fails the whole call with a
// compute error before output is produced; when true, that row's result is
// null instead. The element's logical dtype is preserved: the result is a
// single-element gather from the child values, never a physical conversion.
func (l *ListSeries) Get(index Param, nullOnOOB bool) (*Series, error) {
	idx, err := resolveIntParam(index, l.length, "list.get")
	if err != nil {
		return nil, err
	}

	buf := getIndexBuf(l.length)
	defer buf.release()
	takeIdx := buf.data
	err = ParallelForErr(l.length, func(start, end int) error {
		for i := start; i < end; i++ {
			v, ok := idx.at(i)
			if !ok || !l.IsValid(i) {
				takeIdx[i] = -1
				continue
			}
			n := int64(l.rowLen(i))
			resolved := v
			if resolved < 0 {
				resolved += n
			}
			if resolved < 0 || resolved >= n {
				if !nullOnOOB {
					return computeErrorf("get index is out of bounds")
				}
				takeIdx[i] = -1
				continue
			}
			takeIdx[i] = int64(l.offsets[i]) + resolved
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l.values.take(takeIdx).Rename(l.name), nil
}

// First returns the first element of each row (null for empty or null rows)
func (l *ListSeries) First() *Series {
	out, _ := l.Get(ScalarParam(0), true)
	return out
}

// Last returns the last element of each row (null for empty or null rows)
func (l *ListSeries) Last() *Series {
	out, _ := l.Get(ScalarParam(-1), true)
	return out
}

// gatherIndices holds per-row index sets for Gather after normalization.
// shared is used for every row when perRow is nil.
type gatherIndices struct {
	shared []int64
	perRow *ListSeries
}

// normalizeGatherIndices validates the index argument's dtype and shape
// before any row is processed. Accepted forms: an int, []int or []int64
// literal (a shared index set), an integer Series (shared set), or a
// ListSeries of integers aligned row-wise.
func normalizeGatherIndices(l *ListSeries, indices interface{}) (*gatherIndices, error) {
	switch v := indices.(type) {
	case int:
		return &gatherIndices{shared: []int64{int64(v)}}, nil
	case []int:
		out := make([]int64, len(v))
		for i, x := range v {
			out[i] = int64(x)
		}
		return &gatherIndices{shared: out}, nil
	case []int64:
		return &gatherIndices{shared: v}, nil
	case *Series:
		if !v.DType().IsInteger() {
			return nil, invalidOperationErrorf(
				"list.gather operation not supported for dtypes `%s` and `%s`", l.listType, v.DType())
		}
		out := make([]int64, v.Len())
		for i := range out {
			if !v.IsValid(i) {
				out[i] = nullIndexSentinel
				continue
			}
			out[i] = v.Ints()[i]
		}
		return &gatherIndices{shared: out}, nil
	case *ListSeries:
		if !v.ElementType().IsInteger() {
			return nil, invalidOperationErrorf(
				"list.gather operation not supported for dtypes `%s` and `%s`", l.listType, v.listType)
		}
		if v.Len() != l.Len() {
			return nil, shapeErrorf("list.gather: indices length %d doesn't match row count %d", v.Len(), l.Len())
		}
		return &gatherIndices{perRow: v}, nil
	default:
		return nil, invalidOperationErrorf("list.gather: unsupported indices argument %T", indices)
	}
}

// rowIndices returns the index set for row i and whether it is non-null
func (g *gatherIndices) rowIndices(i int) ([]int64, bool) {
	if g.perRow == nil {
		return g.shared, true
	}
	if !g.perRow.IsValid(i) {
		return nil, false
	}
	start, end := g.perRow.rowBounds(i)
	out := make([]int64, 0, end-start)
	for j := start; j < end; j++ {
		if !g.perRow.values.IsValid(j) {
			out = append(out, nullIndexSentinel)
			continue
		}
		out = append(out, g.perRow.values.Ints()[j])
	}
	return out, true
}

// Gather selects elements of each row by index, producing a new list column
// whose rows have the requested index count. Indices may be a nested list
// aligned row-wise or a flat index set shared by every row; negative indices
// adjust by that row's length. With nullOnOOB=false, every row's indices are
// validated before any output is produced and the whole call fails with an
// out-of-bounds error on the first violation. With true, an out-of-bounds
// index yields a null element at its position.
func (l *ListSeries) Gather(indices interface{}, nullOnOOB bool) (*ListSeries, error) {
	gi, err := normalizeGatherIndices(l, indices)
	if err != nil {
		return nil, err
	}

	// Resolve every row up front: strict mode must observe no partial output.
	resolved := make([][]int64, l.length)
	err = ParallelForErr(l.length, func(start, end int) error {
		for i := start; i < end; i++ {
			if !l.IsValid(i) {
				continue
			}
			rowIdx, ok := gi.rowIndices(i)
			if !ok {
				resolved[i] = nil
				continue
			}
			n := int64(l.rowLen(i))
			offset := int64(l.offsets[i])
			out := make([]int64, len(rowIdx))
			for j, v := range rowIdx {
				if v == nullIndexSentinel {
					out[j] = -1 // null index yields a null element
					continue
				}
				resolvedIdx := v
				if resolvedIdx < 0 {
					resolvedIdx += n
				}
				if resolvedIdx < 0 || resolvedIdx >= n {
					if !nullOnOOB {
						return oobErrorf("gather indices are out of bounds")
					}
					out[j] = -1
					continue
				}
				out[j] = offset + resolvedIdx
			}
			resolved[i] = out
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	b := newListBuilder(l.values.DType(), l.values.Unit(), l.values.Dict(), l.length, l.values.Len())
	for i := 0; i < l.length; i++ {
		switch {
		case !l.IsValid(i):
			b.appendNullRow()
		case resolved[i] == nil && gi.perRow != nil && !gi.perRow.IsValid(i):
			b.appendNullRow()
		default:
			b.appendTakeRow(l.values, resolved[i])
		}
	}
	return b.finish(l.name), nil
}

// GatherEvery selects every n-th element of each row starting at offset.
// Stride and offset resolve per row; a null stride or offset makes the row
// null, a non-positive stride is a compute error, and an offset at or past
// the row's end yields an empty row.
func (l *ListSeries) GatherEvery(n, offset Param) (*ListSeries, error) {
	stride, err := resolveIntParam(n, l.length, "list.gather_every")
	if err != nil {
		return nil, err
	}
	off, err := resolveIntParam(offset, l.length, "list.gather_every")
	if err != nil {
		return nil, err
	}

	b := newListBuilder(l.values.DType(), l.values.Unit(), l.values.Dict(), l.length, l.values.Len())
	buf := getIndexBuf(l.values.Len())
	defer buf.release()
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNullRow()
			continue
		}
		sv, sok := stride.at(i)
		ov, ook := off.at(i)
		if !sok || !ook {
			b.appendNullRow()
			continue
		}
		if sv <= 0 {
			return nil, computeErrorf("gather_every `n` must be positive, got %d", sv)
		}
		rowLen := int64(l.rowLen(i))
		if ov < 0 || ov >= rowLen {
			b.appendEmptyRow()
			continue
		}
		start := int64(l.offsets[i])
		idxs := buf.data[:0]
		for j := ov; j < rowLen; j += sv {
			idxs = append(idxs, start+j)
		}
		b.appendTakeRow(l.values, idxs)
	}
	return b.finish(l.name), nil
}

// Slice returns a sub-list of each row. The offset may be negative (counting
// from the row's end) and the length defaults to the rest of the row when
// null. Out-of-range offsets and lengths clamp to the row; slicing never
// fails. A null offset makes the row null.
func (l *ListSeries) Slice(offset, length Param) (*ListSeries, error) {
	off, err := resolveIntParam(offset, l.length, "list.slice")
	if err != nil {
		return nil, err
	}
	ln, err := resolveIntParam(length, l.length, "list.slice")
	if err != nil {
		return nil, err
	}

	b := newListBuilder(l.values.DType(), l.values.Unit(), l.values.Dict(), l.length, l.values.Len())
	buf := getIndexBuf(l.values.Len())
	defer buf.release()
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNullRow()
			continue
		}
		ov, ook := off.at(i)
		if !ook {
			b.appendNullRow()
			continue
		}
		rowLen := int64(l.rowLen(i))
		start := ov
		if start < 0 {
			start += rowLen
		}
		end := rowLen
		if lv, lok := ln.at(i); lok {
			end = start + lv
		}
		if start < 0 {
			start = 0
		}
		if end > rowLen {
			end = rowLen
		}
		if end < start {
			end = start
		}
		base := int64(l.offsets[i])
		idxs := buf.data[:0]
		for j := start; j < end; j++ {
			idxs = append(idxs, base+j)
		}
		b.appendTakeRow(l.values, idxs)
	}
	return b.finish(l.name), nil
}

// Head returns the first n elements of each row; asking for more than a row
// holds returns the whole row.
func (l *ListSeries) Head(n Param) (*ListSeries, error) {
	return l.Slice(ScalarParam(0), n)
}

// Tail returns the last n elements of each row; asking for more than a row
// holds returns the whole row.
func (l *ListSeries) Tail(n Param) (*ListSeries, error) {
	cnt, err := resolveIntParam(n, l.length, "list.tail")
	if err != nil {
		return nil, err
	}

	b := newListBuilder(l.values.DType(), l.values.Unit(), l.values.Dict(), l.length, l.values.Len())
	buf := getIndexBuf(l.values.Len())
	defer buf.release()
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNullRow()
			continue
		}
		nv, ok := cnt.at(i)
		if !ok {
			b.appendNullRow()
			continue
		}
		rowLen := int64(l.rowLen(i))
		if nv > rowLen {
			nv = rowLen
		}
		if nv < 0 {
			nv = 0
		}
		base := int64(l.offsets[i])
		idxs := buf.data[:0]
		for j := rowLen - nv; j < rowLen; j++ {
			idxs = append(idxs, base+j)
		}
		b.appendTakeRow(l.values, idxs)
	}
	return b.finish(l.name), nil
}
