package corsair

// ============================================================================
// Element Sub-Expression Evaluation
// ============================================================================
//
// Eval and Filter run a caller-supplied expression over every element of the
// list column at once, on a single flattened Series, instead of looping row
// by row. Elements of null rows are compacted out before the expression
// runs: the expression never sees them, so an element that would fail
// (divide by zero, bad cast) inside a null row cannot fail the operation.

// ElementFunc evaluates an expression over the flattened element view.
// The input Series is borrowed: implementations must not mutate it.
type ElementFunc func(elems *Series) (*Series, error)

// compactElements gathers the elements of all valid rows into one contiguous
// Series and returns the per-row element counts alongside it.
func (l *ListSeries) compactElements() (*Series, []int) {
	rowLens := make([]int, l.length)
	idxs := make([]int64, 0, l.values.Len())
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			continue
		}
		start, end := l.rowBounds(i)
		rowLens[i] = end - start
		for j := start; j < end; j++ {
			idxs = append(idxs, int64(j))
		}
	}
	return l.values.take(idxs), rowLens
}

// Eval applies fn to every element and re-segments the result into the
// original row structure. fn must be length-preserving over the elements it
// sees; a changed element count is a compute error. Null rows pass through
// untouched.
func (l *ListSeries) Eval(fn ElementFunc) (*ListSeries, error) {
	compact, rowLens := l.compactElements()
	out, err := fn(compact)
	if err != nil {
		return nil, err
	}
	if out.Len() != compact.Len() {
		return nil, computeErrorf("eval expression changed element count from %d to %d", compact.Len(), out.Len())
	}

	b := newListBuilder(out.DType(), out.Unit(), out.Dict(), l.length, out.Len())
	pos := 0
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNullRow()
			continue
		}
		for j := 0; j < rowLens[i]; j++ {
			b.vb.appendFrom(out, pos)
			pos++
		}
		b.sealRow()
	}
	return b.finish(l.name), nil
}

// Filter keeps the elements for which fn evaluates to true. fn must produce
// a Bool Series of the same element count; a null predicate value drops the
// element, the same as false. Null rows pass through untouched.
func (l *ListSeries) Filter(fn ElementFunc) (*ListSeries, error) {
	compact, rowLens := l.compactElements()
	mask, err := fn(compact)
	if err != nil {
		return nil, err
	}
	if mask.DType() != Bool {
		return nil, invalidOperationErrorf("list.filter predicate must be Bool, got %s", mask.DType())
	}
	if mask.Len() != compact.Len() {
		return nil, computeErrorf("filter predicate changed element count from %d to %d", compact.Len(), mask.Len())
	}

	b := newListBuilder(l.values.DType(), l.values.Unit(), l.values.Dict(), l.length, compact.Len())
	pos := 0
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNullRow()
			continue
		}
		for j := 0; j < rowLens[i]; j++ {
			if mask.IsValid(pos) && mask.Bools()[pos] {
				b.vb.appendFrom(compact, pos)
			}
			pos++
		}
		b.sealRow()
	}
	return b.finish(l.name), nil
}
