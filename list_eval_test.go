package corsair

import (
	"errors"
	"testing"
)

// ============================================================================
// Element Evaluation Tests
// ============================================================================

func TestListEval(t *testing.T) {
	l := NewListSeriesOfInt64("a", [][]*int64{
		{ip(1), ip(2)},
		{ip(3), nil},
		nil,
	}, []bool{true, true, false})

	doubled, err := l.Eval(func(elems *Series) (*Series, error) {
		b := newSeriesBuilder(Int64, 0, nil, elems.Len())
		for i := 0; i < elems.Len(); i++ {
			if !elems.IsValid(i) {
				b.appendNull()
				continue
			}
			b.appendInt(elems.Ints()[i] * 2)
		}
		return b.finish(""), nil
	})
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}

	assertRow(t, doubled, 0, []interface{}{int64(2), int64(4)})
	assertRow(t, doubled, 1, []interface{}{int64(6), nil})
	assertRow(t, doubled, 2, nil)
}

func TestListEvalChangesDType(t *testing.T) {
	l := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2}, {3}})

	asStr, err := l.Eval(func(elems *Series) (*Series, error) {
		strs := make([]string, elems.Len())
		for i := range strs {
			strs[i] = "v"
		}
		return NewSeriesString("", strs), nil
	})
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if asStr.ElementType() != String {
		t.Errorf("element dtype = %v, want %v", asStr.ElementType(), String)
	}
	assertRow(t, asStr, 0, []interface{}{"v", "v"})
}

func TestListEvalLengthChangeIsError(t *testing.T) {
	l := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2}})

	_, err := l.Eval(func(elems *Series) (*Series, error) {
		return NewSeriesInt64("", []int64{1}), nil
	})
	if !errors.Is(err, ErrCompute) {
		t.Errorf("shrinking eval: err = %v, want ErrCompute", err)
	}
}

// A dense layout can park arbitrary garbage under a null row. The expression
// must never see those elements, so a value that would make it fail cannot
// fail the operation when it only occurs inside a null row.
func TestListEvalSkipsNullRowElements(t *testing.T) {
	values := NewSeriesInt64("", []int64{1, 2, -99, -99, 3})
	l, err := NewListSeriesWithNulls("a", []int32{0, 2, 4, 5}, values, []bool{true, false, true})
	if err != nil {
		t.Fatalf("NewListSeriesWithNulls failed: %v", err)
	}

	out, err := l.Eval(func(elems *Series) (*Series, error) {
		b := newSeriesBuilder(Int64, 0, nil, elems.Len())
		for i := 0; i < elems.Len(); i++ {
			if elems.Ints()[i] == -99 {
				return nil, computeErrorf("poison element reached the expression")
			}
			b.appendInt(elems.Ints()[i] + 1)
		}
		return b.finish(""), nil
	})
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	assertRow(t, out, 0, []interface{}{int64(2), int64(3)})
	assertRow(t, out, 1, nil)
	assertRow(t, out, 2, []interface{}{int64(4)})
}

func TestListFilter(t *testing.T) {
	l := NewListSeriesOfInt64("a", [][]*int64{
		{ip(1), ip(5), ip(2)},
		{ip(9)},
		nil,
	}, []bool{true, true, false})

	kept, err := l.Filter(func(elems *Series) (*Series, error) {
		mask := make([]bool, elems.Len())
		for i := range mask {
			mask[i] = elems.IsValid(i) && elems.Ints()[i] < 5
		}
		return NewSeriesBool("", mask), nil
	})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}

	assertRow(t, kept, 0, []interface{}{int64(1), int64(2)})
	assertRow(t, kept, 1, []interface{}{})
	assertRow(t, kept, 2, nil)
}

func TestListFilterNullPredicateDrops(t *testing.T) {
	l := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2, 3}})

	kept, err := l.Filter(func(elems *Series) (*Series, error) {
		// true, null, true: the null behaves like false
		return NewSeriesBoolWithNulls("", []bool{true, true, true}, []bool{true, false, true}), nil
	})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	assertRow(t, kept, 0, []interface{}{int64(1), int64(3)})
}

func TestListFilterRequiresBool(t *testing.T) {
	l := NewListSeriesFromSlicesI64("a", [][]int64{{1}})

	_, err := l.Filter(func(elems *Series) (*Series, error) {
		return NewSeriesInt64("", []int64{1}), nil
	})
	if !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("non-bool predicate: err = %v, want ErrInvalidOperation", err)
	}
}
