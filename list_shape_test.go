package corsair

import (
	"errors"
	"reflect"
	"testing"
)

// ============================================================================
// Ordering & Shape Tests
// ============================================================================

func TestListSort(t *testing.T) {
	l := NewListSeriesFromSlicesI64("a", [][]int64{{3, 1, 2}, {9}, {}})

	asc, err := l.Sort(false, true)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	assertRow(t, asc, 0, []interface{}{int64(1), int64(2), int64(3)})
	assertRow(t, asc, 1, []interface{}{int64(9)})
	assertRow(t, asc, 2, []interface{}{})

	desc, err := l.Sort(true, true)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	assertRow(t, desc, 0, []interface{}{int64(3), int64(2), int64(1)})
}

func TestListSortNullPlacement(t *testing.T) {
	l := NewListSeriesOfInt64("a", [][]*int64{{ip(2), nil, ip(1)}}, nil)

	first, err := l.Sort(false, false)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	assertRow(t, first, 0, []interface{}{nil, int64(1), int64(2)})

	last, err := l.Sort(false, true)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	assertRow(t, last, 0, []interface{}{int64(1), int64(2), nil})
}

func TestListReverse(t *testing.T) {
	l := NewListSeriesOfInt64("a", [][]*int64{
		{ip(1), ip(2), ip(3)},
		{nil, ip(4)},
		nil,
	}, []bool{true, true, false})

	r := l.Reverse()
	assertRow(t, r, 0, []interface{}{int64(3), int64(2), int64(1)})
	assertRow(t, r, 1, []interface{}{int64(4), nil})
	assertRow(t, r, 2, nil)
}

func TestListShift(t *testing.T) {
	l := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2, 3}, {4, 5}, {6}})

	s, err := l.Shift(ScalarParam(1))
	if err != nil {
		t.Fatalf("Shift failed: %v", err)
	}
	assertRow(t, s, 0, []interface{}{nil, int64(1), int64(2)})
	assertRow(t, s, 1, []interface{}{nil, int64(4)})
	assertRow(t, s, 2, []interface{}{nil})

	s, err = l.Shift(ScalarParam(-2))
	if err != nil {
		t.Fatalf("Shift failed: %v", err)
	}
	assertRow(t, s, 0, []interface{}{int64(3), nil, nil})
	assertRow(t, s, 1, []interface{}{nil, nil})
	assertRow(t, s, 2, []interface{}{nil})
}

func TestListShiftPerRow(t *testing.T) {
	l := NewListSeriesFromSlicesI64("a", [][]int64{
		{1, 2, 3}, {4, 5, 6}, {7, 8, 9}, {10, 11, 12}, {13, 14, 15},
	})
	n := NewSeriesInt64WithNulls("n", []int64{1, -2, 3, 2, 0}, []bool{true, true, true, true, false})

	s, err := l.Shift(SeriesParam(n))
	if err != nil {
		t.Fatalf("Shift failed: %v", err)
	}
	assertRow(t, s, 0, []interface{}{nil, int64(1), int64(2)})
	assertRow(t, s, 1, []interface{}{int64(6), nil, nil})
	// |n| >= row length keeps the shape, all elements null
	assertRow(t, s, 2, []interface{}{nil, nil, nil})
	assertRow(t, s, 3, []interface{}{nil, nil, int64(10)})
	// null n nullifies the row itself
	assertRow(t, s, 4, nil)
}

func TestListSampleDeterministic(t *testing.T) {
	l := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2, 3, 4, 5}, {6, 7, 8}})

	a, err := l.SampleN(ScalarParam(2), 42)
	if err != nil {
		t.Fatalf("SampleN failed: %v", err)
	}
	b, err := l.SampleN(ScalarParam(2), 42)
	if err != nil {
		t.Fatalf("SampleN failed: %v", err)
	}
	for i := 0; i < l.Len(); i++ {
		if !reflect.DeepEqual(a.GetList(i), b.GetList(i)) {
			t.Errorf("row %d: same seed produced %v and %v", i, a.GetList(i), b.GetList(i))
		}
	}

	if got := len(a.GetList(0)); got != 2 {
		t.Errorf("sample size = %d, want 2", got)
	}
	// without replacement: no element appears twice
	seen := map[interface{}]bool{}
	for _, v := range a.GetList(0) {
		if seen[v] {
			t.Errorf("element %v sampled twice", v)
		}
		seen[v] = true
	}
}

func TestListSampleClampAndNull(t *testing.T) {
	l := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2}, {3, 4}})
	n := NewSeriesInt64WithNulls("n", []int64{10, 0}, []bool{true, false})

	s, err := l.SampleN(SeriesParam(n), 7)
	if err != nil {
		t.Fatalf("SampleN failed: %v", err)
	}
	if got := len(s.GetList(0)); got != 2 {
		t.Errorf("clamped sample size = %d, want 2", got)
	}
	assertRow(t, s, 1, nil)
}

func TestListSampleFraction(t *testing.T) {
	l := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2, 3, 4}, {5, 6}})

	s, err := l.SampleFraction(ScalarParam(0.5), 3)
	if err != nil {
		t.Fatalf("SampleFraction failed: %v", err)
	}
	if got := len(s.GetList(0)); got != 2 {
		t.Errorf("fraction 0.5 of 4 = %d elements, want 2", got)
	}
	if got := len(s.GetList(1)); got != 1 {
		t.Errorf("fraction 0.5 of 2 = %d elements, want 1", got)
	}

	full, err := l.SampleFraction(ScalarParam(1.0), 3)
	if err != nil {
		t.Fatalf("SampleFraction failed: %v", err)
	}
	if got := len(full.GetList(0)); got != 4 {
		t.Errorf("fraction 1.0 of 4 = %d elements, want 4", got)
	}
}

func TestListDropNulls(t *testing.T) {
	l := NewListSeriesOfInt64("a", [][]*int64{
		{ip(1), nil, ip(2)},
		{nil, nil},
		{},
		nil,
	}, []bool{true, true, true, false})

	d := l.DropNulls()
	assertRow(t, d, 0, []interface{}{int64(1), int64(2)})
	assertRow(t, d, 1, []interface{}{})
	assertRow(t, d, 2, []interface{}{})
	assertRow(t, d, 3, nil)
}

func TestListConcat(t *testing.T) {
	a := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2}, {3}})
	b := NewListSeriesFromSlicesI64("b", [][]int64{{10}, {20, 30}})

	c, err := a.Concat(b)
	if err != nil {
		t.Fatalf("Concat failed: %v", err)
	}
	assertRow(t, c, 0, []interface{}{int64(1), int64(2), int64(10)})
	assertRow(t, c, 1, []interface{}{int64(3), int64(20), int64(30)})
}

func TestListConcatBroadcast(t *testing.T) {
	a := NewListSeriesFromSlicesI64("a", [][]int64{{1}, {2}, {3}})
	one := NewListSeriesFromSlicesI64("b", [][]int64{{9, 9}})

	c, err := a.Concat(one)
	if err != nil {
		t.Fatalf("Concat failed: %v", err)
	}
	assertRow(t, c, 0, []interface{}{int64(1), int64(9), int64(9)})
	assertRow(t, c, 2, []interface{}{int64(3), int64(9), int64(9)})
}

func TestListConcatShapeError(t *testing.T) {
	a := NewListSeriesFromSlicesI64("a", [][]int64{{1}, {2}, {3}})
	b := NewListSeriesFromSlicesI64("b", [][]int64{{1}, {2}})

	if _, err := a.Concat(b); !errors.Is(err, ErrShape) {
		t.Errorf("mismatched concat: err = %v, want ErrShape", err)
	}
}

func TestListConcatPromotes(t *testing.T) {
	a := NewListSeriesFromSlicesI64("a", [][]int64{{1}})
	b := NewListSeriesFromSlicesF64("b", [][]float64{{2.5}})

	c, err := a.Concat(b)
	if err != nil {
		t.Fatalf("Concat failed: %v", err)
	}
	if c.ElementType() != Float64 {
		t.Errorf("promoted element dtype = %v, want %v", c.ElementType(), Float64)
	}
	assertRow(t, c, 0, []interface{}{1.0, 2.5})
}

func TestListConcatNullRow(t *testing.T) {
	a := NewListSeriesOfInt64("a", [][]*int64{{ip(1)}, nil}, []bool{true, false})
	b := NewListSeriesFromSlicesI64("b", [][]int64{{2}, {3}})

	c, err := a.Concat(b)
	if err != nil {
		t.Fatalf("Concat failed: %v", err)
	}
	assertRow(t, c, 0, []interface{}{int64(1), int64(2)})
	assertRow(t, c, 1, nil)
}

func TestListJoin(t *testing.T) {
	l := NewListSeriesFromSlicesString("a", [][]string{{"x", "y"}, {"z"}, {}})

	j, err := l.Join(ScalarParam("-"), false)
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	assertSeries(t, j, []interface{}{"x-y", "z", ""})
}

func TestListJoinNulls(t *testing.T) {
	l := NewListSeriesOfString("a", [][]*string{
		{sp("a"), nil, sp("b")},
		{sp("c")},
	}, nil)

	strict, err := l.Join(ScalarParam(" "), false)
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	assertSeries(t, strict, []interface{}{nil, "c"})

	loose, err := l.Join(ScalarParam(" "), true)
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	assertSeries(t, loose, []interface{}{"a b", "c"})
}

func TestListJoinPerRowSeparator(t *testing.T) {
	l := NewListSeriesFromSlicesString("a", [][]string{{"a", "b"}, {"c", "d"}})
	sep := NewSeriesStringWithNulls("s", []string{"-", ""}, []bool{true, false})

	j, err := l.Join(SeriesParam(sep), false)
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	assertSeries(t, j, []interface{}{"a-b", nil})
}

func TestListJoinRequiresStrings(t *testing.T) {
	l := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2}})
	if _, err := l.Join(ScalarParam("-"), false); !errors.Is(err, ErrCompute) {
		t.Errorf("Join on ints: err = %v, want ErrCompute", err)
	}
}

func TestListToStruct(t *testing.T) {
	l := NewListSeriesOfInt64("a", [][]*int64{
		{ip(1), ip(2), ip(3)},
		{ip(4)},
		nil,
	}, []bool{true, true, false})

	ss, err := l.ToStruct(ToStructOptions{})
	if err != nil {
		t.Fatalf("ToStruct failed: %v", err)
	}
	wantNames := []string{"field_0", "field_1", "field_2"}
	if !reflect.DeepEqual(ss.FieldNames(), wantNames) {
		t.Errorf("FieldNames() = %v, want %v", ss.FieldNames(), wantNames)
	}

	assertSeries(t, ss.Field("field_0"), []interface{}{int64(1), int64(4), nil})
	// short rows pad with nulls
	assertSeries(t, ss.Field("field_1"), []interface{}{int64(2), nil, nil})
	assertSeries(t, ss.Field("field_2"), []interface{}{int64(3), nil, nil})
}

func TestListToStructFixedNames(t *testing.T) {
	l := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2, 3}, {4, 5, 6}})

	ss, err := l.ToStruct(ToStructOptions{Fields: []string{"x", "y"}})
	if err != nil {
		t.Fatalf("ToStruct failed: %v", err)
	}
	// explicit fields set the width: longer rows truncate
	if len(ss.FieldNames()) != 2 {
		t.Fatalf("field count = %d, want 2", len(ss.FieldNames()))
	}
	assertSeries(t, ss.Field("x"), []interface{}{int64(1), int64(4)})
	assertSeries(t, ss.Field("y"), []interface{}{int64(2), int64(5)})
}

func TestListToStructNameGenerator(t *testing.T) {
	l := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2}})

	ss, err := l.ToStruct(ToStructOptions{
		UpperBound: 2,
		FieldName:  func(i int) string { return string(rune('a' + i)) },
	})
	if err != nil {
		t.Fatalf("ToStruct failed: %v", err)
	}
	if !reflect.DeepEqual(ss.FieldNames(), []string{"a", "b"}) {
		t.Errorf("FieldNames() = %v, want [a b]", ss.FieldNames())
	}
}

func TestListToArray(t *testing.T) {
	l := NewListSeriesOfInt64("a", [][]*int64{
		{ip(1), ip(2)},
		{ip(3), nil},
		nil,
	}, []bool{true, true, false})

	arr, err := l.ToArray(2)
	if err != nil {
		t.Fatalf("ToArray failed: %v", err)
	}
	if arr.Width() != 2 {
		t.Errorf("Width() = %d, want 2", arr.Width())
	}
	if got := arr.GetRow(0); !reflect.DeepEqual(got, []interface{}{int64(1), int64(2)}) {
		t.Errorf("row 0 = %v", got)
	}
	if got := arr.GetRow(1); !reflect.DeepEqual(got, []interface{}{int64(3), nil}) {
		t.Errorf("row 1 = %v", got)
	}
	if arr.IsValid(2) {
		t.Error("row 2 should be null")
	}
}

func TestListToArrayWidthMismatch(t *testing.T) {
	l := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2}, {3}})
	if _, err := l.ToArray(2); !errors.Is(err, ErrCompute) {
		t.Errorf("ragged ToArray: err = %v, want ErrCompute", err)
	}
}

func TestListShiftOneRowBroadcastsToParam(t *testing.T) {
	l := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2, 3}})

	got, err := l.Shift(SeriesParam(NewSeriesInt64("n", []int64{0, 1, -1})))
	if err != nil {
		t.Fatalf("Shift failed: %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", got.Len())
	}
	assertRow(t, got, 0, []interface{}{int64(1), int64(2), int64(3)})
	assertRow(t, got, 1, []interface{}{nil, int64(1), int64(2)})
	assertRow(t, got, 2, []interface{}{int64(2), int64(3), nil})
}

func TestListSampleNOneRowBroadcastsToParam(t *testing.T) {
	l := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2}})

	got, err := l.SampleN(SeriesParam(NewSeriesInt64("n", []int64{1, 2, 0})), 7)
	if err != nil {
		t.Fatalf("SampleN failed: %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", got.Len())
	}
	assertSeries(t, got.Lengths(), []interface{}{int64(1), int64(2), int64(0)})
	// without replacement: the full draw holds both elements in some order
	row := got.GetList(1)
	if len(row) != 2 {
		t.Fatalf("row 1 = %v, want 2 elements", row)
	}
	if row[0] == row[1] {
		t.Errorf("full sample repeated an element: %v", row)
	}
	for _, v := range row {
		if v != int64(1) && v != int64(2) {
			t.Errorf("sample drew %v, want an input element", v)
		}
	}
}

func TestListSampleFractionOneRowBroadcastsToParam(t *testing.T) {
	l := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2}})

	got, err := l.SampleFraction(SeriesParam(NewSeriesFloat64("f", []float64{0.5, 1.0, 0.0})), 7)
	if err != nil {
		t.Fatalf("SampleFraction failed: %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", got.Len())
	}
	assertSeries(t, got.Lengths(), []interface{}{int64(1), int64(2), int64(0)})
}

func TestListConcatCategoricalMergesDictionaries(t *testing.T) {
	lv := NewSeriesCategorical("", []int64{0, 1}, []string{"a", "b"})
	left, err := NewListSeries("a", []int32{0, 2}, lv)
	if err != nil {
		t.Fatalf("NewListSeries failed: %v", err)
	}
	rv := NewSeriesCategorical("", []int64{0, 1}, []string{"c", "a"})
	right, err := NewListSeries("b", []int32{0, 2}, rv)
	if err != nil {
		t.Fatalf("NewListSeries failed: %v", err)
	}

	got, err := left.Concat(right)
	if err != nil {
		t.Fatalf("Concat failed: %v", err)
	}
	if got.ElementType() != Categorical {
		t.Errorf("element type = %v, want %v", got.ElementType(), Categorical)
	}
	// right-side codes decode through the merged dictionary, not the left one
	assertRow(t, got, 0, []interface{}{"a", "b", "c", "a"})
}
