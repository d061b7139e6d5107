package corsair

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/bitutil"
)

// ============================================================================
// ListSeries - variable-length list column
// ============================================================================

// ListSeries represents a column of list values where each row contains a
// variable-length list of elements of the same type. Storage is offset-based:
// row i occupies values[offsets[i]:offsets[i+1]]. Row nullness lives in a
// validity bitmap and is decided only there: a null row may have an empty
// slice or alias a nonempty, ignored slice (both layouts are legal and
// indistinguishable to every operation). A ListSeries is immutable once
// constructed; operations return new columns.
type ListSeries struct {
	name     string
	listType *ListType
	offsets  []int32 // length = rows + 1, non-decreasing
	values   *Series // flattened child values
	validity []byte  // row-level validity, nil = all rows valid
	length   int
}

// NewListSeries creates a ListSeries from offsets and flattened values.
// offsets must have length numRows+1 and be non-decreasing; the final offset
// may be smaller than values.Len() (a dense null layout keeps ignored slices
// for null rows).
func NewListSeries(name string, offsets []int32, values *Series) (*ListSeries, error) {
	if len(offsets) < 1 {
		return nil, schemaErrorf("offsets must have at least 1 element")
	}

	numRows := len(offsets) - 1
	if offsets[0] < 0 {
		return nil, schemaErrorf("offsets must be non-negative, got %d", offsets[0])
	}
	for i := 0; i < numRows; i++ {
		if offsets[i] > offsets[i+1] {
			return nil, schemaErrorf("invalid offsets at row %d: %d > %d", i, offsets[i], offsets[i+1])
		}
	}
	if int(offsets[numRows]) > values.Len() {
		return nil, schemaErrorf("last offset %d exceeds values length %d", offsets[numRows], values.Len())
	}

	lt := &ListType{ElementType: values.DType(), ElementUnit: values.Unit()}
	return &ListSeries{
		name:     name,
		listType: lt,
		offsets:  offsets,
		values:   values,
		length:   numRows,
	}, nil
}

// NewListSeriesWithNulls creates a ListSeries where valid[i]=false marks
// row i as null regardless of its slice content.
func NewListSeriesWithNulls(name string, offsets []int32, values *Series, valid []bool) (*ListSeries, error) {
	l, err := NewListSeries(name, offsets, values)
	if err != nil {
		return nil, err
	}
	if valid != nil && len(valid) != l.length {
		return nil, shapeErrorf("validity length %d doesn't match row count %d", len(valid), l.length)
	}
	l.validity = buildBitmap(valid)
	return l, nil
}

// NewListSeriesFromSlicesI64 creates an Int64 ListSeries from a slice of slices
func NewListSeriesFromSlicesI64(name string, data [][]int64) *ListSeries {
	offsets := make([]int32, len(data)+1)
	total := 0
	for i, row := range data {
		offsets[i] = int32(total)
		total += len(row)
	}
	offsets[len(data)] = int32(total)

	flat := make([]int64, 0, total)
	for _, row := range data {
		flat = append(flat, row...)
	}

	l, _ := NewListSeries(name, offsets, NewSeriesInt64("", flat))
	return l
}

// NewListSeriesFromSlicesF64 creates a Float64 ListSeries from a slice of slices
func NewListSeriesFromSlicesF64(name string, data [][]float64) *ListSeries {
	offsets := make([]int32, len(data)+1)
	total := 0
	for i, row := range data {
		offsets[i] = int32(total)
		total += len(row)
	}
	offsets[len(data)] = int32(total)

	flat := make([]float64, 0, total)
	for _, row := range data {
		flat = append(flat, row...)
	}

	l, _ := NewListSeries(name, offsets, NewSeriesFloat64("", flat))
	return l
}

// NewListSeriesFromSlicesString creates a String ListSeries from a slice of slices
func NewListSeriesFromSlicesString(name string, data [][]string) *ListSeries {
	offsets := make([]int32, len(data)+1)
	total := 0
	for i, row := range data {
		offsets[i] = int32(total)
		total += len(row)
	}
	offsets[len(data)] = int32(total)

	flat := make([]string, 0, total)
	for _, row := range data {
		flat = append(flat, row...)
	}

	l, _ := NewListSeries(name, offsets, NewSeriesString("", flat))
	return l
}

// NewListSeriesOfInt64 creates an Int64 ListSeries where a nil element
// pointer marks a null element and valid[i]=false marks a null row.
// valid may be nil when every row is valid.
func NewListSeriesOfInt64(name string, data [][]*int64, valid []bool) *ListSeries {
	offsets := make([]int32, len(data)+1)
	flat := make([]int64, 0)
	elemValid := make([]bool, 0)
	for i, row := range data {
		offsets[i] = int32(len(flat))
		for _, p := range row {
			if p == nil {
				flat = append(flat, 0)
				elemValid = append(elemValid, false)
			} else {
				flat = append(flat, *p)
				elemValid = append(elemValid, true)
			}
		}
	}
	offsets[len(data)] = int32(len(flat))

	values := NewSeriesInt64WithNulls("", flat, elemValid)
	l, _ := NewListSeriesWithNulls(name, offsets, values, valid)
	return l
}

// NewListSeriesOfString creates a String ListSeries with per-element and
// per-row nulls, mirroring NewListSeriesOfInt64.
func NewListSeriesOfString(name string, data [][]*string, valid []bool) *ListSeries {
	offsets := make([]int32, len(data)+1)
	flat := make([]string, 0)
	elemValid := make([]bool, 0)
	for i, row := range data {
		offsets[i] = int32(len(flat))
		for _, p := range row {
			if p == nil {
				flat = append(flat, "")
				elemValid = append(elemValid, false)
			} else {
				flat = append(flat, *p)
				elemValid = append(elemValid, true)
			}
		}
	}
	offsets[len(data)] = int32(len(flat))

	values := NewSeriesStringWithNulls("", flat, elemValid)
	l, _ := NewListSeriesWithNulls(name, offsets, values, valid)
	return l
}

// Name returns the series name
func (l *ListSeries) Name() string { return l.name }

// DType returns List
func (l *ListSeries) DType() DType { return List }

// Len returns the number of rows
func (l *ListSeries) Len() int { return l.length }

// ListType returns the list type metadata
func (l *ListSeries) ListType() *ListType { return l.listType }

// ElementType returns the type of elements in the list
func (l *ListSeries) ElementType() DType { return l.listType.ElementType }

// Values returns the underlying flattened values Series
func (l *ListSeries) Values() *Series { return l.values }

// Offsets returns the offset array
func (l *ListSeries) Offsets() []int32 { return l.offsets }

// Rename returns a copy of the series with a new name
func (l *ListSeries) Rename(name string) *ListSeries {
	out := *l
	out.name = name
	return &out
}

// IsValid reports whether row i is non-null. Nullness is decided solely
// here, never from a row's slice length or content.
func (l *ListSeries) IsValid(i int) bool {
	if l.validity == nil {
		return true
	}
	return bitutil.BitIsSet(l.validity, i)
}

// NullCount returns the number of null rows
func (l *ListSeries) NullCount() int {
	n := 0
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			n++
		}
	}
	return n
}

// rowBounds returns the physical range of row i in the values buffer
func (l *ListSeries) rowBounds(i int) (int, int) {
	return int(l.offsets[i]), int(l.offsets[i+1])
}

// rowLen returns the element count of row i (0 for a null row's purposes
// the caller must consult IsValid first)
func (l *ListSeries) rowLen(i int) int {
	return int(l.offsets[i+1] - l.offsets[i])
}

// GetList returns row i as boxed values, with nil for null elements.
// Returns nil for a null row. Intended for display and tests.
func (l *ListSeries) GetList(i int) []interface{} {
	if i < 0 || i >= l.length || !l.IsValid(i) {
		return nil
	}
	start, end := l.rowBounds(i)
	out := make([]interface{}, 0, end-start)
	for j := start; j < end; j++ {
		out = append(out, l.values.Get(j))
	}
	return out
}

// String returns a string representation
func (l *ListSeries) String() string {
	return fmt.Sprintf("ListSeries('%s', %s, len=%d)", l.name, l.listType, l.length)
}

// Lengths returns the element count per row as a UInt32 Series.
// A null row yields a null length, never zero.
func (l *ListSeries) Lengths() *Series {
	b := newSeriesBuilder(UInt32, 0, nil, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			b.appendNull()
			continue
		}
		b.appendInt(int64(l.rowLen(i)))
	}
	return b.finish(l.name)
}

// Explode expands the list into a flat Series with one output row per
// element. An empty or null row contributes a single null element so row
// provenance is preserved. The second return value maps each output element
// to its source row.
func (l *ListSeries) Explode() (*Series, []int32) {
	b := newSeriesBuilder(l.values.DType(), l.values.Unit(), l.values.Dict(), l.values.Len())
	rows := make([]int32, 0, l.values.Len())
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) || l.rowLen(i) == 0 {
			b.appendNull()
			rows = append(rows, int32(i))
			continue
		}
		start, end := l.rowBounds(i)
		for j := start; j < end; j++ {
			b.appendFrom(l.values, j)
			rows = append(rows, int32(i))
		}
	}
	return b.finish(l.name), rows
}

// broadcastRows replicates a one-row list column to a longer strict
// parameter's length, broadcast in the opposite direction from the usual
// parameter-to-column case. Any other combination returns the column
// unchanged and leaves shape validation to parameter resolution.
func (l *ListSeries) broadcastRows(p Param) *ListSeries {
	if l.length != 1 || !p.isCol || p.col.Len() <= 1 {
		return l
	}
	n := p.col.Len()
	b := newListBuilder(l.values.DType(), l.values.Unit(), l.values.Dict(), n, n*l.values.Len())
	if !l.IsValid(0) {
		for i := 0; i < n; i++ {
			b.appendNullRow()
		}
		return b.finish(l.name)
	}
	start, end := l.rowBounds(0)
	idxs := make([]int64, 0, end-start)
	for j := start; j < end; j++ {
		idxs = append(idxs, int64(j))
	}
	for i := 0; i < n; i++ {
		b.appendTakeRow(l.values, idxs)
	}
	return b.finish(l.name)
}

// ImplodeGroups materializes per-group values into one list row per group,
// producing an ordinary ListSeries. Group-by aggregation goes through here
// and then shares every list operation code path with direct invocation.
func ImplodeGroups(s *Series, groups [][]int) *ListSeries {
	offsets := make([]int32, len(groups)+1)
	b := newSeriesBuilder(s.DType(), s.Unit(), s.Dict(), s.Len())
	for g, idxs := range groups {
		offsets[g] = int32(b.len())
		for _, i := range idxs {
			b.appendFrom(s, i)
		}
	}
	offsets[len(groups)] = int32(b.len())

	l, _ := NewListSeries(s.Name(), offsets, b.finish(""))
	return l
}

// ============================================================================
// List Builder
// ============================================================================

// listBuilder accumulates rows for a new ListSeries. Like seriesBuilder,
// nothing is observable until finish, which keeps failed operations
// all-or-nothing.
type listBuilder struct {
	vb      *seriesBuilder
	offsets []int32
	valid   []bool
}

func newListBuilder(elem DType, unit TimeUnit, dict []string, rowCap, elemCap int) *listBuilder {
	return &listBuilder{
		vb:      newSeriesBuilder(elem, unit, dict, elemCap),
		offsets: append(make([]int32, 0, rowCap+1), 0),
		valid:   make([]bool, 0, rowCap),
	}
}

// appendNullRow appends a null row with an empty slice
func (b *listBuilder) appendNullRow() {
	b.offsets = append(b.offsets, int32(b.vb.len()))
	b.valid = append(b.valid, false)
}

// appendTakeRow appends a row built from src elements at the given physical
// indices; a negative index yields a null element.
func (b *listBuilder) appendTakeRow(src *Series, indices []int64) {
	for _, idx := range indices {
		if idx < 0 {
			b.vb.appendNull()
		} else {
			b.vb.appendFrom(src, int(idx))
		}
	}
	b.offsets = append(b.offsets, int32(b.vb.len()))
	b.valid = append(b.valid, true)
}

// sealRow closes a valid row after elements were appended directly to vb
func (b *listBuilder) sealRow() {
	b.offsets = append(b.offsets, int32(b.vb.len()))
	b.valid = append(b.valid, true)
}

// appendEmptyRow appends a valid row with no elements
func (b *listBuilder) appendEmptyRow() {
	b.offsets = append(b.offsets, int32(b.vb.len()))
	b.valid = append(b.valid, true)
}

// appendNullElems appends a valid row of n null elements
func (b *listBuilder) appendNullElems(n int) {
	for i := 0; i < n; i++ {
		b.vb.appendNull()
	}
	b.offsets = append(b.offsets, int32(b.vb.len()))
	b.valid = append(b.valid, true)
}

func (b *listBuilder) finish(name string) *ListSeries {
	values := b.vb.finish("")
	l, _ := NewListSeriesWithNulls(name, b.offsets, values, b.valid)
	return l
}
