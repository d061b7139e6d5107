package corsair

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow/bitutil"
)

// ============================================================================
// Series - flat typed column with validity
// ============================================================================

// Series is a flat column of a single dtype. Storage is grouped into four
// physical classes: all integer, temporal and categorical dtypes share int64
// storage, floats share float64, strings and bools have their own buffers.
// Nullness lives in an Arrow-format validity bitmap (LSB first); a nil bitmap
// means every element is valid. A Series is immutable once constructed.
type Series struct {
	name     string
	dtype    DType
	unit     TimeUnit // for Datetime/Duration
	ints     []int64
	floats   []float64
	strs     []string
	bools    []bool
	dict     []string // categorical dictionary
	validity []byte
	length   int
}

// NewSeriesFloat64 creates a Float64 Series without nulls
func NewSeriesFloat64(name string, data []float64) *Series {
	return &Series{name: name, dtype: Float64, floats: data, length: len(data)}
}

// NewSeriesFloat32 creates a Float32 Series without nulls.
// Values are held in float64 storage; the dtype records the logical width.
func NewSeriesFloat32(name string, data []float32) *Series {
	vals := make([]float64, len(data))
	for i, v := range data {
		vals[i] = float64(v)
	}
	return &Series{name: name, dtype: Float32, floats: vals, length: len(data)}
}

// NewSeriesInt64 creates an Int64 Series without nulls
func NewSeriesInt64(name string, data []int64) *Series {
	return &Series{name: name, dtype: Int64, ints: data, length: len(data)}
}

// NewSeriesInt32 creates an Int32 Series without nulls
func NewSeriesInt32(name string, data []int32) *Series {
	vals := make([]int64, len(data))
	for i, v := range data {
		vals[i] = int64(v)
	}
	return &Series{name: name, dtype: Int32, ints: vals, length: len(data)}
}

// NewSeriesInts creates a Series of any integer-backed dtype (integers,
// Date/Datetime/Time/Duration, Categorical codes) from int64 values.
func NewSeriesInts(name string, dtype DType, data []int64) *Series {
	if dtype.physical() != physInt {
		panic(fmt.Sprintf("NewSeriesInts: dtype %s is not integer-backed", dtype))
	}
	return &Series{name: name, dtype: dtype, ints: data, length: len(data)}
}

// NewSeriesString creates a String Series without nulls
func NewSeriesString(name string, data []string) *Series {
	return &Series{name: name, dtype: String, strs: data, length: len(data)}
}

// NewSeriesBool creates a Bool Series without nulls
func NewSeriesBool(name string, data []bool) *Series {
	return &Series{name: name, dtype: Bool, bools: data, length: len(data)}
}

// NewSeriesCategorical creates a Categorical Series from dictionary codes
func NewSeriesCategorical(name string, codes []int64, dict []string) *Series {
	return &Series{name: name, dtype: Categorical, ints: codes, dict: dict, length: len(codes)}
}

// NewSeriesFloat64WithNulls creates a Float64 Series where valid[i]=false
// marks element i as null.
func NewSeriesFloat64WithNulls(name string, data []float64, valid []bool) *Series {
	s := NewSeriesFloat64(name, data)
	s.validity = buildBitmap(valid)
	return s
}

// NewSeriesInt64WithNulls creates an Int64 Series with nulls
func NewSeriesInt64WithNulls(name string, data []int64, valid []bool) *Series {
	s := NewSeriesInt64(name, data)
	s.validity = buildBitmap(valid)
	return s
}

// NewSeriesIntsWithNulls creates an integer-backed Series with nulls
func NewSeriesIntsWithNulls(name string, dtype DType, data []int64, valid []bool) *Series {
	s := NewSeriesInts(name, dtype, data)
	s.validity = buildBitmap(valid)
	return s
}

// NewSeriesStringWithNulls creates a String Series with nulls
func NewSeriesStringWithNulls(name string, data []string, valid []bool) *Series {
	s := NewSeriesString(name, data)
	s.validity = buildBitmap(valid)
	return s
}

// NewSeriesBoolWithNulls creates a Bool Series with nulls
func NewSeriesBoolWithNulls(name string, data []bool, valid []bool) *Series {
	s := NewSeriesBool(name, data)
	s.validity = buildBitmap(valid)
	return s
}

// WithUnit returns the series with its time unit set (Datetime/Duration)
func (s *Series) WithUnit(unit TimeUnit) *Series {
	out := *s
	out.unit = unit
	return &out
}

// buildBitmap packs a valid slice into an Arrow LSB-first bitmap.
// Returns nil when every element is valid.
func buildBitmap(valid []bool) []byte {
	if valid == nil {
		return nil
	}
	anyNull := false
	for _, v := range valid {
		if !v {
			anyNull = true
			break
		}
	}
	if !anyNull {
		return nil
	}
	bm := make([]byte, bitutil.BytesForBits(int64(len(valid))))
	for i, v := range valid {
		if v {
			bitutil.SetBit(bm, i)
		}
	}
	return bm
}

// Name returns the series name
func (s *Series) Name() string { return s.name }

// DType returns the series dtype
func (s *Series) DType() DType { return s.dtype }

// Unit returns the time unit (meaningful for Datetime/Duration)
func (s *Series) Unit() TimeUnit { return s.unit }

// Len returns the number of elements
func (s *Series) Len() int { return s.length }

// Dict returns the categorical dictionary (nil for other dtypes)
func (s *Series) Dict() []string { return s.dict }

// Rename returns a copy of the series with a new name
func (s *Series) Rename(name string) *Series {
	out := *s
	out.name = name
	return &out
}

// IsValid reports whether element i is non-null
func (s *Series) IsValid(i int) bool {
	if s.validity == nil {
		return true
	}
	return bitutil.BitIsSet(s.validity, i)
}

// HasNulls reports whether the series contains any null element
func (s *Series) HasNulls() bool {
	return s.NullCount() > 0
}

// NullCount returns the number of null elements
func (s *Series) NullCount() int {
	if s.validity == nil {
		return 0
	}
	return s.length - bitutil.CountSetBits(s.validity, 0, s.length)
}

// Ints returns the int64 storage (integer, temporal and categorical dtypes)
func (s *Series) Ints() []int64 { return s.ints }

// Floats returns the float64 storage (Float32/Float64 dtypes)
func (s *Series) Floats() []float64 { return s.floats }

// Strings returns the string storage (String dtype)
func (s *Series) Strings() []string { return s.strs }

// Bools returns the bool storage (Bool dtype)
func (s *Series) Bools() []bool { return s.bools }

// Get returns the boxed value at index i, or nil when null.
// Categorical values decode through the dictionary.
func (s *Series) Get(i int) interface{} {
	if i < 0 || i >= s.length || !s.IsValid(i) {
		return nil
	}
	switch s.dtype.physical() {
	case physInt:
		if s.dtype == Categorical {
			return s.dict[s.ints[i]]
		}
		return s.ints[i]
	case physFloat:
		return s.floats[i]
	case physString:
		return s.strs[i]
	case physBool:
		return s.bools[i]
	}
	return nil
}

// String returns a string representation
func (s *Series) String() string {
	return fmt.Sprintf("Series('%s', %s, len=%d)", s.name, s.dtype, s.length)
}

// take builds a new Series from elements of s at the given physical indices.
// A negative index produces a null element. The logical dtype, time unit and
// categorical dictionary carry over unchanged, which is what keeps get and
// gather subtype-preserving.
func (s *Series) take(indices []int64) *Series {
	b := newSeriesBuilder(s.dtype, s.unit, s.dict, len(indices))
	for _, idx := range indices {
		if idx < 0 {
			b.appendNull()
		} else {
			b.appendFrom(s, int(idx))
		}
	}
	return b.finish(s.name)
}

// cast converts the series to another dtype within the numeric classes.
// Used by concat supertype unification; value-preserving for the promotions
// the engine performs.
func (s *Series) cast(to DType, unit TimeUnit) *Series {
	if s.dtype == to && s.unit == unit {
		return s
	}
	b := newSeriesBuilder(to, unit, nil, s.length)
	for i := 0; i < s.length; i++ {
		if !s.IsValid(i) {
			b.appendNull()
			continue
		}
		switch {
		case s.dtype.physical() == physInt && to.physical() == physInt:
			b.appendInt(s.ints[i])
		case s.dtype.physical() == physInt && to.physical() == physFloat:
			b.appendFloat(float64(s.ints[i]))
		case s.dtype.physical() == physFloat && to.physical() == physFloat:
			b.appendFloat(s.floats[i])
		case s.dtype.physical() == physFloat && to.physical() == physInt:
			b.appendInt(int64(math.Trunc(s.floats[i])))
		default:
			b.appendNull()
		}
	}
	return b.finish(s.name)
}

// ============================================================================
// Series Builder
// ============================================================================

// seriesBuilder accumulates elements for a new Series. Outputs are private
// to the builder until finish, so a failed operation can discard everything
// without partial results becoming observable.
type seriesBuilder struct {
	dtype  DType
	unit   TimeUnit
	dict   []string
	ints   []int64
	floats []float64
	strs   []string
	bools  []bool
	valid  []bool
}

func newSeriesBuilder(dtype DType, unit TimeUnit, dict []string, capacity int) *seriesBuilder {
	b := &seriesBuilder{dtype: dtype, unit: unit, dict: dict}
	b.valid = make([]bool, 0, capacity)
	switch dtype.physical() {
	case physInt:
		b.ints = make([]int64, 0, capacity)
	case physFloat:
		b.floats = make([]float64, 0, capacity)
	case physString:
		b.strs = make([]string, 0, capacity)
	case physBool:
		b.bools = make([]bool, 0, capacity)
	}
	return b
}

func (b *seriesBuilder) appendNull() {
	switch b.dtype.physical() {
	case physInt:
		b.ints = append(b.ints, 0)
	case physFloat:
		b.floats = append(b.floats, 0)
	case physString:
		b.strs = append(b.strs, "")
	case physBool:
		b.bools = append(b.bools, false)
	}
	b.valid = append(b.valid, false)
}

func (b *seriesBuilder) appendInt(v int64) {
	b.ints = append(b.ints, v)
	b.valid = append(b.valid, true)
}

func (b *seriesBuilder) appendFloat(v float64) {
	b.floats = append(b.floats, v)
	b.valid = append(b.valid, true)
}

func (b *seriesBuilder) appendString(v string) {
	b.strs = append(b.strs, v)
	b.valid = append(b.valid, true)
}

func (b *seriesBuilder) appendBool(v bool) {
	b.bools = append(b.bools, v)
	b.valid = append(b.valid, true)
}

// appendFrom copies element i of src, including nullness
func (b *seriesBuilder) appendFrom(src *Series, i int) {
	if !src.IsValid(i) {
		b.appendNull()
		return
	}
	switch b.dtype.physical() {
	case physInt:
		b.appendInt(src.ints[i])
	case physFloat:
		b.appendFloat(src.floats[i])
	case physString:
		b.appendString(src.strs[i])
	case physBool:
		b.appendBool(src.bools[i])
	}
}

func (b *seriesBuilder) len() int { return len(b.valid) }

func (b *seriesBuilder) finish(name string) *Series {
	return &Series{
		name:     name,
		dtype:    b.dtype,
		unit:     b.unit,
		dict:     b.dict,
		ints:     b.ints,
		floats:   b.floats,
		strs:     b.strs,
		bools:    b.bools,
		validity: buildBitmap(b.valid),
		length:   len(b.valid),
	}
}
