package corsair

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ============================================================================
// Arrow Export
// ============================================================================

// dtypeToArrowType converts a DType to the corresponding Arrow DataType
func dtypeToArrowType(dtype DType, unit TimeUnit) (arrow.DataType, error) {
	switch dtype {
	case Float64:
		return arrow.PrimitiveTypes.Float64, nil
	case Float32:
		return arrow.PrimitiveTypes.Float32, nil
	case Int64:
		return arrow.PrimitiveTypes.Int64, nil
	case Int32:
		return arrow.PrimitiveTypes.Int32, nil
	case Int16:
		return arrow.PrimitiveTypes.Int16, nil
	case Int8:
		return arrow.PrimitiveTypes.Int8, nil
	case UInt64:
		return arrow.PrimitiveTypes.Uint64, nil
	case UInt32:
		return arrow.PrimitiveTypes.Uint32, nil
	case UInt16:
		return arrow.PrimitiveTypes.Uint16, nil
	case UInt8:
		return arrow.PrimitiveTypes.Uint8, nil
	case Bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case String:
		return arrow.BinaryTypes.String, nil
	case Date:
		return arrow.FixedWidthTypes.Date32, nil
	case Datetime:
		return &arrow.TimestampType{Unit: arrowTimeUnit(unit)}, nil
	case Time:
		return arrow.FixedWidthTypes.Time64ns, nil
	case Duration:
		return &arrow.DurationType{Unit: arrowTimeUnit(unit)}, nil
	case Categorical:
		return &arrow.DictionaryType{
			IndexType: arrow.PrimitiveTypes.Int32,
			ValueType: arrow.BinaryTypes.String,
		}, nil
	default:
		return nil, schemaErrorf("unsupported dtype for Arrow export: %s", dtype)
	}
}

func arrowTimeUnit(u TimeUnit) arrow.TimeUnit {
	switch u {
	case Milliseconds:
		return arrow.Millisecond
	case Microseconds:
		return arrow.Microsecond
	default:
		return arrow.Nanosecond
	}
}

func timeUnitFromArrow(u arrow.TimeUnit) (TimeUnit, error) {
	switch u {
	case arrow.Millisecond:
		return Milliseconds, nil
	case arrow.Microsecond:
		return Microseconds, nil
	case arrow.Nanosecond:
		return Nanoseconds, nil
	default:
		return 0, schemaErrorf("unsupported Arrow time unit: %s", u)
	}
}

// SeriesToArrow converts a Series to an Arrow Array.
// The caller is responsible for calling Release() on the returned array.
func SeriesToArrow(s *Series, mem memory.Allocator) (arrow.Array, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	switch s.DType() {
	case Float64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		for i, v := range s.Floats() {
			if !s.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(v)
		}
		return b.NewArray(), nil

	case Float32:
		b := array.NewFloat32Builder(mem)
		defer b.Release()
		for i, v := range s.Floats() {
			if !s.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(float32(v))
		}
		return b.NewArray(), nil

	case Int64:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		for i, v := range s.Ints() {
			if !s.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(v)
		}
		return b.NewArray(), nil

	case Int32:
		b := array.NewInt32Builder(mem)
		defer b.Release()
		for i, v := range s.Ints() {
			if !s.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(int32(v))
		}
		return b.NewArray(), nil

	case Int16:
		b := array.NewInt16Builder(mem)
		defer b.Release()
		for i, v := range s.Ints() {
			if !s.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(int16(v))
		}
		return b.NewArray(), nil

	case Int8:
		b := array.NewInt8Builder(mem)
		defer b.Release()
		for i, v := range s.Ints() {
			if !s.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(int8(v))
		}
		return b.NewArray(), nil

	case UInt64:
		b := array.NewUint64Builder(mem)
		defer b.Release()
		for i, v := range s.Ints() {
			if !s.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(uint64(v))
		}
		return b.NewArray(), nil

	case UInt32:
		b := array.NewUint32Builder(mem)
		defer b.Release()
		for i, v := range s.Ints() {
			if !s.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(uint32(v))
		}
		return b.NewArray(), nil

	case UInt16:
		b := array.NewUint16Builder(mem)
		defer b.Release()
		for i, v := range s.Ints() {
			if !s.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(uint16(v))
		}
		return b.NewArray(), nil

	case UInt8:
		b := array.NewUint8Builder(mem)
		defer b.Release()
		for i, v := range s.Ints() {
			if !s.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(uint8(v))
		}
		return b.NewArray(), nil

	case Bool:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		for i, v := range s.Bools() {
			if !s.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(v)
		}
		return b.NewArray(), nil

	case String:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		for i, v := range s.Strings() {
			if !s.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(v)
		}
		return b.NewArray(), nil

	case Date:
		b := array.NewDate32Builder(mem)
		defer b.Release()
		for i, v := range s.Ints() {
			if !s.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(arrow.Date32(v))
		}
		return b.NewArray(), nil

	case Datetime:
		b := array.NewTimestampBuilder(mem, &arrow.TimestampType{Unit: arrowTimeUnit(s.Unit())})
		defer b.Release()
		for i, v := range s.Ints() {
			if !s.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(arrow.Timestamp(v))
		}
		return b.NewArray(), nil

	case Time:
		b := array.NewTime64Builder(mem, arrow.FixedWidthTypes.Time64ns.(*arrow.Time64Type))
		defer b.Release()
		for i, v := range s.Ints() {
			if !s.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(arrow.Time64(v))
		}
		return b.NewArray(), nil

	case Duration:
		b := array.NewDurationBuilder(mem, &arrow.DurationType{Unit: arrowTimeUnit(s.Unit())})
		defer b.Release()
		for i, v := range s.Ints() {
			if !s.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(arrow.Duration(v))
		}
		return b.NewArray(), nil

	case Categorical:
		dictType := &arrow.DictionaryType{
			IndexType: arrow.PrimitiveTypes.Int32,
			ValueType: arrow.BinaryTypes.String,
		}
		b := array.NewDictionaryBuilder(mem, dictType)
		defer b.Release()
		dictBuilder := b.(*array.BinaryDictionaryBuilder)
		dict := s.Dict()
		for i, code := range s.Ints() {
			if !s.IsValid(i) || code < 0 || int(code) >= len(dict) {
				dictBuilder.AppendNull()
				continue
			}
			if err := dictBuilder.AppendString(dict[code]); err != nil {
				return nil, err
			}
		}
		return b.NewArray(), nil

	default:
		return nil, schemaErrorf("unsupported dtype for Arrow export: %s", s.DType())
	}
}

// ToArrow converts the list column to an Arrow List array without copying
// the offsets or validity buffers.
// The caller is responsible for calling Release() on the returned array.
func (l *ListSeries) ToArrow(mem memory.Allocator) (*array.List, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	child, err := SeriesToArrow(l.values, mem)
	if err != nil {
		return nil, err
	}
	defer child.Release()

	offsetsBuf := memory.NewBufferBytes(arrow.Int32Traits.CastToBytes(l.offsets))
	var validityBuf *memory.Buffer
	if l.validity != nil {
		validityBuf = memory.NewBufferBytes(l.validity)
	}

	data := array.NewData(
		arrow.ListOf(child.DataType()),
		l.length,
		[]*memory.Buffer{validityBuf, offsetsBuf},
		[]arrow.ArrayData{child.Data()},
		l.NullCount(),
		0,
	)
	defer data.Release()
	return array.NewListData(data), nil
}

// ============================================================================
// Arrow Import
// ============================================================================

// SeriesFromArrow converts an Arrow Array to a Series
func SeriesFromArrow(name string, arr arrow.Array) (*Series, error) {
	switch a := arr.(type) {
	case *array.Float64:
		data := make([]float64, a.Len())
		valid := make([]bool, a.Len())
		for i := 0; i < a.Len(); i++ {
			data[i] = a.Value(i)
			valid[i] = !a.IsNull(i)
		}
		return NewSeriesFloat64WithNulls(name, data, valid), nil

	case *array.Float32:
		data := make([]float64, a.Len())
		valid := make([]bool, a.Len())
		for i := 0; i < a.Len(); i++ {
			data[i] = float64(a.Value(i))
			valid[i] = !a.IsNull(i)
		}
		return NewSeriesFloat64WithNulls(name, data, valid).cast(Float32, 0), nil

	case *array.Int64:
		data := make([]int64, a.Len())
		valid := make([]bool, a.Len())
		for i := 0; i < a.Len(); i++ {
			data[i] = a.Value(i)
			valid[i] = !a.IsNull(i)
		}
		return NewSeriesInt64WithNulls(name, data, valid), nil

	case *array.Int32:
		return importInts(name, Int32, a.Len(), a.IsNull, func(i int) int64 { return int64(a.Value(i)) }), nil

	case *array.Int16:
		return importInts(name, Int16, a.Len(), a.IsNull, func(i int) int64 { return int64(a.Value(i)) }), nil

	case *array.Int8:
		return importInts(name, Int8, a.Len(), a.IsNull, func(i int) int64 { return int64(a.Value(i)) }), nil

	case *array.Uint64:
		return importInts(name, UInt64, a.Len(), a.IsNull, func(i int) int64 { return int64(a.Value(i)) }), nil

	case *array.Uint32:
		return importInts(name, UInt32, a.Len(), a.IsNull, func(i int) int64 { return int64(a.Value(i)) }), nil

	case *array.Uint16:
		return importInts(name, UInt16, a.Len(), a.IsNull, func(i int) int64 { return int64(a.Value(i)) }), nil

	case *array.Uint8:
		return importInts(name, UInt8, a.Len(), a.IsNull, func(i int) int64 { return int64(a.Value(i)) }), nil

	case *array.Boolean:
		data := make([]bool, a.Len())
		valid := make([]bool, a.Len())
		for i := 0; i < a.Len(); i++ {
			data[i] = a.Value(i)
			valid[i] = !a.IsNull(i)
		}
		return NewSeriesBoolWithNulls(name, data, valid), nil

	case *array.String:
		data := make([]string, a.Len())
		valid := make([]bool, a.Len())
		for i := 0; i < a.Len(); i++ {
			data[i] = a.Value(i)
			valid[i] = !a.IsNull(i)
		}
		return NewSeriesStringWithNulls(name, data, valid), nil

	case *array.Date32:
		return importInts(name, Date, a.Len(), a.IsNull, func(i int) int64 { return int64(a.Value(i)) }), nil

	case *array.Timestamp:
		unit, err := timeUnitFromArrow(a.DataType().(*arrow.TimestampType).Unit)
		if err != nil {
			return nil, err
		}
		s := importInts(name, Datetime, a.Len(), a.IsNull, func(i int) int64 { return int64(a.Value(i)) })
		return s.WithUnit(unit), nil

	case *array.Time64:
		return importInts(name, Time, a.Len(), a.IsNull, func(i int) int64 { return int64(a.Value(i)) }), nil

	case *array.Duration:
		unit, err := timeUnitFromArrow(a.DataType().(*arrow.DurationType).Unit)
		if err != nil {
			return nil, err
		}
		s := importInts(name, Duration, a.Len(), a.IsNull, func(i int) int64 { return int64(a.Value(i)) })
		return s.WithUnit(unit), nil

	case *array.Dictionary:
		dictArr, ok := a.Dictionary().(*array.String)
		if !ok {
			return nil, schemaErrorf("unsupported dictionary value type: %T", a.Dictionary())
		}
		dict := make([]string, dictArr.Len())
		for i := 0; i < dictArr.Len(); i++ {
			dict[i] = dictArr.Value(i)
		}

		b := newSeriesBuilder(Categorical, 0, dict, a.Len())
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				b.appendNull()
				continue
			}
			b.appendInt(int64(a.GetValueIndex(i)))
		}
		return b.finish(name), nil

	default:
		return nil, schemaErrorf("unsupported Arrow array type: %T", arr)
	}
}

// importInts builds an integer-backed Series from a per-index accessor
func importInts(name string, dtype DType, n int, isNull func(int) bool, value func(int) int64) *Series {
	data := make([]int64, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		data[i] = value(i)
		valid[i] = !isNull(i)
	}
	return NewSeriesIntsWithNulls(name, dtype, data, valid)
}

// ListSeriesFromArrow converts an Arrow List array to a ListSeries
func ListSeriesFromArrow(name string, arr *array.List) (*ListSeries, error) {
	values, err := SeriesFromArrow("", arr.ListValues())
	if err != nil {
		return nil, err
	}

	offsets := make([]int32, arr.Len()+1)
	for i := 0; i < arr.Len(); i++ {
		start, end := arr.ValueOffsets(i)
		offsets[i] = int32(start)
		offsets[i+1] = int32(end)
	}

	var valid []bool
	if arr.NullN() > 0 {
		valid = make([]bool, arr.Len())
		for i := range valid {
			valid[i] = !arr.IsNull(i)
		}
	}
	return NewListSeriesWithNulls(name, offsets, values, valid)
}
