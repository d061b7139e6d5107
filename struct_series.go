package corsair

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/bitutil"
)

// ============================================================================
// StructSeries - A series containing struct values (row of named fields)
// ============================================================================

// StructSeries represents a column of struct values where each row has the
// same ordered set of named fields. Each field is stored as a separate
// Series (columnar storage).
type StructSeries struct {
	name       string
	structType *StructType
	fields     []*Series
	length     int
}

// NewStructSeries creates a StructSeries from ordered field names and series.
// All field series must have the same length.
func NewStructSeries(name string, fieldNames []string, fields []*Series) (*StructSeries, error) {
	if len(fieldNames) != len(fields) {
		return nil, shapeErrorf("field names count %d doesn't match series count %d",
			len(fieldNames), len(fields))
	}

	length := -1
	structFields := make([]StructField, 0, len(fields))
	for i, s := range fields {
		if length == -1 {
			length = s.Len()
		} else if s.Len() != length {
			return nil, shapeErrorf("field %s has length %d, expected %d",
				fieldNames[i], s.Len(), length)
		}
		structFields = append(structFields, StructField{Name: fieldNames[i], DType: s.DType()})
	}
	if length == -1 {
		length = 0
	}

	return &StructSeries{
		name:       name,
		structType: NewStructType(structFields),
		fields:     fields,
		length:     length,
	}, nil
}

// Name returns the series name
func (s *StructSeries) Name() string { return s.name }

// DType returns Struct
func (s *StructSeries) DType() DType { return Struct }

// Len returns the number of rows
func (s *StructSeries) Len() int { return s.length }

// StructType returns the struct type metadata
func (s *StructSeries) StructType() *StructType { return s.structType }

// Field returns a field by name, or nil when absent
func (s *StructSeries) Field(name string) *Series {
	if i, ok := s.structType.GetFieldIndex(name); ok {
		return s.fields[i]
	}
	return nil
}

// FieldByIndex returns the field series at position i
func (s *StructSeries) FieldByIndex(i int) *Series {
	return s.fields[i]
}

// FieldNames returns the ordered field names
func (s *StructSeries) FieldNames() []string {
	names := make([]string, len(s.structType.Fields))
	for i, f := range s.structType.Fields {
		names[i] = f.Name
	}
	return names
}

// GetRow returns all field values at a row index as a map (nil values for
// null fields)
func (s *StructSeries) GetRow(index int) map[string]interface{} {
	if index < 0 || index >= s.length {
		return nil
	}
	result := make(map[string]interface{}, len(s.fields))
	for i, f := range s.structType.Fields {
		result[f.Name] = s.fields[i].Get(index)
	}
	return result
}

// String returns a string representation
func (s *StructSeries) String() string {
	return fmt.Sprintf("StructSeries('%s', %s, len=%d)", s.name, s.structType, s.length)
}

// ============================================================================
// ArraySeries - A series of fixed-width arrays
// ============================================================================

// ArraySeries represents a column whose rows are fixed-width arrays of a
// uniform element type. Row i occupies values[i*width : (i+1)*width].
type ArraySeries struct {
	name      string
	arrayType *ArrayType
	values    *Series
	validity  []byte
	length    int
}

// NewArraySeries creates an ArraySeries from flattened values; the values
// length must be a multiple of width.
func NewArraySeries(name string, width int, values *Series) (*ArraySeries, error) {
	if width <= 0 {
		return nil, computeErrorf("array width must be positive, got %d", width)
	}
	if values.Len()%width != 0 {
		return nil, shapeErrorf("values length %d is not a multiple of width %d", values.Len(), width)
	}
	return &ArraySeries{
		name:      name,
		arrayType: NewArrayType(values.DType(), width),
		values:    values,
		length:    values.Len() / width,
	}, nil
}

// Name returns the series name
func (a *ArraySeries) Name() string { return a.name }

// DType returns Array
func (a *ArraySeries) DType() DType { return Array }

// Len returns the number of rows
func (a *ArraySeries) Len() int { return a.length }

// ArrayType returns the array type metadata
func (a *ArraySeries) ArrayType() *ArrayType { return a.arrayType }

// Width returns the fixed element count per row
func (a *ArraySeries) Width() int { return a.arrayType.Size }

// Values returns the underlying flattened values Series
func (a *ArraySeries) Values() *Series { return a.values }

// IsValid reports whether row i is non-null
func (a *ArraySeries) IsValid(i int) bool {
	if a.validity == nil {
		return true
	}
	return bitutil.BitIsSet(a.validity, i)
}

// GetRow returns row i as boxed values (nil elements for nulls), or nil for
// a null row
func (a *ArraySeries) GetRow(i int) []interface{} {
	if i < 0 || i >= a.length || !a.IsValid(i) {
		return nil
	}
	w := a.arrayType.Size
	out := make([]interface{}, 0, w)
	for j := i * w; j < (i+1)*w; j++ {
		out = append(out, a.values.Get(j))
	}
	return out
}

// String returns a string representation
func (a *ArraySeries) String() string {
	return fmt.Sprintf("ArraySeries('%s', %s, len=%d)", a.name, a.arrayType, a.length)
}
