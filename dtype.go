package corsair

import "fmt"

// DType represents the data type of a Series
type DType uint8

const (
	// Numeric types
	Float64 DType = iota
	Float32
	Int64
	Int32
	Int16
	Int8
	UInt64
	UInt32
	UInt16
	UInt8

	// Other types
	Bool
	String

	// Temporal types
	Date
	Datetime
	Time
	Duration

	// Null type
	Null

	// Nested types
	Struct // Struct with named fields
	List   // Variable-length list of elements
	Array  // Fixed-length array of elements

	// Categorical type (dictionary-encoded strings)
	Categorical // String stored as integer indices into a dictionary
)

// TimeUnit is the resolution of Datetime and Duration values
type TimeUnit uint8

const (
	Milliseconds TimeUnit = iota
	Microseconds
	Nanoseconds
)

// String returns the string representation of the TimeUnit
func (u TimeUnit) String() string {
	switch u {
	case Milliseconds:
		return "ms"
	case Microseconds:
		return "us"
	case Nanoseconds:
		return "ns"
	default:
		return fmt.Sprintf("unit(%d)", u)
	}
}

// String returns the string representation of the DType
func (d DType) String() string {
	switch d {
	case Float64:
		return "Float64"
	case Float32:
		return "Float32"
	case Int64:
		return "Int64"
	case Int32:
		return "Int32"
	case Int16:
		return "Int16"
	case Int8:
		return "Int8"
	case UInt64:
		return "UInt64"
	case UInt32:
		return "UInt32"
	case UInt16:
		return "UInt16"
	case UInt8:
		return "UInt8"
	case Bool:
		return "Bool"
	case String:
		return "String"
	case Date:
		return "Date"
	case Datetime:
		return "Datetime"
	case Time:
		return "Time"
	case Duration:
		return "Duration"
	case Null:
		return "Null"
	case Struct:
		return "Struct"
	case List:
		return "List"
	case Array:
		return "Array"
	case Categorical:
		return "Categorical"
	default:
		return fmt.Sprintf("Unknown(%d)", d)
	}
}

// IsNumeric returns true if the dtype is a numeric type
func (d DType) IsNumeric() bool {
	return d.IsInteger() || d.IsFloat()
}

// IsFloat returns true if the dtype is a floating point type
func (d DType) IsFloat() bool {
	return d == Float64 || d == Float32
}

// IsInteger returns true if the dtype is an integer type
func (d DType) IsInteger() bool {
	switch d {
	case Int64, Int32, Int16, Int8, UInt64, UInt32, UInt16, UInt8:
		return true
	default:
		return false
	}
}

// IsSigned returns true if the dtype is a signed numeric type
func (d DType) IsSigned() bool {
	switch d {
	case Float64, Float32, Int64, Int32, Int16, Int8:
		return true
	default:
		return false
	}
}

// IsTemporal returns true if the dtype is a date/time type
func (d DType) IsTemporal() bool {
	switch d {
	case Date, Datetime, Time, Duration:
		return true
	default:
		return false
	}
}

// IsNested returns true if the dtype is a nested type (Struct, List, or Array)
func (d DType) IsNested() bool {
	switch d {
	case Struct, List, Array:
		return true
	default:
		return false
	}
}

// IsCategorical returns true if the dtype is Categorical
func (d DType) IsCategorical() bool {
	return d == Categorical
}

// physKind is the physical storage class backing a dtype. Every integer,
// temporal and categorical dtype shares int64 storage; the logical dtype is
// metadata layered on top, which is what lets gather-style operations
// preserve logical subtypes for free.
type physKind uint8

const (
	physInt physKind = iota
	physFloat
	physString
	physBool
	physNone // Null dtype, no storage
)

func (d DType) physical() physKind {
	switch d {
	case Int64, Int32, Int16, Int8, UInt64, UInt32, UInt16, UInt8,
		Date, Datetime, Time, Duration, Categorical:
		return physInt
	case Float64, Float32:
		return physFloat
	case String:
		return physString
	case Bool:
		return physBool
	default:
		return physNone
	}
}

// ============================================================================
// Promotion Tables
// ============================================================================
//
// Static tables keyed by inner dtype. Aggregations and lagged differences
// consult these instead of branching inline so the promotion rules stay
// auditable in one place.

// sumResultType maps an element dtype to the dtype of its list.sum result.
// Narrow integers widen to Int64 so row sums cannot overflow; Bool sums count
// into UInt32; everything else keeps its dtype (Duration keeps its unit).
var sumResultType = map[DType]DType{
	Bool:     UInt32,
	Int8:     Int64,
	Int16:    Int64,
	UInt8:    Int64,
	UInt16:   Int64,
	Int32:    Int32,
	UInt32:   UInt32,
	Int64:    Int64,
	UInt64:   UInt64,
	Float32:  Float32,
	Float64:  Float64,
	Duration: Duration,
}

// meanResultType maps an element dtype to the dtype of its list.mean result.
var meanResultType = map[DType]DType{
	Int8:     Float64,
	Int16:    Float64,
	Int32:    Float64,
	Int64:    Float64,
	UInt8:    Float64,
	UInt16:   Float64,
	UInt32:   Float64,
	UInt64:   Float64,
	Bool:     Float64,
	Float32:  Float32,
	Float64:  Float64,
	Duration: Duration,
}

// diffResult describes the output dtype of a lagged difference.
type diffResult struct {
	dtype DType
	unit  TimeUnit // meaningful when dtype == Duration
}

// diffResultType maps an element dtype to its list.diff output dtype.
// Unsigned integers widen one rank to a signed type able to hold a negative
// difference; temporal types become durations at the matching resolution
// (Datetime and Duration keep the unit of their input).
var diffResultType = map[DType]diffResult{
	Int8:     {dtype: Int8},
	Int16:    {dtype: Int16},
	Int32:    {dtype: Int32},
	Int64:    {dtype: Int64},
	UInt8:    {dtype: Int16},
	UInt16:   {dtype: Int32},
	UInt32:   {dtype: Int64},
	UInt64:   {dtype: Int64},
	Float32:  {dtype: Float32},
	Float64:  {dtype: Float64},
	Date:     {dtype: Duration, unit: Milliseconds},
	Datetime: {dtype: Duration},
	Time:     {dtype: Duration, unit: Nanoseconds},
	Duration: {dtype: Duration},
}

// numericRank orders numeric dtypes for supertype resolution in concat.
var numericRank = map[DType]int{
	UInt8:   1,
	Int8:    2,
	UInt16:  3,
	Int16:   4,
	UInt32:  5,
	Int32:   6,
	UInt64:  7,
	Int64:   8,
	Float32: 9,
	Float64: 10,
}

// intWidth returns the bit width of an integer dtype
func intWidth(d DType) int {
	switch d {
	case Int8, UInt8:
		return 8
	case Int16, UInt16:
		return 16
	case Int32, UInt32:
		return 32
	default:
		return 64
	}
}

// commonSuperType returns the narrowest dtype both inputs cast to without
// losing values, or an invalid-operation error when no such dtype exists.
func commonSuperType(a, b DType) (DType, error) {
	if a == b {
		return a, nil
	}
	if a == Null {
		return b, nil
	}
	if b == Null {
		return a, nil
	}
	ra, aok := numericRank[a]
	rb, bok := numericRank[b]
	if aok && bok {
		if a.IsFloat() || b.IsFloat() {
			if a == Float32 && b == Float32 {
				return Float32, nil
			}
			return Float64, nil
		}
		// Mixed signedness promotes to the narrowest signed type that holds
		// the unsigned range and the signed range.
		if a.IsSigned() != b.IsSigned() {
			unsigned, signed := a, b
			if a.IsSigned() {
				unsigned, signed = b, a
			}
			need := intWidth(unsigned) * 2
			if w := intWidth(signed); w > need {
				need = w
			}
			switch {
			case need <= 16:
				return Int16, nil
			case need <= 32:
				return Int32, nil
			default:
				return Int64, nil
			}
		}
		if rb > ra {
			return b, nil
		}
		return a, nil
	}
	return Null, invalidOperationErrorf("no common supertype for %s and %s", a, b)
}

// ============================================================================
// Nested Type Metadata
// ============================================================================

// StructField represents a field in a Struct type
type StructField struct {
	Name  string
	DType DType
}

// StructType describes the structure of a Struct dtype
type StructType struct {
	Fields []StructField
}

// NewStructType creates a new StructType from field definitions
func NewStructType(fields []StructField) *StructType {
	return &StructType{
		Fields: append([]StructField{}, fields...),
	}
}

// GetFieldIndex returns the index of a field by name
func (s *StructType) GetFieldIndex(name string) (int, bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// NumFields returns the number of fields
func (s *StructType) NumFields() int {
	return len(s.Fields)
}

// String returns a string representation of the struct type
func (s *StructType) String() string {
	result := "Struct{"
	for i, f := range s.Fields {
		if i > 0 {
			result += ", "
		}
		result += fmt.Sprintf("%s: %s", f.Name, f.DType)
	}
	result += "}"
	return result
}

// ListType describes the element type of a List dtype
type ListType struct {
	ElementType DType
	ElementUnit TimeUnit // for Datetime/Duration elements
}

// NewListType creates a new ListType
func NewListType(elemType DType) *ListType {
	return &ListType{ElementType: elemType}
}

// String returns a string representation of the list type
func (l *ListType) String() string {
	if l.ElementType == Datetime || l.ElementType == Duration {
		return fmt.Sprintf("List[%s[%s]]", l.ElementType, l.ElementUnit)
	}
	return fmt.Sprintf("List[%s]", l.ElementType)
}

// ArrayType describes a fixed-size array
type ArrayType struct {
	ElementType DType
	Size        int
}

// NewArrayType creates a new ArrayType
func NewArrayType(elemType DType, size int) *ArrayType {
	return &ArrayType{ElementType: elemType, Size: size}
}

// String returns a string representation of the array type
func (a *ArrayType) String() string {
	return fmt.Sprintf("Array[%s; %d]", a.ElementType, a.Size)
}
