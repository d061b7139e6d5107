package corsair

// ============================================================================
// Parameter Resolution
// ============================================================================
//
// Every operation parameter that may be scalar or per-row goes through one
// resolution step before any per-row work: length 1 broadcasts, length N is
// used per row, anything else is a shape error. Operations never inspect
// parameter shape themselves.

// Param is a broadcastable operation argument: a literal scalar, a null
// literal, or a Series of length 1 or of the list column's row count.
type Param struct {
	lit    interface{}
	col    *Series
	isCol  bool
	isNull bool
}

// ScalarParam wraps a literal value as an operation parameter
func ScalarParam(v interface{}) Param {
	if v == nil {
		return NullScalar()
	}
	return Param{lit: v}
}

// NullScalar is a null literal parameter
func NullScalar() Param {
	return Param{isNull: true}
}

// SeriesParam wraps a Series as a per-row (or broadcast-one) parameter
func SeriesParam(s *Series) Param {
	return Param{col: s, isCol: true}
}

// paramKind is the classification a parameter resolves to
type paramKind uint8

const (
	paramScalar       paramKind = iota // literal, one value for all rows
	paramBroadcastOne                  // length-1 column reused for all rows
	paramStrict                        // length-N column, one value per row
)

// intParam is a resolved integer parameter
type intParam struct {
	kind  paramKind
	value int64
	null  bool
	col   *Series
}

// at returns the parameter value for a row and whether it is non-null
func (r *intParam) at(row int) (int64, bool) {
	switch r.kind {
	case paramScalar:
		return r.value, !r.null
	case paramBroadcastOne:
		if !r.col.IsValid(0) {
			return 0, false
		}
		return r.col.Ints()[0], true
	default:
		if !r.col.IsValid(row) {
			return 0, false
		}
		return r.col.Ints()[row], true
	}
}

// resolveIntParam classifies an integer parameter against n rows. Any
// integer width is accepted and normalized; a non-integer column dtype is an
// invalid-operation error, and a column length that is neither 1 nor n is a
// shape error, both raised before any per-row computation begins.
func resolveIntParam(p Param, n int, op string) (*intParam, error) {
	if !p.isCol {
		if p.isNull {
			return &intParam{kind: paramScalar, null: true}, nil
		}
		v, ok := toInt64(p.lit)
		if !ok {
			return nil, invalidOperationErrorf("%s: expected an integer parameter, got %T", op, p.lit)
		}
		return &intParam{kind: paramScalar, value: v}, nil
	}

	if !p.col.DType().IsInteger() {
		return nil, invalidOperationErrorf("%s: expected an integer parameter, got %s", op, p.col.DType())
	}
	switch p.col.Len() {
	case 1:
		return &intParam{kind: paramBroadcastOne, col: p.col}, nil
	case n:
		return &intParam{kind: paramStrict, col: p.col}, nil
	default:
		return nil, shapeErrorf("%s: parameter length %d doesn't match row count %d", op, p.col.Len(), n)
	}
}

// floatParam is a resolved floating point parameter
type floatParam struct {
	kind  paramKind
	value float64
	null  bool
	col   *Series
}

func (r *floatParam) at(row int) (float64, bool) {
	switch r.kind {
	case paramScalar:
		return r.value, !r.null
	case paramBroadcastOne:
		if !r.col.IsValid(0) {
			return 0, false
		}
		return r.col.Floats()[0], true
	default:
		if !r.col.IsValid(row) {
			return 0, false
		}
		return r.col.Floats()[row], true
	}
}

// resolveFloatParam classifies a float parameter against n rows
func resolveFloatParam(p Param, n int, op string) (*floatParam, error) {
	if !p.isCol {
		if p.isNull {
			return &floatParam{kind: paramScalar, null: true}, nil
		}
		switch v := p.lit.(type) {
		case float64:
			return &floatParam{kind: paramScalar, value: v}, nil
		case float32:
			return &floatParam{kind: paramScalar, value: float64(v)}, nil
		default:
			if iv, ok := toInt64(p.lit); ok {
				return &floatParam{kind: paramScalar, value: float64(iv)}, nil
			}
			return nil, invalidOperationErrorf("%s: expected a float parameter, got %T", op, p.lit)
		}
	}

	if !p.col.DType().IsFloat() {
		return nil, invalidOperationErrorf("%s: expected a float parameter, got %s", op, p.col.DType())
	}
	switch p.col.Len() {
	case 1:
		return &floatParam{kind: paramBroadcastOne, col: p.col}, nil
	case n:
		return &floatParam{kind: paramStrict, col: p.col}, nil
	default:
		return nil, shapeErrorf("%s: parameter length %d doesn't match row count %d", op, p.col.Len(), n)
	}
}

// stringParam is a resolved string parameter
type stringParam struct {
	kind  paramKind
	value string
	null  bool
	col   *Series
}

func (r *stringParam) at(row int) (string, bool) {
	switch r.kind {
	case paramScalar:
		return r.value, !r.null
	case paramBroadcastOne:
		if !r.col.IsValid(0) {
			return "", false
		}
		return r.col.Strings()[0], true
	default:
		if !r.col.IsValid(row) {
			return "", false
		}
		return r.col.Strings()[row], true
	}
}

// resolveStringParam classifies a string parameter against n rows
func resolveStringParam(p Param, n int, op string) (*stringParam, error) {
	if !p.isCol {
		if p.isNull {
			return &stringParam{kind: paramScalar, null: true}, nil
		}
		v, ok := p.lit.(string)
		if !ok {
			return nil, invalidOperationErrorf("%s: expected a string parameter, got %T", op, p.lit)
		}
		return &stringParam{kind: paramScalar, value: v}, nil
	}

	if p.col.DType() != String {
		return nil, invalidOperationErrorf("%s: expected a string parameter, got %s", op, p.col.DType())
	}
	switch p.col.Len() {
	case 1:
		return &stringParam{kind: paramBroadcastOne, col: p.col}, nil
	case n:
		return &stringParam{kind: paramStrict, col: p.col}, nil
	default:
		return nil, shapeErrorf("%s: parameter length %d doesn't match row count %d", op, p.col.Len(), n)
	}
}

// boolParam is a resolved boolean parameter
type boolParam struct {
	kind  paramKind
	value bool
	null  bool
	col   *Series
}

func (r *boolParam) at(row int) (bool, bool) {
	switch r.kind {
	case paramScalar:
		return r.value, !r.null
	case paramBroadcastOne:
		if !r.col.IsValid(0) {
			return false, false
		}
		return r.col.Bools()[0], true
	default:
		if !r.col.IsValid(row) {
			return false, false
		}
		return r.col.Bools()[row], true
	}
}

// resolveBoolParam classifies a boolean parameter against n rows
func resolveBoolParam(p Param, n int, op string) (*boolParam, error) {
	if !p.isCol {
		if p.isNull {
			return &boolParam{kind: paramScalar, null: true}, nil
		}
		v, ok := p.lit.(bool)
		if !ok {
			return nil, invalidOperationErrorf("%s: expected a boolean parameter, got %T", op, p.lit)
		}
		return &boolParam{kind: paramScalar, value: v}, nil
	}

	if p.col.DType() != Bool {
		return nil, invalidOperationErrorf("%s: expected a boolean parameter, got %s", op, p.col.DType())
	}
	switch p.col.Len() {
	case 1:
		return &boolParam{kind: paramBroadcastOne, col: p.col}, nil
	case n:
		return &boolParam{kind: paramStrict, col: p.col}, nil
	default:
		return nil, shapeErrorf("%s: parameter length %d doesn't match row count %d", op, p.col.Len(), n)
	}
}

// toInt64 normalizes any Go integer literal to int64
func toInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	default:
		return 0, false
	}
}
