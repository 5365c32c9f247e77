package unigraph

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Row is a storage row keyed by column name. Values keep the representation
// returned by the database driver.
type Row map[string]any

func (r Row) value(field string) (any, bool, error) {
	v, ok := r[field]
	if !ok {
		return nil, false, fmt.Errorf("%w: missing field '%s'", ErrMalformedRow, field)
	}

	return v, v != nil, nil
}

// Int64 returns a required integer column.
func (r Row) Int64(field string) (int64, error) {
	v, err := r.NullInt64(field)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, fmt.Errorf("%w: field '%s' is null", ErrMalformedRow, field)
	}

	return *v, nil
}

// NullInt64 returns a nullable integer column. The column itself must be
// present in the row.
func (r Row) NullInt64(field string) (*int64, error) {
	v, ok, err := r.value(field)
	if err != nil || !ok {
		return nil, err
	}

	n, err := toInt64(v)
	if err != nil {
		return nil, fmt.Errorf("%w: field '%s': %w", ErrMalformedRow, field, err)
	}

	return &n, nil
}

// Float64 returns a required numeric column.
func (r Row) Float64(field string) (float64, error) {
	v, ok, err := r.value(field)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: field '%s' is null", ErrMalformedRow, field)
	}

	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%w: field '%s': %w", ErrMalformedRow, field, err)
	}

	return f, nil
}

// String returns a required textual column. Dates are rendered as
// YYYY-MM-DD, other timestamps as RFC 3339.
func (r Row) String(field string) (string, error) {
	v, ok, err := r.value(field)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: field '%s' is null", ErrMalformedRow, field)
	}

	s, err := toString(v)
	if err != nil {
		return "", fmt.Errorf("%w: field '%s': %w", ErrMalformedRow, field, err)
	}

	return s, nil
}

func toInt64(v any) (int64, error) {
	switch vt := v.(type) {
	case int64:
		return vt, nil
	case int:
		return int64(vt), nil
	case int32:
		return int64(vt), nil
	case int16:
		return int64(vt), nil
	case int8:
		return int64(vt), nil
	case uint64:
		if vt > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", vt)
		}
		return int64(vt), nil
	case uint:
		return toInt64(uint64(vt))
	case uint32:
		return int64(vt), nil
	case uint16:
		return int64(vt), nil
	case uint8:
		return int64(vt), nil
	case float64:
		if vt != math.Trunc(vt) {
			return 0, fmt.Errorf("value %v is not an integer", vt)
		}
		return int64(vt), nil
	case []byte:
		return strconv.ParseInt(string(vt), 10, 64)
	case string:
		return strconv.ParseInt(vt, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func toFloat64(v any) (float64, error) {
	switch vt := v.(type) {
	case float64:
		return vt, nil
	case float32:
		return float64(vt), nil
	case []byte:
		return strconv.ParseFloat(string(vt), 64)
	case string:
		return strconv.ParseFloat(vt, 64)
	default:
		n, err := toInt64(v)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	}
}

func toString(v any) (string, error) {
	switch vt := v.(type) {
	case string:
		return vt, nil
	case []byte:
		return string(vt), nil
	case time.Time:
		if vt.Hour() == 0 && vt.Minute() == 0 && vt.Second() == 0 && vt.Nanosecond() == 0 {
			return vt.Format(time.DateOnly), nil
		}
		return vt.Format(time.RFC3339), nil
	case int64, int, int32, int16, int8, uint64, uint, uint32, uint16, uint8:
		n, err := toInt64(v)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	default:
		return "", fmt.Errorf("unexpected type %T", v)
	}
}
