package rowconv

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/spf13/cast"
)

// rule converts a non-NULL native value into a Value.
type rule func(raw any) (Value, error)

// text returns raw as a string when the driver delivered text or bytes.
func text(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}

func intRule(raw any) (Value, error) {
	if s, ok := text(raw); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("cannot read %q as integer: %w", s, err)
		}
		return Int(n), nil
	}
	n, err := cast.ToInt64E(raw)
	if err != nil {
		return Value{}, err
	}
	return Int(n), nil
}

// uintRule reads MySQL UNSIGNED columns, whose values may exceed int64.
func uintRule(raw any) (Value, error) {
	if s, ok := text(raw); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("cannot read %q as unsigned integer: %w", s, err)
		}
		return Uint(n), nil
	}
	n, err := cast.ToUint64E(raw)
	if err != nil {
		return Value{}, err
	}
	return Uint(n), nil
}

func floatRule(raw any) (Value, error) {
	var (
		f   float64
		err error
	)
	if s, ok := text(raw); ok {
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
	} else {
		f, err = cast.ToFloat64E(raw)
	}
	if err != nil {
		return Value{}, fmt.Errorf("cannot read %v as float: %w", raw, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("float value %v is not a finite number", f)
	}
	return Float(f), nil
}

func stringRule(raw any) (Value, error) {
	if s, ok := text(raw); ok {
		return String(s), nil
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return Value{}, err
	}
	return String(s), nil
}

func boolRule(raw any) (Value, error) {
	if s, ok := text(raw); ok {
		raw = strings.TrimSpace(s)
	}
	b, err := cast.ToBoolE(raw)
	if err != nil {
		return Value{}, err
	}
	return Bool(b), nil
}

// timeRule renders temporal values. Text from the driver is kept as the
// backend rendered it; drivers that parse into time.Time are formatted with
// layout.
func timeRule(layout string) rule {
	return func(raw any) (Value, error) {
		if t, ok := raw.(time.Time); ok {
			return String(t.Format(layout)), nil
		}
		return stringRule(raw)
	}
}

func base64Rule(raw any) (Value, error) {
	switch v := raw.(type) {
	case []byte:
		return String(base64.StdEncoding.EncodeToString(v)), nil
	case string:
		return String(base64.StdEncoding.EncodeToString([]byte(v))), nil
	}
	return Value{}, fmt.Errorf("cannot read %T as binary", raw)
}

func stringArrayRule(raw any) (Value, error) {
	if ss, ok := raw.([]string); ok {
		return Strings(ss), nil
	}
	var arr pq.StringArray
	if err := arr.Scan(raw); err != nil {
		return Value{}, err
	}
	return Strings([]string(arr)), nil
}

func jsonRule(raw any) (Value, error) {
	s, ok := text(raw)
	if !ok {
		// Already decoded by the driver.
		return Object(raw), nil
	}
	var doc any
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return Value{}, fmt.Errorf("cannot decode JSON column: %w", err)
	}
	return Object(doc), nil
}

// truncatedNumericRule reads an arbitrary-precision decimal as an integer by
// dropping the fractional digits.
func truncatedNumericRule(raw any) (Value, error) {
	s, ok := text(raw)
	if !ok {
		if f, isFloat := raw.(float64); isFloat {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return Value{}, fmt.Errorf("numeric value %v is not a finite number", f)
			}
			f = math.Trunc(f)
			if f < math.MinInt64 || f >= math.MaxInt64 {
				return Value{}, fmt.Errorf("numeric value %v overflows integer", f)
			}
			return Int(int64(f)), nil
		}
		return intRule(raw)
	}
	whole, _, _ := strings.Cut(strings.TrimSpace(s), ".")
	if whole == "" || whole == "-" || whole == "+" {
		whole = "0"
	}
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Value{}, fmt.Errorf("cannot read numeric %q as integer: %w", s, err)
	}
	return Int(n), nil
}

// exactDecimalRule keeps an arbitrary-precision decimal as its exact text.
func exactDecimalRule(raw any) (Value, error) {
	if s, ok := text(raw); ok {
		s = strings.TrimSpace(s)
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return Value{}, fmt.Errorf("cannot read %q as decimal: %w", s, err)
		}
		return String(s), nil
	}
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Value{}, fmt.Errorf("decimal value %v is not a finite number", v)
		}
		return String(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case int64:
		return String(strconv.FormatInt(v, 10)), nil
	}
	return Value{}, fmt.Errorf("cannot read %T as decimal", raw)
}

// dynamicRule picks the kind from the Go type the driver produced. It serves
// columns without a declared type, such as SQLite expressions.
func dynamicRule(layout string) rule {
	return func(raw any) (Value, error) {
		switch v := raw.(type) {
		case int64:
			return Int(v), nil
		case float64:
			return floatRule(v)
		case bool:
			return Bool(v), nil
		case string:
			return String(v), nil
		case []byte:
			return String(string(v)), nil
		case time.Time:
			return String(v.Format(layout)), nil
		}
		return Null(), nil
	}
}
