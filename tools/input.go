package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type inputKind int

const (
	inputInvalid inputKind = iota
	inputStructured
	inputText
)

// RawInput is a tool call's input as the driving model produced it: either a
// structured key-value mapping or a JSON-encoded string. It is resolved once,
// by Params, into a plain mapping that the per-tool request parsers consume.
type RawInput struct {
	kind       inputKind
	structured map[string]any
	text       string
	typeName   string
}

// Structured wraps an already decoded mapping.
func Structured(m map[string]any) RawInput {
	if m == nil {
		m = map[string]any{}
	}
	return RawInput{kind: inputStructured, structured: m}
}

// Text wraps a JSON-encoded object.
func Text(s string) RawInput {
	return RawInput{kind: inputText, text: s}
}

// RawInputOf classifies an arbitrary value. Anything that is neither a mapping
// nor text yields an input that fails with ErrParse when resolved.
func RawInputOf(v any) RawInput {
	switch x := v.(type) {
	case RawInput:
		return x
	case map[string]any:
		return Structured(x)
	case string:
		return Text(x)
	case json.RawMessage:
		return Text(string(x))
	case []byte:
		return Text(string(x))
	default:
		return RawInput{kind: inputInvalid, typeName: fmt.Sprintf("%T", v)}
	}
}

// IsText reports whether the input arrived as a JSON-encoded string.
func (r RawInput) IsText() bool { return r.kind == inputText }

// Params resolves the input into a mapping. expected is a short example of
// the object the tool wants and ends up in the error message.
func (r RawInput) Params(expected string) (map[string]any, error) {
	switch r.kind {
	case inputStructured:
		return r.structured, nil
	case inputText:
		dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(r.text)))
		dec.UseNumber()
		var params map[string]any
		if err := dec.Decode(&params); err != nil || params == nil {
			return nil, parseErrorf("Invalid JSON input. Expected format: %s", expected)
		}
		return params, nil
	default:
		return nil, parseErrorf("Invalid input type %s. Expected a JSON object or a JSON-encoded string.", r.typeName)
	}
}

// Canonical returns a stable rendering used to compare two calls. Text that
// decodes to an object renders the same as the equivalent mapping.
func (r RawInput) Canonical() string {
	switch r.kind {
	case inputStructured:
		b, err := json.Marshal(r.structured)
		if err != nil {
			return fmt.Sprint(r.structured)
		}
		return string(b)
	case inputText:
		if params, err := r.Params(""); err == nil {
			return Structured(params).Canonical()
		}
		return strings.TrimSpace(r.text)
	default:
		return "<" + r.typeName + ">"
	}
}

func (r RawInput) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case inputStructured:
		return json.Marshal(r.structured)
	case inputText:
		trimmed := strings.TrimSpace(r.text)
		if json.Valid([]byte(trimmed)) && strings.HasPrefix(trimmed, "{") {
			var buf bytes.Buffer
			if err := json.Compact(&buf, []byte(trimmed)); err == nil {
				return buf.Bytes(), nil
			}
		}
		return json.Marshal(r.text)
	default:
		return []byte("null"), nil
	}
}

// CoerceNonNegativeInt is the lenient numeric policy for tool inputs. Integers,
// floats (truncated), json.Number, bools and numeric-looking strings are
// accepted; nil or anything unparseable yields def instead of an error, so
// minor formatting noise from the driving model does not stall the loop. Only
// a negative result is rejected.
func CoerceNonNegativeInt(value any, def int) (int, error) {
	n := coerceInt(value, def)
	if n < 0 {
		return n, validationErrorf("negative value: %d", n)
	}
	return n, nil
}

func coerceInt(value any, def int) int {
	switch v := value.(type) {
	case nil:
		return def
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float32:
		return floatToInt(float64(v), def)
	case float64:
		return floatToInt(v, def)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		if f, err := v.Float64(); err == nil {
			return floatToInt(f, def)
		}
		return def
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt(f, def)
		}
		return def
	default:
		return def
	}
}

func floatToInt(f float64, def int) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return int(f)
}

// intParam coerces params[key] and names the field when it is negative.
func intParam(params map[string]any, key string, def int) (int, error) {
	n, err := CoerceNonNegativeInt(params[key], def)
	if err != nil {
		return n, validationErrorf("negative value for %s: %d", key, n)
	}
	return n, nil
}

// stringParam returns the trimmed string form of params[key], or def when the
// key is absent or blank.
func stringParam(params map[string]any, key, def string) string {
	var s string
	switch v := params[key].(type) {
	case nil:
		return def
	case string:
		s = v
	default:
		s = fmt.Sprint(v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

type field struct {
	name  string
	value string
}

// requireStrings returns a validation error naming every blank field.
func requireStrings(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return validationErrorf("missing required field(s): %s", strings.Join(missing, ", "))
}
