package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"

	"github.com/maxnordlund/future"
	"github.com/maxnordlund/future/object"
)

// Raw is canonical JSON text already in its stored form. List returns
// results as Raw, and MarshalCanonical writes Raw through verbatim, so
// events read from one store can be appended to another without being
// encoded a second time.
type Raw string

// MarshalCanonical renders a trace value as canonical JSON for storage
// and golden comparison: object keys sorted by UTF-16 code units,
// NFC-normalized strings, no HTML escaping. This is a rendering, not a
// round-trippable encoding: values with no JSON shape (descriptors, the
// Undefined sentinel, adapted objects) are projected to a stable
// representation.
func MarshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case Raw:
		return []byte(val), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case string:
		return marshalString(val)
	case int:
		return strconv.AppendInt(nil, int64(val), 10), nil
	case int64:
		return strconv.AppendInt(nil, val, 10), nil
	case uint64:
		return strconv.AppendUint(nil, val, 10), nil
	case float64:
		return strconv.AppendFloat(nil, val, 'g', -1, 64), nil
	case float32:
		return strconv.AppendFloat(nil, float64(val), 'g', -1, 32), nil
	case []any:
		return marshalArray(val)
	case map[string]any:
		return marshalObject(val)
	case future.Step:
		return marshalObject(map[string]any{"done": val.Done, "value": val.Value})
	case object.Property:
		return marshalProperty(&val)
	case *object.Property:
		return marshalProperty(val)
	}

	if v == any(object.Undefined) {
		return marshalString("undefined")
	}

	// No canonical JSON shape; project to a stable string.
	return marshalString(fmt.Sprintf("%v", v))
}

func marshalProperty(p *object.Property) ([]byte, error) {
	m := map[string]any{
		"writable":     p.Writable,
		"enumerable":   p.Enumerable,
		"configurable": p.Configurable,
	}
	if p.IsAccessor() {
		m["getter"] = p.Getter != nil
		m["setter"] = p.Setter != nil
	} else {
		m["value"] = p.Value
	}
	return marshalObject(m)
}

// marshalString NFC-normalizes and encodes without HTML escaping.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, fmt.Errorf("marshal string: %w", err)
	}
	// Encoder appends a newline.
	return bytes.TrimSpace(buf.Bytes()), nil
}

func marshalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := MarshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalObject(obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return utf16Less(keys[i], keys[j])
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalString(k)
		if err != nil {
			return nil, fmt.Errorf("object key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := MarshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("object[%q]: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// utf16Less orders strings by UTF-16 code units, the canonical JSON key
// order, which differs from byte order for characters outside the BMP.
func utf16Less(a, b string) bool {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}
