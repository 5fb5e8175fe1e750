package docgen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

const indentUnit = "    "

// RenderValue renders a JSON-like literal. Mappings and sequences open on the
// current line; their members sit one indent level deeper than depth and the
// closing bracket returns to depth. Mapping keys are emitted in sorted order.
func RenderValue(v any, depth int) string {
	var sb strings.Builder
	renderValue(&sb, v, depth)
	return sb.String()
}

func renderValue(sb *strings.Builder, v any, depth int) {
	switch val := v.(type) {
	case nil:
		sb.WriteString("null")
	case string:
		sb.WriteString(quote(val))
	case bool:
		fmt.Fprintf(sb, "%t", val)
	case json.Number:
		sb.WriteString(val.String())
	case float64, float32, int, int64, int32, uint, uint64, uint32:
		fmt.Fprintf(sb, "%v", val)
	case map[string]any:
		if len(val) == 0 {
			sb.WriteString("{}")
			return
		}
		inner := strings.Repeat(indentUnit, depth+1)
		sb.WriteString("{\n")
		keys := slices.Sorted(maps.Keys(val))
		for i, k := range keys {
			sb.WriteString(inner)
			sb.WriteString(quote(k))
			sb.WriteString(": ")
			renderValue(sb, val[k], depth+1)
			if i < len(keys)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Repeat(indentUnit, depth))
		sb.WriteString("}")
	case []any:
		if len(val) == 0 {
			sb.WriteString("[]")
			return
		}
		inner := strings.Repeat(indentUnit, depth+1)
		sb.WriteString("[\n")
		for i, item := range val {
			sb.WriteString(inner)
			renderValue(sb, item, depth+1)
			if i < len(val)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Repeat(indentUnit, depth))
		sb.WriteString("]")
	default:
		// Anything else goes through encoding/json and is rendered from its
		// generic form so nested structs get the same layout.
		raw, err := json.Marshal(val)
		if err != nil {
			sb.WriteString(quote(fmt.Sprint(val)))
			return
		}
		renderValue(sb, parseLiteral(string(raw)), depth)
	}
}

// parseLiteral interprets a filter value. Values that are a single valid JSON
// value are returned decoded (numbers kept as json.Number); anything else,
// including JSON followed by trailing text, is a string.
func parseLiteral(s string) any {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return s
	}
	var rest any
	if err := dec.Decode(&rest); !errors.Is(err, io.EOF) {
		return s
	}
	return v
}

func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `"` + s + `"`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
