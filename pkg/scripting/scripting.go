// Package scripting holds helpers for scripts that deploy components and
// workflows: reproducible ids, pretty JSON and plotly figure conversion.
package scripting

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/google/uuid"
)

// seedNamespace scopes the ids derived by UUIDFromSeed.
var seedNamespace = uuid.MustParse("0f5d3c1e-8a0b-4b52-9a77-8f2e6f3e9d10")

// UUIDFromSeed returns the same UUID for the same seed string. It is meant
// for reproducible ids in scripts and tests, not for anything security related.
func UUIDFromSeed(seed string) uuid.UUID {
	return uuid.NewSHA1(seedNamespace, []byte(seed))
}

// PrettyJSON renders v as JSON indented by two spaces with object keys sorted.
func PrettyJSON(v any) (string, error) {
	generic, err := toGeneric(v)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// PlotlyFigure is implemented by figure types that build their own plotly
// JSON representation.
type PlotlyFigure interface {
	ToPlotlyJSON() any
}

// FigureToJSON turns a figure into the plain JSON value (maps, slices,
// float64 numbers, strings, bools and nil) that the plotly javascript library
// accepts. NaN and infinite floats become nil, as plotly renders gaps for null.
// Structs are marshaled as they are, so non-finite floats inside them still
// fail; hold such data in maps and slices.
func FigureToJSON(fig any) (any, error) {
	if f, ok := fig.(PlotlyFigure); ok {
		fig = f.ToPlotlyJSON()
	}
	raw, err := json.Marshal(finiteOnly(reflect.ValueOf(fig)))
	if err != nil {
		return nil, fmt.Errorf("figure is not JSON serializable: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("figure is not JSON serializable: %w", err)
	}
	return out, nil
}

var (
	marshalerType     = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// finiteOnly copies maps, slices and arrays into generic containers with
// non-finite floats replaced by nil. Other values are returned as they are.
func finiteOnly(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	if t := v.Type(); t.Implements(marshalerType) || t.Implements(textMarshalerType) {
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return nil
		}
		return v.Interface()
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return finiteOnly(v.Elem())
	case reflect.Float32, reflect.Float64:
		if f := v.Float(); math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			break
		}
		if v.IsNil() {
			return nil
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = finiteOnly(iter.Value())
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		fallthrough
	case reflect.Array:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = finiteOnly(v.Index(i))
		}
		return out
	}
	if v.CanInterface() {
		return v.Interface()
	}
	return nil
}

// toGeneric round-trips v through encoding/json so structs, tagged fields and
// json.Marshaler implementations all end up as generic values. Numbers are
// kept as json.Number so large integers print unchanged.
func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
