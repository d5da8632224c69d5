// Package jsonbuilder builds JSON objects that keep their field insertion
// order, which standard map-based marshalling loses. Decoded data trees are
// rendered through it so the output follows the wire order of the fields.
package jsonbuilder

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"

	jsoniter "github.com/json-iterator/go"
)

var jsonCustom = jsoniter.ConfigCompatibleWithStandardLibrary

// OrderedObject is a JSON object that marshals its fields in insertion
// order.
type OrderedObject struct {
	fields []field
}

type field struct {
	key   string
	value any
}

// NewObject creates an empty OrderedObject.
func NewObject() *OrderedObject {
	return &OrderedObject{}
}

// MarshalJSON implements json.Marshaler with order preservation.
func (o *OrderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := jsonCustom.Marshal(f.key)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal key %q: %w", f.key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := jsonCustom.Marshal(f.value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal value for key %q: %w", f.key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Value appends a generic JSON value.
func (o *OrderedObject) Value(key string, value any) *OrderedObject {
	o.fields = append(o.fields, field{key, value})
	return o
}

// String appends a string field.
func (o *OrderedObject) String(key, value string) *OrderedObject {
	return o.Value(key, value)
}

// Int appends an integer field.
func (o *OrderedObject) Int(key string, value int64) *OrderedObject {
	return o.Value(key, value)
}

// Uint appends an unsigned integer field.
func (o *OrderedObject) Uint(key string, value uint64) *OrderedObject {
	return o.Value(key, value)
}

// Bool appends a boolean field.
func (o *OrderedObject) Bool(key string, value bool) *OrderedObject {
	return o.Value(key, value)
}

// Hex appends a byte blob as a 0x-prefixed hex string.
func (o *OrderedObject) Hex(key string, value []byte) *OrderedObject {
	return o.Value(key, "0x"+hex.EncodeToString(value))
}

// BigInt appends an arbitrary-size integer as a decimal string, so that
// 128-bit chain balances survive consumers that parse numbers as float64.
func (o *OrderedObject) BigInt(key string, value *big.Int) *OrderedObject {
	if value == nil {
		return o.Value(key, nil)
	}
	return o.Value(key, value.String())
}

// Object appends a nested object.
func (o *OrderedObject) Object(key string, build func(*OrderedObject)) *OrderedObject {
	nested := NewObject()
	build(nested)
	return o.Value(key, nested)
}

// Array appends a nested array.
func (o *OrderedObject) Array(key string, build func(*ArrayBuilder)) *OrderedObject {
	nested := NewArray()
	build(nested)
	return o.Value(key, nested)
}

// Bytes marshals the object.
func (o *OrderedObject) Bytes() ([]byte, error) {
	return o.MarshalJSON()
}

// ArrayBuilder is a JSON array builder.
type ArrayBuilder struct {
	elements []any
}

// NewArray creates an empty ArrayBuilder.
func NewArray() *ArrayBuilder {
	return &ArrayBuilder{elements: []any{}}
}

// MarshalJSON implements json.Marshaler.
func (a *ArrayBuilder) MarshalJSON() ([]byte, error) {
	return jsonCustom.Marshal(a.elements)
}

// Add appends a value.
func (a *ArrayBuilder) Add(value any) *ArrayBuilder {
	a.elements = append(a.elements, value)
	return a
}

// AddObject appends a nested object.
func (a *ArrayBuilder) AddObject(build func(*OrderedObject)) *ArrayBuilder {
	nested := NewObject()
	build(nested)
	return a.Add(nested)
}

// Len returns the number of elements.
func (a *ArrayBuilder) Len() int {
	return len(a.elements)
}
