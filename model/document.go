package model

import (
	"bytes"
	"encoding/json"
)

// Document is a structured object with ordered keys. Setting an existing
// key replaces its value but keeps the key's original position.
type Document struct {
	keys   []string
	values map[string]any
}

// NewDocument creates a new empty document
func NewDocument() *Document {
	return &Document{
		keys:   make([]string, 0),
		values: make(map[string]any),
	}
}

// Set stores value under key.
func (d *Document) Set(key string, value any) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Delete removes key from the document.
func (d *Document) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (d *Document) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Len returns the number of keys
func (d *Document) Len() int {
	return len(d.keys)
}

// Map returns the document contents as a plain map. Nested documents are
// converted recursively.
func (d *Document) Map() map[string]any {
	m := make(map[string]any, len(d.keys))
	for _, k := range d.keys {
		if nested, ok := d.values[k].(*Document); ok {
			m[k] = nested.Map()
			continue
		}
		m[k] = d.values[k]
	}
	return m
}

// MarshalJSON encodes the document as a JSON object in key order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(d.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
