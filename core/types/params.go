package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OrderedParams is a JSON object whose top-level key order survives decode
// and encode. Dispatch serializes parameters into a line-oriented text block
// and the line order must match the order the caller wrote the keys in.
type OrderedParams struct {
	keys   []string
	values map[string]interface{}
}

func NewOrderedParams() *OrderedParams {
	return &OrderedParams{values: map[string]interface{}{}}
}

func (p *OrderedParams) Set(key string, value interface{}) *OrderedParams {
	if p.values == nil {
		p.values = map[string]interface{}{}
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
	return p
}

func (p *OrderedParams) Get(key string) (interface{}, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

// GetString returns the value under key rendered as text, or "" when absent.
func (p *OrderedParams) GetString(key string) string {
	v, ok := p.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func (p *OrderedParams) Keys() []string {
	if p == nil {
		return nil
	}
	return p.keys
}

func (p *OrderedParams) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

func (p *OrderedParams) Map() map[string]interface{} {
	m := map[string]interface{}{}
	if p == nil {
		return m
	}
	for k, v := range p.values {
		m[k] = v
	}
	return m
}

func (p *OrderedParams) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("parameters must be a JSON object")
	}
	p.keys = nil
	p.values = map[string]interface{}{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("parameters: unexpected key token %v", keyTok)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return err
		}
		p.Set(key, value)
	}
	_, err = dec.Token()
	return err
}

func (p *OrderedParams) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
