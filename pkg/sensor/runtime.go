package sensor

import (
	"bytes"
	"encoding/json"
)

// RuntimeData holds one snapshot of decoded sensor values in catalog
// order. Sensors the device reported as undefined are absent.
type RuntimeData struct {
	order  []string
	values map[string]interface{}
}

func NewRuntimeData() *RuntimeData {
	return &RuntimeData{values: map[string]interface{}{}}
}

func (r *RuntimeData) Set(id string, value interface{}) {
	if _, exists := r.values[id]; !exists {
		r.order = append(r.order, id)
	}
	r.values[id] = value
}

func (r *RuntimeData) Get(id string) (interface{}, bool) {
	value, ok := r.values[id]
	return value, ok
}

// IDs returns the sensor ids in insertion order.
func (r *RuntimeData) IDs() []string {
	return r.order
}

func (r *RuntimeData) Len() int {
	return len(r.order)
}

// MarshalJSON writes the values as an object in insertion order.
func (r *RuntimeData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(r.values[id])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
