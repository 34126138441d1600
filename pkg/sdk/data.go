package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is a single key/value entry of Data.
// Field 是 Data 中的单个键值条目。
type Field struct {
	Key   string
	Value any
}

// Data is an ordered, immutable field mapping.
// Keys keep the order in which they were first added; With and Without return copies.
// Data 是有序且不可变的字段映射。
// 键保持首次添加的顺序；With 和 Without 返回副本。
type Data struct {
	fields []Field
}

// NewData builds Data from fields. Later duplicates overwrite earlier values in place.
// NewData 从字段构建 Data。后出现的重复键会原位覆盖之前的值。
func NewData(fields ...Field) Data {
	d := Data{fields: make([]Field, 0, len(fields))}
	for _, f := range fields {
		if i := d.index(f.Key); i >= 0 {
			d.fields[i].Value = f.Value
			continue
		}
		d.fields = append(d.fields, f)
	}
	return d
}

func (d Data) index(key string) int {
	for i := range d.fields {
		if d.fields[i].Key == key {
			return i
		}
	}
	return -1
}

// Len returns the number of fields.
func (d Data) Len() int { return len(d.fields) }

// Get returns the value stored under key.
func (d Data) Get(key string) (any, bool) {
	if i := d.index(key); i >= 0 {
		return d.fields[i].Value, true
	}
	return nil, false
}

// String returns the value under key if it is a string.
func (d Data) String(key string) string {
	v, _ := d.Get(key)
	s, _ := v.(string)
	return s
}

// Keys returns field names in order.
func (d Data) Keys() []string {
	keys := make([]string, len(d.fields))
	for i, f := range d.fields {
		keys[i] = f.Key
	}
	return keys
}

// Fields returns a copy of the ordered entries.
func (d Data) Fields() []Field {
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// With returns a copy with key set to value. An existing key keeps its position.
// With 返回将 key 设置为 value 的副本。已存在的键保持原位置。
func (d Data) With(key string, value any) Data {
	out := Data{fields: make([]Field, len(d.fields), len(d.fields)+1)}
	copy(out.fields, d.fields)
	if i := out.index(key); i >= 0 {
		out.fields[i].Value = value
		return out
	}
	out.fields = append(out.fields, Field{Key: key, Value: value})
	return out
}

// Without returns a copy with key removed.
// Without 返回移除 key 后的副本。
func (d Data) Without(key string) Data {
	out := Data{fields: make([]Field, 0, len(d.fields))}
	for _, f := range d.fields {
		if f.Key != key {
			out.fields = append(out.fields, f)
		}
	}
	return out
}

// Map returns the fields as a plain map, losing order.
func (d Data) Map() map[string]any {
	m := make(map[string]any, len(d.fields))
	for _, f := range d.fields {
		m[f.Key] = f.Value
	}
	return m
}

// MarshalJSON encodes Data as a JSON object preserving field order.
// MarshalJSON 将 Data 编码为保持字段顺序的 JSON 对象。
func (d Data) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the order of its keys.
// UnmarshalJSON 解码 JSON 对象并保持键的顺序。
func (d *Data) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("sdk: data must be a JSON object, got %v", tok)
	}
	fields := make([]Field, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var val any
		if err := dec.Decode(&val); err != nil {
			return err
		}
		fields = append(fields, Field{Key: key, Value: val})
	}
	*d = NewData(fields...)
	return nil
}
