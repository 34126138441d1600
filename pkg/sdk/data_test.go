package sdk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestData_OrderPreserved tests that keys keep insertion order
// TestData_OrderPreserved 测试键保持插入顺序
func TestData_OrderPreserved(t *testing.T) {
	d := NewData(
		Field{Key: "Date", Value: "081109"},
		Field{Key: "Time", Value: "203615"},
		Field{Key: "Content", Value: "Node 1"},
	).With("log_line", "081109 203615 Node 1")

	assert.Equal(t, []string{"Date", "Time", "Content", "log_line"}, d.Keys())

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `{"Date":"081109","Time":"203615","Content":"Node 1","log_line":"081109 203615 Node 1"}`, string(b))
}

// TestData_WithDoesNotMutate tests that With and Without return copies
// TestData_WithDoesNotMutate 测试 With 和 Without 返回副本
func TestData_WithDoesNotMutate(t *testing.T) {
	base := NewData(Field{Key: "a", Value: "1"}, Field{Key: "b", Value: "2"})

	changed := base.With("a", "x")
	removed := base.Without("b")

	assert.Equal(t, "1", base.String("a"))
	assert.Equal(t, "x", changed.String("a"))
	assert.Equal(t, []string{"a", "b"}, changed.Keys())
	assert.Equal(t, []string{"a"}, removed.Keys())
	assert.Equal(t, 2, base.Len())
}

// TestNewData_DuplicateKeys tests that duplicates overwrite in place
// TestNewData_DuplicateKeys 测试重复键原位覆盖
func TestNewData_DuplicateKeys(t *testing.T) {
	d := NewData(Field{Key: "a", Value: 1}, Field{Key: "b", Value: 2}, Field{Key: "a", Value: 3})

	assert.Equal(t, []string{"a", "b"}, d.Keys())
	v, ok := d.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

// TestData_NestedValues tests encoding of nested values
// TestData_NestedValues 测试嵌套值的编码
func TestData_NestedValues(t *testing.T) {
	d := NewData(
		Field{Key: "z", Value: map[string]any{"k": "v"}},
		Field{Key: "a", Value: []int{1, 2}},
	)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `{"z":{"k":"v"},"a":[1,2]}`, string(b))
}

// TestData_UnmarshalJSON tests decoding keeps order
// TestData_UnmarshalJSON 测试解码保持顺序
func TestData_UnmarshalJSON(t *testing.T) {
	var d Data
	require.NoError(t, json.Unmarshal([]byte(`{"second":"2","first":"1"}`), &d))
	assert.Equal(t, []string{"second", "first"}, d.Keys())
	assert.Equal(t, "1", d.String("first"))

	assert.Error(t, json.Unmarshal([]byte(`["not","object"]`), &d))
}

// TestData_Empty tests zero value behaviour
// TestData_Empty 测试零值行为
func TestData_Empty(t *testing.T) {
	var d Data

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))
	assert.Empty(t, d.Keys())
	assert.Empty(t, d.Map())
	_, ok := d.Get("missing")
	assert.False(t, ok)
}
