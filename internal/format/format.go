// Package format compiles log-line templates such as
// '<Date> <Time> <Pid> <Level> <Component>: <Content>' into matchers that
// extract named fields from raw lines.
package format

import (
	"strings"

	safErrors "github.com/netxfw/saf/pkg/errors"
	"github.com/netxfw/saf/pkg/sdk"
)

// Pattern is a compiled log format.
// literals always has len(fields)+1 entries; the first and last may be empty.
// Pattern 是编译后的日志格式。
type Pattern struct {
	source   string
	literals []string
	fields   []string
}

// Compile parses a pattern string of literal text and <FieldName> placeholders.
// Compile 解析由字面文本和 <FieldName> 占位符组成的模式字符串。
func Compile(pattern string) (*Pattern, error) {
	p := &Pattern{source: pattern}
	seen := make(map[string]bool)

	var lit strings.Builder
	i := 0
	for i < len(pattern) {
		c := pattern[i]
		if c != '<' {
			lit.WriteByte(c)
			i++
			continue
		}

		end := strings.IndexAny(pattern[i+1:], "<>")
		if end < 0 || pattern[i+1+end] == '<' {
			return nil, safErrors.NewPatternError(pattern, i, "unterminated placeholder")
		}
		name := pattern[i+1 : i+1+end]
		if name == "" {
			return nil, safErrors.NewPatternError(pattern, i, "empty placeholder")
		}
		if seen[name] {
			return nil, safErrors.NewPatternError(pattern, i, "duplicate field "+name)
		}
		if len(p.fields) > 0 && lit.Len() == 0 {
			return nil, safErrors.NewPatternError(pattern, i, "adjacent placeholders need a literal separator")
		}

		seen[name] = true
		p.literals = append(p.literals, lit.String())
		p.fields = append(p.fields, name)
		lit.Reset()
		i += end + 2
	}
	p.literals = append(p.literals, lit.String())

	if len(p.fields) == 0 {
		return nil, safErrors.NewPatternError(pattern, 0, "no placeholders")
	}
	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source pattern.
func (p *Pattern) String() string { return p.source }

// Fields returns the field names in declaration order.
func (p *Pattern) Fields() []string {
	out := make([]string, len(p.fields))
	copy(out, p.fields)
	return out
}

// Literals returns the fixed segments surrounding the fields.
func (p *Pattern) Literals() []string {
	out := make([]string, len(p.literals))
	copy(out, p.literals)
	return out
}

// split returns the value of each field, or false if the line does not fit the template.
// A field ends at the first occurrence of its closing literal; a trailing literal must be
// the suffix of the line and a final field without one takes the rest of the line.
func (p *Pattern) split(line string) ([]string, bool) {
	head := p.literals[0]
	if !strings.HasPrefix(line, head) {
		return nil, false
	}
	pos := len(head)

	last := len(p.fields) - 1
	values := make([]string, len(p.fields))
	for i := 0; i < last; i++ {
		sep := p.literals[i+1]
		idx := strings.Index(line[pos:], sep)
		if idx < 0 {
			return nil, false
		}
		values[i] = line[pos : pos+idx]
		pos += idx + len(sep)
	}

	tail := p.literals[len(p.literals)-1]
	if tail == "" {
		values[last] = line[pos:]
		return values, true
	}
	end := len(line) - len(tail)
	if end < pos || !strings.HasSuffix(line, tail) {
		return nil, false
	}
	values[last] = line[pos:end]
	return values, true
}

// Match extracts one value per field, or reports false without a partial result.
// Match 为每个字段提取一个值；不匹配时返回 false，不返回部分结果。
func (p *Pattern) Match(line string) (map[string]string, bool) {
	values, ok := p.split(line)
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(values))
	for i, name := range p.fields {
		out[name] = values[i]
	}
	return out, true
}

// MatchData is Match returning the fields as ordered event data.
// MatchData 与 Match 相同，但以有序事件数据返回字段。
func (p *Pattern) MatchData(line string) (sdk.Data, bool) {
	values, ok := p.split(line)
	if !ok {
		return sdk.Data{}, false
	}
	fields := make([]sdk.Field, len(values))
	for i, name := range p.fields {
		fields[i] = sdk.Field{Key: name, Value: values[i]}
	}
	return sdk.NewData(fields...), true
}
