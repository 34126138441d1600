package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PluginConfig is one named collector, processor or forwarder definition.
// Only the plugin kind is interpreted here; the rest of the section is kept
// as a YAML node and decoded by the plugin into its own typed config.
// PluginConfig 是一个命名的采集器、处理器或转发器定义。
// 此处只解析插件类型，其余部分保留为 YAML 节点，由插件解码为自身的类型化配置。
type PluginConfig struct {
	Name   string `yaml:"-"`
	Plugin string `yaml:"plugin"`
	node   yaml.Node
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *PluginConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: plugin definition must be a mapping", value.Line)
	}
	var head struct {
		Plugin string `yaml:"plugin"`
	}
	if err := value.Decode(&head); err != nil {
		return err
	}
	p.Plugin = head.Plugin
	p.node = *value
	return nil
}

// Decode decodes the full definition into v. An empty definition leaves v untouched.
// Decode 将完整定义解码到 v 中。空定义不修改 v。
func (p *PluginConfig) Decode(v interface{}) error {
	if p == nil || p.node.Kind == 0 {
		return nil
	}
	return p.node.Decode(v)
}

// NewPluginConfig builds a definition programmatically. fields must not contain "plugin".
// NewPluginConfig 以编程方式构建插件定义。
func NewPluginConfig(name, plugin string, fields map[string]interface{}) (*PluginConfig, error) {
	body := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["plugin"] = plugin

	var node yaml.Node
	if err := node.Encode(body); err != nil {
		return nil, err
	}
	return &PluginConfig{Name: name, Plugin: plugin, node: node}, nil
}
