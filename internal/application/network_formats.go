package application

import (
	"fmt"
	"strconv"
	"strings"

	gographviz "github.com/awalterschulze/gographviz"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/ahrav/go-netsched/internal/ports"
)

// hclNetworkFile is the HCL shape of a network description:
//
//	version = "1.0.0"
//	metadata { name = "demo" }
//	module "src" {
//	  type       = "constant"
//	  parameters = { value = 2 }
//	}
//	connection {
//	  from = "src"
//	  to   = "view"
//	}
type hclNetworkFile struct {
	Version     string          `hcl:"version"`
	Metadata    *hclMetadata    `hcl:"metadata,block"`
	Modules     []hclModule     `hcl:"module,block"`
	Connections []hclConnection `hcl:"connection,block"`
}

type hclMetadata struct {
	Name        string   `hcl:"name"`
	Description string   `hcl:"description,optional"`
	Tags        []string `hcl:"tags,optional"`
}

type hclModule struct {
	Name       string    `hcl:"name,label"`
	Type       string    `hcl:"type"`
	Parameters cty.Value `hcl:"parameters,optional"`
}

type hclConnection struct {
	From     string `hcl:"from"`
	FromPort int    `hcl:"from_port,optional"`
	To       string `hcl:"to"`
	ToPort   int    `hcl:"to_port,optional"`
}

// parseHCL decodes an HCL network description.
func parseHCL(data []byte, filename string) (*NetworkConfig, error) {
	if filename == "" {
		filename = "network.hcl"
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("HCL parse failed: %s", diags.Error())
	}

	var raw hclNetworkFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("HCL decode failed: %s", diags.Error())
	}

	config := &NetworkConfig{Version: raw.Version}
	if raw.Metadata != nil {
		config.Metadata = Metadata{
			Name:        raw.Metadata.Name,
			Description: raw.Metadata.Description,
			Tags:        raw.Metadata.Tags,
		}
	}

	for _, m := range raw.Modules {
		params, err := ctyToParams(m.Parameters)
		if err != nil {
			return nil, ports.NewConfigError(fmt.Sprintf("module.%s.parameters", m.Name), err)
		}
		config.Modules = append(config.Modules, ModuleConfig{
			Name:       m.Name,
			Type:       m.Type,
			Parameters: params,
		})
	}

	for _, c := range raw.Connections {
		config.Connections = append(config.Connections, ConnectionConfig(c))
	}

	return config, nil
}

// ctyToParams converts an HCL object or map value into a parameter map.
func ctyToParams(val cty.Value) (map[string]any, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("parameters must be an object, got %s", val.Type().FriendlyName())
	}

	out, err := ctyValueToInterface(val)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

// ctyValueToInterface converts a cty.Value to plain Go values. Whole
// numbers become int so they decode into integer parameters.
func ctyValueToInterface(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}

	ty := val.Type()
	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			bf := val.AsBigFloat()
			if bf.IsInt() {
				if i, acc := bf.Int64(); acc == 0 {
					return int(i), nil
				}
			}
			f, _ := bf.Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", ty.FriendlyName())
		}
	}

	if ty.IsObjectType() || ty.IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			converted, err := ctyValueToInterface(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = converted
		}
		return out, nil
	}

	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			converted, err := ctyValueToInterface(v)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	}

	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
}

// DOT attributes with a fixed meaning. Every other node attribute becomes a
// module parameter.
const (
	dotAttrType     = "type"
	dotAttrVersion  = "version"
	dotAttrFromPort = "from_port"
	dotAttrToPort   = "to_port"
)

// dotIgnoredNodeAttrs are presentational attributes that never become
// parameters.
var dotIgnoredNodeAttrs = map[string]struct{}{
	"label": {}, "shape": {}, "color": {}, "style": {}, "fillcolor": {},
}

// parseDOT decodes a Graphviz digraph. Nodes are modules (attribute "type"
// selects the kind) and edges are connections with optional "from_port"
// and "to_port" attributes defaulting to 0. The graph name becomes the
// network name and a graph attribute "version" sets the schema version,
// defaulting to 1.0.0.
func parseDOT(data []byte) (*NetworkConfig, error) {
	ast, err := gographviz.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("dot parse error: %w", err)
	}

	collector := newDOTCollector()
	if err := gographviz.Analyse(ast, collector); err != nil {
		return nil, fmt.Errorf("dot analyse error: %w", err)
	}

	config := &NetworkConfig{
		Version:  "1.0.0",
		Metadata: Metadata{Name: collector.name},
	}
	if v, ok := collector.graphAttrs[dotAttrVersion]; ok {
		config.Version = v
	}

	for _, id := range collector.order {
		attrs := collector.nodes[id]
		mc := ModuleConfig{Name: id, Type: attrs[dotAttrType]}
		for k, v := range attrs {
			if k == dotAttrType {
				continue
			}
			if _, skip := dotIgnoredNodeAttrs[k]; skip {
				continue
			}
			if mc.Parameters == nil {
				mc.Parameters = make(map[string]any)
			}
			mc.Parameters[k] = parseDOTScalar(v)
		}
		config.Modules = append(config.Modules, mc)
	}

	for _, e := range collector.edges {
		cc := ConnectionConfig{From: e.from, To: e.to}
		if cc.FromPort, err = dotPort(e.attrs, dotAttrFromPort); err != nil {
			return nil, fmt.Errorf("edge %s -> %s: %w", e.from, e.to, err)
		}
		if cc.ToPort, err = dotPort(e.attrs, dotAttrToPort); err != nil {
			return nil, fmt.Errorf("edge %s -> %s: %w", e.from, e.to, err)
		}
		config.Connections = append(config.Connections, cc)
	}

	return config, nil
}

func dotPort(attrs map[string]string, key string) (int, error) {
	raw, ok := attrs[key]
	if !ok {
		return 0, nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return port, nil
}

// parseDOTScalar interprets a DOT attribute value as an integer, float or
// bool when possible and falls back to the string. Only "true" and
// "false" are booleans, so "1" stays a number.
func parseDOTScalar(s string) any {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

type dotEdge struct {
	from, to string
	attrs    map[string]string
}

// dotCollector implements gographviz.Interface without attribute
// validation, keeping nodes in declaration order.
type dotCollector struct {
	name             string
	nodes            map[string]map[string]string
	order            []string
	edges            []dotEdge
	graphAttrs       map[string]string
	defaultNodeAttrs map[string]string
}

func newDOTCollector() *dotCollector {
	return &dotCollector{
		nodes:            make(map[string]map[string]string),
		graphAttrs:       make(map[string]string),
		defaultNodeAttrs: make(map[string]string),
	}
}

func (c *dotCollector) SetStrict(_ bool) error { return nil }
func (c *dotCollector) SetDir(_ bool) error    { return nil }
func (c *dotCollector) SetName(n string) error { c.name = unquoteDOT(n); return nil }
func (c *dotCollector) String() string         { return c.name }

func (c *dotCollector) AddNode(_ string, name string, attrs map[string]string) error {
	id := unquoteDOT(name)
	if _, ok := c.nodes[id]; !ok {
		c.nodes[id] = make(map[string]string, len(c.defaultNodeAttrs)+len(attrs))
		for k, v := range c.defaultNodeAttrs {
			c.nodes[id][k] = v
		}
		c.order = append(c.order, id)
	}
	for k, v := range attrs {
		c.nodes[id][k] = unquoteDOT(v)
	}
	return nil
}

func (c *dotCollector) AddEdge(src, dst string, _ bool, attrs map[string]string) error {
	e := dotEdge{from: unquoteDOT(src), to: unquoteDOT(dst), attrs: make(map[string]string, len(attrs))}
	for k, v := range attrs {
		e.attrs[k] = unquoteDOT(v)
	}
	// Edges may mention nodes that were never declared on their own.
	for _, id := range []string{e.from, e.to} {
		if _, ok := c.nodes[id]; !ok {
			if err := c.AddNode("", id, nil); err != nil {
				return err
			}
		}
	}
	c.edges = append(c.edges, e)
	return nil
}

func (c *dotCollector) AddPortEdge(src, _, dst, _ string, directed bool, attrs map[string]string) error {
	return c.AddEdge(src, dst, directed, attrs)
}

func (c *dotCollector) AddAttr(_ string, field, value string) error {
	c.graphAttrs[field] = unquoteDOT(value)
	return nil
}

func (c *dotCollector) AddSubGraph(_, _ string, _ map[string]string) error { return nil }

// unquoteDOT strips surrounding double quotes from a DOT identifier.
func unquoteDOT(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if unq, err := strconv.Unquote(s); err == nil {
			return unq
		}
		return s[1 : len(s)-1]
	}
	return s
}
