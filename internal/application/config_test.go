package application

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestNetworkConfig_UnmarshalYAML tests the YAML unmarshaling of
// NetworkConfig. Semantic validation is covered by the loader tests.
func TestNetworkConfig_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		verify  func(t *testing.T, config *NetworkConfig)
	}{
		{
			name: "valid minimal config",
			yaml: `
version: "1.0.0"
metadata:
  name: "single"
modules:
  - name: only
    type: constant
`,
			verify: func(t *testing.T, config *NetworkConfig) {
				assert.Equal(t, "1.0.0", config.Version)
				assert.Equal(t, "single", config.Metadata.Name)
				require.Len(t, config.Modules, 1)
				assert.Equal(t, "only", config.Modules[0].Name)
				assert.Nil(t, config.Modules[0].Parameters)
				assert.Empty(t, config.Connections)
			},
		},
		{
			name: "valid complex config",
			yaml: `
version: "2.1.3"
metadata:
  name: "mixer"
  description: "two sources mixed into one view"
  tags: ["audio", "demo"]
  labels:
    owner: "dsp"
modules:
  - name: a
    type: constant
    parameters:
      value: 0.25
  - name: b
    type: constant
    parameters:
      value: 4
  - name: mix
    type: sum
    parameters:
      inputs: 2
  - name: out
    type: viewer
connections:
  - {from: a, to: mix}
  - {from: b, from_port: 0, to: mix, to_port: 1}
  - {from: mix, to: out}
`,
			verify: func(t *testing.T, config *NetworkConfig) {
				assert.Equal(t, []string{"audio", "demo"}, config.Metadata.Tags)
				assert.Equal(t, "dsp", config.Metadata.Labels["owner"])
				require.Len(t, config.Modules, 4)
				assert.Equal(t, 0.25, config.Modules[0].Parameters["value"])
				assert.Equal(t, 4, config.Modules[1].Parameters["value"])
				require.Len(t, config.Connections, 3)
				assert.Equal(t, ConnectionConfig{From: "a", To: "mix"}, config.Connections[0])
				assert.Equal(t, 1, config.Connections[1].ToPort)
			},
		},
		{
			name:    "malformed yaml",
			yaml:    "modules: [name: a",
			wantErr: true,
		},
		{
			name: "wrong field type",
			yaml: `
version: "1.0.0"
modules:
  - name: a
    type: constant
connections:
  - {from: a, to: b, to_port: first}
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var config NetworkConfig
			err := yaml.Unmarshal([]byte(tt.yaml), &config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.verify != nil {
				tt.verify(t, &config)
			}
		})
	}
}

// TestNetworkConfig_StructValidation checks the struct tags together with
// the custom semver and modulename validators.
func TestNetworkConfig_StructValidation(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterNetworkValidators(v))

	valid := func() NetworkConfig {
		return NetworkConfig{
			Version:  "1.0.0",
			Metadata: Metadata{Name: "net"},
			Modules: []ModuleConfig{
				{Name: "src", Type: "constant"},
				{Name: "view", Type: "viewer"},
			},
			Connections: []ConnectionConfig{{From: "src", To: "view"}},
		}
	}

	tests := []struct {
		name      string
		mutate    func(c *NetworkConfig)
		wantField string
	}{
		{name: "valid", mutate: func(*NetworkConfig) {}},
		{name: "missing version", mutate: func(c *NetworkConfig) { c.Version = "" }, wantField: "Version"},
		{name: "two part version", mutate: func(c *NetworkConfig) { c.Version = "1.0" }, wantField: "Version"},
		{name: "prefixed version", mutate: func(c *NetworkConfig) { c.Version = "v1.0.0" }, wantField: "Version"},
		{name: "pre-release version", mutate: func(c *NetworkConfig) { c.Version = "1.0.0-rc1" }, wantField: "Version"},
		{name: "missing name", mutate: func(c *NetworkConfig) { c.Metadata.Name = "" }, wantField: "Name"},
		{name: "no modules", mutate: func(c *NetworkConfig) { c.Modules = nil }, wantField: "Modules"},
		{name: "module name with space", mutate: func(c *NetworkConfig) { c.Modules[0].Name = "my src" }, wantField: "Name"},
		{name: "module name starting with digit", mutate: func(c *NetworkConfig) { c.Modules[0].Name = "1src" }, wantField: "Name"},
		{name: "module name too long", mutate: func(c *NetworkConfig) { c.Modules[0].Name = "m" + strings.Repeat("x", 100) }, wantField: "Name"},
		{name: "missing type", mutate: func(c *NetworkConfig) { c.Modules[1].Type = "" }, wantField: "Type"},
		{name: "negative port", mutate: func(c *NetworkConfig) { c.Connections[0].ToPort = -1 }, wantField: "ToPort"},
		{name: "bad connection target", mutate: func(c *NetworkConfig) { c.Connections[0].To = "view!" }, wantField: "To"},
		{name: "too many tags", mutate: func(c *NetworkConfig) { c.Metadata.Tags = make([]string, 21) }, wantField: "Tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(&config)

			err := v.Struct(&config)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}
