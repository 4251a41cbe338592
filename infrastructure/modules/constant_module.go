package modules

import (
	"context"

	"github.com/ahrav/go-netsched/internal/domain"
	"github.com/ahrav/go-netsched/internal/ports"
)

var _ ports.ExecutableModule = (*ConstantModule)(nil)

// ConstantModule is a source that emits a fixed number on its only output.
type ConstantModule struct {
	portSet
	config ConstantConfig
}

// ConstantConfig defines the parameters of a ConstantModule.
type ConstantConfig struct {
	// Value is emitted on output 0 every time the module executes.
	Value float64 `yaml:"value" json:"value"`
}

// NewConstantModule creates a ConstantModule with the given configuration.
func NewConstantModule(name string, config ConstantConfig) (*ConstantModule, error) {
	if name == "" {
		return nil, ErrEmptyModuleName
	}
	m := &ConstantModule{config: config}
	m.init(name, 0, 1)
	return m, nil
}

// Execute publishes the configured value.
func (m *ConstantModule) Execute(ctx context.Context, seg domain.Segment) error {
	if err := m.begin(ctx, seg); err != nil {
		return err
	}
	m.setOutput(0, m.config.Value)
	return nil
}

// CreateConstantModule is the registry factory for constant modules.
func CreateConstantModule(name string, params map[string]any) (*ConstantModule, error) {
	var config ConstantConfig
	if err := decodeParams(params, &config); err != nil {
		return nil, err
	}
	return NewConstantModule(name, config)
}
