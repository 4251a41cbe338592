package modules

import (
	"context"
	"fmt"

	"github.com/ahrav/go-netsched/internal/domain"
	"github.com/ahrav/go-netsched/internal/ports"
)

var _ ports.ExecutableModule = (*ScaleModule)(nil)

// ScaleModule multiplies its input by a constant factor.
type ScaleModule struct {
	portSet
	config ScaleConfig
}

// ScaleConfig defines the parameters of a ScaleModule.
type ScaleConfig struct {
	// Factor multiplies the input value. Defaults to 1.
	Factor float64 `yaml:"factor" json:"factor"`
}

// DefaultScaleConfig returns a ScaleConfig that leaves values unchanged.
func DefaultScaleConfig() ScaleConfig {
	return ScaleConfig{Factor: 1}
}

// NewScaleModule creates a ScaleModule with the given configuration.
func NewScaleModule(name string, config ScaleConfig) (*ScaleModule, error) {
	if name == "" {
		return nil, ErrEmptyModuleName
	}
	m := &ScaleModule{config: config}
	m.init(name, 1, 1)
	return m, nil
}

// Execute reads input 0 and writes input*factor to output 0.
func (m *ScaleModule) Execute(ctx context.Context, seg domain.Segment) error {
	if err := m.begin(ctx, seg); err != nil {
		return err
	}

	v, err := toFloat(m.input(0))
	if err != nil {
		return fmt.Errorf("input 0: %w", err)
	}
	m.setOutput(0, v*m.config.Factor)
	return nil
}

// CreateScaleModule is the registry factory for scale modules.
func CreateScaleModule(name string, params map[string]any) (*ScaleModule, error) {
	config := DefaultScaleConfig()
	if err := decodeParams(params, &config); err != nil {
		return nil, err
	}
	return NewScaleModule(name, config)
}
