package modules

import (
	"context"
	"fmt"

	"github.com/ahrav/go-netsched/internal/domain"
	"github.com/ahrav/go-netsched/internal/ports"
)

var _ ports.ExecutableModule = (*SumModule)(nil)

// SumModule adds all of its inputs. Unconnected inputs count as zero.
type SumModule struct {
	portSet
	config SumConfig
}

// SumConfig defines the parameters of a SumModule.
type SumConfig struct {
	// Inputs is the number of input ports.
	Inputs int `yaml:"inputs" json:"inputs" validate:"min=1,max=8"`
}

// DefaultSumConfig returns a two-input SumConfig.
func DefaultSumConfig() SumConfig {
	return SumConfig{Inputs: 2}
}

// NewSumModule creates a SumModule with the given configuration.
func NewSumModule(name string, config SumConfig) (*SumModule, error) {
	if name == "" {
		return nil, ErrEmptyModuleName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	m := &SumModule{config: config}
	m.init(name, config.Inputs, 1)
	return m, nil
}

// Execute writes the sum of all inputs to output 0.
func (m *SumModule) Execute(ctx context.Context, seg domain.Segment) error {
	if err := m.begin(ctx, seg); err != nil {
		return err
	}

	var total float64
	for i, in := range m.snapshotInputs() {
		v, err := toFloat(in)
		if err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
		total += v
	}
	m.setOutput(0, total)
	return nil
}

// CreateSumModule is the registry factory for sum modules.
func CreateSumModule(name string, params map[string]any) (*SumModule, error) {
	config := DefaultSumConfig()
	if err := decodeParams(params, &config); err != nil {
		return nil, err
	}
	return NewSumModule(name, config)
}
