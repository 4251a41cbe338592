package modules

import (
	"context"

	"github.com/ahrav/go-netsched/internal/domain"
	"github.com/ahrav/go-netsched/internal/ports"
)

var _ ports.ExecutableModule = (*PassthroughModule)(nil)

// PassthroughModule copies its input to its output unchanged. Values of any
// type are accepted.
type PassthroughModule struct {
	portSet
}

// NewPassthroughModule creates a PassthroughModule.
func NewPassthroughModule(name string) (*PassthroughModule, error) {
	if name == "" {
		return nil, ErrEmptyModuleName
	}
	m := &PassthroughModule{}
	m.init(name, 1, 1)
	return m, nil
}

// Execute copies input 0 to output 0.
func (m *PassthroughModule) Execute(ctx context.Context, seg domain.Segment) error {
	if err := m.begin(ctx, seg); err != nil {
		return err
	}
	m.setOutput(0, m.input(0))
	return nil
}

// CreatePassthroughModule is the registry factory for passthrough modules.
// Passthrough modules take no parameters.
func CreatePassthroughModule(name string, params map[string]any) (*PassthroughModule, error) {
	var none struct{}
	if err := decodeParams(params, &none); err != nil {
		return nil, err
	}
	return NewPassthroughModule(name)
}
