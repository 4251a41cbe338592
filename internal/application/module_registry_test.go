package application

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-netsched/infrastructure/modules"
	"github.com/ahrav/go-netsched/internal/domain"
	"github.com/ahrav/go-netsched/internal/ports"
)

// stubModule implements ports.ExecutableModule for custom factory tests.
type stubModule struct {
	name     string
	executed []domain.Segment
	err      error
}

func (m *stubModule) InstanceName() string     { return m.name }
func (m *stubModule) InputCount() int          { return 1 }
func (m *stubModule) OutputCount() int         { return 1 }
func (m *stubModule) SetInput(int, any) error  { return nil }
func (m *stubModule) Output(int) (any, error)  { return nil, nil }
func (m *stubModule) Execute(_ context.Context, seg domain.Segment) error {
	m.executed = append(m.executed, seg)
	return m.err
}

func TestNewDefaultModuleRegistry(t *testing.T) {
	registry := NewDefaultModuleRegistry()

	assert.Equal(t,
		[]string{"constant", "passthrough", "scale", "sum", "viewer"},
		registry.GetSupportedTypes())
}

func TestDefaultModuleRegistry_CreateModule(t *testing.T) {
	tests := []struct {
		name       string
		moduleType string
		modName    string
		params     map[string]any
		wantErr    error
		errMsg     string
		check      func(t *testing.T, m ports.ExecutableModule)
	}{
		{
			name:       "constant with value",
			moduleType: "constant",
			modName:    "src",
			params:     map[string]any{"value": 4.0},
			check: func(t *testing.T, m ports.ExecutableModule) {
				assert.IsType(t, &modules.ConstantModule{}, m)
				assert.Equal(t, "src", m.InstanceName())
			},
		},
		{
			name:       "case-insensitive lookup",
			moduleType: "VIEWER",
			modName:    "out",
			check: func(t *testing.T, m ports.ExecutableModule) {
				assert.True(t, domain.IsView(m))
			},
		},
		{
			name:       "unknown type with suggestion",
			moduleType: "scael",
			modName:    "x",
			wantErr:    ports.ErrUnknownModuleType,
			errMsg:     `did you mean "scale"?`,
		},
		{
			name:       "unknown type without suggestion",
			moduleType: "convolution",
			modName:    "x",
			wantErr:    ports.ErrUnknownModuleType,
			errMsg:     "unknown module type: convolution",
		},
		{
			name:       "empty name",
			moduleType: "sum",
			errMsg:     "module name cannot be empty",
		},
		{
			name:       "factory error wrapped",
			moduleType: "sum",
			modName:    "s",
			params:     map[string]any{"inputs": 99},
			errMsg:     "failed to create module s of type sum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewDefaultModuleRegistry()
			m, err := registry.CreateModule(tt.moduleType, tt.modName, tt.params)
			if tt.errMsg != "" || tt.wantErr != nil {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			tt.check(t, m)
		})
	}
}

func TestDefaultModuleRegistry_RegisterModuleFactory(t *testing.T) {
	registry := NewDefaultModuleRegistry()

	factory := func(name string, _ map[string]any) (ports.ExecutableModule, error) {
		return &stubModule{name: name}, nil
	}

	require.NoError(t, registry.RegisterModuleFactory("Stub", factory))
	assert.Contains(t, registry.GetSupportedTypes(), "Stub")

	m, err := registry.CreateModule("stub", "s1", nil)
	require.NoError(t, err)
	assert.Equal(t, "s1", m.InstanceName())

	assert.EqualError(t, registry.RegisterModuleFactory("", factory), "module type cannot be empty")
	assert.EqualError(t, registry.RegisterModuleFactory("x", nil), "factory function cannot be nil")
}

func TestDefaultModuleRegistry_Concurrent(t *testing.T) {
	registry := NewDefaultModuleRegistry()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = registry.RegisterModuleFactory(fmt.Sprintf("custom%d", i),
					func(name string, _ map[string]any) (ports.ExecutableModule, error) {
						return &stubModule{name: name}, nil
					})
				return
			}
			_, err := registry.CreateModule("constant", fmt.Sprintf("c%d", i), nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, registry.GetSupportedTypes(), 15)
}
