package modules

import (
	"context"
	"fmt"
	"sync"

	"github.com/ahrav/go-netsched/internal/domain"
	"github.com/ahrav/go-netsched/internal/ports"
)

var (
	_ ports.ExecutableModule = (*ViewerModule)(nil)
	_ domain.Viewer          = (*ViewerModule)(nil)
)

// ViewerModule is a display module. It has no outputs and is scheduled
// twice: its final segment renders the values that reached its inputs and
// its initial segment marks the start of the next display cycle.
type ViewerModule struct {
	portSet
	config ViewerConfig

	framesMu    sync.Mutex
	frames      [][]any
	initialRuns int
}

// ViewerConfig defines the parameters of a ViewerModule.
type ViewerConfig struct {
	// Inputs is the number of input ports.
	Inputs int `yaml:"inputs" json:"inputs" validate:"min=1,max=8"`
}

// DefaultViewerConfig returns a single-input ViewerConfig.
func DefaultViewerConfig() ViewerConfig {
	return ViewerConfig{Inputs: 1}
}

// NewViewerModule creates a ViewerModule with the given configuration.
func NewViewerModule(name string, config ViewerConfig) (*ViewerModule, error) {
	if name == "" {
		return nil, ErrEmptyModuleName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	m := &ViewerModule{config: config}
	m.init(name, config.Inputs, 0)
	return m, nil
}

// IsView marks the module as a display module.
func (m *ViewerModule) IsView() bool { return true }

// Execute records a frame in the final segment and counts runs of the
// initial segment. Any other segment is an error.
func (m *ViewerModule) Execute(ctx context.Context, seg domain.Segment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.framesMu.Lock()
	defer m.framesMu.Unlock()

	switch seg {
	case domain.SegmentFinal:
		m.frames = append(m.frames, m.snapshotInputs())
	case domain.SegmentInitial:
		m.initialRuns++
	default:
		return fmt.Errorf("%w: display module %s executed as %s", ErrUnexpectedSegment, m.name, seg)
	}
	return nil
}

// Frames returns a copy of every frame rendered so far, oldest first.
func (m *ViewerModule) Frames() [][]any {
	m.framesMu.Lock()
	defer m.framesMu.Unlock()

	out := make([][]any, len(m.frames))
	copy(out, m.frames)
	return out
}

// LastFrame returns the most recent frame, or nil if nothing was rendered.
func (m *ViewerModule) LastFrame() []any {
	m.framesMu.Lock()
	defer m.framesMu.Unlock()

	if len(m.frames) == 0 {
		return nil
	}
	return m.frames[len(m.frames)-1]
}

// InitialRuns returns how many times the initial segment executed.
func (m *ViewerModule) InitialRuns() int {
	m.framesMu.Lock()
	defer m.framesMu.Unlock()
	return m.initialRuns
}

// CreateViewerModule is the registry factory for viewer modules.
func CreateViewerModule(name string, params map[string]any) (*ViewerModule, error) {
	config := DefaultViewerConfig()
	if err := decodeParams(params, &config); err != nil {
		return nil, err
	}
	return NewViewerModule(name, config)
}
