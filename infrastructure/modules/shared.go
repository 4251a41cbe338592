// Package modules provides the built-in module kinds that implement
// ports.ExecutableModule for the network scheduler.
package modules

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-netsched/internal/domain"
	"github.com/ahrav/go-netsched/internal/ports"
)

// Common errors returned by built-in modules.
var (
	// ErrEmptyModuleName is returned when a module is created without a name.
	ErrEmptyModuleName = errors.New("module name cannot be empty")

	// ErrUnexpectedSegment is returned when a module is executed with a
	// segment it does not own.
	ErrUnexpectedSegment = errors.New("unexpected scheduling segment")

	// ErrNotNumeric is returned when a numeric module receives a value it
	// cannot interpret as a number.
	ErrNotNumeric = errors.New("value is not numeric")
)

// Package-level validator instance for parameter validation.
var validate = validator.New()

// portSet holds the input and output values of a module.
// All access is guarded so the runner may execute independent modules of
// the same level concurrently.
type portSet struct {
	name    string
	mu      sync.RWMutex
	inputs  []any
	outputs []any
}

func (p *portSet) init(name string, in, out int) {
	p.name = name
	p.inputs = make([]any, in)
	p.outputs = make([]any, out)
}

// InstanceName returns the unique name of this module instance.
func (p *portSet) InstanceName() string { return p.name }

// InputCount returns the number of input ports.
func (p *portSet) InputCount() int { return len(p.inputs) }

// OutputCount returns the number of output ports.
func (p *portSet) OutputCount() int { return len(p.outputs) }

// SetInput stores value on input port idx.
func (p *portSet) SetInput(idx int, value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx < 0 || idx >= len(p.inputs) {
		return fmt.Errorf("%w: input %d of %s (has %d)", ports.ErrPortOutOfRange, idx, p.name, len(p.inputs))
	}
	p.inputs[idx] = value
	return nil
}

// Output returns the value currently on output port idx.
func (p *portSet) Output(idx int) (any, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if idx < 0 || idx >= len(p.outputs) {
		return nil, fmt.Errorf("%w: output %d of %s (has %d)", ports.ErrPortOutOfRange, idx, p.name, len(p.outputs))
	}
	return p.outputs[idx], nil
}

func (p *portSet) input(idx int) any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.inputs[idx]
}

func (p *portSet) snapshotInputs() []any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]any, len(p.inputs))
	copy(out, p.inputs)
	return out
}

func (p *portSet) setOutput(idx int, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outputs[idx] = value
}

// begin performs the checks every ordinary module runs before executing.
func (p *portSet) begin(ctx context.Context, seg domain.Segment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if seg != domain.SegmentNone {
		return fmt.Errorf("%w: %s executed as %s", ErrUnexpectedSegment, p.name, seg)
	}
	return nil
}

// decodeParams decodes a loosely typed parameter map into out and validates
// the result. Fields missing from params keep the values already in out, so
// callers pre-populate defaults. Unknown parameter names are rejected.
func decodeParams(params map[string]any, out any) error {
	if len(params) > 0 {
		raw, err := yaml.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to encode parameters: %w", err)
		}

		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(out); err != nil {
			return fmt.Errorf("failed to decode parameters: %w", err)
		}
	}

	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}
	return nil
}

// toFloat interprets v as a number. Unset inputs count as zero.
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrNotNumeric, v)
	}
}
