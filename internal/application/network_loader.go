package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-netsched/internal/domain"
	"github.com/ahrav/go-netsched/internal/network"
	"github.com/ahrav/go-netsched/internal/ports"
)

// Format identifies the encoding of a network description.
type Format string

// Supported network description formats.
const (
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
	FormatDOT  Format = "dot"
)

// FormatFromPath infers the description format from a file extension.
// Unknown extensions are treated as YAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return FormatHCL
	case ".dot", ".gv":
		return FormatDOT
	default:
		return FormatYAML
	}
}

// NetworkLoader provides parsing, validation and caching for network
// descriptions, turning declarative files into wired module networks.
// Use NetworkLoader to load networks from files or readers while
// benefiting from SHA256-based caching and comprehensive validation.
type NetworkLoader struct {
	// validator performs struct field validation and custom validation
	// rules for network configurations.
	validator *validator.Validate
	// registry creates module instances by type name.
	registry ports.ModuleRegistry
	// cache stores built networks indexed by SHA256 hash of the normalised
	// configuration.
	// WARNING: Cached networks MUST NOT be rewired. Running a cached
	// network mutates module port values, which later runs overwrite.
	cache map[string]*network.Manager
	// cacheMu provides thread-safe access to the cache map.
	cacheMu sync.RWMutex
	// sf prevents duplicate builds when multiple goroutines request the
	// same network simultaneously.
	sf     singleflight.Group
	logger *slog.Logger
}

// NetworkLoaderOption configures a NetworkLoader.
type NetworkLoaderOption func(*NetworkLoader)

// WithLoaderLogger sets the logger used for load diagnostics.
func WithLoaderLogger(logger *slog.Logger) NetworkLoaderOption {
	return func(nl *NetworkLoader) { nl.logger = logger }
}

// NewNetworkLoader creates a loader backed by registry with an empty cache.
// NewNetworkLoader returns an error if validator registration fails.
func NewNetworkLoader(registry ports.ModuleRegistry, opts ...NetworkLoaderOption) (*NetworkLoader, error) {
	if registry == nil {
		return nil, fmt.Errorf("module registry cannot be nil")
	}

	v := validator.New()
	if err := RegisterNetworkValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	nl := &NetworkLoader{
		validator: v,
		registry:  registry,
		cache:     make(map[string]*network.Manager),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(nl)
	}
	return nl, nil
}

// LoadFromFile loads and builds a network from a file. The format is
// chosen by extension: .hcl, .dot/.gv, otherwise YAML.
// WARNING: The returned network may be a cached instance shared with
// other callers.
func (nl *NetworkLoader) LoadFromFile(ctx context.Context, path string) (*network.Manager, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	config, err := nl.Parse(data, FormatFromPath(cleanPath), cleanPath)
	if err != nil {
		return nil, err
	}
	nl.logger.DebugContext(ctx, "parsed network description",
		"path", cleanPath, "modules", len(config.Modules), "connections", len(config.Connections))

	return nl.Load(ctx, config)
}

// LoadFromReader loads and builds a network from YAML read from r.
func (nl *NetworkLoader) LoadFromReader(ctx context.Context, r io.Reader) (*network.Manager, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	config, err := nl.Parse(data, FormatYAML, "")
	if err != nil {
		return nil, err
	}
	return nl.Load(ctx, config)
}

// Parse decodes data in the given format into a NetworkConfig without
// validating it. filename is used in HCL diagnostics only.
func (nl *NetworkLoader) Parse(data []byte, format Format, filename string) (*NetworkConfig, error) {
	var (
		config *NetworkConfig
		err    error
	)
	switch format {
	case FormatYAML:
		config, err = parseYAML(data)
	case FormatHCL:
		config, err = parseHCL(data, filename)
	case FormatDOT:
		config, err = parseDOT(data)
	default:
		return nil, fmt.Errorf("unsupported network format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", format, err)
	}
	return config, nil
}

// Load validates config and builds the network it describes, reusing a
// cached network for configurations that normalise to the same bytes.
func (nl *NetworkLoader) Load(ctx context.Context, config *NetworkConfig) (*network.Manager, error) {
	if config == nil {
		return nil, ports.ErrConfigNotFound
	}

	hash, err := nl.calculateConfigHash(config)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, shared := nl.sf.Do(hash, func() (any, error) {
		// Check the cache inside singleflight to handle the race between
		// a cache miss and the group execution.
		if mgr, ok := nl.getCachedNetwork(hash); ok {
			return mgr, nil
		}

		if err := nl.ValidateConfig(config); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}

		mgr, err := nl.buildNetwork(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("failed to build network: %w", err)
		}

		nl.cacheNetwork(hash, mgr)
		return mgr, nil
	})
	if err != nil {
		return nil, err
	}

	nl.logger.DebugContext(ctx, "network loaded", "name", config.Metadata.Name, "hash", hash[:12], "shared", shared)
	return v.(*network.Manager), nil
}

// parseYAML unmarshals YAML using strict decoding so configuration typos
// are not silently ignored.
func parseYAML(data []byte) (*NetworkConfig, error) {
	var config NetworkConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.

	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

// ValidateConfig performs struct field validation followed by semantic
// validation of the relationships between configuration elements.
func (nl *NetworkLoader) ValidateConfig(config *NetworkConfig) error {
	if config == nil {
		return ports.ErrConfigNotFound
	}
	if err := nl.validator.Struct(config); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	if err := validateSemantics(config); err != nil {
		return fmt.Errorf("semantic validation failed: %w", err)
	}

	return nil
}

// validateSemantics checks rules that struct tags cannot express: unique
// module names, connections referencing declared modules and at most one
// wire per input port. Every violation is reported, not just the first.
func validateSemantics(config *NetworkConfig) error {
	verr := domain.NewValidationError("network " + config.Metadata.Name)

	names := make(map[string]struct{}, len(config.Modules))
	for _, m := range config.Modules {
		if _, exists := names[m.Name]; exists {
			verr.AddErrorf("duplicate module name %q", m.Name)
			continue
		}
		names[m.Name] = struct{}{}
	}

	type inputPort struct {
		module string
		port   int
	}
	bound := make(map[inputPort]ConnectionConfig, len(config.Connections))

	for _, c := range config.Connections {
		if _, ok := names[c.From]; !ok {
			verr.AddErrorf("connection references non-existent producer: %s", c.From)
		}
		if _, ok := names[c.To]; !ok {
			verr.AddErrorf("connection references non-existent consumer: %s", c.To)
		}

		key := inputPort{module: c.To, port: c.ToPort}
		if prev, exists := bound[key]; exists {
			verr.AddErrorf("input %s:%d is fed by both %s:%d and %s:%d",
				c.To, c.ToPort, prev.From, prev.FromPort, c.From, c.FromPort)
			continue
		}
		bound[key] = c
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// buildNetwork instantiates modules through the registry and wires them.
// Port ranges are checked by the network manager since they depend on the
// module kind.
func (nl *NetworkLoader) buildNetwork(ctx context.Context, config *NetworkConfig) (*network.Manager, error) {
	mgr := network.New()

	for i, mc := range config.Modules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		m, err := nl.registry.CreateModule(mc.Type, mc.Name, cloneParams(mc.Parameters))
		if err != nil {
			return nil, fmt.Errorf("failed to create module %s: %w",
				mc.Name, ports.NewConfigError(fmt.Sprintf("modules[%d]", i), err))
		}
		if err := mgr.AddModule(m); err != nil {
			return nil, fmt.Errorf("failed to add module %s: %w", mc.Name, err)
		}
	}

	for _, c := range config.Connections {
		if err := mgr.Connect(c.From, c.FromPort, c.To, c.ToPort); err != nil {
			return nil, fmt.Errorf("failed to connect %s:%d -> %s:%d: %w", c.From, c.FromPort, c.To, c.ToPort, err)
		}
	}

	return mgr, nil
}

// cloneParams copies params so factories cannot mutate the configuration
// that was hashed.
func cloneParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

// calculateConfigHash computes the SHA256 hash of a normalised
// NetworkConfig, so semantically identical descriptions share a cache
// entry regardless of whitespace, key ordering or source format.
func (nl *NetworkLoader) calculateConfigHash(config *NetworkConfig) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(config); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

func (nl *NetworkLoader) getCachedNetwork(hash string) (*network.Manager, bool) {
	nl.cacheMu.RLock()
	defer nl.cacheMu.RUnlock()

	mgr, ok := nl.cache[hash]
	return mgr, ok
}

func (nl *NetworkLoader) cacheNetwork(hash string, mgr *network.Manager) {
	nl.cacheMu.Lock()
	defer nl.cacheMu.Unlock()

	nl.cache[hash] = mgr
}

// ClearCache removes all cached networks, forcing subsequent loads to
// rebuild from source.
func (nl *NetworkLoader) ClearCache() {
	nl.cacheMu.Lock()
	defer nl.cacheMu.Unlock()

	nl.cache = make(map[string]*network.Manager)
}
