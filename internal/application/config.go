package application

// NetworkConfig defines the complete description of a module network and
// serves as the primary configuration entry point for the system.
// YAML is the canonical encoding; HCL and DOT files are converted into a
// NetworkConfig before validation so every format obeys the same rules.
type NetworkConfig struct {
	// Version specifies the configuration schema version using semantic
	// versioning to ensure compatibility across system updates.
	Version string `yaml:"version" validate:"required,semver"`
	// Metadata contains descriptive information about the network.
	Metadata Metadata `yaml:"metadata" validate:"required"`
	// Modules defines the module instances of the network.
	Modules []ModuleConfig `yaml:"modules" validate:"required,min=1,dive"`
	// Connections wires module outputs to module inputs. Cycles are not
	// rejected here; scheduling reports them with their path.
	Connections []ConnectionConfig `yaml:"connections,omitempty" validate:"dive"`
}

// Metadata provides descriptive information about a network.
type Metadata struct {
	// Name is the human-readable identifier for this network.
	Name string `yaml:"name" validate:"required,min=1,max=255"`
	// Description explains the purpose of the network.
	Description string `yaml:"description,omitempty" validate:"max=1000"`
	// Tags are categorical labels for filtering and grouping.
	Tags []string `yaml:"tags,omitempty" validate:"max=20,dive,min=1,max=50"`
	// Labels are arbitrary key-value pairs.
	Labels map[string]string `yaml:"labels,omitempty" validate:"max=50"`
}

// ModuleConfig defines a single module instance.
type ModuleConfig struct {
	// Name is the unique instance name used to reference the module in
	// connections.
	Name string `yaml:"name" validate:"required,modulename"`
	// Type selects the module kind from the module registry.
	Type string `yaml:"type" validate:"required,min=1,max=100"`
	// Parameters contains type-specific configuration that the module
	// factory decodes and validates.
	Parameters map[string]any `yaml:"parameters,omitempty"`
}

// ConnectionConfig wires output FromPort of module From to input ToPort of
// module To.
type ConnectionConfig struct {
	// From names the producing module.
	From string `yaml:"from" validate:"required,modulename"`
	// FromPort is the producer output port index.
	FromPort int `yaml:"from_port" validate:"min=0"`
	// To names the consuming module.
	To string `yaml:"to" validate:"required,modulename"`
	// ToPort is the consumer input port index.
	ToPort int `yaml:"to_port" validate:"min=0"`
}
