package application

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// moduleNamePattern is the accepted shape of module instance names. Names
// double as DOT identifiers and CLI arguments.
var moduleNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,99}$`)

// RegisterNetworkValidators registers custom validation functions with
// the validator instance for use in network configuration validation.
// RegisterNetworkValidators returns an error if any validator registration
// fails.
func RegisterNetworkValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}

	if err := v.RegisterValidation("modulename", validateModuleName); err != nil {
		return fmt.Errorf("failed to register modulename validator: %w", err)
	}

	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	var rest string
	n, _ := fmt.Sscanf(value, "%d.%d.%d%s", &major, &minor, &patch, &rest)
	return n == 3 && major >= 0 && minor >= 0 && patch >= 0
}

// validateModuleName validates a module instance name.
func validateModuleName(fl validator.FieldLevel) bool {
	return moduleNamePattern.MatchString(fl.Field().String())
}

// ValidateModuleName reports whether name is an acceptable module instance
// name.
func ValidateModuleName(name string) error {
	if !moduleNamePattern.MatchString(name) {
		return fmt.Errorf("invalid module name %q: must match %s", name, moduleNamePattern)
	}
	return nil
}
