package networking

import "fmt"

// ComponentType identifies the type of networking component
type ComponentType string

const (
	ComponentTypeIPTables ComponentType = "iptables"
)

// NetworkingComponent represents a host networking element that is either
// present or absent. Apply and self-check logic share this interface.
type NetworkingComponent interface {
	// IsExists checks if the component currently exists in the system
	IsExists() (bool, error)

	// ShouldExist determines if this component should be present
	ShouldExist() bool

	// CreateIfNotExists creates the component if it doesn't exist
	CreateIfNotExists() error

	// DeleteIfExists removes the component if it exists
	DeleteIfExists() error

	GetType() ComponentType

	// GetOwner returns the name of the configuration entity the component belongs to
	GetOwner() string

	GetDescription() string

	// GetCommand returns the CLI command for manual inspection
	GetCommand() string
}

// Sync brings every component to its desired state.
func Sync(components []NetworkingComponent) error {
	for _, c := range components {
		var err error
		if c.ShouldExist() {
			err = c.CreateIfNotExists()
		} else {
			err = c.DeleteIfExists()
		}
		if err != nil {
			return fmt.Errorf("%s (%s): %w", c.GetDescription(), c.GetOwner(), err)
		}
	}
	return nil
}
