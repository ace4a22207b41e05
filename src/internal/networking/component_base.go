package networking

// ComponentBase provides the metadata shared by all networking components.
// Concrete components embed it and implement the state methods themselves.
type ComponentBase struct {
	owner         string
	componentType ComponentType
	description   string
}

func (c *ComponentBase) GetOwner() string {
	return c.owner
}

func (c *ComponentBase) GetType() ComponentType {
	return c.componentType
}

func (c *ComponentBase) GetDescription() string {
	return c.description
}
