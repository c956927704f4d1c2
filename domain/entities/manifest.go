package entities

// Manifest describes a WASM extension module: its identity, the interfaces it
// publishes from guest exports and the interfaces it wants to call.
type Manifest struct {
	Name        string         `json:"name" yaml:"name" hcl:"name" validate:"required,max=127" jsonschema:"required,maxLength=127"`
	Version     string         `json:"version" yaml:"version" hcl:"version" validate:"required,semver" jsonschema:"required"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty" hcl:"description,optional"`
	Publishes   []Publication  `json:"publishes,omitempty" yaml:"publishes,omitempty" hcl:"publish,block" validate:"dive"`
	Subscribes  []InterfaceKey `json:"subscribes,omitempty" yaml:"subscribes,omitempty" hcl:"subscribe,block" validate:"dive"`
}

// Publication declares one guest export published under an interface key.
type Publication struct {
	Interface string `json:"interface" yaml:"interface" hcl:"interface,label" validate:"required,max=127" jsonschema:"required"`
	Instance  string `json:"instance" yaml:"instance" hcl:"instance,label" validate:"required,max=127,excludes=." jsonschema:"required"`
	Class     string `json:"class,omitempty" yaml:"class,omitempty" hcl:"class,optional" validate:"max=127"`
	Export    string `json:"export" yaml:"export" hcl:"export" validate:"required" jsonschema:"required"`
}

// Key returns the interface key the publication is registered under.
func (p Publication) Key() InterfaceKey {
	return InterfaceKey{Interface: p.Interface, Instance: p.Instance}
}

// ClassName returns the declared implementation class, defaulting to the export name.
func (p Publication) ClassName() string {
	if p.Class != "" {
		return p.Class
	}
	return p.Export
}

// ID returns the module identifier derived from the manifest name.
func (m *Manifest) ID() ModuleID {
	return ModuleID(m.Name)
}
