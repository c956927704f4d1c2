package ports

// SchemaRegistry keeps the JSON schemas of the documents the host reads.
type SchemaRegistry interface {
	// Register adds a schema generated from a Go struct.
	Register(name string, model any) error

	// GetSchema retrieves the JSON Schema registered under name.
	GetSchema(name string) (string, bool)

	// List returns all registered schema names, sorted.
	List() []string
}
