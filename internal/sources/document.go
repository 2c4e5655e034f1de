package sources

// Document is the persisted form of a Registry: exactly the two URL lists
type Document struct {
	Active   []string `yaml:"active" json:"active"`
	Inactive []string `yaml:"inactive" json:"inactive"`
}

// ToDocument converts the registry to its persisted form.
// The lists are sorted and never nil, so empty sets encode as empty sequences.
func (r *Registry) ToDocument() Document {
	return Document{
		Active:   r.Active(),
		Inactive: r.Inactive(),
	}
}

// FromDocument rebuilds a registry from its persisted form.
// It is the inverse of ToDocument and rejects documents that list a URL in both sets.
func FromDocument(doc Document) (*Registry, error) {
	return New(doc.Active, doc.Inactive)
}
