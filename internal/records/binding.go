package records

// Binding declares one application/entity pair served by the record
// endpoints and names the table its documents persist to.
type Binding struct {
	Application string `json:"application" yaml:"application" conf:"application"`
	Entity      string `json:"entity" yaml:"entity" conf:"entity"`

	// Table overrides the storage table name, defaulting to the entity name.
	Table string `json:"table" yaml:"table" conf:"table"`
}

// TableName resolves the storage table for the binding.
func (b Binding) TableName() string {
	if b.Table != "" {
		return b.Table
	}
	return b.Entity
}
