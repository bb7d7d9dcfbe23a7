package modelexpr

// Schema is the YAML document that describes model types for the reference
// metadata provider (see model.LoadSchema).
type Schema struct {
	Enums []EnumDefinition `json:"enums" yaml:"enums"`
	Types []TypeDefinition `json:"types" yaml:"types"`
}

// EnumDefinition describes an enumeration usable as a value property type.
type EnumDefinition struct {
	Name    string             `json:"name" yaml:"name"`
	Members []EnumMemberDefine `json:"members" yaml:"members"`
}

// EnumMemberDefine is a single enumeration member. Value defaults to the member index.
type EnumMemberDefine struct {
	Name        string `json:"name" yaml:"name"`
	Value       *int64 `json:"value" yaml:"value"`
	DisplayName string `json:"displayName" yaml:"displayName"`
}

// TypeDefinition describes a model type
type TypeDefinition struct {
	Name       string               `json:"name" yaml:"name"`             // Type name
	Base       string               `json:"base" yaml:"base"`             // Base type name (optional)
	Properties []PropertyDefinition `json:"properties" yaml:"properties"` // Declared properties
}

// PropertyDefinition describes a declared property. Type is either a primitive
// type name (string, int, decimal, ...), an enum name or a model type name.
type PropertyDefinition struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	List     bool   `json:"list" yaml:"list"`
	Nullable bool   `json:"nullable" yaml:"nullable"`
	ReadOnly bool   `json:"readOnly" yaml:"readOnly"`
	Static   bool   `json:"static" yaml:"static"`
}

// InstanceDocument is the YAML document that describes an object graph.
type InstanceDocument struct {
	Objects []ObjectDefinition `json:"objects" yaml:"objects"`
}

// ObjectDefinition describes a single instance. Reference property values name
// other objects by Key.
type ObjectDefinition struct {
	Key    string         `json:"key" yaml:"key"`
	Type   string         `json:"type" yaml:"type"`
	Values map[string]any `json:"values" yaml:"values"`
}
