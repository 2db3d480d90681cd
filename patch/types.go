package patch

const (
	OperationAdd     = "add"
	OperationReplace = "replace"
	OperationRemove  = "remove"
)

// Operation is a single RFC 6902 operation.
type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// Set returns the operation that writes value at path.
func Set(path string, value any) Operation {
	return Operation{Op: OperationAdd, Path: path, Value: value}
}
