package entity

// Operation is the closed set of calls the REST router dispatches to the
// image lifecycle.
type Operation string

const (
	OpCreate Operation = "create"
	OpGet    Operation = "get"
	OpList   Operation = "list"
	OpDelete Operation = "delete"
)

func (o Operation) String() string {
	return string(o)
}
