package sqldb

type targetFieldsProvider interface {
	TargetFields() []any
}

// Identifiable models expose their primary key.
type Identifiable[ID comparable] interface {
	GetID() ID
}

type Scannable[T any] interface {
	~*T                  // Type Constraint: Underlying Type(~) = *T
	targetFieldsProvider // must implement targetFieldsProvider
}

type ScannableIdentifiable[T any, ID comparable] interface {
	~*T
	targetFieldsProvider
	Identifiable[ID]
}
