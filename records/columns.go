package records

// Index maps normalised column titles to a column identifier.
type Index[T any] struct {
	columns map[string]T
}

// NewIndex builds a column index from a list of columns, keyed by the title returned by title(). The first of
// any columns with duplicate normalised titles wins.
func NewIndex[T any](columns []T, title func(T) string) Index[T] {
	index := Index[T]{
		columns: make(map[string]T, len(columns)),
	}

	for _, c := range columns {
		k := Normalise(title(c))
		if _, ok := index.columns[k]; !ok && k != "" {
			index.columns[k] = c
		}
	}

	return index
}

// Resolve looks up a column by name, ignoring case and whitespace.
func (x Index[T]) Resolve(name string) (T, bool) {
	c, ok := x.columns[Normalise(name)]

	return c, ok
}

func (x Index[T]) Len() int {
	return len(x.columns)
}
