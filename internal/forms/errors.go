package forms

// Errors maps a field name to its first problem.
type Errors map[string]string

// Add records msg for field unless the field already has an error.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Has reports whether field has an error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Get returns the error of field, or "".
func (e Errors) Get(field string) string {
	return e[field]
}

// Any reports whether there is at least one error.
func (e Errors) Any() bool {
	return len(e) > 0
}
