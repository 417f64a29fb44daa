package vm

// constPrefix is the reserved namespace for named constants.
const constPrefix = "_RBGN_INTERNAL_CONST_"

// Store is the variable store of a script run.
// Reading an unset variable yields the empty string.
type Store struct {
	variables map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		variables: make(map[string]string),
	}
}

// Get returns the value of a variable, or "" if it is unset.
func (s *Store) Get(name string) string {
	return s.variables[name]
}

// Lookup returns the value of a variable and whether it has been set.
func (s *Store) Lookup(name string) (string, bool) {
	v, ok := s.variables[name]
	return v, ok
}

// Set inserts or overwrites a variable.
func (s *Store) Set(name, value string) {
	s.variables[name] = value
}

// Const returns the value of a named constant.
func (s *Store) Const(name string) string {
	return s.Get(constPrefix + name)
}

// SetConst assigns a named constant. Constants live beside ordinary
// variables under a reserved prefix and never collide with them.
func (s *Store) SetConst(name, value string) {
	s.Set(constPrefix+name, value)
}

// Len returns the number of stored entries, constants included.
func (s *Store) Len() int {
	return len(s.variables)
}
