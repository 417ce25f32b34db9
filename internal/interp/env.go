// internal/interp/env.go
package interp

// Environment is one frame in the lexical scope chain. Frames are
// shared by reference: a closure holds its defining frame, so writes
// made later through Set stay visible to it.
type Environment struct {
	vars   map[string]Value
	parent *Environment
}

func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]Value)}
}

func NewEnclosed(parent *Environment) *Environment {
	return &Environment{vars: make(map[string]Value), parent: parent}
}

// Define binds a name in this frame, shadowing any outer binding.
func (e *Environment) Define(name string, value Value) {
	e.vars[name] = value
}

// Get walks outward through the chain.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set updates the nearest existing binding. It reports false when the
// name is not bound anywhere in the chain.
func (e *Environment) Set(name string, value Value) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = value
			return true
		}
	}
	return false
}

// Delete removes a binding from this frame only.
func (e *Environment) Delete(name string) {
	delete(e.vars, name)
}

// Has reports whether the name is bound in this frame, ignoring
// parents.
func (e *Environment) Has(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Names lists the bindings of this frame only.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	return names
}
