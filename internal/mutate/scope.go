package mutate

import "fmt"

// Scope selects how far an edit or delete of one occurrence reaches.
type Scope int

const (
	// ScopeNone targets a non-recurring record (or a detached override)
	// directly.
	ScopeNone Scope = iota
	// ScopeSingle targets exactly one occurrence of a master.
	ScopeSingle
	// ScopeFuture targets an occurrence and everything after it.
	ScopeFuture
	// ScopeAll targets the master itself, past occurrences included.
	ScopeAll
)

// String returns the wire/CLI name of the scope.
func (s Scope) String() string {
	switch s {
	case ScopeNone:
		return "none"
	case ScopeSingle:
		return "single"
	case ScopeFuture:
		return "future"
	case ScopeAll:
		return "all"
	}
	return fmt.Sprintf("Scope(%d)", int(s))
}

// ParseScope converts a scope name to its Scope value.
func ParseScope(name string) (Scope, error) {
	switch name {
	case "none", "":
		return ScopeNone, nil
	case "single":
		return ScopeSingle, nil
	case "future":
		return ScopeFuture, nil
	case "all":
		return ScopeAll, nil
	}
	return 0, fmt.Errorf("unknown scope %q", name)
}
