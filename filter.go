package bintext

import "fmt"

// Filter decides which tables are rendered. At most one of Include and
// Exclude is non-empty; [NewFilter] enforces that. The zero Filter renders
// every table.
type Filter struct {
	Include map[string]struct{}
	Exclude map[string]struct{}
}

// NewFilter builds a Filter from lists of table names. Duplicate names are
// allowed. Giving both lists fails with [ErrConflictingFilters].
func NewFilter(include, exclude []string) (Filter, error) {
	if len(include) > 0 && len(exclude) > 0 {
		return Filter{}, fmt.Errorf("%w: %d included, %d excluded", ErrConflictingFilters, len(include), len(exclude))
	}
	return Filter{Include: toSet(include), Exclude: toSet(exclude)}, nil
}

// Suppress reports whether the table called name is left out of the output.
func (f Filter) Suppress(name string) bool {
	if len(f.Include) > 0 {
		if _, ok := f.Include[name]; !ok {
			return true
		}
	}
	_, excluded := f.Exclude[name]
	return excluded
}

func toSet(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
