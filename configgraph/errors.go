package configgraph

import "fmt"

// UnresolvableError reports that the elimination procedure left a reachable
// package with no surviving configuration.
type UnresolvableError struct {
	Package string
}

func (e *UnresolvableError) Error() string {
	return fmt.Sprintf("dub/configgraph: package %q has no configuration that satisfies every parent", e.Package)
}
