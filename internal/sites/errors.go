package sites

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoConfig means neither a company name nor a config path was given.
	ErrNoConfig = errors.New("provide a company name or a site config path")
	// ErrSiteNotFound means the company is not in the registry.
	ErrSiteNotFound = errors.New("site not found in registry")
)

// ValidationError lists the structural problems of a site config.
type ValidationError struct {
	Site     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid site config %q: %s", e.Site, strings.Join(e.Problems, "; "))
}

// IsConfigurationError reports whether err means no usable site config
// could be resolved.
func IsConfigurationError(err error) bool {
	var verr *ValidationError
	return errors.Is(err, ErrNoConfig) || errors.Is(err, ErrSiteNotFound) || errors.As(err, &verr)
}
