// Package blob opens invoice documents referenced by a work item location.
// Locations have the form "container/path/to/blob".
package blob

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	ErrNotFound        = errors.New("blob not found")
	ErrInvalidLocation = errors.New("invalid blob location")
)

// SplitLocation returns the container and the blob name of location.
func SplitLocation(location string) (container, name string, err error) {
	loc := strings.TrimPrefix(strings.TrimSpace(location), "/")
	container, name, ok := strings.Cut(loc, "/")
	if !ok || container == "" || strings.Trim(name, "/") == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidLocation, location)
	}
	name = path.Clean(name)
	if name == ".." || strings.HasPrefix(name, "../") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidLocation, location)
	}
	return container, name, nil
}
