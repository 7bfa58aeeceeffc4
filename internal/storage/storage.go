// Package storage publishes rendered digest files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Artifact is one rendered file of a digest edition.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Publisher stores the artifacts of one edition and returns their locations.
type Publisher interface {
	Publish(ctx context.Context, edition string, files []Artifact) ([]string, error)
}

var editionPattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z._-]*$`)

// ValidateEdition rejects edition names that are not a single safe path segment.
func ValidateEdition(edition string) error {
	if !editionPattern.MatchString(edition) || edition == "." || edition == ".." {
		return fmt.Errorf("invalid edition name %q", edition)
	}
	return nil
}

// Multi publishes to every publisher in order. All are attempted; their
// errors are joined.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, edition string, files []Artifact) ([]string, error) {
	var (
		locations []string
		errs      []error
	)
	for _, p := range m {
		locs, err := p.Publish(ctx, edition, files)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		locations = append(locations, locs...)
	}
	return locations, errors.Join(errs...)
}
