package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Typed errors below match these with errors.Is.
var (
	ErrConfig         = errors.New("invalid configuration")
	ErrCredential     = errors.New("invalid credentials")
	ErrNotFound       = errors.New("not found")
	ErrMetadata       = errors.New("invalid metadata")
	ErrUnresolvedTerm = errors.New("unresolved term")
	ErrNoTerms        = errors.New("article has no categories or tags")
	ErrCollision      = errors.New("term already exists")
	ErrUnsupported    = errors.New("unsupported operation")
)

// MetadataError reports a missing or malformed front-matter field
type MetadataError struct {
	Field  string
	Reason string
}

func (e *MetadataError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("metadata: missing required field %q", e.Field)
	}
	return fmt.Sprintf("metadata: field %q: %s", e.Field, e.Reason)
}

func (e *MetadataError) Is(target error) bool { return target == ErrMetadata }

// UnresolvedTermError names a category or tag absent from the term cache
type UnresolvedTermError struct {
	Taxonomy string
	Name     string
}

func (e *UnresolvedTermError) Error() string {
	return fmt.Sprintf("%s %q is not on the site, create it first", taxonomyLabel(e.Taxonomy), e.Name)
}

func (e *UnresolvedTermError) Is(target error) bool { return target == ErrUnresolvedTerm }

// CollisionError reports an existing term slug on create
type CollisionError struct {
	Taxonomy string
	Slug     string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("term %q already exists in %s", e.Slug, e.Taxonomy)
}

func (e *CollisionError) Is(target error) bool { return target == ErrCollision }

func taxonomyLabel(taxonomy string) string {
	switch taxonomy {
	case TaxonomyCategory:
		return "category"
	case TaxonomyTag:
		return "tag"
	default:
		return "term"
	}
}
