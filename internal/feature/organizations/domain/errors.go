// Package domain defines domain-level errors for the organizations feature.
package domain

import "errors"

var (
	// ErrOrganizationNotFound indicates that no tracked organization matches the given id.
	ErrOrganizationNotFound = errors.New("organization not found")

	// ErrOrganizationExists indicates that an organization with the same name is already tracked.
	ErrOrganizationExists = errors.New("organization already exists")

	// ErrInvalidOrganization indicates that the submitted organization failed validation.
	ErrInvalidOrganization = errors.New("invalid organization")
)
