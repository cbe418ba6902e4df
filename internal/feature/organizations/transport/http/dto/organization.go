// Package dto defines data transfer objects for the organizations HTTP API.
package dto

import (
	"time"

	"competitor_backend/internal/feature/organizations/domain/entity"
)

// OrganizationRequest is the body of create and update requests.
// Update replaces every field.
type OrganizationRequest struct {
	Name        string   `json:"name" binding:"required,max=255"`
	Website     string   `json:"website"`
	Industry    string   `json:"industry"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Location    string   `json:"location"`
}

// ToEntity converts the request into an unsaved organization.
func (r OrganizationRequest) ToEntity() entity.Organization {
	return entity.Organization{
		Name:        r.Name,
		Website:     r.Website,
		Industry:    r.Industry,
		Description: r.Description,
		Keywords:    r.Keywords,
		Location:    r.Location,
	}
}

// OrganizationResponse represents a tracked organization in API responses.
type OrganizationResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Website     string    `json:"website,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	Description string    `json:"description,omitempty"`
	Keywords    []string  `json:"keywords"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FromEntity converts an organization into its response form.
func FromEntity(o entity.Organization) OrganizationResponse {
	kw := o.Keywords
	if kw == nil {
		kw = []string{}
	}
	return OrganizationResponse{
		ID:          o.ID,
		Name:        o.Name,
		Website:     o.Website,
		Industry:    o.Industry,
		Description: o.Description,
		Keywords:    kw,
		Location:    o.Location,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
