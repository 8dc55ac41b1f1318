package domain

import "time"

// Organization is a plain attribute record. Authorization state lives in the
// relationship store, never here.
type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Resource belongs to exactly one organization via OrganizationID.
type Resource struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	ResourceType   string    `json:"resource_type"`
	OrganizationID string    `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProjectManager is a profile record; its assignments to organizations are
// tuples in the relationship store.
type ProjectManager struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleDefinition is a catalog entry describing a named role. It is
// documentation-grade data; enforcement happens in the relationship store.
type RoleDefinition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

// PermissionDefinition is a catalog entry describing a named permission.
type PermissionDefinition struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ResourceType string `json:"resource_type"`
}
