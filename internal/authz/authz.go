package authz

import (
	"context"

	"github.com/bramblewood/orgaccess/internal/domain"
)

// Object types known to the relationship store.
const (
	TypeOrganization = "organization"
	TypeResource     = "resource"
)

// RelationOrganization is the containment edge from an organization to a
// resource it owns; the store's rewrite rules derive resource permissions
// through it.
const RelationOrganization = "organization"

type Decision struct {
	Allowed bool
	Reason  string
}

// Request names a single check: does Subject hold Relation on
// (ObjectType, ObjectID)? Relation is either a role or a named permission;
// the facade does not care which vocabulary the store's model uses.
type Request struct {
	Subject    string
	Relation   string
	ObjectType string
	ObjectID   string
}

// Authorizer is the only component that speaks the tuple vocabulary. All
// methods are remote calls against the relationship store; none retry and
// none cache.
//
// Check is fail-closed: transport errors, timeouts, and store faults all come
// back as a denial, never as an error the caller could mistakenly ignore.
type Authorizer interface {
	Check(ctx context.Context, req Request) Decision

	// Assign writes (user:subject, role, organization:orgID). A duplicate
	// tuple is not an error: the net relationship state already matches.
	Assign(ctx context.Context, subject string, role domain.Role, orgID string) error

	// Unassign deletes the tuple; deleting an absent tuple is not an error.
	Unassign(ctx context.Context, subject string, role domain.Role, orgID string) error

	// LinkResource writes (organization:orgID, organization, resource:resourceID).
	LinkResource(ctx context.Context, resourceID, orgID string) error

	// UnlinkResource deletes the containment tuple; absent is not an error.
	UnlinkResource(ctx context.Context, resourceID, orgID string) error

	// ListAccessible returns the ids (type prefix stripped, deduplicated) of
	// objects of objectType that subject holds relation on. Errors degrade to
	// an empty result, consistent with Check.
	ListAccessible(ctx context.Context, subject, relation, objectType string) []string

	// Healthy reports whether the relationship store is reachable.
	Healthy(ctx context.Context) bool
}

func userRef(subject string) string   { return "user:" + subject }
func objectRef(typ, id string) string { return typ + ":" + id }
func orgRef(id string) string         { return objectRef(TypeOrganization, id) }
func resourceRef(id string) string    { return objectRef(TypeResource, id) }
