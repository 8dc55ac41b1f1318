package authz

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	fga "github.com/openfga/go-sdk/client"
	"github.com/openfga/go-sdk/credentials"

	"github.com/bramblewood/orgaccess/internal/domain"
)

const defaultCallTimeout = 5 * time.Second

type OpenFGA struct {
	c       *fga.OpenFgaClient
	timeout time.Duration
}

type OpenFGAConfig struct {
	APIURL   string
	StoreID  string
	APIToken string        // optional
	ModelID  string        // optional but recommended in prod
	Timeout  time.Duration // per-call bound; zero means the default
}

func NewOpenFGA(cfg OpenFGAConfig) (*OpenFGA, error) {
	conf := &fga.ClientConfiguration{
		ApiUrl:  cfg.APIURL,
		StoreId: cfg.StoreID,
	}
	if cfg.ModelID != "" {
		conf.AuthorizationModelId = cfg.ModelID
	}
	if cfg.APIToken != "" {
		conf.Credentials = &credentials.Credentials{
			Method: credentials.CredentialsMethodApiToken,
			Config: &credentials.Config{ApiToken: cfg.APIToken},
		}
	}

	client, err := fga.NewSdkClient(conf)
	if err != nil {
		return nil, fmt.Errorf("openfga_client_init: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &OpenFGA{c: client, timeout: timeout}, nil
}

func (o *OpenFGA) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.timeout)
}

// Check never returns an error: a store that cannot answer is a store that
// said no.
func (o *OpenFGA) Check(ctx context.Context, req Request) Decision {
	ctx, cancel := o.bound(ctx)
	defer cancel()

	resp, err := o.c.Check(ctx).Body(fga.ClientCheckRequest{
		User:     userRef(req.Subject),
		Relation: req.Relation,
		Object:   objectRef(req.ObjectType, req.ObjectID),
	}).Execute()
	if err != nil {
		slog.Warn("fga check failed, denying",
			"subject", req.Subject, "relation", req.Relation,
			"object", objectRef(req.ObjectType, req.ObjectID), "err", err)
		return Decision{Allowed: false, Reason: "store_unreachable"}
	}
	if resp.GetAllowed() {
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, Reason: "policy_denied"}
}

func (o *OpenFGA) Assign(ctx context.Context, subject string, role domain.Role, orgID string) error {
	return o.write(ctx, userRef(subject), string(role), orgRef(orgID))
}

func (o *OpenFGA) Unassign(ctx context.Context, subject string, role domain.Role, orgID string) error {
	return o.delete(ctx, userRef(subject), string(role), orgRef(orgID))
}

func (o *OpenFGA) LinkResource(ctx context.Context, resourceID, orgID string) error {
	return o.write(ctx, orgRef(orgID), RelationOrganization, resourceRef(resourceID))
}

func (o *OpenFGA) UnlinkResource(ctx context.Context, resourceID, orgID string) error {
	return o.delete(ctx, orgRef(orgID), RelationOrganization, resourceRef(resourceID))
}

func (o *OpenFGA) write(ctx context.Context, user, relation, object string) error {
	ctx, cancel := o.bound(ctx)
	defer cancel()

	_, err := o.c.Write(ctx).Body(fga.ClientWriteRequest{
		Writes: []fga.ClientTupleKey{{User: user, Relation: relation, Object: object}},
	}).Execute()
	if err != nil {
		// The store rejects duplicate writes; the net state is what the
		// caller asked for, so that is success.
		if tupleAlreadyExists(err) {
			return nil
		}
		return fmt.Errorf("fga_write %s %s %s: %w", user, relation, object, err)
	}
	return nil
}

func (o *OpenFGA) delete(ctx context.Context, user, relation, object string) error {
	ctx, cancel := o.bound(ctx)
	defer cancel()

	_, err := o.c.Write(ctx).Body(fga.ClientWriteRequest{
		Deletes: []fga.ClientTupleKeyWithoutCondition{{User: user, Relation: relation, Object: object}},
	}).Execute()
	if err != nil {
		if tupleAbsent(err) {
			return nil
		}
		return fmt.Errorf("fga_delete %s %s %s: %w", user, relation, object, err)
	}
	return nil
}

func (o *OpenFGA) ListAccessible(ctx context.Context, subject, relation, objectType string) []string {
	ctx, cancel := o.bound(ctx)
	defer cancel()

	resp, err := o.c.ListObjects(ctx).Body(fga.ClientListObjectsRequest{
		User:     userRef(subject),
		Relation: relation,
		Type:     objectType,
	}).Execute()
	if err != nil {
		slog.Warn("fga list-objects failed",
			"subject", subject, "relation", relation, "type", objectType, "err", err)
		return nil
	}

	prefix := objectType + ":"
	seen := make(map[string]struct{}, len(resp.GetObjects()))
	var ids []string
	for _, obj := range resp.GetObjects() {
		id := strings.TrimPrefix(obj, prefix)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func (o *OpenFGA) Healthy(ctx context.Context) bool {
	ctx, cancel := o.bound(ctx)
	defer cancel()

	_, err := o.c.ReadAuthorizationModels(ctx).Execute()
	return err == nil
}

func tupleAlreadyExists(err error) bool {
	return strings.Contains(err.Error(), "already exists")
}

func tupleAbsent(err error) bool {
	return strings.Contains(err.Error(), "does not exist")
}
