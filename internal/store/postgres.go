package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/bramblewood/orgaccess/internal/domain"
)

// Postgres backs the organization and resource stores with a relational
// schema. The catalog entities (roles, permissions, project managers) stay on
// the memory backing; they are demo fixtures, not relational data.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Open connects and verifies the database is reachable.
func Open(ctx context.Context, databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error { return p.db.Close() }

// InitSchema creates the tables if they do not exist yet.
func (p *Postgres) InitSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS organizations (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS resources (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	resource_type   TEXT NOT NULL,
	organization_id TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS resources_organization_id_idx ON resources (organization_id);
`
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (p *Postgres) CreateOrganization(ctx context.Context, org *domain.Organization) error {
	const query = `
		INSERT INTO organizations (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := p.db.ExecContext(ctx, query, org.ID, org.Name, org.Description, org.CreatedAt); err != nil {
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

func (p *Postgres) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	const query = `
		SELECT id, name, description, created_at
		FROM organizations
		WHERE id = $1
	`
	org := &domain.Organization{}
	err := p.db.QueryRowContext(ctx, query, id).
		Scan(&org.ID, &org.Name, &org.Description, &org.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return org, nil
}

func (p *Postgres) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	const query = `
		SELECT id, name, description, created_at
		FROM organizations
		ORDER BY created_at, id
	`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var out []domain.Organization
	for rows.Next() {
		var org domain.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Description, &org.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		out = append(out, org)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateOrganization(ctx context.Context, org *domain.Organization) error {
	const query = `
		UPDATE organizations
		SET name = $2, description = $3
		WHERE id = $1
	`
	res, err := p.db.ExecContext(ctx, query, org.ID, org.Name, org.Description)
	if err != nil {
		return fmt.Errorf("update organization: %w", err)
	}
	return requireRow(res)
}

func (p *Postgres) DeleteOrganization(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}
	return requireRow(res)
}

func (p *Postgres) CreateResource(ctx context.Context, r *domain.Resource) error {
	const query = `
		INSERT INTO resources (id, name, description, resource_type, organization_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := p.db.ExecContext(ctx, query,
		r.ID, r.Name, r.Description, r.ResourceType, r.OrganizationID, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

func (p *Postgres) GetResource(ctx context.Context, id string) (*domain.Resource, error) {
	const query = `
		SELECT id, name, description, resource_type, organization_id, created_at
		FROM resources
		WHERE id = $1
	`
	r := &domain.Resource{}
	err := p.db.QueryRowContext(ctx, query, id).
		Scan(&r.ID, &r.Name, &r.Description, &r.ResourceType, &r.OrganizationID, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return r, nil
}

func (p *Postgres) ListResources(ctx context.Context) ([]domain.Resource, error) {
	const query = `
		SELECT id, name, description, resource_type, organization_id, created_at
		FROM resources
		ORDER BY created_at, id
	`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var out []domain.Resource
	for rows.Next() {
		var r domain.Resource
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.ResourceType, &r.OrganizationID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateResource(ctx context.Context, r *domain.Resource) error {
	const query = `
		UPDATE resources
		SET name = $2, description = $3, resource_type = $4
		WHERE id = $1
	`
	res, err := p.db.ExecContext(ctx, query, r.ID, r.Name, r.Description, r.ResourceType)
	if err != nil {
		return fmt.Errorf("update resource: %w", err)
	}
	return requireRow(res)
}

func (p *Postgres) DeleteResource(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
