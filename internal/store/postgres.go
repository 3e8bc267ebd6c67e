package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the pgx-backed VersionStore.
type Postgres struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a connection pool and verifies it with a ping.
func ConnectPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *Postgres) CreateResume(ctx context.Context, name, content string) (*Resume, *Version, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	resume := &Resume{}
	err = tx.QueryRow(ctx,
		`INSERT INTO resumes (name) VALUES ($1) RETURNING id, name, created_at`,
		name,
	).Scan(&resume.ID, &resume.Name, &resume.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resume: %w", err)
	}

	version := &Version{ResumeID: resume.ID, Content: content}
	err = tx.QueryRow(ctx,
		`INSERT INTO resume_versions (resume_id, content) VALUES ($1, $2)
		 RETURNING id, created_at`,
		resume.ID, content,
	).Scan(&version.ID, &version.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create initial version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit: %w", err)
	}
	return resume, version, nil
}

func (p *Postgres) AddVersion(ctx context.Context, resumeID uuid.UUID, parentID *uuid.UUID, content string, metadata map[string]any) (*Version, error) {
	var metaBytes []byte
	if metadata != nil {
		var err error
		metaBytes, err = json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	version := &Version{ResumeID: resumeID, ParentID: parentID, Content: content, Metadata: metadata}
	err := p.pool.QueryRow(ctx,
		`INSERT INTO resume_versions (resume_id, parent_version, content, metadata)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		resumeID, parentID, content, metaBytes,
	).Scan(&version.ID, &version.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add version: %w", err)
	}
	return version, nil
}

func (p *Postgres) GetVersion(ctx context.Context, id uuid.UUID) (*Version, error) {
	version := &Version{}
	var metaBytes []byte
	err := p.pool.QueryRow(ctx,
		`SELECT id, resume_id, parent_version, content, metadata, created_at
		 FROM resume_versions WHERE id = $1`,
		id,
	).Scan(&version.ID, &version.ResumeID, &version.ParentID, &version.Content, &metaBytes, &version.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	if len(metaBytes) > 0 {
		if err := json.Unmarshal(metaBytes, &version.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return version, nil
}

func (p *Postgres) ListVersions(ctx context.Context, resumeID uuid.UUID) ([]*Version, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, resume_id, parent_version, content, metadata, created_at
		 FROM resume_versions WHERE resume_id = $1 ORDER BY created_at`,
		resumeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	var out []*Version
	for rows.Next() {
		version := &Version{}
		var metaBytes []byte
		if err := rows.Scan(&version.ID, &version.ResumeID, &version.ParentID, &version.Content, &metaBytes, &version.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		if len(metaBytes) > 0 {
			if err := json.Unmarshal(metaBytes, &version.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		out = append(out, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate versions: %w", err)
	}
	return out, nil
}
