// Package store persists resumes and their edit-derived versions.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careerflow/careerflow-agent/internal/agents"
)

// Resume is the root record a chain of versions hangs off.
type Resume struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Version is one immutable snapshot of a resume's text. ParentID points at
// the version the edits were applied to, nil for the initial upload.
type Version struct {
	ID        uuid.UUID      `json:"id"`
	ResumeID  uuid.UUID      `json:"resume_id"`
	ParentID  *uuid.UUID     `json:"parent_id,omitempty"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// VersionStore is the persistence contract for resumes and versions. A
// lookup for an unknown version returns (nil, nil), not an error.
type VersionStore interface {
	CreateResume(ctx context.Context, name, content string) (*Resume, *Version, error)
	AddVersion(ctx context.Context, resumeID uuid.UUID, parentID *uuid.UUID, content string, metadata map[string]any) (*Version, error)
	GetVersion(ctx context.Context, id uuid.UUID) (*Version, error)
	ListVersions(ctx context.Context, resumeID uuid.UUID) ([]*Version, error)
}

// ApplyEdits produces new resume text by applying structured edits in order.
// Each edit replaces the first occurrence of its Before text. When Before is
// empty or absent from the content, After is appended on its own line. Edits
// with an empty After are skipped.
func ApplyEdits(content string, edits []agents.Edit) string {
	for _, edit := range edits {
		after := strings.TrimSpace(edit.After)
		if after == "" {
			continue
		}
		if edit.Before != "" && strings.Contains(content, edit.Before) {
			content = strings.Replace(content, edit.Before, after, 1)
			continue
		}
		content += "\n" + after
	}
	return content
}
