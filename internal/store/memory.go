package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process VersionStore. It backs demo mode and tests.
type Memory struct {
	mu       sync.RWMutex
	resumes  map[uuid.UUID]*Resume
	versions map[uuid.UUID]*Version
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		resumes:  make(map[uuid.UUID]*Resume),
		versions: make(map[uuid.UUID]*Version),
	}
}

func (m *Memory) CreateResume(_ context.Context, name, content string) (*Resume, *Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	resume := &Resume{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
	}
	version := &Version{
		ID:        uuid.New(),
		ResumeID:  resume.ID,
		Content:   content,
		CreatedAt: now,
	}

	m.resumes[resume.ID] = resume
	m.versions[version.ID] = version
	return resume, version, nil
}

func (m *Memory) AddVersion(_ context.Context, resumeID uuid.UUID, parentID *uuid.UUID, content string, metadata map[string]any) (*Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.resumes[resumeID]; !ok {
		return nil, fmt.Errorf("unknown resume %s", resumeID)
	}
	if parentID != nil {
		parent, ok := m.versions[*parentID]
		if !ok || parent.ResumeID != resumeID {
			return nil, fmt.Errorf("unknown parent version %s", *parentID)
		}
	}

	version := &Version{
		ID:        uuid.New(),
		ResumeID:  resumeID,
		ParentID:  parentID,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	m.versions[version.ID] = version
	return version, nil
}

func (m *Memory) GetVersion(_ context.Context, id uuid.UUID) (*Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	version, ok := m.versions[id]
	if !ok {
		return nil, nil
	}
	copied := *version
	return &copied, nil
}

func (m *Memory) ListVersions(_ context.Context, resumeID uuid.UUID) ([]*Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Version
	for _, version := range m.versions {
		if version.ResumeID != resumeID {
			continue
		}
		copied := *version
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
