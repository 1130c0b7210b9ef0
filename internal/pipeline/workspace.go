// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/medaffairs/pkg/types"
)

// Checkpoint names one stage snapshot file in a project directory.
type Checkpoint string

const (
	CheckpointInitial   Checkpoint = "initial"
	CheckpointIdeation  Checkpoint = "ideation"
	CheckpointPlanning  Checkpoint = "planning"
	CheckpointExecution Checkpoint = "execution"
	CheckpointPapers    Checkpoint = "papers"
)

// File returns the checkpoint's file name.
func (c Checkpoint) File() string { return string(c) + ".json" }

// Project subdirectories created with every project.
const (
	LiteratureDir  = "literature"
	ExperimentsDir = "experiments"
	DraftsDir      = "drafts"
)

const idTimeLayout = "20060102_150405"

// Workspace is the root directory holding one directory per project.
type Workspace struct {
	Root string
	Now  func() time.Time
}

func (w *Workspace) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// CreateProject makes the project directory and its subdirectories and
// writes the initial checkpoint.
func (w *Workspace) CreateProject(query string) (*types.Project, error) {
	id, err := newProjectID(w.now())
	if err != nil {
		return nil, err
	}
	created := w.now().UTC()
	p := &types.Project{
		ID:        id,
		Query:     query,
		Dir:       filepath.Join(w.Root, id),
		State:     map[string]any{"stage": string(StageCreated)},
		CreatedAt: created,
	}

	for _, sub := range []string{LiteratureDir, ExperimentsDir, DraftsDir} {
		if err := os.MkdirAll(filepath.Join(p.Dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("creating project directory: %w", err)
		}
	}
	if err := SaveCheckpoint(p, CheckpointInitial, p); err != nil {
		return nil, err
	}
	return p, nil
}

// newProjectID returns "<yyyymmdd_hhmmss>_<8 hex>" using the random tail of
// a version 7 UUID.
func newProjectID(t time.Time) (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating project id: %w", err)
	}
	hex := strings.ReplaceAll(u.String(), "-", "")
	return t.Format(idTimeLayout) + "_" + hex[len(hex)-8:], nil
}

// SaveCheckpoint writes v as indented JSON to the checkpoint file in the
// project directory, replacing any previous snapshot of the same name.
func SaveCheckpoint(p *types.Project, name Checkpoint, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s checkpoint: %w", name, err)
	}
	data = append(data, '\n')

	path := filepath.Join(p.Dir, name.File())
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s checkpoint: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("writing %s checkpoint: %w", name, err)
	}
	return nil
}

// LoadCheckpoint reads one checkpoint file from dir into v.
func LoadCheckpoint(dir string, name Checkpoint, v any) error {
	data, err := os.ReadFile(filepath.Join(dir, name.File()))
	if err != nil {
		return fmt.Errorf("reading %s checkpoint: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s checkpoint: %w", name, err)
	}
	return nil
}

// LoadProject reads the initial checkpoint of the project in dir.
func LoadProject(dir string) (*types.Project, error) {
	var p types.Project
	if err := LoadCheckpoint(dir, CheckpointInitial, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
