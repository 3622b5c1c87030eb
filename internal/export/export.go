// Package export publishes the normalized board as a single JSON document.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amishk599/cadre/internal/board"
	"github.com/amishk599/cadre/internal/filter"
	"github.com/amishk599/cadre/internal/model"
)

// Document is the published shape of a board snapshot.
type Document struct {
	GeneratedAt time.Time               `json:"generatedAt"`
	Degraded    bool                    `json:"degraded"`
	Jobs        []model.JobListing      `json:"jobs"`
	Companies   []model.CompanyListing  `json:"companies"`
	Investors   []model.InvestorListing `json:"investors"`
	Filters     filter.Options          `json:"filters"`
}

// FromSnapshot builds a Document from a loaded board.
func FromSnapshot(snap *board.Snapshot) Document {
	return Document{
		GeneratedAt: snap.FetchedAt.UTC(),
		Degraded:    snap.Degraded,
		Jobs:        snap.Jobs,
		Companies:   snap.Companies,
		Investors:   snap.Investors,
		Filters:     snap.Options,
	}
}

// Publisher writes a Document somewhere and reports where.
type Publisher interface {
	Publish(ctx context.Context, doc Document) (string, error)
}

func encode(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return append(data, '\n'), nil
}

// FilePublisher writes the document to a local path.
type FilePublisher struct {
	path string
}

// NewFilePublisher returns a publisher that writes to path.
func NewFilePublisher(path string) *FilePublisher {
	return &FilePublisher{path: path}
}

// Publish writes to a temporary file next to the target and renames it, so
// readers never see a partial document.
func (p *FilePublisher) Publish(_ context.Context, doc Document) (string, error) {
	data, err := encode(doc)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".cadre-export-*")
	if err != nil {
		return "", fmt.Errorf("creating temp export: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing export: %w", err)
	}
	if err := os.Rename(tmp.Name(), p.path); err != nil {
		return "", fmt.Errorf("publishing export: %w", err)
	}
	return p.path, nil
}
