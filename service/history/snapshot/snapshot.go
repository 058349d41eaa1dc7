// Package snapshot exports and imports Repository aggregates through the
// viant/afs abstraction, so a history can be mirrored to any supported
// storage scheme. The codec follows the URL extension: .yaml/.yml encodes
// YAML, anything else JSON.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"gopkg.in/yaml.v3"

	"github.com/signoffhq/signoff/service/history"
)

// Service reads and writes repository snapshots.
type Service struct {
	fs afs.Service
}

// New creates the snapshot service.
func New() *Service {
	return &Service{fs: afs.New()}
}

// Export writes the repository aggregate to the URL.
func (s *Service) Export(ctx context.Context, svc *history.Service, URL string) error {
	if svc == nil {
		return fmt.Errorf("history service is nil")
	}
	data, err := marshal(svc.Export(), URL)
	if err != nil {
		return err
	}
	return s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data))
}

// Import reads a snapshot from the URL and loads it into the service,
// replacing its content.
func (s *Service) Import(ctx context.Context, svc *history.Service, URL string) error {
	if svc == nil {
		return fmt.Errorf("history service is nil")
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return fmt.Errorf("failed to download snapshot %v: %w", URL, err)
	}
	repository := &history.Repository{}
	if err = unmarshal(data, repository, URL); err != nil {
		return err
	}
	return svc.Import(repository)
}

func marshal(repository *history.Repository, URL string) ([]byte, error) {
	if isYAML(URL) {
		return yaml.Marshal(repository)
	}
	return json.MarshalIndent(repository, "", "  ")
}

func unmarshal(data []byte, repository *history.Repository, URL string) error {
	if isYAML(URL) {
		if err := yaml.Unmarshal(data, repository); err != nil {
			return fmt.Errorf("failed to decode snapshot %v: %w", URL, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, repository); err != nil {
		return fmt.Errorf("failed to decode snapshot %v: %w", URL, err)
	}
	return nil
}

func isYAML(URL string) bool {
	lower := strings.ToLower(URL)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
