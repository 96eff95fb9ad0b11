// Package script loads and parses the command script driving a simulation:
// an ordered list of timestamped spawn/terminate actions plus the single
// EXIT line marking the terminal timestep.
package script

import (
	"context"
	"fmt"

	"github.com/simpool/simpool/model"
	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// Service loads scripts through the virtual file system, optionally
// resolving relative locations against a base URL.
type Service struct {
	fs      afs.Service
	baseURL string
}

// New creates a script service.
func New(fs afs.Service, baseURL string) *Service {
	return &Service{fs: fs, baseURL: baseURL}
}

// Load reads and parses the script at the given URL into a validated plan.
func (s *Service) Load(ctx context.Context, URL string) (*model.Plan, error) {
	location := URL
	if s.baseURL != "" {
		location = url.Join(s.baseURL, URL)
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("script: failed to load %v: %w", location, err)
	}
	plan, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (in %v)", err, location)
	}
	return plan, nil
}
