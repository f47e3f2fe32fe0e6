// internal/service/blacklist/seed.go
package blacklist

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"polisure-service/internal/domain/blacklist"
)

// seedFile is the on-disk shape of a blacklist seed: deny lists are often
// shipped as files alongside a fresh deployment.
type seedFile struct {
	Entries []seedEntry `yaml:"entries"`
}

type seedEntry struct {
	Category string                  `yaml:"category"`
	Reason   string                  `yaml:"reason"`
	Identity *blacklist.IdentityRule `yaml:"identity,omitempty"`
	Network  *blacklist.NetworkRule  `yaml:"network,omitempty"`
	Location *blacklist.LocationRule `yaml:"location,omitempty"`
	Asset    *blacklist.AssetRule    `yaml:"asset,omitempty"`
}

// SeedFromFile loads entries from a YAML file into the store and the live
// snapshot. Invalid entries are skipped with a warning rather than
// failing startup. Returns the number of entries loaded.
func (s *Service) SeedFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read blacklist seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("failed to parse blacklist seed file: %w", err)
	}

	loaded := 0
	for i, se := range seed.Entries {
		entry := &blacklist.Entry{
			ID:        uuid.NewString(),
			Category:  blacklist.Category(se.Category),
			Reason:    se.Reason,
			CreatedBy: "seed",
			Identity:  se.Identity,
			Network:   se.Network,
			Location:  se.Location,
			Asset:     se.Asset,
		}
		if err := entry.Validate(); err != nil {
			s.logger.Warn("skipping invalid seed entry",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		if err := s.store.Create(ctx, entry); err != nil {
			return loaded, fmt.Errorf("failed to persist seed entry %d: %w", i, err)
		}
		s.matcher.Upsert(*entry)
		loaded++
	}

	s.logger.Info("blacklist seed applied", zap.String("path", path), zap.Int("loaded", loaded))
	return loaded, nil
}
