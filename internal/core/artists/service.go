package artists

import (
	"context"
	"log/slog"
	"time"

	"github.com/atelierhq/atelier/internal/platform/apperr"
)

// Service serves artist directory reads.
type Service struct {
	store  *Store
	logger *slog.Logger
}

func NewService(store *Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// List returns the artist directory for year, defaulting to the current one.
func (service *Service) List(ctx context.Context, year int) (map[string]*Artist, error) {
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	entries, err := service.store.GetYear(ctx, year)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return entries, nil
}
