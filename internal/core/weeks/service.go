package weeks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/atelierhq/atelier/internal/core/works"
	"github.com/atelierhq/atelier/internal/platform/apperr"
	"github.com/atelierhq/atelier/internal/platform/sec"
	"github.com/atelierhq/atelier/internal/platform/validate"
)

// Service reads and overwrites the yearly week directory.
type Service struct {
	store  *Store
	logger *slog.Logger
}

func NewService(store *Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// List returns the week directory for year. Non-staff callers get a redacted
// view: unpublished weeks are dropped entirely, not blanked.
func (service *Service) List(ctx context.Context, year int, caller *sec.AuthClaims) (map[int]*Week, error) {
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	entries, err := service.store.GetYear(ctx, year)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if caller != nil && caller.IsStaff() {
		return entries, nil
	}

	visible := make(map[int]*Week, len(entries))
	for number, week := range entries {
		if week.IsPublished {
			visible[number] = week
		}
	}
	return visible, nil
}

// Overwrite replaces the whole week map for a year in a single write.
// Staff only.
func (service *Service) Overwrite(ctx context.Context, year int, entries map[int]*Week, caller *sec.AuthClaims) error {
	if caller == nil || !caller.IsStaff() {
		return apperr.Forbidden("Week management requires staff privileges")
	}

	if err := validateOverwrite(year, entries); err != nil {
		return err
	}

	// Normalize denormalized copies of the addressing fields so a map entry
	// can never disagree with the key it is stored under.
	for number, week := range entries {
		week.Week = number
		week.Year = year
	}

	if err := service.store.PutYear(ctx, year, entries); err != nil {
		return apperr.Internal(err)
	}

	service.logger.Info("weeks_overwritten",
		slog.Int("year", year),
		slog.Int("count", len(entries)),
		slog.String("moderator_id", caller.UserID),
	)
	return nil
}

func validateOverwrite(year int, entries map[int]*Week) error {
	v := &validate.Validator{}

	v.Range(FieldYear, year, works.MinYear, works.MaxYear)
	v.Custom(FieldWeeks, entries == nil, "A week map is required")

	for number, week := range entries {
		if number < 1 || number > 53 {
			v.Custom(FieldWeeks, true, "Week numbers must be between 1 and 53")
			break
		}
		if week == nil {
			v.Custom(fmt.Sprintf("%s[%d]", FieldWeeks, number), true, "Week entry must not be null")
			continue
		}
		v.Required(fmt.Sprintf("%s[%d].%s", FieldWeeks, number, FieldTheme), week.Theme)
		v.MaxLen(fmt.Sprintf("%s[%d].%s", FieldWeeks, number, FieldTheme), week.Theme, MaxThemeLen)
		v.MaxLen(fmt.Sprintf("%s[%d].description", FieldWeeks, number), week.Description, MaxDescriptionLen)
	}

	return v.Err()
}
