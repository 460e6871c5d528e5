package works

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/atelierhq/atelier/internal/platform/apperr"
	"github.com/atelierhq/atelier/internal/platform/kv"
	"github.com/atelierhq/atelier/internal/platform/sec"
)

// Transition is the closed set of privileged state changes a moderation
// batch can apply.
type Transition int

const (
	TransitionApprove Transition = iota
	TransitionUnapprove
	TransitionDelete
)

// String returns the transition name for logs.
func (t Transition) String() string {
	switch t {
	case TransitionApprove:
		return "approve"
	case TransitionUnapprove:
		return "unapprove"
	case TransitionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// apply mutates the single moderation field the transition governs.
func (t Transition) apply(work *Work) {
	switch t {
	case TransitionApprove:
		work.IsApproved = true
	case TransitionUnapprove:
		work.IsApproved = false
	case TransitionDelete:
		work.IsSoftDeleted = true
	}
}

// Moderate applies transition to every ID in request order.
//
// # Algorithm
//
// IDs are processed strictly sequentially: fetch, mutate, place with the
// list rewrite suppressed. After the loop the unfiltered list is fetched
// once, every mutated work merged in by ID (last write wins), re-sorted
// descending by submission time and written back in a single put. This
// collapses N list rewrites into 1 — the sub-indices are disjoint keys and
// do not contend, so they keep their per-item writes.
//
// A missing ID is an operator error, not a user error: the batch aborts with
// a fatal fault and the final list merge is skipped. Works already mutated
// keep their per-key writes; the next full placement self-heals the list.
func (service *Service) Moderate(ctx context.Context, ids []string, transition Transition, caller *sec.AuthClaims) error {

	// Fails closed: moderation is staff-only.
	if caller == nil || !caller.IsStaff() {
		return apperr.Forbidden("Moderation requires staff privileges")
	}

	// Last write wins per ID; order retained for logging only.
	mutated := make(map[string]*Work, len(ids))

	for _, id := range ids {
		work, err := service.store.GetByID(ctx, id)
		if err != nil {
			if kv.IsNotFound(err) {
				return apperr.Internal(fmt.Errorf("works: moderation target %q does not exist", id))
			}
			return apperr.Internal(err)
		}

		transition.apply(work)

		flags := PlaceAll
		flags.ListIndex = false
		if err := service.index.Place(ctx, work, false, flags); err != nil {
			return apperr.Internal(err)
		}

		mutated[work.ID] = work
	}

	if err := service.mergeList(ctx, mutated); err != nil {
		return apperr.Internal(err)
	}

	service.logger.Info("moderation_batch_applied",
		slog.String("transition", transition.String()),
		slog.Int("count", len(ids)),
		slog.String("moderator_id", caller.UserID),
	)
	return nil
}

// mergeList rewrites the unfiltered list once with every mutated work merged
// in, sorted newest-first by submission time.
func (service *Service) mergeList(ctx context.Context, mutated map[string]*Work) error {
	list, err := service.store.GetList(ctx)
	if err != nil {
		return err
	}

	merged := make([]*Work, 0, len(list)+len(mutated))
	seen := make(map[string]bool, len(list))

	for _, work := range list {
		if replacement, ok := mutated[work.ID]; ok {
			merged = append(merged, replacement)
		} else {
			merged = append(merged, work)
		}
		seen[work.ID] = true
	}

	// Mutated works absent from the stale list (e.g. a crash between a
	// by-ID write and the list write) are re-inserted here.
	for id, work := range mutated {
		if !seen[id] {
			merged = append(merged, work)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].SubmittedAt().After(merged[j].SubmittedAt())
	})

	return service.store.PutList(ctx, merged)
}
