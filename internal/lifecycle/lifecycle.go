// Package lifecycle implements the ebook approval state machine:
// draft → pending → approved/rejected, with re-review between approved and
// rejected. Draft is only ever reached by creation. Each transition is one
// atomic status update through the repository — an ebook is never left in
// an intermediate state.
package lifecycle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/events"
	"github.com/nash-team/bookforge/internal/model"
	"github.com/nash-team/bookforge/internal/storage"
)

// allowedSources maps each target status to the statuses a transition may
// start from. This table is the whole state machine.
var allowedSources = map[model.EbookStatus][]model.EbookStatus{
	model.StatusPending:  {model.StatusDraft},
	model.StatusApproved: {model.StatusPending, model.StatusRejected},
	model.StatusRejected: {model.StatusPending, model.StatusApproved},
}

// Service exposes the status-transition use cases. All ebook status
// mutations in the system go through here.
type Service struct {
	repo   storage.EbookRepository
	bus    *events.Bus
	logger *zap.Logger
}

// NewService creates the lifecycle service.
func NewService(repo storage.EbookRepository, bus *events.Bus, logger *zap.Logger) *Service {
	return &Service{repo: repo, bus: bus, logger: logger}
}

// SubmitForValidation moves a draft to pending review. The draft must have
// both a stored artifact and a preview — a book that was never produced
// cannot be reviewed.
func (s *Service) SubmitForValidation(ctx context.Context, id int64) (*model.Ebook, error) {
	ebook, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := checkTransition(ebook.Status, model.StatusPending); err != nil {
		return nil, err
	}
	if !ebook.HasArtifacts() {
		return nil, model.ValidationError(
			fmt.Sprintf("ebook %d is missing its storage or preview reference", id),
			"generate and store the book before submitting it for validation",
		).With("storage_ref", ebook.StorageRef).With("preview_ref", ebook.PreviewRef)
	}

	return s.transition(ctx, ebook, model.StatusPending)
}

// Approve marks a pending or previously rejected book as approved and
// publishes an EbookApprovedEvent.
func (s *Service) Approve(ctx context.Context, id int64, reviewedBy string) (*model.Ebook, error) {
	ebook, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(ebook.Status, model.StatusApproved); err != nil {
		return nil, err
	}

	ebook, err = s.transition(ctx, ebook, model.StatusApproved)
	if err != nil {
		return nil, err
	}

	if err := s.bus.Publish(ctx, model.EbookApprovedEvent{
		EventHeader: model.NewEventHeader(ebook.RequestID),
		EbookID:     ebook.ID,
		ReviewedBy:  reviewedBy,
	}); err != nil {
		return nil, err
	}
	return ebook, nil
}

// Reject marks a pending or previously approved book as rejected and
// publishes an EbookRejectedEvent.
func (s *Service) Reject(ctx context.Context, id int64, reason string) (*model.Ebook, error) {
	ebook, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(ebook.Status, model.StatusRejected); err != nil {
		return nil, err
	}

	ebook, err = s.transition(ctx, ebook, model.StatusRejected)
	if err != nil {
		return nil, err
	}

	if err := s.bus.Publish(ctx, model.EbookRejectedEvent{
		EventHeader: model.NewEventHeader(ebook.RequestID),
		EbookID:     ebook.ID,
		Reason:      reason,
	}); err != nil {
		return nil, err
	}
	return ebook, nil
}

// transition performs the single-field status update and logs it.
func (s *Service) transition(ctx context.Context, ebook *model.Ebook, to model.EbookStatus) (*model.Ebook, error) {
	from := ebook.Status
	if err := s.repo.SetStatus(ctx, ebook.ID, to); err != nil {
		return nil, err
	}
	ebook.Status = to

	s.logger.Info("ebook status changed",
		zap.Int64("ebook_id", ebook.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return ebook, nil
}

// checkTransition validates a transition against the state machine table.
// Illegal transitions fail with a validation error naming the current
// status and the statuses the target accepts.
func checkTransition(from, to model.EbookStatus) error {
	sources := allowedSources[to]
	for _, s := range sources {
		if s == from {
			return nil
		}
	}
	return model.ValidationError(
		fmt.Sprintf("cannot move ebook from %s to %s; %s is only reachable from %v", from, to, to, sources),
		"check the ebook's current status before requesting the transition",
	).With("current_status", string(from)).With("target_status", string(to))
}
