package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/interfaces"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/service/pubsub"
	"github.com/secmon-lab/caseline/pkg/utils/errutil"
)

type UseCases struct {
	repo interfaces.Repository
	bus  *pubsub.Bus
	now  func() time.Time

	Case     *CaseUseCase
	Timeline *TimelineUseCase
	Category *CategoryUseCase
}

type Option func(*UseCases)

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, bus *pubsub.Bus, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
		bus:  bus,
		now:  func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Case = &CaseUseCase{uc: uc}
	uc.Timeline = &TimelineUseCase{uc: uc}
	uc.Category = &CategoryUseCase{uc: uc}

	return uc
}

// publish hands the notification to the bus. Publish failures never
// roll back the originating mutation (it already committed), so they
// are logged and swallowed here.
func (uc *UseCases) publish(ctx context.Context, n *model.Notification) {
	if uc.bus == nil {
		return
	}
	if err := uc.bus.Publish(ctx, n); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "notification publish failed",
			goerr.V("case_id", n.CaseID), goerr.V("kind", n.Kind)),
			"failed to publish notification")
	}
}
