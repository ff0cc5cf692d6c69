// Package genealogy keeps the denormalized ancestor index in step with sponsor links.
package genealogy

import (
	"context"
	"log/slog"

	"mlm/config"
	"mlm/internal/domain/repository"
	"mlm/internal/domain/service"
	"mlm/internal/errors"
	"mlm/internal/infra/metrics"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// Module provides the indexer selected by genealogy.async.
var Module = fx.Module("genealogy",
	fx.Provide(New),
)

// Params defines the dependencies of the genealogy indexer.
type Params struct {
	fx.In
	fx.Lifecycle

	Config    *config.Config
	Logger    *slog.Logger
	Genealogy repository.GenealogyRepository
	Profiles  repository.ProfileRepository
	Metrics   *metrics.Metrics `optional:"true"`
}

// New returns the synchronous indexer, or the worker pool when genealogy.async is set.
func New(params Params) service.GenealogyIndexer {
	maxDepth := params.Config.Sponsor.MaxDepth
	indexer := NewSyncIndexer(params.Genealogy, params.Profiles, maxDepth)
	if !params.Config.Genealogy.Async {
		return indexer
	}

	var jobMetrics JobMetrics = noopJobMetrics{}
	if params.Metrics != nil {
		jobMetrics = params.Metrics
	}

	worker := NewAsyncIndexer(indexer, AsyncOptions{
		Workers:   params.Config.Genealogy.Workers,
		QueueSize: params.Config.Genealogy.QueueSize,
		Logger:    params.Logger,
		Metrics:   jobMetrics,
	})
	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			worker.Start()
			params.Logger.Info("Genealogy worker started",
				slog.Int("workers", worker.workers),
				slog.Int("queue_size", cap(worker.queue)),
			)

			return nil
		},
		OnStop: worker.Stop,
	})

	return worker
}

// SyncIndexer applies index changes inline through the genealogy repository.
type SyncIndexer struct {
	genealogy repository.GenealogyRepository
	profiles  repository.ProfileRepository
	maxDepth  int
}

// NewSyncIndexer creates an indexer that follows sponsor links up to maxDepth levels.
func NewSyncIndexer(genealogy repository.GenealogyRepository, profiles repository.ProfileRepository, maxDepth int) *SyncIndexer {
	return &SyncIndexer{genealogy: genealogy, profiles: profiles, maxDepth: maxDepth}
}

func (s *SyncIndexer) Rebuild(ctx context.Context, userID uuid.UUID) error {
	if err := s.genealogy.RebuildSubtree(ctx, userID, s.maxDepth); err != nil {
		return errors.Wrapf(err, "rebuild genealogy of %s", userID)
	}

	return nil
}

// Remove drops the rows of userID, then rebuilds each child subtree so no
// descendant keeps the ancestors userID used to have.
func (s *SyncIndexer) Remove(ctx context.Context, userID uuid.UUID) error {
	if err := s.genealogy.DeleteByUser(ctx, userID); err != nil {
		return errors.Wrapf(err, "delete genealogy of %s", userID)
	}

	children, err := s.profiles.ListChildren(ctx, userID)
	if err != nil {
		return errors.Wrapf(err, "list children of %s", userID)
	}
	for _, child := range children {
		if err := s.Rebuild(ctx, child); err != nil {
			return err
		}
	}

	return nil
}
