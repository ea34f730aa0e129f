package services

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"admatch/internal/metrics"
	"admatch/internal/store"
	"admatch/internal/taxonomy"
)

// ReloadService swaps in a freshly loaded taxonomy and, when a bus is
// configured, tells the other instances to do the same.
type ReloadService struct {
	registry   *taxonomy.Registry
	bus        store.ReloadBus
	instanceID string
}

// NewReloadService builds a ReloadService. bus may be nil.
func NewReloadService(registry *taxonomy.Registry, bus store.ReloadBus, instanceID string) *ReloadService {
	return &ReloadService{registry: registry, bus: bus, instanceID: instanceID}
}

// Reload rebuilds the taxonomy locally and broadcasts the swap. A failed
// load leaves the current graph serving. A failed broadcast is logged and
// does not undo the local swap.
func (s *ReloadService) Reload(ctx context.Context) (*ReloadOutcome, error) {
	outcome, err := s.reloadLocal(ctx)
	if err != nil {
		return nil, err
	}
	if s.bus == nil {
		return outcome, nil
	}

	notice := store.ReloadNotice{
		Origin:       s.instanceID,
		GraphVersion: outcome.GraphVersion,
		SnapshotID:   outcome.SnapshotID,
		At:           time.Now().UTC(),
	}
	if err := s.bus.Publish(ctx, notice); err != nil {
		log.WithError(err).Warn("taxonomy reloaded locally but the broadcast failed")
		return outcome, nil
	}
	outcome.Broadcast = true
	return outcome, nil
}

func (s *ReloadService) reloadLocal(ctx context.Context) (*ReloadOutcome, error) {
	previous := s.registry.Current()
	next, err := s.registry.Reload(ctx)
	metrics.RecordReload(err)
	if err != nil {
		log.WithError(err).WithField("version", previous.Version()).Error("taxonomy reload failed; keeping current graph")
		return nil, err
	}
	return &ReloadOutcome{
		PreviousVersion: previous.Version(),
		GraphVersion:    next.Version(),
		SnapshotID:      next.SnapshotID(),
		Categories:      next.CategoryCount(),
		Edges:           next.EdgeCount(),
	}, nil
}

// Listen reloads locally whenever another instance announces a reload. It
// blocks until ctx is done.
func (s *ReloadService) Listen(ctx context.Context) error {
	if s.bus == nil {
		return errors.New("reload broadcast is not configured")
	}
	return s.bus.Subscribe(ctx, func(n store.ReloadNotice) {
		if n.Origin == s.instanceID {
			return
		}
		fields := log.Fields{"origin": n.Origin, "announced_version": n.GraphVersion}
		if _, err := s.reloadLocal(ctx); err != nil {
			log.WithFields(fields).WithError(err).Error("reload requested by peer failed")
			return
		}
		log.WithFields(fields).Info("reloaded taxonomy on peer request")
	})
}
