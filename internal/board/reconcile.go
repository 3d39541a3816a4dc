package board

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Reconciler pulls the full collection again after a mutation.
type Reconciler struct {
	store  *Store
	logger log.FieldLogger
}

// NewReconciler returns a reconciler reloading store.
func NewReconciler(store *Store, logger log.FieldLogger) *Reconciler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Reconciler{store: store, logger: logger}
}

// After awaits one full reload following action. The caller decides the
// context; mutations pass one detached from their own cancellation.
func (r *Reconciler) After(ctx context.Context, action string) bool {
	start := time.Now()
	applied := r.store.Load(ctx)
	r.logger.WithFields(log.Fields{
		"action":   action,
		"applied":  applied,
		"duration": time.Since(start).String(),
	}).Debug("board.reconcile")
	return applied
}
