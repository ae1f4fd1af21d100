package scheduler

import (
	"context"
	"errors"
	"time"

	appshared "github.com/sitestock/backend/internal/application/shared"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/logger"
	"github.com/sitestock/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ReconcileJobName names the pending-quantity sweep
const ReconcileJobName = "inventory-pending-reconcile"

const reconcileLockKey = "job:" + ReconcileJobName

// PendingRepairer recomputes derived pending quantities
type PendingRepairer interface {
	RepairPending(ctx context.Context) (int64, error)
}

// ReconcileObserver receives the outcome of each sweep
type ReconcileObserver interface {
	ObserveReconcile(repaired int, err error)
}

// ReconcileJob repairs inventory records whose pending quantity drifted
// from open minus inHand. Only one instance sweeps at a time across
// replicas; the others skip the run.
type ReconcileJob struct {
	repairer PendingRepairer
	locker   appshared.Locker
	observer ReconcileObserver
	lockTTL  time.Duration
}

// NewReconcileJob creates the job. locker and observer may be nil.
func NewReconcileJob(repairer PendingRepairer, locker appshared.Locker, observer ReconcileObserver) *ReconcileJob {
	if locker == nil {
		locker = appshared.NoopLocker{}
	}
	return &ReconcileJob{repairer: repairer, locker: locker, observer: observer, lockTTL: 15 * time.Minute}
}

// Name implements Job
func (j *ReconcileJob) Name() string {
	return ReconcileJobName
}

// Run implements Job
func (j *ReconcileJob) Run(ctx context.Context) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "scheduler.reconcile_pending")
	defer func() { telemetry.EndSpan(span, err) }()
	log := logger.L(ctx)

	lock, err := j.locker.Obtain(ctx, reconcileLockKey, j.lockTTL)
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		log.Info("Reconcile sweep running elsewhere, skipping")
		return nil
	}
	if err != nil {
		return err
	}
	defer func() {
		if rerr := lock.Release(context.WithoutCancel(ctx)); rerr != nil {
			log.Warn("Failed to release reconcile lock", zap.Error(rerr))
		}
	}()

	repaired, err := j.repairer.RepairPending(ctx)
	if j.observer != nil {
		j.observer.ObserveReconcile(int(repaired), err)
	}
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int64("repaired", repaired))
	if repaired > 0 {
		log.Warn("Repaired drifted pending quantities", zap.Int64("records", repaired))
	}
	return nil
}

var _ Job = (*ReconcileJob)(nil)
