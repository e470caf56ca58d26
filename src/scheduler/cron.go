package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/drive-clone/api/src/services/operations"
)

// Reconciler is the job the scheduler runs
type Reconciler interface {
	RunReconciliation(ctx context.Context) (*operations.SweepReport, error)
	Logger() *logrus.Logger
}

var (
	mu          sync.Mutex
	cronRunner  *cron.Cron
	cronParser  = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	defaultSpec = "*/30 * * * *"
	jobTimeout  = 10 * time.Minute
)

// ValidateSchedule reports whether spec is a valid five-field cron expression
func ValidateSchedule(spec string) error {
	if _, err := cronParser.Parse(spec); err != nil {
		return fmt.Errorf("invalid reconcile schedule: %w", err)
	}
	return nil
}

// StartReconcileScheduler starts the cron job that runs the consistency sweep.
// Calling it again replaces the running schedule.
func StartReconcileScheduler(svc Reconciler, schedule string) error {
	if svc == nil {
		return fmt.Errorf("reconciler is required")
	}

	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		schedule = defaultSpec
	}
	if err := ValidateSchedule(schedule); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	stopLocked()

	runner := cron.New(cron.WithParser(cronParser))
	log := svc.Logger()

	job := func() {
		runReconcileJob(svc, log)
	}

	if _, err := runner.AddFunc(schedule, job); err != nil {
		return fmt.Errorf("register reconcile job: %w", err)
	}

	runner.Start()
	cronRunner = runner

	if log != nil {
		log.WithField("schedule", schedule).Info("reconcile scheduler started")
	}

	return nil
}

// StopScheduler stops the scheduler and waits for a running job to finish
func StopScheduler() {
	mu.Lock()
	defer mu.Unlock()
	stopLocked()
}

func stopLocked() {
	if cronRunner == nil {
		return
	}
	ctx := cronRunner.Stop()
	<-ctx.Done()
	cronRunner = nil
}

func runReconcileJob(svc Reconciler, log *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := svc.RunReconciliation(ctx)
	if err != nil {
		if log != nil {
			log.WithError(err).Error("reconcile scheduler: sweep failed")
		}
		return
	}

	if log != nil && report.OrphansDeleted > 0 {
		log.WithField("orphans_removed", report.OrphansDeleted).Info("reconcile scheduler: orphaned blobs removed")
	}
}
