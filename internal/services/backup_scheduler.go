package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"fireforce-invoice-api/internal/repositories"
)

// State keys used by the scheduler
const (
	stateKeyAutoBackup        = "auto_backup_enabled"
	stateKeyLastBackup        = "last_backup_date"
	stateKeyLastReminder      = "last_reminder_date"
	stateKeyReminderDismissed = "reminder_dismissed_date"
)

// Scheduling intervals
const (
	backupDueAfter   = 24 * time.Hour
	reminderInterval = 8 * time.Hour
	checkInterval    = time.Hour
)

// ReminderEvent is broadcast when the operator should be nagged to back
// up
type ReminderEvent struct {
	LastBackup *time.Time `json:"lastBackup,omitempty"`
	Message    string     `json:"message"`
}

// AutoBackupRunner performs an automatic backup when the scheduler
// decides one is due
type AutoBackupRunner func(ctx context.Context) error

// backupScheduler implements the BackupScheduler interface. All state
// lives in the StateRepository so restarts keep the backup cadence.
type backupScheduler struct {
	state  repositories.StateRepository
	runner AutoBackupRunner
	logger *logrus.Logger
	now    func() time.Time

	mu          sync.Mutex
	subscribers []chan ReminderEvent
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewBackupScheduler creates a scheduler. The clock is injected so due
// checks are testable; pass time.Now in production. runner may be nil
// when automatic backups are not wired.
func NewBackupScheduler(state repositories.StateRepository, runner AutoBackupRunner, now func() time.Time, logger *logrus.Logger) BackupScheduler {
	if logger == nil {
		logger = logrus.New()
	}
	if now == nil {
		now = time.Now
	}
	return &backupScheduler{
		state:  state,
		runner: runner,
		logger: logger,
		now:    now,
	}
}

// Subscribe returns a channel receiving reminder events. Events are
// dropped, not queued, when a subscriber is slow.
func (s *backupScheduler) Subscribe() <-chan ReminderEvent {
	ch := make(chan ReminderEvent, 1)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()
	return ch
}

// Start launches the periodic check loop
func (s *backupScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.loop(loopCtx)
}

// Stop halts the loop and waits for it to exit
func (s *backupScheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (s *backupScheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	// Run once at startup so a long-stopped system is checked promptly
	s.check(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *backupScheduler) check(ctx context.Context) {
	due, err := s.IsBackupDue(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Backup due check failed")
		return
	}
	if !due {
		return
	}

	if s.autoBackupEnabled(ctx) && s.runner != nil {
		s.logger.Info("Running automatic backup")
		if err := s.runner(ctx); err != nil {
			s.logger.WithError(err).Error("Automatic backup failed")
		} else {
			if err := s.RecordBackup(ctx, s.now()); err != nil {
				s.logger.WithError(err).Warn("Failed to record automatic backup")
			}
			return
		}
	}

	reminderDue, err := s.IsReminderDue(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Reminder due check failed")
		return
	}
	if reminderDue {
		s.fireReminder(ctx)
	}
}

func (s *backupScheduler) fireReminder(ctx context.Context) {
	if err := s.state.Set(ctx, stateKeyLastReminder, s.now().Format(time.RFC3339)); err != nil {
		s.logger.WithError(err).Warn("Failed to record reminder time")
	}

	event := ReminderEvent{
		LastBackup: s.lastBackup(ctx),
		Message:    "Data has not been backed up in over 24 hours",
	}

	s.mu.Lock()
	subscribers := make([]chan ReminderEvent, len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	for _, ch := range subscribers {
		select {
		case ch <- event:
		default:
		}
	}

	s.logger.WithField("lastBackup", event.LastBackup).Info("Backup reminder fired")
}

// IsBackupDue reports whether a backup is overdue
func (s *backupScheduler) IsBackupDue(ctx context.Context) (bool, error) {
	last := s.lastBackup(ctx)
	if last == nil {
		return true, nil
	}
	return s.now().Sub(*last) >= backupDueAfter, nil
}

// IsReminderDue reports whether the operator should be nagged. A
// reminder is due when a backup is overdue, the operator has not
// dismissed reminders today, and the last reminder is at least the
// reminder interval old.
func (s *backupScheduler) IsReminderDue(ctx context.Context) (bool, error) {
	due, err := s.IsBackupDue(ctx)
	if err != nil || !due {
		return false, err
	}

	now := s.now()

	if dismissed := s.timeState(ctx, stateKeyReminderDismissed); dismissed != nil {
		if sameCalendarDay(*dismissed, now) {
			return false, nil
		}
	}

	if lastReminder := s.timeState(ctx, stateKeyLastReminder); lastReminder != nil {
		if now.Sub(*lastReminder) < reminderInterval {
			return false, nil
		}
	}

	return true, nil
}

// DismissReminder silences reminders for the rest of the day
func (s *backupScheduler) DismissReminder(ctx context.Context) error {
	return s.state.Set(ctx, stateKeyReminderDismissed, s.now().Format(time.RFC3339))
}

// SetAutoBackup toggles automatic backups
func (s *backupScheduler) SetAutoBackup(ctx context.Context, enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	return s.state.Set(ctx, stateKeyAutoBackup, value)
}

// RecordBackup notes that a backup just happened
func (s *backupScheduler) RecordBackup(ctx context.Context, at time.Time) error {
	return s.state.Set(ctx, stateKeyLastBackup, at.Format(time.RFC3339))
}

// Stats returns the scheduler state for display
func (s *backupScheduler) Stats(ctx context.Context) (*SchedulerStats, error) {
	backupDue, err := s.IsBackupDue(ctx)
	if err != nil {
		return nil, err
	}
	reminderDue, err := s.IsReminderDue(ctx)
	if err != nil {
		return nil, err
	}

	return &SchedulerStats{
		AutoBackupEnabled: s.autoBackupEnabled(ctx),
		LastBackup:        s.lastBackup(ctx),
		BackupDue:         backupDue,
		ReminderDue:       reminderDue,
	}, nil
}

func (s *backupScheduler) autoBackupEnabled(ctx context.Context) bool {
	value, err := s.state.Get(ctx, stateKeyAutoBackup)
	if err != nil {
		return false
	}
	return value == "true"
}

func (s *backupScheduler) lastBackup(ctx context.Context) *time.Time {
	return s.timeState(ctx, stateKeyLastBackup)
}

func (s *backupScheduler) timeState(ctx context.Context, key string) *time.Time {
	value, err := s.state.Get(ctx, key)
	if err != nil {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &ts
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
