package billing

import (
	"log/slog"
	"sync"
	"time"

	"github.com/acropolistg/Manager-Bot/internal/logger"
	"github.com/acropolistg/Manager-Bot/internal/metrics"
	"github.com/acropolistg/Manager-Bot/internal/store"
)

// ApprovalStatus enumerates the outcomes of an approval attempt.
type ApprovalStatus int

const (
	// StatusApproved means the pending payment was converted into a subscription.
	StatusApproved ApprovalStatus = iota
	// StatusUnauthorized means the actor is not the configured administrator.
	StatusUnauthorized
	// StatusNotPending means the target user has no pending payment.
	StatusNotPending
)

// String returns the outcome label used in logs and metrics.
func (s ApprovalStatus) String() string {
	switch s {
	case StatusApproved:
		return "approved"
	case StatusUnauthorized:
		return "unauthorized"
	case StatusNotPending:
		return "not_pending"
	}
	return "unknown"
}

// Approval is the result of an approval attempt. Payment and Subscriber are
// populated only when Status is StatusApproved.
type Approval struct {
	Status     ApprovalStatus
	Payment    PendingPayment
	Subscriber store.Subscriber
}

// Snapshotter persists the full subscriber mapping.
type Snapshotter interface {
	Save(map[int64]store.Subscriber) error
}

// Service owns the two workflow tables: the subscriber store loaded at
// startup and the transient pending payment table. All mutation goes through
// its methods under one mutex, preserving the single-writer invariant even if
// the transport ever dispatches updates concurrently.
type Service struct {
	mu      sync.Mutex
	adminID int64
	users   map[int64]store.Subscriber
	pending map[int64]PendingPayment
	file    Snapshotter
	now     func() time.Time
	log     *slog.Logger
}

// Option tweaks Service construction.
type Option func(*Service)

// WithClock replaces the wall clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New builds the workflow service around a previously loaded subscriber
// mapping. The mapping is owned by the service after the call.
func New(adminID int64, users map[int64]store.Subscriber, file Snapshotter, opts ...Option) *Service {
	if users == nil {
		users = map[int64]store.Subscriber{}
	}
	s := &Service{
		adminID: adminID,
		users:   users,
		pending: map[int64]PendingPayment{},
		file:    file,
		now:     time.Now,
		log:     logger.Billing,
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.Subscribers.Set(float64(len(users)))
	metrics.PendingPayments.Set(0)
	return s
}

// SelectPlan records (or silently replaces) the user's pending payment for
// the plan identified by key. It returns false for an unknown plan key.
func (s *Service) SelectPlan(userID int64, key string) (Plan, bool) {
	plan, ok := PlanByKey(key)
	if !ok {
		return Plan{}, false
	}

	s.mu.Lock()
	s.pending[userID] = pendingFromPlan(plan)
	count := len(s.pending)
	s.mu.Unlock()

	metrics.PlanSelections.WithLabelValues(plan.Key).Inc()
	metrics.PendingPayments.Set(float64(count))

	s.logEvent(slog.LevelInfo, "plan.selected",
		slog.Int64("user_id", userID),
		slog.String("plan", plan.Key),
		slog.Int("days", plan.Days),
		slog.Int("amount", plan.Amount),
		slog.Bool("forever", plan.Forever),
		slog.Int("pending_count", count),
	)
	return plan, true
}

// Pending returns the user's pending payment, if any.
func (s *Service) Pending(userID int64) (PendingPayment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[userID]
	return p, ok
}

// Subscriber returns the user's subscription record, if any.
func (s *Service) Subscriber(userID int64) (store.Subscriber, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.users[userID]
	return sub, ok
}

// PendingCount reports the size of the pending payment table.
func (s *Service) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// SubscriberCount reports the number of known subscriber records.
func (s *Service) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Approve converts userID's pending payment into a subscriber record when
// actorID is the configured administrator. Unauthorized and not-pending
// attempts mutate nothing. The snapshot write after a successful approval is
// best effort: a failed save is logged and the in-memory state stays
// authoritative.
func (s *Service) Approve(actorID, userID int64) Approval {
	if actorID != s.adminID {
		metrics.Approvals.WithLabelValues(StatusUnauthorized.String()).Inc()
		s.logEvent(slog.LevelWarn, "approval.rejected",
			slog.Int64("user_id", userID),
			slog.Int64("actor_id", actorID),
			slog.String("outcome", StatusUnauthorized.String()),
		)
		return Approval{Status: StatusUnauthorized}
	}

	s.mu.Lock()
	payment, ok := s.pending[userID]
	if !ok {
		s.mu.Unlock()
		metrics.Approvals.WithLabelValues(StatusNotPending.String()).Inc()
		s.logEvent(slog.LevelWarn, "approval.not_pending",
			slog.Int64("user_id", userID),
			slog.String("outcome", StatusNotPending.String()),
		)
		return Approval{Status: StatusNotPending}
	}
	delete(s.pending, userID)

	sub := store.Subscriber{Forever: payment.Forever}
	if !payment.Forever {
		exp := s.now().Add(time.Duration(payment.Days) * 24 * time.Hour).Truncate(time.Second)
		sub.ExpiresAt = &exp
	}
	s.users[userID] = sub

	snapshot := s.copyUsersLocked()
	pendingCount := len(s.pending)
	subscriberCount := len(s.users)
	s.mu.Unlock()

	metrics.Approvals.WithLabelValues(StatusApproved.String()).Inc()
	metrics.PendingPayments.Set(float64(pendingCount))
	metrics.Subscribers.Set(float64(subscriberCount))

	s.persist(snapshot)

	attrs := []slog.Attr{
		slog.Int64("user_id", userID),
		slog.Int("amount", payment.Amount),
		slog.Bool("forever", payment.Forever),
		slog.String("outcome", StatusApproved.String()),
		slog.Int("pending_count", pendingCount),
		slog.Int("subscribers", subscriberCount),
	}
	if sub.ExpiresAt != nil {
		attrs = append(attrs, slog.Time("expires_at", *sub.ExpiresAt))
	}
	s.logEvent(slog.LevelInfo, "approval.approved", attrs...)

	return Approval{Status: StatusApproved, Payment: payment, Subscriber: sub}
}

// Flush writes the current subscriber mapping to disk. Used on shutdown.
func (s *Service) Flush() error {
	s.mu.Lock()
	snapshot := s.copyUsersLocked()
	s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	return s.file.Save(snapshot)
}

func (s *Service) persist(snapshot map[int64]store.Subscriber) {
	if s.file == nil {
		return
	}
	if err := s.file.Save(snapshot); err != nil {
		s.logEvent(slog.LevelError, "snapshot.save",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
}

func (s *Service) copyUsersLocked() map[int64]store.Subscriber {
	out := make(map[int64]store.Subscriber, len(s.users))
	for id, sub := range s.users {
		out[id] = sub
	}
	return out
}

func (s *Service) logEvent(level slog.Level, event string, attrs ...slog.Attr) {
	log := s.log
	if log == nil {
		log = logger.Billing
	}
	if log == nil {
		return
	}
	logger.LogEvent(logger.Background(), log, level, event, attrs...)
}
