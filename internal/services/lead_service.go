package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"greenleaf/internal/logger"
	"greenleaf/internal/menu"
	"greenleaf/internal/metrics"
	"greenleaf/internal/models"
	"greenleaf/internal/queue"
)

// ErrConcurrentUpdate is returned when a lead kept changing under a
// transition for every attempt.
var ErrConcurrentUpdate = errors.New("lead was modified concurrently")

const maxTransitionAttempts = 3

// LeadStore persists leads. GetByID returns *models.NotFoundError for a
// missing id. UpdateStatus only writes when the stored status still
// equals from and reports whether a row changed.
type LeadStore interface {
	Create(ctx context.Context, lead *models.Lead) error
	GetByID(ctx context.Context, id int64) (*models.Lead, error)
	List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error)
	UpdateStatus(ctx context.Context, id int64, from, to models.LeadStatus, completedAt *time.Time) (bool, error)
	Delete(ctx context.Context, ids ...int64) (int64, error)
}

// Notifier pushes a view to human operators. Delivery is best-effort.
type Notifier interface {
	Push(ctx context.Context, v menu.View) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev queue.LeadEvent) error
}

type CleanupResult struct {
	Deleted int `json:"deleted"`
}

// LeadService owns lead status transitions and the retention policy for
// completed leads. It is the only writer of status and completed_at.
type LeadService struct {
	Repo         LeadStore
	Notifier     Notifier
	Events       EventPublisher
	alerts       menu.Formatter
	maxCompleted int
	now          func() time.Time
}

type LeadServiceOption func(*LeadService)

func WithNotifier(n Notifier) LeadServiceOption {
	return func(s *LeadService) { s.Notifier = n }
}

func WithEvents(p EventPublisher) LeadServiceOption {
	return func(s *LeadService) { s.Events = p }
}

func WithAlerts(f menu.Formatter) LeadServiceOption {
	return func(s *LeadService) { s.alerts = f }
}

func WithClock(now func() time.Time) LeadServiceOption {
	return func(s *LeadService) { s.now = now }
}

func NewLeadService(repo LeadStore, maxCompleted int, opts ...LeadServiceOption) *LeadService {
	s := &LeadService{
		Repo:         repo,
		alerts:       menu.NewFormatter(menu.DefaultLabels()),
		maxCompleted: maxCompleted,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxCompleted <= 0 {
		s.maxCompleted = 10
	}
	return s
}

func (s *LeadService) MaxCompletedRetained() int { return s.maxCompleted }

// Create проверяет форму, сохраняет заявку и уведомляет операторов.
// При ошибке валидации ничего не сохраняется и не отправляется.
func (s *LeadService) Create(ctx context.Context, kind models.LeadKind, in models.LeadInput) (*models.Lead, error) {
	if errs := ValidateLeadInput(kind, in); len(errs) > 0 {
		return nil, errs
	}

	lead := newLead(kind, in)
	lead.CreatedAt = s.now()
	if err := s.Repo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}

	logger.Info(ctx, "lead created", "lead_id", lead.ID, "kind", lead.Kind)
	metrics.RecordLeadCreated(string(lead.Kind))
	s.publish(ctx, queue.EventCreated, lead)
	s.notify(ctx, s.alerts.NewLeadAlert(lead), lead.ID)
	return lead, nil
}

func (s *LeadService) GetByID(ctx context.Context, id int64) (*models.Lead, error) {
	lead, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr("get lead", err)
	}
	return lead, nil
}

// MarkViewed moves a new lead to viewed. Viewed and completed leads are
// returned unchanged.
func (s *LeadService) MarkViewed(ctx context.Context, id int64) (*models.Lead, error) {
	return s.transition(ctx, id, models.StatusViewed)
}

// MarkCompleted completes the lead from any status, refreshing
// completed_at on repeat calls, then applies the retention policy.
func (s *LeadService) MarkCompleted(ctx context.Context, id int64) (*models.Lead, error) {
	lead, err := s.transition(ctx, id, models.StatusCompleted)
	if err != nil {
		return nil, err
	}
	s.Cleanup(ctx)
	return lead, nil
}

// transition перечитывает заявку и повторяет, если статус успели
// поменять между чтением и условной записью.
func (s *LeadService) transition(ctx context.Context, id int64, to models.LeadStatus) (*models.Lead, error) {
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		lead, err := s.Repo.GetByID(ctx, id)
		if err != nil {
			return nil, wrapStoreErr("mark "+string(to), err)
		}
		if !canTransition(lead.Status, to) {
			return lead, nil
		}

		var completedAt *time.Time
		if to == models.StatusCompleted {
			at := s.now()
			completedAt = &at
		}

		ok, err := s.Repo.UpdateStatus(ctx, id, lead.Status, to, completedAt)
		if err != nil {
			return nil, fmt.Errorf("mark %s: %w", to, err)
		}
		if !ok {
			logger.Debug(ctx, "lead changed during transition, retrying", "lead_id", id, "to", to, "attempt", attempt+1)
			continue
		}

		lead.Status = to
		lead.CompletedAt = completedAt
		metrics.RecordTransition(string(to))
		if to == models.StatusCompleted {
			s.publish(ctx, queue.EventCompleted, lead)
		} else {
			s.publish(ctx, queue.EventViewed, lead)
		}
		return lead, nil
	}
	return nil, fmt.Errorf("mark %s lead %d: %w", to, id, ErrConcurrentUpdate)
}

// Cleanup удаляет выполненные заявки сверх maxCompleted самых свежих
// по completed_at. Ошибки хранилища только логируются.
func (s *LeadService) Cleanup(ctx context.Context) CleanupResult {
	excess, err := s.Repo.List(ctx, models.LeadFilter{
		Statuses: []models.LeadStatus{models.StatusCompleted},
		OrderBy:  models.OrderCompletedDesc,
		Offset:   s.maxCompleted,
	})
	if err != nil {
		logger.Error(ctx, "cleanup: list completed leads failed", "error", err)
		return CleanupResult{}
	}
	if len(excess) == 0 {
		return CleanupResult{}
	}

	ids := make([]int64, 0, len(excess))
	for _, l := range excess {
		ids = append(ids, l.ID)
	}
	n, err := s.Repo.Delete(ctx, ids...)
	if err != nil {
		logger.Error(ctx, "cleanup: delete completed leads failed", "error", err, "ids", ids)
		return CleanupResult{}
	}

	logger.Info(ctx, "cleanup: completed leads purged", "deleted", n, "retained", s.maxCompleted)
	metrics.RecordPurged(int(n))
	for _, id := range ids {
		s.publishEvent(ctx, queue.LeadEvent{Type: queue.EventPurged, LeadID: id, OccurredAt: s.now()})
	}
	return CleanupResult{Deleted: int(n)}
}

// ListActive returns new and viewed leads, newest first. An empty kind
// lists every kind.
func (s *LeadService) ListActive(ctx context.Context, kind models.LeadKind) ([]models.Lead, error) {
	leads, err := s.Repo.List(ctx, models.LeadFilter{
		Statuses: models.ActiveStatuses,
		Kind:     kind,
		OrderBy:  models.OrderCreatedDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("list active leads: %w", err)
	}
	return leads, nil
}

// ListHistory returns up to limit completed leads, most recently
// completed first. limit <= 0 means the retention size.
func (s *LeadService) ListHistory(ctx context.Context, limit int) ([]models.Lead, error) {
	if limit <= 0 {
		limit = s.maxCompleted
	}
	leads, err := s.Repo.List(ctx, models.LeadFilter{
		Statuses: []models.LeadStatus{models.StatusCompleted},
		OrderBy:  models.OrderCompletedDesc,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list lead history: %w", err)
	}
	return leads, nil
}

func (s *LeadService) notify(ctx context.Context, v menu.View, leadID int64) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Push(ctx, v); err != nil {
		logger.Warn(ctx, "notify operators failed", "lead_id", leadID, "error", err)
	}
}

func (s *LeadService) publish(ctx context.Context, typ queue.EventType, lead *models.Lead) {
	cp := *lead
	s.publishEvent(ctx, queue.LeadEvent{Type: typ, LeadID: lead.ID, Lead: &cp, OccurredAt: s.now()})
}

func (s *LeadService) publishEvent(ctx context.Context, ev queue.LeadEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, ev); err != nil {
		metrics.RecordNotifyError("amqp")
		logger.Warn(ctx, "publish lead event failed", "lead_id", ev.LeadID, "type", ev.Type, "error", err)
	}
}

// wrapStoreErr: not found оставляем узнаваемым, остальное оборачиваем.
func wrapStoreErr(op string, err error) error {
	if models.IsNotFound(err) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
