package handlers

import (
	"context"
	"errors"
	"sort"
	"time"

	"greenleaf/internal/menu"
	"greenleaf/internal/models"
	"greenleaf/internal/services"
)

// fakeLeads is a minimal in-memory lifecycle without retention.
type fakeLeads struct {
	leads    map[int64]*models.Lead
	nextID   int64
	created  []models.LeadInput
	err      error
	cleanups int
}

func newFakeLeads(leads ...models.Lead) *fakeLeads {
	f := &fakeLeads{leads: map[int64]*models.Lead{}}
	for i := range leads {
		l := leads[i]
		f.leads[l.ID] = &l
		if l.ID > f.nextID {
			f.nextID = l.ID
		}
	}
	return f
}

func (f *fakeLeads) Create(_ context.Context, kind models.LeadKind, in models.LeadInput) (*models.Lead, error) {
	if errs := services.ValidateLeadInput(kind, in); len(errs) > 0 {
		return nil, errs
	}
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	l := &models.Lead{ID: f.nextID, Kind: kind, Phone: in.Phone, Status: models.StatusNew, CreatedAt: time.Now()}
	f.leads[l.ID] = l
	f.created = append(f.created, in)
	return l, nil
}

func (f *fakeLeads) GetByID(_ context.Context, id int64) (*models.Lead, error) {
	if f.err != nil {
		return nil, f.err
	}
	l, ok := f.leads[id]
	if !ok {
		return nil, &models.NotFoundError{ID: id}
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLeads) MarkViewed(ctx context.Context, id int64) (*models.Lead, error) {
	l, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status == models.StatusNew {
		f.leads[id].Status = models.StatusViewed
	}
	return f.GetByID(ctx, id)
}

func (f *fakeLeads) MarkCompleted(ctx context.Context, id int64) (*models.Lead, error) {
	if _, err := f.GetByID(ctx, id); err != nil {
		return nil, err
	}
	now := time.Now()
	f.leads[id].Status = models.StatusCompleted
	f.leads[id].CompletedAt = &now
	return f.GetByID(ctx, id)
}

func (f *fakeLeads) ListActive(_ context.Context, kind models.LeadKind) ([]models.Lead, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Lead
	for _, l := range f.leads {
		if l.Status.Active() && (kind == "" || l.Kind == kind) {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeLeads) ListHistory(_ context.Context, limit int) ([]models.Lead, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Lead
	for _, l := range f.leads {
		if l.Status == models.StatusCompleted {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(*out[j].CompletedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLeads) Cleanup(context.Context) services.CleanupResult {
	f.cleanups++
	return services.CleanupResult{Deleted: 0}
}

var errStorage = errors.New("storage unavailable")

type sentView struct {
	chatID    int64
	messageID int
	view      menu.View
}

type fakeTransport struct {
	sent    []sentView
	edited  []sentView
	answers map[string]string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{answers: map[string]string{}}
}

func (t *fakeTransport) SendView(chatID int64, v menu.View) error {
	t.sent = append(t.sent, sentView{chatID: chatID, view: v})
	return nil
}

func (t *fakeTransport) EditView(chatID int64, messageID int, v menu.View) error {
	t.edited = append(t.edited, sentView{chatID: chatID, messageID: messageID, view: v})
	return nil
}

func (t *fakeTransport) AnswerCallback(id, text string) error {
	t.answers[id] = text
	return nil
}
