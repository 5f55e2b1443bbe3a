package menu

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"time"

	"greenleaf/internal/models"
)

// Lifecycle is the part of the lead service the menu reads and drives.
type Lifecycle interface {
	ListActive(ctx context.Context, kind models.LeadKind) ([]models.Lead, error)
	ListHistory(ctx context.Context, limit int) ([]models.Lead, error)
	GetByID(ctx context.Context, id int64) (*models.Lead, error)
	MarkViewed(ctx context.Context, id int64) (*models.Lead, error)
	MarkCompleted(ctx context.Context, id int64) (*models.Lead, error)
}

const timeLayout = "02.01.2006 15:04"

// Formatter renders lead fields and alerts; it needs no lead storage.
type Formatter struct {
	Labels Labels
	Loc    *time.Location
}

func NewFormatter(labels Labels) Formatter {
	return Formatter{Labels: labels, Loc: time.Local}
}

// MaxListRows ограничивает число кнопок-заявок в списке; показываются новые.
const MaxListRows = 30

// Builder projects lead state into menu views. It never writes lead data
// itself except through Lifecycle on detail entry and completion.
type Builder struct {
	Formatter
	leads Lifecycle
}

func NewBuilder(leads Lifecycle, labels Labels) *Builder {
	return &Builder{Formatter: NewFormatter(labels), leads: leads}
}

// WithLocation задаёт часовой пояс для дат.
func (b *Builder) WithLocation(loc *time.Location) *Builder {
	if loc != nil {
		b.Loc = loc
	}
	return b
}

// Handle applies ev and renders the resulting screen.
//
//	MainMenu        OpenTypeList(k)   -> TypeList(k)
//	MainMenu        OpenHistory       -> History
//	TypeList(k)     OpenDetail(id)    -> LeadDetail(id)
//	TypeList(k)     Back              -> MainMenu
//	LeadDetail(id)  MarkCompleted(id) -> TypeList(kind of id)
//	LeadDetail(id)  Back              -> TypeList(kind of id)
//	History         Back              -> MainMenu
//
// A lead that disappeared in the meantime yields MainMenu with a notice.
func (b *Builder) Handle(ctx context.Context, ev Event) (View, error) {
	switch ev.Type {
	case EventOpenTypeList, EventRefresh:
		return b.Render(ctx, TypeList(ev.Kind))
	case EventOpenHistory:
		return b.Render(ctx, History())
	case EventOpenDetail:
		return b.Render(ctx, LeadDetail(ev.LeadID))
	case EventMarkCompleted:
		lead, err := b.leads.MarkCompleted(ctx, ev.LeadID)
		if err != nil {
			return b.recover(ctx, err)
		}
		v, err := b.Render(ctx, TypeList(lead.Kind))
		v.Notice = fmt.Sprintf("%s (#%d)", b.Labels.Completed, lead.ID)
		return v, err
	case EventBack:
		return b.back(ctx, ev.From)
	default:
		return b.Render(ctx, MainMenu())
	}
}

func (b *Builder) back(ctx context.Context, from State) (View, error) {
	switch from.Screen {
	case ScreenLeadDetail:
		lead, err := b.leads.GetByID(ctx, from.LeadID)
		if err != nil {
			return b.recover(ctx, err)
		}
		return b.Render(ctx, TypeList(lead.Kind))
	default:
		return b.Render(ctx, MainMenu())
	}
}

// recover turns a not-found error into MainMenu with a notice and passes
// every other error through.
func (b *Builder) recover(ctx context.Context, err error) (View, error) {
	if !models.IsNotFound(err) {
		return View{}, err
	}
	v, rerr := b.Render(ctx, MainMenu())
	v.Notice = b.Labels.NotFound
	return v, rerr
}

// Render рисует экран st. Открытие карточки отмечает заявку просмотренной.
func (b *Builder) Render(ctx context.Context, st State) (View, error) {
	switch st.Screen {
	case ScreenTypeList:
		return b.typeList(ctx, st.Kind)
	case ScreenLeadDetail:
		return b.leadDetail(ctx, st.LeadID)
	case ScreenHistory:
		return b.history(ctx)
	default:
		return b.mainMenu(ctx)
	}
}

func (b *Builder) mainMenu(ctx context.Context) (View, error) {
	v := View{State: MainMenu(), Title: b.Labels.MainTitle}
	for _, k := range models.LeadKinds {
		active, err := b.leads.ListActive(ctx, k)
		if err != nil {
			return View{}, err
		}
		label := fmt.Sprintf("%s (%d)", b.Labels.Kind(k), len(active))
		v.Lines = append(v.Lines, html.EscapeString(label))
		v.Buttons = append(v.Buttons, []Button{{Label: label, Event: OpenTypeList(k)}})
	}
	v.Buttons = append(v.Buttons, []Button{{Label: b.Labels.History, Event: OpenHistory()}})
	return v, nil
}

func (b *Builder) typeList(ctx context.Context, k models.LeadKind) (View, error) {
	leads, err := b.leads.ListActive(ctx, k)
	if err != nil {
		return View{}, err
	}
	st := TypeList(k)
	v := View{State: st, Title: b.Labels.Kind(k)}
	if len(leads) == 0 {
		v.Lines = []string{html.EscapeString(b.Labels.NoActive)}
	}
	// Telegram не принимает слишком большие клавиатуры
	if len(leads) > MaxListRows {
		v.Lines = []string{html.EscapeString(fmt.Sprintf("%s: %d / %d", b.Labels.Shown, MaxListRows, len(leads)))}
		leads = leads[:MaxListRows]
	}
	for i := range leads {
		lead := &leads[i]
		label := fmt.Sprintf("%s #%d %s", statusMark(lead.Status), lead.ID, DisplayName(lead))
		v.Buttons = append(v.Buttons, []Button{{Label: label, Event: OpenDetail(lead.ID)}})
	}
	v.Buttons = append(v.Buttons, []Button{
		{Label: b.Labels.Refresh, Event: Refresh(k)},
		{Label: b.Labels.Back, Event: Back(st)},
	})
	return v, nil
}

func (b *Builder) leadDetail(ctx context.Context, id int64) (View, error) {
	lead, err := b.leads.MarkViewed(ctx, id)
	if err != nil {
		return b.recover(ctx, err)
	}
	st := LeadDetail(id)
	v := View{
		State: st,
		Title: fmt.Sprintf("%s #%d", b.Labels.Kind(lead.Kind), lead.ID),
		Lines: b.Fields(lead),
	}
	if lead.Status != models.StatusCompleted {
		v.Buttons = append(v.Buttons, []Button{{Label: b.Labels.MarkCompleted, Event: MarkCompleted(lead.ID)}})
	}
	v.Buttons = append(v.Buttons, []Button{{Label: b.Labels.Back, Event: Back(st)}})
	return v, nil
}

func (b *Builder) history(ctx context.Context) (View, error) {
	leads, err := b.leads.ListHistory(ctx, 0)
	if err != nil {
		return View{}, err
	}
	v := View{State: History(), Title: b.Labels.History}
	if len(leads) == 0 {
		v.Lines = []string{html.EscapeString(b.Labels.NoHistory)}
	}
	for i := range leads {
		lead := &leads[i]
		line := fmt.Sprintf("#%d %s · %s", lead.ID, b.Labels.Kind(lead.Kind), DisplayName(lead))
		if lead.CompletedAt != nil {
			line += " · " + b.Format(*lead.CompletedAt)
		}
		v.Lines = append(v.Lines, html.EscapeString(line))
	}
	v.Buttons = [][]Button{{{Label: b.Labels.Back, Event: Back(History())}}}
	return v, nil
}

// NewLeadAlert: сообщение операторам о новой заявке.
func (f Formatter) NewLeadAlert(lead *models.Lead) View {
	title := f.Labels.NewCallback
	if lead.Kind == models.KindPartner {
		title = f.Labels.NewPartner
	}
	return View{
		State: LeadDetail(lead.ID),
		Title: title,
		Lines: f.Fields(lead),
		Buttons: [][]Button{{
			{Label: f.Labels.MarkCompleted, Event: MarkCompleted(lead.ID)},
			{Label: f.Labels.Open, Event: OpenDetail(lead.ID)},
		}},
	}
}

// Fields renders every attribute relevant to the lead kind as escaped HTML.
func (f Formatter) Fields(lead *models.Lead) []string {
	var lines []string
	add := func(name, value string, code bool) {
		if value == "" {
			return
		}
		value = html.EscapeString(value)
		if code {
			value = "<code>" + value + "</code>"
		}
		lines = append(lines, html.EscapeString(name)+": "+value)
	}

	switch lead.Kind {
	case models.KindPartner:
		p := lead.Partner
		if p == nil {
			p = &models.PartnerProfile{}
		}
		add("ФИО", p.FullName(), false)
		add("Телефон", lead.Phone, true)
		add("Email", p.Email, true)
		add("Цель", f.Labels.Goal(p.Goal), false)
	case models.KindCallback:
		add("Телефон", lead.Phone, true)
	}

	add("Статус", f.Labels.Status(lead.Status), false)
	add("Создана", f.Format(lead.CreatedAt), false)
	if lead.CompletedAt != nil {
		add("Выполнена", f.Format(*lead.CompletedAt), false)
	}
	add("ID", strconv.FormatInt(lead.ID, 10), false)
	return lines
}

func (f Formatter) Format(t time.Time) string {
	loc := f.Loc
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(timeLayout)
}

func statusMark(s models.LeadStatus) string {
	switch s {
	case models.StatusNew:
		return "🆕"
	case models.StatusViewed:
		return "👀"
	}
	return "✅"
}
