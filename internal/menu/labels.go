package menu

import (
	"strings"

	"greenleaf/internal/models"
)

// Labels: тексты для операторов. Пустые поля в конфиге оставляют
// значение по умолчанию.
type Labels struct {
	MainTitle     string `yaml:"main_title"`
	CallbackKind  string `yaml:"callback_kind"`
	PartnerKind   string `yaml:"partner_kind"`
	History       string `yaml:"history"`
	Back          string `yaml:"back"`
	Refresh       string `yaml:"refresh"`
	MarkCompleted string `yaml:"mark_completed"`
	Open          string `yaml:"open"`
	NoActive      string `yaml:"no_active"`
	Shown         string `yaml:"shown"`
	NoHistory     string `yaml:"no_history"`
	NotFound      string `yaml:"not_found"`
	Completed     string `yaml:"completed"`
	NewCallback   string `yaml:"new_callback"`
	NewPartner    string `yaml:"new_partner"`
	StatusNew     string `yaml:"status_new"`
	StatusViewed  string `yaml:"status_viewed"`
	StatusDone    string `yaml:"status_done"`
	GoalBusiness  string `yaml:"goal_business"`
	GoalDiscount  string `yaml:"goal_discount"`
	AccessDenied  string `yaml:"access_denied"`
	UnknownAction string `yaml:"unknown_action"`
	Failure       string `yaml:"failure"`
}

func DefaultLabels() Labels {
	return Labels{
		MainTitle:     "📋 Заявки с сайта",
		CallbackKind:  "📞 Обратный звонок",
		PartnerKind:   "🤝 Партнёрство",
		History:       "🗂 История",
		Back:          "⬅️ Назад",
		Refresh:       "🔄 Обновить",
		MarkCompleted: "✅ Выполнено",
		Open:          "📋 Открыть",
		NoActive:      "Нет активных заявок",
		Shown:         "Показаны новые",
		NoHistory:     "История пуста",
		NotFound:      "Заявка не найдена или уже удалена",
		Completed:     "Заявка отмечена выполненной",
		NewCallback:   "📞 Новая заявка с сайта",
		NewPartner:    "🤝 Новая заявка на партнёрство",
		StatusNew:     "🆕 новая",
		StatusViewed:  "👀 просмотрена",
		StatusDone:    "✅ выполнена",
		GoalBusiness:  "Бизнес",
		GoalDiscount:  "Скидка",
		AccessDenied:  "Этот чат не подключён к заявкам",
		UnknownAction: "Неизвестное действие, откройте меню заново: /menu",
		Failure:       "Не удалось выполнить действие, попробуйте позже",
	}
}

// Merge returns l with every non-empty field of o applied on top.
func (l Labels) Merge(o Labels) Labels {
	pick := func(dst *string, src string) {
		if strings.TrimSpace(src) != "" {
			*dst = src
		}
	}
	pick(&l.MainTitle, o.MainTitle)
	pick(&l.CallbackKind, o.CallbackKind)
	pick(&l.PartnerKind, o.PartnerKind)
	pick(&l.History, o.History)
	pick(&l.Back, o.Back)
	pick(&l.Refresh, o.Refresh)
	pick(&l.MarkCompleted, o.MarkCompleted)
	pick(&l.Open, o.Open)
	pick(&l.NoActive, o.NoActive)
	pick(&l.Shown, o.Shown)
	pick(&l.NoHistory, o.NoHistory)
	pick(&l.NotFound, o.NotFound)
	pick(&l.Completed, o.Completed)
	pick(&l.NewCallback, o.NewCallback)
	pick(&l.NewPartner, o.NewPartner)
	pick(&l.StatusNew, o.StatusNew)
	pick(&l.StatusViewed, o.StatusViewed)
	pick(&l.StatusDone, o.StatusDone)
	pick(&l.AccessDenied, o.AccessDenied)
	pick(&l.UnknownAction, o.UnknownAction)
	pick(&l.Failure, o.Failure)
	pick(&l.GoalBusiness, o.GoalBusiness)
	pick(&l.GoalDiscount, o.GoalDiscount)
	return l
}

func (l Labels) Kind(k models.LeadKind) string {
	switch k {
	case models.KindCallback:
		return l.CallbackKind
	case models.KindPartner:
		return l.PartnerKind
	}
	return string(k)
}

func (l Labels) Status(s models.LeadStatus) string {
	switch s {
	case models.StatusNew:
		return l.StatusNew
	case models.StatusViewed:
		return l.StatusViewed
	case models.StatusCompleted:
		return l.StatusDone
	}
	return string(s)
}

func (l Labels) Goal(goal string) string {
	switch goal {
	case models.GoalBusiness:
		return l.GoalBusiness
	case models.GoalDiscount:
		return l.GoalDiscount
	}
	return goal
}

// DisplayName: подпись заявки в списке.
func DisplayName(lead *models.Lead) string {
	switch lead.Kind {
	case models.KindPartner:
		parts := make([]string, 0, 3)
		if lead.Partner != nil {
			for _, s := range []string{lead.Partner.LastName, lead.Partner.FirstName} {
				if s = strings.TrimSpace(s); s != "" {
					parts = append(parts, s)
				}
			}
		}
		if lead.Phone != "" {
			parts = append(parts, lead.Phone)
		}
		return strings.Join(parts, " ")
	case models.KindCallback:
		return lead.Phone
	}
	return lead.Phone
}
