// internal/models/lead.go
package models

import (
	"strings"
	"time"
)

// LeadKind distinguishes the intake form a lead came from.
type LeadKind string

const (
	KindCallback LeadKind = "callback"
	KindPartner  LeadKind = "partner"
)

// LeadKinds lists every kind in menu order.
var LeadKinds = []LeadKind{KindCallback, KindPartner}

func (k LeadKind) Valid() bool {
	return k == KindCallback || k == KindPartner
}

// LeadStatus is the lifecycle stage of a lead.
type LeadStatus string

const (
	StatusNew       LeadStatus = "new"
	StatusViewed    LeadStatus = "viewed"
	StatusCompleted LeadStatus = "completed"
)

// ActiveStatuses are the statuses shown in operator lists.
var ActiveStatuses = []LeadStatus{StatusNew, StatusViewed}

func (s LeadStatus) Active() bool {
	return s == StatusNew || s == StatusViewed
}

const (
	GoalBusiness = "business"
	GoalDiscount = "discount"
)

// PartnerProfile заполнен только у заявок на партнёрство.
type PartnerProfile struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	MiddleName string `json:"middle_name,omitempty"`
	Email      string `json:"email,omitempty"`
	Goal       string `json:"goal,omitempty"`
}

// FullName: фамилия, имя, отчество через пробел, пустые пропускаются.
func (p *PartnerProfile) FullName() string {
	if p == nil {
		return ""
	}
	parts := make([]string, 0, 3)
	for _, s := range []string{p.LastName, p.FirstName, p.MiddleName} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Lead represents a request submitted through one of the site forms.
type Lead struct {
	ID          int64           `json:"id"`
	Kind        LeadKind        `json:"kind"`
	Phone       string          `json:"phone"`
	Partner     *PartnerProfile `json:"partner,omitempty"`
	Status      LeadStatus      `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// LeadOrder selects the sort applied by LeadFilter.
type LeadOrder int

const (
	OrderCreatedDesc LeadOrder = iota
	OrderCompletedDesc
)

// LeadFilter: параметры выборки заявок.
// Limit = 0 означает без лимита.
type LeadFilter struct {
	Statuses []LeadStatus
	Kind     LeadKind
	OrderBy  LeadOrder
	Limit    int
	Offset   int
}

// LeadInput is the payload of both intake forms. The callback form only
// sends Phone.
type LeadInput struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	MiddleName string `json:"middleName"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Goal       string `json:"goal"`
}
