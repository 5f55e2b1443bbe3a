package services

import (
	"net/mail"
	"strings"

	"greenleaf/internal/models"
)

// ValidateLeadInput проверяет обязательные поля формы.
func ValidateLeadInput(kind models.LeadKind, in models.LeadInput) models.ValidationErrors {
	var errs models.ValidationErrors

	if !kind.Valid() {
		errs = append(errs, models.ValidationError{Field: "kind", Message: "is unknown"})
		return errs
	}

	if strings.TrimSpace(in.Phone) == "" {
		errs = append(errs, models.ValidationError{Field: "phone", Message: "is required"})
	}

	if kind == models.KindPartner {
		if strings.TrimSpace(in.FirstName) == "" {
			errs = append(errs, models.ValidationError{Field: "firstName", Message: "is required"})
		}
		if strings.TrimSpace(in.LastName) == "" {
			errs = append(errs, models.ValidationError{Field: "lastName", Message: "is required"})
		}
		if email := strings.TrimSpace(in.Email); email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				errs = append(errs, models.ValidationError{Field: "email", Message: "is invalid"})
			}
		}
	}

	return errs
}

// newLead собирает ещё не сохранённую заявку из проверенных данных.
func newLead(kind models.LeadKind, in models.LeadInput) *models.Lead {
	lead := &models.Lead{
		Kind:   kind,
		Phone:  strings.TrimSpace(in.Phone),
		Status: models.StatusNew,
	}
	if kind == models.KindPartner {
		lead.Partner = &models.PartnerProfile{
			FirstName:  strings.TrimSpace(in.FirstName),
			LastName:   strings.TrimSpace(in.LastName),
			MiddleName: strings.TrimSpace(in.MiddleName),
			Email:      strings.TrimSpace(in.Email),
			Goal:       normalizeGoal(in.Goal),
		}
	}
	return lead
}

// normalizeGoal folds the two known goals to their canonical value and
// keeps anything else as free text.
func normalizeGoal(goal string) string {
	goal = strings.TrimSpace(goal)
	switch strings.ToLower(goal) {
	case models.GoalBusiness:
		return models.GoalBusiness
	case models.GoalDiscount:
		return models.GoalDiscount
	}
	return goal
}
