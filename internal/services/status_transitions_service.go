package services

import "greenleaf/internal/models"

// LeadTransitions: допустимые переходы статуса. Статус двигается только
// вперёд; completed -> completed обновляет completed_at.
var LeadTransitions = map[models.LeadStatus]map[models.LeadStatus]bool{
	models.StatusNew:       {models.StatusViewed: true, models.StatusCompleted: true},
	models.StatusViewed:    {models.StatusCompleted: true},
	models.StatusCompleted: {models.StatusCompleted: true},
}

func canTransition(current, to models.LeadStatus) bool {
	nexts, ok := LeadTransitions[current]
	if !ok {
		return false
	}
	return nexts[to]
}
