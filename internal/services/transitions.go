package services

import "fix-my-city/internal/models"

// TransitionPolicy решает, можно ли перевести проблему из статуса from в to.
type TransitionPolicy interface {
	Allow(from, to models.IssueStatus, role models.UserRole) bool
}

// PermissiveTransitions разрешает любой переход, ограничение только по роли.
type PermissiveTransitions struct{}

func (PermissiveTransitions) Allow(_, _ models.IssueStatus, _ models.UserRole) bool {
	return true
}

// TransitionTable разрешает только перечисленные переходы.
type TransitionTable map[models.IssueStatus][]models.IssueStatus

func (t TransitionTable) Allow(from, to models.IssueStatus, _ models.UserRole) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ForwardOnlyTransitions - статус движется только вперёд, решённую проблему можно вернуть в работу.
func ForwardOnlyTransitions() TransitionTable {
	return TransitionTable{
		models.StatusReported: {
			models.StatusUnderReview,
			models.StatusInProgress,
			models.StatusResolved,
			models.StatusClosed,
		},
		models.StatusUnderReview: {
			models.StatusInProgress,
			models.StatusResolved,
			models.StatusClosed,
		},
		models.StatusInProgress: {
			models.StatusResolved,
			models.StatusClosed,
		},
		models.StatusResolved: {
			models.StatusInProgress,
			models.StatusClosed,
		},
	}
}
