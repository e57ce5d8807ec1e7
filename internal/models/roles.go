// internal/models/roles.go

package models

// UserRole представляє роль користувача в системі
type UserRole string

// Константи для ролей
const (
	RoleUser    UserRole = "user"
	RoleCitizen UserRole = "citizen"
	RoleWorker  UserRole = "worker"
	RoleAdmin   UserRole = "admin"
)

// IsValid перевіряє чи роль валідна
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleCitizen, RoleWorker, RoleAdmin:
		return true
	}
	return false
}

// IsHigherOrEqual перевіряє чи поточна роль вища або рівна цільовій
func (r UserRole) IsHigherOrEqual(target UserRole) bool {
	roleHierarchy := map[UserRole]int{
		RoleUser:    0,
		RoleCitizen: 0,
		RoleWorker:  1,
		RoleAdmin:   2,
	}

	currentLevel, exists1 := roleHierarchy[r]
	targetLevel, exists2 := roleHierarchy[target]

	if !exists1 || !exists2 {
		return false
	}

	return currentLevel >= targetLevel
}

// CanTriage - може змінювати поля та статус проблеми.
func (r UserRole) CanTriage() bool {
	return r == RoleAdmin || r == RoleWorker
}

// CanDelete - видаляти проблеми може тільки адміністратор.
func (r UserRole) CanDelete() bool {
	return r == RoleAdmin
}

// String повертає строкове представлення ролі
func (r UserRole) String() string {
	return string(r)
}

// FromString конвертує string в UserRole
func FromString(role string) (UserRole, bool) {
	r := UserRole(role)
	if r.IsValid() {
		return r, true
	}
	return "", false
}

// Principal - аутентифікований користувач, отриманий від зовнішнього провайдера.
type Principal struct {
	ID   string   `json:"id"`
	Role UserRole `json:"role"`
}
