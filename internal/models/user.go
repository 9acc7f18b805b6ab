package models

import "time"

// Platform roles as carried in JWT claims and RBAC checks.
const (
	RoleInstructor = "instructor"
	RoleLearner    = "learner"
	RoleOperator   = "operator"
)

// User represents any platform account: learner, instructor or operator.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:32;not null;default:learner" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
