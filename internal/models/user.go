package models

import "time"

// Role is the single role attribute carried by every account.
// The platform has no separate staff/student tables; authorization is a
// plain field comparison on this value.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Subscription describes how a student pays for and attends lessons.
type Subscription string

const (
	SubscriptionGroup           Subscription = "group"
	SubscriptionIndividual      Subscription = "individual"
	SubscriptionPersonal        Subscription = "personal"
	SubscriptionPersonalPremium Subscription = "personal_premium"
)

// User represents one account: a teacher, a student, or an admin.
type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Email          string `gorm:"uniqueIndex;not null" json:"email"`
	Username       string `gorm:"uniqueIndex;not null" json:"username"`
	PhoneNumber    string `gorm:"uniqueIndex" json:"phone_number"`
	HashedPassword string `gorm:"not null" json:"-"`
	Role           Role   `gorm:"type:text;not null;index" json:"role"`

	ProfileImage string `json:"profile_image,omitempty"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	// Student fields. Null for staff accounts.
	Age              *int          `json:"age,omitempty"`
	SubscriptionType *Subscription `gorm:"type:text" json:"subscription_type,omitempty"`
	Level            *string       `json:"level,omitempty"`
	LessonBalance    *int          `json:"lesson_balance,omitempty"`
	ClassroomID      *uint         `json:"classroom_id,omitempty"`

	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsStaff reports whether the account may manage classrooms, lessons and
// calls. Only these roles may end a call for everyone.
func (u *User) IsStaff() bool {
	return u.Role == RoleTeacher || u.Role == RoleAdmin
}
