package entity

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleStudent       UserRole = "student"
	RoleTeacher       UserRole = "teacher"
	RoleAdministrator UserRole = "administrator"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdministrator:
		return true
	}
	return false
}

type User struct {
	ID           string   `json:"id" firestore:"id"`
	Email        string   `json:"email" firestore:"email"`
	Role         UserRole `json:"role" firestore:"role"`
	UniversityID string   `json:"university_id,omitempty" firestore:"universityId,omitempty"`

	FirstName string `json:"first_name,omitempty" firestore:"firstName,omitempty"`
	LastName  string `json:"last_name,omitempty" firestore:"lastName,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty" firestore:"avatarUrl,omitempty"`

	StudentID   string `json:"student_id,omitempty" firestore:"studentId,omitempty"`
	Department  string `json:"department,omitempty" firestore:"department,omitempty"`
	YearOfStudy int    `json:"year_of_study,omitempty" firestore:"yearOfStudy,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// DisplayName joins first and last name, falling back to the email local part.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}
