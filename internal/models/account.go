package models

import (
	"time"
)

type Account struct {
	ID          string    `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	Email       string    `json:"email" db:"email"`
	Name        string    `json:"name" db:"name"`
	IsSuperuser bool      `json:"is_superuser" db:"is_superuser"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type RoleKind string

const (
	RoleSuperuser  RoleKind = "superuser"
	RoleTeacher    RoleKind = "teacher"
	RoleStudent    RoleKind = "student"
	RoleUnassigned RoleKind = "unassigned"
)

// Role is the resolved capability of an account, computed once per
// request and passed explicitly into policy and service calls. Exactly
// one of TeacherID/StudentID is set for the teacher/student kinds.
type Role struct {
	Kind      RoleKind `json:"kind"`
	AccountID string   `json:"account_id"`
	TeacherID string   `json:"teacher_id,omitempty"`
	StudentID string   `json:"student_id,omitempty"`
}

func (r Role) IsSuperuser() bool {
	return r.Kind == RoleSuperuser
}

func (r Role) IsTeacher() bool {
	return r.Kind == RoleTeacher
}

func (r Role) IsStudent() bool {
	return r.Kind == RoleStudent
}
