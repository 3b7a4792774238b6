// Package policy holds the exam access rules as pure predicates, free
// of any storage dependency.
package policy

import (
	"time"

	"github.com/zsbati/exam-service/internal/models"
)

// CanStudentView reports whether the exam is reachable for the student
// at all: matching grade and an owning teacher in the student's set.
// Orphaned exams (no owner) are reachable by nobody. Timing is not
// considered; a visible exam may still be currently un-takeable.
func CanStudentView(student *models.Student, exam *models.Exam) bool {
	if student == nil || exam == nil {
		return false
	}
	if exam.Grade != student.Grade {
		return false
	}
	return exam.TeacherID != "" && student.HasTeacher(exam.TeacherID)
}

// CanStudentAccess reports whether the student may take the exam at
// the given instant: reachable per CanStudentView, and inside the
// timing window for timed exams, with inclusive bounds and absent
// bounds treated as unbounded on that side.
func CanStudentAccess(student *models.Student, exam *models.Exam, now time.Time) bool {
	if !CanStudentView(student, exam) {
		return false
	}
	if !exam.IsTimed {
		return true
	}
	if exam.StartAt != nil && now.Before(*exam.StartAt) {
		return false
	}
	if exam.EndAt != nil && now.After(*exam.EndAt) {
		return false
	}
	return true
}

// CanTeacherAdminister reports whether the teacher owns the exam. An
// orphaned exam (no owner) is administered by nobody but a superuser.
func CanTeacherAdminister(teacher *models.Teacher, exam *models.Exam) bool {
	if teacher == nil || exam == nil {
		return false
	}
	return exam.TeacherID != "" && exam.TeacherID == teacher.ID
}

// RoleCanAdminister folds the superuser bypass in for callers holding a
// resolved role rather than a teacher record.
func RoleCanAdminister(role models.Role, exam *models.Exam) bool {
	if role.IsSuperuser() {
		return true
	}
	if !role.IsTeacher() || exam == nil {
		return false
	}
	return exam.TeacherID != "" && exam.TeacherID == role.TeacherID
}
