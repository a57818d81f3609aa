package domain

import (
	"fmt"
	"strings"
)

// Role is the tagged variant of who is acting.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleFaculty Role = "faculty"
	RoleStudent Role = "student"
)

// ParseRole accepts role names case-insensitively.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleFaculty:
		return RoleFaculty, nil
	case RoleStudent:
		return RoleStudent, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrForbidden, raw)
}

// View is the screen a role lands on.
type View string

const (
	ViewAdminDashboard   View = "admin-dashboard"
	ViewFacultyDashboard View = "faculty-dashboard"
	ViewStudentDashboard View = "student-dashboard"
)

// HomeView selects the landing view for a role.
func (r Role) HomeView() View {
	switch r {
	case RoleAdmin:
		return ViewAdminDashboard
	case RoleFaculty:
		return ViewFacultyDashboard
	default:
		return ViewStudentDashboard
	}
}

// Staff reports whether the role authors quizzes and sees every quiz.
func (r Role) Staff() bool {
	return r == RoleAdmin || r == RoleFaculty
}

// Principal is the caller threaded explicitly through every core call.
// Student is set only for RoleStudent.
type Principal struct {
	UserID  string
	Role    Role
	Student *Student
}

// StaffPrincipal builds a principal for an admin or faculty member.
func StaffPrincipal(userID string, role Role) Principal {
	return Principal{UserID: userID, Role: role}
}

// StudentPrincipal builds a principal for a resolved roster student.
func StudentPrincipal(student Student) Principal {
	s := student
	return Principal{UserID: student.ID, Role: RoleStudent, Student: &s}
}

// CanView reports whether the quiz shows up in the principal's listings.
func (p Principal) CanView(quiz Quiz) bool {
	if p.Role.Staff() {
		return true
	}
	return p.Student != nil && IsEligible(*p.Student, quiz)
}

// AttemptingStudent returns the student for attempt operations, or an error if
// the principal cannot take the quiz.
func (p Principal) AttemptingStudent(quiz Quiz) (Student, error) {
	if p.Role != RoleStudent || p.Student == nil {
		return Student{}, fmt.Errorf("%w: only students attempt quizzes", ErrNotEligible)
	}
	if !IsEligible(*p.Student, quiz) {
		return Student{}, ErrNotEligible
	}
	return *p.Student, nil
}
