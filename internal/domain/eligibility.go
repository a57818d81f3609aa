package domain

// Matches reports an exact match on all three fields.
func (g Group) Matches(student Student) bool {
	return g.Department == student.Department &&
		g.Year == student.Year &&
		g.Section == student.Section
}

// IsEligible reports whether the student belongs to one of the quiz's allowed groups.
// A quiz with no allowed groups is a draft nobody can take.
func IsEligible(student Student, quiz Quiz) bool {
	return MatchesAny(quiz.AllowedGroups, student)
}

// MatchesAny is the union of the groups' exact matches.
func MatchesAny(groups []Group, student Student) bool {
	for _, g := range groups {
		if g.Matches(student) {
			return true
		}
	}
	return false
}
