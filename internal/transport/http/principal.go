package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"college-quiz-service/internal/app"
	"college-quiz-service/internal/domain"
)

const (
	headerUserID = "X-User-ID"
	headerRole   = "X-User-Role"
)

var errUnauthenticated = errors.New("missing user identity")

// PrincipalResolver turns the identity headers set by the auth gateway into a
// domain.Principal. Students are looked up in the roster for their group.
type PrincipalResolver struct {
	roster app.Roster
}

func NewPrincipalResolver(roster app.Roster) *PrincipalResolver {
	return &PrincipalResolver{roster: roster}
}

func (p *PrincipalResolver) Resolve(r *http.Request) (domain.Principal, error) {
	return p.resolve(r.Context(), r.Header.Get(headerUserID), r.Header.Get(headerRole))
}

func (p *PrincipalResolver) resolve(ctx context.Context, userID, rawRole string) (domain.Principal, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || strings.TrimSpace(rawRole) == "" {
		return domain.Principal{}, errUnauthenticated
	}
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return domain.Principal{}, err
	}
	if role.Staff() {
		return domain.StaffPrincipal(userID, role), nil
	}
	student, err := p.roster.GetStudent(ctx, userID)
	if errors.Is(err, domain.ErrStudentNotFound) {
		return domain.Principal{}, errUnauthenticated
	}
	if err != nil {
		return domain.Principal{}, err
	}
	return domain.StudentPrincipal(student), nil
}
