package authroles

import (
	domainauth "github.com/intervue/intervue-api/internal/domain/auth"
)

// StaticRoleMapper maps groups by simple string membership rules.
// Recruiter membership wins over candidate membership.
type StaticRoleMapper struct {
	RecruiterGroup string
	CandidateGroup string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.RecruiterGroup != "" && g == m.RecruiterGroup {
			return domainauth.RoleRecruiter
		}
	}
	for _, g := range groups {
		if m.CandidateGroup != "" && g == m.CandidateGroup {
			return domainauth.RoleCandidate
		}
	}
	return domainauth.RoleGuest
}
