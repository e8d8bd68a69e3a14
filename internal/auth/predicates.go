// Package auth centralizes the role and ownership predicates evaluated by
// handlers. Each predicate is a pure function over the actor and, where
// relevant, the target resource, so the authorization surface stays
// auditable in one place.
package auth

import "github.com/noah-isme/aegis-go-api/internal/models"

// IsAdmin gates user management, audit log access and system stats.
func IsAdmin(user models.User) bool {
	return user.Role == models.RoleAdmin
}

// IsStudent gates enrollment and attendance self-view.
func IsStudent(user models.User) bool {
	return user.Role == models.RoleStudent
}

// IsFacultyOrAdmin gates course creation, attendance marking, resource
// upload and opportunity posting.
func IsFacultyOrAdmin(user models.User) bool {
	return user.Role == models.RoleFaculty || user.Role == models.RoleAdmin
}

// CanSubmitGrievance allows students and faculty to file complaints.
func CanSubmitGrievance(user models.User) bool {
	return user.Role == models.RoleStudent || user.Role == models.RoleFaculty
}

// CanModerateGrievances gates status updates, assignment and resolution.
func CanModerateGrievances(user models.User) bool {
	return user.Role == models.RoleAuthority || user.Role == models.RoleAdmin
}

// CanViewGrievance applies to the detail and history fetches only; the
// list feed is open to every signed-in user.
func CanViewGrievance(user models.User, g models.Grievance) bool {
	switch user.Role {
	case models.RoleAdmin, models.RoleAuthority:
		return true
	case models.RoleFaculty:
		return g.AssignedTo != nil && *g.AssignedTo == user.ID
	case models.RoleStudent:
		if g.SubmittedBy != nil && *g.SubmittedBy == user.ID {
			return true
		}
		return !g.IsAnonymous
	default:
		return false
	}
}

// CanModifyGrievance gates content mutations such as photo uploads,
// where the submitter keeps control. Status transitions are gated by
// CanModerateGrievances instead. An authority may act when the
// grievance is unassigned or assigned to them.
func CanModifyGrievance(user models.User, g models.Grievance) bool {
	switch user.Role {
	case models.RoleAdmin:
		return true
	case models.RoleAuthority:
		return g.AssignedTo == nil || *g.AssignedTo == user.ID
	case models.RoleStudent:
		return g.SubmittedBy != nil && *g.SubmittedBy == user.ID
	default:
		return false
	}
}

// CanDeleteGrievance allows admins to delete any grievance and students
// to delete their own.
func CanDeleteGrievance(user models.User, g models.Grievance) bool {
	switch user.Role {
	case models.RoleAdmin:
		return true
	case models.RoleStudent:
		return g.SubmittedBy != nil && *g.SubmittedBy == user.ID
	default:
		return false
	}
}

// CanBeAssignedGrievance restricts grievance assignment targets.
func CanBeAssignedGrievance(user models.User) bool {
	switch user.Role {
	case models.RoleAuthority, models.RoleAdmin, models.RoleFaculty:
		return true
	default:
		return false
	}
}

// CanManageOpportunity allows the posting faculty or an admin to view
// applicants and change application statuses.
func CanManageOpportunity(user models.User, o models.Opportunity) bool {
	return o.PostedBy == user.ID || user.Role == models.RoleAdmin
}

// CanSeeInternalComments restricts internal grievance remarks to the
// moderating roles.
func CanSeeInternalComments(user models.User) bool {
	return CanModerateGrievances(user)
}
