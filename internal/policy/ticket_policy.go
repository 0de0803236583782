// Package policy holds the role-scoped access rules for tickets and
// comments. Every function is a pure predicate over the acting user and
// the target entity; the actor is always passed in explicitly, never
// read from ambient state.
package policy

import "github.com/spec-kit/helpdesk-service/internal/domain"

// ListScope describes which tickets a role may see in listings.
type ListScope struct {
	// All grants unrestricted visibility (admin).
	All bool
	// RequesterID limits to tickets created by this user.
	RequesterID string
	// AssigneeID additionally includes tickets assigned to this user;
	// combined with RequesterID as a union, not an intersection.
	AssigneeID string
}

// ScopeFor computes list visibility for the actor:
// admin sees everything, staff sees assigned-or-own-created, a plain
// user sees only tickets they created.
func ScopeFor(actor *domain.User) ListScope {
	switch {
	case actor.IsAdmin():
		return ListScope{All: true}
	case actor.IsStaff():
		return ListScope{RequesterID: actor.ID, AssigneeID: actor.ID}
	default:
		return ListScope{RequesterID: actor.ID}
	}
}

// CanView reports whether the actor may open a single ticket. The rule
// matches list visibility: staff see tickets they are assigned to or
// created themselves.
func CanView(actor *domain.User, ticket *domain.Ticket) bool {
	if actor == nil || ticket == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if actor.IsStaff() {
		if ticket.AssigneeID != nil && *ticket.AssigneeID == actor.ID {
			return true
		}
		return ticket.RequesterID == actor.ID
	}
	return ticket.RequesterID == actor.ID
}

// CanEditContent reports whether the actor may change title, description,
// category or priority. Content editing is requester-exclusive and only
// allowed while the ticket is still open and unassigned.
func CanEditContent(actor *domain.User, ticket *domain.Ticket) bool {
	if actor == nil || ticket == nil {
		return false
	}
	if ticket.RequesterID != actor.ID {
		return false
	}
	return ticket.Status == domain.TicketStatusOpen && !ticket.Assigned()
}

// CanChangeStatus reports whether the actor may set the ticket status.
// Plain users may never set status directly, regardless of ownership.
func CanChangeStatus(actor *domain.User) bool {
	return actor.IsAdmin() || actor.IsStaff()
}

// CanAssign reports whether the actor may change the assignee. Staff may
// pick up an unassigned ticket; moving or clearing an existing assignee
// is admin-exclusive.
func CanAssign(actor *domain.User, ticket *domain.Ticket) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.IsStaff() {
		return !ticket.Assigned()
	}
	return false
}

// CanDelete reports whether the actor may delete the ticket: admins and
// the original requester only.
func CanDelete(actor *domain.User, ticket *domain.Ticket) bool {
	if actor == nil || ticket == nil {
		return false
	}
	return actor.IsAdmin() || ticket.RequesterID == actor.ID
}

// CanComment reports whether the actor may append a comment. Staff and
// admins comment anywhere; plain users only on tickets they requested.
func CanComment(actor *domain.User, ticket *domain.Ticket) bool {
	if actor == nil || ticket == nil {
		return false
	}
	if actor.IsAdmin() || actor.IsStaff() {
		return true
	}
	return ticket.RequesterID == actor.ID
}

// CanEditComment reports whether the actor may edit a comment: author only.
func CanEditComment(actor *domain.User, comment *domain.Comment) bool {
	if actor == nil || comment == nil {
		return false
	}
	return comment.UserID == actor.ID
}

// CanDeleteComment reports whether the actor may delete a comment:
// the author or an admin.
func CanDeleteComment(actor *domain.User, comment *domain.Comment) bool {
	if actor == nil || comment == nil {
		return false
	}
	return comment.UserID == actor.ID || actor.IsAdmin()
}

// CanBeAssignee reports whether the user can hold a ticket assignment.
func CanBeAssignee(u *domain.User) bool {
	return u.IsAdmin() || u.IsStaff()
}
