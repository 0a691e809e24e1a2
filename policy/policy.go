// Package policy decides whether an authenticated identity may perform an
// action on a resource. Decisions are pure functions of their inputs: the
// caller loads the resource snapshot, the policy never touches storage.
package policy

import (
	"fmt"

	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/models"
)

// Action names an operation subject to authorization
type Action string

const (
	ViewProject   Action = "project:view"
	UpdateProject Action = "project:update"
	DeleteProject Action = "project:delete"
	ManageMembers Action = "project:members"
	CreateIssue   Action = "issue:create"
	ViewIssue     Action = "issue:view"
	UpdateIssue   Action = "issue:update"
	DeleteIssue   Action = "issue:delete"
	CreateComment Action = "comment:create"
	UpdateComment Action = "comment:update"
	DeleteComment Action = "comment:delete"
)

// Resource is the snapshot an action is evaluated against. Only the fields
// relevant to the action need to be set.
type Resource struct {
	Project *models.Project
	Issue   *models.Issue
	Comment *models.Comment
}

// Decision is the outcome of an evaluation
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow and Deny build decisions
func Allow() Decision             { return Decision{Allowed: true} }
func Deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// Rule evaluates one action
type Rule func(id *dto.Identity, res Resource) Decision

// Options selects between the historical rule set and the strict one
type Options struct {
	// StrictIssues requires project access for issue and comment actions and
	// ownership for issue updates. When off, any authenticated user may
	// create, view or update any issue.
	StrictIssues bool
}

// Policy is an explicit action -> rule table
type Policy struct {
	rules map[Action]Rule
}

// New builds the rule table for opts
func New(opts Options) *Policy {
	rules := map[Action]Rule{
		ViewProject:   creatorOrMember,
		UpdateProject: creatorOrAdmin,
		DeleteProject: creatorOrAdmin,
		ManageMembers: creatorOrAdmin,
		CreateIssue:   anyAuthenticated,
		ViewIssue:     anyAuthenticated,
		UpdateIssue:   anyAuthenticated,
		DeleteIssue:   issueCreator,
		CreateComment: issueExists,
		UpdateComment: commentAuthor,
		DeleteComment: commentAuthor,
	}

	if opts.StrictIssues {
		rules[CreateIssue] = projectAccess
		rules[ViewIssue] = projectAccess
		rules[UpdateIssue] = issueOwnerOrManager
		rules[DeleteIssue] = either(issueCreator, admin)
		rules[CreateComment] = all(issueExists, projectAccess)
	}

	return &Policy{rules: rules}
}

// Decide evaluates action for id against res. Unknown actions and missing
// identities are denied.
func (p *Policy) Decide(id *dto.Identity, action Action, res Resource) Decision {
	if id == nil || id.ID == "" {
		return Deny("authentication required")
	}
	rule, ok := p.rules[action]
	if !ok {
		return Deny(fmt.Sprintf("no rule for action %s", action))
	}
	return rule(id, res)
}

// RequireRole allows the identity only if its role is one of allowed. An
// identity without a role is always denied.
func RequireRole(id *dto.Identity, allowed ...models.Role) Decision {
	if id == nil || id.Role == "" {
		return Deny("user role is not set")
	}
	for _, role := range allowed {
		if id.Role == role {
			return Allow()
		}
	}
	return Deny(fmt.Sprintf("user role %s is not authorized to access this route", id.Role))
}

func anyAuthenticated(*dto.Identity, Resource) Decision {
	return Allow()
}

func admin(id *dto.Identity, _ Resource) Decision {
	if id.IsAdmin() {
		return Allow()
	}
	return Deny("admin privileges required")
}

func creatorOrMember(id *dto.Identity, res Resource) Decision {
	if res.Project == nil {
		return Deny("project not loaded")
	}
	if res.Project.CreatedByID == id.ID || res.Project.HasMember(id.ID) {
		return Allow()
	}
	return Deny("not authorized to access this project")
}

func creatorOrAdmin(id *dto.Identity, res Resource) Decision {
	if res.Project == nil {
		return Deny("project not loaded")
	}
	if res.Project.CreatedByID == id.ID || id.IsAdmin() {
		return Allow()
	}
	return Deny("only the project creator or an admin can modify this project")
}

func projectAccess(id *dto.Identity, res Resource) Decision {
	if id.IsAdmin() {
		return Allow()
	}
	if d := creatorOrMember(id, res); !d.Allowed {
		return Deny("not a member of this project")
	}
	return Allow()
}

func issueExists(_ *dto.Identity, res Resource) Decision {
	if res.Issue == nil {
		return Deny("issue not loaded")
	}
	return Allow()
}

func issueCreator(id *dto.Identity, res Resource) Decision {
	if res.Issue == nil {
		return Deny("issue not loaded")
	}
	if res.Issue.CreatedByID == id.ID {
		return Allow()
	}
	return Deny("only the issue creator can delete this issue")
}

func issueOwnerOrManager(id *dto.Identity, res Resource) Decision {
	if res.Issue == nil {
		return Deny("issue not loaded")
	}
	if id.IsAdmin() || res.Issue.CreatedByID == id.ID || res.Issue.IsAssignedTo(id.ID) {
		return Allow()
	}
	if res.Project != nil {
		if res.Project.CreatedByID == id.ID {
			return Allow()
		}
		if role, ok := res.Project.MemberRoleOf(id.ID); ok && role == models.MemberRoleManager {
			return Allow()
		}
	}
	return Deny("only the issue creator, assignee or a project manager can update this issue")
}

func commentAuthor(id *dto.Identity, res Resource) Decision {
	if res.Comment == nil {
		return Deny("comment not loaded")
	}
	if res.Comment.AuthorID == id.ID {
		return Allow()
	}
	return Deny("only the comment author can modify this comment")
}

func either(rules ...Rule) Rule {
	return func(id *dto.Identity, res Resource) Decision {
		last := Deny("denied")
		for _, rule := range rules {
			if last = rule(id, res); last.Allowed {
				return last
			}
		}
		return last
	}
}

func all(rules ...Rule) Rule {
	return func(id *dto.Identity, res Resource) Decision {
		for _, rule := range rules {
			if d := rule(id, res); !d.Allowed {
				return d
			}
		}
		return Allow()
	}
}
