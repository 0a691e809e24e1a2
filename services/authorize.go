package services

import (
	"github.com/bugtracker-api/apperrors"
	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/policy"
)

// authorize turns a policy denial into a Forbidden error
func authorize(p *policy.Policy, id *dto.Identity, action policy.Action, res policy.Resource) error {
	if id == nil {
		return apperrors.Unauthenticated("authentication required")
	}
	if d := p.Decide(id, action, res); !d.Allowed {
		return apperrors.Forbidden(d.Reason)
	}
	return nil
}
