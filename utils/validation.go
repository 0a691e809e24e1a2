package utils

import (
	"fmt"
	"strings"

	"github.com/bugtracker-api/apperrors"
	"github.com/google/uuid"
)

// ValidateID checks that id is a well-formed UUID. name is used in the error message.
func ValidateID(name, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.Validation(fmt.Sprintf("%s is required", name))
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.Validation(fmt.Sprintf("invalid %s format: %s", name, id))
	}
	return nil
}
