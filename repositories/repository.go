package repositories

import (
	"errors"
	"strings"

	"github.com/bugtracker-api/apperrors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// translateError turns gorm errors into API errors for the named entity
func translateError(err error, entity, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound(entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Wrap(apperrors.KindConflict, entity+" already exists", err)
	default:
		return apperrors.Internal("database error on "+strings.ToLower(entity), err)
	}
}

// orderBy resolves a client sort field through a whitelist, falling back to created_at desc.
// id is appended as a tie-breaker so pages never overlap.
func orderBy(db *gorm.DB, columns map[string]string, sortBy, order string) *gorm.DB {
	column, ok := columns[sortBy]
	if !ok {
		column = "created_at"
	}
	desc := !strings.EqualFold(order, "asc")
	return db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})
}

// likePattern builds a lower-cased substring pattern for LOWER(col) LIKE ?
func likePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(replacer.Replace(term)) + "%"
}
