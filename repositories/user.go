package repositories

import (
	"context"

	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/models"
	"gorm.io/gorm"
)

// UserRepository is the credential store
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx binds the repository to a transaction
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// Create inserts a user. Duplicate username or email yields a Conflict error.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error, "User", user.Email)
}

// FindByID retrieves a user by its ID
func (r *UserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	return user, translateError(err, "User", id)
}

// FindByEmail retrieves a user by email address
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return user, translateError(err, "User", email)
}

// ExistsByEmailOrUsername reports which of the unique keys are already taken
func (r *UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (emailTaken, usernameTaken bool, err error) {
	var users []models.User
	err = r.db.WithContext(ctx).Select("email", "username").
		Where("email = ? OR username = ?", email, username).Find(&users).Error
	if err != nil {
		return false, false, translateError(err, "User", email)
	}
	for _, u := range users {
		if u.Email == email {
			emailTaken = true
		}
		if u.Username == username {
			usernameTaken = true
		}
	}
	return emailTaken, usernameTaken, nil
}

// CountExisting counts how many of ids resolve to users
func (r *UserRepository) CountExisting(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id IN ?", ids).Count(&count).Error
	return count, translateError(err, "User", "")
}

// FindWithPagination lists users oldest first
func (r *UserRepository) FindWithPagination(ctx context.Context, page dto.Pagination) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	db := r.db.WithContext(ctx).Model(&models.User{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "User", "")
	}
	err := db.Order("created_at asc").Order("id asc").Limit(page.Limit).Offset(page.Offset()).Find(&users).Error
	return users, total, translateError(err, "User", "")
}
