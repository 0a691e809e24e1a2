package repositories

import (
	"context"
	"testing"

	"github.com/bugtracker-api/apperrors"
	"github.com/bugtracker-api/database"
	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	return db
}

func createUser(t *testing.T, repo *UserRepository, name string) models.User {
	t.Helper()
	u := models.User{Username: name, Email: name + "@example.com", Password: "hash"}
	require.NoError(t, repo.Create(context.Background(), &u))
	return u
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%crash%", likePattern("Crash"))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, translateError(nil, "Issue", "1"))

	err := translateError(gorm.ErrRecordNotFound, "Issue", "42")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Equal(t, "Issue not found with id 42", apperrors.MessageOf(err))

	err = translateError(gorm.ErrDuplicatedKey, "User", "")
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	err = translateError(gorm.ErrInvalidDB, "User", "")
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
}

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, repo, "alice")
	assert.Equal(t, models.RoleUser, alice.Role)
	_, err := uuid.Parse(alice.ID)
	assert.NoError(t, err)

	dup := models.User{Username: "alice", Email: "other@example.com", Password: "hash"}
	err = repo.Create(ctx, &dup)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	emailTaken, usernameTaken, err := repo.ExistsByEmailOrUsername(ctx, "alice@example.com", "nobody")
	require.NoError(t, err)
	assert.True(t, emailTaken)
	assert.False(t, usernameTaken)

	n, err := repo.CountExisting(ctx, []string{alice.ID, uuid.NewString()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.FindByID(ctx, uuid.NewString())
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestProjectRepository_ConditionalDelete(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	project := models.Project{Name: "Alpha", CreatedByID: alice.ID}
	project.EnsureCreatorMember()
	require.NoError(t, repo.Create(ctx, &project))

	exists, err := repo.Exists(ctx, project.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	n, err := repo.DeleteMembers(ctx, project.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, repo.Delete(ctx, project.ID))
	err = repo.Delete(ctx, project.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestProjectRepository_UpsertMemberKeepsOrder(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	carol := createUser(t, users, "carol")

	project := models.Project{Name: "Alpha", CreatedByID: alice.ID}
	project.EnsureCreatorMember()
	require.NoError(t, repo.Create(ctx, &project))

	require.NoError(t, repo.UpsertMember(ctx, project.ID, bob.ID, models.MemberRoleDeveloper))
	require.NoError(t, repo.UpsertMember(ctx, project.ID, carol.ID, models.MemberRoleQA))
	require.NoError(t, repo.UpsertMember(ctx, project.ID, bob.ID, models.MemberRoleManager))

	loaded, err := repo.FindByID(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Members, 3)
	assert.Equal(t, []string{alice.ID, bob.ID, carol.ID},
		[]string{loaded.Members[0].UserID, loaded.Members[1].UserID, loaded.Members[2].UserID})
	assert.Equal(t, models.MemberRoleManager, loaded.Members[1].Role)
	require.NotNil(t, loaded.Members[1].User)
	assert.Equal(t, "bob", loaded.Members[1].User.Username)
}

func TestIssueRepository_VisibleTo(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	projects := NewProjectRepository(db)
	issues := NewIssueRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	mine := models.Project{Name: "Mine", CreatedByID: alice.ID}
	require.NoError(t, projects.Create(ctx, &mine))
	theirs := models.Project{Name: "Theirs", CreatedByID: bob.ID}
	require.NoError(t, projects.Create(ctx, &theirs))

	for _, p := range []models.Project{mine, theirs} {
		issue := models.Issue{
			Title: "in " + p.Name, ProjectID: p.ID, CreatedByID: p.CreatedByID,
			Status: models.IssueStatusOpen, Priority: models.PriorityLow, Type: models.IssueTypeTask,
		}
		require.NoError(t, issues.Create(ctx, &issue))
	}

	found, total, err := issues.Find(ctx, dto.IssueFilter{Pagination: dto.Pagination{Page: 1, Limit: 10}, VisibleTo: alice.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, "in Mine", found[0].Title)

	require.NoError(t, projects.UpsertMember(ctx, theirs.ID, alice.ID, models.MemberRoleQA))
	_, total, err = issues.Find(ctx, dto.IssueFilter{Pagination: dto.Pagination{Page: 1, Limit: 10}, VisibleTo: alice.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestLock(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	projects := NewProjectRepository(db)
	issues := NewIssueRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	p := models.Project{Name: "Alpha", CreatedByID: alice.ID}
	require.NoError(t, projects.Create(ctx, &p))
	issue := models.Issue{
		Title: "Bug", ProjectID: p.ID, CreatedByID: alice.ID,
		Status: models.IssueStatusOpen, Priority: models.PriorityLow, Type: models.IssueTypeBug,
	}
	require.NoError(t, issues.Create(ctx, &issue))

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := projects.WithTx(tx).Lock(ctx, p.ID); err != nil {
			return err
		}
		return issues.WithTx(tx).Lock(ctx, issue.ID)
	})
	require.NoError(t, err)

	err = projects.Lock(ctx, uuid.NewString())
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	err = issues.Lock(ctx, uuid.NewString())
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestScopedQueriesHonorContext(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	projects := NewProjectRepository(db)
	issues := NewIssueRepository(db)

	alice := createUser(t, users, "alice")
	p := models.Project{Name: "Alpha", CreatedByID: alice.ID}
	require.NoError(t, projects.Create(context.Background(), &p))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := issues.Find(ctx, dto.IssueFilter{Pagination: dto.Pagination{Page: 1, Limit: 10}, VisibleTo: alice.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	_, _, err = projects.FindWithPagination(ctx, dto.ProjectFilter{Pagination: dto.Pagination{Page: 1, Limit: 10}, UserID: alice.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
