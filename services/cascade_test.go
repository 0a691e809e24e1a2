package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bugtracker-api/apperrors"
	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func TestCascadeManager_DeleteProject(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	alice := f.register(t, "alice")
	alpha := f.project(t, alice, "Alpha")
	beta := f.project(t, alice, "Beta")

	bug := f.issue(t, alice, alpha.ID, "Bug 1")
	task := f.issue(t, alice, alpha.ID, "Task 1")
	f.comment(t, alice, bug.ID, "first")
	f.comment(t, alice, bug.ID, "second")
	f.comment(t, alice, task.ID, "third")

	survivor := f.issue(t, alice, beta.ID, "Unrelated")
	f.comment(t, alice, survivor.ID, "keep me")

	result, err := f.cascade.DeleteProject(ctx, alpha.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.DeletedIssues)
	assert.Equal(t, 3, result.DeletedComments)
	assert.Equal(t, 1, result.DeletedMembers)

	assert.Zero(t, count(t, f.db, &models.Project{}, "id = ?", alpha.ID))
	assert.Zero(t, count(t, f.db, &models.Issue{}, "project_id = ?", alpha.ID))
	assert.Zero(t, count(t, f.db, &models.Comment{}, "issue_id IN ?", []string{bug.ID, task.ID}))
	assert.Zero(t, count(t, f.db, &models.ProjectMember{}, "project_id = ?", alpha.ID))

	assert.EqualValues(t, 1, count(t, f.db, &models.Issue{}, "project_id = ?", beta.ID))
	assert.EqualValues(t, 1, count(t, f.db, &models.Comment{}, "issue_id = ?", survivor.ID))

	assert.Equal(t, []string{"Project:success"}, f.observer.events)
}

func TestCascadeManager_DeleteProjectTwice(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	alice := f.register(t, "alice")
	alpha := f.project(t, alice, "Alpha")

	_, err := f.cascade.DeleteProject(ctx, alpha.ID)
	require.NoError(t, err)

	_, err = f.cascade.DeleteProject(ctx, alpha.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Equal(t, []string{"Project:success", "Project:not_found"}, f.observer.events)
}

func TestCascadeManager_ConcurrentDeletes(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	alice := f.register(t, "alice")
	alpha := f.project(t, alice, "Alpha")
	issue := f.issue(t, alice, alpha.ID, "Bug 1")
	f.comment(t, alice, issue.ID, "hello")

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.cascade.DeleteProject(ctx, alpha.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	}
	assert.Equal(t, 1, succeeded)
	assert.Zero(t, count(t, f.db, &models.Comment{}, "issue_id = ?", issue.ID))
}

func TestCascadeManager_DeleteIssueKeepsSiblings(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	alice := f.register(t, "alice")
	alpha := f.project(t, alice, "Alpha")
	first := f.issue(t, alice, alpha.ID, "First")
	second := f.issue(t, alice, alpha.ID, "Second")
	f.comment(t, alice, first.ID, "a")
	f.comment(t, alice, first.ID, "b")
	kept := f.comment(t, alice, second.ID, "c")

	result, err := f.cascade.DeleteIssue(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.DeletedComments)

	assert.Zero(t, count(t, f.db, &models.Issue{}, "id = ?", first.ID))
	assert.Zero(t, count(t, f.db, &models.Comment{}, "issue_id = ?", first.ID))
	assert.EqualValues(t, 1, count(t, f.db, &models.Comment{}, "id = ?", kept.ID))
	assert.EqualValues(t, 1, count(t, f.db, &models.Project{}, "id = ?", alpha.ID))
}

func TestCascadeManager_FailureRollsBack(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	alice := f.register(t, "alice")
	alpha := f.project(t, alice, "Alpha")
	issue := f.issue(t, alice, alpha.ID, "Bug 1")
	c1 := f.comment(t, alice, issue.ID, "one")
	c2 := f.comment(t, alice, issue.ID, "two")

	err := f.db.Callback().Delete().Before("gorm:delete").Register("test:fail_issue_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "issues" {
			tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)

	_, err = f.cascade.DeleteProject(ctx, alpha.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindCascadeFailure, apperrors.KindOf(err))

	var cascadeErr *apperrors.CascadeError
	require.True(t, errors.As(err, &cascadeErr))
	assert.Equal(t, "Project", cascadeErr.Entity)
	assert.Equal(t, "delete issues", cascadeErr.Step)
	assert.True(t, cascadeErr.RolledBack)
	assert.ElementsMatch(t, []string{c1.ID, c2.ID}, cascadeErr.PartiallyDeleted)

	// the transaction was rolled back, nothing is gone
	assert.EqualValues(t, 1, count(t, f.db, &models.Project{}, "id = ?", alpha.ID))
	assert.EqualValues(t, 1, count(t, f.db, &models.Issue{}, "id = ?", issue.ID))
	assert.EqualValues(t, 2, count(t, f.db, &models.Comment{}, "issue_id = ?", issue.ID))
	assert.Equal(t, []string{"Project:failure"}, f.observer.events)
}

func TestCascadeManager_ProjectDeletedDuringIssueCreate(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	alice := f.register(t, "alice")
	alpha := f.project(t, alice, "Alpha")

	// the project disappears after CreateIssue has read and authorized it
	f.afterFirstRead(t, "projects", func() {
		_, err := f.cascade.DeleteProject(context.Background(), alpha.ID)
		require.NoError(t, err)
	})

	_, err := f.issueSvc.CreateIssue(ctx, alice, dto.CreateIssueRequest{Title: "Late bug", Project: alpha.ID})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	assert.Zero(t, count(t, f.db, &models.Project{}, "id = ?", alpha.ID))
	assert.Zero(t, count(t, f.db, &models.Issue{}, "project_id = ?", alpha.ID))
	assert.Equal(t, []string{"Project:success"}, f.observer.events)
}

func TestCascadeManager_IssueDeletedDuringCommentCreate(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	alice := f.register(t, "alice")
	alpha := f.project(t, alice, "Alpha")
	issue := f.issue(t, alice, alpha.ID, "Bug 1")

	f.afterFirstRead(t, "issues", func() {
		_, err := f.cascade.DeleteIssue(context.Background(), issue.ID)
		require.NoError(t, err)
	})

	_, err := f.commentSvc.CreateComment(ctx, alice, issue.ID, dto.CommentRequest{Content: "too late"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	assert.Zero(t, count(t, f.db, &models.Issue{}, "id = ?", issue.ID))
	assert.Zero(t, count(t, f.db, &models.Comment{}, "issue_id = ?", issue.ID))
	assert.Equal(t, []string{"Issue:success"}, f.observer.events)
}

func TestCascadeManager_MissingParentIsNotFound(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.cascade.DeleteIssue(ctx, "8c1f5a52-0d3e-4a43-9d1e-4f0b9a6f7c21")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	var cascadeErr *apperrors.CascadeError
	assert.False(t, errors.As(err, &cascadeErr))
	assert.Equal(t, []string{"Issue:not_found"}, f.observer.events)
}
