package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bugtracker-api/apperrors"
	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueService_CreateDefaultsAndReferences(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	alpha := f.project(t, alice, "Alpha")

	due := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	issue, err := f.issueSvc.CreateIssue(ctx, alice, dto.CreateIssueRequest{
		Title:      "  Crash on save ",
		Project:    alpha.ID,
		AssignedTo: &bob.ID,
		DueDate:    &due,
	})
	require.NoError(t, err)
	assert.Equal(t, "Crash on save", issue.Title)
	assert.Equal(t, models.IssueStatusOpen, issue.Status)
	assert.Equal(t, models.PriorityMedium, issue.Priority)
	assert.Equal(t, models.IssueTypeBug, issue.Type)
	require.NotNil(t, issue.Project)
	assert.Equal(t, "Alpha", issue.Project.Name)
	require.NotNil(t, issue.AssignedTo)
	assert.Equal(t, "bob", issue.AssignedTo.Username)
	require.NotNil(t, issue.DueDate)
	assert.True(t, due.Equal(*issue.DueDate))
}

func TestIssueService_CreateRejectsMissingReferences(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	alice := f.register(t, "alice")
	alpha := f.project(t, alice, "Alpha")

	_, err := f.issueSvc.CreateIssue(ctx, alice, dto.CreateIssueRequest{Title: "x", Project: uuid.NewString()})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = f.issueSvc.CreateIssue(ctx, alice, dto.CreateIssueRequest{Title: "x", Project: "not-an-id"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	ghost := uuid.NewString()
	_, err = f.issueSvc.CreateIssue(ctx, alice, dto.CreateIssueRequest{Title: "x", Project: alpha.ID, AssignedTo: &ghost})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = f.issueSvc.CreateIssue(ctx, alice, dto.CreateIssueRequest{Title: "x", Project: alpha.ID, Type: "Epic"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestIssueService_ListFilters(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	alpha := f.project(t, alice, "Alpha")
	beta := f.project(t, alice, "Beta")

	for i := 0; i < 15; i++ {
		f.issue(t, alice, alpha.ID, fmt.Sprintf("Issue %02d", i))
	}
	_, err := f.issueSvc.CreateIssue(ctx, alice, dto.CreateIssueRequest{
		Title: "Login broken", Project: beta.ID, Priority: models.PriorityCritical, AssignedTo: &bob.ID,
	})
	require.NoError(t, err)

	page, err := f.issueSvc.ListIssues(ctx, alice, dto.IssueFilter{
		Pagination: dto.Pagination{Page: 2, Limit: 10},
		ProjectID:  alpha.ID,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 15, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Issues, 5)

	critical, err := f.issueSvc.ListIssues(ctx, alice, dto.IssueFilter{Priority: models.PriorityCritical})
	require.NoError(t, err)
	require.Len(t, critical.Issues, 1)
	assert.Equal(t, "Login broken", critical.Issues[0].Title)

	assigned, err := f.issueSvc.ListIssues(ctx, alice, dto.IssueFilter{AssignedTo: bob.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, assigned.Total)

	search, err := f.issueSvc.ListIssues(ctx, alice, dto.IssueFilter{Search: "LOGIN"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, search.Total)

	_, err = f.issueSvc.ListIssues(ctx, alice, dto.IssueFilter{Status: "Sleeping"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestIssueService_DeleteOnlyByCreator(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	root := f.admin(t)
	alpha := f.project(t, alice, "Alpha")
	issue := f.issue(t, alice, alpha.ID, "Bug 1")

	_, err := f.issueSvc.DeleteIssue(ctx, bob, issue.ID)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	_, err = f.issueSvc.DeleteIssue(ctx, root, issue.ID)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	_, err = f.issueSvc.DeleteIssue(ctx, alice, issue.ID)
	require.NoError(t, err)

	_, err = f.issueSvc.GetIssue(ctx, alice, issue.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestIssueService_UpdateClearsNullableFields(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	alpha := f.project(t, alice, "Alpha")

	due := time.Now().Add(time.Hour)
	issue, err := f.issueSvc.CreateIssue(ctx, alice, dto.CreateIssueRequest{
		Title: "Bug", Project: alpha.ID, AssignedTo: &bob.ID, DueDate: &due,
	})
	require.NoError(t, err)

	status := models.IssueStatusInProgress
	updated, err := f.issueSvc.UpdateIssue(ctx, alice, issue.ID, dto.UpdateIssueRequest{
		Status:        &status,
		ClearAssignee: true,
		ClearDueDate:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusInProgress, updated.Status)
	assert.Nil(t, updated.AssignedToID)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, "Bug", updated.Title)
}

func TestIssueService_StrictMode(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	alice := f.register(t, "alice")
	dev := f.register(t, "dev")
	lead := f.register(t, "lead")
	outsider := f.register(t, "outsider")
	root := f.admin(t)

	alpha := f.project(t, alice, "Alpha",
		dto.MemberRequest{User: dev.ID, Role: models.MemberRoleDeveloper},
		dto.MemberRequest{User: lead.ID, Role: models.MemberRoleManager},
	)
	f.project(t, outsider, "Elsewhere")

	_, err := f.issueSvc.CreateIssue(ctx, outsider, dto.CreateIssueRequest{Title: "x", Project: alpha.ID})
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	issue := f.issue(t, alice, alpha.ID, "Bug 1")

	_, err = f.issueSvc.GetIssue(ctx, outsider, issue.ID)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	list, err := f.issueSvc.ListIssues(ctx, outsider, dto.IssueFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	list, err = f.issueSvc.ListIssues(ctx, dev, dto.IssueFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	title := "Renamed"
	_, err = f.issueSvc.UpdateIssue(ctx, dev, issue.ID, dto.UpdateIssueRequest{Title: &title})
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	_, err = f.issueSvc.UpdateIssue(ctx, lead, issue.ID, dto.UpdateIssueRequest{Title: &title})
	assert.NoError(t, err)

	_, err = f.commentSvc.CreateComment(ctx, outsider, issue.ID, dto.CommentRequest{Content: "hi"})
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	_, err = f.issueSvc.DeleteIssue(ctx, root, issue.ID)
	assert.NoError(t, err)
}

func TestIssueService_ProjectFilter(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	alice := f.register(t, "alice")
	alpha := f.project(t, alice, "Alpha")
	f.issue(t, alice, alpha.ID, "Bug 1")
	f.issue(t, alice, alpha.ID, "Bug 2")

	ghost := uuid.NewString()

	// as a plain filter, an unknown project simply matches nothing
	list, err := f.issueSvc.ListIssues(ctx, alice, dto.IssueFilter{ProjectID: ghost})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
	assert.Empty(t, list.Issues)

	_, err = f.issueSvc.ListProjectIssues(ctx, alice, ghost, dto.IssueFilter{})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	list, err = f.issueSvc.ListProjectIssues(ctx, alice, alpha.ID, dto.IssueFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)

	_, err = f.issueSvc.ListProjectIssues(ctx, alice, alpha.ID, dto.IssueFilter{Status: "Bogus"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestIssueService_StrictProjectFilter(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	alice := f.register(t, "alice")
	outsider := f.register(t, "outsider")
	alpha := f.project(t, alice, "Alpha")
	f.issue(t, alice, alpha.ID, "Bug 1")

	_, err := f.issueSvc.ListIssues(ctx, alice, dto.IssueFilter{ProjectID: uuid.NewString()})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = f.issueSvc.ListIssues(ctx, outsider, dto.IssueFilter{ProjectID: alpha.ID})
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	list, err := f.issueSvc.ListIssues(ctx, alice, dto.IssueFilter{ProjectID: alpha.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
}
