package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bugtracker-api/database"
	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/logging"
	"github.com/bugtracker-api/models"
	"github.com/bugtracker-api/policy"
	"github.com/bugtracker-api/repositories"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (o *recordingObserver) ObserveCascade(entity, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, entity+":"+outcome)
}

type fixture struct {
	db       *gorm.DB
	users    *repositories.UserRepository
	projects *repositories.ProjectRepository
	issues   *repositories.IssueRepository
	comments *repositories.CommentRepository

	tokens   *TokenService
	observer *recordingObserver
	cascade  *CascadeManager

	auth       *AuthService
	projectSvc *ProjectService
	issueSvc   *IssueService
	commentSvc *CommentService
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()

	db, err := database.OpenInMemory()
	require.NoError(t, err)

	log := logging.Discard()
	f := &fixture{
		db:       db,
		users:    repositories.NewUserRepository(db),
		projects: repositories.NewProjectRepository(db),
		issues:   repositories.NewIssueRepository(db),
		comments: repositories.NewCommentRepository(db),
		tokens:   NewTokenService("test-secret", time.Hour),
		observer: &recordingObserver{},
	}

	rules := policy.New(policy.Options{StrictIssues: strict})
	f.cascade = NewCascadeManager(db, f.projects, f.issues, f.comments, log, f.observer)
	f.auth = NewAuthService(f.users, f.tokens, NoopTokenBlacklist{}, log)
	f.projectSvc = NewProjectService(db, f.projects, f.users, f.cascade, rules, log)
	f.issueSvc = NewIssueService(db, f.issues, f.projects, f.users, f.cascade, rules, strict, log)
	f.commentSvc = NewCommentService(db, f.comments, f.issueSvc, rules)
	return f
}

// register creates an account and returns its identity
func (f *fixture) register(t *testing.T, name string) *dto.Identity {
	t.Helper()
	user, err := f.auth.Register(context.Background(), dto.RegisterRequest{
		Username: name,
		Email:    name + "@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	id := dto.IdentityFromUser(user)
	return &id
}

func (f *fixture) admin(t *testing.T) *dto.Identity {
	t.Helper()
	created, err := f.auth.EnsureAdmin(context.Background(), "root@example.com", "root", "secret1")
	require.NoError(t, err)
	require.True(t, created)
	user, err := f.users.FindByEmail(context.Background(), "root@example.com")
	require.NoError(t, err)
	id := dto.IdentityFromUser(user)
	return &id
}

func (f *fixture) project(t *testing.T, owner *dto.Identity, name string, members ...dto.MemberRequest) models.Project {
	t.Helper()
	p, err := f.projectSvc.CreateProject(context.Background(), owner, dto.CreateProjectRequest{Name: name, Members: members})
	require.NoError(t, err)
	return p
}

func (f *fixture) issue(t *testing.T, author *dto.Identity, projectID, title string) models.Issue {
	t.Helper()
	i, err := f.issueSvc.CreateIssue(context.Background(), author, dto.CreateIssueRequest{Title: title, Project: projectID})
	require.NoError(t, err)
	return i
}

func (f *fixture) comment(t *testing.T, author *dto.Identity, issueID, content string) models.Comment {
	t.Helper()
	c, err := f.commentSvc.CreateComment(context.Background(), author, issueID, dto.CommentRequest{Content: content})
	require.NoError(t, err)
	return c
}

// afterFirstRead runs fn once, right after the first successful read of table
// completes and before the caller sees the result
func (f *fixture) afterFirstRead(t *testing.T, table string, fn func()) {
	t.Helper()
	fired := false
	err := f.db.Callback().Query().After("gorm:preload").Register("test:after_read_"+table, func(tx *gorm.DB) {
		if fired || tx.Error != nil || tx.Statement.Table != table {
			return
		}
		fired = true
		fn()
	})
	require.NoError(t, err)
}
