package services

import (
	"context"

	"github.com/bugtracker-api/apperrors"
	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/repositories"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CascadeObserver is notified of every cascade outcome
type CascadeObserver interface {
	ObserveCascade(entity, outcome string)
}

// CascadeManager deletes parents together with their dependents. Children are
// always removed before the parent, and the whole cascade runs in a single
// transaction so a failure leaves nothing half-deleted.
type CascadeManager struct {
	db       *gorm.DB
	projects *repositories.ProjectRepository
	issues   *repositories.IssueRepository
	comments *repositories.CommentRepository
	log      *logrus.Logger
	observer CascadeObserver
}

// NewCascadeManager creates a cascade manager; observer may be nil
func NewCascadeManager(
	db *gorm.DB,
	projects *repositories.ProjectRepository,
	issues *repositories.IssueRepository,
	comments *repositories.CommentRepository,
	log *logrus.Logger,
	observer CascadeObserver,
) *CascadeManager {
	return &CascadeManager{
		db:       db,
		projects: projects,
		issues:   issues,
		comments: comments,
		log:      log,
		observer: observer,
	}
}

// cascadeRun tracks progress inside a transaction so failures can be reported precisely
type cascadeRun struct {
	step    string
	deleted []string
}

// DeleteProject removes the project's comments, issues and memberships, then the project.
func (m *CascadeManager) DeleteProject(ctx context.Context, projectID string) (*dto.CascadeResult, error) {
	result := &dto.CascadeResult{Entity: "Project", ID: projectID}
	run := &cascadeRun{}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projects := m.projects.WithTx(tx)
		issues := m.issues.WithTx(tx)
		comments := m.comments.WithTx(tx)

		run.step = "lock project"
		if err := projects.Lock(ctx, projectID); err != nil {
			return err
		}

		run.step = "list issues"
		issueIDs, err := issues.IDsByProject(ctx, projectID)
		if err != nil {
			return err
		}

		run.step = "list comments"
		commentIDs, err := comments.IDsByIssues(ctx, issueIDs)
		if err != nil {
			return err
		}

		run.step = "delete comments"
		n, err := comments.DeleteByIDs(ctx, commentIDs)
		if err != nil {
			return err
		}
		run.deleted = append(run.deleted, commentIDs...)
		result.DeletedComments = int(n)

		run.step = "delete issues"
		n, err = issues.DeleteByIDs(ctx, issueIDs)
		if err != nil {
			return err
		}
		run.deleted = append(run.deleted, issueIDs...)
		result.DeletedIssues = int(n)

		run.step = "delete members"
		n, err = projects.DeleteMembers(ctx, projectID)
		if err != nil {
			return err
		}
		result.DeletedMembers = int(n)

		run.step = "delete project"
		return projects.Delete(ctx, projectID)
	})

	if err != nil {
		return nil, m.fail("Project", projectID, run, err)
	}

	m.succeed(result)
	return result, nil
}

// DeleteIssue removes the issue's comments, then the issue.
func (m *CascadeManager) DeleteIssue(ctx context.Context, issueID string) (*dto.CascadeResult, error) {
	result := &dto.CascadeResult{Entity: "Issue", ID: issueID}
	run := &cascadeRun{}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		issues := m.issues.WithTx(tx)
		comments := m.comments.WithTx(tx)

		run.step = "lock issue"
		if err := issues.Lock(ctx, issueID); err != nil {
			return err
		}

		run.step = "list comments"
		commentIDs, err := comments.IDsByIssues(ctx, []string{issueID})
		if err != nil {
			return err
		}

		run.step = "delete comments"
		n, err := comments.DeleteByIDs(ctx, commentIDs)
		if err != nil {
			return err
		}
		run.deleted = append(run.deleted, commentIDs...)
		result.DeletedComments = int(n)

		run.step = "delete issue"
		return issues.Delete(ctx, issueID)
	})

	if err != nil {
		return nil, m.fail("Issue", issueID, run, err)
	}

	m.succeed(result)
	return result, nil
}

func (m *CascadeManager) succeed(result *dto.CascadeResult) {
	m.observe(result.Entity, "success")
	m.log.WithFields(logrus.Fields{
		"entity":          result.Entity,
		"id":              result.ID,
		"deletedIssues":   result.DeletedIssues,
		"deletedComments": result.DeletedComments,
		"deletedMembers":  result.DeletedMembers,
	}).Info("Cascade delete completed")
}

func (m *CascadeManager) fail(entity, id string, run *cascadeRun, err error) error {
	// The parent vanished under us: another request already completed the cascade.
	switch run.step {
	case "lock project", "lock issue", "delete project", "delete issue":
		if apperrors.Is(err, apperrors.KindNotFound) {
			m.observe(entity, "not_found")
			return err
		}
	}

	m.observe(entity, "failure")
	m.log.WithFields(logrus.Fields{
		"entity":           entity,
		"id":               id,
		"step":             run.step,
		"partiallyDeleted": len(run.deleted),
	}).WithError(err).Error("Cascade delete failed, transaction rolled back")

	return &apperrors.CascadeError{
		Entity:           entity,
		ID:               id,
		Step:             run.step,
		PartiallyDeleted: run.deleted,
		RolledBack:       true,
		Err:              err,
	}
}

func (m *CascadeManager) observe(entity, outcome string) {
	if m.observer != nil {
		m.observer.ObserveCascade(entity, outcome)
	}
}
