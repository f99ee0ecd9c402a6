package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/surajorg0/jira-tracker-backend/internal/apperr"
	"github.com/surajorg0/jira-tracker-backend/internal/models"
)

func fileFixtures(t *testing.T) (*FileService, *BlobStore, *models.User, *models.User, *models.User, *models.Project) {
	t.Helper()
	db := setupTestDB(t)
	g := newGate()
	blobs := setupBlobs(t)
	lead := createUser(t, db, "Lead", models.RoleTeamLead, true)
	assignee := createUser(t, db, "Assignee", models.RoleUser, true)
	other := createUser(t, db, "Other", models.RoleUser, true)

	project, err := NewProjectService(db, g, blobs).Create(context.Background(), lead, ProjectInput{
		Title: "Tracker", Description: "backend", AssignedToID: assignee.ID,
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return NewFileService(db, g, blobs), blobs, lead, assignee, other, project
}

func TestFileUpload_AssigneeAndManager(t *testing.T) {
	svc, blobs, lead, assignee, other, project := fileFixtures(t)
	ctx := context.Background()

	file, err := svc.Upload(ctx, assignee, models.RefTypeProject, project.ID, "report.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("assignee upload: %v", err)
	}
	if file.FileName != "report.pdf" {
		t.Errorf("original filename lost: %q", file.FileName)
	}
	if !blobs.Exists(file.FilePath) {
		t.Errorf("blob missing at %q", file.FilePath)
	}
	if file.UploadedByID != assignee.ID {
		t.Errorf("uploader: got %d", file.UploadedByID)
	}

	if _, err := svc.Upload(ctx, lead, models.RefTypeProject, project.ID, "notes.txt", strings.NewReader("notes")); err != nil {
		t.Errorf("manager upload: %v", err)
	}

	if _, err := svc.Upload(ctx, other, models.RefTypeProject, project.ID, "sneak.txt", strings.NewReader("x")); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("bystander upload: expected ErrForbidden, got %v", err)
	}
}

func TestFileUpload_RejectsBadInput(t *testing.T) {
	svc, _, lead, _, _, project := fileFixtures(t)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, lead, models.RefTypeProject, project.ID, "payload.exe", strings.NewReader("x")); err == nil {
		t.Error("disallowed extension accepted")
	} else if _, ok := apperr.AsValidation(err); !ok {
		t.Errorf("extension: expected validation error, got %v", err)
	}

	if _, err := svc.Upload(ctx, lead, "sprint", project.ID, "a.txt", strings.NewReader("x")); err == nil {
		t.Error("unknown ref type accepted")
	} else if _, ok := apperr.AsValidation(err); !ok {
		t.Errorf("refType: expected validation error, got %v", err)
	}

	if _, err := svc.Upload(ctx, lead, models.RefTypeProject, 999, "a.txt", strings.NewReader("x")); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("absent parent: expected ErrNotFound, got %v", err)
	}
}

func TestFileView_BugReporterIncluded(t *testing.T) {
	db := setupTestDB(t)
	g := newGate()
	blobs := setupBlobs(t)
	lead := createUser(t, db, "Lead", models.RoleTeamLead, true)
	assignee := createUser(t, db, "Assignee", models.RoleUser, true)
	reporter := createUser(t, db, "Reporter", models.RoleUser, true)
	other := createUser(t, db, "Other", models.RoleUser, true)
	ctx := context.Background()

	project, err := NewProjectService(db, g, blobs).Create(ctx, lead, ProjectInput{
		Title: "Tracker", Description: "backend", AssignedToID: assignee.ID,
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	// Seed the bug row directly so reportedBy can be a plain user.
	bug := &models.Bug{
		Title: "Crash", Description: "boom", RelatedToProjectID: project.ID,
		ReportedByID: reporter.ID, AssignedToID: assignee.ID,
		Status: models.BugStatusPending, Severity: models.BugSeverityMedium,
	}
	if err := db.Create(bug).Error; err != nil {
		t.Fatalf("create bug: %v", err)
	}

	svc := NewFileService(db, g, blobs)
	file, err := svc.Upload(ctx, assignee, models.RefTypeBug, bug.ID, "trace.txt", strings.NewReader("stack"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if _, err := svc.GetByID(ctx, reporter, file.ID); err != nil {
		t.Errorf("reporter view: %v", err)
	}
	if _, err := svc.GetByID(ctx, other, file.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("bystander view: expected ErrForbidden, got %v", err)
	}
	// Viewing is not deleting: the reporter did not upload this file.
	if err := svc.Delete(ctx, reporter, file.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("reporter delete: expected ErrForbidden, got %v", err)
	}
}

func TestFileDelete_UploaderRemovesBlobAndRecord(t *testing.T) {
	svc, blobs, _, assignee, _, project := fileFixtures(t)
	ctx := context.Background()

	file, err := svc.Upload(ctx, assignee, models.RefTypeProject, project.ID, "draft.docx", strings.NewReader("doc"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Delete(ctx, assignee, file.ID); err != nil {
		t.Fatalf("uploader delete: %v", err)
	}
	if blobs.Exists(file.FilePath) {
		t.Error("blob survived delete")
	}
	if _, err := svc.GetByID(ctx, assignee, file.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("record survived delete: %v", err)
	}
}

func TestFileDelete_ToleratesMissingBlob(t *testing.T) {
	svc, blobs, _, assignee, _, project := fileFixtures(t)
	ctx := context.Background()

	file, err := svc.Upload(ctx, assignee, models.RefTypeProject, project.ID, "gone.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := blobs.Remove(file.FilePath); err != nil {
		t.Fatalf("remove blob: %v", err)
	}

	if err := svc.Delete(ctx, assignee, file.ID); err != nil {
		t.Errorf("delete with absent blob: %v", err)
	}
}

func TestFileDelete_OrphanedParent(t *testing.T) {
	db := setupTestDB(t)
	g := newGate()
	blobs := setupBlobs(t)
	lead := createUser(t, db, "Lead", models.RoleTeamLead, true)
	assignee := createUser(t, db, "Assignee", models.RoleUser, true)
	other := createUser(t, db, "Other", models.RoleUser, true)
	ctx := context.Background()

	project, err := NewProjectService(db, g, blobs).Create(ctx, lead, ProjectInput{
		Title: "Tracker", Description: "backend", AssignedToID: assignee.ID,
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	svc := NewFileService(db, g, blobs)
	file, err := svc.Upload(ctx, assignee, models.RefTypeProject, project.ID, "left.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	// Drop the parent row directly so the attachment is orphaned.
	if err := db.Delete(&models.Project{}, project.ID).Error; err != nil {
		t.Fatalf("drop project: %v", err)
	}

	if err := svc.Delete(ctx, other, file.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("bystander orphan delete: expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, assignee, file.ID); err != nil {
		t.Errorf("uploader orphan delete: %v", err)
	}
}
