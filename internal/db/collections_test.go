package db

import (
	"errors"
	"testing"

	"tracka/internal/models"
)

func TestLinkPositionsLiveInUnassignedBucket(t *testing.T) {
	database := openTestDB(t)
	project := mustProject(t, database, models.NewProject{Name: "p"})
	task := mustTask(t, database, models.NewTask{ProjectID: project.ID, Title: "t"})

	l1, err := database.CreateLink(models.NewLink{ProjectID: project.ID, Target: "https://a"})
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}
	attached, err := database.CreateLink(models.NewLink{ProjectID: project.ID, TaskID: &task.ID, Target: "https://b"})
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}
	l2, err := database.CreateLink(models.NewLink{ProjectID: project.ID, Target: "/home/x", Kind: models.LinkFolder})
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	// Task-attached links carry no position; the bucket sequence skips them.
	if attached.Position != nil {
		t.Errorf("attached link position = %v, want nil", attached.Position)
	}
	if *l1.Position != 1 || *l2.Position != 2 {
		t.Errorf("bucket positions = %d, %d, want 1, 2", *l1.Position, *l2.Position)
	}

	bucket, err := database.ListProjectLinks(project.ID, "")
	if err != nil {
		t.Fatalf("ListProjectLinks failed: %v", err)
	}
	if len(bucket) != 2 {
		t.Errorf("unassigned bucket = %v, want 2 links", bucket)
	}

	taskLinks, err := database.ListTaskLinks(task.ID)
	if err != nil {
		t.Fatalf("ListTaskLinks failed: %v", err)
	}
	if len(taskLinks) != 1 || taskLinks[0].ID != attached.ID {
		t.Errorf("task links = %v, want [%d]", taskLinks, attached.ID)
	}
}

func TestLinkBucketTransitionsRecomputePosition(t *testing.T) {
	database := openTestDB(t)
	project := mustProject(t, database, models.NewProject{Name: "p"})
	task := mustTask(t, database, models.NewTask{ProjectID: project.ID, Title: "t"})

	l1, err := database.CreateLink(models.NewLink{ProjectID: project.ID, Target: "https://a"})
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	// Attaching removes the link from the bucket order entirely.
	if err := database.UpdateLink(l1.ID, models.LinkPatch{TaskID: models.Some(task.ID)}); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	attached, err := database.GetLink(l1.ID)
	if err != nil {
		t.Fatalf("GetLink failed: %v", err)
	}
	if attached.Position != nil {
		t.Errorf("attached position = %v, want nil", *attached.Position)
	}

	l2, err := database.CreateLink(models.NewLink{ProjectID: project.ID, Target: "https://b"})
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}
	if *l2.Position != 1 {
		t.Errorf("bucket position after attach = %d, want 1", *l2.Position)
	}

	// Detaching appends at the end rather than reviving the old slot.
	if err := database.UpdateLink(l1.ID, models.LinkPatch{TaskID: models.Null[int64]()}); err != nil {
		t.Fatalf("detach failed: %v", err)
	}
	detached, err := database.GetLink(l1.ID)
	if err != nil {
		t.Fatalf("GetLink failed: %v", err)
	}
	if detached.Position == nil || *detached.Position != 2 {
		t.Errorf("detached position = %v, want 2", detached.Position)
	}

	bucket, err := database.ListProjectLinks(project.ID, "")
	if err != nil {
		t.Fatalf("ListProjectLinks failed: %v", err)
	}
	if len(bucket) != 2 || bucket[0].ID != l2.ID || bucket[1].ID != l1.ID {
		t.Errorf("bucket order = %v, want [%d %d]", bucket, l2.ID, l1.ID)
	}
	if *bucket[0].Position == *bucket[1].Position {
		t.Errorf("duplicate position %d in bucket", *bucket[0].Position)
	}
}

func TestAttachLinkToForeignTaskRejected(t *testing.T) {
	database := openTestDB(t)
	p1 := mustProject(t, database, models.NewProject{Name: "p1"})
	p2 := mustProject(t, database, models.NewProject{Name: "p2"})
	foreign := mustTask(t, database, models.NewTask{ProjectID: p2.ID, Title: "elsewhere"})

	link, err := database.CreateLink(models.NewLink{ProjectID: p1.ID, Target: "https://a"})
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	err = database.UpdateLink(link.ID, models.LinkPatch{TaskID: models.Some(foreign.ID)})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("cross-project attach err = %v, want ErrInvalid", err)
	}

	got, err := database.GetLink(link.ID)
	if err != nil {
		t.Fatalf("GetLink failed: %v", err)
	}
	if got.TaskID != nil {
		t.Errorf("link attached despite rejection: task %d", *got.TaskID)
	}
}

func TestCreateLinkValidation(t *testing.T) {
	database := openTestDB(t)
	project := mustProject(t, database, models.NewProject{Name: "p"})

	if _, err := database.CreateLink(models.NewLink{ProjectID: project.ID, Target: " "}); !errors.Is(err, ErrInvalid) {
		t.Errorf("empty target err = %v, want ErrInvalid", err)
	}
	if _, err := database.CreateLink(models.NewLink{ProjectID: project.ID, Target: "x", Kind: "ftp"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("bad kind err = %v, want ErrInvalid", err)
	}

	link, err := database.CreateLink(models.NewLink{ProjectID: project.ID, Target: "https://x"})
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}
	if link.Kind != models.LinkURL {
		t.Errorf("default kind = %q, want %q", link.Kind, models.LinkURL)
	}
}

func TestMilestoneLifecycle(t *testing.T) {
	database := openTestDB(t)
	project := mustProject(t, database, models.NewProject{Name: "p"})

	due := "2026-12-01"
	m1, err := database.CreateMilestone(models.NewMilestone{ProjectID: project.ID, Title: "v1", DueDate: &due})
	if err != nil {
		t.Fatalf("CreateMilestone failed: %v", err)
	}
	m2, err := database.CreateMilestone(models.NewMilestone{ProjectID: project.ID, Title: "v2"})
	if err != nil {
		t.Fatalf("CreateMilestone failed: %v", err)
	}

	if m1.Status != models.MilestonePending {
		t.Errorf("default status = %q, want pending", m1.Status)
	}

	err = database.UpdateMilestone(m1.ID, models.MilestonePatch{
		Status:  models.Some(models.MilestoneBlocked),
		DueDate: models.Null[string](),
	})
	if err != nil {
		t.Fatalf("UpdateMilestone failed: %v", err)
	}
	got, err := database.GetMilestone(m1.ID)
	if err != nil {
		t.Fatalf("GetMilestone failed: %v", err)
	}
	if got.Status != models.MilestoneBlocked || got.DueDate != nil {
		t.Errorf("milestone = %+v", got)
	}

	if err := database.ReorderMilestones(m1.ID, m2.ID); err != nil {
		t.Fatalf("ReorderMilestones failed: %v", err)
	}
	milestones, err := database.ListMilestones(project.ID)
	if err != nil {
		t.Fatalf("ListMilestones failed: %v", err)
	}
	if milestones[0].ID != m2.ID {
		t.Errorf("order after reorder = %v", milestones)
	}
}

func TestProjectNoteCanonicalIsMostRecentlyUpdated(t *testing.T) {
	database := openTestDB(t)
	project := mustProject(t, database, models.NewProject{Name: "p"})

	n1, err := database.CreateNote(project.ID, "first")
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	if _, err := database.CreateNote(project.ID, "second"); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	// Push the older note's updated_at ahead of the newer row.
	if _, err := database.Exec(
		"UPDATE notes SET updated_at = datetime('now', '+1 hour') WHERE id = ?", n1.ID); err != nil {
		t.Fatalf("bump note: %v", err)
	}

	canonical, err := database.GetProjectNote(project.ID)
	if err != nil {
		t.Fatalf("GetProjectNote failed: %v", err)
	}
	if canonical.ID != n1.ID {
		t.Errorf("canonical note = %d, want %d", canonical.ID, n1.ID)
	}

	if _, err := database.GetProjectNote(99999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing note err = %v, want ErrNotFound", err)
	}
}

func TestPaperLifecycle(t *testing.T) {
	database := openTestDB(t)
	project := mustProject(t, database, models.NewProject{Name: "p"})

	year := int64(2017)
	paper, err := database.CreatePaper(models.NewPaper{
		ProjectID: project.ID,
		Title:     "Attention Is All You Need",
		Authors:   "Vaswani et al.",
		Year:      &year,
		URL:       "https://arxiv.org/abs/1706.03762",
	})
	if err != nil {
		t.Fatalf("CreatePaper failed: %v", err)
	}
	if paper.Status != models.PaperToRead {
		t.Errorf("default status = %q, want to_read", paper.Status)
	}
	if paper.Position == nil || *paper.Position != 1 {
		t.Errorf("position = %v, want 1", paper.Position)
	}

	if err := database.UpdatePaper(paper.ID, models.PaperPatch{Status: models.Some("skimmed")}); !errors.Is(err, ErrInvalid) {
		t.Errorf("bad status err = %v, want ErrInvalid", err)
	}

	err = database.UpdatePaper(paper.ID, models.PaperPatch{
		Status: models.Some(models.PaperRead),
		Year:   models.Null[int64](),
	})
	if err != nil {
		t.Fatalf("UpdatePaper failed: %v", err)
	}
	got, err := database.GetPaper(paper.ID)
	if err != nil {
		t.Fatalf("GetPaper failed: %v", err)
	}
	if got.Status != models.PaperRead || got.Year != nil {
		t.Errorf("paper = %+v", got)
	}
	if got.Authors != "Vaswani et al." {
		t.Errorf("untouched authors changed: %q", got.Authors)
	}
}

func TestExperimentLifecycle(t *testing.T) {
	database := openTestDB(t)
	project := mustProject(t, database, models.NewProject{Name: "p"})

	exp, err := database.CreateExperiment(models.NewExperiment{
		ProjectID: project.ID,
		Name:      "lr sweep",
		Variables: "lr: [1e-3, 1e-4]",
	})
	if err != nil {
		t.Fatalf("CreateExperiment failed: %v", err)
	}
	if exp.Status != models.ExperimentPlanned {
		t.Errorf("default status = %q, want planned", exp.Status)
	}

	err = database.UpdateExperiment(exp.ID, models.ExperimentPatch{
		Status:   models.Some(models.ExperimentDone),
		Outcomes: models.Some("1e-4 wins"),
	})
	if err != nil {
		t.Fatalf("UpdateExperiment failed: %v", err)
	}
	got, err := database.GetExperiment(exp.ID)
	if err != nil {
		t.Fatalf("GetExperiment failed: %v", err)
	}
	if got.Status != models.ExperimentDone || got.Outcomes != "1e-4 wins" {
		t.Errorf("experiment = %+v", got)
	}
	if got.Variables != "lr: [1e-3, 1e-4]" {
		t.Errorf("untouched variables changed: %q", got.Variables)
	}
}
