package services

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/smartcollab/database"
	"github.com/smartcollab/dto"
	"github.com/smartcollab/models"
	"github.com/smartcollab/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	t         *testing.T
	ctx       context.Context
	db        *gorm.DB
	store     *storage.LocalStore
	projects  *ProjectService
	tasks     *TaskService
	dashboard *DashboardService
	profiles  *ProfileService
}

func quietLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.OpenInMemory(uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	log := quietLogger()
	return &fixture{
		t:         t,
		ctx:       context.Background(),
		db:        db,
		store:     store,
		projects:  NewProjectService(db, log),
		tasks:     NewTaskService(db, store, log),
		dashboard: NewDashboardService(db, log),
		profiles:  NewProfileService(db, store, log),
	}
}

func (f *fixture) user(first, last string) models.User {
	f.t.Helper()
	u := models.User{
		Email:        first + "." + last + "@example.com",
		FirstName:    first,
		LastName:     last,
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(f.t, f.db.Create(&u).Error)
	return u
}

func (f *fixture) project(owner models.User, name string) models.Project {
	f.t.Helper()
	start := time.Now().UTC().Add(-24 * time.Hour)
	p, err := f.projects.CreateProject(f.ctx, owner.ID, dto.ProjectRequest{
		Name:      name,
		Color:     "#ff0000",
		StartDate: start,
		EndDate:   start.Add(30 * 24 * time.Hour),
	})
	require.NoError(f.t, err)
	return *p
}

func (f *fixture) invite(owner models.User, project models.Project, invitee models.User, role models.Role) models.ProjectMember {
	f.t.Helper()
	m, err := f.projects.InviteMember(f.ctx, owner.ID, project.ID, dto.InviteMemberRequest{
		Email: invitee.Email,
		Role:  string(role),
	})
	require.NoError(f.t, err)
	return *m
}

func (f *fixture) task(creator models.User, project models.Project, title string, deadline time.Time, assignees ...models.User) models.ProjectTask {
	f.t.Helper()
	ids := make([]string, 0, len(assignees))
	for _, a := range assignees {
		ids = append(ids, a.ID)
	}
	task, err := f.tasks.CreateTask(f.ctx, creator.ID, dto.TaskRequest{
		ProjectID:       project.ID,
		Title:           title,
		Deadline:        deadline,
		AssignedUserIDs: ids,
	})
	require.NoError(f.t, err)
	return *task
}

func (f *fixture) count(model interface{}, query string, args ...interface{}) int64 {
	f.t.Helper()
	var n int64
	q := f.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(f.t, q.Count(&n).Error)
	return n
}

func (f *fixture) assignedUserIDs(taskID string) []string {
	f.t.Helper()
	var ids []string
	require.NoError(f.t, f.db.Model(&models.TaskAssignment{}).
		Where("task_id = ?", taskID).Order("user_id").Pluck("user_id", &ids).Error)
	return ids
}

// fileHeader builds a multipart.FileHeader the way net/http would after parsing a form
func fileHeader(t *testing.T, name, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}
