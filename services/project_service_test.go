package services

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/smartcollab/dto"
	"github.com/smartcollab/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProjectAddsOwnerMembership(t *testing.T) {
	f := newFixture(t)
	alice := f.user("Alice", "Martin")

	project := f.project(alice, "Launch")

	var owner models.ProjectMember
	require.NoError(t, f.db.Where("project_id = ? AND user_id = ?", project.ID, alice.ID).First(&owner).Error)
	assert.Equal(t, models.RoleOwner, owner.Role)
	assert.False(t, owner.IsArchived)

	list, err := f.projects.ListProjects(f.ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Launch", list[0].Name)
	assert.Equal(t, "#ff0000", list[0].Color)
	assert.Equal(t, models.ProjectNotStarted, list[0].Status)
	assert.Equal(t, models.RoleOwner, list[0].Role)
}

func TestCreateProjectRejectsInvertedDates(t *testing.T) {
	f := newFixture(t)
	alice := f.user("Alice", "Martin")
	now := time.Now().UTC()

	_, err := f.projects.CreateProject(f.ctx, alice.ID, dto.ProjectRequest{
		Name: "Backwards", Color: "#000000", StartDate: now, EndDate: now.Add(-time.Hour),
	})
	_, ok := AsValidationError(err)
	assert.True(t, ok)
	assert.Zero(t, f.count(&models.Project{}, ""))
	assert.Zero(t, f.count(&models.ProjectMember{}, ""))
}

func TestViewersAreExactlyMembers(t *testing.T) {
	f := newFixture(t)
	alice := f.user("Alice", "Martin")
	bob := f.user("Bob", "Durand")
	carol := f.user("Carol", "Petit")

	project := f.project(alice, "Launch")
	f.invite(alice, project, bob, models.RoleViewer)

	access := NewAuthorizer(f.db)
	for _, u := range []models.User{alice, bob, carol} {
		_, err := access.Membership(f.ctx, project.ID, u.ID)
		isMember := f.count(&models.ProjectMember{}, "project_id = ? AND user_id = ?", project.ID, u.ID) == 1
		assert.Equal(t, isMember, err == nil, u.FirstName)

		_, err = f.projects.GetProjectDetail(f.ctx, u.ID, project.ID)
		if isMember {
			assert.NoError(t, err)
		} else {
			assert.True(t, errors.Is(err, ErrForbidden))
		}
	}
}

func TestProjectDetailStats(t *testing.T) {
	f := newFixture(t)
	alice := f.user("Alice", "Martin")
	bob := f.user("Bob", "Durand")
	project := f.project(alice, "Launch")
	f.invite(alice, project, bob, models.RoleCollaborator)

	now := time.Now().UTC()
	done := f.task(alice, project, "Done", now.Add(48*time.Hour), bob)
	_, err := f.tasks.UpdateTask(f.ctx, alice.ID, done.ID, dto.TaskUpdateRequest{
		Title: "Done", Status: "Completed", Deadline: done.Deadline, AssignedUserIDs: []string{bob.ID},
	})
	require.NoError(t, err)
	f.task(alice, project, "Late", now.Add(-48*time.Hour), alice, bob)
	f.task(alice, project, "Soon", now.Add(24*time.Hour))

	detail, err := f.projects.GetProjectDetail(f.ctx, bob.ID, project.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, detail.TotalTasksCount)
	assert.Equal(t, 1, detail.CompletedTasksCount)
	assert.Equal(t, 1, detail.OverdueTasksCount)
	assert.Equal(t, 33, detail.Progress)
	assert.Len(t, detail.RecentTasks, 3)
	assert.Len(t, detail.TeamMembers, 2)
	assert.Equal(t, models.RoleCollaborator, detail.UserRole)
	assert.InDelta(t, 28, detail.DaysRemaining, 1)

	for _, rt := range detail.RecentTasks {
		if rt.Title == "Late" {
			assert.Equal(t, []string{"Alice Martin", "Bob Durand"}, rt.AssignedMemberNames)
		}
	}
}

func TestUpdateProjectPermissions(t *testing.T) {
	f := newFixture(t)
	alice := f.user("Alice", "Martin")
	bob := f.user("Bob", "Durand")
	carol := f.user("Carol", "Petit")
	project := f.project(alice, "Launch")
	f.invite(alice, project, bob, models.RoleManager)
	f.invite(alice, project, carol, models.RoleCollaborator)

	req := dto.ProjectRequest{
		Name:      "Launch v2",
		Color:     "#00ff00",
		Status:    "InProgress",
		StartDate: project.StartDate,
		EndDate:   project.EndDate,
	}

	updated, err := f.projects.UpdateProject(f.ctx, bob.ID, project.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Launch v2", updated.Name)
	assert.Equal(t, models.ProjectInProgress, updated.Status)

	_, err = f.projects.UpdateProject(f.ctx, carol.ID, project.ID, req)
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = f.projects.UpdateProject(f.ctx, alice.ID, "missing", req)
	assert.True(t, errors.Is(err, ErrNotFound))

	stored, err := f.projects.GetProjectForEdit(f.ctx, alice.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "#00ff00", stored.Color)
}

func TestInviteMemberRejections(t *testing.T) {
	f := newFixture(t)
	alice := f.user("Alice", "Martin")
	bob := f.user("Bob", "Durand")
	carol := f.user("Carol", "Petit")
	project := f.project(alice, "Launch")
	f.invite(alice, project, bob, models.RoleManager)

	before := f.count(&models.ProjectMember{}, "project_id = ?", project.ID)

	cases := []dto.InviteMemberRequest{
		{Email: "nobody@example.com", Role: "Viewer"},
		{Email: bob.Email, Role: "Viewer"},
		{Email: carol.Email, Role: "Superuser"},
	}
	for _, req := range cases {
		_, err := f.projects.InviteMember(f.ctx, alice.ID, project.ID, req)
		_, ok := AsValidationError(err)
		assert.True(t, ok, req.Email)
	}

	// managers cannot invite
	_, err := f.projects.InviteMember(f.ctx, bob.ID, project.ID, dto.InviteMemberRequest{Email: carol.Email, Role: "Viewer"})
	assert.True(t, errors.Is(err, ErrForbidden))

	assert.Equal(t, before, f.count(&models.ProjectMember{}, "project_id = ?", project.ID))
}

func TestInviteMemberParsesRoleCaseInsensitively(t *testing.T) {
	f := newFixture(t)
	alice := f.user("Alice", "Martin")
	bob := f.user("Bob", "Durand")
	project := f.project(alice, "Launch")

	m, err := f.projects.InviteMember(f.ctx, alice.ID, project.ID, dto.InviteMemberRequest{
		Email: "BOB.DURAND@example.com",
		Role:  "collaborator",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCollaborator, m.Role)
	assert.Equal(t, bob.ID, m.UserID)
	assert.False(t, m.IsArchived)
}

func TestOwnerCannotLeave(t *testing.T) {
	f := newFixture(t)
	alice := f.user("Alice", "Martin")
	bob := f.user("Bob", "Durand")
	project := f.project(alice, "Launch")
	f.invite(alice, project, bob, models.RoleOwner)

	for _, owner := range []models.User{alice, bob} {
		err := f.projects.LeaveProject(f.ctx, owner.ID, project.ID)
		_, ok := AsValidationError(err)
		assert.True(t, ok)
	}
	assert.EqualValues(t, 2, f.count(&models.ProjectMember{}, "project_id = ?", project.ID))
}

func TestLeaveProjectDropsAssignments(t *testing.T) {
	f := newFixture(t)
	alice := f.user("Alice", "Martin")
	bob := f.user("Bob", "Durand")
	project := f.project(alice, "Launch")
	f.invite(alice, project, bob, models.RoleCollaborator)
	task := f.task(bob, project, "Write docs", time.Now().UTC().Add(time.Hour), alice, bob)

	require.NoError(t, f.projects.LeaveProject(f.ctx, bob.ID, project.ID))

	assert.Zero(t, f.count(&models.ProjectMember{}, "project_id = ? AND user_id = ?", project.ID, bob.ID))
	assert.Equal(t, []string{alice.ID}, f.assignedUserIDs(task.ID))

	// the task stays, without a creator
	var stored models.ProjectTask
	require.NoError(t, f.db.First(&stored, "id = ?", task.ID).Error)
	assert.Nil(t, stored.CreatedByID)

	err := f.projects.LeaveProject(f.ctx, bob.ID, project.ID)
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	alice := f.user("Alice", "Martin")
	bob := f.user("Bob", "Durand")
	project := f.project(alice, "Launch")
	bobMember := f.invite(alice, project, bob, models.RoleManager)

	var owner models.ProjectMember
	require.NoError(t, f.db.Where("project_id = ? AND user_id = ?", project.ID, alice.ID).First(&owner).Error)

	assert.True(t, errors.Is(f.projects.RemoveMember(f.ctx, bob.ID, project.ID, owner.ID), ErrForbidden))

	_, ok := AsValidationError(f.projects.RemoveMember(f.ctx, alice.ID, project.ID, owner.ID))
	assert.True(t, ok)

	require.NoError(t, f.projects.RemoveMember(f.ctx, alice.ID, project.ID, bobMember.ID))
	assert.Zero(t, f.count(&models.ProjectMember{}, "id = ?", bobMember.ID))

	assert.True(t, errors.Is(f.projects.RemoveMember(f.ctx, alice.ID, project.ID, bobMember.ID), ErrNotFound))
}

func TestArchiveRestoreAndFavorite(t *testing.T) {
	f := newFixture(t)
	alice := f.user("Alice", "Martin")
	bob := f.user("Bob", "Durand")
	project := f.project(alice, "Launch")
	f.invite(alice, project, bob, models.RoleViewer)

	require.NoError(t, f.projects.SetArchived(f.ctx, alice.ID, project.ID, true))

	active, err := f.projects.ListProjects(f.ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	archived, err := f.projects.ListArchived(f.ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, project.ID, archived[0].ID)

	// archiving is per member
	bobs, err := f.projects.ListProjects(f.ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, bobs, 1)

	require.NoError(t, f.projects.SetArchived(f.ctx, alice.ID, project.ID, false))
	active, err = f.projects.ListProjects(f.ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	fav, err := f.projects.ToggleFavorite(f.ctx, bob.ID, project.ID)
	require.NoError(t, err)
	assert.True(t, fav)
	fav, err = f.projects.ToggleFavorite(f.ctx, bob.ID, project.ID)
	require.NoError(t, err)
	assert.False(t, fav)

	outsider := f.user("Eve", "Noir")
	_, err = f.projects.ToggleFavorite(f.ctx, outsider.ID, project.ID)
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestDeleteProjectCascades(t *testing.T) {
	f := newFixture(t)
	alice := f.user("Alice", "Martin")
	bob := f.user("Bob", "Durand")
	project := f.project(alice, "Launch")
	bobMember := f.invite(alice, project, bob, models.RoleManager)

	other := f.project(alice, "Untouched")
	keep := f.task(alice, other, "Keep me", time.Now().UTC(), alice)

	var taskIDs []string
	for _, title := range []string{"One", "Two", "Three"} {
		task := f.task(alice, project, title, time.Now().UTC().Add(time.Hour), alice, bob)
		taskIDs = append(taskIDs, task.ID)
		for i := 0; i < 2; i++ {
			_, err := f.tasks.AddComment(f.ctx, alice.ID, task.ID, dto.CommentRequest{
				Content:            "ping",
				MentionedMemberIDs: []string{bobMember.ID},
			})
			require.NoError(t, err)
		}
	}
	_, err := f.tasks.UploadAttachment(f.ctx, bob.ID, taskIDs[0], fileHeader(t, "plan.pdf", "application/pdf", []byte("%PDF")))
	require.NoError(t, err)

	assert.True(t, errors.Is(f.projects.DeleteProject(f.ctx, bob.ID, project.ID), ErrForbidden))
	require.NoError(t, f.projects.DeleteProject(f.ctx, alice.ID, project.ID))

	assert.Zero(t, f.count(&models.Project{}, "id = ?", project.ID))
	assert.Zero(t, f.count(&models.ProjectMember{}, "project_id = ?", project.ID))
	assert.Zero(t, f.count(&models.ProjectTask{}, "id IN ?", taskIDs))
	assert.Zero(t, f.count(&models.TaskAssignment{}, "task_id IN ?", taskIDs))
	assert.Zero(t, f.count(&models.Comment{}, "task_id IN ?", taskIDs))
	assert.Zero(t, f.count(&models.CommentMention{}, ""))
	assert.Zero(t, f.count(&models.ProjectFile{}, "task_id IN ?", taskIDs))

	// the file row survives detached
	assert.EqualValues(t, 1, f.count(&models.ProjectFile{}, "task_id IS NULL AND project_member_id IS NULL"))

	// other projects are untouched
	assert.EqualValues(t, 1, f.count(&models.TaskAssignment{}, "task_id = ?", keep.ID))

	assert.True(t, errors.Is(f.projects.DeleteProject(f.ctx, alice.ID, project.ID), ErrNotFound))
}
