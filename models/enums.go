package models

import (
	"strings"

	"github.com/pkg/errors"
)

// Role is the privilege a user holds inside one project
type Role string

const (
	RoleOwner        Role = "Owner"
	RoleManager      Role = "Manager"
	RoleCollaborator Role = "Collaborator"
	RoleViewer       Role = "Viewer"
)

// ProjectStatus tracks the lifecycle of a project
type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "NotStarted"
	ProjectInProgress ProjectStatus = "InProgress"
	ProjectCompleted  ProjectStatus = "Completed"
)

// TaskStatus tracks the lifecycle of a task
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "NotStarted"
	TaskInProgress TaskStatus = "InProgress"
	TaskCompleted  TaskStatus = "Completed"
)

// Priority of a task
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

var (
	roles           = []Role{RoleOwner, RoleManager, RoleCollaborator, RoleViewer}
	projectStatuses = []ProjectStatus{ProjectNotStarted, ProjectInProgress, ProjectCompleted}
	taskStatuses    = []TaskStatus{TaskNotStarted, TaskInProgress, TaskCompleted}
	priorities      = []Priority{PriorityLow, PriorityMedium, PriorityHigh}
	ErrUnknownValue = errors.New("unknown enumeration value")
)

// normalize drops case, blanks and separators so "in progress" matches InProgress
func normalize(value string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(value)))
}

// ParseRole parses a role name case-insensitively
func ParseRole(value string) (Role, error) {
	for _, r := range roles {
		if normalize(string(r)) == normalize(value) {
			return r, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownValue, "role %q", value)
}

// ParseProjectStatus parses a project status case-insensitively
func ParseProjectStatus(value string) (ProjectStatus, error) {
	for _, s := range projectStatuses {
		if normalize(string(s)) == normalize(value) {
			return s, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownValue, "project status %q", value)
}

// ParseTaskStatus parses a task status case-insensitively
func ParseTaskStatus(value string) (TaskStatus, error) {
	for _, s := range taskStatuses {
		if normalize(string(s)) == normalize(value) {
			return s, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownValue, "task status %q", value)
}

// ParsePriority parses a priority case-insensitively
func ParsePriority(value string) (Priority, error) {
	for _, p := range priorities {
		if normalize(string(p)) == normalize(value) {
			return p, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownValue, "priority %q", value)
}

// CanEditProject is true for Owner and Manager
func (r Role) CanEditProject() bool {
	return r == RoleOwner || r == RoleManager
}

// CanDeleteProject is true for Owner only
func (r Role) CanDeleteProject() bool {
	return r == RoleOwner
}

// CanManageMembers covers inviting and removing members
func (r Role) CanManageMembers() bool {
	return r == RoleOwner
}

// CanEditTasks covers editing and deleting tasks
func (r Role) CanEditTasks() bool {
	return r == RoleOwner || r == RoleManager
}

// CanAssignTasks is true for Owner only
func (r Role) CanAssignTasks() bool {
	return r == RoleOwner
}

// CanUpload is false for read-only members
func (r Role) CanUpload() bool {
	return r != RoleViewer && r != ""
}

// CanLeave is false for the Owner
func (r Role) CanLeave() bool {
	return r != RoleOwner
}
