package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnnouncementVisibility(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	cases := []struct {
		name    string
		a       Announcement
		role    UserRole
		visible bool
	}{
		{"null targets reach everyone", Announcement{IsActive: true}, RoleDepartmentHead, true},
		{"empty targets reach everyone", Announcement{IsActive: true, TargetRoles: []string{}}, RoleMayor, true},
		{"member of target set", Announcement{IsActive: true, TargetRoles: []string{"Secretary", "Mayor"}}, RoleMayor, true},
		{"outside target set", Announcement{IsActive: true, TargetRoles: []string{"Secretary"}}, RoleMayor, false},
		{"inactive", Announcement{IsActive: false}, RoleMayor, false},
		{"expired", Announcement{IsActive: true, ExpiresAt: &past}, RoleMayor, false},
		{"expiring exactly now", Announcement{IsActive: true, ExpiresAt: &now}, RoleMayor, true},
		{"expires later", Announcement{IsActive: true, ExpiresAt: &future}, RoleSecretary, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.visible, tc.a.VisibleTo(tc.role, now))
		})
	}

	var missing *Announcement
	assert.False(t, missing.VisibleTo(RoleMayor, now))
}

func TestAnnouncementCanDeactivate(t *testing.T) {
	a := &Announcement{AuthorID: "author"}
	assert.True(t, a.CanDeactivate(&User{ID: "author", Role: RoleSecretary}))
	assert.True(t, a.CanDeactivate(&User{ID: "someone", Role: RoleMayor}))
	assert.False(t, a.CanDeactivate(&User{ID: "someone", Role: RoleDepartmentHead}))
	assert.False(t, a.CanDeactivate(nil))
}

func TestDocumentVisibility(t *testing.T) {
	public := &Document{UploadedBy: "a", IsPublic: true}
	private := &Document{UploadedBy: "a"}

	assert.True(t, public.VisibleTo("b"))
	assert.True(t, private.VisibleTo("a"))
	assert.False(t, private.VisibleTo("b"))

	var missing *Document
	assert.False(t, missing.VisibleTo("a"))
}

func TestTaskHelpers(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	task := Task{AssigneeID: "a", AssignedBy: "b", Status: TaskStatusInProgress, DueDate: &past}

	assert.True(t, task.Overdue(now))
	assert.True(t, task.InvolvesUser("b"))
	assert.False(t, task.InvolvesUser("c"))

	task.Status = TaskStatusCompleted
	assert.False(t, task.Overdue(now))

	assert.Greater(t, TaskPriorityUrgent.Rank(), TaskPriorityHigh.Rank())
	assert.False(t, TaskPriority("Critical").Valid())
	assert.True(t, TaskStatus("In Progress").Valid())
	assert.False(t, UserRole("Janitor").Valid())
	assert.True(t, CategoryPublicWorks.Valid())
}
