package authz

import (
	"testing"

	"github.com/collabsphere-dev/collabsphere/internal/models"
)

func workspace(ownerID uint, members ...models.WorkspaceMembership) models.Workspace {
	return models.Workspace{OwnerID: ownerID, Memberships: members}
}

func member(userID uint, role string) models.WorkspaceMembership {
	return models.WorkspaceMembership{UserID: userID, Role: role}
}

func TestCanManageWorkspace(t *testing.T) {
	cases := []struct {
		name      string
		actorID   uint
		workspace models.Workspace
		allow     bool
	}{
		{
			name:      "owner listed as admin member",
			actorID:   1,
			workspace: workspace(1, member(1, models.RoleAdmin)),
			allow:     true,
		},
		{
			name:      "owner not in members list",
			actorID:   1,
			workspace: workspace(1),
			allow:     true,
		},
		{
			name:      "owner demoted to plain member",
			actorID:   1,
			workspace: workspace(1, member(1, models.RoleMember)),
			allow:     true,
		},
		{
			name:      "admin member who is not owner",
			actorID:   2,
			workspace: workspace(1, member(1, models.RoleAdmin), member(2, models.RoleAdmin)),
			allow:     true,
		},
		{
			name:      "plain member",
			actorID:   2,
			workspace: workspace(1, member(1, models.RoleAdmin), member(2, models.RoleMember)),
			allow:     false,
		},
		{
			name:      "non-member",
			actorID:   3,
			workspace: workspace(1, member(1, models.RoleAdmin), member(2, models.RoleMember)),
			allow:     false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanManageWorkspace(tc.actorID, tc.workspace); got != tc.allow {
				t.Fatalf("CanManageWorkspace(%d) = %v, want %v", tc.actorID, got, tc.allow)
			}
		})
	}
}

func TestIsWorkspaceMemberDoesNotImplyOwner(t *testing.T) {
	ws := workspace(1, member(2, models.RoleMember))

	if IsWorkspaceMember(1, ws) {
		t.Fatal("owner outside the members list must not count as a member")
	}
	if !IsWorkspaceMember(2, ws) {
		t.Fatal("listed member not recognized")
	}
}

func TestIsProjectMember(t *testing.T) {
	project := models.Project{
		Memberships: []models.ProjectMembership{
			{UserID: 1},
			{UserID: 2},
		},
	}

	if !IsProjectMember(1, project) || !IsProjectMember(2, project) {
		t.Fatal("listed project members not recognized")
	}
	if IsProjectMember(3, project) {
		t.Fatal("non-member recognized as project member")
	}
}

func TestCanDeleteProjectRequiresWorkspaceRights(t *testing.T) {
	ws := workspace(1, member(1, models.RoleAdmin), member(2, models.RoleMember))
	project := models.Project{
		Memberships: []models.ProjectMembership{{UserID: 2}},
	}

	// A project member without workspace-admin rights can mutate tasks but
	// not delete the project itself.
	if !CanMutateTask(2, project) {
		t.Fatal("project member should be able to mutate tasks")
	}
	if CanDeleteProject(2, ws) {
		t.Fatal("plain workspace member must not delete projects")
	}
	if !CanDeleteProject(1, ws) {
		t.Fatal("workspace owner must be able to delete projects")
	}
}
