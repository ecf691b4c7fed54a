// Package authz holds the pure permission predicates. Every function decides
// over an in-memory snapshot (workspace or project with memberships loaded)
// and never touches the store; handlers load the snapshot, then ask.
package authz

import "github.com/collabsphere-dev/collabsphere/internal/models"

// CanManageWorkspace reports whether actorID may mutate the workspace:
// the owner, or any member whose membership role is Admin. The owner check
// is independent of the members list, so demoting the owner's membership
// entry never locks them out.
func CanManageWorkspace(actorID uint, workspace models.Workspace) bool {
	if workspace.OwnerID == actorID {
		return true
	}

	for _, membership := range workspace.Memberships {
		if membership.UserID == actorID && membership.Role == models.RoleAdmin {
			return true
		}
	}

	return false
}

// IsWorkspaceMember reports whether actorID appears in the workspace member
// list with any role. The owner is not implied: creation inserts the owner
// as an Admin member, so in practice owner ⊆ members, but that is a store
// invariant, not something this predicate assumes.
func IsWorkspaceMember(actorID uint, workspace models.Workspace) bool {
	for _, membership := range workspace.Memberships {
		if membership.UserID == actorID {
			return true
		}
	}

	return false
}

// IsProjectMember reports whether actorID appears in the project member list.
func IsProjectMember(actorID uint, project models.Project) bool {
	for _, membership := range project.Memberships {
		if membership.UserID == actorID {
			return true
		}
	}

	return false
}

// CanDeleteProject requires workspace-level management rights over the
// project's workspace. Plain project members cannot delete the project,
// even though they can delete its tasks.
func CanDeleteProject(actorID uint, workspace models.Workspace) bool {
	return CanManageWorkspace(actorID, workspace)
}

// CanMutateProject gates project updates.
func CanMutateProject(actorID uint, project models.Project) bool {
	return IsProjectMember(actorID, project)
}

// CanMutateTask gates task create/update/delete.
func CanMutateTask(actorID uint, project models.Project) bool {
	return IsProjectMember(actorID, project)
}
