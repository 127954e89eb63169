package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/collabdesk/backend/internal/models"
)

func TestCreateAsClient_InvitesManagerToOwn(t *testing.T) {
	env := newTestEnv(t)
	client := env.createUser(t, "client@example.com", models.PlanFree)

	project, err := env.projects.CreateAsClient(client, &CreateAsClientRequest{
		ManagerEmail:  "manager@example.com",
		Title:         "Site redesign",
		InitialStatus: "Kickoff next week",
	})
	if err != nil {
		t.Fatalf("CreateAsClient failed: %v", err)
	}

	if project.OwnerID != nil {
		t.Error("project should have no owner until the invite is accepted")
	}

	var member models.ProjectMember
	err = env.db.Where("project_id = ? AND user_id = ?", project.ID, client.ID).First(&member).Error
	if err != nil {
		t.Fatalf("creator should be a member: %v", err)
	}
	if member.Role != models.MemberRoleClient {
		t.Errorf("creator role = %q, expected %q", member.Role, models.MemberRoleClient)
	}

	var invite models.Invite
	if err := env.db.Where("project_id = ?", project.ID).First(&invite).Error; err != nil {
		t.Fatalf("own invite missing: %v", err)
	}
	if invite.Type != models.InviteTypeOwn {
		t.Errorf("invite type = %q, expected %q", invite.Type, models.InviteTypeOwn)
	}

	var reloaded models.Project
	if err := env.db.First(&reloaded, project.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.LastPostID == nil || reloaded.LastStatusID == nil {
		t.Error("initial status should set last post and last status pointers")
	}
}

func TestCreateAsClient_Validation(t *testing.T) {
	env := newTestEnv(t)
	client := env.createUser(t, "client@example.com", models.PlanFree)
	env.createDemoUser(t, "demo@example.com")

	_, err := env.projects.CreateAsClient(client, &CreateAsClientRequest{
		ManagerEmail: "Client@example.com",
		Title:        "Self-managed",
	})
	if !errors.Is(err, ErrSelfAsManager) {
		t.Errorf("expected ErrSelfAsManager, got %v", err)
	}

	_, err = env.projects.CreateAsClient(client, &CreateAsClientRequest{
		ManagerEmail: "demo@example.com",
		Title:        "Demo-managed",
	})
	if !errors.Is(err, ErrDemoAsManager) {
		t.Errorf("expected ErrDemoAsManager, got %v", err)
	}

	_, err = env.projects.CreateAsClient(client, &CreateAsClientRequest{
		ManagerEmail:  "manager@example.com",
		Title:         "Chatty",
		InitialStatus: strings.Repeat("x", models.MaxStatusLength+1),
	})
	if !errors.Is(err, ErrStatusTooLong) {
		t.Errorf("expected ErrStatusTooLong, got %v", err)
	}
}

func TestCreateAsManager_OwnsImmediately(t *testing.T) {
	env := newTestEnv(t)
	manager := env.createUser(t, "manager@example.com", models.PlanStarter)

	project, err := env.projects.CreateAsManager(manager, &CreateAsManagerRequest{
		ClientEmails: []string{"a@example.com", "b@example.com"},
		Title:        "Site redesign",
	})
	if err != nil {
		t.Fatalf("CreateAsManager failed: %v", err)
	}

	if project.OwnerID == nil || *project.OwnerID != manager.ID {
		t.Error("creator should own the project immediately")
	}

	var invites int64
	env.db.Model(&models.Invite{}).
		Where("project_id = ? AND type = ?", project.ID, models.InviteTypeClient).
		Count(&invites)
	if invites != 2 {
		t.Errorf("client invites = %d, expected 2", invites)
	}
}

func TestCreateAsManager_Validation(t *testing.T) {
	env := newTestEnv(t)
	manager := env.createUser(t, "manager@example.com", models.PlanFree)
	env.createDemoUser(t, "demo@example.com")

	_, err := env.projects.CreateAsManager(manager, &CreateAsManagerRequest{
		ClientEmails: []string{"Manager@example.com"},
		Title:        "Own client",
	})
	if !errors.Is(err, ErrSelfAsClient) {
		t.Errorf("expected ErrSelfAsClient, got %v", err)
	}

	_, err = env.projects.CreateAsManager(manager, &CreateAsManagerRequest{
		ClientEmails: []string{"demo@example.com"},
		Title:        "Demo client",
	})
	if !errors.Is(err, ErrDemoAsClient) {
		t.Errorf("expected ErrDemoAsClient, got %v", err)
	}
}

func TestCreateAsManager_QuotaEnforced(t *testing.T) {
	env := newTestEnv(t)
	manager := env.createUser(t, "manager@example.com", models.PlanFree)
	existing := env.createOwnedProject(t, manager, "Existing")

	_, err := env.projects.CreateAsManager(manager, &CreateAsManagerRequest{Title: "Second"})
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	// Finishing the existing project frees the slot.
	if err := env.projects.Finish(manager, existing.ID); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if _, err := env.projects.CreateAsManager(manager, &CreateAsManagerRequest{Title: "Second"}); err != nil {
		t.Errorf("creation should succeed after finishing, got %v", err)
	}
}

func TestProjectEdit_EditorsOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", models.PlanFree)
	manager := env.createUser(t, "manager@example.com", models.PlanFree)
	client := env.createUser(t, "client@example.com", models.PlanFree)

	project := env.createOwnedProject(t, owner, "Site redesign")
	env.addTestMember(t, project, manager, models.MemberRoleManager)
	env.addTestMember(t, project, client, models.MemberRoleClient)

	_, err := env.projects.Edit(client, project.ID, &EditProjectRequest{Title: "Hijacked"})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized for client, got %v", err)
	}

	updated, err := env.projects.Edit(manager, project.ID, &EditProjectRequest{Title: "Renamed"})
	if err != nil {
		t.Fatalf("Edit by manager failed: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Errorf("title = %q, expected %q", updated.Title, "Renamed")
	}
}

func TestProjectFinishRevive_OwnerOnlyWithQuotaRecheck(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", models.PlanFree)
	manager := env.createUser(t, "manager@example.com", models.PlanFree)
	project := env.createOwnedProject(t, owner, "Site redesign")
	env.addTestMember(t, project, manager, models.MemberRoleManager)

	if err := env.projects.Finish(manager, project.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized for manager finish, got %v", err)
	}
	if err := env.projects.Finish(owner, project.ID); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	// Fill the freed slot, then revival must hit the quota.
	env.createOwnedProject(t, owner, "Replacement")
	if err := env.projects.Revive(owner, project.ID); !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded on revive, got %v", err)
	}

	if err := env.db.Delete(&models.Project{}, "title = ?", "Replacement").Error; err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if err := env.projects.Revive(owner, project.ID); err != nil {
		t.Errorf("Revive failed: %v", err)
	}
}

func TestProjectAddMembers_BlockedWhenFinished(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", models.PlanFree)
	project := env.createOwnedProject(t, owner, "Site redesign")

	if err := env.projects.Finish(owner, project.ID); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	_, err := env.projects.AddClients(owner, project.ID, []string{"new@example.com"})
	if !errors.Is(err, ErrProjectFinished) {
		t.Errorf("expected ErrProjectFinished, got %v", err)
	}
}

func TestProjectAddMembers_CreatesTypedInvites(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", models.PlanFree)
	project := env.createOwnedProject(t, owner, "Site redesign")

	created, err := env.projects.AddManagers(owner, project.ID, []string{"helper@example.com"})
	if err != nil {
		t.Fatalf("AddManagers failed: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("created %d invites, expected 1", len(created))
	}
	if created[0].Type != models.InviteTypeManage {
		t.Errorf("invite type = %q, expected %q", created[0].Type, models.InviteTypeManage)
	}
}

func TestProjectRemoveMember_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", models.PlanFree)
	manager := env.createUser(t, "manager@example.com", models.PlanFree)
	client := env.createUser(t, "client@example.com", models.PlanFree)

	project := env.createOwnedProject(t, owner, "Site redesign")
	env.addTestMember(t, project, manager, models.MemberRoleManager)
	env.addTestMember(t, project, client, models.MemberRoleClient)

	if err := env.projects.RemoveClient(manager, project.ID, client.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized for manager, got %v", err)
	}

	if err := env.projects.RemoveClient(owner, project.ID, client.ID); err != nil {
		t.Fatalf("RemoveClient failed: %v", err)
	}
	var count int64
	env.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", project.ID, client.ID).
		Count(&count)
	if count != 0 {
		t.Error("client membership should be removed")
	}
}

func TestProjectDelete_CascadesAndIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", models.PlanFree)
	client := env.createUser(t, "client@example.com", models.PlanFree)
	invitee := env.createUser(t, "invitee@example.com", models.PlanFree)

	project := env.createOwnedProject(t, owner, "Site redesign")
	env.addTestMember(t, project, client, models.MemberRoleClient)
	if _, _, err := env.invites.Create(owner, project, invitee, models.InviteTypeClient); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	post := models.Post{ProjectID: project.ID, AuthorID: owner.ID, Body: "hello", Type: models.PostTypePost}
	if err := env.db.Create(&post).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}

	if err := env.projects.Delete(client, project.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized for client, got %v", err)
	}

	if err := env.projects.Delete(owner, project.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var invites, members, posts int64
	env.db.Model(&models.Invite{}).Where("project_id = ?", project.ID).Count(&invites)
	env.db.Model(&models.ProjectMember{}).Where("project_id = ?", project.ID).Count(&members)
	env.db.Model(&models.Post{}).Where("project_id = ?", project.ID).Count(&posts)
	if invites != 0 || members != 0 || posts != 0 {
		t.Errorf("leftovers after delete: invites=%d members=%d posts=%d", invites, members, posts)
	}

	if err := env.projects.Delete(owner, project.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound on repeat delete, got %v", err)
	}
}

func TestProjectLeave_OwnerCannotLeave(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", models.PlanFree)
	client := env.createUser(t, "client@example.com", models.PlanFree)
	project := env.createOwnedProject(t, owner, "Site redesign")
	env.addTestMember(t, project, client, models.MemberRoleClient)

	if err := env.projects.Leave(owner, project.ID); !errors.Is(err, ErrLeaveAsOwner) {
		t.Errorf("expected ErrLeaveAsOwner, got %v", err)
	}

	if err := env.projects.Leave(client, project.ID); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	var count int64
	env.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", project.ID, client.ID).
		Count(&count)
	if count != 0 {
		t.Error("membership should be removed on leave")
	}
}

func TestProjectListForUser_CoversAllRoles(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", models.PlanStarter)
	member := env.createUser(t, "member@example.com", models.PlanFree)

	env.createOwnedProject(t, owner, "Owned")
	joined := env.createOwnedProject(t, owner, "Joined")
	env.createOwnedProject(t, owner, "Unrelated to member")
	env.addTestMember(t, joined, member, models.MemberRoleClient)

	ownerProjects, err := env.projects.ListForUser(owner.ID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(ownerProjects) != 3 {
		t.Errorf("owner sees %d projects, expected 3", len(ownerProjects))
	}

	memberProjects, err := env.projects.ListForUser(member.ID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(memberProjects) != 1 {
		t.Fatalf("member sees %d projects, expected 1", len(memberProjects))
	}
	if memberProjects[0].ID != joined.ID {
		t.Errorf("member sees project %d, expected %d", memberProjects[0].ID, joined.ID)
	}
}

func TestProjectGetForViewer(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", models.PlanFree)
	outsider := env.createUser(t, "outsider@example.com", models.PlanFree)
	project := env.createOwnedProject(t, owner, "Site redesign")

	if _, err := env.projects.GetForViewer(outsider, project.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized, got %v", err)
	}
	if _, err := env.projects.GetForViewer(owner, project.ID); err != nil {
		t.Errorf("owner should see the project, got %v", err)
	}
	if _, err := env.projects.GetForViewer(owner, 9999); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

// A manager at the free tier creates their single project with a client
// who has never signed up; the lazily created client accepts and lands in
// the client role with no pending invites left.
func TestProjectLifecycle_ManagerCreatedWithLazyClient(t *testing.T) {
	env := newTestEnv(t)
	manager := env.createUser(t, "manager@example.com", models.PlanFree)

	project, err := env.projects.CreateAsManager(manager, &CreateAsManagerRequest{
		ClientEmails: []string{"c@x.com"},
		Title:        "Site redesign",
	})
	if err != nil {
		t.Fatalf("CreateAsManager failed: %v", err)
	}

	client, err := env.users.FindOrCreateByEmail("c@x.com")
	if err != nil {
		t.Fatalf("client should have been lazily created: %v", err)
	}

	invites, err := env.invites.ListForUser(client.ID)
	if err != nil || len(invites) != 1 {
		t.Fatalf("client invites = %d (err %v), expected 1", len(invites), err)
	}
	if err := env.invites.Accept(client, invites[0].ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	roles := NewRoleService(env.db)
	role, err := roles.RoleOf(project, client.ID)
	if err != nil {
		t.Fatalf("RoleOf failed: %v", err)
	}
	if role != RoleClient {
		t.Errorf("client role = %q, expected %q", role, RoleClient)
	}

	var pending int64
	env.db.Model(&models.Invite{}).Where("project_id = ?", project.ID).Count(&pending)
	if pending != 0 {
		t.Errorf("pending invites = %d, expected 0", pending)
	}
}

// Full handoff: a client creates a project, the manager accepts ownership
// and a further client invite lands the invitee as a member.
func TestProjectLifecycle_ClientCreatedHandoff(t *testing.T) {
	env := newTestEnv(t)
	client := env.createUser(t, "client@example.com", models.PlanFree)
	manager := env.createUser(t, "manager@example.com", models.PlanFree)

	project, err := env.projects.CreateAsClient(client, &CreateAsClientRequest{
		ManagerEmail: "manager@example.com",
		Title:        "Site redesign",
	})
	if err != nil {
		t.Fatalf("CreateAsClient failed: %v", err)
	}

	invites, err := env.invites.ListForUser(manager.ID)
	if err != nil || len(invites) != 1 {
		t.Fatalf("manager invites = %d (err %v), expected 1", len(invites), err)
	}
	if err := env.invites.Accept(manager, invites[0].ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	roles := NewRoleService(env.db)
	var reloaded models.Project
	if err := env.db.First(&reloaded, project.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	role, err := roles.RoleOf(&reloaded, manager.ID)
	if err != nil {
		t.Fatalf("RoleOf failed: %v", err)
	}
	if role != RoleOwner {
		t.Errorf("manager role = %q, expected %q", role, RoleOwner)
	}

	role, err = roles.RoleOf(&reloaded, client.ID)
	if err != nil {
		t.Fatalf("RoleOf failed: %v", err)
	}
	if role != RoleClient {
		t.Errorf("client role = %q, expected %q", role, RoleClient)
	}
}
