package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/collabdesk/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	testDBSeq   int
	testDBSeqMu sync.Mutex
)

// setupTestDB opens a fresh in-memory sqlite database with the full schema.
// Each call gets its own named shared-cache database so parallel tests do
// not see each other's rows.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBSeqMu.Lock()
	testDBSeq++
	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", testDBSeq)
	testDBSeqMu.Unlock()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Invite{},
		&models.Post{},
		&models.RefreshToken{},
		&models.SystemConfig{},
		&models.SystemLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// stubNotifier records notification calls instead of delivering anything.
type stubNotifier struct {
	mu      sync.Mutex
	invited []uint
	posts   []uint
}

func (n *stubNotifier) NotifyInvited(invitee *models.User, project *models.Project, inviteType string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invited = append(n.invited, invitee.ID)
}

func (n *stubNotifier) NotifyNewPost(project *models.Project, post *models.Post) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.posts = append(n.posts, post.ID)
}

func (n *stubNotifier) invitedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.invited)
}

func (n *stubNotifier) postCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.posts)
}

// testEnv wires the service graph against one test database.
type testEnv struct {
	db       *gorm.DB
	notifier *stubNotifier
	users    *UserService
	invites  *InviteService
	projects *ProjectService
	posts    *PostService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	notifier := &stubNotifier{}
	users := NewUserService(db, NewLocalBillingProvider())
	invites := NewInviteService(db, users, notifier)

	return &testEnv{
		db:       db,
		notifier: notifier,
		users:    users,
		invites:  invites,
		projects: NewProjectService(db, users, invites),
		posts:    NewPostService(db, notifier),
	}
}

func (e *testEnv) createUser(t *testing.T, email string, planTier int) *models.User {
	t.Helper()
	user := models.User{Email: email, PlanTier: planTier}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return &user
}

func (e *testEnv) createDemoUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := models.User{Email: email, IsDemo: true}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create demo user %s: %v", email, err)
	}
	return &user
}

// createOwnedProject inserts a project owned by the given user.
func (e *testEnv) createOwnedProject(t *testing.T, owner *models.User, title string) *models.Project {
	t.Helper()
	ownerID := owner.ID
	project := models.Project{Title: title, OwnerID: &ownerID}
	if err := e.db.Create(&project).Error; err != nil {
		t.Fatalf("failed to create project %s: %v", title, err)
	}
	return &project
}

// addTestMember inserts a membership row directly.
func (e *testEnv) addTestMember(t *testing.T, project *models.Project, user *models.User, role string) {
	t.Helper()
	member := models.ProjectMember{ProjectID: project.ID, UserID: user.ID, Role: role}
	if err := e.db.Create(&member).Error; err != nil {
		t.Fatalf("failed to add member: %v", err)
	}
}
