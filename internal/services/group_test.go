package services

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/huddleup/huddle/backend/internal/models"
)

func TestCreate_PublicGroup(t *testing.T) {
	db := setupTestDB(t)
	creator := createTestUser(t, db, "chess@example.com")

	group := createTestGroup(t, db, creator.ID, "Chess Club", 2, true)

	if group.ID == 0 {
		t.Fatal("group should have an id after create")
	}
	if group.InviteCode != nil {
		t.Errorf("public group should store no invite code, got %q", *group.InviteCode)
	}
	if group.InviteCodeDisplay() != models.PublicInviteCode {
		t.Errorf("public group should display the %q placeholder", models.PublicInviteCode)
	}
	if group.AdminID != creator.ID {
		t.Errorf("AdminID = %d, expected %d", group.AdminID, creator.ID)
	}

	// The creator gets an approved admin membership in the same transaction.
	var membership models.Membership
	if err := db.Where("group_id = ?", group.ID).First(&membership).Error; err != nil {
		t.Fatalf("creator membership missing: %v", err)
	}
	if membership.UserID != creator.ID {
		t.Errorf("membership UserID = %d, expected %d", membership.UserID, creator.ID)
	}
	if membership.Status != models.StatusApproved {
		t.Errorf("membership status = %q, expected %q", membership.Status, models.StatusApproved)
	}
	if !membership.IsAdmin {
		t.Error("creator membership should be admin")
	}

	var approved int64
	db.Model(&models.Membership{}).
		Where("group_id = ? AND status = ?", group.ID, models.StatusApproved).
		Count(&approved)
	if approved != 1 {
		t.Errorf("approved count = %d, expected 1", approved)
	}
}

func TestCreate_PrivateGroupGetsInviteCode(t *testing.T) {
	db := setupTestDB(t)
	creator := createTestUser(t, db, "secret@example.com")

	group := createTestGroup(t, db, creator.ID, "Secret Society", 5, false)

	if group.InviteCode == nil {
		t.Fatal("private group should have an invite code")
	}
	if len(*group.InviteCode) != inviteCodeLength {
		t.Errorf("invite code length = %d, expected %d", len(*group.InviteCode), inviteCodeLength)
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGroupService(db)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	createTestGroup(t, db, alice.ID, "Book Club", 10, true)

	public := true
	_, err := svc.Create(&CreateGroupRequest{
		Name:        "Book Club",
		MaxCapacity: 5,
		IsPublic:    &public,
	}, bob.ID)

	assertAppError(t, err, http.StatusConflict)
}

func TestCreate_CreatorAlreadyInGroup(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGroupService(db)
	alice := createTestUser(t, db, "alice@example.com")

	createTestGroup(t, db, alice.ID, "First Group", 10, true)

	public := true
	_, err := svc.Create(&CreateGroupRequest{
		Name:        "Second Group",
		MaxCapacity: 5,
		IsPublic:    &public,
	}, alice.ID)

	appErr := assertAppError(t, err, http.StatusConflict)
	// The conflict is attributed to the creator's existing membership, not to
	// the group name or invite code.
	if appErr.Message != "creator already belongs to a group" {
		t.Errorf("unexpected conflict message: %q", appErr.Message)
	}

	// Rollback must leave no orphan group behind.
	var count int64
	db.Model(&models.Group{}).Where("name = ?", "Second Group").Count(&count)
	if count != 0 {
		t.Error("failed create should not leave a group without its admin membership")
	}
}

func TestCreate_PrivateGroupCodesAreUnique(t *testing.T) {
	db := setupTestDB(t)

	codes := make(map[string]bool)
	for i := 0; i < 10; i++ {
		user := createTestUser(t, db, fmt.Sprintf("user%d@example.com", i))
		group := createTestGroup(t, db, user.ID, fmt.Sprintf("Private %d", i), 3, false)
		if codes[*group.InviteCode] {
			t.Fatalf("invite code %q allocated twice", *group.InviteCode)
		}
		codes[*group.InviteCode] = true
	}
}

func TestSearchPublic_FiltersAndPaginates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGroupService(db)

	for i := 0; i < 5; i++ {
		user := createTestUser(t, db, fmt.Sprintf("pub%d@example.com", i))
		createTestGroup(t, db, user.ID, fmt.Sprintf("Public %d", i), 3, true)
	}
	hidden := createTestUser(t, db, "hidden@example.com")
	createTestGroup(t, db, hidden.ID, "Hidden", 3, false)

	resp, err := svc.SearchPublic(1, 2)
	if err != nil {
		t.Fatalf("SearchPublic() error = %v", err)
	}

	if resp.Total != 5 {
		t.Errorf("Total = %d, expected 5 (private groups excluded)", resp.Total)
	}
	if len(resp.Items) != 2 {
		t.Errorf("page size = %d, expected 2", len(resp.Items))
	}
	if resp.Page != 1 || resp.Limit != 2 {
		t.Errorf("echoed page/limit = %d/%d, expected 1/2", resp.Page, resp.Limit)
	}

	// Stable order: the second page continues where the first left off.
	page2, err := svc.SearchPublic(2, 2)
	if err != nil {
		t.Fatalf("SearchPublic() error = %v", err)
	}
	if len(page2.Items) != 2 {
		t.Fatalf("second page size = %d, expected 2", len(page2.Items))
	}
	if page2.Items[0].ID == resp.Items[0].ID || page2.Items[0].ID == resp.Items[1].ID {
		t.Error("pages should not overlap")
	}
}

func TestSearchPublic_DefaultsInvalidPaging(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGroupService(db)

	resp, err := svc.SearchPublic(0, -1)
	if err != nil {
		t.Fatalf("SearchPublic() error = %v", err)
	}
	if resp.Page != 1 {
		t.Errorf("Page = %d, expected 1", resp.Page)
	}
	if resp.Limit != 10 {
		t.Errorf("Limit = %d, expected 10", resp.Limit)
	}
}
