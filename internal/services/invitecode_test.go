package services

import (
	"strings"
	"testing"

	"github.com/huddleup/huddle/backend/internal/models"
)

func TestGenerate_Format(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInviteCodeService(db)

	code, err := svc.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(code) != inviteCodeLength {
		t.Errorf("code length = %d, expected %d", len(code), inviteCodeLength)
	}

	for _, ch := range code {
		if !strings.ContainsRune(inviteCodeAlphabet, ch) {
			t.Errorf("code %q contains %q, not in alphabet", code, ch)
		}
	}
}

func TestGenerate_AlphabetExcludesAmbiguousChars(t *testing.T) {
	for _, ch := range "0O1IL" {
		if strings.ContainsRune(inviteCodeAlphabet, ch) {
			t.Errorf("alphabet should not contain ambiguous character %q", ch)
		}
	}
}

func TestGenerate_ManyCodesAreDistinct(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInviteCodeService(db)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := svc.Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if seen[code] {
			t.Fatalf("Generate() returned duplicate code %q", code)
		}
		seen[code] = true
	}
}

func TestGenerate_SkipsTakenCodes(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInviteCodeService(db)
	admin := createTestUser(t, db, "admin@example.com")

	taken := "ABCDEF"
	group := models.Group{
		Name:        "Taken Code Group",
		MaxCapacity: 5,
		IsPublic:    false,
		AdminID:     admin.ID,
		InviteCode:  &taken,
	}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("failed to seed group: %v", err)
	}

	for i := 0; i < 20; i++ {
		code, err := svc.Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if code == taken {
			t.Fatalf("Generate() returned a code already held by a group")
		}
	}
}

func TestGenerate_BoundedAttempts(t *testing.T) {
	if inviteCodeMaxAttempts < 1 || inviteCodeMaxAttempts > 100 {
		t.Errorf("retry ceiling should be a small constant, got %d", inviteCodeMaxAttempts)
	}
}
