package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/huddleup/huddle/backend/internal/models"
	"github.com/huddleup/huddle/backend/pkg/response"
	"gorm.io/gorm"
)

// Member status actions accepted by UpdateStatus.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// MembershipService is the capacity- and state-aware core of the group
// lifecycle: join requests, invite-code joins, approval, rejection, removal.
// Every mutation that depends on a capacity or membership read runs inside a
// serializable transaction so concurrent joins cannot both see free capacity
// and commit.
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

type JoinAck struct {
	Message string `json:"message"`
	GroupID uint   `json:"group_id"`
}

type MemberInfo struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	MembershipID uint   `json:"membership_id"`
	Status       string `json:"status"`
}

type MemberListResponse struct {
	GroupName string       `json:"group_name"`
	Members   []MemberInfo `json:"members"`
}

var serializable = &sql.TxOptions{Isolation: sql.LevelSerializable}

// RequestJoin files a pending membership for a public group.
func (s *MembershipService) RequestJoin(groupID, userID uint) (*JoinAck, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("group not found")
			}
			return err
		}

		if !group.IsPublic {
			return response.NewForbidden("cannot join a private group without an invite code")
		}

		if err := s.checkEligibility(tx, &group, userID); err != nil {
			return err
		}

		membership := models.Membership{
			UserID:   userID,
			GroupID:  groupID,
			Status:   models.StatusPending,
			IsAdmin:  false,
			JoinedAt: time.Now(),
		}
		return tx.Create(&membership).Error
	}, serializable)

	if err != nil {
		return nil, translateJoinError(err)
	}

	return &JoinAck{Message: "request to join group sent successfully", GroupID: groupID}, nil
}

// JoinWithCode joins a private group directly; invite-code entry skips the
// pending stage. Public groups store no invite code, so their placeholder
// can never match here.
func (s *MembershipService) JoinWithCode(code string, userID uint) (*JoinAck, error) {
	var groupID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.Where("invite_code = ? AND is_public = ?", code, false).
			First(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("invalid invite code")
			}
			return err
		}

		if err := s.checkEligibility(tx, &group, userID); err != nil {
			return err
		}

		membership := models.Membership{
			UserID:   userID,
			GroupID:  group.ID,
			Status:   models.StatusApproved,
			IsAdmin:  false,
			JoinedAt: time.Now(),
		}
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}

		groupID = group.ID
		return nil
	}, serializable)

	if err != nil {
		return nil, translateJoinError(err)
	}

	return &JoinAck{Message: "joined group successfully", GroupID: groupID}, nil
}

// checkEligibility enforces the two join preconditions: a user holds at most
// one membership system-wide, and the group has free capacity. The capacity
// check counts rows of every status, pending requests hold a slot until
// rejected.
func (s *MembershipService) checkEligibility(tx *gorm.DB, group *models.Group, userID uint) error {
	var existing int64
	if err := tx.Model(&models.Membership{}).
		Where("user_id = ?", userID).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return response.NewBadRequest("user already belongs to a group")
	}

	var occupied int64
	if err := tx.Model(&models.Membership{}).
		Where("group_id = ?", group.ID).
		Count(&occupied).Error; err != nil {
		return err
	}
	if occupied >= int64(group.MaxCapacity) {
		return response.NewBadRequest("group has reached maximum capacity")
	}

	return nil
}

// translateJoinError maps unique-index violations (races the serializable
// transaction lost) to the same outcome the pre-checks produce.
func translateJoinError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return response.NewBadRequest("user already belongs to a group")
	}
	return err
}

// UpdateStatus approves or rejects a pending membership. Approval re-checks
// capacity against the approved count at approval time; rejection deletes
// the row outright.
func (s *MembershipService) UpdateStatus(membershipID uint, action string, adminID uint) (string, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		membership, group, err := s.membershipWithGroup(tx, membershipID)
		if err != nil {
			return err
		}
		if group.AdminID != adminID {
			return response.NewForbidden("you are not the admin of this group")
		}

		switch action {
		case ActionApprove:
			var approved int64
			if err := tx.Model(&models.Membership{}).
				Where("group_id = ? AND status = ?", group.ID, models.StatusApproved).
				Count(&approved).Error; err != nil {
				return err
			}
			if approved >= int64(group.MaxCapacity) {
				return response.NewBadRequest("group is full")
			}
			return tx.Model(membership).Update("status", models.StatusApproved).Error
		case ActionReject:
			return tx.Delete(membership).Error
		default:
			return response.NewBadRequest("action must be either 'approve' or 'reject'")
		}
	}, serializable)

	if err != nil {
		return "", err
	}

	if action == ActionApprove {
		return "member approved", nil
	}
	return "member rejected", nil
}

// Remove deletes a membership regardless of its status.
func (s *MembershipService) Remove(membershipID, adminID uint) (string, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		membership, group, err := s.membershipWithGroup(tx, membershipID)
		if err != nil {
			return err
		}
		if group.AdminID != adminID {
			return response.NewForbidden("only the group admin can remove members")
		}
		return tx.Delete(membership).Error
	}, serializable)

	if err != nil {
		return "", err
	}

	return "member removed successfully", nil
}

// Members lists a group's members with identity display fields. Admin only.
// Pending and approved members are both listed; callers distinguish them by
// the status field.
func (s *MembershipService) Members(groupID, requesterID uint) (*MemberListResponse, error) {
	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("group not found")
		}
		return nil, err
	}
	if group.AdminID != requesterID {
		return nil, response.NewForbidden("access denied")
	}

	var members []MemberInfo
	if err := s.db.Model(&models.Membership{}).
		Select("users.first_name, users.last_name, users.email, members.id AS membership_id, members.status").
		Joins("INNER JOIN users ON users.id = members.user_id").
		Where("members.group_id = ?", groupID).
		Order("members.joined_at ASC, members.id ASC").
		Scan(&members).Error; err != nil {
		return nil, err
	}

	return &MemberListResponse{GroupName: group.Name, Members: members}, nil
}

// IsGroupAdmin reports whether the user holds an admin membership anywhere.
// This backs the coarse route guard; each admin operation above still
// verifies the admin against the specific group, which is the authoritative
// check.
func (s *MembershipService) IsGroupAdmin(userID uint) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Membership{}).
		Where("user_id = ? AND is_admin = ?", userID, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *MembershipService) membershipWithGroup(tx *gorm.DB, membershipID uint) (*models.Membership, *models.Group, error) {
	var membership models.Membership
	if err := tx.First(&membership, membershipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewNotFound("member not found")
		}
		return nil, nil, err
	}

	var group models.Group
	if err := tx.First(&group, membership.GroupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewNotFound("group not found")
		}
		return nil, nil, err
	}

	return &membership, &group, nil
}
