package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/huddleup/huddle/backend/internal/models"
	"github.com/huddleup/huddle/backend/pkg/response"
	"gorm.io/gorm"
)

// GroupService owns group creation and public-group discovery.
type GroupService struct {
	db    *gorm.DB
	codes *InviteCodeService
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db, codes: NewInviteCodeService(db)}
}

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	MaxCapacity int    `json:"max_capacity" binding:"required,min=1"`
	IsPublic    *bool  `json:"is_public" binding:"required"`
}

type GroupSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type GroupSearchResponse struct {
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Items []GroupSummary `json:"items"`
}

// Create inserts the group together with the creator's admin membership.
// Both rows commit or neither does; a group must never exist without its
// admin membership.
func (s *GroupService) Create(req *CreateGroupRequest, creatorID uint) (*models.Group, error) {
	var count int64
	if err := s.db.Model(&models.Group{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("a group with this name already exists")
	}

	group := models.Group{
		Name:        req.Name,
		Description: req.Description,
		MaxCapacity: req.MaxCapacity,
		IsPublic:    *req.IsPublic,
		AdminID:     creatorID,
	}

	if !group.IsPublic {
		code, err := s.codes.Generate()
		if err != nil {
			return nil, err
		}
		group.InviteCode = &code
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}

		admin := models.Membership{
			UserID:   creatorID,
			GroupID:  group.ID,
			Status:   models.StatusApproved,
			IsAdmin:  true,
			JoinedAt: time.Now(),
		}
		return tx.Create(&admin).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// One of the unique indexes fired inside the transaction: a
			// concurrent create took the name or the invite code, or the
			// creator already holds a membership somewhere. Neither row
			// committed; re-check which constraint it was.
			var taken int64
			s.db.Model(&models.Group{}).Where("name = ?", req.Name).Count(&taken)
			if taken > 0 {
				return nil, response.NewConflict("a group with this name already exists")
			}
			var held int64
			s.db.Model(&models.Membership{}).Where("user_id = ?", creatorID).Count(&held)
			if held > 0 {
				return nil, response.NewConflict("creator already belongs to a group")
			}
			return nil, response.NewConflict("group creation conflicted with a concurrent update, please retry")
		}
		return nil, err
	}

	return &group, nil
}

// SearchPublic returns a page of public groups plus the total count. The two
// reads are separate queries; the total may lag the page under concurrent
// writes, which is acceptable for discovery. Ordering is by creation time
// then id so pagination is stable.
func (s *GroupService) SearchPublic(page, limit int) (*GroupSearchResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var items []GroupSummary
	if err := s.db.Model(&models.Group{}).
		Select("id, name").
		Where("is_public = ?", true).
		Order("created_at ASC, id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Scan(&items).Error; err != nil {
		return nil, err
	}

	var total int64
	if err := s.db.Model(&models.Group{}).
		Where("is_public = ?", true).
		Count(&total).Error; err != nil {
		return nil, err
	}

	return &GroupSearchResponse{
		Total: total,
		Page:  page,
		Limit: limit,
		Items: items,
	}, nil
}
