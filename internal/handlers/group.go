package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/huddleup/huddle/backend/internal/middleware"
	"github.com/huddleup/huddle/backend/internal/services"
	"github.com/huddleup/huddle/backend/pkg/response"
	"gorm.io/gorm"
)

type GroupHandler struct {
	groups      *services.GroupService
	memberships *services.MembershipService
}

func NewGroupHandler(db *gorm.DB) *GroupHandler {
	return &GroupHandler{
		groups:      services.NewGroupService(db),
		memberships: services.NewMembershipService(db),
	}
}

// Create creates a group; the caller becomes its admin.
// POST /api/groups
func (h *GroupHandler) Create(c *gin.Context) {
	var req services.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	group, err := h.groups.Create(&req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{
		"id":           group.ID,
		"name":         group.Name,
		"description":  group.Description,
		"max_capacity": group.MaxCapacity,
		"is_public":    group.IsPublic,
		"invite_code":  group.InviteCodeDisplay(),
		"admin_id":     group.AdminID,
		"created_at":   group.CreatedAt,
	})
}

// Search lists public groups, paginated.
// GET /api/groups/search?page=1&limit=10
func (h *GroupHandler) Search(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	resp, err := h.groups.SearchPublic(page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// RequestJoin files a pending join request for a public group.
// POST /api/groups/:id/join
func (h *GroupHandler) RequestJoin(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid group id")
		return
	}

	ack, err := h.memberships.RequestJoin(uint(groupID), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, ack)
}

type joinByCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// JoinByCode joins a private group with an invite code.
// POST /api/groups/join-by-code
func (h *GroupHandler) JoinByCode(c *gin.Context) {
	var req joinByCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ack, err := h.memberships.JoinWithCode(req.Code, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, ack)
}

// Members lists a group's members. Group admin only.
// GET /api/groups/:id/members
func (h *GroupHandler) Members(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid group id")
		return
	}

	resp, err := h.memberships.Members(uint(groupID), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

type updateMemberStatusRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
}

// UpdateMemberStatus approves or rejects a pending member. Group admin only.
// PATCH /api/groups/members/:id/status
func (h *GroupHandler) UpdateMemberStatus(c *gin.Context) {
	membershipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid membership id")
		return
	}

	var req updateMemberStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "action must be either 'approve' or 'reject'")
		return
	}

	msg, err := h.memberships.UpdateStatus(uint(membershipID), req.Action, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": msg})
}

// RemoveMember deletes a membership of any status. Group admin only.
// DELETE /api/groups/members/:id
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	membershipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid membership id")
		return
	}

	msg, err := h.memberships.Remove(uint(membershipID), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": msg})
}
