package services

import (
	"crypto/rand"
	"math/big"

	"github.com/huddleup/huddle/backend/internal/models"
	"github.com/huddleup/huddle/backend/pkg/response"
	"gorm.io/gorm"
)

const (
	inviteCodeLength = 6
	// Uppercase alphanumerics minus the ambiguous 0/O/1/I/L.
	inviteCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	// Attempts before giving up. The unique index on groups.invite_code is
	// the correctness backstop; this ceiling only bounds the pre-check loop.
	inviteCodeMaxAttempts = 10
)

// InviteCodeService allocates short unique codes for private groups.
type InviteCodeService struct {
	db *gorm.DB
}

func NewInviteCodeService(db *gorm.DB) *InviteCodeService {
	return &InviteCodeService{db: db}
}

// Generate returns a fresh 6-character invite code not held by any private
// group. After inviteCodeMaxAttempts collisions it fails with an
// Unavailable error instead of retrying forever.
func (s *InviteCodeService) Generate() (string, error) {
	for attempt := 0; attempt < inviteCodeMaxAttempts; attempt++ {
		code, err := randomCode(inviteCodeLength)
		if err != nil {
			return "", err
		}

		var count int64
		if err := s.db.Model(&models.Group{}).
			Where("invite_code = ?", code).
			Count(&count).Error; err != nil {
			return "", err
		}

		if count == 0 {
			return code, nil
		}
	}

	return "", response.NewUnavailable("could not allocate a unique invite code, please retry")
}

func randomCode(length int) (string, error) {
	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
