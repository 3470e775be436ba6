package stores

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KrikINS/floor-ready/internal/core/identity"
	"github.com/KrikINS/floor-ready/internal/data/db"
)

// MemberStore implements identity.MemberStore using SQLite.
type MemberStore struct {
	db *db.DB
}

var _ identity.MemberStore = (*MemberStore)(nil)

// NewMemberStore creates a new SQLite-backed member store.
func NewMemberStore(db *db.DB) *MemberStore {
	return &MemberStore{db: db}
}

// Create persists a new member. Emails are compared case-insensitively.
func (s *MemberStore) Create(ctx context.Context, m *identity.Member) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))

	err := s.db.Conn(ctx).Create(&db.MemberRow{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		AvatarURL: m.AvatarURL,
		Role:      string(m.Role),
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
	}).Error
	if isUniqueConstraintError(err) {
		return identity.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

// Get returns a member by ID.
func (s *MemberStore) Get(ctx context.Context, id string) (identity.Member, error) {
	var row db.MemberRow
	err := s.db.Conn(ctx).First(&row, "id = ?", id).Error
	if IsNotFoundError(err) {
		return identity.Member{}, identity.ErrNotFound
	}
	if err != nil {
		return identity.Member{}, fmt.Errorf("failed to get member: %w", err)
	}
	return rowToMember(row), nil
}

// List returns all members ordered by name.
func (s *MemberStore) List(ctx context.Context) ([]identity.Member, error) {
	var rows []db.MemberRow
	if err := s.db.Conn(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	out := make([]identity.Member, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToMember(r))
	}
	return out, nil
}

// UpdateStatus changes a member's membership status.
func (s *MemberStore) UpdateStatus(ctx context.Context, id string, status identity.Status) error {
	res := s.db.Conn(ctx).Model(&db.MemberRow{}).Where("id = ?", id).Update("status", string(status))
	if res.Error != nil {
		return fmt.Errorf("failed to update member status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return identity.ErrNotFound
	}
	return nil
}

func rowToMember(r db.MemberRow) identity.Member {
	return identity.Member{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		AvatarURL: r.AvatarURL,
		Role:      identity.Role(r.Role),
		Status:    identity.Status(r.Status),
		CreatedAt: r.CreatedAt,
	}
}
