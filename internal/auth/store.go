package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already used")
var ErrLinkUsed = errors.New("link already used")

type Store struct {
	DB *gorm.DB
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (s *Store) Create(ctx context.Context, email, passwordHash string, admin bool) (*User, error) {
	u := User{Email: NormalizeEmail(email), PasswordHash: passwordHash, IsAdmin: admin}
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) ByEmail(ctx context.Context, email string) (*User, error) {
	return s.first(ctx, "email = ?", NormalizeEmail(email))
}

func (s *Store) ByID(ctx context.Context, id uint64) (*User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *Store) List(ctx context.Context) ([]User, error) {
	var out []User
	err := s.DB.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}

func (s *Store) SetPassword(ctx context.Context, id uint64, passwordHash string) error {
	res := s.DB.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("password_hash", passwordHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ConsumeLink redeems a link issued at version. Only the first redemption
// succeeds; later ones, and links older than the last redemption, get ErrLinkUsed.
func (s *Store) ConsumeLink(ctx context.Context, id uint64, version int) error {
	res := consumeLink(s.DB.WithContext(ctx), id, version)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLinkUsed
	}
	return nil
}

func consumeLink(tx *gorm.DB, id uint64, version int) *gorm.DB {
	return tx.Model(&User{}).
		Where("id = ? AND link_version = ?", id, version).
		UpdateColumn("link_version", gorm.Expr("link_version + 1"))
}

// IsAdmin satisfies AdminChecker.
func (s *Store) IsAdmin(ctx context.Context, id uint64) (bool, error) {
	u, err := s.ByID(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsAdmin, nil
}

func (s *Store) first(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := s.DB.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
