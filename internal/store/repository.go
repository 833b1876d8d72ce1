package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() Users             { return &gormUsers{db: s.db} }
func (s *gormStore) ResetTokens() ResetTokens { return &gormResetTokens{db: s.db} }
func (s *gormStore) Sessions() Sessions       { return &gormSessions{db: s.db} }

func wrapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

type gormUsers struct {
	db *gorm.DB
}

func (r *gormUsers) Create(user *User) error {
	return wrapErr(r.db.Create(user).Error)
}

func (r *gormUsers) ByID(id uint) (*User, error) {
	var user User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &user, nil
}

func (r *gormUsers) ByUsername(username string) (*User, error) {
	var user User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &user, nil
}

func (r *gormUsers) ByEmail(email string) (*User, error) {
	var user User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &user, nil
}

func (r *gormUsers) UpdatePasswordHash(id uint, hash string) error {
	return wrapErr(r.db.Model(&User{}).Where("id = ?", id).
		Update("password_hash", hash).Error)
}

func (r *gormUsers) UpdateLockout(id uint, failedCount int, lockedUntil *time.Time) error {
	return wrapErr(r.db.Model(&User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"failed_login_count": failedCount,
			"locked_until":       lockedUntil,
		}).Error)
}

type gormResetTokens struct {
	db *gorm.DB
}

func (r *gormResetTokens) Put(token *ResetToken) error {
	return wrapErr(r.db.Create(token).Error)
}

func (r *gormResetTokens) ByHash(hash string) (*ResetToken, error) {
	var token ResetToken
	if err := r.db.Where("token_hash = ?", hash).First(&token).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &token, nil
}

func (r *gormResetTokens) MarkConsumed(id uint, at time.Time) error {
	return wrapErr(r.db.Model(&ResetToken{}).Where("id = ?", id).
		Update("consumed_at", at).Error)
}

func (r *gormResetTokens) DeleteForUser(userID uint) error {
	return wrapErr(r.db.Where("user_id = ?", userID).Delete(&ResetToken{}).Error)
}

func (r *gormResetTokens) DeleteExpired(before time.Time) error {
	return wrapErr(r.db.Where("expires_at < ?", before).Delete(&ResetToken{}).Error)
}

type gormSessions struct {
	db *gorm.DB
}

func (r *gormSessions) Put(session *Session) error {
	return wrapErr(r.db.Create(session).Error)
}

func (r *gormSessions) Get(token string) (*Session, error) {
	var session Session
	if err := r.db.Where("token = ?", token).First(&session).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &session, nil
}

func (r *gormSessions) UpdateLastSeen(token string, at time.Time) error {
	return wrapErr(r.db.Model(&Session{}).Where("token = ?", token).
		Update("last_seen_at", at).Error)
}

func (r *gormSessions) Delete(token string) error {
	return wrapErr(r.db.Where("token = ?", token).Delete(&Session{}).Error)
}

func (r *gormSessions) DeleteExpired(before time.Time) error {
	return wrapErr(r.db.Where("last_seen_at < ?", before).Delete(&Session{}).Error)
}
