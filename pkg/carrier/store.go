package carrier

import (
	"context"
	"errors"
	"time"

	"github.com/devkarki/shopveda-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const accountRowID = 1

// AccountStore persists the carrier token on the singleton account row.
type AccountStore struct {
	db    *gorm.DB
	email string
}

// NewAccountStore builds the gorm-backed token store.
func NewAccountStore(db *gorm.DB, email string) *AccountStore {
	return &AccountStore{db: db, email: email}
}

func (s *AccountStore) LoadToken(ctx context.Context) (string, time.Time, error) {
	var account models.CarrierAccount
	err := s.db.WithContext(ctx).Where("id = ?", accountRowID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", time.Time{}, nil
		}
		return "", time.Time{}, err
	}
	if account.Token == nil {
		return "", time.Time{}, nil
	}
	var expiresAt time.Time
	if account.TokenExpiresAt != nil {
		expiresAt = *account.TokenExpiresAt
	}
	return *account.Token, expiresAt, nil
}

func (s *AccountStore) SaveToken(ctx context.Context, token string, expiresAt time.Time) error {
	account := models.CarrierAccount{
		ID:             accountRowID,
		Email:          s.email,
		Token:          &token,
		TokenExpiresAt: &expiresAt,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "token", "token_expires_at", "updated_at"}),
		}).
		Create(&account).Error
}

func (s *AccountStore) ClearToken(ctx context.Context) error {
	return s.db.WithContext(ctx).
		Model(&models.CarrierAccount{}).
		Where("id = ?", accountRowID).
		Updates(map[string]any{"token": nil, "token_expires_at": nil}).Error
}
