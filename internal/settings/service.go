package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/medkitstore/medkit-backend/pkg/db"
	"github.com/medkitstore/medkit-backend/pkg/db/models"
	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
)

// StoreInfoInput carries a partial store-info update; nil fields are left
// as-is.
type StoreInfoInput struct {
	StoreName        *string
	StoreEmail       *string
	StorePhone       *string
	StoreAddress     *string
	StoreDescription *string
	LogoURI          *string
}

// BankInfoInput carries a partial bank-details update; nil fields are left
// as-is.
type BankInfoInput struct {
	BankName            *string
	BankAccountName     *string
	BankAccountNumber   *string
	PaymentInstructions *string
}

// Service exposes the store-wide settings singleton.
type Service interface {
	Get(ctx context.Context) (*models.Settings, error)
	UpdateStoreInfo(ctx context.Context, input StoreInfoInput) (*models.Settings, error)
	UpdateBankInfo(ctx context.Context, input BankInfoInput) (*models.Settings, error)
}

type service struct {
	db *gorm.DB
}

// NewService builds a settings service on the provided GORM DB.
func NewService(conn *gorm.DB) (Service, error) {
	if conn == nil {
		return nil, fmt.Errorf("database connection required")
	}
	return &service{db: conn}, nil
}

// Get returns the singleton row, creating it with defaults on first read. The
// fixed primary key turns a create race into a unique violation, which loses
// to the concurrent writer and re-reads.
func (s *service) Get(ctx context.Context) (*models.Settings, error) {
	var row models.Settings
	err := s.db.WithContext(ctx).First(&row, "id = ?", models.SettingsID).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settings")
	}

	defaults := models.DefaultSettings()
	if err := s.db.WithContext(ctx).Create(&defaults).Error; err != nil {
		if !db.IsUniqueViolation(err, "settings") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create settings")
		}
		if err := s.db.WithContext(ctx).First(&row, "id = ?", models.SettingsID).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload settings")
		}
		return &row, nil
	}
	return &defaults, nil
}

func (s *service) UpdateStoreInfo(ctx context.Context, input StoreInfoInput) (*models.Settings, error) {
	row, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if input.StoreName != nil {
		name := strings.TrimSpace(*input.StoreName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name cannot be blank")
		}
		row.StoreName = name
	}
	if input.StoreEmail != nil {
		row.StoreEmail = strings.TrimSpace(*input.StoreEmail)
	}
	if input.StorePhone != nil {
		row.StorePhone = strings.TrimSpace(*input.StorePhone)
	}
	if input.StoreAddress != nil {
		row.StoreAddress = strings.TrimSpace(*input.StoreAddress)
	}
	if input.StoreDescription != nil {
		row.StoreDescription = strings.TrimSpace(*input.StoreDescription)
	}
	if input.LogoURI != nil {
		row.LogoURI = strings.TrimSpace(*input.LogoURI)
	}

	return s.save(ctx, row)
}

func (s *service) UpdateBankInfo(ctx context.Context, input BankInfoInput) (*models.Settings, error) {
	row, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if input.BankName != nil {
		row.BankName = strings.TrimSpace(*input.BankName)
	}
	if input.BankAccountName != nil {
		row.BankAccountName = strings.TrimSpace(*input.BankAccountName)
	}
	if input.BankAccountNumber != nil {
		row.BankAccountNumber = strings.TrimSpace(*input.BankAccountNumber)
	}
	if input.PaymentInstructions != nil {
		row.PaymentInstructions = strings.TrimSpace(*input.PaymentInstructions)
	}

	return s.save(ctx, row)
}

func (s *service) save(ctx context.Context, row *models.Settings) (*models.Settings, error) {
	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save settings")
	}
	return row, nil
}
