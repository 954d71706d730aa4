package settings

import (
	"time"

	"github.com/medkitstore/medkit-backend/pkg/db/models"
)

// SettingsDTO is the full settings payload returned to admins. Public
// storefront reads use a narrower shape that omits the bank columns.
type SettingsDTO struct {
	StoreName        string `json:"store_name"`
	StoreEmail       string `json:"store_email"`
	StorePhone       string `json:"store_phone"`
	StoreAddress     string `json:"store_address"`
	StoreDescription string `json:"store_description"`
	LogoURI          string `json:"logo_uri"`

	BankName            string `json:"bank_name"`
	BankAccountName     string `json:"bank_account_name"`
	BankAccountNumber   string `json:"bank_account_number"`
	PaymentInstructions string `json:"payment_instructions"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewSettingsDTO builds the admin payload from the singleton row.
func NewSettingsDTO(row *models.Settings) *SettingsDTO {
	return &SettingsDTO{
		StoreName:           row.StoreName,
		StoreEmail:          row.StoreEmail,
		StorePhone:          row.StorePhone,
		StoreAddress:        row.StoreAddress,
		StoreDescription:    row.StoreDescription,
		LogoURI:             row.LogoURI,
		BankName:            row.BankName,
		BankAccountName:     row.BankAccountName,
		BankAccountNumber:   row.BankAccountNumber,
		PaymentInstructions: row.PaymentInstructions,
		UpdatedAt:           row.UpdatedAt,
	}
}
