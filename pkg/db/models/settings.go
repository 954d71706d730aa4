package models

import "time"

// SettingsID is the fixed primary key of the singleton settings row.
const SettingsID = "default"

// Settings is the store-wide configuration singleton. Reads create the row
// with defaults when it is missing.
type Settings struct {
	ID string `gorm:"column:id;primaryKey"`

	StoreName        string `gorm:"column:store_name;not null"`
	StoreEmail       string `gorm:"column:store_email;not null;default:''"`
	StorePhone       string `gorm:"column:store_phone;not null;default:''"`
	StoreAddress     string `gorm:"column:store_address;not null;default:''"`
	StoreDescription string `gorm:"column:store_description;not null;default:''"`
	LogoURI          string `gorm:"column:logo_uri;not null;default:''"`

	BankName            string `gorm:"column:bank_name;not null;default:''"`
	BankAccountName     string `gorm:"column:bank_account_name;not null;default:''"`
	BankAccountNumber   string `gorm:"column:bank_account_number;not null;default:''"`
	PaymentInstructions string `gorm:"column:payment_instructions;not null;default:''"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// DefaultSettings returns the row inserted on first read.
func DefaultSettings() Settings {
	return Settings{
		ID:        SettingsID,
		StoreName: "Medkit Store",
	}
}
