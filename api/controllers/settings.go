package controllers

import (
	"net/http"

	"github.com/medkitstore/medkit-backend/api/responses"
	"github.com/medkitstore/medkit-backend/api/validators"
	"github.com/medkitstore/medkit-backend/internal/settings"
	"github.com/medkitstore/medkit-backend/pkg/db/models"
	"github.com/medkitstore/medkit-backend/pkg/logger"
)

type storeInfoResponse struct {
	StoreName        string `json:"store_name"`
	StoreEmail       string `json:"store_email"`
	StorePhone       string `json:"store_phone"`
	StoreAddress     string `json:"store_address"`
	StoreDescription string `json:"store_description"`
	LogoURI          string `json:"logo_uri"`
}

func storeInfoFromModel(row *models.Settings) storeInfoResponse {
	return storeInfoResponse{
		StoreName:        row.StoreName,
		StoreEmail:       row.StoreEmail,
		StorePhone:       row.StorePhone,
		StoreAddress:     row.StoreAddress,
		StoreDescription: row.StoreDescription,
		LogoURI:          row.LogoURI,
	}
}

// GetStoreInfo serves the public storefront settings. Bank details only go
// out with checkout sessions.
func GetStoreInfo(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, storeInfoFromModel(row))
	}
}

// AdminGetSettings returns the full settings row, bank details included.
func AdminGetSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings.NewSettingsDTO(row))
	}
}

// UpdateStoreInfo applies a partial store-info update.
func UpdateStoreInfo(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StoreName        *string `json:"store_name,omitempty"`
			StoreEmail       *string `json:"store_email,omitempty"`
			StorePhone       *string `json:"store_phone,omitempty"`
			StoreAddress     *string `json:"store_address,omitempty"`
			StoreDescription *string `json:"store_description,omitempty"`
			LogoURI          *string `json:"logo_uri,omitempty"`
		}
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.UpdateStoreInfo(r.Context(), settings.StoreInfoInput{
			StoreName:        req.StoreName,
			StoreEmail:       req.StoreEmail,
			StorePhone:       req.StorePhone,
			StoreAddress:     req.StoreAddress,
			StoreDescription: req.StoreDescription,
			LogoURI:          req.LogoURI,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings.NewSettingsDTO(row))
	}
}

// UpdateBankInfo applies a partial bank-details update.
func UpdateBankInfo(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BankName            *string `json:"bank_name,omitempty"`
			BankAccountName     *string `json:"bank_account_name,omitempty"`
			BankAccountNumber   *string `json:"bank_account_number,omitempty"`
			PaymentInstructions *string `json:"payment_instructions,omitempty"`
		}
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.UpdateBankInfo(r.Context(), settings.BankInfoInput{
			BankName:            req.BankName,
			BankAccountName:     req.BankAccountName,
			BankAccountNumber:   req.BankAccountNumber,
			PaymentInstructions: req.PaymentInstructions,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings.NewSettingsDTO(row))
	}
}
