package controllers

import (
	"net/http"

	"github.com/angelmondragon/giftstore-backend/api/responses"
	"github.com/angelmondragon/giftstore-backend/api/validators"
	"github.com/angelmondragon/giftstore-backend/internal/stores"
	pkgerrors "github.com/angelmondragon/giftstore-backend/pkg/errors"
	"github.com/angelmondragon/giftstore-backend/pkg/logger"
)

type changeStoreStatusRequest struct {
	StoreID string `json:"storeId" validate:"max=64"`
	Status  string `json:"status" validate:"max=32"`
}

type updateStoreRequest struct {
	StoreID     string `json:"storeId" validate:"max=64"`
	StoreName   string `json:"storeName" validate:"max=200"`
	Location    string `json:"location" validate:"max=500"`
	Email       string `json:"email" validate:"max=254"`
	TP          string `json:"tp" validate:"max=32"`
	Description string `json:"description" validate:"max=5000"`
}

func (r updateStoreRequest) toInput() stores.UpdateStoreInput {
	return stores.UpdateStoreInput{
		StoreID:     r.StoreID,
		StoreName:   r.StoreName,
		Location:    r.Location,
		Email:       r.Email,
		TP:          r.TP,
		Description: r.Description,
	}
}

type storeLoginRequest struct {
	Email    string `json:"email" validate:"max=254"`
	Password string `json:"password" validate:"max=128"`
}

// CreateStore handles the multipart store registration form.
func CreateStore(svc stores.Service, logg *logger.Logger, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		form, err := validators.ParseForm(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer form.Close()

		store, err := svc.Create(r.Context(), stores.CreateStoreInput{
			StoreName:       form.Value("storeName"),
			Location:        form.Value("location"),
			Email:           form.Value("email"),
			Password:        form.RawValue("password"),
			TP:              form.Value("tp"),
			Status:          form.Value("status"),
			Description:     form.Value("description"),
			Propic:          form.File("propic"),
			BackgroundImage: form.File("backgroundImage"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteStore(w, http.StatusCreated, store)
	}
}

// ViewStores returns every store; clients filter by status themselves.
func ViewStores(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, list)
	}
}

func GetStore(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.RequirePathParam(r, "storeId", "Store ID is required")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, store)
	}
}

func ChangeStoreStatus(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req changeStoreStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store, err := svc.ChangeStatus(r.Context(), req.StoreID, req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteStore(w, http.StatusOK, store)
	}
}

func UpdateStore(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateStoreRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store, err := svc.UpdateDetails(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteStore(w, http.StatusOK, store)
	}
}

// StoreLogin checks store admin credentials and returns the store on success.
func StoreLogin(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req storeLoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteStore(w, http.StatusOK, store)
	}
}
