package controllers

import (
	"net/http"

	"github.com/angelmondragon/giftstore-backend/api/responses"
	"github.com/angelmondragon/giftstore-backend/api/validators"
	"github.com/angelmondragon/giftstore-backend/internal/products"
	"github.com/angelmondragon/giftstore-backend/pkg/logger"
)

type productStatusRequest struct {
	ProductID string `json:"productId" validate:"max=64"`
	Status    string `json:"status" validate:"max=32"`
}

type deleteProductRequest struct {
	ProductID string `json:"productId" validate:"max=64"`
}

// AddProduct handles the multipart product form with up to the configured
// number of images under the "images" field.
func AddProduct(svc products.Service, logg *logger.Logger, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := validators.ParseForm(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer form.Close()

		product, err := svc.Add(r.Context(), products.AddProductInput{
			StoreID:     form.Value("storeId"),
			ProductName: form.Value("productName"),
			Description: form.Value("description"),
			Price:       form.Value("price"),
			Includes:    form.Values("includes"),
			Images:      form.Files("images"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteProduct(w, http.StatusCreated, product)
	}
}

func ViewProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, list)
	}
}

func StoreProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := validators.RequirePathParam(r, "storeId", "Store ID is required")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListByStore(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, list)
	}
}

func GetProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.RequirePathParam(r, "productId", "Product ID is required")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, product)
	}
}

func UpdateProductStatus(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := svc.UpdateStatus(r.Context(), req.ProductID, req.Status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Product status updated successfully")
	}
}

func DeleteProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deleteProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), req.ProductID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Product deleted successfully")
	}
}

// UpdateProduct overwrites a product from the edit form. Images are replaced
// only when files are attached.
func UpdateProduct(svc products.Service, logg *logger.Logger, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := validators.ParseForm(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer form.Close()

		_, err = svc.Update(r.Context(), products.UpdateProductInput{
			ProductID:   form.Value("productId"),
			ProductName: form.Value("productName"),
			Description: form.Value("description"),
			Price:       form.Value("price"),
			Status:      form.Value("status"),
			Includes:    form.Values("includes"),
			Images:      form.Files("images"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Product updated successfully")
	}
}
