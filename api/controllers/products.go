package controllers

import (
	"net/http"
	"strings"

	"github.com/expresskart/expresskart-backend/api/responses"
	"github.com/expresskart/expresskart-backend/api/validators"
	"github.com/expresskart/expresskart-backend/internal/products"
	"github.com/expresskart/expresskart-backend/pkg/logger"
)

func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q, err := productQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, meta, err := svc.List(r.Context(), q, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, "", list, meta)
	}
}

func productQuery(r *http.Request) (products.ListQuery, error) {
	query := r.URL.Query()
	q := products.ListQuery{
		Category: strings.ToLower(validators.SanitizeString(query.Get("category"), 60)),
		Search:   validators.SanitizeString(query.Get("q"), 100),
		Sort:     strings.TrimSpace(query.Get("sort")),
	}
	var err error
	if q.VendorID, err = validators.ParseQueryUUID(r, "vendorId"); err != nil {
		return q, err
	}
	if q.MinPrice, err = validators.ParseQueryDecimal(r, "minPrice"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = validators.ParseQueryDecimal(r, "maxPrice"); err != nil {
		return q, err
	}
	if q.Featured, err = validators.ParseQueryBool(r, "featured"); err != nil {
		return q, err
	}
	return q, nil
}

func ProductSuggestions(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Suggestions(r.Context(), validators.SanitizeString(r.URL.Query().Get("q"), 100))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "", list)
	}
}

func ProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "", product)
	}
}

func ProductMine(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := caller(w, r, logg)
		if !ok {
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, meta, err := svc.Mine(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, "", list, meta)
	}
}

// decodeProduct accepts nested or flat price and inventory fields and
// normalizes them into one ProductInput.
func decodeProduct(r *http.Request) (products.ProductInput, error) {
	var payload products.ProductPayload
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return products.ProductInput{}, err
	}
	return payload.Normalize()
}

func ProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := caller(w, r, logg)
		if !ok {
			return
		}
		input, err := decodeProduct(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Create(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "product created", product)
	}
}

func ProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, ok := caller(w, r, logg)
		if !ok {
			return
		}
		productID, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := decodeProduct(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Update(r.Context(), userID, role, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "product updated", product)
	}
}

func ProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, ok := caller(w, r, logg)
		if !ok {
			return
		}
		productID, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), userID, role, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "product deleted", nil)
	}
}
