package controllers

import (
	"net/http"

	"github.com/expresskart/expresskart-backend/api/responses"
	"github.com/expresskart/expresskart-backend/api/validators"
	"github.com/expresskart/expresskart-backend/internal/cart"
	"github.com/expresskart/expresskart-backend/pkg/logger"
)

func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := caller(w, r, logg)
		if !ok {
			return
		}
		c, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "", c)
	}
}

func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := caller(w, r, logg)
		if !ok {
			return
		}
		var req cart.AddItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.AddItem(r.Context(), userID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "item added to cart", c)
	}
}

func CartUpdateItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := caller(w, r, logg)
		if !ok {
			return
		}
		productID, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cart.UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.UpdateQuantity(r.Context(), userID, productID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "cart updated", c)
	}
}

// expectedVersion reads the optional optimistic-lock guard for DELETE calls.
func expectedVersion(r *http.Request) (*int, error) {
	v, err := validators.ParseQueryInt(r, "expectedVersion", 0, 1, 1<<30)
	if err != nil || v == 0 {
		return nil, err
	}
	return &v, nil
}

func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := caller(w, r, logg)
		if !ok {
			return
		}
		productID, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		version, err := expectedVersion(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.RemoveItem(r.Context(), userID, productID, version)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "item removed from cart", c)
	}
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := caller(w, r, logg)
		if !ok {
			return
		}
		version, err := expectedVersion(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.Clear(r.Context(), userID, version)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "cart cleared", c)
	}
}
