package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/expresskart/expresskart-backend/pkg/errors"
)

type signupBody struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=user vendor admin"`
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Asha","email":"a@b.in","isAdmin":true}`))
	var body signupBody
	err := DecodeJSONBody(r, &body)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"A","email":"nope","role":"root"}`))
	var body signupBody
	err := DecodeJSONBody(r, &body)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details := typed.Details().(map[string]string)
	require.Equal(t, "must be at least 2", details["name"])
	require.Equal(t, "must be a valid email", details["email"])
	require.Contains(t, details["role"], "must be one of")
}

func TestDecodeJSONBodyEmpty(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var body signupBody
	err := DecodeJSONBody(r, &body)
	require.Equal(t, "request body required", pkgerrors.As(err).Message())
}

func TestParsePagination(t *testing.T) {
	p, err := ParsePagination(httptest.NewRequest(http.MethodGet, "/?page=3&limit=5", nil))
	require.NoError(t, err)
	require.Equal(t, 3, p.Page)
	require.Equal(t, 5, p.Limit)

	p, err = ParsePagination(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, 1, p.Page)
	require.Equal(t, 20, p.Limit)

	_, err = ParsePagination(httptest.NewRequest(http.MethodGet, "/?limit=500", nil))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?featured=true&minPrice=10.5&vendorId=bad", nil)
	featured, err := ParseQueryBool(r, "featured")
	require.NoError(t, err)
	require.True(t, *featured)

	minPrice, err := ParseQueryDecimal(r, "minPrice")
	require.NoError(t, err)
	require.Equal(t, "10.5", minPrice.String())

	_, err = ParseQueryUUID(r, "vendorId")
	require.Error(t, err)

	missing, err := ParseQueryDecimal(r, "maxPrice")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestURLParamUUID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", "not-a-uuid")
	r = r.WithContext(chiContext(r, rctx))

	_, err := URLParamUUID(r, "orderId")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSanitizeString(t *testing.T) {
	require.Equal(t, "dal", SanitizeString("  dal  ", 10))
	require.Equal(t, "पनी", SanitizeString("पनीर", 3))
}
