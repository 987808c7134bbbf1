package uapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	docs "github.com/infinitybotlist/lanyard/doclib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setup(t *testing.T) *chi.Mux {
	t.Helper()

	docs.Setup("test", "0.0.0")
	SetupState(UAPIState{Logger: zap.NewNop().Sugar()})
	CurrentTag = "Test"

	return chi.NewMux()
}

func idDocs() *docs.Doc {
	return &docs.Doc{
		Summary: "Test",
		Params: []docs.Parameter{
			{Name: "id", In: "path", Schema: docs.IdSchema()},
		},
	}
}

func TestRouteResponds(t *testing.T) {
	r := setup(t)

	Route{
		Method:  GET,
		Pattern: "/things/{id}",
		OpId:    "getThing",
		Docs:    idDocs,
		Handler: func(d RouteData, req *http.Request) HttpResponse {
			return HttpResponse{
				Headers: map[string]string{"X-Id": chi.URLParam(req, "id")},
				Json:    map[string]string{"id": chi.URLParam(req, "id")},
			}
		},
	}.Route(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/42", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Header().Get("X-Id"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"42"}`, rec.Body.String())

	require.Contains(t, docs.GetDocs().Paths, "/things/{id}")
}

func TestRouteRecoversPanics(t *testing.T) {
	r := setup(t)

	Route{
		Method:  GET,
		Pattern: "/boom",
		OpId:    "boom",
		Docs:    func() *docs.Doc { return &docs.Doc{} },
		Handler: func(d RouteData, req *http.Request) HttpResponse {
			panic("boom")
		},
	}.Route(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, InternalError, rec.Body.String())
}

func TestAuthorizeShortCircuits(t *testing.T) {
	r := setup(t)

	called := false

	SetupState(UAPIState{
		Logger: zap.NewNop().Sugar(),
		Authorize: func(route Route, req *http.Request) (HttpResponse, bool) {
			return DefaultResponse(http.StatusTooManyRequests), false
		},
	})

	Route{
		Method:  GET,
		Pattern: "/limited",
		OpId:    "limited",
		Docs:    func() *docs.Doc { return &docs.Doc{} },
		Handler: func(d RouteData, req *http.Request) HttpResponse {
			called = true
			return DefaultResponse(http.StatusOK)
		},
	}.Route(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/limited", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, TooManyRequests, rec.Body.String())
}

func TestRouteRejectsBadDeclarations(t *testing.T) {
	r := setup(t)

	handler := func(d RouteData, req *http.Request) HttpResponse { return HttpResponse{} }

	assert.Panics(t, func() {
		Route{Method: GET, Pattern: "/x", Docs: idDocs, Handler: handler}.Route(r)
	}, "missing OpId")

	assert.Panics(t, func() {
		Route{Method: GET, Pattern: "/x/{name}", OpId: "x", Docs: idDocs, Handler: handler}.Route(r)
	}, "pattern and docs disagree")

	assert.Panics(t, func() {
		Route{Method: GET, Pattern: "/x", OpId: "x", Docs: idDocs, Handler: handler}.Route(r)
	}, "documented param missing from pattern")
}

type payload struct {
	Names []string `validate:"required,min=1,dive,nospaces" msg:"At least one name is required" amsg:"Names cannot contain spaces"`
}

func TestValidatorErrorResponse(t *testing.T) {
	v := validator.New()
	v.RegisterValidation("nospaces", func(fl validator.FieldLevel) bool {
		return !strings.Contains(fl.Field().String(), " ")
	})

	compiled := CompileValidationErrors(payload{})
	assert.Equal(t, "At least one name is required", compiled["Names"])
	assert.Equal(t, "Names cannot contain spaces", compiled["Names$arr"])

	err := v.Struct(payload{Names: []string{"ok", "not ok"}})

	var errs validator.ValidationErrors
	require.True(t, errors.As(err, &errs))

	resp := ValidatorErrorResponse(compiled, errs)
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	apiErr, ok := resp.Json.(ApiError)
	require.True(t, ok)
	assert.Equal(t, "validation_failed", apiErr.Error.Code)
	assert.Equal(t, "Names cannot contain spaces [nospaces]", apiErr.Error.Message)
}

func TestMarshalReq(t *testing.T) {
	SetupState(UAPIState{Logger: zap.NewNop().Sugar()})

	var dst struct {
		ID string `json:"id"`
	}

	_, ok := MarshalReq(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id":"1"}`)), &dst)
	assert.True(t, ok)
	assert.Equal(t, "1", dst.ID)

	resp, ok := MarshalReq(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &dst)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp, ok = MarshalReq(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{")), &dst)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}
