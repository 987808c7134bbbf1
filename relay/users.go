package relay

import (
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/infinitybotlist/lanyard/doclib"
	"github.com/infinitybotlist/lanyard/dovewing"
	"github.com/infinitybotlist/lanyard/dovewing/dovetypes"
	"github.com/infinitybotlist/lanyard/lanyard"
	"github.com/infinitybotlist/lanyard/snowflake"
	"github.com/infinitybotlist/lanyard/uapi"
	"go.uber.org/zap"
)

const CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"

var (
	v = validator.New()

	compiledMessages = uapi.CompileValidationErrors(BatchRequest{})
)

type BatchRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=25,unique,dive,numeric,min=17,max=20" msg:"Between 1 and 25 unique user IDs must be provided" amsg:"Each ID must be a snowflake"`
}

type BatchResponse struct {
	Success bool                         `json:"success"`
	Data    map[string]*lanyard.Presence `json:"data" description:"Presences of the users that could be fetched"`
	Errors  map[string]lanyard.ErrorBody `json:"errors" description:"Why the remaining users could not be fetched"`
}

// lanyard.Response without omitempty, a null data stays null
type successEnvelope struct {
	Success bool              `json:"success"`
	Data    *lanyard.Presence `json:"data"`
}

type usersRouter struct {
	client dovewing.Fetcher
	logger *zap.SugaredLogger
}

func (b usersRouter) Tag() (string, string) {
	return "Users", "Presence lookups"
}

func (b usersRouter) Routes(r *chi.Mux) {
	idParam := doclib.Parameter{
		Name:        "id",
		In:          "path",
		Description: "The users Discord ID",
		Required:    true,
		Schema:      doclib.IdSchema(),
	}

	uapi.Route{
		Pattern: "/users/{id}",
		OpId:    "getUser",
		Method:  uapi.GET,
		Docs: func() *doclib.Doc {
			return &doclib.Doc{
				Summary:     "Get User Presence",
				Description: "Returns the Lanyard envelope for the user. Upstream errors keep their status code.",
				Params:      []doclib.Parameter{idParam},
				Resp:        lanyard.Response{},
			}
		},
		Handler: b.getUser,
	}.Route(r)

	uapi.Route{
		Pattern: "/users/{id}/platform",
		OpId:    "getPlatformUser",
		Method:  uapi.GET,
		Docs: func() *doclib.Doc {
			return &doclib.Doc{
				Summary:     "Get Platform User",
				Description: "Returns a summary of the user built from their presence",
				Params:      []doclib.Parameter{idParam},
				Resp:        dovetypes.PlatformUser{},
			}
		},
		Handler: b.getPlatformUser,
	}.Route(r)

	uapi.Route{
		Pattern: "/users",
		OpId:    "getUsers",
		Method:  uapi.POST,
		Docs: func() *doclib.Doc {
			return &doclib.Doc{
				Summary:     "Get User Presences",
				Description: "Fetches up to 25 presences at once. One failing user does not fail the request.",
				Resp:        BatchResponse{},
			}
		},
		Handler: b.getUsers,
	}.Route(r)
}

// Maps a failed lookup to a response, keeping Lanyard's own status and body when there is one
func (b usersRouter) upstreamError(err error) uapi.HttpResponse {
	var apiErr *lanyard.APIError

	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode()

		// Lanyard answered 2xx but the envelope was not a success
		if status < 400 {
			status = http.StatusBadGateway
		}

		body := apiErr.Body

		return uapi.HttpResponse{
			Status: status,
			Json: lanyard.Response{
				Error: &body,
			},
		}
	}

	b.logger.Errorw("Failed to reach lanyard", "error", err)

	return uapi.HttpResponse{
		Status: http.StatusBadGateway,
		Json:   uapi.NewApiError("Lanyard is unavailable", CodeUpstreamUnavailable),
	}
}

func (b usersRouter) getUser(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id := chi.URLParam(r, "id")

	p, err := b.client.FetchUser(d.Context, lanyard.Snowflake(id))

	if err != nil {
		return b.upstreamError(err)
	}

	return uapi.HttpResponse{
		Json: successEnvelope{
			Success: true,
			Data:    p,
		},
	}
}

func (b usersRouter) getPlatformUser(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id := chi.URLParam(r, "id")

	u, err := dovewing.GetUser(d.Context, b.client, id)

	if errors.Is(err, snowflake.ErrInvalidSnowflake) {
		return uapi.HttpResponse{
			Status: http.StatusBadRequest,
			Json:   uapi.NewApiError("Invalid snowflake", lanyard.CodeInvalidSnowflake),
		}
	}

	if err != nil {
		return b.upstreamError(err)
	}

	return uapi.HttpResponse{
		Json: u,
	}
}

func (b usersRouter) getUsers(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var payload BatchRequest

	hresp, ok := uapi.MarshalReq(r, &payload)

	if !ok {
		return hresp
	}

	err := v.Struct(payload)

	if err != nil {
		var errs validator.ValidationErrors

		if errors.As(err, &errs) {
			return uapi.ValidatorErrorResponse(compiledMessages, errs)
		}

		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	resp := BatchResponse{
		Success: true,
		Data:    map[string]*lanyard.Presence{},
		Errors:  map[string]lanyard.ErrorBody{},
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, id := range payload.IDs {
		wg.Add(1)

		go func(id string) {
			defer wg.Done()

			p, err := b.client.FetchUser(d.Context, lanyard.Snowflake(id))

			mu.Lock()
			defer mu.Unlock()

			if err == nil {
				resp.Data[id] = p
				return
			}

			var apiErr *lanyard.APIError

			if errors.As(err, &apiErr) {
				resp.Errors[id] = apiErr.Body
				return
			}

			b.logger.Errorw("Failed to reach lanyard", "error", err, "id", id)
			resp.Errors[id] = lanyard.ErrorBody{
				Message: "Lanyard is unavailable",
				Code:    CodeUpstreamUnavailable,
			}
		}(id)
	}

	wg.Wait()

	return uapi.HttpResponse{
		Json: resp,
	}
}
