// Relay serves Lanyard lookups over HTTP for clients that cannot reach Lanyard themselves
package relay

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/infinitybotlist/lanyard/doclib"
	"github.com/infinitybotlist/lanyard/dovewing"
	"github.com/infinitybotlist/lanyard/hotcache"
	"github.com/infinitybotlist/lanyard/ratelimit"
	"github.com/infinitybotlist/lanyard/uapi"
	"github.com/infinitybotlist/lanyard/zapchi"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const Version = "1.0.0"

type Options struct {
	// Used for every upstream lookup, normally a *lanyard.Client
	Client dovewing.Fetcher
	Logger *zap.SugaredLogger

	// Backs the inbound ratelimits, nil disables them
	RateLimitCache    hotcache.HotCache[int]
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// New sets up the relay state and returns its router
func New(opts Options) *chi.Mux {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}

	if opts.RateLimitCache != nil {
		ratelimit.SetupState(&ratelimit.RLState{
			HotCache: opts.RateLimitCache,
		})
	} else {
		ratelimit.SetupState(nil)
	}

	uapi.SetupState(uapi.UAPIState{
		Logger: opts.Logger,
		Authorize: func(r uapi.Route, req *http.Request) (uapi.HttpResponse, bool) {
			return authorize(opts, r, req)
		},
	})

	doclib.Setup("Lanyard Relay", Version)

	r := chi.NewMux()

	// RealIP must run before the ratelimit reads RemoteAddr
	r.Use(
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		zapchi.Logger(opts.Logger, "relay"),
		middleware.Timeout(30*time.Second),
	)

	routers := []uapi.APIRouter{
		usersRouter{client: opts.Client, logger: opts.Logger},
	}

	for _, router := range routers {
		name, _ := router.Tag()
		uapi.CurrentTag = name
		router.Routes(r)
	}

	r.Get("/openapi", func(w http.ResponseWriter, r *http.Request) {
		bytes, err := json.Marshal(doclib.GetDocs())

		if err != nil {
			opts.Logger.Errorw("Failed to marshal openapi document", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(uapi.InternalError))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(bytes)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(uapi.NotFoundPage))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(uapi.MethodNotAllowed))
	})

	return r
}

// Applies the per-route inbound ratelimit
func authorize(opts Options, r uapi.Route, req *http.Request) (uapi.HttpResponse, bool) {
	if ratelimit.State == nil {
		return uapi.HttpResponse{}, true
	}

	limit, err := ratelimit.Ratelimit{
		Expiry:      opts.RateLimitWindow,
		MaxRequests: opts.RateLimitRequests,
		Bucket:      r.OpId,
	}.Limit(req.Context(), req)

	if err != nil {
		// A broken ratelimit store should not take lookups down with it
		opts.Logger.Warnw("Failed to check ratelimit", "error", err, "bucket", r.OpId)
		return uapi.HttpResponse{}, true
	}

	if limit.Exceeded {
		resp := uapi.DefaultResponse(http.StatusTooManyRequests)
		resp.Headers = limit.Headers()
		return resp, false
	}

	return uapi.HttpResponse{}, true
}
