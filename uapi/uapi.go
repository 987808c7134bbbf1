// Defines a standard way to define routes
package uapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	docs "github.com/infinitybotlist/lanyard/doclib"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slices"

	jsoniter "github.com/json-iterator/go"
)

// Setup struct
type UAPIState struct {
	Logger *zap.SugaredLogger
	// Called before every handler, return false to respond with the returned response instead
	Authorize           func(r Route, req *http.Request) (HttpResponse, bool)
	RouteDataMiddleware func(rd *RouteData, req *http.Request) (*RouteData, error)
}

func SetupState(s UAPIState) {
	state = s
}

var (
	json  = jsoniter.ConfigCompatibleWithStandardLibrary
	state UAPIState
)

// Error bodies use the same envelope as Lanyard itself
const (
	NotFound         = "{\"success\":false,\"error\":{\"message\":\"Resource not found\",\"code\":\"not_found\"}}"
	NotFoundPage     = "{\"success\":false,\"error\":{\"message\":\"Route does not exist\",\"code\":\"not_found\"}}"
	BadRequest       = "{\"success\":false,\"error\":{\"message\":\"Bad request\",\"code\":\"bad_request\"}}"
	InternalError    = "{\"success\":false,\"error\":{\"message\":\"Something went wrong on our end\",\"code\":\"internal_error\"}}"
	MethodNotAllowed = "{\"success\":false,\"error\":{\"message\":\"Method not allowed\",\"code\":\"method_not_allowed\"}}"
	TooManyRequests  = "{\"success\":false,\"error\":{\"message\":\"You are being ratelimited\",\"code\":\"ratelimited\"}}"
)

// This represents a UAPI Error
type ApiError struct {
	Success bool         `json:"success" description:"Always false"`
	Error   ApiErrorBody `json:"error"`
}

type ApiErrorBody struct {
	Context map[string]string `json:"context,omitempty" description:"Context of the error. Usually used for validation error contexts"`
	Message string            `json:"message" description:"Message of the error"`
	Code    string            `json:"code" description:"Machine readable error code"`
}

// Creates an ApiError with the given message and code
func NewApiError(message, code string) ApiError {
	return ApiError{
		Error: ApiErrorBody{
			Message: message,
			Code:    code,
		},
	}
}

// Stores the current tag
var CurrentTag string

// A API Router, not to be confused with Router which routes the actual routes
type APIRouter interface {
	Routes(r *chi.Mux)
	Tag() (string, string)
}

// Method is the HTTP method of a route
type Method string

const (
	GET    Method = http.MethodGet
	POST   Method = http.MethodPost
	PATCH  Method = http.MethodPatch
	PUT    Method = http.MethodPut
	DELETE Method = http.MethodDelete
	HEAD   Method = http.MethodHead
)

func (m Method) String() string {
	return string(m)
}

// Represents a route on the API
type Route struct {
	Method  Method
	Pattern string
	OpId    string
	Handler func(d RouteData, r *http.Request) HttpResponse
	Setup   func()
	Docs    func() *docs.Doc
}

type RouteData struct {
	Context context.Context
	Props   map[string]string // Stores additional properties
}

// Router is satisfied by *chi.Mux
type Router interface {
	MethodFunc(method, pattern string, h http.HandlerFunc)
}

func (r Route) String() string {
	return r.Method.String() + " " + r.Pattern + " (" + r.OpId + ")"
}

// Checks the route is complete and that its path params match its docs
func (r Route) check(d *docs.Doc) error {
	switch {
	case r.OpId == "":
		return errors.New("OpId is empty")
	case r.Handler == nil:
		return errors.New("Handler is nil")
	case r.Pattern == "":
		return errors.New("Pattern is empty")
	case CurrentTag == "":
		return errors.New("CurrentTag is empty")
	case strings.Count(r.Pattern, "{") != strings.Count(r.Pattern, "}"):
		return errors.New("mismatched { and } in pattern")
	}

	var documented, declared []string

	for _, p := range d.Params {
		if p.In == "" || p.Name == "" || p.Schema == nil {
			return fmt.Errorf("param %q is missing required fields", p.Name)
		}

		if p.In == "path" {
			documented = append(documented, p.Name)
		}
	}

	for _, seg := range strings.Split(r.Pattern, "/") {
		name, ok := strings.CutPrefix(seg, "{")

		if !ok {
			if strings.ContainsAny(seg, "{}") {
				return fmt.Errorf("segment %q must be a whole {param}", seg)
			}

			continue
		}

		name, ok = strings.CutSuffix(name, "}")

		if !ok {
			return fmt.Errorf("segment %q must be a whole {param}", seg)
		}

		declared = append(declared, name)
	}

	if !slices.Equal(declared, documented) {
		return fmt.Errorf("pattern params %v do not match documented path params %v", declared, documented)
	}

	return nil
}

// Route documents the route and registers it on ro, panicking on a malformed route
func (r Route) Route(ro Router) {
	if r.Docs == nil {
		panic("Docs is nil: " + r.String())
	}

	docsObj := r.Docs()

	if err := r.check(docsObj); err != nil {
		panic(err.Error() + ": " + r.String())
	}

	if r.Setup != nil {
		r.Setup()
	}

	docsObj.Pattern = r.Pattern
	docsObj.OpId = r.OpId
	docsObj.Method = r.Method.String()
	docsObj.Tags = []string{CurrentTag}

	docs.Route(docsObj)

	handle := func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		resp := make(chan HttpResponse, 1)

		go func() {
			defer func() {
				err := recover()

				if err != nil {
					state.Logger.Error(err)
					resp <- HttpResponse{
						Status: http.StatusInternalServerError,
						Data:   InternalError,
					}
				}
			}()

			if state.Authorize != nil {
				httpResp, ok := state.Authorize(r, req)

				if !ok {
					resp <- httpResp
					return
				}
			}

			rd := &RouteData{
				Context: ctx,
			}

			if state.RouteDataMiddleware != nil {
				var err error
				rd, err = state.RouteDataMiddleware(rd, req)

				if err != nil {
					resp <- HttpResponse{
						Status: http.StatusInternalServerError,
						Json:   NewApiError(err.Error(), "internal_error"),
					}
					return
				}
			}

			resp <- r.Handler(*rd, req)
		}()

		respond(ctx, w, resp)
	}

	switch r.Method {
	case GET, POST, PATCH, PUT, DELETE, HEAD:
		ro.MethodFunc(r.Method.String(), r.Pattern, handle)
	default:
		panic("Unknown method for route: " + r.String())
	}
}

func respond(ctx context.Context, w http.ResponseWriter, data chan HttpResponse) {
	select {
	case <-ctx.Done():
		return
	case msg := <-data:
		for k, v := range msg.Headers {
			w.Header().Set(k, v)
		}

		if msg.Status == 0 {
			msg.Status = http.StatusOK
		}

		if msg.Json != nil {
			bytes, err := json.Marshal(msg.Json)

			if err != nil {
				state.Logger.Error(err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(InternalError))
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(msg.Status)
			w.Write(bytes)
			return
		}

		if w.Header().Get("Content-Type") == "" && strings.HasPrefix(msg.Data, "{") {
			w.Header().Set("Content-Type", "application/json")
		}

		w.WriteHeader(msg.Status)

		if len(msg.Bytes) > 0 {
			w.Write(msg.Bytes)
		}

		w.Write([]byte(msg.Data))
	}
}

type HttpResponse struct {
	// Data is the data to be sent to the client
	Data string
	// Optional, can be used in place of Data
	Bytes []byte
	// Json body to be sent to the client
	Json any
	// Headers to set
	Headers map[string]string
	// Status is the HTTP status code to send
	Status int
}

func CompileValidationErrors(payload any) map[string]string {
	msgs := make(map[string]string)

	structType := reflect.TypeOf(payload)

	for _, f := range reflect.VisibleFields(structType) {
		msgs[f.Name] = f.Tag.Get("msg")

		arrayMsg := f.Tag.Get("amsg")

		if arrayMsg != "" {
			msgs[f.Name+"$arr"] = arrayMsg
		}
	}

	return msgs
}

func ValidatorErrorResponse(compiled map[string]string, v validator.ValidationErrors) HttpResponse {
	msgs := make(map[string]string)

	firstError := ""

	for i, err := range v {
		fname := err.StructField()
		if strings.Contains(err.Field(), "[") {
			// We have a array response, so we need to get the array name
			fname = strings.Split(err.Field(), "[")[0] + "$arr"
		}

		field := compiled[fname]

		var errorMsg string
		if field != "" {
			errorMsg = field + " [" + err.Tag() + "]"
		} else {
			errorMsg = err.Error()
		}

		if i == 0 {
			firstError = errorMsg
		}

		msgs[err.StructField()] = errorMsg
	}

	apiErr := NewApiError(firstError, "validation_failed")
	apiErr.Error.Context = msgs

	return HttpResponse{
		Status: http.StatusBadRequest,
		Json:   apiErr,
	}
}

var defaultBodies = map[int]string{
	http.StatusNotFound:            NotFound,
	http.StatusBadRequest:          BadRequest,
	http.StatusInternalServerError: InternalError,
	http.StatusMethodNotAllowed:    MethodNotAllowed,
	http.StatusTooManyRequests:     TooManyRequests,
}

// DefaultResponse returns the canned envelope for statusCode.
// 200 becomes 204 No Content, unknown codes get InternalError
func DefaultResponse(statusCode int) HttpResponse {
	if statusCode == http.StatusOK || statusCode == http.StatusNoContent {
		return HttpResponse{Status: http.StatusNoContent}
	}

	body, ok := defaultBodies[statusCode]

	if !ok {
		body = InternalError
	}

	return HttpResponse{
		Status: statusCode,
		Data:   body,
	}
}

// Read body
func MarshalReq(r *http.Request, dst interface{}) (resp HttpResponse, ok bool) {
	defer r.Body.Close()

	bodyBytes, err := io.ReadAll(r.Body)

	if err != nil {
		state.Logger.Error(err)
		return DefaultResponse(http.StatusInternalServerError), false
	}

	if len(bodyBytes) == 0 {
		return HttpResponse{
			Status: http.StatusBadRequest,
			Json:   NewApiError("A body is required for this endpoint", "bad_request"),
		}, false
	}

	err = json.Unmarshal(bodyBytes, dst)

	if err != nil {
		return HttpResponse{
			Status: http.StatusBadRequest,
			Json:   NewApiError("Invalid JSON: "+err.Error(), "bad_request"),
		}, false
	}

	return HttpResponse{}, true
}
