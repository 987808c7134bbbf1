// Doclib builds the OpenAPI document of the routes registered through uapi
package doclib

import (
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

type Parameter struct {
	Name        string
	In          string // path, query or header
	Description string
	Required    bool
	Schema      *openapi3.SchemaRef
}

type Doc struct {
	Summary     string
	Description string
	Params      []Parameter
	// Value whose type describes the success response
	Resp any

	// Set by uapi when the route is registered
	Pattern  string
	OpId     string
	Method   string
	Tags     []string
	AuthType []string
}

var (
	mu  sync.Mutex
	api = newAPI("API", "0.0.0")
)

func newAPI(title, version string) *openapi3.T {
	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   title,
			Version: version,
		},
		Paths: openapi3.Paths{},
	}
}

// Setup resets the document, call before registering routes
func Setup(title, version string) {
	mu.Lock()
	defer mu.Unlock()

	api = newAPI(title, version)
}

// IdSchema is the schema of a snowflake path parameter
func IdSchema() *openapi3.SchemaRef {
	return openapi3.NewStringSchema().WithPattern(`^[0-9]{17,20}$`).NewRef()
}

// ErrorSchema describes the envelope returned on errors
func ErrorSchema() *openapi3.SchemaRef {
	return openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("error", openapi3.NewObjectSchema().
			WithProperty("message", openapi3.NewStringSchema()).
			WithProperty("code", openapi3.NewStringSchema())).
		NewRef()
}

// Route adds a documented route to the document
func Route(doc *Doc) {
	op := openapi3.NewOperation()
	op.Summary = doc.Summary
	op.Description = doc.Description
	op.OperationID = doc.OpId
	op.Tags = doc.Tags

	for _, p := range doc.Params {
		op.AddParameter(&openapi3.Parameter{
			Name:        p.Name,
			In:          p.In,
			Description: p.Description,
			Required:    p.Required || p.In == openapi3.ParameterInPath,
			Schema:      p.Schema,
		})
	}

	if doc.Resp != nil {
		ref, err := openapi3gen.NewSchemaRefForValue(doc.Resp, nil)

		if err != nil {
			panic("failed to generate response schema for " + doc.OpId + ": " + err.Error())
		}

		op.AddResponse(200, openapi3.NewResponse().WithDescription("Success").WithJSONSchemaRef(ref))
	}

	op.AddResponse(0, openapi3.NewResponse().WithDescription("Error").WithJSONSchemaRef(ErrorSchema()))

	mu.Lock()
	defer mu.Unlock()

	api.AddOperation(doc.Pattern, doc.Method, op)
}

// GetDocs returns the document built so far
func GetDocs() *openapi3.T {
	mu.Lock()
	defer mu.Unlock()

	return api
}
