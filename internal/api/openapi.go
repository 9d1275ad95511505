package api

import (
	"context"
	_ "embed"
	"net/http"
	"strings"
	"text/template"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/labstack/echo/v4"
)

//go:embed openapi.yaml
var openapiSpec []byte

// openAPISpec holds the parsed document plus the router used to validate
// incoming requests against it at the boundary (§6, grounded on the
// teacher's own contract_test.go, the only pack user of kin-openapi).
type openAPISpec struct {
	doc    *openapi3.T
	router routers.Router
}

func mustLoadSpec() *openAPISpec {
	doc, err := openapi3.NewLoader().LoadFromData(openapiSpec)
	if err != nil {
		panic("failed to load embedded OpenAPI spec: " + err.Error())
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		panic("failed to build OpenAPI router: " + err.Error())
	}
	return &openAPISpec{doc: doc, router: router}
}

// validateAgainstSpec rejects a request that doesn't match the embedded
// OpenAPI document's schema for its route before the handler runs.
func (s *Server) validateAgainstSpec(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		route, pathParams, err := s.spec.router.FindRoute(req)
		if err != nil {
			return next(c)
		}
		input := &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
		}
		if err := openapi3filter.ValidateRequest(context.Background(), input); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return next(c)
	}
}

// swaggerUIHTML is a minimal Swagger UI HTML page.
const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Wave Compare Engine API Documentation</title>
  <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
  <style>
    html { box-sizing: border-box; overflow: -moz-scrollbars-vertical; overflow-y: scroll; }
    *, *:before, *:after { box-sizing: inherit; }
    body { margin: 0; background: #fafafa; }
    .swagger-ui .topbar { display: none; }
  </style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-standalone-preset.js"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "{{.SpecURL}}",
        dom_id: '#swagger-ui',
        deepLinking: true,
        presets: [
          SwaggerUIBundle.presets.apis,
          SwaggerUIStandalonePreset
        ],
        plugins: [
          SwaggerUIBundle.plugins.DownloadUrl
        ],
        layout: "StandaloneLayout"
      });
    };
  </script>
</body>
</html>`

var swaggerUITemplate = template.Must(template.New("swagger-ui").Parse(swaggerUIHTML))

// registerDocsRoutes registers the API documentation endpoints.
func (s *Server) registerDocsRoutes(api *echo.Group) {
	api.GET("/openapi.yaml", s.serveOpenAPISpec)
	api.GET("/docs", s.serveSwaggerUI)
}

func (s *Server) serveOpenAPISpec(c echo.Context) error {
	return c.Blob(http.StatusOK, "application/x-yaml", openapiSpec)
}

func (s *Server) serveSwaggerUI(c echo.Context) error {
	data := struct{ SpecURL string }{SpecURL: "/api/v1/openapi.yaml"}

	var buf strings.Builder
	if err := swaggerUITemplate.Execute(&buf, data); err != nil {
		return err
	}
	return c.HTML(http.StatusOK, buf.String())
}

// OpenAPISpec returns the embedded OpenAPI specification.
func OpenAPISpec() []byte {
	return openapiSpec
}
