package swagger

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gopkg.in/yaml.v3"
)

// ErrDocument reports an embedded OpenAPI document that cannot be used.
var ErrDocument = errors.New("invalid openapi document")

// redocScript is the pinned ReDoc bundle loaded by the docs page.
const redocScript = "https://cdn.redoc.ly/redoc/v2.1.5/bundles/redoc.standalone.js"

// Document is the subset of the OpenAPI document the service inspects.
type Document struct {
	OpenAPI string `yaml:"openapi"`
	Info    struct {
		Title   string `yaml:"title"`
		Version string `yaml:"version"`
	} `yaml:"info"`
	Paths map[string]map[string]any `yaml:"paths"`
}

// Parse decodes the embedded OpenAPI document.
func Parse() (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(OpenAPI, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrDocument, err)
	}
	if doc.OpenAPI == "" || len(doc.Paths) == 0 {
		return Document{}, ErrDocument
	}
	return doc, nil
}

// Register attaches the API docs routes to mux.
//
//	GET /api-docs      -> ReDoc HTML
//	GET /openapi.yaml  -> embedded OpenAPI document
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /api-docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	})

	mux.HandleFunc("GET /openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
}

var indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Career Trends API Docs</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="` + redocScript + `"></script>
    <script>Redoc.init('/openapi.yaml', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`
