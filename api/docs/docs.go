package docs

import (
	_ "embed"
	"net/http"
)

var (
	//go:embed index.html
	indexHTML []byte

	//go:embed openapi.json
	openAPISpec []byte
)

// Index serves the Swagger UI page for the API.
func Index() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(indexHTML)
	}
}

// Spec serves the OpenAPI 3 document.
func Spec() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(openAPISpec)
	}
}
