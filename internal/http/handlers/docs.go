package handlers

import (
	_ "embed"
	"fmt"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/hongminglow/auth-examples/internal/http/respond"
)

//go:embed openapi.yaml
var openAPISpec []byte

// DocsHandler serves the OpenAPI description of the service as JSON.
type DocsHandler struct {
	doc map[string]any
}

// NewDocsHandler decodes the embedded OpenAPI document.
func NewDocsHandler() (*DocsHandler, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(openAPISpec, &doc); err != nil {
		return nil, fmt.Errorf("decode openapi document: %w", err)
	}
	return &DocsHandler{doc: doc}, nil
}

// Register wires the handler into a ServeMux.
func (h *DocsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /apidocs", h.handle)
}

func (h *DocsHandler) handle(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, h.doc)
}
