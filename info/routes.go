package info

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

type welcomePayload struct {
	Message string `json:"message"`
}

// GetWelcome returns the API banner.
func (ih *InfoHandler) GetWelcome(w http.ResponseWriter, r *http.Request) {
	ih.RespondWithJSON(w, r, http.StatusOK, welcomePayload{Message: ih.welcomeMessage})
}

// GetHealth reports {"status":"ok"} whenever the process can serve requests.
// It never runs checks; use GetReadyz for dependency-aware probing.
func (ih *InfoHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ih.respondHealthy(w, r, "ok")
}

// GetHealthz implements the liveness probe recommended for Kubernetes.
func (ih *InfoHandler) GetHealthz(w http.ResponseWriter, r *http.Request) {
	if err := ih.runChecks(r.Context(), ih.livenessChecks); err != nil {
		ih.HandleAPIError(w, r, http.StatusServiceUnavailable, err, "liveness probe failed")
		return
	}
	ih.respondHealthy(w, r, "ok")
}

// GetReadyz implements the readiness probe recommended for Kubernetes.
func (ih *InfoHandler) GetReadyz(w http.ResponseWriter, r *http.Request) {
	if err := ih.runChecks(r.Context(), ih.readinessChecks); err != nil {
		ih.HandleAPIError(w, r, http.StatusServiceUnavailable, err, "readiness probe failed")
		return
	}
	ih.respondHealthy(w, r, "ready")
}

// GetVersion returns the structure provided by the configured InfoProvider.
func (ih *InfoHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	payload := ih.infoProvider()
	if payload == nil {
		payload = map[string]string{}
	}
	ih.RespondWithJSON(w, r, http.StatusOK, payload)
}

// GetOpenAPIJSON streams the configured OpenAPI JSON document to the caller.
func (ih *InfoHandler) GetOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	bytes, err := ih.swaggerProvider()
	if err != nil {
		ih.HandleAPIError(w, r, http.StatusInternalServerError, err, "failed to load swagger spec")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(bytes); err != nil {
		ih.Logger().ErrorContext(r.Context(), "failed to write swagger response", "error", err)
	}
}

// GetOpenAPIHTML renders the configured viewer, which fetches the document
// from the JSON endpoint.
func (ih *InfoHandler) GetOpenAPIHTML(w http.ResponseWriter, r *http.Request) {
	if ih.openapiTemplate == nil {
		err := errors.New("openapi template not configured")
		ih.HandleAPIError(w, r, http.StatusInternalServerError, err, "failed to render openapi template")
		return
	}

	var data any
	if ih.dataProvider != nil {
		data = ih.dataProvider(r, ih.baseURL)
	}
	if data == nil {
		data = defaultTemplateDataProvider(r, ih.baseURL)
	}

	var page strings.Builder
	if err := ih.openapiTemplate.Execute(&page, data); err != nil {
		ih.HandleAPIError(w, r, http.StatusInternalServerError, err, "failed to render openapi template")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := io.WriteString(w, page.String()); err != nil {
		ih.Logger().ErrorContext(r.Context(), "failed to write openapi page", "error", err)
	}
}
