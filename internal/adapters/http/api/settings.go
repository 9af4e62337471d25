package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/careeratlas/trends/internal/domain/cache"
	"github.com/careeratlas/trends/internal/domain/region"
)

// RegionDependencies lists configured regions.
type RegionDependencies interface {
	Regions() []region.Info
}

// RegionHandler handles region listing.
type RegionHandler struct {
	deps RegionDependencies
}

// NewRegionHandler creates a new region handler.
func NewRegionHandler(deps RegionDependencies) *RegionHandler {
	return &RegionHandler{deps: deps}
}

// HandleGetRegions handles GET /v1/regions requests.
func (h *RegionHandler) HandleGetRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.deps.Regions())
}

// LanguageDependencies reads and switches the active language.
type LanguageDependencies interface {
	Language() string
	DefaultLanguage() string
	SetLanguage(ctx context.Context, language string) error
}

// LanguageHandler handles active language requests.
type LanguageHandler struct {
	deps     LanguageDependencies
	validate *validator.Validate
}

// NewLanguageHandler creates a new language handler.
func NewLanguageHandler(deps LanguageDependencies, v *validator.Validate) *LanguageHandler {
	if v == nil {
		v = newValidator()
	}
	return &LanguageHandler{deps: deps, validate: v}
}

type languageRequest struct {
	Language string `json:"language" validate:"required,bcp47_language_tag"`
}

type languageResponse struct {
	Language        string `json:"language"`
	DefaultLanguage string `json:"defaultLanguage"`
}

// HandleGetLanguage handles GET /v1/language requests.
func (h *LanguageHandler) HandleGetLanguage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, languageResponse{
		Language:        h.deps.Language(),
		DefaultLanguage: h.deps.DefaultLanguage(),
	})
}

// HandlePutLanguage handles PUT /v1/language requests. Changing the
// language clears the trend cache.
func (h *LanguageHandler) HandlePutLanguage(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_language"
	var req languageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, validationMessage(err)))
		return
	}
	if err := h.deps.SetLanguage(r.Context(), req.Language); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	h.HandleGetLanguage(w, r)
}

// CacheDependencies inspects and clears the trend cache.
type CacheDependencies interface {
	CacheStats() cache.Stats
	ClearCache(ctx context.Context)
}

// CacheHandler handles cache inspection requests.
type CacheHandler struct {
	deps CacheDependencies
}

// NewCacheHandler creates a new cache handler.
func NewCacheHandler(deps CacheDependencies) *CacheHandler {
	return &CacheHandler{deps: deps}
}

// HandleGetCache handles GET /v1/cache requests.
func (h *CacheHandler) HandleGetCache(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.deps.CacheStats())
}

// HandleDeleteCache handles DELETE /v1/cache requests.
func (h *CacheHandler) HandleDeleteCache(w http.ResponseWriter, r *http.Request) {
	h.deps.ClearCache(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
