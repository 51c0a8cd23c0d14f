// Package handlers provides HTTP handlers and middleware for the Lineage
// graph exploration API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/lineage-works/lineage/internal/config"
	"github.com/lineage-works/lineage/internal/engine"
	"github.com/lineage-works/lineage/internal/storage"
	"github.com/lineage-works/lineage/pkg/types"
)

// Version is reported by the health endpoint.
const Version = "1.2.0"

// APIHandlers contains HTTP handlers for the REST API.
type APIHandlers struct {
	explorer *engine.Explorer
	store    storage.TreeStore
	config   *config.Config
}

// NewAPIHandlers creates a new APIHandlers instance.
func NewAPIHandlers(explorer *engine.Explorer, store storage.TreeStore, cfg *config.Config) *APIHandlers {
	return &APIHandlers{
		explorer: explorer,
		store:    store,
		config:   cfg,
	}
}

// GetHealth handles GET /api/health.
func (h *APIHandlers) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, HealthResponse{
		Status:  status,
		Engine:  h.config.Storage.Engine,
		Version: Version,
	})
}

// GetNeighborhood handles GET /api/graph/neighborhood - the bounded
// neighborhood around one person.
//
// Query parameters: person (required, id or alias), depth, max_nodes,
// layout (family|direct).
func (h *APIHandlers) GetNeighborhood(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("person")
	if ref == "" {
		respondError(w, http.StatusBadRequest, "person parameter is required", nil)
		return
	}

	depth := parseInt(r.URL.Query().Get("depth"), 2)
	if depth < 0 || depth > h.config.Graph.MaxDepth {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("depth must be between 0 and %d", h.config.Graph.MaxDepth), nil)
		return
	}

	maxNodes := parseInt(r.URL.Query().Get("max_nodes"), h.config.Graph.DefaultMaxNodes)
	if maxNodes < 1 || maxNodes > h.config.Graph.MaxNodesLimit {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("max_nodes must be between 1 and %d", h.config.Graph.MaxNodesLimit), nil)
		return
	}

	layout := r.URL.Query().Get("layout")
	if layout == "" {
		layout = types.LayoutFamily
	}
	if layout != types.LayoutFamily && layout != types.LayoutDirect {
		respondError(w, http.StatusBadRequest, "layout must be family or direct", nil)
		return
	}

	result, err := h.explorer.Neighborhood(r.Context(), engine.NeighborhoodRequest{
		Ref:      ref,
		Depth:    depth,
		MaxNodes: maxNodes,
		Layout:   layout,
	})
	if err != nil {
		respondStoreError(w, "failed to load neighborhood", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetRelationshipPath handles GET /api/relationship/path - the shortest
// lineage path between two persons.
//
// Query parameters: from and to (required, id or alias), max_hops.
func (h *APIHandlers) GetRelationshipPath(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		respondError(w, http.StatusBadRequest, "from and to parameters are required", nil)
		return
	}

	maxHops := parseInt(r.URL.Query().Get("max_hops"), 12)
	if maxHops < 1 || maxHops > h.config.Graph.PathMaxHops {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("max_hops must be between 1 and %d", h.config.Graph.PathMaxHops), nil)
		return
	}

	result, err := h.explorer.RelationshipPath(r.Context(), from, to, storage.PathBounds{
		MaxHops:  maxHops,
		MaxNodes: h.config.Graph.PathMaxNodes,
	})
	if err != nil {
		respondStoreError(w, "failed to find path", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetFamilyParents handles GET /api/graph/family/parents - expand a family
// hub upward to its parent couple.
//
// Query parameters: family (required, id or alias), child (optional, id of
// the already-rendered child the new fragment should attach to).
func (h *APIHandlers) GetFamilyParents(w http.ResponseWriter, r *http.Request) {
	familyRef := r.URL.Query().Get("family")
	if familyRef == "" {
		respondError(w, http.StatusBadRequest, "family parameter is required", nil)
		return
	}

	graph, err := h.explorer.ExpandParents(r.Context(), familyRef, r.URL.Query().Get("child"))
	if err != nil {
		respondStoreError(w, "failed to expand parents", err)
		return
	}

	respondJSON(w, http.StatusOK, graph)
}

// GetFamilyChildren handles GET /api/graph/family/children - expand a family
// hub downward to its children.
//
// Query parameters: family (required, id or alias), spouses (default true).
func (h *APIHandlers) GetFamilyChildren(w http.ResponseWriter, r *http.Request) {
	familyRef := r.URL.Query().Get("family")
	if familyRef == "" {
		respondError(w, http.StatusBadRequest, "family parameter is required", nil)
		return
	}

	includeSpouses := parseBool(r.URL.Query().Get("spouses"), true)

	graph, err := h.explorer.ExpandChildren(r.Context(), familyRef, includeSpouses)
	if err != nil {
		respondStoreError(w, "failed to expand children", err)
		return
	}

	respondJSON(w, http.StatusOK, graph)
}

// respondStoreError maps engine and storage errors to HTTP responses.
func respondStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, message, err)
	case errors.Is(err, storage.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, storage.ErrBoundsExceeded):
		respondErrorCode(w, http.StatusBadRequest, CodeResourceExceeded, message, err)
	case errors.Is(err, storage.ErrStoreUnavailable):
		respondError(w, http.StatusServiceUnavailable, message, err)
	default:
		respondError(w, http.StatusInternalServerError, message, err)
	}
}

func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

func parseBool(s string, defaultValue bool) bool {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; log instead of writing a second response.
		log.Printf("handlers: failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	respondErrorCode(w, statusCode, http.StatusText(statusCode), message, err)
}

// respondErrorCode writes an error response with an explicit error code.
func respondErrorCode(w http.ResponseWriter, statusCode int, code, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  code,
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, errResp)
}
