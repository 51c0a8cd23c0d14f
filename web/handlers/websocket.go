package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"nhooyr.io/websocket" //nolint:staticcheck // TODO: migrate to github.com/coder/websocket

	"github.com/lineage-works/lineage/internal/config"
	"github.com/lineage-works/lineage/internal/engine"
	"github.com/lineage-works/lineage/pkg/types"
)

// StreamHandler serves GET /api/graph/stream: a WebSocket that delivers a
// neighborhood progressively, one BFS layer per frame, with the full graph
// (edges, family hubs, final privacy decisions) in a closing frame.
//
// Layer frames carry base-policy redaction only; the closing frame is the
// authoritative payload, identical to the REST neighborhood answer.
type StreamHandler struct {
	explorer *engine.Explorer
	config   *config.Config
}

// NewStreamHandler creates a StreamHandler.
func NewStreamHandler(explorer *engine.Explorer, cfg *config.Config) *StreamHandler {
	return &StreamHandler{explorer: explorer, config: cfg}
}

// StreamFrame is one WebSocket message. Kind is "layer", "complete" or
// "error".
type StreamFrame struct {
	Kind  string `json:"kind"`
	Depth int    `json:"depth,omitempty"`

	Nodes []types.Node `json:"nodes,omitempty"`

	// Result is set on the "complete" frame.
	Result *engine.NeighborhoodResult `json:"result,omitempty"`

	Error string `json:"error,omitempty"`
}

// ServeHTTP upgrades the connection and runs the traversal.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("person")
	if ref == "" {
		respondError(w, http.StatusBadRequest, "person parameter is required", nil)
		return
	}

	depth := parseInt(r.URL.Query().Get("depth"), 2)
	if depth < 0 || depth > h.config.Graph.MaxDepth {
		respondError(w, http.StatusBadRequest, "depth out of range", nil)
		return
	}
	maxNodes := parseInt(r.URL.Query().Get("max_nodes"), h.config.Graph.DefaultMaxNodes)
	if maxNodes < 1 || maxNodes > h.config.Graph.MaxNodesLimit {
		respondError(w, http.StatusBadRequest, "max_nodes out of range", nil)
		return
	}

	conn, err := websocket.Accept(w, r, nil) //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	if err != nil {
		log.Printf("stream: WebSocket upgrade failed: %v", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusInternalError, "stream aborted") }() //nolint:staticcheck // TODO: migrate to github.com/coder/websocket

	ctx := r.Context()

	writeFrame := func(frame StreamFrame) error {
		data, err := json.Marshal(frame)
		if err != nil {
			return err
		}
		wctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return conn.Write(wctx, websocket.MessageText, data) //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	}

	result, err := h.explorer.Neighborhood(ctx, engine.NeighborhoodRequest{
		Ref:      ref,
		Depth:    depth,
		MaxNodes: maxNodes,
		Layout:   r.URL.Query().Get("layout"),
		OnLayer: func(layerDepth int, nodes []types.Node) error {
			return writeFrame(StreamFrame{Kind: "layer", Depth: layerDepth, Nodes: nodes})
		},
	})
	if err != nil {
		_ = writeFrame(StreamFrame{Kind: "error", Error: err.Error()})
		_ = conn.Close(websocket.StatusNormalClosure, "") //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
		return
	}

	if err := writeFrame(StreamFrame{Kind: "complete", Result: result}); err != nil {
		log.Printf("stream: write failed: %v", err)
		return
	}
	_ = conn.Close(websocket.StatusNormalClosure, "") //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
}
