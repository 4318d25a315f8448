package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/grocerylist/internal/feed"
	"github.com/dukerupert/grocerylist/internal/grocery"
	"github.com/dukerupert/grocerylist/internal/model"
	"github.com/dukerupert/grocerylist/internal/store"
	"github.com/dukerupert/grocerylist/internal/websocket"
)

type GroceryHandler struct {
	groceryStore   *store.GroceryStore
	importer       *feed.Importer
	hub            *websocket.Hub
	autoCategorize bool
	logger         *slog.Logger
}

func NewGroceryHandler(gs *store.GroceryStore, im *feed.Importer, hub *websocket.Hub, autoCategorize bool, logger *slog.Logger) *GroceryHandler {
	return &GroceryHandler{
		groceryStore:   gs,
		importer:       im,
		hub:            hub,
		autoCategorize: autoCategorize,
		logger:         logger,
	}
}

func (h *GroceryHandler) categorize(in *model.ItemInput) {
	if !h.autoCategorize {
		return
	}
	if in.Category == nil || strings.TrimSpace(*in.Category) == "" {
		c := grocery.Categorize(in.Name)
		in.Category = &c
	}
}

// writeStoreError maps store validation errors to 4xx and everything else to 500.
func (h *GroceryHandler) writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, store.ErrEmptyName):
		writeError(w, http.StatusBadRequest, "name is required")
	case errors.Is(err, store.ErrDuplicateName):
		writeError(w, http.StatusConflict, "an item with that name already exists")
	default:
		h.logger.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to "+op)
	}
}

func (h *GroceryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.groceryStore.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		h.writeStoreError(w, "list items", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *GroceryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.groceryStore.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, "get item", err)
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *GroceryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	in := req.input()
	h.categorize(&in)

	id, err := h.groceryStore.Add(r.Context(), in)
	if err != nil {
		h.writeStoreError(w, "create item", err)
		return
	}

	item, err := h.groceryStore.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, "get item", err)
		return
	}

	h.hub.Notify(websocket.Change{Action: websocket.ActionCreated, ID: id})
	writeJSON(w, http.StatusCreated, item)
}

// Update overwrites name, quantity and category. An unknown id is a no-op
// answered with 204.
func (h *GroceryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.groceryStore.Update(r.Context(), id, req.input()); err != nil {
		h.writeStoreError(w, "update item", err)
		return
	}
	h.respondItem(w, r, id, websocket.ActionUpdated)
}

// Toggle flips bought. With a {"bought": <current>} body it sets the opposite
// of the caller's value; without one it flips atomically.
func (h *GroceryHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Bought *bool `json:"bought"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Bought != nil {
		err = h.groceryStore.ToggleBought(r.Context(), id, *req.Bought)
	} else {
		err = h.groceryStore.Flip(r.Context(), id)
	}
	if err != nil {
		h.writeStoreError(w, "toggle item", err)
		return
	}
	h.respondItem(w, r, id, websocket.ActionToggled)
}

// respondItem writes the item after a mutation, or 204 when it does not exist.
func (h *GroceryHandler) respondItem(w http.ResponseWriter, r *http.Request, id int64, action string) {
	item, err := h.groceryStore.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, "get item", err)
		return
	}
	if item == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.hub.Notify(websocket.Change{Action: action, ID: id})
	writeJSON(w, http.StatusOK, item)
}

func (h *GroceryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.groceryStore.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, "delete item", err)
		return
	}

	h.hub.Notify(websocket.Change{Action: websocket.ActionDeleted, ID: id})
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroceryHandler) ClearBought(w http.ResponseWriter, r *http.Request) {
	count, err := h.groceryStore.ClearBought(r.Context())
	if err != nil {
		h.writeStoreError(w, "clear bought items", err)
		return
	}

	if count > 0 {
		h.hub.Notify(websocket.Change{Action: websocket.ActionCleared, Count: count})
	}
	writeJSON(w, http.StatusOK, map[string]int64{"cleared": count})
}

func (h *GroceryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.groceryStore.Summary(r.Context())
	if err != nil {
		h.writeStoreError(w, "summarize list", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Import pulls the remote list into the store. Network failures answer 502,
// failed transactions 500; in both cases nothing was imported.
func (h *GroceryHandler) Import(w http.ResponseWriter, r *http.Request) {
	res, err := h.importer.Run(r.Context())
	switch {
	case errors.Is(err, feed.ErrNetwork):
		writeError(w, http.StatusBadGateway, "import failed: could not fetch the remote list")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "import failed: no items were imported")
		return
	}

	if res.Inserted > 0 {
		h.hub.Notify(websocket.Change{Action: websocket.ActionImported, Count: int64(res.Inserted)})
	}
	writeJSON(w, http.StatusOK, res)
}
