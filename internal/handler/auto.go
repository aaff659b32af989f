package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"TomSelectAPI/internal/logger"
	"TomSelectAPI/internal/model"
	"TomSelectAPI/internal/search"
	"TomSelectAPI/internal/widget"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Auto serves the shared JSON endpoint model-backed widgets register
// against. One handler answers for every widget: the signed field_id
// selects the descriptor, the descriptor rebuilds the query.
type Auto struct {
	Registry  *widget.Registry
	Pool      *pgxpool.Pool
	IDStrings bool
}

// maxPage bounds the page parameter: no widget pager gets anywhere
// near it, and it keeps (page-1)*max_results far from integer overflow.
const maxPage = 1_000_000

type autoResponse struct {
	Results []search.Item `json:"results"`
	More    bool          `json:"more"`
}

func (h *Auto) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		logger.Warn("method_not_allowed", map[string]any{
			"endpoint": "/fields/auto.json",
			"method":   r.Method,
		})
		http.Error(w, "Only GET allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	fieldID := q.Get("field_id")
	if fieldID == "" {
		http.Error(w, "field_id is required", http.StatusBadRequest)
		return
	}

	page := 1
	if p := q.Get("page"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 1 || parsed > maxPage {
			http.Error(w, "page must be a positive integer", http.StatusBadRequest)
			return
		}
		page = parsed
	}

	d, err := h.Registry.Get(r.Context(), fieldID)
	if err != nil {
		if errors.Is(err, widget.ErrNotFound) {
			// expired or forged: terminal, the form must re-render
			logger.Warn("widget_not_found", map[string]any{
				"endpoint": "/fields/auto.json",
			})
			http.Error(w, "Widget not found, the form may have expired", http.StatusNotFound)
			return
		}
		logger.Error("descriptor_load_failed", map[string]any{
			"endpoint": "/fields/auto.json",
			"error":    err.Error(),
		})
		http.Error(w, "Failed to load widget", http.StatusInternalServerError)
		return
	}

	if d.Model == "" {
		logger.Error("widget_not_model_backed", map[string]any{
			"endpoint": "/fields/auto.json",
			"url":      d.URL,
		})
		http.Error(w, "Widget is not model-backed", http.StatusInternalServerError)
		return
	}
	m, err := model.Get(d.Model)
	if err != nil {
		// модель убрали из реестра после рендера: форма устарела
		logger.Warn("widget_model_unknown", map[string]any{
			"endpoint": "/fields/auto.json",
			"model":    d.Model,
		})
		http.Error(w, "Widget not found, the form may have expired", http.StatusNotFound)
		return
	}

	// translate declared dependent form fields into model lookups;
	// unselected (empty) parents impose no constraint
	dep := map[string]string{}
	for formField, lookup := range d.DependentFields {
		if v := q.Get(formField); v != "" {
			dep[lookup] = v
		}
	}

	result, err := search.Run(r.Context(), h.Pool, m, d, q.Get("term"), dep, page)
	if err != nil {
		logger.Error("search_failed", map[string]any{
			"endpoint": "/fields/auto.json",
			"model":    d.Model,
			"error":    err.Error(),
		})
		http.Error(w, "Search failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	items := result.Items
	if h.IDStrings {
		items = make([]search.Item, len(result.Items))
		for i, it := range result.Items {
			items[i] = search.Item{Value: fmt.Sprintf("%v", it.Value), Text: it.Text}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(autoResponse{Results: items, More: result.More}); err != nil {
		logger.Error("write_response_failed", map[string]any{
			"endpoint": "/fields/auto.json",
			"error":    err.Error(),
		})
	}
}
