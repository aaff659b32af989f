package widget

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
)

// Config declares a widget through an explicit capability set instead
// of a class hierarchy: AJAX is enabled by giving the widget a data
// source (DataURL, DataView or Model), model-backed search by naming a
// registered model, tag entry by TagCreation.
type Config struct {
	// Name is rendered as the element's name attribute.
	Name string

	// Model-backed search configuration. Model names a registered
	// model; Filters are base query clauses in lookup syntax;
	// SearchFields are the lookups matched against the search term.
	Model           string
	Filters         map[string]any
	SearchFields    []string
	DependentFields map[string]string // form field name -> model lookup
	MaxResults      int
	ValueField      string
	Label           string // label format template

	// AJAX endpoint: a fixed URL or a named route to reverse-resolve.
	// Model-backed widgets default to the shared "auto-json" view.
	DataURL  string
	DataView string

	Multiple    bool
	TagCreation bool

	// Attrs are merged into the rendered attributes (id, form classes).
	Attrs map[string]string
}

// Media lists the JS/CSS asset URIs a page embedding this widget needs.
type Media struct {
	JS  []string
	CSS []string
}

// Deps are the collaborators a widget needs at render time.
type Deps struct {
	Registry *Registry
	// ResolveView maps a route name to its path (router.Reverse).
	ResolveView func(name string) (string, error)
	Media       Media
}

type Widget struct {
	cfg  Config
	deps Deps
	url  string
	ajax bool
}

// New validates the configuration and resolves the endpoint URL.
// Misconfiguration (no URL for an AJAX widget, no search fields for a
// model-backed one) fails here, at construction, not on first render.
func New(cfg Config, deps Deps) (*Widget, error) {
	w := &Widget{cfg: cfg, deps: deps}
	w.ajax = cfg.Model != "" || cfg.DataURL != "" || cfg.DataView != ""
	if !w.ajax {
		return w, nil
	}

	if cfg.Model != "" {
		if len(cfg.SearchFields) == 0 {
			return nil, ErrMissingSearchFields
		}
		if cfg.DataURL == "" && cfg.DataView == "" {
			w.cfg.DataView = "auto-json"
		}
	}
	if w.cfg.DataURL == "" && w.cfg.DataView == "" {
		return nil, ErrMissingURL
	}

	if w.cfg.DataURL != "" {
		w.url = w.cfg.DataURL
	} else {
		if deps.ResolveView == nil {
			return nil, fmt.Errorf("widget: DataView %q set but no view resolver provided", w.cfg.DataView)
		}
		url, err := deps.ResolveView(w.cfg.DataView)
		if err != nil {
			return nil, fmt.Errorf("widget: resolve view %q: %w", w.cfg.DataView, err)
		}
		w.url = url
	}
	if w.deps.Registry == nil {
		return nil, fmt.Errorf("widget: AJAX widget requires a descriptor registry")
	}
	return w, nil
}

// URL returns the resolved AJAX endpoint ("" for light widgets).
func (w *Widget) URL() string { return w.url }

// Media returns the configured client asset URIs.
func (w *Widget) Media() Media { return w.deps.Media }

// Descriptor builds the cache payload for this widget.
func (w *Widget) Descriptor() *Descriptor {
	return &Descriptor{
		Model:           w.cfg.Model,
		Filters:         w.cfg.Filters,
		SearchFields:    w.cfg.SearchFields,
		DependentFields: w.cfg.DependentFields,
		MaxResults:      w.cfg.MaxResults,
		URL:             w.url,
		ValueField:      w.cfg.ValueField,
		Label:           w.cfg.Label,
	}
}

// Attrs builds the client-side data-attribute contract. The signed
// field id is added by Render, everything else is static.
func (w *Widget) Attrs() map[string]string {
	attrs := map[string]string{
		"class":       "tomselect",
		"data-create": "false",
	}
	if w.cfg.TagCreation {
		attrs["data-create"] = "true"
		attrs["data-delimiter"] = ","
	}
	if w.ajax {
		attrs["class"] += " tomselect-heavy"
		attrs["data-ajax--url"] = w.url
		attrs["data-ajax--cache"] = "true"
		attrs["data-ajax--type"] = "GET"
		if len(w.cfg.DependentFields) > 0 {
			fields := make([]string, 0, len(w.cfg.DependentFields))
			for formField := range w.cfg.DependentFields {
				fields = append(fields, formField)
			}
			sort.Strings(fields)
			attrs["data-tom-select-dependent-fields"] = strings.Join(fields, " ")
		}
	}
	for k, v := range w.cfg.Attrs {
		if k == "class" && attrs["class"] != "" {
			attrs["class"] += " " + v
			continue
		}
		attrs[k] = v
	}
	return attrs
}

// Render emits the <select> element and, for AJAX widgets, registers
// the descriptor in the shared cache. Every render writes a fresh
// entry: repeated renders of the same field overwrite, never append.
func (w *Widget) Render(ctx context.Context) (string, error) {
	attrs := w.Attrs()
	if w.cfg.Name != "" {
		attrs["name"] = w.cfg.Name
	}
	if w.ajax {
		fieldID, err := w.deps.Registry.Put(ctx, w.Descriptor())
		if err != nil {
			return "", err
		}
		attrs["data-field_id"] = fieldID
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("<select")
	for _, k := range keys {
		fmt.Fprintf(&b, ` %s="%s"`, k, html.EscapeString(attrs[k]))
	}
	if w.cfg.Multiple {
		b.WriteString(" multiple")
	}
	b.WriteString("></select>")
	return b.String(), nil
}
