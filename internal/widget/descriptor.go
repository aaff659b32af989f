// Package widget holds the server side of a tom-select style selection
// box: the descriptor a rendered widget leaves behind in the shared
// cache, the signed identifier scheme, and the widget type that builds
// the client-facing data attributes.
package widget

import "errors"

// Configuration errors reported at construction or registration time.
var (
	ErrMissingURL          = errors.New("widget: either DataView or DataURL must be set")
	ErrMissingSearchFields = errors.New("widget: model-backed widget requires search fields")
	ErrMissingModel        = errors.New("widget: descriptor has no model")
)

// ErrNotFound is returned by Registry.Get for expired, unknown or
// forged field ids. The cache entry's presence is the session-validity
// signal: a miss is terminal and the client must re-render the form.
var ErrNotFound = errors.New("widget: descriptor not found")

// Descriptor is everything the JSON endpoint needs to rebuild and
// filter the widget's result set later. It stores a reusable query
// definition (model name + filter clauses), never materialized rows,
// keeping the cache payload small.
type Descriptor struct {
	Model           string            `json:"model,omitempty"`
	Filters         map[string]any    `json:"filters,omitempty"`
	SearchFields    []string          `json:"search_fields,omitempty"`
	DependentFields map[string]string `json:"dependent_fields,omitempty"`
	MaxResults      int               `json:"max_results,omitempty"`
	URL             string            `json:"url"`
	ValueField      string            `json:"value_field,omitempty"`
	Label           string            `json:"label,omitempty"`
}

// DefaultMaxResults caps one result page when the widget does not set
// its own limit.
const DefaultMaxResults = 25
