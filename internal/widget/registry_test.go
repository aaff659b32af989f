package widget

import (
	"context"
	"errors"
	"testing"
	"time"

	"TomSelectAPI/internal/cache"

	"github.com/google/go-cmp/cmp"
)

func testRegistry(ttl time.Duration) *Registry {
	return NewRegistry(cache.NewMemory(), NewSigner("test-key"), "tomselect_", ttl)
}

func TestRegistry_PutGetRoundTrip(t *testing.T) {
	reg := testRegistry(time.Minute)
	ctx := context.Background()

	d := &Descriptor{
		Model:           "album",
		Filters:         map[string]any{"artist_id__in": []any{1.0, 2.0}},
		SearchFields:    []string{"title__icontains", "pk__startswith"},
		DependentFields: map[string]string{"artist": "artist_id"},
		MaxResults:      10,
		URL:             "/fields/auto.json",
		Label:           "{title}",
	}
	fieldID, err := reg.Put(ctx, d)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := reg.Get(ctx, fieldID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(d, got); diff != "" {
		t.Fatalf("descriptor round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_FreshIdentifierPerPut(t *testing.T) {
	reg := testRegistry(time.Minute)
	ctx := context.Background()
	d := &Descriptor{Model: "album", SearchFields: []string{"title__icontains"}, URL: "/fields/auto.json"}

	a, err := reg.Put(ctx, d)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	b, err := reg.Put(ctx, d)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if a == b {
		t.Fatal("expected a fresh identifier per render")
	}
}

func TestRegistry_ExpiredDescriptorIsNotFound(t *testing.T) {
	reg := testRegistry(time.Millisecond)
	ctx := context.Background()

	fieldID, err := reg.Put(ctx, &Descriptor{Model: "album", SearchFields: []string{"title__icontains"}, URL: "/x"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := reg.Get(ctx, fieldID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestRegistry_ForgedFieldIDIsNotFound(t *testing.T) {
	reg := testRegistry(time.Minute)
	if _, err := reg.Get(context.Background(), "forged.token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for forged id, got %v", err)
	}
}

func TestRegistry_DefaultsMaxResults(t *testing.T) {
	reg := testRegistry(time.Minute)
	ctx := context.Background()

	fieldID, err := reg.Put(ctx, &Descriptor{Model: "album", SearchFields: []string{"title__icontains"}, URL: "/x"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := reg.Get(ctx, fieldID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.MaxResults != DefaultMaxResults {
		t.Fatalf("MaxResults = %d, want %d", got.MaxResults, DefaultMaxResults)
	}
}

func TestRegistry_ModelWidgetRequiresSearchFields(t *testing.T) {
	reg := testRegistry(time.Minute)
	_, err := reg.Put(context.Background(), &Descriptor{Model: "album", URL: "/x"})
	if !errors.Is(err, ErrMissingSearchFields) {
		t.Fatalf("expected ErrMissingSearchFields, got %v", err)
	}
}
