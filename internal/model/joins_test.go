package model

import (
	"strings"
	"testing"
)

func TestDetectJoins_BelongsToChain(t *testing.T) {
	album := testGraph()

	joins, aliases, err := DetectJoins(album, []string{"artist", "artist.country"})
	if err != nil {
		t.Fatalf("DetectJoins error: %v", err)
	}

	var gotArtist, gotCountry bool
	for _, j := range joins {
		switch j.Table {
		case "artists":
			if j.Alias != "t0" || !strings.Contains(j.On, "main.artist_id = t0.id") {
				t.Fatalf("artists join mismatch: %+v", j)
			}
			if j.Duplicative {
				t.Fatalf("belongs_to join must not be duplicative: %+v", j)
			}
			gotArtist = true
		case "countries":
			if j.Alias != "t1" || !strings.Contains(j.On, "t0.country_id = t1.id") {
				t.Fatalf("countries join mismatch: %+v", j)
			}
			gotCountry = true
		}
	}
	if !gotArtist || !gotCountry {
		t.Fatalf("expected joins for artists and countries, got: %+v", joins)
	}

	if aliases["artist"] != "t0" || aliases["artist.country"] != "t1" {
		t.Fatalf("unexpected alias map: %+v", aliases)
	}
}

func TestDetectJoins_NestedPathPlansPrefix(t *testing.T) {
	album := testGraph()

	// только глубокий путь: префикс должен быть добавлен автоматически
	joins, aliases, err := DetectJoins(album, []string{"artist.country"})
	if err != nil {
		t.Fatalf("DetectJoins error: %v", err)
	}
	if len(joins) != 2 {
		t.Fatalf("expected 2 joins, got %d: %+v", len(joins), joins)
	}
	if _, ok := aliases["artist"]; !ok {
		t.Fatalf("prefix path missing from alias map: %+v", aliases)
	}
}

func TestDetectJoins_ManyToManyThrough(t *testing.T) {
	album := testGraph()

	joins, aliases, err := DetectJoins(album, []string{"genres"})
	if err != nil {
		t.Fatalf("DetectJoins error: %v", err)
	}
	if len(joins) != 2 {
		t.Fatalf("expected join table + target joins, got %d: %+v", len(joins), joins)
	}

	through, target := joins[0], joins[1]
	if through.Table != "album_genres" || through.Alias != "j0" {
		t.Fatalf("through join mismatch: %+v", through)
	}
	if !strings.Contains(through.On, "j0.album_id = main.id") {
		t.Fatalf("through ON mismatch: %+v", through)
	}
	if target.Table != "genres" || target.Alias != "t0" {
		t.Fatalf("target join mismatch: %+v", target)
	}
	if !strings.Contains(target.On, "t0.id = j0.genre_id") {
		t.Fatalf("target ON mismatch: %+v", target)
	}
	if !through.Duplicative || !target.Duplicative {
		t.Fatal("m2m joins must be duplicative")
	}
	if aliases["genres"] != "t0" {
		t.Fatalf("unexpected alias map: %+v", aliases)
	}
}

func TestDetectJoins_DeduplicatesPaths(t *testing.T) {
	album := testGraph()

	joins, _, err := DetectJoins(album, []string{"artist", "artist", "", "artist"})
	if err != nil {
		t.Fatalf("DetectJoins error: %v", err)
	}
	if len(joins) != 1 {
		t.Fatalf("expected a single join, got %d: %+v", len(joins), joins)
	}
}

func TestDetectJoins_UnknownRelation(t *testing.T) {
	album := testGraph()
	if _, _, err := DetectJoins(album, []string{"label"}); err == nil {
		t.Fatal("expected error for unknown relation")
	}
}
