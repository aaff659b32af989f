package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormatTemplate(t *testing.T) {
	row := map[string]any{
		"surname":      "Mozart",
		"name":         "Wolfgang",
		"patrname":     "Amadeus",
		"country.name": "Austria",
		"id":           42,
	}

	cases := []struct {
		template string
		want     string
	}{
		{"{surname} {name}[0].{patrname}[0].", "Mozart W.A."},
		{"{name} ({country.name})", "Wolfgang (Austria)"},
		{"{id}", "42"},
		{"{missing}", ""},
		{"{name}[0..4]", "Wolf"},
		{"{name}[40]", ""},
		{"no placeholders", "no placeholders"},
	}
	for _, tc := range cases {
		if got := FormatTemplate(tc.template, row); got != tc.want {
			t.Fatalf("FormatTemplate(%q) = %q, want %q", tc.template, got, tc.want)
		}
	}
}

func TestTemplateFields(t *testing.T) {
	got := TemplateFields("{surname} {name}[0].{patrname}[0]. {country.name} {surname}")
	want := []string{"surname", "name", "patrname", "country.name"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("TemplateFields mismatch (-want +got):\n%s", diff)
	}
}

func TestLabelTemplate_Fallback(t *testing.T) {
	m := &Model{Table: "things"}
	if got := m.LabelTemplate(); got != "{id}" {
		t.Fatalf("fallback label = %q, want {id}", got)
	}
	m.PrimaryKey = "code"
	if got := m.LabelTemplate(); got != "{code}" {
		t.Fatalf("fallback label = %q, want {code}", got)
	}
}
