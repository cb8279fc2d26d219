package services

import (
	"testing"

	"github.com/zafira-bot/zafira-backend/internal/models"
)

func TestParsePriceRange(t *testing.T) {
	tests := []struct {
		text    string
		wantMin *float64
		wantMax *float64
	}{
		{"até 300 reais", nil, f(300)},
		{"ate 300 reais", nil, f(300)},
		{"de 100 a 300 reais", f(100), f(300)},
		{"100 a 300 reais", f(100), f(300)},
		{"menos de 50 reais", nil, f(50)},
		{"por 150 reais", nil, f(150)},
		{"quero um fone", nil, nil},
		{"", nil, nil},
	}

	for _, tt := range tests {
		min, max := ParsePriceRange(tt.text)
		if !eq(min, tt.wantMin) || !eq(max, tt.wantMax) {
			t.Errorf("ParsePriceRange(%q) = (%v, %v), want (%v, %v)",
				tt.text, deref(min), deref(max), deref(tt.wantMin), deref(tt.wantMax))
		}
	}
}

func TestStripStopwords(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"quero um fone bluetooth até 100 reais", "fone bluetooth"},
		{"procuro notebook gamer", "notebook gamer"},
		{"me mostra uma oferta de celular", "oferta celular"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := StripStopwords(tt.in); got != tt.want {
			t.Errorf("StripStopwords(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripStopwordsIdempotent(t *testing.T) {
	inputs := []string{
		"quero um fone bluetooth até 100 reais",
		"procuro tênis de corrida com desconto",
		"celular barato",
	}
	for _, in := range inputs {
		once := StripStopwords(in)
		twice := StripStopwords(once)
		if once != twice {
			t.Errorf("StripStopwords not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestParseSearchContext(t *testing.T) {
	ctx := ParseSearchContext("Quero um fone bluetooth até 100 reais")
	if ctx.Terms != "fone bluetooth" {
		t.Errorf("Terms = %q, want %q", ctx.Terms, "fone bluetooth")
	}
	if ctx.MinPrice != nil {
		t.Errorf("MinPrice = %v, want nil", *ctx.MinPrice)
	}
	if ctx.MaxPrice == nil || *ctx.MaxPrice != 100 {
		t.Errorf("MaxPrice = %v, want 100", deref(ctx.MaxPrice))
	}
	if ctx.Grocery {
		t.Error("Grocery = true, want false")
	}

	grocery := ParseSearchContext("preciso de arroz do supermercado")
	if !grocery.Grocery {
		t.Error("Grocery = false, want true for supermarket query")
	}
}

func TestFilterByPriceRange(t *testing.T) {
	products := []models.Product{
		{Title: "A", Price: "50.00"},
		{Title: "B", Price: "99.90"},
		{Title: "C", Price: "120.00"},
		{Title: "D", Price: "not-a-price"},
	}

	got := FilterByPriceRange(products, nil, f(100))
	if len(got) != 2 || got[0].Title != "A" || got[1].Title != "B" {
		t.Fatalf("FilterByPriceRange max=100 kept %d records: %+v", len(got), got)
	}

	got = FilterByPriceRange(products, f(60), f(130))
	if len(got) != 2 || got[0].Title != "B" || got[1].Title != "C" {
		t.Fatalf("FilterByPriceRange 60-130 kept %d records: %+v", len(got), got)
	}

	// no bounds: untouched, including the unparseable record
	got = FilterByPriceRange(products, nil, nil)
	if len(got) != 4 {
		t.Fatalf("FilterByPriceRange unbounded kept %d records, want 4", len(got))
	}
}

func f(v float64) *float64 { return &v }

func eq(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
