package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/zafira-bot/zafira-backend/internal/models"
)

// Stopwords removed before querying the marketplaces. Keeping this as a set
// makes StripStopwords idempotent: a second pass removes nothing new.
var stopwords = map[string]struct{}{
	"quero": {}, "preciso": {}, "busco": {}, "procuro": {}, "me": {},
	"mostra": {}, "encontra": {}, "um": {}, "uma": {}, "o": {}, "a": {},
	"de": {}, "do": {}, "da": {}, "para": {}, "com": {}, "até": {},
	"ate": {}, "por": {}, "reais": {}, "real": {}, "mais": {}, "menos": {},
}

var (
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	rangeRe      = regexp.MustCompile(`(?:de\s+)?(\d+(?:[.,]\d+)?)\s*(?:a|até|ate|-)\s*(\d+(?:[.,]\d+)?)\s*(?:reais|real|r\$)`)
	maxOnlyRe    = regexp.MustCompile(`(?:^|\P{L})(?:até|ate|menos de|máximo|maximo|por)\s*(\d+(?:[.,]\d+)?)\s*(?:reais|real|r\$)`)
	groceryRe    = regexp.MustCompile(`\b(mercado|supermercado|feira|mercearia)\b`)
	numberOnlyRe = regexp.MustCompile(`^\d+$`)
)

// ParseSearchContext derives search terms and price bounds from one inbound
// message.
func ParseSearchContext(text string) models.SearchContext {
	lower := strings.ToLower(strings.TrimSpace(text))

	ctx := models.SearchContext{Grocery: groceryRe.MatchString(lower)}
	ctx.MinPrice, ctx.MaxPrice = ParsePriceRange(lower)
	ctx.Terms = StripStopwords(lower)
	return ctx
}

// ParsePriceRange extracts (min, max) bounds from phrases like
// "de 100 a 300 reais" or "até 300 reais". Either bound may be nil.
func ParsePriceRange(text string) (min, max *float64) {
	if m := rangeRe.FindStringSubmatch(text); m != nil {
		lo, loOK := parseAmount(m[1])
		hi, hiOK := parseAmount(m[2])
		if loOK && hiOK {
			return &lo, &hi
		}
	}
	if m := maxOnlyRe.FindStringSubmatch(text); m != nil {
		if hi, ok := parseAmount(m[1]); ok {
			return nil, &hi
		}
	}
	return nil, nil
}

// StripStopwords removes filler words, punctuation, short tokens and bare
// numbers, leaving the product terms. Idempotent.
func StripStopwords(text string) string {
	clean := nonWordRe.ReplaceAllString(strings.ToLower(text), " ")

	var kept []string
	for _, word := range strings.Fields(clean) {
		if _, skip := stopwords[word]; skip {
			continue
		}
		if len([]rune(word)) <= 2 || numberOnlyRe.MatchString(word) {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

// FilterByPriceRange keeps only products whose price parses and falls
// within the given bounds.
func FilterByPriceRange(products []models.Product, min, max *float64) []models.Product {
	if min == nil && max == nil {
		return products
	}
	var out []models.Product
	for _, p := range products {
		price, ok := p.PriceValue()
		if !ok || price < 0 {
			continue
		}
		if min != nil && price < *min {
			continue
		}
		if max != nil && price > *max {
			continue
		}
		out = append(out, p)
	}
	return out
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
