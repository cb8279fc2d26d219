package services

import (
	"regexp"
	"strings"
)

// Intent is the label assigned to an inbound message.
type Intent string

const (
	IntentGreeting         Intent = "greeting"
	IntentAdminMode        Intent = "admin_mode"
	IntentReport           Intent = "report"
	IntentGeneralKnowledge Intent = "general_knowledge"
	IntentProductSearch    Intent = "product_search"
	IntentLinksRequest     Intent = "links_request"
	IntentJokeRequest      Intent = "joke_request"
	IntentThanks           Intent = "thanks"
	IntentSmallTalk        Intent = "small_talk"
)

// intentRule pairs a predicate with the label it assigns. Rules are
// evaluated in order and the first match wins, so priority lives in the
// table, not in scattered conditionals.
type intentRule struct {
	label Intent
	match func(string) bool
}

// Keyword patterns use explicit letter boundaries instead of \b: Go's \b is
// ASCII-only and silently fails next to accented characters ("olá", "é").
var (
	greetingRe  = regexp.MustCompile(`(?:^|\P{L})(?:oi|olá|ola|hey|e aí|eai|bom dia|boa tarde|boa noite|como vai|tudo bem|tudo bom)(?:$|\P{L})`)
	productRe   = regexp.MustCompile(`(?:^|\P{L})(?:quero|preciso|busco|procuro|me mostra|mostra|encontra|comprar|compra|produto|oferta|desconto|fone|headphone|celular|smartphone|tênis|tenis|notebook|laptop)(?:$|\P{L})`)
	priceHintRe = regexp.MustCompile(`(?:^|\P{L})(?:até|ate|por|menos de|máximo|maximo)\s*\d+\s*(?:reais|real|r\$)`)
	linksRe     = regexp.MustCompile(`(?:^|\P{L})links?(?:$|\P{L})`)
	jokeRe      = regexp.MustCompile(`(?:^|\P{L})(?:piadas?|me faz rir)(?:$|\P{L})`)
	knowledgeRe = regexp.MustCompile(`(?:^|\P{L})(?:capital d[aeo]|quem (?:foi|descobriu|é)|o que é|qual a moeda)(?:$|\P{L})`)
	thanksRe    = regexp.MustCompile(`(?:^|\P{L})(?:obrigad[oa]|valeu|vlw|thanks|brigad[oa])(?:$|\P{L})`)
)

// Ordered classification table: admin and report checks precede product
// search, which precedes greeting.
var intentRules = []intentRule{
	{IntentAdminMode, func(t string) bool {
		return strings.Contains(t, "modo adm") || strings.Contains(t, "modo admin")
	}},
	{IntentReport, func(t string) bool {
		return strings.Contains(t, "reportar") || strings.Contains(t, "denunciar") ||
			strings.Contains(t, "relatar problema")
	}},
	{IntentLinksRequest, func(t string) bool { return linksRe.MatchString(t) }},
	{IntentJokeRequest, func(t string) bool { return jokeRe.MatchString(t) }},
	{IntentGeneralKnowledge, func(t string) bool { return knowledgeRe.MatchString(t) }},
	{IntentProductSearch, func(t string) bool {
		return productRe.MatchString(t) || priceHintRe.MatchString(t)
	}},
	{IntentGreeting, func(t string) bool { return greetingRe.MatchString(t) }},
	{IntentThanks, func(t string) bool { return thanksRe.MatchString(t) }},
}

// Classify maps free text to an intent label. Pure function: matching is
// case-insensitive keyword containment with no tokenization or negation
// handling ("não quero fone" still reads as a product search).
func Classify(text string) Intent {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, rule := range intentRules {
		if rule.match(t) {
			return rule.label
		}
	}
	return IntentSmallTalk
}
