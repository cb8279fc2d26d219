package services

import (
	"math/rand"
	"regexp"
	"strings"
)

// smallTalkRule maps a pattern to either a fixed reply or one derived from
// the match (time-of-day greetings echo the greeting back capitalized).
type smallTalkRule struct {
	pattern *regexp.Regexp
	reply   string
	derive  func([]string) string
}

// Patterns delimit keywords with \P{L} rather than \b because Go's \b is
// ASCII-only and misfires next to accented characters.
var smallTalkRules = []smallTalkRule{
	{pattern: regexp.MustCompile(`(?i)(?:^|\P{L})(oi|olá|ola|e aí)(?:$|\P{L})`),
		reply: "Oi! 😊 Em que posso ajudar hoje?"},
	{pattern: regexp.MustCompile(`(?i)(?:^|\P{L})(bom dia|boa tarde|boa noite)(?:$|\P{L})`),
		derive: func(m []string) string {
			g := strings.ToLower(m[1])
			return strings.ToUpper(g[:1]) + g[1:] + "! Como você está?"
		}},
	{pattern: regexp.MustCompile(`(?i)(?:^|\P{L})(como vai|tudo bem|tudo bom)(?:$|\P{L})`),
		reply: "Estou bem, obrigada! E você?"},
	{pattern: regexp.MustCompile(`(?i)(?:^|\P{L})(qual seu nome|quem é você)(?:$|\P{L})`),
		reply: "Eu sou a Zafira, sua assistente de compras e conversa!"},
	{pattern: regexp.MustCompile(`(?i)(?:^|\P{L})(o que você faz|para que você serve)(?:$|\P{L})`),
		reply: "Posso ajudar a buscar produtos, responder perguntas e bater papo!"},
	{pattern: regexp.MustCompile(`(?i)(?:^|\P{L})(clima|tempo)(?:$|\P{L})`),
		reply: "Por aqui está um dia agradável ☀️. Quer ver produtos ou saber algo mais?"},
}

// SmallTalk answers common conversational openers. Returns "" when no
// pattern matches so the caller can fall through to the next agent.
func SmallTalk(text string) string {
	for _, rule := range smallTalkRules {
		if m := rule.pattern.FindStringSubmatch(text); m != nil {
			if rule.derive != nil {
				return rule.derive(m)
			}
			return rule.reply
		}
	}
	return ""
}

// Small internal knowledge base for general questions.
var knowledgeBase = map[string]string{
	"capital da frança":             "Paris",
	"capital do brasil":             "Brasília",
	"quem descobriu o brasil":       "Pedro Álvares Cabral",
	"qual a moeda dos estados unidos": "Dólar americano (USD)",
	"o que é api": "API significa Application Programming Interface. " +
		"É um conjunto de rotinas e padrões de programação que permitem " +
		"a comunicação entre diferentes sistemas de software.",
	"quem foi albert einstein": "Albert Einstein foi um físico teórico nascido " +
		"na Alemanha, conhecido pela teoria da relatividade.",
}

var spacesRe = regexp.MustCompile(`\s+`)

// LookupKnowledge answers questions found in the internal knowledge base.
// Returns "" on a miss so the caller can fall back.
func LookupKnowledge(question string) string {
	q := strings.ToLower(strings.TrimSpace(question))
	q = strings.TrimRight(q, "?")
	q = spacesRe.ReplaceAllString(q, " ")

	if answer, ok := knowledgeBase[q]; ok {
		return answer
	}
	for key, answer := range knowledgeBase {
		if strings.Contains(q, key) {
			return answer
		}
	}
	return ""
}

var jokes = []string{
	"🤣 Por que o programador confunde Halloween com Natal?\nPorque OCT 31 == DEC 25!",
	"😂 Qual é o cúmulo da programação?\nFazer um for infinito e ainda retornar.",
	"😜 O que um bit disse ao outro?\n— Somos pares!",
	"😉 Por que o Java foi ao médico?\nPorque estava com NullPointerException!",
}

var greetings = []string{
	"Oi! 😊 Sou a Zafira, sua assistente de compras! Como posso te ajudar a encontrar produtos incríveis hoje?",
	"Olá! 👋 Pronta para te ajudar a encontrar os melhores produtos! O que você está procurando?",
	"Oi! 🛍️ Sou especialista em encontrar produtos com ótimos preços! Me conta o que você precisa!",
	"Olá! ✨ Vamos encontrar produtos perfeitos para você! O que tem em mente?",
}

var thanksReplies = []string{
	"De nada! 😊 Fico feliz em ajudar! Se precisar de mais alguma coisa, é só falar!",
	"Por nada! 🛍️ Sempre que quiser encontrar produtos incríveis, estarei aqui!",
	"Que bom que ajudei! ✨ Volte sempre que precisar de dicas de produtos!",
	"Disponha! 😄 Adoro ajudar a encontrar produtos perfeitos!",
}

// RandomJoke returns one of the canned jokes.
func RandomJoke() string {
	return jokes[rand.Intn(len(jokes))]
}

// RandomGreeting returns one of the canned greeting replies.
func RandomGreeting() string {
	return greetings[rand.Intn(len(greetings))]
}

// RandomThanksReply returns one of the canned thank-you replies.
func RandomThanksReply() string {
	return thanksReplies[rand.Intn(len(thanksReplies))]
}
