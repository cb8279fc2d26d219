package services

import (
	"fmt"
	"strings"

	"github.com/zafira-bot/zafira-backend/internal/models"
)

const (
	maxFormattedProducts = 3
	titleTruncateAt      = 60
	listRowTitleLimit    = 24 // WhatsApp list row title limit
)

// Row id prefix for interactive product lists; selection ids look like
// "prod_1".
const productRowPrefix = "prod_"

// FormatProducts renders up to three products as the rich multi-line text
// reply.
func FormatProducts(query string, products []models.Product) string {
	if len(products) == 0 {
		return EmptyResultMessage(query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🛍️ Encontrei ótimas opções de %s para você!\n\n", query)

	for i, p := range products {
		if i >= maxFormattedProducts {
			break
		}
		fmt.Fprintf(&b, "🏆 *Opção %d:*\n", i+1)
		fmt.Fprintf(&b, "📱 %s\n", TruncateTitle(p.Title, titleTruncateAt))
		fmt.Fprintf(&b, "💰 R$ %s\n", p.Price)
		if p.Rating > 0 {
			fmt.Fprintf(&b, "⭐ Avaliação: %.1f/5.0\n", p.Rating)
		}
		fmt.Fprintf(&b, "🔗 %s\n\n", p.Link)
	}

	b.WriteString("✨ Todos os links já incluem desconto especial!\n")
	b.WriteString("💬 Quer ver mais opções? É só me falar!")
	return b.String()
}

// FormatLinks renders the compact links-only reply for a remembered search.
func FormatLinks(last *models.LastSearch) string {
	if last == nil || len(last.Products) == 0 {
		return "Ainda não busquei nada para você 😅 Me fala o que procura que eu encontro!"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔗 Links da sua busca por *%s*:\n\n", last.Query)
	for i, p := range last.Products {
		fmt.Fprintf(&b, "%d. %s\n%s\n\n", i+1, TruncateTitle(p.Title, titleTruncateAt), p.Link)
	}
	return strings.TrimRight(b.String(), "\n")
}

// BuildProductList builds the interactive list payload for a result set,
// one row per product with ids prod_1..prod_N. Detail and image delivery
// happen after the user picks a row.
func BuildProductList(query string, products []models.Product) map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(products))
	for i, p := range products {
		rows = append(rows, map[string]interface{}{
			"id":          fmt.Sprintf("%s%d", productRowPrefix, i+1),
			"title":       TruncateTitle(p.Title, listRowTitleLimit),
			"description": "R$ " + p.Price,
		})
	}

	return map[string]interface{}{
		"type": "list",
		"header": map[string]interface{}{
			"type": "text",
			"text": "Resultados da busca",
		},
		"body": map[string]interface{}{
			"text": fmt.Sprintf("Encontrei estas opções de %s 🛍️", query),
		},
		"footer": map[string]interface{}{
			"text": "Toque para ver detalhes",
		},
		"action": map[string]interface{}{
			"button": "Ver produtos",
			"sections": []map[string]interface{}{
				{
					"title": "Produtos",
					"rows":  rows,
				},
			},
		},
	}
}

// MediaCaption builds the caption sent with a selected product's image.
func MediaCaption(p models.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📱 %s\n", TruncateTitle(p.Title, titleTruncateAt))
	fmt.Fprintf(&b, "💰 R$ %s\n", p.Price)
	if p.Rating > 0 {
		fmt.Fprintf(&b, "⭐ %.1f/5.0\n", p.Rating)
	}
	fmt.Fprintf(&b, "🔗 %s", p.Link)
	return b.String()
}

// RewriteImageURL converts .webp image URLs to .jpeg through the weserv
// image proxy. The WhatsApp media endpoint rejects WebP.
func RewriteImageURL(imageURL string) string {
	if !strings.HasSuffix(strings.ToLower(imageURL), ".webp") {
		return imageURL
	}
	stripped := strings.TrimPrefix(strings.TrimPrefix(imageURL, "https://"), "http://")
	return "https://images.weserv.nl/?url=" + stripped + "&output=jpg"
}

// TruncateTitle shortens a title to at most limit runes, appending an
// ellipsis when cut.
func TruncateTitle(title string, limit int) string {
	runes := []rune(title)
	if len(runes) <= limit {
		return title
	}
	return string(runes[:limit-1]) + "…"
}

// EmptyResultMessage is the user-facing reply when a search finds nothing.
func EmptyResultMessage(query string) string {
	return fmt.Sprintf("Não encontrei produtos para '%s' no momento 😔\n\n"+
		"Tente ser mais específico ou me pergunte sobre outros produtos! "+
		"Estou aqui para ajudar! 🛍️", query)
}

// TechnicalHiccupMessage is the generic apology for unexpected failures.
func TechnicalHiccupMessage() string {
	return "Ops! Tive um probleminha técnico 😅\n\n" +
		"Mas já estou funcionando novamente! Me manda sua pergunta que te ajudo! 🛍️"
}
