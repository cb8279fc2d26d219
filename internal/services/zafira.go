package services

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/zafira-bot/zafira-backend/internal/config"
	"github.com/zafira-bot/zafira-backend/internal/models"
	"github.com/zafira-bot/zafira-backend/internal/storage"
)

// ProductSearcher is implemented by the marketplace clients.
type ProductSearcher interface {
	SearchProducts(keywords string, limit, page int) ([]models.Product, error)
}

// GrocerySearcher is implemented by the grocery client.
type GrocerySearcher interface {
	SearchItems(query string, limit int) ([]models.Product, error)
}

// MessageSender is implemented by the WhatsApp Cloud sender.
type MessageSender interface {
	SendText(to, body string) error
	SendMedia(to, mediaURL, caption, mediaType string) error
	SendInteractiveList(to string, list map[string]interface{}) error
}

// ChatAgent is implemented by the Groq client.
type ChatAgent interface {
	Configured() bool
	Chat(history []string, message string) (string, error)
}

// ZafiraService orchestrates one inbound message: session bookkeeping,
// intent classification, and dispatch to the canned agents or the
// marketplace clients.
type ZafiraService struct {
	cfg          *config.Config
	store        storage.Store
	sessions     *SessionManager
	sender       MessageSender
	aliexpress   ProductSearcher
	mercadoLivre ProductSearcher
	grocery      GrocerySearcher
	chat         ChatAgent
}

// NewZafiraService wires the orchestrator
func NewZafiraService(
	cfg *config.Config,
	store storage.Store,
	sessions *SessionManager,
	sender MessageSender,
	aliexpress ProductSearcher,
	mercadoLivre ProductSearcher,
	grocery GrocerySearcher,
	chat ChatAgent,
) *ZafiraService {
	return &ZafiraService{
		cfg:          cfg,
		store:        store,
		sessions:     sessions,
		sender:       sender,
		aliexpress:   aliexpress,
		mercadoLivre: mercadoLivre,
		grocery:      grocery,
		chat:         chat,
	}
}

// ProcessMessage handles one inbound text message end to end and sends the
// reply itself. Failures never escape: the worst case is the user getting a
// generic apology.
func (z *ZafiraService) ProcessMessage(senderID, text string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Panic while processing message from %s: %v", senderID, r)
			z.reply(senderID, TechnicalHiccupMessage())
		}
	}()

	history := z.sessions.Push(senderID, text)

	// Admin turns short-circuit intent classification entirely.
	switch z.sessions.AdminState(senderID) {
	case models.AdminAwaitingPIN:
		z.handlePINEntry(senderID, text)
		return
	case models.AdminAuthenticated:
		z.handleAdminChat(senderID, history, text)
		return
	}

	intent := Classify(text)
	log.Printf("Intent %q for message from %s", intent, senderID)

	switch intent {
	case IntentGreeting:
		z.reply(senderID, RandomGreeting())

	case IntentThanks:
		z.reply(senderID, RandomThanksReply())

	case IntentJokeRequest:
		z.reply(senderID, RandomJoke())

	case IntentGeneralKnowledge:
		if answer := LookupKnowledge(text); answer != "" {
			z.reply(senderID, answer)
		} else {
			z.handleSmallTalk(senderID, history, text)
		}

	case IntentAdminMode:
		z.handleAdminMode(senderID)

	case IntentReport:
		z.handleReport(senderID, text)

	case IntentLinksRequest:
		z.reply(senderID, FormatLinks(z.sessions.LastSearch(senderID)))

	case IntentProductSearch:
		z.handleProductSearch(senderID, text)

	default:
		z.handleSmallTalk(senderID, history, text)
	}
}

// HandleSelection answers an interactive-list row pick (ids look like
// "prod_2") with the product's image and details.
func (z *ZafiraService) HandleSelection(senderID, selectionID string) {
	last := z.sessions.LastSearch(senderID)
	if last == nil || len(last.Products) == 0 {
		z.reply(senderID, "Essa busca já expirou 😅 Me fala de novo o que você procura!")
		return
	}

	n, err := strconv.Atoi(strings.TrimPrefix(selectionID, productRowPrefix))
	if err != nil || n < 1 || n > len(last.Products) {
		log.Printf("⚠️  Invalid product selection %q from %s", selectionID, senderID)
		z.reply(senderID, "Não achei essa opção 🤔 Escolhe de novo na lista?")
		return
	}

	product := last.Products[n-1]
	caption := MediaCaption(product)
	if product.ImageURL == "" {
		z.reply(senderID, caption)
		return
	}
	if err := z.sender.SendMedia(senderID, RewriteImageURL(product.ImageURL), caption, "image"); err != nil {
		log.Printf("❌ Media send failed, falling back to text: %v", err)
		z.reply(senderID, caption)
	}
}

func (z *ZafiraService) handleAdminMode(senderID string) {
	if !z.cfg.IsAdmin(senderID) {
		log.Printf("⚠️  Admin mode denied for %s", senderID)
		z.reply(senderID, "Desculpe, você não tem acesso ao modo administrador 🔒")
		return
	}
	z.sessions.BeginAdminAuth(senderID)
	z.reply(senderID, "🔐 Modo administrador: me envia o PIN para continuar.")
}

func (z *ZafiraService) handlePINEntry(senderID, text string) {
	if z.cfg.AdminPIN != "" && strings.TrimSpace(text) == z.cfg.AdminPIN {
		z.sessions.CompleteAdminAuth(senderID)
		z.reply(senderID, "✅ PIN correto! Modo administrador ativo por 30 minutos. Pode falar comigo livremente.")
		return
	}
	// No lockout: wrong PINs keep the session at awaiting-PIN.
	log.Printf("⚠️  Wrong admin PIN from %s", senderID)
	z.reply(senderID, "❌ PIN incorreto. Tenta de novo.")
}

func (z *ZafiraService) handleAdminChat(senderID string, history []string, text string) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "sair" || lower == "sair adm" {
		z.sessions.EndAdminAuth(senderID)
		z.reply(senderID, "👋 Saindo do modo administrador. Até logo!")
		return
	}

	z.sessions.ExtendAdminAuth(senderID)

	if z.chat == nil || !z.chat.Configured() {
		z.reply(senderID, "Modo administrador ativo, mas o chat de IA não está configurado 😕")
		return
	}
	answer, err := z.chat.Chat(priorTurns(history, text), text)
	if err != nil {
		log.Printf("❌ Admin chat failed: %v", err)
		z.reply(senderID, TechnicalHiccupMessage())
		return
	}
	z.reply(senderID, answer)
}

func (z *ZafiraService) handleReport(senderID, text string) {
	ticket, err := z.store.CreateSupportTicket(&models.SupportTicket{
		UserID:      senderID,
		Description: text,
	})
	if err != nil {
		log.Printf("❌ Failed to create support ticket: %v", err)
		z.reply(senderID, TechnicalHiccupMessage())
		return
	}
	log.Printf("📋 Support ticket %s created for %s", ticket.TicketID, senderID)
	z.reply(senderID, fmt.Sprintf("📋 Registrei seu relato! Protocolo: *%s*\n"+
		"Nossa equipe vai analisar, obrigada por avisar! 🙏", ticket.TicketID))
}

func (z *ZafiraService) handleProductSearch(senderID, text string) {
	sctx := ParseSearchContext(text)
	if sctx.Terms == "" {
		z.reply(senderID, "Hmm, não consegui entender exatamente o que você está procurando. "+
			"Pode me dar mais detalhes? Por exemplo: 'quero um fone bluetooth' ou "+
			"'celular até 1000 reais' 😊")
		return
	}

	products := z.search(sctx)
	products = FilterByPriceRange(products, sctx.MinPrice, sctx.MaxPrice)
	if len(products) > maxFormattedProducts {
		products = products[:maxFormattedProducts]
	}

	if len(products) == 0 {
		z.reply(senderID, EmptyResultMessage(sctx.Terms))
		return
	}

	z.sessions.RememberSearch(senderID, sctx.Terms, products)

	if z.cfg.InteractiveLists && len(products) > 1 {
		if err := z.sender.SendInteractiveList(senderID, BuildProductList(sctx.Terms, products)); err == nil {
			return
		}
		log.Printf("⚠️  Interactive list failed for %s, falling back to text", senderID)
	}
	z.reply(senderID, FormatProducts(sctx.Terms, products))
}

// search picks the marketplace for the query: grocery terms go to the
// grocery API, everything else to AliExpress with Mercado Livre as the
// fallback when AliExpress comes back empty.
func (z *ZafiraService) search(sctx models.SearchContext) []models.Product {
	const fetchSize = 6 // fetch extra so the price filter still leaves a top 3

	if sctx.Grocery && z.grocery != nil {
		products, err := z.grocery.SearchItems(sctx.Terms, fetchSize)
		if err != nil {
			log.Printf("❌ Grocery search failed: %v", err)
			return nil
		}
		return FilterProducts(products, fetchSize, SortByPrice)
	}

	var products []models.Product
	if z.aliexpress != nil {
		var err error
		products, err = z.aliexpress.SearchProducts(sctx.Terms, fetchSize, 1)
		if err != nil {
			log.Printf("❌ AliExpress search failed: %v", err)
		}
	}
	if len(products) == 0 && z.mercadoLivre != nil {
		fallback, err := z.mercadoLivre.SearchProducts(sctx.Terms, fetchSize, 0)
		if err != nil {
			log.Printf("❌ Mercado Livre fallback failed: %v", err)
		}
		products = FilterProducts(fallback, fetchSize, SortByPrice)
	}
	return products
}

func (z *ZafiraService) handleSmallTalk(senderID string, history []string, text string) {
	if answer := SmallTalk(text); answer != "" {
		z.reply(senderID, answer)
		return
	}
	if answer := LookupKnowledge(text); answer != "" {
		z.reply(senderID, answer)
		return
	}
	if z.chat != nil && z.chat.Configured() {
		if answer, err := z.chat.Chat(priorTurns(history, text), text); err == nil && answer != "" {
			z.reply(senderID, answer)
			return
		} else if err != nil {
			log.Printf("❌ Groq fallback failed: %v", err)
		}
	}
	z.reply(senderID, "Interessante! 🤔 Mas sou especialista em encontrar produtos! "+
		"Me conta o que você quer comprar que te ajudo a achar as melhores ofertas! 🛍️")
}

// priorTurns drops the just-pushed message from the history so it is not
// sent to the chat model twice.
func priorTurns(history []string, text string) []string {
	if n := len(history); n > 0 && history[n-1] == text {
		return history[:n-1]
	}
	return history
}

func (z *ZafiraService) reply(senderID, body string) {
	if err := z.sender.SendText(senderID, body); err != nil {
		log.Printf("❌ Failed to send reply to %s: %v", senderID, err)
	}
}
