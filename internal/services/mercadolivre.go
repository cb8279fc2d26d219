package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/zafira-bot/zafira-backend/internal/config"
	"github.com/zafira-bot/zafira-backend/internal/models"
)

const mercadoLivreSearchURL = "https://api.mercadolibre.com/sites/MLB/search"

// MercadoLivreService searches Mercado Livre and decorates results with
// affiliate links. Used as a fallback marketplace when AliExpress comes
// back empty.
type MercadoLivreService struct {
	affiliateID string
	socialTool  string
	socialRef   string
	baseURL     string
	httpClient  *http.Client
}

// NewMercadoLivreService creates a new Mercado Livre client
func NewMercadoLivreService(cfg *config.Config) *MercadoLivreService {
	if cfg.MLAffiliateID == "" {
		log.Println("⚠️  ML_AFFILIATE_ID not set - Mercado Livre links will carry no affiliate tag")
	}
	return &MercadoLivreService{
		affiliateID: cfg.MLAffiliateID,
		socialTool:  cfg.MLSocialTool,
		socialRef:   cfg.MLSocialRef,
		baseURL:     mercadoLivreSearchURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SearchProducts queries the MLB site search. Failures are logged and
// return an empty slice.
func (m *MercadoLivreService) SearchProducts(query string, limit, offset int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("offset", fmt.Sprintf("%d", offset))

	resp, err := m.httpClient.Get(m.baseURL + "?" + params.Encode())
	if err != nil {
		log.Printf("❌ Mercado Livre search failed: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ Mercado Livre status %d", resp.StatusCode)
		return nil, nil
	}

	var result struct {
		Results []struct {
			ID        string  `json:"id"`
			Title     string  `json:"title"`
			Price     float64 `json:"price"`
			Thumbnail string  `json:"thumbnail"`
			Permalink string  `json:"permalink"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("❌ Mercado Livre decode failed: %v", errors.Wrap(err, "decoding response"))
		return nil, nil
	}

	products := make([]models.Product, 0, len(result.Results))
	for _, item := range result.Results {
		products = append(products, models.Product{
			ID:       item.ID,
			Title:    item.Title,
			Price:    fmt.Sprintf("%.2f", item.Price),
			Currency: "BRL",
			Link:     m.affiliateLink(item.Permalink, query),
			ImageURL: item.Thumbnail,
			Source:   models.SourceMercadoLivre,
		})
	}
	return products, nil
}

// affiliateLink appends the affiliate tracking parameters to a permalink.
func (m *MercadoLivreService) affiliateLink(permalink, query string) string {
	if m.affiliateID == "" {
		return permalink
	}

	sep := "?"
	if strings.Contains(permalink, "?") {
		sep = "&"
	}
	link := fmt.Sprintf("%s%smkt_affiliate=%s&forceInApp=true", permalink, sep, m.affiliateID)
	if m.socialTool != "" && m.socialRef != "" {
		link += fmt.Sprintf("&matt_word=%s&matt_tool=%s&ref=%s",
			url.QueryEscape(query), m.socialTool, url.QueryEscape(m.socialRef))
	}
	return link
}
