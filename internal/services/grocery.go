package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/zafira-bot/zafira-backend/internal/config"
	"github.com/zafira-bot/zafira-backend/internal/models"
)

// GroceryService queries the grocery items API for supermarket-style
// searches.
type GroceryService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGroceryService creates a new grocery API client
func NewGroceryService(cfg *config.Config) *GroceryService {
	if cfg.GroceryAPIKey == "" {
		log.Println("⚠️  GROC_API_KEY not set - grocery searches degraded")
	}
	return &GroceryService{
		baseURL:    cfg.GroceryBaseURL,
		apiKey:     cfg.GroceryAPIKey,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// SearchItems queries the grocery API. Failures return an empty slice.
func (g *GroceryService) SearchItems(query string, limit int) ([]models.Product, error) {
	if g.apiKey == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", fmt.Sprintf("%d", limit))

	req, err := http.NewRequest(http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		log.Printf("❌ Grocery request build failed: %v", err)
		return nil, nil
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ Grocery API failed: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ Grocery API status %d", resp.StatusCode)
		return nil, nil
	}

	var result struct {
		Items []struct {
			ID       string  `json:"id"`
			Name     string  `json:"name"`
			Price    float64 `json:"price"`
			ImageURL string  `json:"image_url"`
			URL      string  `json:"url"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("❌ Grocery decode failed: %v", err)
		return nil, nil
	}

	products := make([]models.Product, 0, len(result.Items))
	for _, item := range result.Items {
		products = append(products, models.Product{
			ID:       item.ID,
			Title:    item.Name,
			Price:    fmt.Sprintf("%.2f", item.Price),
			Currency: "BRL",
			Link:     item.URL,
			ImageURL: item.ImageURL,
			Source:   models.SourceGrocery,
		})
	}
	return products, nil
}
