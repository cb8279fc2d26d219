package services

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/zafira-bot/zafira-backend/internal/config"
	"github.com/zafira-bot/zafira-backend/internal/models"
)

// Signing methods the vendor accepts. Which one works depends on how the
// affiliate account was provisioned, so it is configuration, not code.
const (
	SignMethodMD5    = "md5"
	SignMethodSHA256 = "sha256"
)

const (
	aliExpressSyncURL = "https://api-sg.aliexpress.com/sync"
	productQueryAPI   = "aliexpress.affiliate.product.query"

	productFields = "commission_rate,sale_price,discount,product_main_image_url," +
		"product_title,product_url,evaluate_rate,original_price,lastest_volume," +
		"product_id,target_sale_price,target_sale_price_currency,promotion_link"
)

// Sort orders for search results
const (
	SortByPrice  = "price"
	SortByRating = "rating"
)

// AliExpressService queries the AliExpress affiliate product API.
type AliExpressService struct {
	appKey     string
	appSecret  string
	trackingID string
	signMethod string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewAliExpressService creates a new AliExpress client
func NewAliExpressService(cfg *config.Config) *AliExpressService {
	signMethod := cfg.AliExpressSignMethod
	if signMethod != SignMethodMD5 && signMethod != SignMethodSHA256 {
		log.Printf("⚠️  Unknown ALIEXPRESS_SIGN_METHOD %q - falling back to md5", signMethod)
		signMethod = SignMethodMD5
	}
	if cfg.AliExpressAppKey == "" || cfg.AliExpressAppSecret == "" || cfg.AliExpressTrackingID == "" {
		log.Println("⚠️  AliExpress credentials not configured - searches will return nothing")
	}

	return &AliExpressService{
		appKey:     cfg.AliExpressAppKey,
		appSecret:  cfg.AliExpressAppSecret,
		trackingID: cfg.AliExpressTrackingID,
		signMethod: signMethod,
		baseURL:    aliExpressSyncURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

// SearchProducts queries the affiliate API and returns filtered, normalized
// products. Network, HTTP, and vendor-envelope failures all come back as an
// empty slice; only unusable configuration surfaces as an error.
func (a *AliExpressService) SearchProducts(keywords string, limit, page int) ([]models.Product, error) {
	if a.appKey == "" || a.appSecret == "" || a.trackingID == "" {
		return nil, errors.New("aliexpress credentials not configured")
	}
	if limit <= 0 {
		limit = 3
	}
	if page <= 0 {
		page = 1
	}

	for attempt := 1; attempt <= 3; attempt++ {
		products, retryable, err := a.queryOnce(keywords, limit, page)
		if err != nil {
			log.Printf("❌ AliExpress attempt %d failed: %v", attempt, err)
			if attempt < 3 {
				time.Sleep(time.Second)
				continue
			}
			return nil, nil
		}
		if retryable {
			log.Printf("⚠️  AliExpress attempt %d: incomplete signature, retrying", attempt)
			if attempt < 3 {
				time.Sleep(time.Second)
				continue
			}
			return nil, nil
		}
		return FilterProducts(products, limit, SortByPrice), nil
	}
	return nil, nil
}

// queryOnce performs a single signed request. The bool result marks the
// vendor's transient "IncompleteSignature" error as retryable.
func (a *AliExpressService) queryOnce(keywords string, limit, page int) ([]models.Product, bool, error) {
	params := map[string]string{
		"app_key":         a.appKey,
		"format":          "json",
		"method":          productQueryAPI,
		"sign_method":     a.signMethod,
		"timestamp":       strconv.FormatInt(a.now().UnixMilli(), 10),
		"v":               "2.0",
		"keywords":        keywords,
		"page_size":       strconv.Itoa(limit * 2),
		"page_no":         strconv.Itoa(page),
		"ship_to_country": "BR",
		"sort":            "SALE_PRICE_ASC",
		"target_currency": "BRL",
		"target_language": "PT",
		"tracking_id":     a.trackingID,
		"fields":          productFields,
	}
	params["sign"] = Sign(params, a.appSecret, a.signMethod)

	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}

	resp, err := a.httpClient.Get(a.baseURL + "?" + query.Encode())
	if err != nil {
		return nil, false, errors.Wrap(err, "calling aliexpress api")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, errors.Errorf("aliexpress api status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, errors.Wrap(err, "reading response")
	}

	var envelope aliExpressEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, false, errors.Wrap(err, "decoding response")
	}

	if envelope.ErrorResponse != nil {
		if envelope.ErrorResponse.Code == "IncompleteSignature" {
			return nil, true, nil
		}
		log.Printf("❌ AliExpress error envelope: %s - %s",
			envelope.ErrorResponse.Code, envelope.ErrorResponse.Msg)
		return nil, false, nil
	}

	raw := envelope.QueryResponse.RespResult.Result.Products.Product
	products := make([]models.Product, 0, len(raw))
	for _, p := range raw {
		rating, _ := strconv.ParseFloat(strings.TrimSuffix(p.EvaluateRate, "%"), 64)
		// vendor sends ratings as percentages ("95.4%"); map to 0-5
		if rating > 5 {
			rating = rating / 20
		}
		link := p.PromotionLink
		if link == "" {
			link = p.ProductDetailURL
		}
		products = append(products, models.Product{
			ID:       p.ProductID.String(),
			Title:    p.ProductTitle,
			Price:    p.TargetSalePrice,
			Currency: p.TargetSalePriceCurrency,
			Rating:   rating,
			Link:     link,
			ImageURL: p.ProductMainImageURL,
			Source:   models.SourceAliExpress,
		})
	}
	return products, false, nil
}

// Sign canonicalizes params and produces the upper-case hex signature the
// vendor mandates. Any existing "sign" entry is ignored. With "md5" the
// canonical string is wrapped in the secret and MD5-hashed; with "sha256"
// it is HMAC-SHA256 keyed by the secret.
func Sign(params map[string]string, secret, method string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "sign" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var canonical strings.Builder
	for _, k := range keys {
		canonical.WriteString(k)
		canonical.WriteString(params[k])
	}

	var digest []byte
	switch method {
	case SignMethodSHA256:
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte(canonical.String()))
		digest = mac.Sum(nil)
	default:
		sum := md5.Sum([]byte(secret + canonical.String() + secret))
		digest = sum[:]
	}
	return strings.ToUpper(hex.EncodeToString(digest))
}

// FilterProducts drops records that must not reach the user (empty title or
// link, missing/zero price, rating under 3.0 when rated), sorts by the
// requested order, and truncates to limit.
func FilterProducts(products []models.Product, limit int, sortBy string) []models.Product {
	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Title == "" || p.Link == "" {
			continue
		}
		price, ok := p.PriceValue()
		if !ok || price <= 0 {
			continue
		}
		if p.Rating > 0 && p.Rating < 3.0 {
			continue
		}
		filtered = append(filtered, p)
	}

	switch sortBy {
	case SortByRating:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Rating > filtered[j].Rating
		})
	default:
		sort.SliceStable(filtered, func(i, j int) bool {
			pi, _ := filtered[i].PriceValue()
			pj, _ := filtered[j].PriceValue()
			return pi < pj
		})
	}

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

// aliExpressEnvelope mirrors the vendor's nested response shape.
type aliExpressEnvelope struct {
	ErrorResponse *struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
	} `json:"error_response"`
	QueryResponse struct {
		RespResult struct {
			Result struct {
				Products struct {
					Product []aliExpressProduct `json:"product"`
				} `json:"products"`
			} `json:"result"`
		} `json:"resp_result"`
	} `json:"aliexpress_affiliate_product_query_response"`
}

type aliExpressProduct struct {
	ProductID               json.Number `json:"product_id"`
	ProductTitle            string      `json:"product_title"`
	TargetSalePrice         string      `json:"target_sale_price"`
	TargetSalePriceCurrency string      `json:"target_sale_price_currency"`
	EvaluateRate            string      `json:"evaluate_rate"`
	PromotionLink           string      `json:"promotion_link"`
	ProductDetailURL        string      `json:"product_detail_url"`
	ProductMainImageURL     string      `json:"product_main_image_url"`
	CommissionRate          string      `json:"commission_rate"`
}
