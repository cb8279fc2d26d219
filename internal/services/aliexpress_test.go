package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/zafira-bot/zafira-backend/internal/models"
)

func TestSignDeterministic(t *testing.T) {
	params := map[string]string{
		"app_key":   "12345",
		"method":    "aliexpress.affiliate.product.query",
		"timestamp": "1700000000000",
		"keywords":  "fone bluetooth",
	}

	first := Sign(params, "secret", SignMethodMD5)
	second := Sign(params, "secret", SignMethodMD5)
	if first != second {
		t.Errorf("signing is not deterministic: %s != %s", first, second)
	}

	upperHex := regexp.MustCompile(`^[0-9A-F]+$`)
	if !upperHex.MatchString(first) {
		t.Errorf("signature %q is not upper-case hex", first)
	}
	if len(first) != 32 {
		t.Errorf("md5 signature length = %d, want 32", len(first))
	}

	sha := Sign(params, "secret", SignMethodSHA256)
	if len(sha) != 64 {
		t.Errorf("sha256 signature length = %d, want 64", len(sha))
	}
	if sha == first {
		t.Error("sha256 and md5 signatures should differ")
	}
}

func TestSignSensitivity(t *testing.T) {
	params := map[string]string{
		"app_key":   "12345",
		"timestamp": "1700000000000",
		"keywords":  "fone",
	}
	base := Sign(params, "secret", SignMethodMD5)

	altered := map[string]string{
		"app_key":   "12345",
		"timestamp": "1700000000001",
		"keywords":  "fone",
	}
	if Sign(altered, "secret", SignMethodMD5) == base {
		t.Error("altering a parameter value did not change the signature")
	}

	if Sign(params, "other-secret", SignMethodMD5) == base {
		t.Error("changing the secret did not change the signature")
	}
}

func TestSignIgnoresExistingSignature(t *testing.T) {
	params := map[string]string{"app_key": "1", "keywords": "x"}
	withSign := map[string]string{"app_key": "1", "keywords": "x", "sign": "GARBAGE"}

	if Sign(params, "s", SignMethodMD5) != Sign(withSign, "s", SignMethodMD5) {
		t.Error("a pre-existing sign parameter changed the signature")
	}
}

func TestFilterProducts(t *testing.T) {
	products := []models.Product{
		{Title: "Good cheap", Price: "30.00", Link: "https://x/1", Rating: 4.5},
		{Title: "", Price: "10.00", Link: "https://x/2"},             // no title
		{Title: "No link", Price: "10.00"},                           // no link
		{Title: "Free?", Price: "0.00", Link: "https://x/3"},         // zero price
		{Title: "Bad rating", Price: "5.00", Link: "https://x/4", Rating: 2.0},
		{Title: "Unrated ok", Price: "20.00", Link: "https://x/5"},
		{Title: "Good pricey", Price: "99.00", Link: "https://x/6", Rating: 4.9},
	}

	got := FilterProducts(products, 10, SortByPrice)
	if len(got) != 3 {
		t.Fatalf("FilterProducts kept %d records, want 3: %+v", len(got), got)
	}
	// ascending price
	if got[0].Title != "Unrated ok" || got[1].Title != "Good cheap" || got[2].Title != "Good pricey" {
		t.Errorf("unexpected price order: %q, %q, %q", got[0].Title, got[1].Title, got[2].Title)
	}

	byRating := FilterProducts(products, 10, SortByRating)
	if byRating[0].Title != "Good pricey" {
		t.Errorf("rating sort first = %q, want %q", byRating[0].Title, "Good pricey")
	}

	truncated := FilterProducts(products, 2, SortByPrice)
	if len(truncated) != 2 {
		t.Errorf("limit ignored: got %d records", len(truncated))
	}
}

func TestSearchProductsParsesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sign") == "" {
			t.Error("request carried no signature")
		}
		if r.URL.Query().Get("method") != "aliexpress.affiliate.product.query" {
			t.Errorf("unexpected method %q", r.URL.Query().Get("method"))
		}
		fmt.Fprint(w, `{
			"aliexpress_affiliate_product_query_response": {
				"resp_result": {
					"result": {
						"products": {
							"product": [
								{"product_id": 111, "product_title": "Fone A", "target_sale_price": "59.90",
								 "evaluate_rate": "92.0%", "promotion_link": "https://s.click/1",
								 "product_main_image_url": "https://img/1.webp"},
								{"product_id": 222, "product_title": "Fone B", "target_sale_price": "0.00",
								 "promotion_link": "https://s.click/2"},
								{"product_id": 333, "product_title": "Fone C", "target_sale_price": "39.90",
								 "evaluate_rate": "88.0%", "product_detail_url": "https://detail/3"}
							]
						}
					}
				}
			}
		}`)
	}))
	defer server.Close()

	svc := newTestAliExpress(server.URL)
	products, err := svc.SearchProducts("fone bluetooth", 3, 1)
	if err != nil {
		t.Fatalf("SearchProducts returned error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2 (zero-price record dropped): %+v", len(products), products)
	}
	// sorted by ascending price
	if products[0].Title != "Fone C" || products[1].Title != "Fone A" {
		t.Errorf("unexpected order: %q, %q", products[0].Title, products[1].Title)
	}
	if products[0].Link != "https://detail/3" {
		t.Errorf("detail URL fallback not applied: %q", products[0].Link)
	}
	if products[1].Rating < 4.5 || products[1].Rating > 5.0 {
		t.Errorf("percentage rating not mapped to 0-5 scale: %v", products[1].Rating)
	}
	if products[0].Source != models.SourceAliExpress {
		t.Errorf("source = %q, want %q", products[0].Source, models.SourceAliExpress)
	}
}

func TestSearchProductsVendorErrorIsSoft(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error_response": {"code": "InvalidAppKey", "msg": "nope"}}`)
	}))
	defer server.Close()

	svc := newTestAliExpress(server.URL)
	products, err := svc.SearchProducts("fone", 3, 1)
	if err != nil {
		t.Fatalf("vendor error escaped the client boundary: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("got %d products, want 0", len(products))
	}
}

func TestSearchProductsRetriesIncompleteSignature(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			fmt.Fprint(w, `{"error_response": {"code": "IncompleteSignature", "msg": "retry me"}}`)
			return
		}
		fmt.Fprint(w, `{
			"aliexpress_affiliate_product_query_response": {
				"resp_result": {"result": {"products": {"product": [
					{"product_id": 1, "product_title": "Fone", "target_sale_price": "10.00",
					 "promotion_link": "https://s.click/1"}
				]}}}
			}
		}`)
	}))
	defer server.Close()

	svc := newTestAliExpress(server.URL)
	products, err := svc.SearchProducts("fone", 3, 1)
	if err != nil {
		t.Fatalf("SearchProducts returned error: %v", err)
	}
	if calls != 2 {
		t.Errorf("made %d calls, want 2", calls)
	}
	if len(products) != 1 {
		t.Errorf("got %d products, want 1", len(products))
	}
}

func TestSearchProductsMissingCredentials(t *testing.T) {
	svc := &AliExpressService{
		signMethod: SignMethodMD5,
		httpClient: http.DefaultClient,
		now:        time.Now,
	}
	if _, err := svc.SearchProducts("fone", 3, 1); err == nil {
		t.Error("expected an error for missing credentials")
	}
}

func newTestAliExpress(baseURL string) *AliExpressService {
	return &AliExpressService{
		appKey:     "test-key",
		appSecret:  "test-secret",
		trackingID: "test-tracking",
		signMethod: SignMethodMD5,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		now:        func() time.Time { return time.Unix(1700000000, 0) },
	}
}
