package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for Zafira
type Config struct {
	Port string

	// WhatsApp Cloud API
	VerifyToken   string
	WhatsAppToken string
	PhoneNumberID string
	GraphAPIBase  string

	// AliExpress affiliate API
	AliExpressAppKey     string
	AliExpressAppSecret  string
	AliExpressTrackingID string
	AliExpressSignMethod string // "md5" or "sha256" - depends on vendor account

	// Groq (LLM fallback / admin chat)
	GroqAPIKey string
	GroqModel  string

	// Mercado Livre affiliate settings
	MLAffiliateID string
	MLSocialTool  string
	MLSocialRef   string

	// Grocery API
	GroceryBaseURL string
	GroceryAPIKey  string

	// Admin mode
	AdminIDs    []string
	AdminPIN    string
	AdminAPIKey string

	// Behavior toggles
	InteractiveLists bool
}

var AppConfig *Config

// Load reads the .env file (if present) and populates AppConfig from the
// environment. Missing vendor credentials degrade the affected feature and
// are logged - they never abort startup.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found - using system environment variables")
	}

	// WHATSAPP_TOKEN and WHATSAPP_ACCESS_TOKEN are both seen in deployments
	whatsappToken := getEnv("WHATSAPP_TOKEN", "")
	if whatsappToken == "" {
		whatsappToken = getEnv("WHATSAPP_ACCESS_TOKEN", "")
	}

	// GROP_APP_KEY is a historical misspelling that shipped in one .env;
	// accept it as a fallback so existing deployments keep working.
	groqKey := getEnv("GROQ_API_KEY", "")
	if groqKey == "" {
		if groqKey = getEnv("GROP_APP_KEY", ""); groqKey != "" {
			log.Println("⚠️  Using GROP_APP_KEY - please rename it to GROQ_API_KEY")
		}
	}

	AppConfig = &Config{
		Port: getEnv("PORT", "8080"),

		VerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", ""),
		WhatsAppToken: whatsappToken,
		PhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		GraphAPIBase:  getEnv("GRAPH_API_BASE", "https://graph.facebook.com/v20.0"),

		AliExpressAppKey:     getEnv("ALIEXPRESS_APP_KEY", ""),
		AliExpressAppSecret:  getEnv("ALIEXPRESS_APP_SECRET", ""),
		AliExpressTrackingID: getEnv("ALIEXPRESS_TRACKING_ID", ""),
		AliExpressSignMethod: strings.ToLower(getEnv("ALIEXPRESS_SIGN_METHOD", "md5")),

		GroqAPIKey: groqKey,
		GroqModel:  getEnv("GROQ_MODEL", "llama-3.1-70b-versatile"),

		MLAffiliateID: getEnv("ML_AFFILIATE_ID", ""),
		MLSocialTool:  getEnv("ML_SOCIAL_TOOL", ""),
		MLSocialRef:   getEnv("ML_SOCIAL_REF", ""),

		GroceryBaseURL: getEnv("GROC_BASE_URL", "https://api.groc.example.com/v1"),
		GroceryAPIKey:  getEnv("GROC_API_KEY", ""),

		AdminIDs:    splitCSV(getEnv("ADMIN_IDS", "")),
		AdminPIN:    getEnv("ADMIN_PIN", ""),
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),

		InteractiveLists: getEnv("INTERACTIVE_LISTS", "false") == "true",
	}

	if AppConfig.VerifyToken == "" {
		log.Println("⚠️  WHATSAPP_VERIFY_TOKEN not set - webhook verification will reject all requests")
	}
	if AppConfig.WhatsAppToken == "" || AppConfig.PhoneNumberID == "" {
		log.Println("⚠️  WhatsApp credentials not set - outbound messages will be logged only")
	}
	if AppConfig.AliExpressAppKey == "" || AppConfig.AliExpressAppSecret == "" {
		log.Println("⚠️  AliExpress credentials not set - product search degraded")
	}
	if AppConfig.AdminAPIKey == "" {
		log.Println("⚠️  ADMIN_API_KEY not set - admin endpoints will be UNPROTECTED!")
	}

	log.Printf("Configuration loaded - port: %s, sign method: %s, admins: %d",
		AppConfig.Port, AppConfig.AliExpressSignMethod, len(AppConfig.AdminIDs))

	return AppConfig
}

// IsAdmin reports whether the sender id is in the authorized admin set.
func (c *Config) IsAdmin(senderID string) bool {
	for _, id := range c.AdminIDs {
		if id == senderID {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
