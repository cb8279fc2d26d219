package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/zafira-bot/zafira-backend/internal/config"
)

// maximum text body the Cloud API accepts
const maxMessageLength = 4096

// WhatsAppService wraps the WhatsApp Cloud API /messages endpoint.
type WhatsAppService struct {
	token         string
	phoneNumberID string
	baseURL       string
	httpClient    *http.Client
}

var whatsappServiceInstance *WhatsAppService

// SetWhatsAppService sets the global sender instance (call from main.go)
func SetWhatsAppService(ws *WhatsAppService) {
	whatsappServiceInstance = ws
}

// GetWhatsAppService returns the global sender instance
func GetWhatsAppService() *WhatsAppService {
	return whatsappServiceInstance
}

// NewWhatsAppService creates a new WhatsApp Cloud API sender
func NewWhatsAppService(cfg *config.Config) *WhatsAppService {
	if cfg.WhatsAppToken == "" || cfg.PhoneNumberID == "" {
		log.Println("⚠️  WhatsApp credentials missing - messages will not be delivered")
	}
	return &WhatsAppService{
		token:         cfg.WhatsAppToken,
		phoneNumberID: cfg.PhoneNumberID,
		baseURL:       cfg.GraphAPIBase,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SendText sends a plain text message. Messages over the platform limit are
// truncated with a marker rather than rejected.
func (w *WhatsAppService) SendText(to, body string) error {
	if len(body) > maxMessageLength {
		cut := maxMessageLength - 50
		// back up to a rune boundary so the cut never splits a multi-byte
		// character
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "...\n\n(mensagem truncada)"
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": body},
	}
	return w.post(to, payload, true)
}

// SendMedia sends an image or video with a caption. mediaType must be
// "image" or "video".
func (w *WhatsAppService) SendMedia(to, mediaURL, caption, mediaType string) error {
	if mediaType != "image" && mediaType != "video" {
		return fmt.Errorf("unsupported media type %q", mediaType)
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              mediaType,
		mediaType: map[string]string{
			"link":    mediaURL,
			"caption": caption,
		},
	}
	return w.post(to, payload, true)
}

// SendInteractiveList sends a list message built by the formatter.
func (w *WhatsAppService) SendInteractiveList(to string, list map[string]interface{}) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive":       list,
	}
	return w.post(to, payload, true)
}

// MarkAsRead marks an inbound message as read. The Graph API answers these
// with {"success": true} and no messages array, so no message id is
// required.
func (w *WhatsAppService) MarkAsRead(messageID string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"status":            "read",
		"message_id":        messageID,
	}
	return w.post("", payload, false)
}

// post delivers one payload to the Graph API with retry. For outbound
// messages success requires HTTP 200 and a messages[0].id in the body - the
// API accepting a message does not guarantee delivery. Status updates only
// need the 200.
func (w *WhatsAppService) post(to string, payload map[string]interface{}, requireMessageID bool) error {
	if w.token == "" || w.phoneNumberID == "" {
		log.Printf("📤 WhatsApp (not sent - credentials missing) to %s", to)
		return errors.New("whatsapp credentials not configured")
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := w.postOnce(payload, requireMessageID); err != nil {
			lastErr = err
			log.Printf("❌ WhatsApp send attempt %d failed: %v", attempt, err)
			if attempt < 3 {
				time.Sleep(2 * time.Second)
			}
			continue
		}
		if to != "" {
			log.Printf("✅ WhatsApp message sent to %s", to)
		}
		return nil
	}
	return lastErr
}

func (w *WhatsAppService) postOnce(payload map[string]interface{}, requireMessageID bool) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshaling payload")
	}

	url := fmt.Sprintf("%s/%s/messages", w.baseURL, w.phoneNumberID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Authorization", "Bearer "+w.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling graph api")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading response")
	}

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("graph api status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return errors.Wrap(err, "decoding response")
	}
	if result.Error != nil {
		return errors.Errorf("graph api error: %s", result.Error.Message)
	}
	if requireMessageID && (len(result.Messages) == 0 || result.Messages[0].ID == "") {
		return errors.New("response contains no message id")
	}

	return nil
}
