package handlers

import (
	"encoding/json"
	"testing"
)

func parsePayload(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("bad test payload: %v", err)
	}
	return payload
}

func TestExtractMessagesEnglishPayload(t *testing.T) {
	payload := parsePayload(t, `{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "1",
			"changes": [{
				"field": "messages",
				"value": {
					"messaging_product": "whatsapp",
					"messages": [{
						"from": "5511988887777",
						"id": "wamid.abc",
						"type": "text",
						"text": {"body": "Oi Zafira"}
					}]
				}
			}]
		}]
	}`)

	got := ExtractMessages(payload)
	if len(got) != 1 {
		t.Fatalf("messages = %d, want 1", len(got))
	}
	m := got[0]
	if m.Kind != InboundText {
		t.Errorf("kind = %v, want text", m.Kind)
	}
	if m.From != "5511988887777" || m.Text != "Oi Zafira" || m.MessageID != "wamid.abc" {
		t.Errorf("unexpected message: %+v", m)
	}
}

func TestExtractMessagesPortugueseAliases(t *testing.T) {
	payload := parsePayload(t, `{
		"entrada": [{
			"mudanças": [{
				"valor": {
					"mensagens": [{
						"de": "5511988887777",
						"id": "wamid.def",
						"tipo": "texto",
						"texto": {"corpo": "quero um fone"}
					}]
				}
			}]
		}]
	}`)

	got := ExtractMessages(payload)
	if len(got) != 1 {
		t.Fatalf("messages = %d, want 1", len(got))
	}
	if got[0].From != "5511988887777" || got[0].Text != "quero um fone" {
		t.Errorf("unexpected message: %+v", got[0])
	}
}

func TestExtractMessagesListReply(t *testing.T) {
	payload := parsePayload(t, `{
		"entry": [{
			"changes": [{
				"value": {
					"messages": [{
						"from": "5511988887777",
						"id": "wamid.ghi",
						"type": "interactive",
						"interactive": {
							"type": "list_reply",
							"list_reply": {"id": "prod_2", "title": "Fone B"}
						}
					}]
				}
			}]
		}]
	}`)

	got := ExtractMessages(payload)
	if len(got) != 1 {
		t.Fatalf("messages = %d, want 1", len(got))
	}
	if got[0].Kind != InboundListReply || got[0].SelectionID != "prod_2" {
		t.Errorf("unexpected selection: %+v", got[0])
	}
}

func TestExtractMessagesIgnoresNonMessages(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"status callback", `{
			"entry": [{
				"changes": [{
					"value": {
						"statuses": [{"id": "wamid.x", "status": "delivered"}]
					}
				}]
			}]
		}`},
		{"image message", `{
			"entry": [{
				"changes": [{
					"value": {
						"messages": [{
							"from": "5511988887777",
							"type": "image",
							"image": {"id": "media1"}
						}]
					}
				}]
			}]
		}`},
		{"missing sender", `{
			"entry": [{
				"changes": [{
					"value": {
						"messages": [{"type": "text", "text": {"body": "oi"}}]
					}
				}]
			}]
		}`},
		{"unknown shape", `{"hello": "world"}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractMessages(parsePayload(t, tt.raw)); len(got) != 0 {
				t.Errorf("expected no messages, got %+v", got)
			}
		})
	}
}

func TestExtractMessagesMultipleEntries(t *testing.T) {
	payload := parsePayload(t, `{
		"entry": [
			{"changes": [{"value": {"messages": [
				{"from": "a", "type": "text", "text": {"body": "um"}},
				{"from": "b", "type": "text", "text": {"body": "dois"}}
			]}}]},
			{"changes": [{"value": {"messages": [
				{"from": "c", "type": "text", "text": {"body": "três"}}
			]}}]}
		]
	}`)

	got := ExtractMessages(payload)
	if len(got) != 3 {
		t.Fatalf("messages = %d, want 3", len(got))
	}
	for i, want := range []string{"um", "dois", "três"} {
		if got[i].Text != want {
			t.Errorf("message %d text = %q, want %q", i, got[i].Text, want)
		}
	}
}
