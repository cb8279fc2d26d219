package handlers

// Webhook payload extraction. WhatsApp sends the documented English field
// names, but a deployed relay also forwards a Portuguese-aliased variant
// (entrada/mudanças/valor/mensagens/texto), so each field is probed against
// an ordered alias list before giving up.

// InboundKind distinguishes the payload shapes we act on.
type InboundKind int

const (
	InboundIgnored InboundKind = iota
	InboundText
	InboundListReply
)

// InboundMessage is the extracted view of one webhook message.
type InboundMessage struct {
	Kind        InboundKind
	From        string
	MessageID   string
	Text        string
	SelectionID string
}

var (
	entryAliases    = []string{"entry", "entrada"}
	changesAliases  = []string{"changes", "mudanças", "mudancas"}
	valueAliases    = []string{"value", "valor"}
	messagesAliases = []string{"messages", "mensagens"}
	fromAliases     = []string{"from", "de"}
	idAliases       = []string{"id"}
	typeAliases     = []string{"type", "tipo"}
	textAliases     = []string{"text", "texto"}
	bodyAliases     = []string{"body", "corpo"}
)

// ExtractMessages pulls every recognizable message out of a webhook
// payload. Status callbacks, non-text messages, and unknown shapes yield
// nothing - the webhook must ack those silently.
func ExtractMessages(payload map[string]interface{}) []InboundMessage {
	var out []InboundMessage

	for _, entry := range probeList(payload, entryAliases) {
		for _, change := range probeList(entry, changesAliases) {
			value, ok := probeMap(change, valueAliases)
			if !ok {
				continue
			}
			for _, message := range probeList(value, messagesAliases) {
				if m, ok := extractOne(message); ok {
					out = append(out, m)
				}
			}
		}
	}
	return out
}

func extractOne(message map[string]interface{}) (InboundMessage, bool) {
	from, _ := probeString(message, fromAliases)
	if from == "" {
		return InboundMessage{}, false
	}
	id, _ := probeString(message, idAliases)

	msgType, _ := probeString(message, typeAliases)

	// Interactive list replies carry a selection id instead of free text.
	if interactive, ok := message["interactive"].(map[string]interface{}); ok {
		if listReply, ok := interactive["list_reply"].(map[string]interface{}); ok {
			if selID, ok := listReply["id"].(string); ok && selID != "" {
				return InboundMessage{
					Kind:        InboundListReply,
					From:        from,
					MessageID:   id,
					SelectionID: selID,
				}, true
			}
		}
		return InboundMessage{}, false
	}

	if msgType != "" && msgType != "text" && msgType != "texto" {
		return InboundMessage{}, false
	}

	text, ok := probeMap(message, textAliases)
	if !ok {
		return InboundMessage{}, false
	}
	body, _ := probeString(text, bodyAliases)
	if body == "" {
		return InboundMessage{}, false
	}

	return InboundMessage{
		Kind:      InboundText,
		From:      from,
		MessageID: id,
		Text:      body,
	}, true
}

// probeMap returns the first alias that resolves to an object.
func probeMap(m map[string]interface{}, aliases []string) (map[string]interface{}, bool) {
	for _, key := range aliases {
		if v, ok := m[key].(map[string]interface{}); ok {
			return v, true
		}
	}
	return nil, false
}

// probeList returns the first alias that resolves to a list of objects.
func probeList(m map[string]interface{}, aliases []string) []map[string]interface{} {
	for _, key := range aliases {
		raw, ok := m[key].([]interface{})
		if !ok {
			continue
		}
		var out []map[string]interface{}
		for _, item := range raw {
			if obj, ok := item.(map[string]interface{}); ok {
				out = append(out, obj)
			}
		}
		return out
	}
	return nil
}

// probeString returns the first alias that resolves to a non-empty string.
func probeString(m map[string]interface{}, aliases []string) (string, bool) {
	for _, key := range aliases {
		if v, ok := m[key].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}
