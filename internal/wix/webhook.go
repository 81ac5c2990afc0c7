package wix

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Webhook event types handled by the guard
const (
	EventMemberCreated         = "wix.members.v1.member_created"
	EventMessageSentToBusiness = "wix.inbox.v2.message_sent_to_business"
)

var (
	ErrNoPublicKey       = errors.New("wix webhook: no public key configured")
	ErrInvalidWebhook    = errors.New("wix webhook: invalid signature")
	ErrMalformedEnvelope = errors.New("wix webhook: malformed envelope")
)

// Event is a verified webhook delivery
type Event struct {
	EventType  string
	InstanceID string
	// Data is the event specific JSON, already unwrapped from its string encoding
	Data json.RawMessage
}

type webhookEnvelope struct {
	Data       string `json:"data"`
	InstanceID string `json:"instanceId"`
	EventType  string `json:"eventType"`
}

// ParseWebhook verifies the RS256 JWT body and unwraps its payload
func (c *Client) ParseWebhook(body []byte) (*Event, error) {
	if c.publicKey == nil {
		return nil, ErrNoPublicKey
	}

	token, err := jwt.Parse(strings.TrimSpace(string(body)), func(t *jwt.Token) (interface{}, error) {
		return c.publicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrMalformedEnvelope
	}
	raw, ok := claims["data"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing data claim", ErrMalformedEnvelope)
	}

	var env webhookEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	evt := &Event{EventType: env.EventType, InstanceID: env.InstanceID}
	if env.Data != "" {
		if !json.Valid([]byte(env.Data)) {
			return nil, fmt.Errorf("%w: event data is not JSON", ErrMalformedEnvelope)
		}
		evt.Data = json.RawMessage(env.Data)
	}
	return evt, nil
}

type createdEvent struct {
	CreatedEvent struct {
		Entity       json.RawMessage `json:"entity"`
		EntityAsJSON string          `json:"entityAsJson"`
	} `json:"createdEvent"`
}

// MemberCreated decodes the member from a member_created event.
// It returns nil without error when the event carries no entity.
func (e *Event) MemberCreated() (*Member, error) {
	if len(e.Data) == 0 {
		return nil, nil
	}
	var ce createdEvent
	if err := json.Unmarshal(e.Data, &ce); err != nil {
		return nil, fmt.Errorf("decode member_created: %w", err)
	}

	entity := []byte(ce.CreatedEvent.Entity)
	if len(entity) == 0 || string(entity) == "null" {
		entity = []byte(ce.CreatedEvent.EntityAsJSON)
	}
	if len(entity) == 0 {
		return nil, nil
	}

	var m Member
	if err := json.Unmarshal(entity, &m); err != nil {
		return nil, fmt.Errorf("decode member entity: %w", err)
	}
	return &m, nil
}

type inboxMessageBody struct {
	ConversationID string `json:"conversationId"`
	Message        *struct {
		ID        string `json:"id"`
		Direction string `json:"direction"`
		Content   struct {
			PreviewText string `json:"previewText"`
			Basic       struct {
				Items []messageItem `json:"items"`
			} `json:"basic"`
		} `json:"content"`
	} `json:"message"`
}

type actionEvent struct {
	ActionEvent struct {
		Body       *inboxMessageBody `json:"body"`
		BodyAsJSON string            `json:"bodyAsJson"`
	} `json:"actionEvent"`
}

// InboxMessage decodes a message_sent_to_business event. The body may sit under
// actionEvent.body, actionEvent.bodyAsJson, or at the top level.
func (e *Event) InboxMessage() (*InboxMessage, error) {
	if len(e.Data) == 0 {
		return nil, nil
	}

	var ae actionEvent
	if err := json.Unmarshal(e.Data, &ae); err != nil {
		return nil, fmt.Errorf("decode inbox event: %w", err)
	}

	body := ae.ActionEvent.Body
	if body == nil && ae.ActionEvent.BodyAsJSON != "" {
		body = &inboxMessageBody{}
		if err := json.Unmarshal([]byte(ae.ActionEvent.BodyAsJSON), body); err != nil {
			return nil, fmt.Errorf("decode inbox body: %w", err)
		}
	}
	if body == nil {
		body = &inboxMessageBody{}
		if err := json.Unmarshal(e.Data, body); err != nil {
			return nil, fmt.Errorf("decode inbox body: %w", err)
		}
	}
	if body.Message == nil {
		return nil, nil
	}

	msg := &InboxMessage{
		ConversationID: body.ConversationID,
		MessageID:      body.Message.ID,
		Direction:      body.Message.Direction,
	}
	var parts []string
	for _, item := range body.Message.Content.Basic.Items {
		if t := strings.TrimSpace(item.Text); t != "" {
			parts = append(parts, t)
		}
	}
	msg.Text = strings.Join(parts, "\n")
	if msg.Text == "" {
		msg.Text = strings.TrimSpace(body.Message.Content.PreviewText)
	}
	return msg, nil
}
