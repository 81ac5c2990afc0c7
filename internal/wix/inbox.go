package wix

import (
	"context"

	"github.com/go-resty/resty/v2"
)

type messageItem struct {
	Text string `json:"text"`
}

type sendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Message        struct {
		Direction  string `json:"direction"`
		Visibility string `json:"visibility"`
		Content    struct {
			Basic struct {
				Items []messageItem `json:"items"`
			} `json:"basic"`
		} `json:"content"`
	} `json:"message"`
}

// SendMessage appends a business reply to a conversation, visible to the site owner only
func (ic *instanceClient) SendMessage(ctx context.Context, conversationID, text string) (err error) {
	ctx, end := ic.trace(ctx, "send_message", conversationID)
	var resp *resty.Response
	defer func() { end(resp, err) }()

	req, err := ic.request(ctx)
	if err != nil {
		return err
	}
	var body sendMessageRequest
	body.ConversationID = conversationID
	body.Message.Direction = DirectionBusinessToParticipant
	body.Message.Visibility = "BUSINESS"
	body.Message.Content.Basic.Items = []messageItem{{Text: text}}

	resp, err = req.SetBody(body).Post("/inbox/v2/messages")
	return checkResponse("send message", resp, err)
}
