package dto

// WebhookBatch is the body of a POST /webhook notification.
type WebhookBatch struct {
	Object string      `json:"object"`
	Entry  []PageEntry `json:"entry"`
}

type PageEntry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging"`
}

type Party struct {
	ID string `json:"id"`
}

// MessagingEvent carries exactly one of the optional payload fields.
type MessagingEvent struct {
	Sender         Party           `json:"sender"`
	Recipient      Party           `json:"recipient"`
	Timestamp      int64           `json:"timestamp"`
	Optin          *Optin          `json:"optin,omitempty"`
	Message        *InboundMessage `json:"message,omitempty"`
	Delivery       *Delivery       `json:"delivery,omitempty"`
	Postback       *Postback       `json:"postback,omitempty"`
	Read           *Read           `json:"read,omitempty"`
	AccountLinking *AccountLinking `json:"account_linking,omitempty"`
}

type Optin struct {
	Ref string `json:"ref"`
}

type InboundMessage struct {
	MID         string       `json:"mid"`
	Seq         int64        `json:"seq,omitempty"`
	IsEcho      bool         `json:"is_echo,omitempty"`
	AppID       int64        `json:"app_id,omitempty"`
	Metadata    string       `json:"metadata,omitempty"`
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	QuickReply  *QuickReply  `json:"quick_reply,omitempty"`
}

type Attachment struct {
	Type    string            `json:"type"`
	Payload AttachmentPayload `json:"payload"`
}

type AttachmentPayload struct {
	URL string `json:"url,omitempty"`
}

type QuickReply struct {
	Payload string `json:"payload"`
}

type Delivery struct {
	MIDs      []string `json:"mids"`
	Watermark int64    `json:"watermark"`
	Seq       int64    `json:"seq"`
}

type Postback struct {
	Title   string `json:"title,omitempty"`
	Payload string `json:"payload"`
}

type Read struct {
	Watermark int64 `json:"watermark"`
	Seq       int64 `json:"seq"`
}

type AccountLinking struct {
	Status            string `json:"status"`
	AuthorizationCode string `json:"authorization_code,omitempty"`
}
