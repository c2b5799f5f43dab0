package dto

// SendRequest is the body of a Send API call. Exactly one of Message or
// SenderAction is set.
type SendRequest struct {
	Recipient    Party            `json:"recipient"`
	Message      *OutboundMessage `json:"message,omitempty"`
	SenderAction string           `json:"sender_action,omitempty"`
}

type OutboundMessage struct {
	Text         string              `json:"text,omitempty"`
	Metadata     string              `json:"metadata,omitempty"`
	Attachment   *OutboundAttachment `json:"attachment,omitempty"`
	QuickReplies []QuickReplyOption  `json:"quick_replies,omitempty"`
}

type OutboundAttachment struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type QuickReplyOption struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

type MediaPayload struct {
	URL string `json:"url"`
}

type ButtonTemplate struct {
	TemplateType string   `json:"template_type"`
	Text         string   `json:"text"`
	Buttons      []Button `json:"buttons"`
}

type GenericTemplate struct {
	TemplateType string    `json:"template_type"`
	Elements     []Element `json:"elements"`
}

type ListTemplate struct {
	TemplateType string    `json:"template_type"`
	Elements     []Element `json:"elements"`
	Buttons      []Button  `json:"buttons,omitempty"`
}

type ReceiptTemplate struct {
	TemplateType  string           `json:"template_type"`
	RecipientName string           `json:"recipient_name"`
	OrderNumber   string           `json:"order_number"`
	Currency      string           `json:"currency"`
	PaymentMethod string           `json:"payment_method"`
	Timestamp     string           `json:"timestamp,omitempty"`
	Elements      []ReceiptElement `json:"elements"`
	Summary       ReceiptSummary   `json:"summary"`
}

type ReceiptElement struct {
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle,omitempty"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	ImageURL string  `json:"image_url,omitempty"`
}

type ReceiptSummary struct {
	Subtotal  float64 `json:"subtotal,omitempty"`
	TotalCost float64 `json:"total_cost"`
}

type Element struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	ItemURL  string   `json:"item_url,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
	Buttons  []Button `json:"buttons,omitempty"`
}

type Button struct {
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Payload string `json:"payload,omitempty"`
}

type SendResponse struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
}

// Profile is the subset of user profile fields the bot reads.
type Profile struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	ProfilePic string `json:"profile_pic,omitempty"`
}

// GraphError is the error envelope returned by the Graph API.
type GraphError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}
