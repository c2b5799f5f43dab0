// Package events classifies inbound messaging events.
package events

import "github.com/ahmetcoskunkizilkaya/advocate-bot/internal/dto"

type Kind int

const (
	KindUnknown Kind = iota
	KindAuthentication
	KindMessage
	KindDelivery
	KindPostback
	KindRead
	KindAccountLink
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindMessage:
		return "message"
	case KindDelivery:
		return "delivery"
	case KindPostback:
		return "postback"
	case KindRead:
		return "read"
	case KindAccountLink:
		return "account_linking"
	default:
		return "unknown"
	}
}

// Classify picks the variant by the first payload field present, checked in
// the order optin, message, delivery, postback, read, account_linking.
func Classify(ev dto.MessagingEvent) Kind {
	switch {
	case ev.Optin != nil:
		return KindAuthentication
	case ev.Message != nil:
		return KindMessage
	case ev.Delivery != nil:
		return KindDelivery
	case ev.Postback != nil:
		return KindPostback
	case ev.Read != nil:
		return KindRead
	case ev.AccountLinking != nil:
		return KindAccountLink
	default:
		return KindUnknown
	}
}
