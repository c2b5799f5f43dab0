package messenger

import (
	"fmt"
	"math/rand/v2"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/dto"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/models"
)

// Postback payloads the bot emits on its own buttons.
const (
	PayloadGetStarted = "GET_STARTED"
	PayloadReport     = "REPORT"
	PayloadLatestPost = "LATEST_POST"
	PayloadBroadcast  = "BROADCAST"
)

const (
	ActionMarkSeen  = "mark_seen"
	ActionTypingOn  = "typing_on"
	ActionTypingOff = "typing_off"
)

// MaxCardsPerTemplate is the platform limit on generic template elements.
const MaxCardsPerTemplate = 10

var categoryTitles = map[string]string{
	models.ReportTypeSex:      "Sexual harassment",
	models.ReportTypeDomestic: "Domestic violence",
	models.ReportTypeOthers:   "Something else",
	models.ReportTypeEvent:    "An event",
	models.ReportTypeNews:     "News",
}

func Text(to, text string) dto.SendRequest {
	return dto.SendRequest{
		Recipient: dto.Party{ID: to},
		Message:   &dto.OutboundMessage{Text: text, Metadata: "ADVOCATE_BOT"},
	}
}

func SenderAction(to, action string) dto.SendRequest {
	return dto.SendRequest{Recipient: dto.Party{ID: to}, SenderAction: action}
}

func attachment(to, kind string, payload any) dto.SendRequest {
	return dto.SendRequest{
		Recipient: dto.Party{ID: to},
		Message: &dto.OutboundMessage{
			Attachment: &dto.OutboundAttachment{Type: kind, Payload: payload},
		},
	}
}

func Media(to, kind, url string) dto.SendRequest {
	return attachment(to, kind, dto.MediaPayload{URL: url})
}

func Buttons(to, text string, buttons ...dto.Button) dto.SendRequest {
	return attachment(to, "template", dto.ButtonTemplate{
		TemplateType: "button",
		Text:         text,
		Buttons:      buttons,
	})
}

func Generic(to string, elements []dto.Element) dto.SendRequest {
	return attachment(to, "template", dto.GenericTemplate{
		TemplateType: "generic",
		Elements:     elements,
	})
}

// Catalog builds the canned messages. Asset links are resolved against
// ServerURL.
type Catalog struct {
	ServerURL string
}

func (c Catalog) asset(name string) string {
	return c.ServerURL + "/assets/" + name
}

func (c Catalog) Image(to string) dto.SendRequest {
	return Media(to, "image", c.asset("rift.png"))
}

func (c Catalog) Gif(to string) dto.SendRequest {
	return Media(to, "image", c.asset("instagram_logo.gif"))
}

func (c Catalog) Audio(to string) dto.SendRequest {
	return Media(to, "audio", c.asset("sample.mp3"))
}

func (c Catalog) Video(to string) dto.SendRequest {
	return Media(to, "video", c.asset("allofus480.mov"))
}

func (c Catalog) File(to string) dto.SendRequest {
	return Media(to, "file", c.asset("test.txt"))
}

// Menu is the generic guide shown for unmatched text.
func (c Catalog) Menu(to string) dto.SendRequest {
	return Buttons(to, "What can I do for you?",
		dto.Button{Type: "postback", Title: "Report!", Payload: PayloadReport},
		dto.Button{Type: "postback", Title: "Latest posts", Payload: PayloadLatestPost},
		dto.Button{Type: "web_url", Title: "About us", URL: c.ServerURL},
	)
}

// ModeratorMenu adds the broadcast trigger.
func (c Catalog) ModeratorMenu(to string) dto.SendRequest {
	return Buttons(to, "What can I do for you?",
		dto.Button{Type: "postback", Title: "Report!", Payload: PayloadReport},
		dto.Button{Type: "postback", Title: "Latest posts", Payload: PayloadLatestPost},
		dto.Button{Type: "postback", Title: "Broadcast latest", Payload: PayloadBroadcast},
	)
}

// CategoryMenu lists the report categories as postback cards.
func (c Catalog) CategoryMenu(to string) dto.SendRequest {
	elements := make([]dto.Element, 0, len(models.ReportTypes))
	for _, t := range models.ReportTypes {
		elements = append(elements, dto.Element{
			Title:   categoryTitles[t],
			Buttons: []dto.Button{{Type: "postback", Title: "Report this", Payload: t}},
		})
	}
	return Generic(to, elements)
}

func (c Catalog) Generic(to string) dto.SendRequest {
	return Generic(to, []dto.Element{
		{
			Title:    "Know your rights",
			Subtitle: "Where to get help",
			ItemURL:  c.ServerURL + "/rights",
			ImageURL: c.asset("rights.png"),
			Buttons: []dto.Button{
				{Type: "web_url", Title: "Open", URL: c.ServerURL + "/rights"},
				{Type: "postback", Title: "Report!", Payload: PayloadReport},
			},
		},
		{
			Title:    "Hotlines",
			Subtitle: "People you can call",
			ItemURL:  c.ServerURL + "/hotlines",
			ImageURL: c.asset("hotlines.png"),
		},
	})
}

func (c Catalog) MorePictures(to string) dto.SendRequest {
	return ImageCards(to, []string{c.asset("rift.png"), c.asset("touch.png"), c.asset("travel.png")})[0]
}

func (c Catalog) List(to string) dto.SendRequest {
	return attachment(to, "template", dto.ListTemplate{
		TemplateType: "list",
		Elements: []dto.Element{
			{Title: "Report", Subtitle: "Tell us what happened", ImageURL: c.asset("report.png")},
			{Title: "Posts", Subtitle: "Read the latest news", ImageURL: c.asset("posts.png")},
		},
		Buttons: []dto.Button{{Type: "web_url", Title: "Visit Page", URL: c.ServerURL}},
	})
}

func (c Catalog) Receipt(to string) dto.SendRequest {
	return attachment(to, "template", dto.ReceiptTemplate{
		TemplateType:  "receipt",
		RecipientName: "Supporter",
		OrderNumber:   fmt.Sprintf("order%d", rand.IntN(1000)),
		Currency:      "USD",
		PaymentMethod: "Visa 1234",
		Elements: []dto.ReceiptElement{
			{Title: "Donation", Quantity: 1, Price: 10, Currency: "USD"},
		},
		Summary: dto.ReceiptSummary{Subtotal: 10, TotalCost: 10},
	})
}

func (c Catalog) QuickReply(to string) dto.SendRequest {
	req := Text(to, "How are you feeling today?")
	req.Message.QuickReplies = []dto.QuickReplyOption{
		{ContentType: "text", Title: "Good", Payload: "FEELING_GOOD"},
		{ContentType: "text", Title: "Okay", Payload: "FEELING_OKAY"},
		{ContentType: "text", Title: "Not good", Payload: "FEELING_BAD"},
	}
	return req
}

func (c Catalog) AccountLinking(to string) dto.SendRequest {
	return Buttons(to, "Welcome. Link your account.",
		dto.Button{Type: "account_link", URL: c.ServerURL + "/authorize"},
	)
}

// PostCards renders posts as generic cards, newest first, capped at the
// template limit.
func PostCards(to string, posts []models.Post) dto.SendRequest {
	elements := make([]dto.Element, 0, len(posts))
	for _, p := range posts {
		if len(elements) == MaxCardsPerTemplate {
			break
		}
		el := dto.Element{
			Title:    deref(p.Title),
			Subtitle: deref(p.Description),
			ItemURL:  deref(p.Link),
			ImageURL: deref(p.ImageURL),
		}
		if link := deref(p.Link); link != "" {
			el.Buttons = []dto.Button{{Type: "web_url", Title: "Read more", URL: link}}
		}
		elements = append(elements, el)
	}
	return Generic(to, elements)
}

// ImageCards turns image URLs into generic template cards, keeping order.
// More than MaxCardsPerTemplate URLs spill into additional templates.
func ImageCards(to string, urls []string) []dto.SendRequest {
	var out []dto.SendRequest
	for start := 0; start < len(urls); start += MaxCardsPerTemplate {
		end := min(start+MaxCardsPerTemplate, len(urls))
		elements := make([]dto.Element, 0, end-start)
		for i, u := range urls[start:end] {
			elements = append(elements, dto.Element{
				Title:    fmt.Sprintf("[image-%d]", start+i+1),
				ItemURL:  u,
				ImageURL: u,
			})
		}
		out = append(out, Generic(to, elements))
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
