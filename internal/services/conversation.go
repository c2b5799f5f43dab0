package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/dto"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/events"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/messenger"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/models"
)

const (
	cmdReport       = "report"
	cmdPost         = "post"
	cmdEnd          = "end"
	cmdSkip         = "skip"
	cmdYes          = "yes"
	cmdLatestPost   = "latest post"
	cmdLatestReport = "latest report"
	cmdGreeting     = "hey"

	noDescription = "No description"
)

// Fillers acknowledge report content without interrupting the reporter.
var Fillers = []string{
	"Noted. Please go on.",
	"Thank you, we are listening.",
	"Got it. Anything else you want to add?",
	"We hear you. Take your time.",
	"Okay. Type END when you are done.",
}

// cannedKeywords are pure dispatches: one send, no state change.
var cannedKeywords = map[string]func(messenger.Catalog, string) dto.SendRequest{
	cmdReport:      messenger.Catalog.CategoryMenu,
	"list":         messenger.Catalog.List,
	"image":        messenger.Catalog.Image,
	"gif":          messenger.Catalog.Gif,
	"audio":        messenger.Catalog.Audio,
	"video":        messenger.Catalog.Video,
	"file":         messenger.Catalog.File,
	"generic":      messenger.Catalog.Generic,
	"receipt":      messenger.Catalog.Receipt,
	"more picture": messenger.Catalog.MorePictures,
	"quick reply":  messenger.Catalog.QuickReply,
	"read receipt": func(_ messenger.Catalog, to string) dto.SendRequest {
		return messenger.SenderAction(to, messenger.ActionMarkSeen)
	},
	"typing on": func(_ messenger.Catalog, to string) dto.SendRequest {
		return messenger.SenderAction(to, messenger.ActionTypingOn)
	},
	"typing off": func(_ messenger.Catalog, to string) dto.SendRequest {
		return messenger.SenderAction(to, messenger.ActionTypingOff)
	},
	"account linking": messenger.Catalog.AccountLinking,
}

type ConversationConfig struct {
	ServerURL           string
	DefaultPostImageURL string
	LatestPostLimit     int
}

// Conversation is the per-user state machine. The persisted IsReporting and
// IsPosting fields are its only state.
type Conversation struct {
	store     Store
	gateway   messenger.Gateway
	catalog   messenger.Catalog
	reports   *ReportService
	broadcast *BroadcastService

	defaultImageURL string
	postLimit       int
	pick            func(n int) int
}

func NewConversation(store Store, gateway messenger.Gateway, cfg ConversationConfig) *Conversation {
	limit := cfg.LatestPostLimit
	if limit <= 0 {
		limit = messenger.MaxCardsPerTemplate
	}
	return &Conversation{
		store:           store,
		gateway:         gateway,
		catalog:         messenger.Catalog{ServerURL: cfg.ServerURL},
		reports:         NewReportService(store, gateway),
		broadcast:       NewBroadcastService(store, gateway, limit),
		defaultImageURL: cfg.DefaultPostImageURL,
		postLimit:       limit,
		pick:            rand.IntN,
	}
}

// Broadcaster exposes the broadcast fan-out for the admin API.
func (c *Conversation) Broadcaster() *BroadcastService {
	return c.broadcast
}

// Handle runs one turn for one messaging event.
func (c *Conversation) Handle(ctx context.Context, ev dto.MessagingEvent) *TurnResult {
	kind := events.Classify(ev)
	res := &TurnResult{SenderID: ev.Sender.ID, Kind: kind}
	sender := ev.Sender.ID

	switch kind {
	case events.KindAuthentication:
		slog.Info("authentication received", "sender_id", sender, "ref", ev.Optin.Ref)
		c.send(ctx, res, "auth_ack", messenger.Text(sender, "Authentication successful"))
	case events.KindMessage:
		c.handleMessage(ctx, res, sender, ev.Message)
	case events.KindPostback:
		c.handlePostback(ctx, res, sender, ev.Postback.Payload)
	case events.KindDelivery:
		slog.Debug("delivery confirmed", "sender_id", sender, "mids", len(ev.Delivery.MIDs), "watermark", ev.Delivery.Watermark)
	case events.KindRead:
		slog.Debug("message read", "sender_id", sender, "watermark", ev.Read.Watermark, "seq", ev.Read.Seq)
	case events.KindAccountLink:
		slog.Info("account link event", "sender_id", sender, "status", ev.AccountLinking.Status)
	default:
		slog.Info("unknown messaging event dropped", "sender_id", sender)
	}
	return res
}

func (c *Conversation) send(ctx context.Context, res *TurnResult, op string, req dto.SendRequest) bool {
	return deliver(ctx, c.gateway, res, op, req)
}

// loadUser falls back to an idle USER when the store is unavailable so the
// turn can still answer.
func (c *Conversation) loadUser(ctx context.Context, res *TurnResult, id string) *models.User {
	user, err := c.store.EnsureUser(ctx, id)
	if err != nil {
		res.fail("ensure_user", err)
		return &models.User{FacebookID: id, Role: models.RoleUser}
	}
	return user
}

func (c *Conversation) handleMessage(ctx context.Context, res *TurnResult, sender string, msg *dto.InboundMessage) {
	if msg.IsEcho {
		slog.Debug("echo received", "mid", msg.MID, "app_id", msg.AppID, "metadata", msg.Metadata)
		return
	}
	if msg.QuickReply != nil {
		slog.Info("quick reply tapped", "sender_id", sender, "mid", msg.MID, "payload", msg.QuickReply.Payload)
		c.send(ctx, res, "quick_reply_ack", messenger.Text(sender, "Quick reply tapped"))
		return
	}

	user := c.loadUser(ctx, res, sender)
	switch {
	case msg.Text != "":
		c.handleText(ctx, res, user, strings.TrimSpace(msg.Text))
	case len(msg.Attachments) > 0:
		c.handleAttachments(ctx, res, user, msg.Attachments)
	}
}

// handleText checks REPORTING first, then POSTING, then the keyword table.
func (c *Conversation) handleText(ctx context.Context, res *TurnResult, user *models.User, text string) {
	cmd := strings.ToLower(text)
	switch {
	case user.IsReporting > 0:
		c.continueReport(ctx, res, user, text, cmd)
	case user.IsPosting > 0:
		c.continuePost(ctx, res, user, text, cmd)
	default:
		c.dispatchKeyword(ctx, res, user, cmd)
	}
}

func (c *Conversation) handleAttachments(ctx context.Context, res *TurnResult, user *models.User, atts []dto.Attachment) {
	if user.IsReporting == 0 {
		c.send(ctx, res, "attachment_ack", messenger.Text(user.FacebookID, "Message with attachment received"))
		return
	}

	acked := false
	for _, a := range atts {
		if a.Type == "image" && a.Payload.URL != "" {
			res.write("insert_image", c.store.InsertMessage(ctx, user.IsReporting, a.Payload.URL, models.MessageTypeImage))
			continue
		}
		if !acked {
			c.send(ctx, res, "attachment_ack", messenger.Text(user.FacebookID, "Message with attachment received"))
			acked = true
		}
	}
}

func (c *Conversation) continueReport(ctx context.Context, res *TurnResult, user *models.User, text, cmd string) {
	if cmd == cmdEnd {
		c.closeReport(ctx, res, user)
		return
	}
	res.write("insert_message", c.store.InsertMessage(ctx, user.IsReporting, text, models.MessageTypeText))
	c.send(ctx, res, "report_filler", messenger.Text(user.FacebookID, Fillers[c.pick(len(Fillers))]))
}

func (c *Conversation) closeReport(ctx context.Context, res *TurnResult, user *models.User) {
	res.write("clear_reporting", c.store.SetReporting(ctx, user.FacebookID, 0))
	c.reports.NotifyModerators(ctx, user.FacebookID, res)
	c.send(ctx, res, "report_closed", messenger.Text(user.FacebookID,
		"Thank you. Your report has been passed to our moderators. We will reach out if we need more details."))
}

func (c *Conversation) startReport(ctx context.Context, res *TurnResult, user *models.User, reportType string) {
	report, err := c.store.CreateReport(ctx, user.FacebookID, reportType)
	if !res.write("create_report", err) {
		return
	}
	if user.IsReporting > 0 {
		slog.Info("open report replaced", "sender_id", user.FacebookID, "old_report_id", user.IsReporting, "report_id", report.ID)
	}
	res.write("set_reporting", c.store.SetReporting(ctx, user.FacebookID, report.ID))
	if user.IsPosting > 0 {
		slog.Info("post abandoned for report", "sender_id", user.FacebookID, "post_id", user.IsPosting)
		res.write("clear_posting", c.store.SetPosting(ctx, user.FacebookID, 0))
	}

	to := user.FacebookID
	c.send(ctx, res, "report_ack", messenger.Text(to,
		fmt.Sprintf("Thank you for speaking up. We have opened a %s report for you.", strings.ToLower(reportType))))
	c.send(ctx, res, "report_instructions", messenger.Text(to,
		"Tell us what happened in as many messages as you need. You can also send photos. Type END when you are done."))
}

func (c *Conversation) startPost(ctx context.Context, res *TurnResult, user *models.User) {
	if !user.IsModerator() {
		c.send(ctx, res, "menu", c.catalog.Menu(user.FacebookID))
		return
	}
	post, err := c.store.CreatePost(ctx, user.FacebookID)
	if !res.write("create_post", err) {
		return
	}
	res.write("set_posting", c.store.SetPosting(ctx, user.FacebookID, post.ID))
	c.send(ctx, res, "post_prompt_title", messenger.Text(user.FacebookID, "Let's write a post. What is the title?"))
}

func (c *Conversation) continuePost(ctx context.Context, res *TurnResult, user *models.User, text, cmd string) {
	to := user.FacebookID
	post, err := c.store.GetPost(ctx, user.IsPosting)
	if err != nil {
		res.fail("get_post", err)
		if errors.Is(err, ErrNotFound) {
			res.write("clear_posting", c.store.SetPosting(ctx, to, 0))
			c.send(ctx, res, "menu", c.catalog.ModeratorMenu(to))
		}
		return
	}

	var prompt string
	switch StageOf(post) {
	case StageNeedTitle:
		post.Title = &text
		prompt = "Got it. Now send the link for this post."
	case StageNeedLink:
		post.Link = &text
		prompt = "Add a short description, or type SKIP."
	case StageNeedDescription:
		desc := text
		if cmd == cmdSkip {
			desc = noDescription
		}
		post.Description = &desc
		prompt = "Send an image URL for the post, or type SKIP to use the default image."
	case StageNeedImage:
		img := text
		if cmd == cmdSkip {
			img = c.defaultImageURL
		}
		post.ImageURL = &img
		prompt = "Your post is ready. Broadcast it to all users now? Reply YES or NO."
	case StageNeedBroadcastConfirm:
		c.finishPost(ctx, res, user, cmd == cmdYes)
		return
	}

	res.write("save_post", c.store.SavePost(ctx, post))
	c.send(ctx, res, "post_prompt", messenger.Text(to, prompt))
}

func (c *Conversation) finishPost(ctx context.Context, res *TurnResult, user *models.User, broadcast bool) {
	to := user.FacebookID
	res.write("clear_posting", c.store.SetPosting(ctx, to, 0))
	if !broadcast {
		c.send(ctx, res, "post_saved", messenger.Text(to,
			"Okay, the post is saved without broadcasting. You can broadcast it later from the menu."))
		return
	}
	stats := c.broadcast.Broadcast(ctx, res)
	c.send(ctx, res, "post_broadcast", messenger.Text(to,
		fmt.Sprintf("Your post has been broadcast to %d users.", stats.Recipients-stats.Failed)))
}

func (c *Conversation) dispatchKeyword(ctx context.Context, res *TurnResult, user *models.User, cmd string) {
	to := user.FacebookID
	if build, ok := cannedKeywords[cmd]; ok {
		c.send(ctx, res, "keyword:"+cmd, build(c.catalog, to))
		return
	}

	switch cmd {
	case cmdPost:
		c.startPost(ctx, res, user)
	case "menu":
		c.sendMenu(ctx, res, user)
	case cmdLatestPost:
		c.showLatestPosts(ctx, res, to)
	case cmdLatestReport:
		c.showLatestReport(ctx, res, user)
	case cmdGreeting:
		c.greet(ctx, res, to)
	default:
		c.sendMenu(ctx, res, user)
	}
}

func (c *Conversation) sendMenu(ctx context.Context, res *TurnResult, user *models.User) {
	if user.IsModerator() {
		c.send(ctx, res, "menu", c.catalog.ModeratorMenu(user.FacebookID))
		return
	}
	c.send(ctx, res, "menu", c.catalog.Menu(user.FacebookID))
}

func (c *Conversation) showLatestPosts(ctx context.Context, res *TurnResult, to string) {
	posts, err := c.store.LatestPosts(ctx, c.postLimit)
	if err != nil {
		res.fail("latest_posts", err)
		return
	}
	if len(posts) == 0 {
		c.send(ctx, res, "latest_posts", messenger.Text(to, nothingPosted))
		return
	}
	c.send(ctx, res, "latest_posts", messenger.PostCards(to, posts))
}

// showLatestReport lists recent reports to moderators and the sender's own
// latest report to everyone else.
func (c *Conversation) showLatestReport(ctx context.Context, res *TurnResult, user *models.User) {
	to := user.FacebookID
	if user.IsModerator() {
		reports, _, err := c.store.ListReports(ctx, 5, 0)
		if err != nil {
			res.fail("list_reports", err)
			return
		}
		if len(reports) == 0 {
			c.send(ctx, res, "latest_report", messenger.Text(to, "No reports have been filed yet."))
			return
		}
		lines := make([]string, 0, len(reports)+1)
		lines = append(lines, "Latest reports:")
		for _, r := range reports {
			lines = append(lines, fmt.Sprintf("#%d %s (%s)", r.ID, r.Type, r.CreatedAt.UTC().Format("2006-01-02 15:04")))
		}
		c.send(ctx, res, "latest_report", messenger.Text(to, strings.Join(lines, "\n")))
		return
	}

	report, err := c.store.LatestReport(ctx, to)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			res.fail("latest_report", err)
			return
		}
		c.send(ctx, res, "latest_report", messenger.Text(to, "You have not filed any report yet."))
		return
	}
	c.send(ctx, res, "latest_report", messenger.Text(to,
		fmt.Sprintf("Your latest report is #%d (%s), filed %s.", report.ID, report.Type, report.CreatedAt.UTC().Format("2006-01-02"))))
}

func (c *Conversation) greet(ctx context.Context, res *TurnResult, to string) {
	name := "there"
	profile, err := c.gateway.Profile(ctx, to)
	if err != nil {
		res.fail("fetch_profile", err)
	} else if profile.FirstName != "" {
		name = profile.FirstName
	}
	c.send(ctx, res, "greeting", messenger.Text(to, fmt.Sprintf("Hey %s! Type MENU to see what I can do.", name)))
}

func (c *Conversation) handlePostback(ctx context.Context, res *TurnResult, sender, payload string) {
	user := c.loadUser(ctx, res, sender)
	slog.Info("postback received", "sender_id", sender, "payload", payload)

	switch {
	case payload == messenger.PayloadGetStarted:
		c.send(ctx, res, "welcome", messenger.Text(sender,
			"Welcome! You can report harassment or abuse here, safely and privately."))
		c.sendMenu(ctx, res, user)
	case payload == messenger.PayloadReport:
		c.send(ctx, res, "category_menu", c.catalog.CategoryMenu(sender))
	case models.IsReportType(payload):
		c.startReport(ctx, res, user, payload)
	case payload == messenger.PayloadLatestPost:
		c.showLatestPosts(ctx, res, sender)
	case payload == messenger.PayloadBroadcast:
		if !user.IsModerator() {
			c.sendMenu(ctx, res, user)
			return
		}
		stats := c.broadcast.Broadcast(ctx, res)
		c.send(ctx, res, "post_broadcast", messenger.Text(sender,
			fmt.Sprintf("Latest posts broadcast to %d users.", stats.Recipients-stats.Failed)))
	default:
		c.send(ctx, res, "postback_ack", messenger.Text(sender, "Postback called"))
	}
}
