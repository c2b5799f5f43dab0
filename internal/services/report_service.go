package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/messenger"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/models"
)

// ReportService delivers closed reports to moderators.
type ReportService struct {
	store   Store
	gateway messenger.Gateway
}

func NewReportService(store Store, gateway messenger.Gateway) *ReportService {
	return &ReportService{store: store, gateway: gateway}
}

// NotifyModerators sends the digest of reporterID's most recent report to the
// first moderator, then the report's images as cards. It reports whether a
// digest was dispatched.
func (s *ReportService) NotifyModerators(ctx context.Context, reporterID string, res *TurnResult) bool {
	report, err := s.store.LatestReport(ctx, reporterID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			slog.Warn("no report to forward", "sender_id", reporterID)
			return false
		}
		res.fail("latest_report", err)
		return false
	}

	msgs, err := s.store.ReportMessages(ctx, report.ID)
	if err != nil {
		res.fail("report_messages", err)
		return false
	}
	moderators, err := s.store.UsersByRole(ctx, models.RoleModerator)
	if err != nil {
		res.fail("list_moderators", err)
		return false
	}

	if len(moderators) == 0 {
		slog.Warn("no moderator to receive report", "report_id", report.ID, "sender_id", reporterID)
		return false
	}
	if len(msgs) == 0 {
		slog.Warn("report has no messages", "report_id", report.ID, "sender_id", reporterID)
		return false
	}

	to := moderators[0].FacebookID
	digest := BuildDigest(report, msgs)
	for _, chunk := range ChunkText(digest.Text, DigestChunkSize) {
		deliver(ctx, s.gateway, res, "send_digest", messenger.Text(to, chunk))
	}
	for _, req := range messenger.ImageCards(to, digest.ImageURLs) {
		deliver(ctx, s.gateway, res, "send_digest_images", req)
	}

	slog.Info("report forwarded",
		"report_id", report.ID,
		"moderator_id", to,
		"messages", len(msgs),
		"images", len(digest.ImageURLs),
	)
	return true
}
