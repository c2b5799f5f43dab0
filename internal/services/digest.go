package services

import (
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/models"
)

// DigestChunkSize keeps every digest text under the platform's 640 character
// limit.
const DigestChunkSize = 639

// Digest is the moderator-facing summary of one report.
type Digest struct {
	Text      string
	ImageURLs []string
}

// BuildDigest renders the header and one line per message. Image messages
// become [image-N] placeholders numbered in insertion order, and their URLs
// are collected in the same order.
func BuildDigest(report *models.Report, msgs []models.Message) Digest {
	var b strings.Builder
	if report != nil {
		fmt.Fprintf(&b, "Report #%d (%s) from %s", report.ID, report.Type, report.ReporterID)
	}

	var images []string
	for _, m := range msgs {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		if m.Type == models.MessageTypeImage {
			images = append(images, m.Text)
			fmt.Fprintf(&b, "[image-%d]", len(images))
			continue
		}
		b.WriteString(m.Text)
	}
	return Digest{Text: b.String(), ImageURLs: images}
}

// ChunkText splits s into pieces of at most size runes. Joining the pieces
// gives back s.
func ChunkText(s string, size int) []string {
	if s == "" || size <= 0 {
		return nil
	}
	runes := []rune(s)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
