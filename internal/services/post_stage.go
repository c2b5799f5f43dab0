package services

import "github.com/ahmetcoskunkizilkaya/advocate-bot/internal/models"

type PostStage int

const (
	StageNeedTitle PostStage = iota
	StageNeedLink
	StageNeedDescription
	StageNeedImage
	StageNeedBroadcastConfirm
)

func (s PostStage) String() string {
	switch s {
	case StageNeedTitle:
		return "NEED_TITLE"
	case StageNeedLink:
		return "NEED_LINK"
	case StageNeedDescription:
		return "NEED_DESCRIPTION"
	case StageNeedImage:
		return "NEED_IMAGE"
	default:
		return "NEED_BROADCAST_CONFIRM"
	}
}

// StageOf derives the authoring stage from the first unset field.
func StageOf(p *models.Post) PostStage {
	switch {
	case p.Title == nil:
		return StageNeedTitle
	case p.Link == nil:
		return StageNeedLink
	case p.Description == nil:
		return StageNeedDescription
	case p.ImageURL == nil:
		return StageNeedImage
	default:
		return StageNeedBroadcastConfirm
	}
}
