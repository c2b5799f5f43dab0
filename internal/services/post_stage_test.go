package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestStageOf(t *testing.T) {
	s := func(v string) *string { return &v }

	tests := []struct {
		name string
		post models.Post
		want PostStage
	}{
		{"empty", models.Post{}, StageNeedTitle},
		{"title", models.Post{Title: s("t")}, StageNeedLink},
		{"link", models.Post{Title: s("t"), Link: s("l")}, StageNeedDescription},
		{"description", models.Post{Title: s("t"), Link: s("l"), Description: s("")}, StageNeedImage},
		{"complete", models.Post{Title: s("t"), Link: s("l"), Description: s("d"), ImageURL: s("i")}, StageNeedBroadcastConfirm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StageOf(&tt.post)
			assert.Equal(t, tt.want, got, got.String())
		})
	}
}
