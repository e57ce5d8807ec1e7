package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"fix-my-city/internal/errs"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Pothole  ", "Pothole"},
		{"<b>Яма</b> на дороге", "Яма на дороге"},
		{"<script>alert(1)</script>Lamp", "Lamp"},
		{"Tom & Jerry's street", "Tom & Jerry's street"},
		{"<img src=x onerror=alert(1)>", ""},
		{`Say "hi"`, `Say "hi"`},
		// разметка, собранная из вложенных тегов
		{"<<b>script>alert(1)<</b>/script>", ""},
		{"<<b>img src=x onerror=alert(1)>", ""},
		// закодированная разметка не раскодируется в теги
		{"&lt;script&gt;x&lt;/script&gt;", ""},
		{"&amp;lt;b&amp;gt;", "&lt;b&gt;"},
		// одиночная скобка остаётся сущностью
		{"a < b", "a &lt; b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanText(tt.in), tt.in)
	}
}

func TestCreate_StripsMarkup(t *testing.T) {
	f := newFixture()
	in := potholeInput()
	in.Title = "<i>Pothole</i>"
	in.Description = "deep <a href=\"http://x\">hole</a>"

	issue, err := f.svc.Create(context.Background(), in, citizen)
	if assert.NoError(t, err) {
		assert.Equal(t, "Pothole", issue.Title)
		assert.Equal(t, "deep hole", issue.Description)
	}
}

func TestCreate_RejectsTitleThatIsOnlyMarkup(t *testing.T) {
	f := newFixture()
	in := potholeInput()
	in.Title = "<<b>img src=x onerror=alert(1)>"

	_, err := f.svc.Create(context.Background(), in, citizen)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestAddComment_StripsEncodedMarkup(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	issue, err := f.svc.Create(ctx, potholeInput(), citizen)
	if !assert.NoError(t, err) {
		return
	}

	comment, err := f.comments.Add(ctx, issue.ID.Hex(), AddCommentInput{Text: "&lt;script&gt;x&lt;/script&gt;thanks"}, citizen)
	if assert.NoError(t, err) {
		assert.Equal(t, "thanks", comment.Text)
	}
}
