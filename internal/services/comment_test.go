package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fix-my-city/internal/errs"
)

func TestCommentService_AddAndList(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	issue, err := f.svc.Create(ctx, potholeInput(), citizen)
	require.NoError(t, err)
	id := issue.ID.Hex()

	first, err := f.comments.Add(ctx, id, AddCommentInput{Text: "  same here  "}, voter)
	require.NoError(t, err)
	assert.Equal(t, "same here", first.Text)
	assert.Equal(t, "U2", first.UserID)

	f.clock.Advance(time.Minute)
	_, err = f.comments.Add(ctx, id, AddCommentInput{Text: "crew dispatched"}, worker)
	require.NoError(t, err)

	list, err := f.comments.List(ctx, id)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "same here", list[0].Text)
	assert.Equal(t, "crew dispatched", list[1].Text)
}

func TestCommentService_Errors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	issue, err := f.svc.Create(ctx, potholeInput(), citizen)
	require.NoError(t, err)
	id := issue.ID.Hex()

	_, err = f.comments.Add(ctx, id, AddCommentInput{Text: "   "}, voter)
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.comments.Add(ctx, id, AddCommentInput{Text: strings.Repeat("a", 501)}, voter)
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.comments.Add(ctx, id, AddCommentInput{Text: "hi"}, nil)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	_, err = f.comments.Add(ctx, "65f000000000000000000001", AddCommentInput{Text: "hi"}, voter)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
