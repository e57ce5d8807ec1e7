package main

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fix-my-city/internal/models"
)

func TestBuildListParams(t *testing.T) {
	params, err := buildListParams([]string{"status=reported", "priority[gte]=5"}, "-priority", "title,status", 2, 10)
	require.NoError(t, err)

	assert.Equal(t, "reported", params.Get("status"))
	assert.Equal(t, "5", params.Get("priority[gte]"))
	assert.Equal(t, "-priority", params.Get("sort"))
	assert.Equal(t, "title,status", params.Get("select"))
	assert.Equal(t, "2", params.Get("page"))
	assert.Equal(t, "10", params.Get("limit"))

	_, err = buildListParams([]string{"status"}, "", "", 0, 0)
	assert.Error(t, err)
}

func TestBuildUpdate_OnlyChangedFlags(t *testing.T) {
	flagSet := pflag.NewFlagSet("update", pflag.ContinueOnError)
	status := flagSet.String("status", "", "")
	notes := flagSet.String("notes", "", "")
	assign := flagSet.String("assign", "", "")
	title := flagSet.String("title", "", "")
	description := flagSet.String("description", "", "")
	category := flagSet.String("category", "", "")
	require.NoError(t, flagSet.Parse([]string{"--status", "resolved", "--assign", ""}))

	in := buildUpdate(flagSet, *status, *notes, *assign, *title, *description, *category)
	require.NotNil(t, in.Status)
	assert.Equal(t, models.StatusResolved, *in.Status)
	require.NotNil(t, in.AssignedTo)
	assert.Equal(t, "", *in.AssignedTo)
	assert.Nil(t, in.Title)
	assert.Nil(t, in.Description)
	assert.Nil(t, in.Category)
	assert.Empty(t, in.StatusNotes)
}

func TestRun_RejectsBadInvocations(t *testing.T) {
	var out bytes.Buffer

	assert.Error(t, run(nil, &out))
	assert.Error(t, run([]string{"frobnicate"}, &out))
	assert.Error(t, run([]string{"get"}, &out))
	assert.Error(t, run([]string{"delete", "a", "b"}, &out))
	assert.Empty(t, out.String())
}
