//go:build !integration

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/blogpipe/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2026, 2, 20, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:          "abc12345-6789-0000-0000-000000000000",
			InputRoot:   "/photos",
			TargetStage: model.StageValidate,
			Latest:      1,
			Status:      model.RunStatusComplete,
			CreatedAt:   now,
			UpdatedAt:   now.Add(2 * time.Minute),
		},
		{
			ID:          "def12345-6789-0000-0000-000000000000",
			InputRoot:   "/a/very/long/path/to/restaurant/visit/photos",
			TargetStage: model.StageRender,
			Latest:      3,
			Status:      model.RunStatusRulesFailed,
			CreatedAt:   now.Add(-1 * time.Hour),
			UpdatedAt:   now.Add(-30 * time.Minute),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "abc12345")
	assert.Contains(t, output, "/photos")
	assert.Contains(t, output, "validate")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "rules_failed")
	assert.Contains(t, output, "2026-02-20 10:30")
	// Long input roots are truncated for the table.
	assert.Contains(t, output, "...")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789"))
	assert.Equal(t, "short", truncateID("short"))
}
