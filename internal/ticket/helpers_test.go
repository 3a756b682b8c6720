package ticket_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/tkt/internal/ticket"
)

const samplePath = "tickets/TKT-007-add-retry-to-uploader.md"

const sampleTicket = `---
id: TKT-007
title: Add retry to uploader
slug: TKT-007-add-retry-to-uploader
status: open
priority: medium
created_at: 2024-03-01T10:00:00.000Z
updated_at: 2024-03-01T10:00:00.000Z
---
## Description

Uploads fail on flaky networks and need retries.

## Acceptance Criteria

- Retries three times with backoff.

## Code Quality

Unit tests cover the retry loop.
`

const templateTicket = `---
id:
title:
slug:
status: open
priority: medium
created_at:
updated_at:
---
## Description

Describe the problem.

## Acceptance Criteria

- [ ] Criterion

## Code Quality

Tests pass and code is reviewed.
`

var (
	statusOptions   = []string{"open", "in_progress", "review", "done"}
	priorityOptions = []string{"low", "medium", "high", "critical"}
	fixedNow        = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func mustParse(t *testing.T, path, text string) *ticket.Document {
	t.Helper()

	doc, err := ticket.Parse(path, []byte(text))
	require.NoError(t, err)

	return doc
}

func sampleRules(t *testing.T) ticket.Rules {
	t.Helper()

	return ticket.NewRules(mustParse(t, "template.md", templateTicket), statusOptions, priorityOptions)
}

// without removes the first line equal to line from text.
func without(text, line string) string {
	return strings.Replace(text, line+"\n", "", 1)
}

// replaced swaps the first occurrence of old in text.
func replaced(text, old, replacement string) string {
	return strings.Replace(text, old, replacement, 1)
}
