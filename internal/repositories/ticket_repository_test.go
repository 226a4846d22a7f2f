package repositories

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Запрос дедупликации соединяет tickets со stages; обе таблицы несут
// колонки id и team_id, и неквалифицированная ссылка валит запрос в
// Postgres с ошибкой 42702.
func TestDedupQuery_ColumnsQualified(t *testing.T) {
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	team := uint64(3)

	query, args, err := dedupQuery(42, &team, since)
	require.NoError(t, err)

	// Ни одна голая ссылка на id/team_id/contact_id/created_at не должна
	// остаться ни в SELECT, ни в WHERE.
	bare := regexp.MustCompile(`(^|[\s(,])(id|team_id|contact_id|created_at)\b`)
	for _, m := range bare.FindAllString(query, -1) {
		t.Errorf("неквалифицированная колонка в запросе: %q", strings.TrimSpace(m))
	}

	assert.Contains(t, query, "tickets.id")
	assert.Contains(t, query, "tickets.team_id = ")
	assert.Contains(t, query, "s.closed = ")
	assert.Contains(t, query, "JOIN stages s ON tickets.stage_id = s.id")
	assert.Equal(t, []interface{}{uint64(42), since, false, uint64(3)}, args)
}

func TestDedupQuery_TeamOptional(t *testing.T) {
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	query, args, err := dedupQuery(42, nil, since)
	require.NoError(t, err)

	assert.NotContains(t, query, "team_id = ")
	assert.Equal(t, []interface{}{uint64(42), since, false}, args)
}
