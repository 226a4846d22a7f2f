package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"line-helpdesk/internal/entities"
	apperrors "line-helpdesk/pkg/errors"
	"line-helpdesk/pkg/eventbus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(tickets *fakeTicketRepo, tags *fakeChannelTagRepo, settings *stubSettings) TicketRouterInterface {
	return NewTicketRouter(tickets, tags, newFakeStageRepo(), settings, eventbus.New(zap.NewNop()), zap.NewNop())
}

func testChannel() *entities.Channel {
	stage := uint64(5)
	team := uint64(2)
	return &entities.Channel{
		ID:             1,
		Name:           "main",
		Active:         true,
		MatchMode:      entities.MatchModeByPhoneOrEmail,
		DefaultTeamID:  &team,
		DefaultStageID: &stage,
		CreateTicket:   true,
	}
}

func TestTicketRouter_Route(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rc := NewRequestCtx(now)
	contact := &entities.Contact{ID: 42, Name: "Клиент"}

	t.Run("ноль открытых тикетов — создаётся новый", func(t *testing.T) {
		tickets := newFakeTicketRepo()
		router := newTestRouter(tickets, newFakeChannelTagRepo(), defaultStubSettings())

		res, err := router.Route(context.Background(), rc, testChannel(), contact, "U1", "ткань порвалась")
		require.NoError(t, err)

		assert.True(t, res.CreatedTicket)
		require.Len(t, tickets.created, 1)
		created := tickets.created[0]
		assert.Equal(t, "LINE: ткань порвалась", created.Title)
		assert.Equal(t, uint64(5), created.StageID)
		assert.Equal(t, uint64(2), *created.TeamID)
		assert.Equal(t, uint64(42), *created.ContactID)
		assert.Equal(t, "U1", created.ExternalUserID.String)
		assert.Equal(t, entities.TicketPONumberPlaceholder, created.PONumber)
		assert.Equal(t, now, created.StageEnteredAt)
	})

	t.Run("ровно один открытый тикет — заметка вместо нового", func(t *testing.T) {
		tickets := newFakeTicketRepo()
		tickets.openTickets = []entities.Ticket{{ID: 7, StageID: 5}}
		router := newTestRouter(tickets, newFakeChannelTagRepo(), defaultStubSettings())

		res, err := router.Route(context.Background(), rc, testChannel(), contact, "U1", "повторное сообщение")
		require.NoError(t, err)

		assert.False(t, res.CreatedTicket)
		assert.Equal(t, uint64(7), res.Ticket.ID)
		assert.Empty(t, tickets.created)
		require.Len(t, tickets.notes, 1)
		assert.Equal(t, uint64(7), tickets.notes[0].TicketID)
		assert.Contains(t, tickets.notes[0].Body, "повторное сообщение")
		assert.Contains(t, tickets.notes[0].Body, "U1")
	})

	t.Run("несколько открытых тикетов — создаётся новый", func(t *testing.T) {
		tickets := newFakeTicketRepo()
		tickets.openTickets = []entities.Ticket{{ID: 7}, {ID: 8}}
		router := newTestRouter(tickets, newFakeChannelTagRepo(), defaultStubSettings())

		res, err := router.Route(context.Background(), rc, testChannel(), contact, "U1", "третье сообщение")
		require.NoError(t, err)

		assert.True(t, res.CreatedTicket)
		assert.Empty(t, tickets.notes)
	})

	t.Run("заголовок обрезается до 60 рун", func(t *testing.T) {
		tickets := newFakeTicketRepo()
		router := newTestRouter(tickets, newFakeChannelTagRepo(), defaultStubSettings())

		long := strings.Repeat("ว", 80) // тайские руны, не байты
		_, err := router.Route(context.Background(), rc, testChannel(), contact, "U1", long)
		require.NoError(t, err)

		require.Len(t, tickets.created, 1)
		assert.Equal(t, "LINE: "+strings.Repeat("ว", 60), tickets.created[0].Title)
	})

	t.Run("стадия из настроек, когда канал её не задаёт", func(t *testing.T) {
		tickets := newFakeTicketRepo()
		settings := defaultStubSettings()
		fallback := uint64(9)
		settings.stageID = &fallback
		router := newTestRouter(tickets, newFakeChannelTagRepo(), settings)

		channel := testChannel()
		channel.DefaultStageID = nil
		_, err := router.Route(context.Background(), rc, channel, contact, "U1", "привет")
		require.NoError(t, err)

		require.Len(t, tickets.created, 1)
		assert.Equal(t, uint64(9), tickets.created[0].StageID)
	})

	t.Run("без стадии в канале и настройках берётся первая стадия команды", func(t *testing.T) {
		tickets := newFakeTicketRepo()
		settings := defaultStubSettings()
		settings.stageID = nil
		stages := newFakeStageRepo()
		stages.firstByTeam[2] = entities.Stage{ID: 11, Name: "Новая", Sequence: 1}
		router := NewTicketRouter(tickets, newFakeChannelTagRepo(), stages, settings,
			eventbus.New(zap.NewNop()), zap.NewNop())

		channel := testChannel()
		channel.DefaultStageID = nil
		_, err := router.Route(context.Background(), rc, channel, contact, "U1", "привет")
		require.NoError(t, err)

		require.Len(t, tickets.created, 1)
		assert.Equal(t, uint64(11), tickets.created[0].StageID)
	})

	t.Run("стадия не настроена нигде — ошибка", func(t *testing.T) {
		settings := defaultStubSettings()
		settings.stageID = nil
		router := newTestRouter(newFakeTicketRepo(), newFakeChannelTagRepo(), settings)

		channel := testChannel()
		channel.DefaultStageID = nil
		channel.DefaultTeamID = nil
		settings.teamID = nil
		_, err := router.Route(context.Background(), rc, channel, contact, "U1", "привет")
		require.Error(t, err)

		var httpErr *apperrors.HttpError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, 500, httpErr.Code)
	})

	t.Run("тег канала подставляется из справочника", func(t *testing.T) {
		tickets := newFakeTicketRepo()
		router := newTestRouter(tickets, newFakeChannelTagRepo(), defaultStubSettings())

		_, err := router.Route(context.Background(), rc, testChannel(), contact, "U1", "привет")
		require.NoError(t, err)

		require.Len(t, tickets.created, 1)
		require.NotNil(t, tickets.created[0].ChannelTagID)
		assert.Equal(t, uint64(3), *tickets.created[0].ChannelTagID)
	})
}
