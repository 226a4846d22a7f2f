package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"line-helpdesk/internal/entities"
	"line-helpdesk/pkg/lineapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestResolver(contacts *fakeContactRepo, api *fakeLineAPI, settings *stubSettings) ContactResolverInterface {
	return NewContactResolver(contacts, api, settings, zap.NewNop())
}

func TestContactResolver_Resolve(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rc := NewRequestCtx(now)

	t.Run("совпадение по идентичности", func(t *testing.T) {
		contacts := newFakeContactRepo()
		contacts.contacts[10] = &entities.Contact{ID: 10, Name: "Somchai"}
		contacts.identities = []entities.ContactIdentity{
			{ID: 1, ContactID: 10, System: entities.IdentitySystemLine, ExternalID: "U100"},
		}
		resolver := newTestResolver(contacts, &fakeLineAPI{}, defaultStubSettings())

		res, err := resolver.Resolve(context.Background(), rc, testChannel(), "U100", "привет")
		require.NoError(t, err)

		assert.True(t, res.Matched)
		assert.False(t, res.Created)
		assert.False(t, res.Conflict)
		assert.Equal(t, uint64(10), res.Contact.ID)
	})

	t.Run("совпадение по email с привязкой идентичности", func(t *testing.T) {
		contacts := newFakeContactRepo()
		contacts.contacts[20] = &entities.Contact{ID: 20, Name: "Existing"}
		contacts.searchHit = contacts.contacts[20]
		resolver := newTestResolver(contacts, &fakeLineAPI{}, defaultStubSettings())

		res, err := resolver.Resolve(context.Background(), rc, testChannel(), "U200",
			"мой адрес somchai@example.com, жду ответа")
		require.NoError(t, err)

		assert.True(t, res.Matched)
		assert.False(t, res.Conflict)
		require.Len(t, contacts.identities, 1)
		assert.Equal(t, uint64(20), contacts.identities[0].ContactID)
		assert.Equal(t, "U200", contacts.identities[0].ExternalID)
		assert.Equal(t, entities.IdentitySystemLine, contacts.identities[0].System)
	})

	t.Run("конфликт идентичности фиксируется заметкой без перезаписи", func(t *testing.T) {
		contacts := newFakeContactRepo()
		contacts.contacts[30] = &entities.Contact{ID: 30, Name: "Existing"}
		contacts.identities = []entities.ContactIdentity{
			{ID: 5, ContactID: 30, System: entities.IdentitySystemLine, ExternalID: "U_OLD"},
		}
		contacts.searchHit = contacts.contacts[30]
		resolver := newTestResolver(contacts, &fakeLineAPI{}, defaultStubSettings())

		res, err := resolver.Resolve(context.Background(), rc, testChannel(), "U_NEW",
			"телефон 081-234-5678")
		require.NoError(t, err)

		assert.True(t, res.Conflict)
		assert.True(t, res.Matched)
		// Старая идентичность на месте, новая не привязана.
		require.Len(t, contacts.identities, 1)
		assert.Equal(t, "U_OLD", contacts.identities[0].ExternalID)
		require.Len(t, contacts.notes, 1)
		assert.Contains(t, contacts.notes[0].Body, "U_NEW")
		assert.Contains(t, contacts.notes[0].Body, "U_OLD")
	})

	t.Run("режим manual_only не ищет по реквизитам", func(t *testing.T) {
		contacts := newFakeContactRepo()
		contacts.contacts[40] = &entities.Contact{ID: 40}
		contacts.searchHit = contacts.contacts[40]
		resolver := newTestResolver(contacts, &fakeLineAPI{}, defaultStubSettings())

		channel := testChannel()
		channel.MatchMode = entities.MatchModeManualOnly
		res, err := resolver.Resolve(context.Background(), rc, channel, "U300",
			"мой адрес somchai@example.com")
		require.NoError(t, err)

		assert.True(t, res.Created)
		assert.NotEqual(t, uint64(40), res.Contact.ID)
	})

	t.Run("новый контакт с именем из профиля LINE", func(t *testing.T) {
		contacts := newFakeContactRepo()
		api := &fakeLineAPI{profile: &lineapi.Profile{UserID: "U400", DisplayName: "Somchai J."}}
		settings := defaultStubSettings()
		settings.token = "global-token"
		resolver := newTestResolver(contacts, api, settings)

		channel := testChannel()
		channel.AccessToken = ""
		res, err := resolver.Resolve(context.Background(), rc, channel, "U400", "สวัสดีครับ")
		require.NoError(t, err)

		assert.True(t, res.Created)
		assert.Equal(t, "Somchai J.", res.Contact.Name)
		require.Len(t, contacts.identities, 1)
		assert.Equal(t, "U400", contacts.identities[0].ExternalID)
	})

	t.Run("ошибка профиля LINE даёт резервное имя", func(t *testing.T) {
		contacts := newFakeContactRepo()
		api := &fakeLineAPI{err: fmt.Errorf("timeout")}
		settings := defaultStubSettings()
		settings.token = "global-token"
		resolver := newTestResolver(contacts, api, settings)

		res, err := resolver.Resolve(context.Background(), rc, testChannel(), "U500", "สวัสดีครับ")
		require.NoError(t, err)

		assert.True(t, res.Created)
		assert.Equal(t, entities.FallbackContactName, res.Contact.Name)
		assert.False(t, res.Contact.DisplayName.Valid)
	})
}
