package services

import (
	"context"
	"time"

	"line-helpdesk/internal/dto"
	"line-helpdesk/internal/entities"
	"line-helpdesk/internal/repositories"
	apperrors "line-helpdesk/pkg/errors"
	"line-helpdesk/pkg/lineapi"

	"github.com/aarondl/null/v8"
)

// stubSettings — настройки с фиксированными значениями для тестов.
type stubSettings struct {
	enabled      bool
	path         string
	secret       string
	token        string
	teamID       *uint64
	stageID      *uint64
	matchMode    string
	createTicket bool
	target       float64
	sla          float64
	periodDays   int
}

func defaultStubSettings() *stubSettings {
	stage := uint64(1)
	return &stubSettings{
		enabled:      true,
		path:         DefaultWebhookPath,
		matchMode:    entities.MatchModeByPhoneOrEmail,
		createTicket: true,
		stageID:      &stage,
		target:       DefaultCompletionTarget,
		sla:          DefaultSLAHours,
		periodDays:   DefaultSummaryPeriodDays,
	}
}

func (s *stubSettings) WebhookEnabled(context.Context) bool      { return s.enabled }
func (s *stubSettings) WebhookPath(context.Context) string       { return s.path }
func (s *stubSettings) GlobalSecret(context.Context) string      { return s.secret }
func (s *stubSettings) GlobalAccessToken(context.Context) string { return s.token }
func (s *stubSettings) DefaultTeamID(context.Context) *uint64    { return s.teamID }
func (s *stubSettings) DefaultStageID(context.Context) *uint64   { return s.stageID }
func (s *stubSettings) DefaultMatchMode(context.Context) string  { return s.matchMode }
func (s *stubSettings) DefaultCreateTicket(context.Context) bool { return s.createTicket }
func (s *stubSettings) CompletionTarget(context.Context) float64 { return s.target }
func (s *stubSettings) SLAHours(context.Context) float64         { return s.sla }
func (s *stubSettings) SummaryPeriodDays(context.Context) int    { return s.periodDays }
func (s *stubSettings) All(context.Context) (map[string]string, error) {
	return map[string]string{}, nil
}
func (s *stubSettings) Set(context.Context, string, string) error {
	return nil
}

// fakeContactRepo — контакты в памяти.
type fakeContactRepo struct {
	contacts    map[uint64]*entities.Contact
	identities  []entities.ContactIdentity
	notes       []entities.ContactNote
	searchHit   *entities.Contact
	nextID      uint64
	lastCreated *entities.Contact
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{contacts: map[uint64]*entities.Contact{}, nextID: 1}
}

func (f *fakeContactRepo) GetContacts(_ context.Context, _, _ uint64) ([]entities.Contact, uint64, error) {
	out := make([]entities.Contact, 0, len(f.contacts))
	for _, c := range f.contacts {
		out = append(out, *c)
	}
	return out, uint64(len(out)), nil
}

func (f *fakeContactRepo) UpdateContact(_ context.Context, id uint64, d dto.UpdateContactDTO) error {
	c, ok := f.contacts[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if d.Name != nil {
		c.Name = *d.Name
	}
	if d.Email != nil {
		c.Email = null.StringFrom(*d.Email)
	}
	if d.Phone != nil {
		c.Phone = null.StringFrom(*d.Phone)
	}
	if d.Mobile != nil {
		c.Mobile = null.StringFrom(*d.Mobile)
	}
	return nil
}

func (f *fakeContactRepo) FindContact(_ context.Context, id uint64) (*entities.Contact, error) {
	if c, ok := f.contacts[id]; ok {
		return c, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeContactRepo) FindByIdentity(_ context.Context, system, externalID string) (*entities.Contact, error) {
	for _, id := range f.identities {
		if id.System == system && id.ExternalID == externalID {
			return f.contacts[id.ContactID], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeContactRepo) SearchByEmailOrPhones(_ context.Context, _ string, _ []string) (*entities.Contact, error) {
	if f.searchHit == nil {
		return nil, apperrors.ErrNotFound
	}
	return f.searchHit, nil
}

func (f *fakeContactRepo) CreateContact(_ context.Context, contact entities.Contact, identity *entities.ContactIdentity) (uint64, error) {
	id := f.nextID
	f.nextID++
	contact.ID = id
	f.contacts[id] = &contact
	f.lastCreated = &contact
	if identity != nil {
		identity.ContactID = id
		f.identities = append(f.identities, *identity)
	}
	return id, nil
}

func (f *fakeContactRepo) TouchMatch(_ context.Context, _ uint64, _ string) error { return nil }

func (f *fakeContactRepo) GetIdentity(_ context.Context, contactID uint64, system string) (*entities.ContactIdentity, error) {
	for i := range f.identities {
		if f.identities[i].ContactID == contactID && f.identities[i].System == system {
			return &f.identities[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeContactRepo) AttachIdentity(_ context.Context, identity entities.ContactIdentity) error {
	f.identities = append(f.identities, identity)
	return nil
}

func (f *fakeContactRepo) BumpIdentityLastSeen(_ context.Context, _ uint64) error { return nil }

func (f *fakeContactRepo) AddNote(_ context.Context, contactID uint64, body string) error {
	f.notes = append(f.notes, entities.ContactNote{ContactID: contactID, Body: body})
	return nil
}

// fakeTicketRepo — тикеты в памяти.
type fakeTicketRepo struct {
	openTickets []entities.Ticket
	notes       []entities.TicketMessage
	created     []entities.Ticket
	nextID      uint64
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{nextID: 1}
}

func (f *fakeTicketRepo) FindTicket(_ context.Context, id uint64) (*entities.Ticket, error) {
	for i := range f.created {
		if f.created[i].ID == id {
			return &f.created[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeTicketRepo) FindOpenForDedup(_ context.Context, contactID uint64, _ *uint64, since time.Time) ([]entities.Ticket, error) {
	open := append([]entities.Ticket(nil), f.openTickets...)
	for _, t := range f.created {
		if t.ContactID != nil && *t.ContactID == contactID && !t.CreatedAt.Before(since) {
			open = append(open, t)
		}
	}
	return open, nil
}

func (f *fakeTicketRepo) CreateTicket(_ context.Context, t entities.Ticket) (uint64, error) {
	id := f.nextID
	f.nextID++
	t.ID = id
	f.created = append(f.created, t)
	return id, nil
}

func (f *fakeTicketRepo) AppendInternalNote(_ context.Context, ticketID uint64, body string, _ time.Time) error {
	f.notes = append(f.notes, entities.TicketMessage{TicketID: ticketID, Body: body})
	return nil
}

func (f *fakeTicketRepo) UpdateStage(_ context.Context, ticketID, stageID uint64, _ bool, now time.Time) (*entities.Ticket, error) {
	for i := range f.created {
		if f.created[i].ID == ticketID {
			f.created[i].StageID = stageID
			f.created[i].StageEnteredAt = now
			return &f.created[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// fakeStageRepo — первая стадия команды хранится прямо по ключу команды.
type fakeStageRepo struct {
	firstByTeam map[uint64]entities.Stage
}

func newFakeStageRepo() *fakeStageRepo {
	return &fakeStageRepo{firstByTeam: map[uint64]entities.Stage{}}
}

func (f *fakeStageRepo) FindStage(_ context.Context, id uint64) (*entities.Stage, error) {
	for _, s := range f.firstByTeam {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeStageRepo) FirstStageForTeam(_ context.Context, teamID uint64) (*entities.Stage, error) {
	if s, ok := f.firstByTeam[teamID]; ok {
		return &s, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeStageRepo) GetStages(_ context.Context) ([]entities.Stage, error) { return nil, nil }

// fakeChannelTagRepo — справочник тегов.
type fakeChannelTagRepo struct {
	tags map[string]entities.ChannelTag
}

func newFakeChannelTagRepo() *fakeChannelTagRepo {
	return &fakeChannelTagRepo{tags: map[string]entities.ChannelTag{
		entities.ChannelTagOther: {ID: 3, Name: "Прочее", Code: entities.ChannelTagOther},
	}}
}

func (f *fakeChannelTagRepo) FindByCode(_ context.Context, code string) (*entities.ChannelTag, error) {
	if t, ok := f.tags[code]; ok {
		return &t, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeChannelTagRepo) FindAny(_ context.Context) (*entities.ChannelTag, error) {
	for _, t := range f.tags {
		return &t, nil
	}
	return nil, apperrors.ErrNotFound
}

// fakeLineAPI — клиент LINE без сети.
type fakeLineAPI struct {
	profile *lineapi.Profile
	err     error
}

func (f *fakeLineAPI) GetProfile(_ context.Context, _ string, _ string) (*lineapi.Profile, error) {
	return f.profile, f.err
}

// fakePolicyRepo — политики в памяти.
type fakePolicyRepo struct {
	policies []entities.Policy
}

func (f *fakePolicyRepo) GetPolicies(_ context.Context, _, _ uint64) ([]entities.Policy, uint64, error) {
	return f.policies, uint64(len(f.policies)), nil
}

func (f *fakePolicyRepo) GetActiveByTriggerStage(_ context.Context, stageID uint64) ([]entities.Policy, error) {
	var out []entities.Policy
	for _, p := range f.policies {
		if p.Active && p.TriggerStageID == stageID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePolicyRepo) FindPolicy(_ context.Context, id uint64) (*entities.Policy, error) {
	for i := range f.policies {
		if f.policies[i].ID == id {
			return &f.policies[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakePolicyRepo) CreatePolicy(_ context.Context, _ dto.CreatePolicyDTO) (uint64, error) {
	return 0, nil
}

func (f *fakePolicyRepo) UpdatePolicy(_ context.Context, _ uint64, _ dto.UpdatePolicyDTO) error {
	return nil
}

func (f *fakePolicyRepo) DeletePolicy(_ context.Context, _ uint64) error { return nil }

// fakeFollowUpRepo — follow-up события в памяти.
type fakeFollowUpRepo struct {
	events []entities.FollowUpEvent
	nextID uint64
}

func newFakeFollowUpRepo() *fakeFollowUpRepo {
	return &fakeFollowUpRepo{nextID: 1}
}

func (f *fakeFollowUpRepo) CreatePending(_ context.Context, e entities.FollowUpEvent) (uint64, bool, error) {
	for _, existing := range f.events {
		if existing.TicketID == e.TicketID && existing.PolicyID == e.PolicyID &&
			existing.State == entities.FollowUpStatePending {
			return 0, false, nil
		}
	}
	e.ID = f.nextID
	f.nextID++
	e.State = entities.FollowUpStatePending
	f.events = append(f.events, e)
	return e.ID, true, nil
}

func (f *fakeFollowUpRepo) FindPendingByTicket(_ context.Context, ticketID uint64) ([]entities.FollowUpEvent, error) {
	var out []entities.FollowUpEvent
	for _, e := range f.events {
		if e.TicketID == ticketID && e.State == entities.FollowUpStatePending {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeFollowUpRepo) MarkDone(_ context.Context, id uint64, doneAt time.Time, responseHours float64) error {
	for i := range f.events {
		if f.events[i].ID == id && f.events[i].State == entities.FollowUpStatePending {
			f.events[i].State = entities.FollowUpStateDone
			f.events[i].DoneAt.SetValid(doneAt)
			f.events[i].ResponseTimeHours.SetValid(responseHours)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (f *fakeFollowUpRepo) MarkEscalated(_ context.Context, id uint64, at time.Time, assigneeID *uint64, activityType string) error {
	for i := range f.events {
		if f.events[i].ID == id && f.events[i].State == entities.FollowUpStatePending {
			f.events[i].State = entities.FollowUpStateEscalated
			f.events[i].EscalationCreatedAt.SetValid(at)
			if assigneeID != nil {
				f.events[i].AssignedUserID = assigneeID
			}
			if activityType != "" {
				f.events[i].ActivityType = activityType
			}
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (f *fakeFollowUpRepo) FindOverdue(_ context.Context, asOf time.Time) ([]entities.FollowUpEvent, error) {
	var out []entities.FollowUpEvent
	for _, e := range f.events {
		if e.State == entities.FollowUpStatePending && e.DueDate.Before(asOf) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeFollowUpRepo) GetDailyAggregates(_ context.Context, _, _ time.Time) ([]entities.KPIDaily, error) {
	return nil, nil
}

func (f *fakeFollowUpRepo) GetWindowAggregate(_ context.Context, from, to time.Time) (*entities.KPISummary, error) {
	return &entities.KPISummary{PeriodStart: from, PeriodEnd: to}, nil
}

// fakeEventLogRepo — журнал в памяти.
type fakeEventLogRepo struct {
	entries []entities.EventLog
}

func (f *fakeEventLogRepo) Append(_ context.Context, e entities.EventLog) (uint64, error) {
	f.entries = append(f.entries, e)
	return uint64(len(f.entries)), nil
}

func (f *fakeEventLogRepo) GetEventLogs(_ context.Context, _, _ uint64) ([]entities.EventLog, uint64, error) {
	return f.entries, uint64(len(f.entries)), nil
}

// Компилятор проверяет соответствие фейков интерфейсам.
var (
	_ SettingsServiceInterface                   = (*stubSettings)(nil)
	_ repositories.ContactRepositoryInterface    = (*fakeContactRepo)(nil)
	_ repositories.TicketRepositoryInterface     = (*fakeTicketRepo)(nil)
	_ repositories.ChannelTagRepositoryInterface = (*fakeChannelTagRepo)(nil)
	_ repositories.StageRepositoryInterface      = (*fakeStageRepo)(nil)
	_ lineapi.ServiceInterface                   = (*fakeLineAPI)(nil)
	_ repositories.PolicyRepositoryInterface     = (*fakePolicyRepo)(nil)
	_ repositories.FollowUpRepositoryInterface   = (*fakeFollowUpRepo)(nil)
	_ repositories.EventLogRepositoryInterface   = (*fakeEventLogRepo)(nil)
)
