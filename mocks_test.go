package account_test

import (
	"context"
	"time"

	account "github.com/goliatone/go-account"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAccounts implements account.Accounts
type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	args := m.Called(ctx, email)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

func (m *MockAccounts) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

func (m *MockAccounts) FindByLink(ctx context.Context, kind account.LinkKind, link string) (*account.Account, error) {
	args := m.Called(ctx, kind, link)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

func (m *MockAccounts) FindBySocial(ctx context.Context, provider, externalID string) (*account.Account, error) {
	args := m.Called(ctx, provider, externalID)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

func (m *MockAccounts) Create(ctx context.Context, acc *account.Account) (*account.Account, error) {
	args := m.Called(ctx, acc)
	created, _ := args.Get(0).(*account.Account)
	return created, args.Error(1)
}

func (m *MockAccounts) Save(ctx context.Context, acc *account.Account) (*account.Account, error) {
	args := m.Called(ctx, acc)
	saved, _ := args.Get(0).(*account.Account)
	return saved, args.Error(1)
}

func (m *MockAccounts) Delete(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccounts) TrackFailedLogin(ctx context.Context, acc *account.Account, threshold int, lockFor time.Duration) error {
	args := m.Called(ctx, acc, threshold, lockFor)
	return args.Error(0)
}

func (m *MockAccounts) TrackSuccessfulLogin(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccounts) StoreToken(ctx context.Context, id uuid.UUID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockAccounts) ClearToken(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccounts) LinkSocial(ctx context.Context, accountID uuid.UUID, provider, externalID string) error {
	args := m.Called(ctx, accountID, provider, externalID)
	return args.Error(0)
}

func (m *MockAccounts) UnlinkSocial(ctx context.Context, accountID uuid.UUID, provider string) error {
	args := m.Called(ctx, accountID, provider)
	return args.Error(0)
}

// MockLogger implements account.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// eventRecorder collects emitted events for assertions.
type eventRecorder struct {
	events []account.Event
}

func (r *eventRecorder) Sink() account.EventSink {
	return account.EventSinkFunc(func(ctx context.Context, event account.Event) error {
		r.events = append(r.events, event)
		return nil
	})
}

func (r *eventRecorder) Has(t account.EventType) bool {
	for _, e := range r.events {
		if e.Type == t {
			return true
		}
	}
	return false
}

func (r *eventRecorder) Last() account.Event {
	if len(r.events) == 0 {
		return account.Event{}
	}
	return r.events[len(r.events)-1]
}

// mailRecorder collects outbound messages for assertions.
type mailRecorder struct {
	messages []account.Message
}

func (r *mailRecorder) Mailer() account.Mailer {
	return account.MailerFunc(func(ctx context.Context, msg account.Message) error {
		r.messages = append(r.messages, msg)
		return nil
	})
}
