package auth

import (
	"context"
	"sync"

	"github.com/go-auth-nosql/internal/application/session"
	"github.com/go-auth-nosql/internal/domain"
	"github.com/stretchr/testify/mock"
)

// --- in-memory token stores ---

type memVerificationTokens struct {
	mu     sync.Mutex
	byID   map[string]*domain.VerificationToken
	failOn error
}

func newMemVerificationTokens() *memVerificationTokens {
	return &memVerificationTokens{byID: map[string]*domain.VerificationToken{}}
}

func (m *memVerificationTokens) Replace(_ context.Context, t *domain.VerificationToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != nil {
		return m.failOn
	}
	for k, v := range m.byID {
		if v.Email == t.Email {
			delete(m.byID, k)
		}
	}
	cp := *t
	m.byID[t.TokenID] = &cp
	return nil
}

func (m *memVerificationTokens) GetByToken(_ context.Context, token string) (*domain.VerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.byID {
		if v.Token == token {
			cp := *v
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memVerificationTokens) Delete(_ context.Context, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, tokenID)
	return nil
}

func (m *memVerificationTokens) forEmail(email string) []*domain.VerificationToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.VerificationToken
	for _, v := range m.byID {
		if v.Email == email {
			out = append(out, v)
		}
	}
	return out
}

type memTwoFactorTokens struct {
	mu   sync.Mutex
	byID map[string]*domain.TwoFactorToken
}

func newMemTwoFactorTokens() *memTwoFactorTokens {
	return &memTwoFactorTokens{byID: map[string]*domain.TwoFactorToken{}}
}

func (m *memTwoFactorTokens) Replace(_ context.Context, t *domain.TwoFactorToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.byID {
		if v.Email == t.Email {
			delete(m.byID, k)
		}
	}
	cp := *t
	m.byID[t.TokenID] = &cp
	return nil
}

func (m *memTwoFactorTokens) GetByEmail(_ context.Context, email string) (*domain.TwoFactorToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var newest *domain.TwoFactorToken
	for _, v := range m.byID {
		if v.Email == email && (newest == nil || v.CreatedAt > newest.CreatedAt) {
			newest = v
		}
	}
	if newest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *newest
	return &cp, nil
}

func (m *memTwoFactorTokens) Delete(_ context.Context, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, tokenID)
	return nil
}

func (m *memTwoFactorTokens) forEmail(email string) []*domain.TwoFactorToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.TwoFactorToken
	for _, v := range m.byID {
		if v.Email == email {
			out = append(out, v)
		}
	}
	return out
}

type memConfirmations struct {
	mu     sync.Mutex
	byUser map[string]*domain.TwoFactorConfirmation
}

func newMemConfirmations() *memConfirmations {
	return &memConfirmations{byUser: map[string]*domain.TwoFactorConfirmation{}}
}

func (m *memConfirmations) Replace(_ context.Context, c *domain.TwoFactorConfirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.byUser[c.UserID] = &cp
	return nil
}

func (m *memConfirmations) get(userID string) *domain.TwoFactorConfirmation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byUser[userID]
}

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

// recordingNotifier keeps the last token mailed per email so tests can
// submit it back.
type recordingNotifier struct {
	mu            sync.Mutex
	verifications map[string][]string
	codes         map[string][]string
	sms           map[string][]string
	err           error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		verifications: map[string][]string{},
		codes:         map[string][]string{},
		sms:           map[string][]string{},
	}
}

func (n *recordingNotifier) SendVerificationEmail(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.verifications[email] = append(n.verifications[email], token)
	return nil
}

func (n *recordingNotifier) SendTwoFactorEmail(_ context.Context, email, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.codes[email] = append(n.codes[email], code)
	return nil
}

func (n *recordingNotifier) SendTwoFactorSMS(_ context.Context, phone, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sms[phone] = append(n.sms[phone], code)
	return nil
}

func (n *recordingNotifier) lastCode(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := n.codes[email]
	if len(c) == 0 {
		return ""
	}
	return c[len(c)-1]
}

type mockSessions struct{ mock.Mock }

func (m *mockSessions) SignIn(ctx context.Context, req session.SignInRequest) (*session.Result, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*session.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLimiter struct{ mock.Mock }

func (m *mockLimiter) Allow(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
func (m *mockLimiter) Reset(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
