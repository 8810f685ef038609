package service

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/veridian-dev/auth-api/internal/domain"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func copyUser(u *domain.User) *domain.User {
	cp := *u
	if u.OTPCode != nil {
		code := *u.OTPCode
		cp.OTPCode = &code
	}
	if u.OTPExpiresAt != nil {
		at := *u.OTPExpiresAt
		cp.OTPExpiresAt = &at
	}
	cp.PasswordHash = append([]byte(nil), u.PasswordHash...)
	cp.PasswordSalt = append([]byte(nil), u.PasswordSalt...)
	return &cp
}

func (f *fakeUserRepo) Create(ctx context.Context, username, email string, passwordHash, passwordSalt []byte, otpCode string, otpExpiresAt time.Time) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email || u.Username == username {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: append([]byte(nil), passwordHash...),
		PasswordSalt: append([]byte(nil), passwordSalt...),
		OTPCode:      &otpCode,
		OTPExpiresAt: &otpExpiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.users[user.ID] = user
	return copyUser(user), nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email || u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) SetOTP(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.OTPCode = &code
	u.OTPExpiresAt = &expiresAt
	return nil
}

func (f *fakeUserRepo) ClearOTP(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.OTPCode = nil
	u.OTPExpiresAt = nil
	return nil
}

func (f *fakeUserRepo) MarkVerified(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	u.EmailVerified = true
	u.OTPCode = nil
	u.OTPExpiresAt = nil
	return copyUser(u), nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = append([]byte(nil), passwordHash...)
	u.PasswordSalt = append([]byte(nil), passwordSalt...)
	return nil
}

func (f *fakeUserRepo) UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	u.Username = username
	return copyUser(u), nil
}

func (f *fakeUserRepo) UsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.users {
		if id != excludeID && strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

// pendingOTP reads the stored code directly, bypassing the service.
func (f *fakeUserRepo) pendingOTP(id uuid.UUID) *domain.OTP {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return copyUser(u).PendingOTP()
	}
	return nil
}

type fakeRevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func newFakeRevocationStore() *fakeRevocationStore {
	return &fakeRevocationStore{entries: make(map[string]time.Time)}
}

func (f *fakeRevocationStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[token] = expiresAt
	return nil
}

func (f *fakeRevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[token]
	return ok, nil
}

func (f *fakeRevocationStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for token, expiresAt := range f.entries {
		if expiresAt.Before(now) {
			delete(f.entries, token)
			n++
		}
	}
	return n, nil
}

type sentOTP struct {
	email   string
	code    string
	purpose domain.OTPPurpose
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentOTP
	fail bool
}

func (f *fakeMailer) SendOTP(ctx context.Context, email, code string, purpose domain.OTPPurpose) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return context.DeadlineExceeded
	}
	f.sent = append(f.sent, sentOTP{email: email, code: code, purpose: purpose})
	return nil
}

func (f *fakeMailer) last() (sentOTP, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentOTP{}, false
	}
	return f.sent[len(f.sent)-1], true
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
