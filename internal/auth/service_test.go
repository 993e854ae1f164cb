package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdesk/bizdesk/internal/kv"
)

const testPrefix = "bizdesk"

type serviceFixture struct {
	svc      *Service
	users    *KVUserRepository
	sessions *KVSessionRepository
	store    *kv.MemoryStore
	clock    *fakeClock
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	store := kv.NewMemoryStore()
	clock := newFakeClock()
	users := NewKVUserRepository(store, testPrefix)
	sessions := NewKVSessionRepository(store, testPrefix)
	limiter := NewLimiter(clock.Now)
	svc := NewService(users, sessions, limiter, testSecret, testBcryptCost, clock.Now)

	return &serviceFixture{svc: svc, users: users, sessions: sessions, store: store, clock: clock}
}

// storedUser reads the raw users document and returns the record for email,
// bypassing the repository so tests see exactly what is persisted.
func (f *serviceFixture) storedUser(t *testing.T, email string) map[string]any {
	t.Helper()

	raw, found, err := f.store.GetRaw(context.Background(), testPrefix+"_users")
	require.NoError(t, err)
	require.True(t, found)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(raw, &records))
	for _, r := range records {
		if r["email"] == email {
			return r
		}
	}
	t.Fatalf("no stored record for %s", email)
	return nil
}

// --- Register Tests ---

func TestRegister_Success(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	result, err := f.svc.Register(ctx, "a@b.com", "Str0ng!Pass", "Alice", "")
	require.NoError(t, err)

	assert.Equal(t, "a@b.com", result.User.Email)
	assert.Equal(t, "Alice", result.User.Name)
	assert.Len(t, result.User.ID, 32)
	assert.NotEmpty(t, result.Token)

	// The public view must never leak credential material.
	viewJSON, err := json.Marshal(result.User)
	require.NoError(t, err)
	assert.NotContains(t, string(viewJSON), "password")
	assert.NotContains(t, string(viewJSON), "Str0ng!Pass")

	// A session record now exists and is valid.
	session, err := f.sessions.Get(ctx, result.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, session.UserID)
	assert.True(t, session.Valid(f.clock.Now()))

	// The stored credential is a bcrypt hash, never the plaintext.
	record := f.storedUser(t, "a@b.com")
	hash, _ := record["passwordHash"].(string)
	assert.Regexp(t, `^\$2`, hash)
	assert.NotContains(t, record, "password")
}

func TestRegister_NormalizesEmail(t *testing.T) {
	f := newServiceFixture(t)

	result, err := f.svc.Register(context.Background(), "  Alice@B.Com ", "Str0ng!Pass", "Alice", "Acme LLC")
	require.NoError(t, err)
	assert.Equal(t, "alice@b.com", result.User.Email)
	assert.Equal(t, "Acme LLC", result.User.Company)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "a@b.com", "Str0ng!Pass", "Alice", "")
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, "A@B.com", "Other!Pass9", "Alice Again", "")
	require.ErrorIs(t, err, ErrAccountExists)
	assert.Contains(t, err.Error(), "already exists")
}

// --- Login Tests ---

func TestLogin_Success(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "a@b.com", "Str0ng!Pass", "Alice", "")
	require.NoError(t, err)

	result, err := f.svc.Login(ctx, "A@b.com ", "Str0ng!Pass")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", result.User.Email)
	assert.NotEmpty(t, result.Token)
}

func TestLogin_UnknownEmailGenericMessage(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Login(context.Background(), "nobody@b.com", "whatever")
	require.Error(t, err)

	var credErr *InvalidCredentialsError
	require.ErrorAs(t, err, &credErr)
	assert.Equal(t, "Invalid email or password.", credErr.Error(),
		"unknown email and wrong password must be indistinguishable")
}

func TestLogin_WrongPasswordGenericMessage(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "a@b.com", "Str0ng!Pass", "Alice", "")
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "a@b.com", "wrong-password")
	var credErr *InvalidCredentialsError
	require.ErrorAs(t, err, &credErr)
	assert.Equal(t, "Invalid email or password.", credErr.Error())
}

func TestLogin_WarnsBeforeLockoutAndThenLocks(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "a@b.com", "Str0ng!Pass", "Alice", "")
	require.NoError(t, err)

	expected := []string{
		"Invalid email or password.",
		"Invalid email or password.",
		"Invalid email or password. 2 attempts remaining before temporary lockout.",
		"Invalid email or password. 1 attempt remaining before temporary lockout.",
		"Invalid email or password. Account temporarily locked due to too many failed attempts.",
	}

	for i, want := range expected {
		_, err := f.svc.Login(ctx, "a@b.com", "wrong-password")
		var credErr *InvalidCredentialsError
		require.ErrorAs(t, err, &credErr, "failure %d", i+1)
		assert.Equal(t, want, credErr.Error(), "failure %d", i+1)
	}

	// The 6th attempt is refused by the limiter even with the right password.
	_, err = f.svc.Login(ctx, "a@b.com", "Str0ng!Pass")
	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.Contains(t, rateErr.Message, "Too many failed attempts")
}

func TestLogin_SuccessResetsRateLimit(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "a@b.com", "Str0ng!Pass", "Alice", "")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := f.svc.Login(ctx, "a@b.com", "wrong-password")
		require.Error(t, err)
	}

	_, err = f.svc.Login(ctx, "a@b.com", "Str0ng!Pass")
	require.NoError(t, err, "four failures leave one attempt, which succeeds")

	// The counter is back at zero: four fresh failures warn, not lock.
	for i := 0; i < 4; i++ {
		_, err := f.svc.Login(ctx, "a@b.com", "wrong-password")
		var credErr *InvalidCredentialsError
		require.ErrorAs(t, err, &credErr)
	}
	_, err = f.svc.Login(ctx, "a@b.com", "Str0ng!Pass")
	require.NoError(t, err)
}

func TestLogin_LockoutLiftsAfterWait(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "a@b.com", "Str0ng!Pass", "Alice", "")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, _ = f.svc.Login(ctx, "a@b.com", "wrong-password")
	}
	_, err = f.svc.Login(ctx, "a@b.com", "Str0ng!Pass")
	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)

	f.clock.Advance(31 * time.Minute)

	_, err = f.svc.Login(ctx, "a@b.com", "Str0ng!Pass")
	require.NoError(t, err)
}

// --- Migration Tests ---

func seedLegacyUser(t *testing.T, f *serviceFixture, u User) {
	t.Helper()
	require.NoError(t, f.users.Create(context.Background(), &u))
}

func TestLogin_MigratesPlaintextRecord(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	seedLegacyUser(t, f, User{
		ID:             "11111111111111111111111111111111",
		Email:          "legacy@b.com",
		LegacyPassword: "Old!Secret9",
		Name:           "Legacy",
		CreatedAt:      f.clock.Now(),
	})

	result, err := f.svc.Login(ctx, "legacy@b.com", "Old!Secret9")
	require.NoError(t, err)
	assert.Equal(t, "legacy@b.com", result.User.Email)

	record := f.storedUser(t, "legacy@b.com")
	hash, _ := record["passwordHash"].(string)
	assert.Regexp(t, `^\$2`, hash, "record should now carry a bcrypt hash")
	assert.NotContains(t, record, "password", "plaintext field should be gone")

	// The migrated credential keeps working.
	_, err = f.svc.Login(ctx, "legacy@b.com", "Old!Secret9")
	require.NoError(t, err)
}

func TestLogin_MigratesLegacyDigestRecord(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	seedLegacyUser(t, f, User{
		ID:           "22222222222222222222222222222222",
		Email:        "digest@b.com",
		PasswordHash: legacyDigest("Dig3st!Pass"),
		Name:         "Digest",
		CreatedAt:    f.clock.Now(),
	})

	_, err := f.svc.Login(ctx, "digest@b.com", "Dig3st!Pass")
	require.NoError(t, err)

	record := f.storedUser(t, "digest@b.com")
	hash, _ := record["passwordHash"].(string)
	assert.Regexp(t, `^\$2`, hash)

	_, err = f.svc.Login(ctx, "digest@b.com", "Dig3st!Pass")
	require.NoError(t, err)
}

func TestLogin_WrongPasswordDoesNotMigrate(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	seedLegacyUser(t, f, User{
		ID:             "33333333333333333333333333333333",
		Email:          "legacy@b.com",
		LegacyPassword: "Old!Secret9",
		Name:           "Legacy",
		CreatedAt:      f.clock.Now(),
	})

	_, err := f.svc.Login(ctx, "legacy@b.com", "wrong")
	require.Error(t, err)

	record := f.storedUser(t, "legacy@b.com")
	assert.Equal(t, "Old!Secret9", record["password"], "failed logins must not touch the record")
}

// --- Authenticate / Logout Tests ---

func TestAuthenticate_RefreshesActivity(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	result, err := f.svc.Register(ctx, "a@b.com", "Str0ng!Pass", "Alice", "Acme")
	require.NoError(t, err)

	f.clock.Advance(23 * time.Hour)

	identity, err := f.svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, identity.UserID)
	assert.Equal(t, "a@b.com", identity.Email)
	assert.Equal(t, "Acme", identity.Company)
	assert.Equal(t, result.Session.ID, identity.SessionID)

	// The check above refreshed the window; 23 more hours still pass.
	f.clock.Advance(23 * time.Hour)
	_, err = f.svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
}

func TestAuthenticate_ActiveSessionOutlivesTokenAge(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	// A session logged in 25h ago but touched just now: the sliding window
	// says valid, and the token's age must not override that.
	issued := f.clock.Now().Add(-25 * time.Hour)
	session := &Session{
		ID:           "44444444444444444444444444444444",
		UserID:       "55555555555555555555555555555555",
		CreatedAt:    issued,
		LastActivity: f.clock.Now(),
	}
	require.True(t, session.Valid(f.clock.Now()))
	require.NoError(t, f.sessions.Save(ctx, session))
	require.NoError(t, f.users.Create(ctx, &User{
		ID:        session.UserID,
		Email:     "steady@b.com",
		Name:      "Steady",
		CreatedAt: issued,
	}))

	token, err := GenerateToken(session.UserID, session.ID, testSecret, issued)
	require.NoError(t, err)

	identity, err := f.svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, identity.UserID)
	assert.Equal(t, "steady@b.com", identity.Email)
}

func TestAuthenticate_ExpiredSessionIsDeleted(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	result, err := f.svc.Register(ctx, "a@b.com", "Str0ng!Pass", "Alice", "")
	require.NoError(t, err)

	f.clock.Advance(SessionTTL + time.Minute)

	_, err = f.svc.Authenticate(ctx, result.Token)
	require.ErrorIs(t, err, ErrSessionInvalid)

	_, err = f.sessions.Get(ctx, result.Session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound, "expiry detection clears the stored session")
}

func TestAuthenticate_GarbageToken(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestAuthenticate_TokenFromForeignSecret(t *testing.T) {
	f := newServiceFixture(t)

	token, err := GenerateToken("user-1", "sess-1", []byte("attacker-secret"), f.clock.Now())
	require.NoError(t, err)

	_, err = f.svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestLogout_DeletesSession(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	result, err := f.svc.Register(ctx, "a@b.com", "Str0ng!Pass", "Alice", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, result.Session.ID))

	_, err = f.svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

// --- Repository Tests ---

func TestKVUserRepository_CreateEnforcesUniqueEmail(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	u := User{ID: "id-1", Email: "a@b.com", Name: "Alice", CreatedAt: f.clock.Now()}
	require.NoError(t, f.users.Create(ctx, &u))

	dup := User{ID: "id-2", Email: "a@b.com", Name: "Copy", CreatedAt: f.clock.Now()}
	assert.ErrorIs(t, f.users.Create(ctx, &dup), ErrEmailTaken)
}

func TestKVUserRepository_UpdateMissing(t *testing.T) {
	f := newServiceFixture(t)

	err := f.users.Update(context.Background(), &User{ID: "ghost"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestKVSessionRepository_ListSkipsForeignKeys(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	s1, err := NewSession("user-1", f.clock.Now())
	require.NoError(t, err)
	require.NoError(t, f.sessions.Save(ctx, s1))

	// An unrelated key sharing the prefix space must not break listing.
	require.NoError(t, f.store.SetRaw(ctx, testPrefix+"_users", []byte(`[]`)))

	sessions, err := f.sessions.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, s1.ID, sessions[0].ID)

	require.NoError(t, f.sessions.Delete(ctx, s1.ID))
	sessions, err = f.sessions.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestInvalidCredentialsError_Messages(t *testing.T) {
	tests := []struct {
		remaining int
		want      string
	}{
		{-1, "Invalid email or password."},
		{2, "Invalid email or password. 2 attempts remaining before temporary lockout."},
		{1, "Invalid email or password. 1 attempt remaining before temporary lockout."},
		{0, "Invalid email or password. Account temporarily locked due to too many failed attempts."},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("remaining_%d", tt.remaining), func(t *testing.T) {
			err := &InvalidCredentialsError{Remaining: tt.remaining}
			assert.Equal(t, tt.want, err.Error())
		})
	}
}
