package account_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	account "github.com/goliatone/go-account"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	sqliteCreateAccounts = `CREATE TABLE accounts (
    id TEXT NOT NULL PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    email_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
    pending_email TEXT,
    email_link TEXT,
    email_link_expires_at TIMESTAMP NULL,
    password_hash TEXT NOT NULL DEFAULT '',
    password_link TEXT,
    password_link_expires_at TIMESTAMP NULL,
    failed_logins INTEGER NOT NULL DEFAULT 0,
    locked_until TIMESTAMP NULL,
    current_token TEXT,
    loggedin_at TIMESTAMP NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP,
    deleted_at TIMESTAMP NULL
);`
	sqliteCreateSocialAccounts = `CREATE TABLE social_accounts (
    id TEXT NOT NULL PRIMARY KEY,
    account_id TEXT NOT NULL,
    provider TEXT NOT NULL,
    external_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (account_id) REFERENCES accounts (id) ON DELETE CASCADE,
    CONSTRAINT uq_social_accounts_account_provider UNIQUE (account_id, provider)
);`
)

func setupAccountsRepo(t *testing.T) account.AccountsRepository {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	_, err = bunDB.Exec(sqliteCreateAccounts)
	require.NoError(t, err)
	_, err = bunDB.Exec(sqliteCreateSocialAccounts)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = bunDB.Close()
		_ = db.Close()
	})

	return account.NewAccountsRepository(bunDB)
}

func seedAccount(t *testing.T, repo account.AccountsRepository, email string) *account.Account {
	t.Helper()

	acc := &account.Account{}
	acc.SetEmail(email, time.Now(), 24*time.Hour)

	saved, err := repo.Save(context.Background(), acc)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, saved.ID)
	return saved
}

func TestAccountsRepositorySave(t *testing.T) {
	repo := setupAccountsRepo(t)
	ctx := context.Background()

	t.Run("create assigns id and persists links", func(t *testing.T) {
		acc := seedAccount(t, repo, "pepe.rone@example.com")

		found, err := repo.FindByEmail(ctx, "pepe.rone@example.com")
		require.NoError(t, err)
		assert.Equal(t, acc.ID, found.ID)
		assert.Len(t, found.EmailLink, account.LinkTokenLength)
		assert.False(t, found.EmailConfirmed)
	})

	t.Run("update persists cleared fields", func(t *testing.T) {
		acc := seedAccount(t, repo, "clear.me@example.com")
		acc.ConfirmEmail()
		acc.GeneratePasswordLink(time.Now(), 24*time.Hour)

		_, err := repo.Save(ctx, acc)
		require.NoError(t, err)

		acc.ClearPasswordLink()
		_, err = repo.Save(ctx, acc)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.True(t, found.EmailConfirmed)
		assert.Empty(t, found.PasswordLink)
		assert.Nil(t, found.PasswordLinkExpiresAt)
	})

	t.Run("update of a missing account is not found", func(t *testing.T) {
		ghost := &account.Account{ID: uuid.New(), Email: "ghost@example.com"}
		_, err := repo.Save(ctx, ghost)
		assert.True(t, goerrors.IsNotFound(err))
	})
}

func TestAccountsRepositoryFind(t *testing.T) {
	repo := setupAccountsRepo(t)
	ctx := context.Background()

	acc := seedAccount(t, repo, "finder@example.com")

	t.Run("find by email is case insensitive", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "FINDER@Example.COM")
		require.NoError(t, err)
		assert.Equal(t, acc.ID, found.ID)
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, "nobody@example.com")
		assert.True(t, goerrors.IsNotFound(err))
	})

	t.Run("find by email link", func(t *testing.T) {
		found, err := repo.FindByLink(ctx, account.LinkKindEmail, acc.EmailLink)
		require.NoError(t, err)
		assert.Equal(t, acc.ID, found.ID)
	})

	t.Run("find by password link", func(t *testing.T) {
		acc.GeneratePasswordLink(time.Now(), 24*time.Hour)
		_, err := repo.Save(ctx, acc)
		require.NoError(t, err)

		found, err := repo.FindByLink(ctx, account.LinkKindPassword, acc.PasswordLink)
		require.NoError(t, err)
		assert.Equal(t, acc.ID, found.ID)
	})

	t.Run("unknown or empty link is not found", func(t *testing.T) {
		_, err := repo.FindByLink(ctx, account.LinkKindEmail, "no-such-link")
		assert.True(t, goerrors.IsNotFound(err))

		_, err = repo.FindByLink(ctx, account.LinkKindEmail, "")
		assert.True(t, goerrors.IsNotFound(err))
	})
}

func TestAccountsRepositoryLoginTracking(t *testing.T) {
	repo := setupAccountsRepo(t)
	ctx := context.Background()

	t.Run("failed logins accumulate and lock at threshold", func(t *testing.T) {
		acc := seedAccount(t, repo, "locked.out@example.com")

		for i := 0; i < 2; i++ {
			require.NoError(t, repo.TrackFailedLogin(ctx, acc, 3, 30*time.Minute))
		}

		found, err := repo.FindByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, found.FailedLogins)
		assert.Nil(t, found.LockedUntil)

		require.NoError(t, repo.TrackFailedLogin(ctx, acc, 3, 30*time.Minute))

		found, err = repo.FindByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, found.FailedLogins)
		require.NotNil(t, found.LockedUntil)
		assert.True(t, found.LockedUntil.After(time.Now()))

		// in-memory mirror observed the same transition
		assert.Equal(t, 0, acc.FailedLogins)
		require.NotNil(t, acc.LockedUntil)
	})

	t.Run("successful login resets counter and lock", func(t *testing.T) {
		acc := seedAccount(t, repo, "comeback@example.com")
		require.NoError(t, repo.TrackFailedLogin(ctx, acc, 10, 30*time.Minute))

		require.NoError(t, repo.TrackSuccessfulLogin(ctx, acc))

		found, err := repo.FindByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, found.FailedLogins)
		assert.Nil(t, found.LockedUntil)
		assert.NotNil(t, found.LoggedInAt)
	})
}

func TestAccountsRepositoryTokens(t *testing.T) {
	repo := setupAccountsRepo(t)
	ctx := context.Background()

	acc := seedAccount(t, repo, "token.holder@example.com")

	require.NoError(t, repo.StoreToken(ctx, acc.ID, "session-token"))

	found, err := repo.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "session-token", found.CurrentToken)

	require.NoError(t, repo.ClearToken(ctx, acc.ID))

	found, err = repo.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Empty(t, found.CurrentToken)

	t.Run("storing against a missing account is not found", func(t *testing.T) {
		err := repo.StoreToken(ctx, uuid.New(), "orphan-token")
		assert.True(t, goerrors.IsNotFound(err))
	})
}

func TestAccountsRepositorySocial(t *testing.T) {
	repo := setupAccountsRepo(t)
	ctx := context.Background()

	acc := seedAccount(t, repo, "social.butterfly@example.com")

	require.NoError(t, repo.LinkSocial(ctx, acc.ID, account.ProviderGoogle, "ext-123"))

	found, err := repo.FindBySocial(ctx, account.ProviderGoogle, "ext-123")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, found.ID)

	t.Run("relinking replaces the external id", func(t *testing.T) {
		require.NoError(t, repo.LinkSocial(ctx, acc.ID, account.ProviderGoogle, "ext-456"))

		found, err := repo.FindBySocial(ctx, account.ProviderGoogle, "ext-456")
		require.NoError(t, err)
		assert.Equal(t, acc.ID, found.ID)

		_, err = repo.FindBySocial(ctx, account.ProviderGoogle, "ext-123")
		assert.True(t, goerrors.IsNotFound(err))
	})

	t.Run("unknown provider is rejected", func(t *testing.T) {
		err := repo.LinkSocial(ctx, acc.ID, "myspace", "ext-789")
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, account.TextCodeUnknownProvider, richErr.TextCode)
	})

	t.Run("unlink removes the identity", func(t *testing.T) {
		require.NoError(t, repo.UnlinkSocial(ctx, acc.ID, account.ProviderGoogle))

		_, err := repo.FindBySocial(ctx, account.ProviderGoogle, "ext-456")
		assert.True(t, goerrors.IsNotFound(err))
	})
}

func TestAccountsRepositoryDelete(t *testing.T) {
	repo := setupAccountsRepo(t)
	ctx := context.Background()

	acc := seedAccount(t, repo, "goner@example.com")

	require.NoError(t, repo.Delete(ctx, acc))

	_, err := repo.FindByEmail(ctx, "goner@example.com")
	assert.True(t, goerrors.IsNotFound(err))
}
