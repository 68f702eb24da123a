package account_test

import (
	"context"
	"testing"

	account "github.com/goliatone/go-account"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountContext(t *testing.T) {
	acc := &account.Account{ID: uuid.New(), Email: "ctx@example.com"}

	ctx := account.WithContext(context.Background(), acc)

	found, ok := account.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, acc.ID, found.ID)

	_, ok = account.FromContext(context.Background())
	assert.False(t, ok)
}

func TestClaimsContext(t *testing.T) {
	claims := &account.SessionClaims{AccountID: uuid.New().String()}

	ctx := account.WithClaimsContext(context.Background(), claims)

	found, ok := account.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, claims.AccountID, found.AccountID)

	_, ok = account.GetClaims(context.Background())
	assert.False(t, ok)
}
