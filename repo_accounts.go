package account

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TrackFailedLoginSQL increments the failure counter and engages the lock
// once the counter reaches the threshold, in a single statement so two
// concurrent failures never lose an increment. Engaging the lock resets the
// counter, matching Account.Lock. Placeholders: threshold, threshold,
// locked_until, updated_at, now, id.
var TrackFailedLoginSQL = `UPDATE "accounts" AS "acc"
SET
	"failed_logins" = CASE
		WHEN "acc"."failed_logins" + 1 >= ? THEN 0
		ELSE "acc"."failed_logins" + 1
	END,
	"locked_until" = CASE
		WHEN "acc"."failed_logins" + 1 >= ? THEN ?
		ELSE "acc"."locked_until"
	END,
	"updated_at" = ?
WHERE
	"acc"."deleted_at" IS NULL
AND ("acc"."locked_until" IS NULL OR "acc"."locked_until" <= ?)
AND (
	"acc"."id" = ?
);`

// TrackSuccessfulLoginSQL resets the counter and lock and stamps the login
// time. Done in raw SQL so the zero counter and the NULL lock actually
// persist; a model update would skip them as zero values.
var TrackSuccessfulLoginSQL = `UPDATE "accounts" AS "acc"
SET
	"loggedin_at" = ?,
	"locked_until" = NULL,
	"failed_logins" = 0,
	"updated_at" = ?
WHERE
	"acc"."deleted_at" IS NULL
AND (
	"acc"."id" = ?
);`

// AccountsRepository is the bun-backed persistence surface. It satisfies
// the Accounts contract the Service consumes and adds Tx variants for
// callers composing larger transactions.
type AccountsRepository interface {
	Accounts

	FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)
	FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Account, error)
	FindByLinkTx(ctx context.Context, tx bun.IDB, kind LinkKind, link string) (*Account, error)
	FindBySocialTx(ctx context.Context, tx bun.IDB, provider, externalID string) (*Account, error)
	CreateTx(ctx context.Context, tx bun.IDB, acc *Account) (*Account, error)
	SaveTx(ctx context.Context, tx bun.IDB, acc *Account) (*Account, error)
	DeleteTx(ctx context.Context, tx bun.IDB, acc *Account) error
	TrackFailedLoginTx(ctx context.Context, tx bun.IDB, acc *Account, threshold int, lockFor time.Duration) error
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, acc *Account) error
	StoreTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string) error
	ClearTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
	LinkSocialTx(ctx context.Context, tx bun.IDB, accountID uuid.UUID, provider, externalID string) error
	UnlinkSocialTx(ctx context.Context, tx bun.IDB, accountID uuid.UUID, provider string) error
}

type accounts struct {
	repo  repository.Repository[*Account]
	db    *bun.DB
	nowFn func() time.Time
}

var _ Accounts = (*accounts)(nil)
var _ AccountsRepository = (*accounts)(nil)

// NewAccountsRepository creates the bun-backed Accounts store.
func NewAccountsRepository(db *bun.DB) AccountsRepository {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{
		repo:  repo,
		db:    db,
		nowFn: time.Now,
	}
}

func (a *accounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return a.FindByEmailTx(ctx, a.db, email)
}

func (a *accounts) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where("LOWER(?TableAlias.email) = LOWER(?)", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": ObfuscateEmail(email),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return a.FindByIDTx(ctx, a.db, id)
}

func (a *accounts) FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) FindByLink(ctx context.Context, kind LinkKind, link string) (*Account, error) {
	return a.FindByLinkTx(ctx, a.db, kind, link)
}

func (a *accounts) FindByLinkTx(ctx context.Context, tx bun.IDB, kind LinkKind, link string) (*Account, error) {
	if link == "" {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"kind": string(kind),
			})
	}

	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", string(kind)), link).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"kind": string(kind),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) FindBySocial(ctx context.Context, provider, externalID string) (*Account, error) {
	return a.FindBySocialTx(ctx, a.db, provider, externalID)
}

func (a *accounts) FindBySocialTx(ctx context.Context, tx bun.IDB, provider, externalID string) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Join(`JOIN "social_accounts" AS "soc" ON "soc"."account_id" = ?TableAlias."id"`).
		Where(`"soc"."provider" = ?`, provider).
		Where(`"soc"."external_id" = ?`, externalID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"provider": provider,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) Create(ctx context.Context, acc *Account) (*Account, error) {
	return a.CreateTx(ctx, a.db, acc)
}

func (a *accounts) CreateTx(ctx context.Context, tx bun.IDB, acc *Account) (*Account, error) {
	prepareAccountDefaults(acc, a.nowFn())
	return a.repo.CreateTx(ctx, tx, acc)
}

// Save persists the full account row. Updates write every column so cleared
// links, promoted pending emails and reset counters actually land in the
// store instead of being skipped as zero values.
func (a *accounts) Save(ctx context.Context, acc *Account) (*Account, error) {
	return a.SaveTx(ctx, a.db, acc)
}

func (a *accounts) SaveTx(ctx context.Context, tx bun.IDB, acc *Account) (*Account, error) {
	if acc.ID == uuid.Nil {
		return a.CreateTx(ctx, tx, acc)
	}

	now := a.nowFn()
	acc.UpdatedAt = &now

	res, err := tx.NewUpdate().
		Model(acc).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": acc.ID.String(),
			})
	}

	return acc, nil
}

func (a *accounts) Delete(ctx context.Context, acc *Account) error {
	return a.DeleteTx(ctx, a.db, acc)
}

func (a *accounts) DeleteTx(ctx context.Context, tx bun.IDB, acc *Account) error {
	res, err := tx.NewDelete().
		Model(acc).
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": acc.ID.String(),
			})
	}

	return nil
}

func (a *accounts) TrackFailedLogin(ctx context.Context, acc *Account, threshold int, lockFor time.Duration) error {
	return a.TrackFailedLoginTx(ctx, a.db, acc, threshold, lockFor)
}

func (a *accounts) TrackFailedLoginTx(ctx context.Context, tx bun.IDB, acc *Account, threshold int, lockFor time.Duration) error {
	now := a.nowFn()
	lockedUntil := now.Add(lockFor)

	_, err := tx.NewRaw(
		TrackFailedLoginSQL,
		threshold, threshold, lockedUntil, now, now, acc.ID,
	).Exec(ctx)
	if err != nil {
		return err
	}

	acc.RecordFailedLogin(now, threshold, lockFor)
	return nil
}

func (a *accounts) TrackSuccessfulLogin(ctx context.Context, acc *Account) error {
	return a.TrackSuccessfulLoginTx(ctx, a.db, acc)
}

func (a *accounts) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, acc *Account) error {
	now := a.nowFn()

	_, err := tx.NewRaw(TrackSuccessfulLoginSQL, now, now, acc.ID).Exec(ctx)
	if err != nil {
		return err
	}

	acc.RecordSuccessfulLogin(now)
	return nil
}

func (a *accounts) StoreToken(ctx context.Context, id uuid.UUID, token string) error {
	return a.StoreTokenTx(ctx, a.db, id, token)
}

func (a *accounts) StoreTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string) error {
	res, err := tx.NewUpdate().
		Model((*Account)(nil)).
		Set("current_token = ?", token).
		Set("updated_at = ?", a.nowFn()).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (a *accounts) ClearToken(ctx context.Context, id uuid.UUID) error {
	return a.ClearTokenTx(ctx, a.db, id)
}

func (a *accounts) ClearTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewUpdate().
		Model((*Account)(nil)).
		Set("current_token = NULL").
		Set("updated_at = ?", a.nowFn()).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	return err
}

func (a *accounts) LinkSocial(ctx context.Context, accountID uuid.UUID, provider, externalID string) error {
	return a.LinkSocialTx(ctx, a.db, accountID, provider, externalID)
}

func (a *accounts) LinkSocialTx(ctx context.Context, tx bun.IDB, accountID uuid.UUID, provider, externalID string) error {
	if !IsKnownProvider(provider) {
		return UnknownSocialProviderError(provider)
	}

	now := a.nowFn()
	record := &SocialAccount{
		ID:         uuid.New(),
		AccountID:  accountID,
		Provider:   provider,
		ExternalID: externalID,
		CreatedAt:  &now,
	}

	_, err := tx.NewInsert().
		Model(record).
		On("CONFLICT (account_id, provider) DO UPDATE").
		Set("external_id = EXCLUDED.external_id").
		Exec(ctx)

	return err
}

func (a *accounts) UnlinkSocial(ctx context.Context, accountID uuid.UUID, provider string) error {
	return a.UnlinkSocialTx(ctx, a.db, accountID, provider)
}

func (a *accounts) UnlinkSocialTx(ctx context.Context, tx bun.IDB, accountID uuid.UUID, provider string) error {
	_, err := tx.NewDelete().
		Model((*SocialAccount)(nil)).
		Where(`?TableAlias."account_id" = ?`, accountID).
		Where(`?TableAlias."provider" = ?`, provider).
		Exec(ctx)

	return err
}

func prepareAccountDefaults(record *Account, now time.Time) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
	record.UpdatedAt = &now
}
