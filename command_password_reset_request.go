package account

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type RequestPasswordResetMessage struct {
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	OnResponse func(resp *RequestPasswordResetResponse)
}

func (e RequestPasswordResetMessage) Type() string { return "account.password_reset_request" }

type RequestPasswordResetResponse struct {
	Success bool
}

// RequestPasswordResetHandler grants a reset link for the account behind
// the email. An unknown email still reports success so the command never
// discloses which addresses hold accounts.
type RequestPasswordResetHandler struct {
	store   Accounts
	service *Service
}

func NewRequestPasswordResetHandler(store Accounts, service *Service) *RequestPasswordResetHandler {
	return &RequestPasswordResetHandler{store: store, service: service}
}

func (h *RequestPasswordResetHandler) Execute(ctx context.Context, event RequestPasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset request",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RequestPasswordResetHandler) execute(ctx context.Context, event RequestPasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	acc, err := h.store.FindByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			if event.OnResponse != nil {
				event.OnResponse(&RequestPasswordResetResponse{Success: true})
			}
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password reset")
	}

	if err := h.service.RequestPasswordReset(ctx, acc); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to request password reset")
	}

	if event.OnResponse != nil {
		event.OnResponse(&RequestPasswordResetResponse{Success: true})
	}

	return nil
}
