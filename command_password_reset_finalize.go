package account

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type FinalizePasswordResetMessage struct {
	Link       string `json:"link" doc:"Password reset link token."`
	Password   string `json:"password" doc:"New password."`
	OnResponse func(resp *FinalizePasswordResetResponse)
}

func (e FinalizePasswordResetMessage) Type() string { return "account.password_reset_finalize" }

type FinalizePasswordResetResponse struct {
	Reset   bool
	Success bool
}

type FinalizePasswordResetHandler struct {
	service *Service
}

func NewFinalizePasswordResetHandler(service *Service) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{service: service}
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	reset, err := h.service.ResetPasswordWithLink(ctx, event.Link, event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password reset failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&FinalizePasswordResetResponse{
			Reset:   reset,
			Success: true,
		})
	}

	return nil
}
