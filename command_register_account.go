package account

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type RegisterAccountMessage struct {
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	Password   string `json:"password" doc:"Optional initial password."`
	OnResponse func(resp *RegisterAccountResponse)
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

type RegisterAccountResponse struct {
	Account *Account
	Success bool
}

type RegisterAccountHandler struct {
	service *Service
}

func NewRegisterAccountHandler(service *Service) *RegisterAccountHandler {
	return &RegisterAccountHandler{service: service}
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	acc, err := h.service.Register(ctx, RegisterPayload{
		Email:    event.Email,
		Password: event.Password,
	})
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account registration failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&RegisterAccountResponse{
			Account: acc,
			Success: true,
		})
	}

	return nil
}
