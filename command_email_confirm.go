package account

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type ConfirmEmailMessage struct {
	Link       string `json:"link" doc:"Email confirmation link token."`
	OnResponse func(resp *ConfirmEmailResponse)
}

func (e ConfirmEmailMessage) Type() string { return "account.email_confirm" }

type ConfirmEmailResponse struct {
	Confirmed bool
	Success   bool
}

type ConfirmEmailHandler struct {
	service *Service
}

func NewConfirmEmailHandler(service *Service) *ConfirmEmailHandler {
	return &ConfirmEmailHandler{service: service}
}

func (h *ConfirmEmailHandler) Execute(ctx context.Context, event ConfirmEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email confirmation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmEmailHandler) execute(ctx context.Context, event ConfirmEmailMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	confirmed, err := h.service.ConfirmEmailWithLink(ctx, event.Link)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "email confirmation failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&ConfirmEmailResponse{
			Confirmed: confirmed,
			Success:   true,
		})
	}

	return nil
}
