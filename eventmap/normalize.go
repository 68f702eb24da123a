package eventmap

import (
	"context"
	"strings"
	"time"

	account "github.com/goliatone/go-account"
)

// MetadataKeyEmail stores the obfuscated account email for display.
const MetadataKeyEmail = "email"

const (
	defaultChannel    = "account"
	defaultObjectType = "account"
	defaultActorID    = "system"
)

// Normalized is a transport-agnostic activity shape for downstream systems.
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization behavior.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel          string
	objectType       string
	actorFallback    string
	objectIDResolver func(account.Event) string
}

// Normalize converts an account.Event into a generic normalized shape.
func Normalize(event account.Event, opts ...Option) Normalized {
	options := defaultNormalizeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	actorID := strings.TrimSpace(options.actorFallback)
	if event.Account != nil {
		actorID = event.Account.ID.String()
	}

	objectID := resolveObjectID(event, options.objectIDResolver)
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	return Normalized{
		ActorID:    actorID,
		Verb:       string(event.Type),
		ObjectType: strings.TrimSpace(options.objectType),
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(options.channel),
		Metadata:   normalizeMetadata(event),
		OccurredAt: occurredAt,
	}
}

// Sink adapts Normalize into an account.EventSink feeding fn.
func Sink(fn func(Normalized) error, opts ...Option) account.EventSink {
	return account.EventSinkFunc(func(_ context.Context, event account.Event) error {
		return fn(Normalize(event, opts...))
	})
}

// WithDefaultChannel sets the default channel for normalized records.
func WithDefaultChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithDefaultObjectType sets the default object type for normalized records.
func WithDefaultObjectType(objectType string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.objectType = strings.TrimSpace(objectType)
	}
}

// WithObjectIDResolver overrides object-id extraction from Event.
func WithObjectIDResolver(resolver func(account.Event) string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.objectIDResolver = resolver
	}
}

// WithActorFallback sets the actor-id fallback used for anonymous events.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

func defaultNormalizeOptions() normalizeOptions {
	return normalizeOptions{
		channel:       defaultChannel,
		objectType:    defaultObjectType,
		actorFallback: defaultActorID,
	}
}

func resolveObjectID(event account.Event, resolver func(account.Event) string) string {
	if resolver != nil {
		return strings.TrimSpace(resolver(event))
	}
	if event.Account == nil {
		return ""
	}
	return event.Account.ID.String()
}

func normalizeMetadata(event account.Event) map[string]any {
	metadata := cloneMap(event.Metadata)

	if event.Account != nil && event.Account.Email != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		if _, exists := metadata[MetadataKeyEmail]; !exists {
			metadata[MetadataKeyEmail] = event.Account.EmailSecure()
		}
	}

	return metadata
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
