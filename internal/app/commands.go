package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"whatsapp_reviews/internal/adapters/observability"
	"whatsapp_reviews/internal/conversation"
	"whatsapp_reviews/internal/domain"
)

// ConversationService drives the review dialogue for inbound messages and
// performs the resulting side effects.
type ConversationService struct {
	reg      *conversation.Registry
	store    domain.ReviewStore
	notifier domain.Notifier
	dedup    domain.Deduper
	listing  ListingInvalidator
	dedupTTL time.Duration
	now      func() time.Time
}

type Option func(*ConversationService)

// WithDeduper skips redelivered messages whose SID was already claimed.
func WithDeduper(d domain.Deduper, ttl time.Duration) Option {
	return func(s *ConversationService) { s.dedup, s.dedupTTL = d, ttl }
}

// ListingInvalidator is told after each saved review; QueryService
// implements it.
type ListingInvalidator interface {
	Invalidate(ctx context.Context) error
}

// WithListing invalidates the cached review listing after each saved review.
func WithListing(l ListingInvalidator) Option {
	return func(s *ConversationService) { s.listing = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *ConversationService) { s.now = now }
}

func NewConversationService(reg *conversation.Registry, store domain.ReviewStore, n domain.Notifier, opts ...Option) *ConversationService {
	s := &ConversationService{reg: reg, store: store, notifier: n, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// HandleInbound processes one delivery. Every failure is logged and turned
// into a notice to the sender; nothing is returned to the transport.
func (s *ConversationService) HandleInbound(ctx context.Context, msg domain.InboundMessage) {
	logger := log.With().Str("sender", msg.From).Str("message_sid", msg.SID).Logger()

	if s.dedup != nil && msg.SID != "" {
		fresh, err := s.dedup.Claim(ctx, msg.SID, s.dedupTTL)
		switch {
		case err != nil:
			logger.Warn().Err(err).Msg("dedup claim failed; processing anyway")
		case !fresh:
			observability.WebhookDuplicates.Inc()
			logger.Info().Msg("duplicate delivery skipped")
			return
		}
	}

	var (
		res  conversation.Result
		from conversation.Step
	)
	ver, err := s.reg.Update(msg.From, func(cur conversation.State) (conversation.State, error) {
		from = conversation.StepOf(cur)
		r, err := conversation.Advance(cur, msg.Body)
		if err != nil {
			return nil, err
		}
		res = r
		return r.Next, nil
	})
	if err != nil {
		logger.Error().Err(err).Str("step", string(from)).Msg("conversation in invalid state; resetting")
		s.reg.Reset(msg.From)
		s.notify(ctx, logger, msg.From, conversation.MsgGeneric)
		return
	}
	observability.ObserveTransition(string(from), string(res.Next.Step()))

	if res.Review == nil {
		s.notify(ctx, logger, msg.From, res.Reply)
		return
	}
	s.complete(ctx, logger, msg.From, ver, res)
}

func (s *ConversationService) complete(ctx context.Context, logger zerolog.Logger, sender string, ver uint64, res conversation.Result) {
	rv := *res.Review
	rv.ContactNumber = sender
	rv.CreatedAt = s.now().UTC()

	err := s.store.Insert(ctx, &rv)
	observability.ObserveReviewSaved(err)
	if err != nil {
		logger.Error().Err(err).Str("step", string(conversation.StepAwaitingReview)).Msg("save review failed")
		retry := conversation.AwaitingReview{Product: rv.ProductName, Name: rv.UserName}
		if !s.reg.RestoreIf(sender, ver, retry) {
			logger.Warn().Msg("conversation moved on during save; not restoring")
		}
		s.notify(ctx, logger, sender, conversation.MsgSaveFailed)
		return
	}

	s.reg.ResetIf(sender, ver)
	if s.listing != nil {
		if err := s.listing.Invalidate(ctx); err != nil {
			logger.Warn().Err(err).Msg("reviews cache invalidation failed")
		}
	}
	logger.Info().Int64("review_id", rv.ID).Str("product", rv.ProductName).Msg("review saved")
	s.notify(ctx, logger, sender, res.Reply)
}

// notify sends text and only logs on failure; state is never rolled back.
func (s *ConversationService) notify(ctx context.Context, logger zerolog.Logger, to, text string) {
	if err := s.notifier.Send(ctx, to, text); err != nil {
		observability.ObserveNotifyFailure(err)
		ev := logger.Warn().Err(err)
		if errors.Is(err, context.DeadlineExceeded) {
			ev = ev.Bool("timeout", true)
		}
		ev.Msg("send message failed")
	}
}
