package conversation

import (
	"fmt"
	"strings"

	"whatsapp_reviews/internal/domain"
)

const (
	MsgAskProduct = "Hi, which product do you want to review?"
	MsgAskName    = "Nice! What's your name?"
	MsgSaveFailed = "Sorry, we couldn't save your review. Please send your review again."
	MsgGeneric    = "An unexpected error occurred. Please try starting a new review."
)

func msgAskReview(name string) string {
	return fmt.Sprintf("Great %s! Send your review now...", name)
}

func msgSaved(name, product string) string {
	return fmt.Sprintf("Thanks %s! Your review for %s has been saved.", name, product)
}

// Result is the outcome of one Advance.
//
// When Review is non-nil the conversation is complete: Reply is the
// confirmation to send once the review has been persisted, and Review carries
// the collected answers (ContactNumber and CreatedAt are left to the caller).
type Result struct {
	Next   State
	Reply  string
	Review *domain.Review
}

// Advance moves cur by one inbound text. It has no side effects. Text is
// trimmed and otherwise taken verbatim, including the empty string.
func Advance(cur State, text string) (Result, error) {
	text = strings.TrimSpace(text)

	switch s := cur.(type) {
	case AwaitingStart:
		return Result{Next: AwaitingProduct{}, Reply: MsgAskProduct}, nil

	case AwaitingProduct:
		return Result{Next: AwaitingName{Product: text}, Reply: MsgAskName}, nil

	case AwaitingName:
		return Result{
			Next:  AwaitingReview{Product: s.Product, Name: text},
			Reply: msgAskReview(text),
		}, nil

	case AwaitingReview:
		return Result{
			Next:  AwaitingStart{},
			Reply: msgSaved(s.Name, s.Product),
			Review: &domain.Review{
				ProductName: s.Product,
				UserName:    s.Name,
				ReviewText:  text,
			},
		}, nil

	default:
		return Result{}, fmt.Errorf("%w: %T", domain.ErrInvalidState, cur)
	}
}
