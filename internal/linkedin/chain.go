package linkedin

import (
	"context"
	"log"

	"linkbot/internal/metrics"
)

// ChainState tracks where the posting chain ended up. The chain moves
// NotAttempted -> Trying -> Succeeded or ExhaustedFailed and never runs a
// later strategy after one succeeds.
type ChainState int

const (
	NotAttempted ChainState = iota
	Trying
	Succeeded
	ExhaustedFailed
)

func (s ChainState) String() string {
	switch s {
	case NotAttempted:
		return "not_attempted"
	case Trying:
		return "trying"
	case Succeeded:
		return "succeeded"
	case ExhaustedFailed:
		return "exhausted_failed"
	default:
		return "unknown"
	}
}

// Chain runs posting strategies in a fixed order until one succeeds.
// It never writes fallback files; that is the caller's decision once the
// chain reports ExhaustedFailed.
type Chain struct {
	strategies []Strategy
	state      ChainState
}

// NewChain builds the default order: shares API, UGC with resolved author,
// UGC with the member placeholder, then the interactive browser when one
// is configured.
func NewChain(client *Client, browser Strategy) *Chain {
	strategies := []Strategy{
		&shareStrategy{client: client},
		&ugcStrategy{client: client},
		&ugcMemberStrategy{client: client},
	}
	if browser != nil {
		strategies = append(strategies, browser)
	}
	return &Chain{strategies: strategies, state: NotAttempted}
}

// NewChainWithStrategies exists for tests and custom orderings.
func NewChainWithStrategies(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, state: NotAttempted}
}

func (c *Chain) State() ChainState { return c.state }

// Run attempts each strategy in order. Auth failures (401/403) advance the
// chain like any other failure; a hint is logged because they usually mean
// the token is missing the w_member_social scope.
func (c *Chain) Run(ctx context.Context, content PostContent) (ChainState, []AttemptResult) {
	c.state = Trying
	results := make([]AttemptResult, 0, len(c.strategies))

	for _, strategy := range c.strategies {
		log.Printf("Posting via %s", strategy.Name())
		metrics.Global.IncrementPostAttempts()

		result := strategy.Attempt(ctx, content)
		results = append(results, result)

		if result.Succeeded {
			log.Printf("Posted via %s (status %d)", strategy.Name(), result.HTTPStatus)
			c.state = Succeeded
			metrics.Global.IncrementPostsPublished()
			return c.state, results
		}

		if result.HTTPStatus == 401 || result.HTTPStatus == 403 {
			log.Printf("%s rejected with %d, token likely lacks w_member_social scope", strategy.Name(), result.HTTPStatus)
		} else if result.HTTPStatus != 0 {
			log.Printf("%s failed with %d: %s", strategy.Name(), result.HTTPStatus, result.ErrorDetail)
		} else {
			log.Printf("%s failed: %s", strategy.Name(), result.ErrorDetail)
		}
	}

	c.state = ExhaustedFailed
	return c.state, results
}
