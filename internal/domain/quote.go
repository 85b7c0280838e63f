package domain

import (
	"errors"
	"math/rand/v2"
)

// ErrEmptyQuoteBank is returned when a quote bank is created without quotes.
var ErrEmptyQuoteBank = errors.New("quote bank is empty")

// DefaultQuotes is the quote set shipped with the job.
var DefaultQuotes = []string{
	"The pessimist sees only the tunnel; the optimist sees the light at the end of the tunnel; the realist sees the tunnel and the light – and the next tunnel.",
	"The light at the end of the tunnel is not an illusion. The tunnel is.",
	"Moonlight drowns out all but the brightest stars.",
	"We can easily forgive a child who is afraid of the dark; the real tragedy of life is when men are afraid of the light.",
	"In order for the light to shine so brightly, the darkness must be present.",
	"It’s not easy to be Light when you’ve been Dark. It’s almost too much to ask anyone.",
	"Darkness will always try to extinguish the light. The light will always try to repress the darkness.",
	"our path is illuminated by the light, yet darkness lets the stars shine bright.",
	"When the Sun of compassion arises darkness evaporates and the singing birds come from nowhere.",
	"How far that little candle throws his beams! So shines a good deed in a weary world",
	"There is no darkness so dense, so menacing, or so difficult that it cannot be overcome by light",
	"I warn you, the trip will not be easy. Once you choose to walk in the light, your path will lead you places you do not want to go",
	"For a man who walks in the light, to stay humble is not to walk in the dark; you don’t need to project yourself to be thought an honest man",
	"The path of light is the quest for knowledge.",
	"People are like stained-glass windows. They sparkle and shine when the sun is out, but when the darkness sets in, their true beauty is revealed only if there is a light from within.",
	"At times our own light goes out and is rekindled by a spark from another person. Each of us has cause to think with deep gratitude of those who have lighted the flame within us.",
}

// QuoteBank is an immutable set of quotes with uniform random selection.
type QuoteBank struct {
	quotes []string
}

// NewQuoteBank copies quotes into a new bank.
func NewQuoteBank(quotes []string) (*QuoteBank, error) {
	if len(quotes) == 0 {
		return nil, ErrEmptyQuoteBank
	}

	cp := make([]string, len(quotes))
	copy(cp, quotes)

	return &QuoteBank{quotes: cp}, nil
}

// Len returns the number of quotes.
func (q *QuoteBank) Len() int {
	return len(q.quotes)
}

// At returns the quote at index i.
func (q *QuoteBank) At(i int) string {
	return q.quotes[i]
}

// Pick selects one quote uniformly using r. A nil r uses the global source.
func (q *QuoteBank) Pick(r *rand.Rand) string {
	if r == nil {
		return q.quotes[rand.IntN(len(q.quotes))] //nolint:gosec // quote selection is not security sensitive
	}

	return q.quotes[r.IntN(len(q.quotes))]
}
