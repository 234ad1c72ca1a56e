package hand

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ihou-ev/10cardstad/stud/card"
)

var (
	ErrCardCount     = errors.New("hand: wrong number of cards")
	ErrDuplicateCard = errors.New("hand: duplicate card")
)

type Category uint8

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

var categoryNames = map[Category]string{
	HighCard:      "High Card",
	OnePair:       "One Pair",
	TwoPair:       "Two Pair",
	ThreeOfAKind:  "Three of a Kind",
	Straight:      "Straight",
	Flush:         "Flush",
	FullHouse:     "Full House",
	FourOfAKind:   "Four of a Kind",
	StraightFlush: "Straight Flush",
}

func (c Category) String() string {
	return categoryNames[c]
}

// Strength orders hands exactly: index 0 is the category, the rest are the
// kicker ranks most significant first, zero padded.
type Strength [6]uint8

func (s Strength) Compare(o Strength) int {
	for i := range s {
		if s[i] != o[i] {
			if s[i] < o[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

type Result struct {
	Category Category    `json:"category"`
	Cards    []card.Card `json:"cards"`
	Kickers  []card.Rank `json:"kickers"`
	Strength Strength    `json:"strength"`
}

func (r Result) String() string {
	ranks := make([]string, 0, len(r.Kickers))
	for _, k := range r.Kickers {
		ranks = append(ranks, k.String())
	}
	return fmt.Sprintf("%s (%s)", r.Category, strings.Join(ranks, " "))
}

func Compare(a, b Result) int {
	return a.Strength.Compare(b.Strength)
}

func newResult(category Category, cards []card.Card, kickers []card.Rank) Result {
	r := Result{
		Category: category,
		Cards:    append([]card.Card(nil), cards...),
		Kickers:  kickers,
	}
	r.Strength[0] = uint8(category)
	for i, k := range kickers {
		r.Strength[i+1] = uint8(k)
	}
	return r
}

type group struct {
	rank  card.Rank
	count int
}

// groupRanks returns rank groups ordered by count then rank, both descending.
func groupRanks(cards []card.Card) []group {
	counts := map[card.Rank]int{}
	for _, c := range cards {
		counts[c.Rank]++
	}
	groups := make([]group, 0, len(counts))
	for rank, count := range counts {
		groups = append(groups, group{rank: rank, count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})
	return groups
}

func groupKickers(groups []group) []card.Rank {
	kickers := make([]card.Rank, len(groups))
	for i, g := range groups {
		kickers[i] = g.rank
	}
	return kickers
}

// classifyGroups ranks a hand by pairing structure alone.
func classifyGroups(groups []group) Category {
	if len(groups) == 0 {
		return HighCard
	}
	switch groups[0].count {
	case 4:
		return FourOfAKind
	case 3:
		if len(groups) > 1 && groups[1].count >= 2 {
			return FullHouse
		}
		return ThreeOfAKind
	case 2:
		if len(groups) > 1 && groups[1].count == 2 {
			return TwoPair
		}
		return OnePair
	}
	return HighCard
}

// straightHigh returns the top rank of a five card straight, 5 for the wheel, or 0.
func straightHigh(groups []group) card.Rank {
	if len(groups) != 5 {
		return 0
	}
	high, low := groups[0].rank, groups[4].rank
	if high-low == 4 {
		return high
	}
	if high == card.Ace && groups[1].rank == 5 {
		return 5
	}
	return 0
}

func isFlush(cards []card.Card) bool {
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			return false
		}
	}
	return true
}

// Evaluate5 classifies exactly five cards.
func Evaluate5(cards []card.Card) (Result, error) {
	if len(cards) != 5 {
		return Result{}, fmt.Errorf("%w: evaluate5 got %d", ErrCardCount, len(cards))
	}
	return evaluate5(cards), nil
}

func evaluate5(cards []card.Card) Result {
	groups := groupRanks(cards)
	flush := isFlush(cards)
	high := straightHigh(groups)
	switch {
	case flush && high > 0:
		return newResult(StraightFlush, cards, []card.Rank{high})
	case flush:
		return newResult(Flush, cards, groupKickers(groups))
	case high > 0:
		return newResult(Straight, cards, []card.Rank{high})
	}
	return newResult(classifyGroups(groups), cards, groupKickers(groups))
}

// FindBest returns the strongest five card subset of 5..10 distinct cards.
func FindBest(cards []card.Card) (Result, error) {
	if len(cards) < 5 || len(cards) > 10 {
		return Result{}, fmt.Errorf("%w: find best got %d", ErrCardCount, len(cards))
	}
	seen := map[int]bool{}
	for _, c := range cards {
		if seen[c.ID] {
			return Result{}, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen[c.ID] = true
	}
	return best(cards), nil
}

// Best never fails. Under five cards only pairing structure counts, so a
// partially revealed hand can still be ranked against others.
func Best(cards []card.Card) Result {
	if len(cards) < 5 {
		groups := groupRanks(cards)
		return newResult(classifyGroups(groups), cards, groupKickers(groups))
	}
	return best(cards)
}

func best(cards []card.Card) Result {
	if len(cards) == 5 {
		return evaluate5(cards)
	}
	var (
		top   Result
		found bool
		buf   = make([]card.Card, 5)
	)
	n := len(cards)
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						buf[0], buf[1], buf[2], buf[3], buf[4] = cards[a], cards[b], cards[c], cards[d], cards[e]
						r := evaluate5(buf)
						if !found || Compare(r, top) > 0 {
							top, found = r, true
						}
					}
				}
			}
		}
	}
	return top
}
