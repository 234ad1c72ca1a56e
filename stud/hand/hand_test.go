package hand_test

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/ihou-ev/10cardstad/stud/card"
	"github.com/ihou-ev/10cardstad/stud/hand"
	"github.com/paulhankin/poker"
	"github.com/stretchr/testify/require"
)

var suits = map[byte]card.Suit{'s': card.Spade, 'h': card.Heart, 'd': card.Diamond, 'c': card.Club}

var ranks = map[byte]card.Rank{
	'2': 2, '3': 3, '4': 4, '5': 5, '6': 6, '7': 7, '8': 8, '9': 9,
	'T': 10, 'J': card.Jack, 'Q': card.Queen, 'K': card.King, 'A': card.Ace,
}

// parse reads hands like "As Kd Tc 2h 2s". IDs follow the standard deck layout.
func parse(t *testing.T, text string) []card.Card {
	t.Helper()
	cards := make([]card.Card, 0)
	for _, f := range strings.Fields(text) {
		rank, ok := ranks[f[0]]
		require.True(t, ok, f)
		suit, ok := suits[f[1]]
		require.True(t, ok, f)
		cards = append(cards, card.Card{ID: int(suit)*13 + int(rank) - 2, Suit: suit, Rank: rank})
	}
	return cards
}

func eval(t *testing.T, text string) hand.Result {
	t.Helper()
	r, err := hand.Evaluate5(parse(t, text))
	require.NoError(t, err)
	return r
}

func TestEvaluate5(t *testing.T) {
	t.Run("classifies_every_category", func(t *testing.T) {
		cases := []struct {
			cards    string
			category hand.Category
			kickers  []card.Rank
		}{
			{"9h Th Jh Qh Kh", hand.StraightFlush, []card.Rank{card.King}},
			{"7s 7h 7d 7c 2s", hand.FourOfAKind, []card.Rank{7, 2}},
			{"3s 3h 3d 9c 9s", hand.FullHouse, []card.Rank{3, 9}},
			{"2d 7d 9d Jd Kd", hand.Flush, []card.Rank{card.King, card.Jack, 9, 7, 2}},
			{"5c 6d 7h 8s 9c", hand.Straight, []card.Rank{9}},
			{"Qs Qh Qd 4c 8s", hand.ThreeOfAKind, []card.Rank{card.Queen, 8, 4}},
			{"Js Jh 4d 4c As", hand.TwoPair, []card.Rank{card.Jack, 4, card.Ace}},
			{"Ts Th 2d 6c 9s", hand.OnePair, []card.Rank{10, 9, 6, 2}},
			{"As Jh 8d 6c 3s", hand.HighCard, []card.Rank{card.Ace, card.Jack, 8, 6, 3}},
		}
		for _, c := range cases {
			r := eval(t, c.cards)
			require.Equal(t, c.category, r.Category, c.cards)
			require.Equal(t, c.kickers, r.Kickers, c.cards)
			require.Len(t, r.Cards, 5)
		}
	})

	t.Run("higher_category_always_wins", func(t *testing.T) {
		weakQuads := eval(t, "2s 2h 2d 2c 3s")
		bestFlush := eval(t, "Ah Kh Qh Jh 9h")
		require.Equal(t, 1, hand.Compare(weakQuads, bestFlush))

		weakTwoPair := eval(t, "3s 3h 2d 2c 4s")
		bestPair := eval(t, "As Ah Kd Qc Js")
		require.Equal(t, 1, hand.Compare(weakTwoPair, bestPair))
	})

	t.Run("kickers_break_ties_lexicographically", func(t *testing.T) {
		a := eval(t, "Ks Kh 9d 5c 3s")
		b := eval(t, "Kd Kc 9s 5h 2h")
		require.Equal(t, 1, hand.Compare(a, b))
		c := eval(t, "Ks Kh 9d 5c 3s")
		d := eval(t, "Kd Kc 9h 5d 3c")
		require.Equal(t, 0, hand.Compare(c, d))
	})

	t.Run("wheel_is_the_lowest_straight", func(t *testing.T) {
		wheel := eval(t, "As 2h 3d 4c 5s")
		require.Equal(t, hand.Straight, wheel.Category)
		require.Equal(t, []card.Rank{5}, wheel.Kickers)
		sixHigh := eval(t, "2s 3h 4d 5c 6s")
		require.Equal(t, -1, hand.Compare(wheel, sixHigh))
		trips := eval(t, "As Ah Ad Kc Qs")
		require.Equal(t, 1, hand.Compare(wheel, trips))
	})

	t.Run("steel_wheel_is_a_straight_flush", func(t *testing.T) {
		r := eval(t, "Ac 2c 3c 4c 5c")
		require.Equal(t, hand.StraightFlush, r.Category)
		require.Equal(t, []card.Rank{5}, r.Kickers)
	})

	t.Run("ace_does_not_wrap_around", func(t *testing.T) {
		r := eval(t, "Qs Kh Ad 2c 3s")
		require.Equal(t, hand.HighCard, r.Category)
	})

	t.Run("rejects_wrong_card_count", func(t *testing.T) {
		_, err := hand.Evaluate5(parse(t, "As Kh Qd Jc"))
		require.True(t, errors.Is(err, hand.ErrCardCount))
		_, err = hand.Evaluate5(parse(t, "As Kh Qd Jc Ts 9s"))
		require.True(t, errors.Is(err, hand.ErrCardCount))
	})
}

func TestFindBest(t *testing.T) {
	t.Run("picks_the_strongest_subset", func(t *testing.T) {
		r, err := hand.FindBest(parse(t, "2s 7h 7d 7c 9s 9h Kd"))
		require.NoError(t, err)
		require.Equal(t, hand.FullHouse, r.Category)
		require.Equal(t, []card.Rank{7, 9}, r.Kickers)
	})

	t.Run("finds_a_flush_among_ten_cards", func(t *testing.T) {
		r, err := hand.FindBest(parse(t, "2h 5h 8h Jh Kh 3s 3d 3c 9d Ts"))
		require.NoError(t, err)
		require.Equal(t, hand.Flush, r.Category)
	})

	t.Run("five_cards_delegate_to_evaluate5", func(t *testing.T) {
		cards := parse(t, "Js Jh 4d 4c As")
		r, err := hand.FindBest(cards)
		require.NoError(t, err)
		require.Equal(t, eval(t, "Js Jh 4d 4c As"), r)
	})

	t.Run("is_at_least_every_subset", func(t *testing.T) {
		rng := rand.New(rand.NewSource(3))
		for i := 0; i < 200; i++ {
			cards := card.Shuffle(card.NewDeck(), rng)[:7]
			top, err := hand.FindBest(cards)
			require.NoError(t, err)
			subsets(cards, func(five []card.Card) {
				r, err := hand.Evaluate5(five)
				require.NoError(t, err)
				require.GreaterOrEqual(t, hand.Compare(top, r), 0)
			})
		}
	})

	t.Run("rejects_bad_input", func(t *testing.T) {
		_, err := hand.FindBest(parse(t, "As Kh Qd"))
		require.True(t, errors.Is(err, hand.ErrCardCount))
		_, err = hand.FindBest(card.NewDeck()[:11])
		require.True(t, errors.Is(err, hand.ErrCardCount))
		_, err = hand.FindBest(parse(t, "As As Qd Jc Ts 9h"))
		require.True(t, errors.Is(err, hand.ErrDuplicateCard))
	})
}

func TestBest(t *testing.T) {
	t.Run("partial_hands_rank_by_pairs_only", func(t *testing.T) {
		require.Equal(t, hand.HighCard, hand.Best(nil).Category)
		require.Equal(t, hand.OnePair, hand.Best(parse(t, "9s 9h 2d")).Category)
		require.Equal(t, hand.TwoPair, hand.Best(parse(t, "9s 9h 2d 2c")).Category)
		require.Equal(t, hand.ThreeOfAKind, hand.Best(parse(t, "9s 9h 9d 2c")).Category)
		require.Equal(t, hand.FourOfAKind, hand.Best(parse(t, "9s 9h 9d 9c")).Category)
		require.Equal(t, hand.HighCard, hand.Best(parse(t, "2h 3h 4h 5h")).Category)
	})

	t.Run("more_cards_never_rank_lower", func(t *testing.T) {
		three := hand.Best(parse(t, "Ks 4h 2d"))
		five := hand.Best(parse(t, "Ks 4h 2d 7c 8c"))
		require.Equal(t, 1, hand.Compare(five, three))
	})
}

func TestAgreesWithReferenceEvaluator(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 2000; i++ {
		deck := card.Shuffle(card.NewDeck(), rng)
		a, b := deck[:7], deck[7:14]
		ra, err := hand.FindBest(a)
		require.NoError(t, err)
		rb, err := hand.FindBest(b)
		require.NoError(t, err)
		ea, eb := reference(t, a), reference(t, b)
		want := 0
		if ea > eb {
			want = 1
		} else if ea < eb {
			want = -1
		}
		require.Equal(t, want, hand.Compare(ra, rb), "%v vs %v", a, b)
	}
}

func reference(t *testing.T, cards []card.Card) int16 {
	t.Helper()
	refSuits := map[card.Suit]poker.Suit{
		card.Spade: poker.Spade, card.Heart: poker.Heart, card.Diamond: poker.Diamond, card.Club: poker.Club,
	}
	var seven [7]poker.Card
	for i, c := range cards {
		rank := poker.Rank(c.Rank)
		if c.Rank == card.Ace {
			// the reference counts aces as 1
			rank = 1
		}
		pc, err := poker.MakeCard(refSuits[c.Suit], rank)
		require.NoError(t, err)
		seven[i] = pc
	}
	return poker.Eval7(&seven)
}

func subsets(cards []card.Card, fn func([]card.Card)) {
	n := len(cards)
	for mask := 0; mask < 1<<n; mask++ {
		five := make([]card.Card, 0, 5)
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				five = append(five, cards[i])
			}
		}
		if len(five) == 5 {
			fn(five)
		}
	}
}
