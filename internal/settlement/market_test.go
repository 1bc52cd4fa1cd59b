package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalfeed/goalfeed/internal/domain"
)

func finished(final, halfTime domain.Score) domain.FinalRecord {
	return domain.FinalRecord{FinalScore: final, HalfTimeScore: halfTime, Finished: true}
}

func TestEvaluateTotalLines(t *testing.T) {
	cases := []struct {
		name   string
		market string
		entry  domain.Score
		final  domain.Score
		want   domain.SignalStatus
	}{
		{"over hit", "Over 2.5 Goals", domain.Score{}, domain.Score{Home: 3}, domain.StatusWon},
		{"over miss", "Over 2.5 Goals", domain.Score{}, domain.Score{Home: 1, Away: 1}, domain.StatusLost},
		{"under hit", "Under 1.5 Goals", domain.Score{}, domain.Score{Home: 1}, domain.StatusWon},
		{"under miss", "Under 1.5 Goals", domain.Score{Home: 1}, domain.Score{Home: 2, Away: 1}, domain.StatusLost},
		{"over exact half line boundary", "Over 0.5 Goals", domain.Score{}, domain.Score{Home: 1}, domain.StatusWon},
		{"integer line push", "Over 2 Goals", domain.Score{}, domain.Score{Home: 1, Away: 1}, domain.StatusRefund},
		{"integer line under push", "Under 3 Goals", domain.Score{}, domain.Score{Home: 2, Away: 1}, domain.StatusRefund},
		{"integer line over win", "Over 2 Goals", domain.Score{}, domain.Score{Home: 3}, domain.StatusWon},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Evaluate(tc.market, tc.entry, finished(tc.final, domain.Score{}))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluateFirstHalfUsesHalfTimeScore(t *testing.T) {
	// Full time 2-1 but a goalless first half.
	rec := finished(domain.Score{Home: 2, Away: 1}, domain.Score{})

	got, err := Evaluate("1st Half Under 0.5 Goals", domain.Score{}, rec)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWon, got)

	got, err = Evaluate("1st Half Over 0.5 Goals", domain.Score{}, rec)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLost, got)
}

func TestEvaluateBTTS(t *testing.T) {
	got, err := Evaluate("BTTS", domain.Score{}, finished(domain.Score{Home: 1}, domain.Score{}))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLost, got)

	got, err = Evaluate("Both Teams To Score", domain.Score{}, finished(domain.Score{Home: 1, Away: 1}, domain.Score{}))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWon, got)
}

func TestEvaluateSideGoalMarkets(t *testing.T) {
	// Entry at 1-0: home must add another goal, away must get off the mark.
	entry := domain.Score{Home: 1}

	got, err := Evaluate("Home Team To Score", entry, finished(domain.Score{Home: 2}, domain.Score{}))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWon, got)

	got, err = Evaluate("Home Team To Score", entry, finished(domain.Score{Home: 1, Away: 1}, domain.Score{}))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLost, got)

	got, err = Evaluate("Away Team To Score", entry, finished(domain.Score{Home: 1, Away: 1}, domain.Score{}))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWon, got)
}

func TestEvaluateDraw(t *testing.T) {
	got, err := Evaluate("Draw", domain.Score{}, finished(domain.Score{Home: 2, Away: 2}, domain.Score{}))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWon, got)

	got, err = Evaluate("Draw", domain.Score{}, finished(domain.Score{Home: 2, Away: 1}, domain.Score{}))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLost, got)
}

func TestEvaluateUnknownMarket(t *testing.T) {
	_, err := Evaluate("Asian Handicap -0.75", domain.Score{}, finished(domain.Score{}, domain.Score{}))
	assert.ErrorIs(t, err, domain.ErrUnknownMarket)

	_, err = Evaluate("", domain.Score{}, finished(domain.Score{}, domain.Score{}))
	assert.ErrorIs(t, err, domain.ErrUnknownMarket)
}
