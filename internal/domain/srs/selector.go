package srs

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
)

// Classify puts a candidate into exactly one bucket.
func Classify(state *domain.CardReviewState, now time.Time) domain.ReviewBucket {
	switch {
	case state.ReviewCount == 0:
		return domain.BucketNew
	case !state.NextReviewAt.After(now):
		return domain.BucketOverdue
	case state.MasteryLevel >= domain.MasteredThreshold:
		return domain.BucketMastered
	default:
		return domain.BucketReview
	}
}

// Quotas splits a session of the given size across the buckets, flooring each share.
func Quotas(size int, shares BucketShares) domain.BucketQuotas {
	if size <= 0 {
		return domain.BucketQuotas{}
	}
	k := float64(size)
	return domain.BucketQuotas{
		Overdue:  int(math.Floor(k * shares.Overdue)),
		New:      int(math.Floor(k * shares.New)),
		Review:   int(math.Floor(k * shares.Review)),
		Mastered: int(math.Floor(k * shares.Mastered)),
	}
}

// selectSession fills each bucket up to its quota, then backfills the remaining
// slots from leftover candidates in overdue, new, review, mastered order.
// The result never exceeds size and never repeats a card.
func selectSession(
	candidates []domain.CardCandidate,
	size int,
	now time.Time,
	params *Params,
) domain.SessionSelection {
	quotas := Quotas(size, params.Shares)
	selection := domain.SessionSelection{
		TargetSize: size,
		Quotas:     quotas,
		Cards:      []domain.CardRef{},
	}
	if size <= 0 || len(candidates) == 0 {
		return selection
	}

	buckets := make(map[domain.ReviewBucket][]domain.CardCandidate, len(domain.BackfillOrder))
	seen := make(map[uuid.UUID]bool, len(candidates))
	for _, c := range candidates {
		if seen[c.Card.ID] {
			continue
		}
		seen[c.Card.ID] = true
		b := Classify(&c.State, now)
		buckets[b] = append(buckets[b], c)
	}
	for _, b := range domain.BackfillOrder {
		sortByDue(buckets[b])
	}

	taken := make(map[domain.ReviewBucket]int, len(domain.BackfillOrder))
	for _, b := range domain.BackfillOrder {
		n := min(quotas.For(b), len(buckets[b]), size-len(selection.Cards))
		for _, c := range buckets[b][:n] {
			selection.Cards = append(selection.Cards, c.Card)
		}
		taken[b] = n
	}

	for _, b := range domain.BackfillOrder {
		if len(selection.Cards) >= size {
			break
		}
		rest := buckets[b][taken[b]:]
		n := min(len(rest), size-len(selection.Cards))
		for _, c := range rest[:n] {
			selection.Cards = append(selection.Cards, c.Card)
		}
	}

	return selection
}

// sortByDue orders candidates oldest-due first, breaking ties by card ID.
func sortByDue(cs []domain.CardCandidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if !a.State.NextReviewAt.Equal(b.State.NextReviewAt) {
			return a.State.NextReviewAt.Before(b.State.NextReviewAt)
		}
		return a.Card.ID.String() < b.Card.ID.String()
	})
}
