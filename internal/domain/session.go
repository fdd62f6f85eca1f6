package domain

// ReviewBucket is the selection category a candidate card falls into.
type ReviewBucket string

// Buckets in backfill order.
const (
	BucketOverdue  ReviewBucket = "overdue"
	BucketNew      ReviewBucket = "new"
	BucketReview   ReviewBucket = "review"
	BucketMastered ReviewBucket = "mastered"
)

// BackfillOrder is the order in which leftover cards fill an under-quota session.
var BackfillOrder = []ReviewBucket{BucketOverdue, BucketNew, BucketReview, BucketMastered}

// BucketQuotas holds the per-bucket slot counts of a session.
type BucketQuotas struct {
	Overdue  int `json:"overdue"`
	New      int `json:"new"`
	Review   int `json:"review"`
	Mastered int `json:"mastered"`
}

// For returns the quota of a single bucket.
func (q BucketQuotas) For(b ReviewBucket) int {
	switch b {
	case BucketOverdue:
		return q.Overdue
	case BucketNew:
		return q.New
	case BucketReview:
		return q.Review
	case BucketMastered:
		return q.Mastered
	default:
		return 0
	}
}

// Total is the sum of all bucket quotas.
func (q BucketQuotas) Total() int {
	return q.Overdue + q.New + q.Review + q.Mastered
}

// SessionSource tells where the cards of a session came from.
type SessionSource string

const (
	// SessionSourceReview means the learner has review states matching the filters.
	// Unseen pool cards may still fill the new-card quota.
	SessionSourceReview SessionSource = "review"
	// SessionSourcePool means the learner had no review states and every card came
	// from the content pool.
	SessionSourcePool SessionSource = "pool"
)

// SessionSelection is the ordered list of cards making up one study session.
type SessionSelection struct {
	TargetSize int           `json:"target_size"`
	Quotas     BucketQuotas  `json:"quotas"`
	Cards      []CardRef     `json:"cards"`
	Source     SessionSource `json:"source,omitempty"`
}
