package mongodb

import "time"

type receiptRecord struct {
	IntentID    string    `bson:"intentId"`
	Kind        string    `bson:"kind"`
	TokenID     uint64    `bson:"tokenId,omitempty"`
	Actor       string    `bson:"actor"`
	Outcome     string    `bson:"outcome"`
	Reason      string    `bson:"reason,omitempty"`
	SubmittedAt time.Time `bson:"submittedAt"`
}
