package mongodb

import (
	"context"

	"medrec-verification/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r Repository) InsertReceipt(ctx context.Context, audit model.SubmissionAudit) error {
	entry := receiptRecord{
		IntentID:    audit.IntentID,
		Kind:        audit.Kind,
		TokenID:     audit.TokenID,
		Actor:       audit.Actor,
		Outcome:     audit.Outcome,
		Reason:      audit.Reason,
		SubmittedAt: audit.SubmittedAt,
	}

	_, err := r.receipts().InsertOne(ctx, entry)
	return err
}

// GetActorReceipts lists the journaled submissions of one actor, the
// most recent first.
func (r Repository) GetActorReceipts(ctx context.Context, actor string) ([]model.SubmissionAudit, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: -1}})
	cursor, err := r.receipts().Find(ctx, bson.M{"actor": actor}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []receiptRecord
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	audits := make([]model.SubmissionAudit, len(entries))
	for i, entry := range entries {
		audits[i] = model.SubmissionAudit{
			IntentID:    entry.IntentID,
			Kind:        entry.Kind,
			TokenID:     entry.TokenID,
			Actor:       entry.Actor,
			Outcome:     entry.Outcome,
			Reason:      entry.Reason,
			SubmittedAt: entry.SubmittedAt,
		}
	}

	return audits, nil
}
