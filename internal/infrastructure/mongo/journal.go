package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
)

const journalCollection = "stock_card_entries_journal"

// Journal copia de auditoría de los movimientos aplicados, un documento por lote confirmado.
type Journal struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ ledger.Journal = (*Journal)(nil)

// NewJournal conecta con MongoDB, verifica la conexión y asegura el índice por instalación.
func NewJournal(ctx context.Context, uri, dbName string) (*Journal, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	coll := client.Database(dbName).Collection(journalCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "facility_id", Value: 1}, {Key: "applied_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo create index: %w", err)
	}
	return &Journal{client: client, coll: coll}, nil
}

// Record inserta el registro del lote aplicado.
func (j *Journal) Record(ctx context.Context, rec ledger.JournalRecord) error {
	if _, err := j.coll.InsertOne(ctx, toDocument(rec)); err != nil {
		return fmt.Errorf("insert journal record: %w", err)
	}
	return nil
}

// Close cierra la conexión.
func (j *Journal) Close(ctx context.Context) error {
	return j.client.Disconnect(ctx)
}

type journalDocument struct {
	FacilityID string          `bson:"facility_id"`
	UserID     string          `bson:"user_id"`
	AppliedAt  time.Time       `bson:"applied_at"`
	Entries    []entryDocument `bson:"entries"`
}

type entryDocument struct {
	ID              string            `bson:"entry_id"`
	StockCardID     string            `bson:"stock_card_id"`
	LotOnHandID     string            `bson:"lot_on_hand_id,omitempty"`
	Type            string            `bson:"type"`
	Quantity        int64             `bson:"quantity"`
	ReasonName      string            `bson:"reason_name,omitempty"`
	ReferenceNumber string            `bson:"reference_number,omitempty"`
	Notes           string            `bson:"notes,omitempty"`
	Occurred        time.Time         `bson:"occurred"`
	KeyValues       map[string]string `bson:"key_values,omitempty"`
}

func toDocument(rec ledger.JournalRecord) journalDocument {
	doc := journalDocument{
		FacilityID: rec.FacilityID,
		UserID:     rec.UserID,
		AppliedAt:  rec.AppliedAt.UTC(),
		Entries:    make([]entryDocument, 0, len(rec.Entries)),
	}
	for _, e := range rec.Entries {
		if e == nil {
			continue
		}
		ed := entryDocument{
			ID:              e.ID,
			StockCardID:     e.StockCardID,
			LotOnHandID:     e.LotOnHandID,
			Type:            string(e.Type),
			Quantity:        e.Quantity,
			ReferenceNumber: e.ReferenceNumber,
			Notes:           e.Notes,
			Occurred:        e.Occurred.UTC(),
		}
		if e.AdjustmentReason != nil {
			ed.ReasonName = e.AdjustmentReason.Name
		}
		if len(e.KeyValues) > 0 {
			ed.KeyValues = make(map[string]string, len(e.KeyValues))
			for _, kv := range e.KeyValues {
				ed.KeyValues[kv.Key] = kv.Value
			}
		}
		doc.Entries = append(doc.Entries, ed)
	}
	return doc
}
