package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/client"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/history"
)

type historyDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Operation   string             `bson:"operation"`
	Timestamp   time.Time          `bson:"timestamp"`
	ShowingID   string             `bson:"showing_id,omitempty"`
	SeatID      string             `bson:"seat_id,omitempty"`
	ClientID    string             `bson:"client_id,omitempty"`
	ClientEmail string             `bson:"client_email,omitempty"`
	Description string             `bson:"description"`
	Details     bson.M             `bson:"details,omitempty"`
}

func toDocument(e *history.Entry) historyDocument {
	return historyDocument{
		Operation:   string(e.Operation),
		Timestamp:   e.Timestamp.UTC(),
		ShowingID:   e.ShowingID,
		SeatID:      e.SeatID,
		ClientID:    e.ClientID,
		ClientEmail: client.NormalizeEmail(e.ClientEmail),
		Description: e.Description,
		Details:     bson.M(e.Details),
	}
}

func (d *historyDocument) toEntity() *history.Entry {
	return &history.Entry{
		ID:          d.ID.Hex(),
		Operation:   history.Operation(d.Operation),
		Timestamp:   d.Timestamp,
		ShowingID:   d.ShowingID,
		SeatID:      d.SeatID,
		ClientID:    d.ClientID,
		ClientEmail: d.ClientEmail,
		Description: d.Description,
		Details:     map[string]any(d.Details),
	}
}

// HistoryRepository は予約履歴をMongoDBのコレクションに保存する
type HistoryRepository struct {
	coll *mongo.Collection
}

func NewHistoryRepository(db *mongo.Database, collection string) *HistoryRepository {
	return &HistoryRepository{coll: db.Collection(collection)}
}

// EnsureIndexes は検索用インデックスを作成する
func (r *HistoryRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "showing_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "client_email", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "operation", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("履歴インデックス作成に失敗: %w", err)
	}
	return nil
}

func (r *HistoryRepository) Append(ctx context.Context, e *history.Entry) error {
	res, err := r.coll.InsertOne(ctx, toDocument(e))
	if err != nil {
		return fmt.Errorf("履歴追記に失敗: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		e.ID = oid.Hex()
	}
	return nil
}

func (r *HistoryRepository) ListByShowing(ctx context.Context, showingID string) ([]*history.Entry, error) {
	return r.find(ctx, bson.M{"showing_id": showingID}, newestFirst())
}

func (r *HistoryRepository) ListByClientEmail(ctx context.Context, email string) ([]*history.Entry, error) {
	// 保存時と同じく小文字に正規化して比較する
	return r.find(ctx, bson.M{"client_email": client.NormalizeEmail(email)}, newestFirst())
}

func (r *HistoryRepository) ListByOperation(ctx context.Context, op history.Operation) ([]*history.Entry, error) {
	return r.find(ctx, bson.M{"operation": string(op)}, newestFirst())
}

func (r *HistoryRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*history.Entry, error) {
	filter := bson.M{"timestamp": bson.M{"$gte": from.UTC(), "$lte": to.UTC()}}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]*history.Entry, error) {
	return r.find(ctx, bson.M{}, newestFirst().SetLimit(int64(limit)))
}

func (r *HistoryRepository) CountByOperation(ctx context.Context) (map[history.Operation]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$operation"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("履歴集計に失敗: %w", err)
	}
	var rows []struct {
		Operation string `bson:"_id"`
		Count     int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("履歴集計に失敗: %w", err)
	}
	counts := make(map[history.Operation]int64, len(rows))
	for _, row := range rows {
		counts[history.Operation(row.Operation)] = row.Count
	}
	return counts, nil
}

func (r *HistoryRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*history.Entry, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("履歴取得に失敗: %w", err)
	}
	var docs []historyDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("履歴取得に失敗: %w", err)
	}
	entries := make([]*history.Entry, len(docs))
	for i := range docs {
		entries[i] = docs[i].toEntity()
	}
	return entries, nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
}

var _ history.Repository = (*HistoryRepository)(nil)
