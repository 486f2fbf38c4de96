package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/findit/backend/internal/models"
)

type MongoReturnedItemService struct {
	coll *mongo.Collection
}

type mongoReturnedItemDoc struct {
	ID           string      `bson:"_id"`
	ItemID       string      `bson:"item_id"`
	ItemType     string      `bson:"item_type"`
	OriginalItem interface{} `bson:"original_item"`
	ReturnedAt   time.Time   `bson:"returned_at"`
	ReturnedBy   string      `bson:"returned_by"`
	ReturnNotes  string      `bson:"return_notes,omitempty"`
	// The original item's owner, lifted out of the snapshot for querying.
	OwnerID  string `bson:"owner_id,omitempty"`
	ItemName string `bson:"item_name"`
	Category string `bson:"category"`
	Location string `bson:"location"`
	Date     string `bson:"date"`
	Photo    []byte `bson:"photo,omitempty"`
}

func NewMongoReturnedItemService(ctx context.Context, db *mongo.Database) *MongoReturnedItemService {
	coll := db.Collection("returned_items")

	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "returned_at", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "item_id", Value: 1}}},
	})

	return &MongoReturnedItemService{coll: coll}
}

func returnedDocToModel(d mongoReturnedItemDoc) *models.ReturnedItem {
	return &models.ReturnedItem{
		ID:           d.ID,
		ItemID:       d.ItemID,
		ItemType:     d.ItemType,
		OriginalItem: d.OriginalItem,
		ReturnedAt:   d.ReturnedAt,
		ReturnedBy:   d.ReturnedBy,
		ReturnNotes:  d.ReturnNotes,
		ItemName:     d.ItemName,
		Category:     d.Category,
		Location:     d.Location,
		Date:         d.Date,
		Photo:        d.Photo,
	}
}

func ownerOfSnapshot(item interface{}) string {
	switch v := item.(type) {
	case *models.LostItem:
		return v.UserID
	case *models.FoundItem:
		return v.UserID
	}
	return ""
}

func (s *MongoReturnedItemService) Create(ctx context.Context, item *models.ReturnedItem) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.ReturnedAt.IsZero() {
		item.ReturnedAt = time.Now().UTC()
	}

	doc := mongoReturnedItemDoc{
		ID:           item.ID,
		ItemID:       item.ItemID,
		ItemType:     item.ItemType,
		OriginalItem: item.OriginalItem,
		ReturnedAt:   item.ReturnedAt,
		ReturnedBy:   item.ReturnedBy,
		ReturnNotes:  item.ReturnNotes,
		OwnerID:      ownerOfSnapshot(item.OriginalItem),
		ItemName:     item.ItemName,
		Category:     item.Category,
		Location:     item.Location,
		Date:         item.Date,
		Photo:        item.Photo,
	}

	_, err := s.coll.InsertOne(ctx, doc)
	return err
}

func (s *MongoReturnedItemService) List(ctx context.Context) ([]*models.ReturnedItem, error) {
	return s.list(ctx, bson.M{})
}

func (s *MongoReturnedItemService) ListByOwner(ctx context.Context, userID string) ([]*models.ReturnedItem, error) {
	return s.list(ctx, bson.M{"owner_id": userID})
}

func (s *MongoReturnedItemService) list(ctx context.Context, filter bson.M) ([]*models.ReturnedItem, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "returned_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.ReturnedItem, 0)
	for cur.Next(ctx) {
		var doc mongoReturnedItemDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, returnedDocToModel(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
