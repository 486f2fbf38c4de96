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

type MongoNotificationService struct {
	coll *mongo.Collection
}

type mongoNotificationDoc struct {
	ID      string `bson:"_id"`
	UserID  string `bson:"user_id"`
	Type    string `bson:"type"`
	Title   string `bson:"title"`
	Message string `bson:"message"`
	Read    bool   `bson:"read"`

	LostItemID  string `bson:"lost_item_id,omitempty"`
	FoundItemID string `bson:"found_item_id,omitempty"`
	MatchID     string `bson:"match_id,omitempty"`

	LostItemName         string     `bson:"lost_item_name,omitempty"`
	LostItemDescription  string     `bson:"lost_item_description,omitempty"`
	LostLocation         string     `bson:"lost_location,omitempty"`
	LostDate             string     `bson:"lost_date,omitempty"`
	LostTime             string     `bson:"lost_time,omitempty"`
	LostCategory         string     `bson:"lost_category,omitempty"`
	FoundItemName        string     `bson:"found_item_name,omitempty"`
	FoundItemDescription string     `bson:"found_item_description,omitempty"`
	FoundLocation        string     `bson:"found_location,omitempty"`
	FoundDate            string     `bson:"found_date,omitempty"`
	FoundTime            string     `bson:"found_time,omitempty"`
	FoundCategory        string     `bson:"found_category,omitempty"`
	MatchDate            *time.Time `bson:"match_date,omitempty"`
	SimilarityScore      *float64   `bson:"similarity_score,omitempty"`

	ItemName string `bson:"item_name,omitempty"`
	Location string `bson:"location,omitempty"`
	Date     string `bson:"date,omitempty"`
	Time     string `bson:"time,omitempty"`
	Category string `bson:"category,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
}

func NewMongoNotificationService(ctx context.Context, db *mongo.Database) *MongoNotificationService {
	coll := db.Collection("notifications")

	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})

	return &MongoNotificationService{coll: coll}
}

func notificationDocToModel(d mongoNotificationDoc) *models.Notification {
	return &models.Notification{
		ID:                   d.ID,
		UserID:               d.UserID,
		Type:                 models.NotificationType(d.Type),
		Title:                d.Title,
		Message:              d.Message,
		Read:                 d.Read,
		LostItemID:           d.LostItemID,
		FoundItemID:          d.FoundItemID,
		MatchID:              d.MatchID,
		LostItemName:         d.LostItemName,
		LostItemDescription:  d.LostItemDescription,
		LostLocation:         d.LostLocation,
		LostDate:             d.LostDate,
		LostTime:             d.LostTime,
		LostCategory:         d.LostCategory,
		FoundItemName:        d.FoundItemName,
		FoundItemDescription: d.FoundItemDescription,
		FoundLocation:        d.FoundLocation,
		FoundDate:            d.FoundDate,
		FoundTime:            d.FoundTime,
		FoundCategory:        d.FoundCategory,
		MatchDate:            d.MatchDate,
		SimilarityScore:      d.SimilarityScore,
		ItemName:             d.ItemName,
		Location:             d.Location,
		Date:                 d.Date,
		Time:                 d.Time,
		Category:             d.Category,
		CreatedAt:            d.CreatedAt,
	}
}

func notificationModelToDoc(n *models.Notification) mongoNotificationDoc {
	return mongoNotificationDoc{
		ID:                   n.ID,
		UserID:               n.UserID,
		Type:                 string(n.Type),
		Title:                n.Title,
		Message:              n.Message,
		Read:                 n.Read,
		LostItemID:           n.LostItemID,
		FoundItemID:          n.FoundItemID,
		MatchID:              n.MatchID,
		LostItemName:         n.LostItemName,
		LostItemDescription:  n.LostItemDescription,
		LostLocation:         n.LostLocation,
		LostDate:             n.LostDate,
		LostTime:             n.LostTime,
		LostCategory:         n.LostCategory,
		FoundItemName:        n.FoundItemName,
		FoundItemDescription: n.FoundItemDescription,
		FoundLocation:        n.FoundLocation,
		FoundDate:            n.FoundDate,
		FoundTime:            n.FoundTime,
		FoundCategory:        n.FoundCategory,
		MatchDate:            n.MatchDate,
		SimilarityScore:      n.SimilarityScore,
		ItemName:             n.ItemName,
		Location:             n.Location,
		Date:                 n.Date,
		Time:                 n.Time,
		Category:             n.Category,
		CreatedAt:            n.CreatedAt,
	}
}

func (s *MongoNotificationService) Create(ctx context.Context, n *models.Notification) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	_, err := s.coll.InsertOne(ctx, notificationModelToDoc(n))
	return err
}

func (s *MongoNotificationService) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}

	cur, err := s.coll.Find(
		ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.Notification, 0)
	for cur.Next(ctx) {
		var doc mongoNotificationDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, notificationDocToModel(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoNotificationService) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res := s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"read": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var doc mongoNotificationDoc
	if err := res.Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return notificationDocToModel(doc), nil
}
