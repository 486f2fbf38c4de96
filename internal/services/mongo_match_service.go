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

type MongoMatchService struct {
	coll *mongo.Collection
}

type mongoMatchDoc struct {
	ID              string    `bson:"_id"`
	LostItemID      string    `bson:"lost_item_id"`
	FoundItemID     string    `bson:"found_item_id"`
	LostUserID      string    `bson:"lost_user_id"`
	FoundUserID     string    `bson:"found_user_id"`
	SimilarityScore float64   `bson:"similarity_score"`
	Status          string    `bson:"status"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

func NewMongoMatchService(ctx context.Context, db *mongo.Database) *MongoMatchService {
	coll := db.Collection("matches")

	// The unique pair index is the dedup guarantee: concurrent discovery
	// runs for the same pair race at insert time and the loser gets a
	// duplicate-key error instead of a second row.
	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "lost_item_id", Value: 1}, {Key: "found_item_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "lost_user_id", Value: 1}}},
		{Keys: bson.D{{Key: "found_user_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})

	return &MongoMatchService{coll: coll}
}

func matchDocToModel(d mongoMatchDoc) *models.Match {
	return &models.Match{
		ID:              d.ID,
		LostItemID:      d.LostItemID,
		FoundItemID:     d.FoundItemID,
		LostUserID:      d.LostUserID,
		FoundUserID:     d.FoundUserID,
		SimilarityScore: d.SimilarityScore,
		Status:          models.MatchStatus(d.Status),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (s *MongoMatchService) Create(ctx context.Context, match *models.Match) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	if match.ID == "" {
		match.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if match.CreatedAt.IsZero() {
		match.CreatedAt = now
	}
	match.UpdatedAt = now
	if match.Status == "" {
		match.Status = models.MatchPending
	}

	doc := mongoMatchDoc{
		ID:              match.ID,
		LostItemID:      match.LostItemID,
		FoundItemID:     match.FoundItemID,
		LostUserID:      match.LostUserID,
		FoundUserID:     match.FoundUserID,
		SimilarityScore: match.SimilarityScore,
		Status:          string(match.Status),
		CreatedAt:       match.CreatedAt,
		UpdatedAt:       match.UpdatedAt,
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrMatchExists
		}
		return err
	}
	return nil
}

func (s *MongoMatchService) GetByID(ctx context.Context, id string) (*models.Match, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var doc mongoMatchDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return matchDocToModel(doc), nil
}

func (s *MongoMatchService) GetByPair(ctx context.Context, lostItemID, foundItemID string) (*models.Match, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var doc mongoMatchDoc
	err := s.coll.FindOne(ctx, bson.M{
		"lost_item_id":  lostItemID,
		"found_item_id": foundItemID,
	}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return matchDocToModel(doc), nil
}

func (s *MongoMatchService) UpdateStatus(ctx context.Context, id string, status models.MatchStatus) (*models.Match, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res := s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": string(status), "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var doc mongoMatchDoc
	if err := res.Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return matchDocToModel(doc), nil
}

func (s *MongoMatchService) ListByUser(ctx context.Context, userID string, page, limit int) ([]*models.Match, int64, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	filter := bson.M{"$or": bson.A{
		bson.M{"lost_user_id": userID},
		bson.M{"found_user_id": userID},
	}}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cur, err := s.coll.Find(
		ctx,
		filter,
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetSkip(int64((page-1)*limit)).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	matches := make([]*models.Match, 0)
	for cur.Next(ctx) {
		var doc mongoMatchDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, err
		}
		matches = append(matches, matchDocToModel(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}
	return matches, total, nil
}

func (s *MongoMatchService) Count(ctx context.Context) (int64, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()
	return s.coll.CountDocuments(ctx, bson.M{})
}

func (s *MongoMatchService) CountByStatus(ctx context.Context, status models.MatchStatus) (int64, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()
	return s.coll.CountDocuments(ctx, bson.M{"status": string(status)})
}

func (s *MongoMatchService) CountInRange(ctx context.Context, start, end time.Time) (int64, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()
	return s.coll.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": start, "$lte": end}})
}
