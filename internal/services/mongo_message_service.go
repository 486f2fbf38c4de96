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

type MongoMessageService struct {
	coll *mongo.Collection
}

type mongoMessageDoc struct {
	ID              string    `bson:"_id"`
	SenderID        string    `bson:"sender_id"`
	ReceiverID      string    `bson:"receiver_id"`
	Text            string    `bson:"text"`
	Read            bool      `bson:"read"`
	ClientMessageID string    `bson:"client_message_id,omitempty"`
	MatchID         string    `bson:"match_id,omitempty"`
	CreatedAt       time.Time `bson:"created_at"`
}

func NewMongoMessageService(ctx context.Context, db *mongo.Database) *MongoMessageService {
	coll := db.Collection("messages")

	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "receiver_id", Value: 1}}},
		{Keys: bson.D{{Key: "match_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "client_message_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})

	return &MongoMessageService{coll: coll}
}

func messageDocToModel(d mongoMessageDoc) *models.Message {
	return &models.Message{
		ID:              d.ID,
		SenderID:        d.SenderID,
		ReceiverID:      d.ReceiverID,
		Text:            d.Text,
		Read:            d.Read,
		ClientMessageID: d.ClientMessageID,
		MatchID:         d.MatchID,
		CreatedAt:       d.CreatedAt,
	}
}

func (s *MongoMessageService) Create(ctx context.Context, msg *models.Message) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	doc := mongoMessageDoc{
		ID:              msg.ID,
		SenderID:        msg.SenderID,
		ReceiverID:      msg.ReceiverID,
		Text:            msg.Text,
		Read:            msg.Read,
		ClientMessageID: msg.ClientMessageID,
		MatchID:         msg.MatchID,
		CreatedAt:       msg.CreatedAt,
	}

	_, err := s.coll.InsertOne(ctx, doc)
	return err
}

func (s *MongoMessageService) GetByClientID(ctx context.Context, clientMessageID string) (*models.Message, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var doc mongoMessageDoc
	err := s.coll.FindOne(ctx, bson.M{"client_message_id": clientMessageID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return messageDocToModel(doc), nil
}

func (s *MongoMessageService) ListByUser(ctx context.Context, userID string) ([]*models.Message, error) {
	return s.list(ctx, bson.M{"$or": bson.A{
		bson.M{"sender_id": userID},
		bson.M{"receiver_id": userID},
	}})
}

func (s *MongoMessageService) ListBetween(ctx context.Context, userID, partnerID string) ([]*models.Message, error) {
	return s.list(ctx, bson.M{"$or": bson.A{
		bson.M{"sender_id": userID, "receiver_id": partnerID},
		bson.M{"sender_id": partnerID, "receiver_id": userID},
	}})
}

func (s *MongoMessageService) list(ctx context.Context, filter bson.M) ([]*models.Message, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.Message, 0)
	for cur.Next(ctx) {
		var doc mongoMessageDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, messageDocToModel(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoMessageService) MarkReadBetween(ctx context.Context, senderID, receiverID string) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	_, err := s.coll.UpdateMany(
		ctx,
		bson.M{"sender_id": senderID, "receiver_id": receiverID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	return err
}
