package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/findit/backend/internal/models"
)

// primitiveRegex builds a case-insensitive substring matcher with the query
// escaped, so user input can never change the match semantics.
func primitiveRegex(query string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
}

type MongoUserService struct {
	coll *mongo.Collection
}

type mongoUserDoc struct {
	ID               string    `bson:"_id"`
	Name             string    `bson:"name"`
	Email            string    `bson:"email"`
	Mobile           string    `bson:"mobile"`
	PasswordHash     string    `bson:"password_hash"`
	ProfileImage     string    `bson:"profile_image,omitempty"`
	ProfileImageType string    `bson:"profile_image_type,omitempty"`
	CreatedAt        time.Time `bson:"created_at"`
}

func NewMongoUserService(ctx context.Context, db *mongo.Database) *MongoUserService {
	coll := db.Collection("users")

	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})

	return &MongoUserService{coll: coll}
}

func userDocToModel(d mongoUserDoc) *models.User {
	return &models.User{
		ID:               d.ID,
		Name:             d.Name,
		Email:            d.Email,
		Mobile:           d.Mobile,
		PasswordHash:     d.PasswordHash,
		ProfileImage:     d.ProfileImage,
		ProfileImageType: d.ProfileImageType,
		CreatedAt:        d.CreatedAt,
	}
}

func userModelToDoc(u *models.User) mongoUserDoc {
	return mongoUserDoc{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Mobile:           u.Mobile,
		PasswordHash:     u.PasswordHash,
		ProfileImage:     u.ProfileImage,
		ProfileImageType: u.ProfileImageType,
		CreatedAt:        u.CreatedAt,
	}
}

func (s *MongoUserService) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	if _, err := s.coll.InsertOne(ctx, userModelToDoc(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

func (s *MongoUserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var doc mongoUserDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return userDocToModel(doc), nil
}

func (s *MongoUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var doc mongoUserDoc
	err := s.coll.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return userDocToModel(doc), nil
}

func (s *MongoUserService) Update(ctx context.Context, user *models.User) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res := s.coll.FindOneAndReplace(
		ctx,
		bson.M{"_id": user.ID},
		userModelToDoc(user),
		options.FindOneAndReplace().SetReturnDocument(options.After),
	)
	if err := res.Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *MongoUserService) Search(ctx context.Context, query string) ([]*models.User, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	pattern := primitiveRegex(query)
	cur, err := s.coll.Find(ctx, bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"email": pattern},
	}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.User, 0)
	for cur.Next(ctx) {
		var doc mongoUserDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, userDocToModel(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoUserService) ListIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	ids := make([]string, 0)
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
