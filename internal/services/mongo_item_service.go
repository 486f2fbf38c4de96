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

// MongoItemService stores lost and found reports in two collections that
// share most of their shape.
type MongoItemService struct {
	lostColl  *mongo.Collection
	foundColl *mongo.Collection
}

type mongoLostItemDoc struct {
	ID          string             `bson:"_id"`
	UserID      string             `bson:"user_id,omitempty"`
	ItemName    string             `bson:"item_name,omitempty"`
	Contact     string             `bson:"contact"`
	Location    string             `bson:"location"`
	Category    string             `bson:"category"`
	Time        string             `bson:"time"`
	Date        string             `bson:"date"`
	Description string             `bson:"description"`
	Coordinates models.Coordinates `bson:"coordinates,omitempty"`

	Photo            []byte `bson:"photo,omitempty"`
	PhotoContentType string `bson:"photo_content_type,omitempty"`

	Brand            string `bson:"brand,omitempty"`
	Model            string `bson:"model,omitempty"`
	Color            string `bson:"color,omitempty"`
	Material         string `bson:"material,omitempty"`
	Size             string `bson:"size,omitempty"`
	DocumentType     string `bson:"document_type,omitempty"`
	IssuingAuthority string `bson:"issuing_authority,omitempty"`
	NameOnDocument   string `bson:"name_on_document,omitempty"`

	Attributes map[string]string `bson:"attributes,omitempty"`

	UniquePoint string `bson:"unique_point"`

	HasReward         bool    `bson:"has_reward"`
	RewardAmount      float64 `bson:"reward_amount"`
	RewardCurrency    string  `bson:"reward_currency"`
	RewardDescription string  `bson:"reward_description,omitempty"`

	CreatedAt  time.Time  `bson:"created_at"`
	RepostedAt *time.Time `bson:"reposted_at"`
}

type mongoFoundItemDoc struct {
	ID          string             `bson:"_id"`
	UserID      string             `bson:"user_id,omitempty"`
	ItemName    string             `bson:"item_name,omitempty"`
	Contact     string             `bson:"contact"`
	Location    string             `bson:"location"`
	Category    string             `bson:"category"`
	Time        string             `bson:"time"`
	Date        string             `bson:"date"`
	Description string             `bson:"description"`
	Coordinates models.Coordinates `bson:"coordinates,omitempty"`

	Photo            []byte `bson:"photo,omitempty"`
	PhotoContentType string `bson:"photo_content_type,omitempty"`

	Brand            string `bson:"brand,omitempty"`
	Model            string `bson:"model,omitempty"`
	Color            string `bson:"color,omitempty"`
	SerialNumber     string `bson:"serial_number,omitempty"`
	Material         string `bson:"material,omitempty"`
	Size             string `bson:"size,omitempty"`
	DocumentType     string `bson:"document_type,omitempty"`
	IssuingAuthority string `bson:"issuing_authority,omitempty"`
	NameOnDocument   string `bson:"name_on_document,omitempty"`

	Attributes map[string]string `bson:"attributes,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
}

func NewMongoItemService(ctx context.Context, db *mongo.Database) *MongoItemService {
	lost := db.Collection("lost_items")
	found := db.Collection("found_items")

	// Best-effort indexes.
	_, _ = lost.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "reposted_at", Value: -1}}},
	})
	_, _ = found.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})

	return &MongoItemService{lostColl: lost, foundColl: found}
}

func lostDocToModel(d mongoLostItemDoc) *models.LostItem {
	return &models.LostItem{
		ID:                d.ID,
		UserID:            d.UserID,
		ItemName:          d.ItemName,
		Contact:           d.Contact,
		Location:          d.Location,
		Category:          d.Category,
		Time:              d.Time,
		Date:              d.Date,
		Description:       d.Description,
		Coordinates:       d.Coordinates,
		Photo:             d.Photo,
		PhotoContentType:  d.PhotoContentType,
		Brand:             d.Brand,
		Model:             d.Model,
		Color:             d.Color,
		Material:          d.Material,
		Size:              d.Size,
		DocumentType:      d.DocumentType,
		IssuingAuthority:  d.IssuingAuthority,
		NameOnDocument:    d.NameOnDocument,
		Attributes:        d.Attributes,
		UniquePoint:       d.UniquePoint,
		HasReward:         d.HasReward,
		RewardAmount:      d.RewardAmount,
		RewardCurrency:    d.RewardCurrency,
		RewardDescription: d.RewardDescription,
		CreatedAt:         d.CreatedAt,
		RepostedAt:        d.RepostedAt,
	}
}

func lostModelToDoc(m *models.LostItem) mongoLostItemDoc {
	return mongoLostItemDoc{
		ID:                m.ID,
		UserID:            m.UserID,
		ItemName:          m.ItemName,
		Contact:           m.Contact,
		Location:          m.Location,
		Category:          m.Category,
		Time:              m.Time,
		Date:              m.Date,
		Description:       m.Description,
		Coordinates:       m.Coordinates,
		Photo:             m.Photo,
		PhotoContentType:  m.PhotoContentType,
		Brand:             m.Brand,
		Model:             m.Model,
		Color:             m.Color,
		Material:          m.Material,
		Size:              m.Size,
		DocumentType:      m.DocumentType,
		IssuingAuthority:  m.IssuingAuthority,
		NameOnDocument:    m.NameOnDocument,
		Attributes:        m.Attributes,
		UniquePoint:       m.UniquePoint,
		HasReward:         m.HasReward,
		RewardAmount:      m.RewardAmount,
		RewardCurrency:    m.RewardCurrency,
		RewardDescription: m.RewardDescription,
		CreatedAt:         m.CreatedAt,
		RepostedAt:        m.RepostedAt,
	}
}

func foundDocToModel(d mongoFoundItemDoc) *models.FoundItem {
	return &models.FoundItem{
		ID:               d.ID,
		UserID:           d.UserID,
		ItemName:         d.ItemName,
		Contact:          d.Contact,
		Location:         d.Location,
		Category:         d.Category,
		Time:             d.Time,
		Date:             d.Date,
		Description:      d.Description,
		Coordinates:      d.Coordinates,
		Photo:            d.Photo,
		PhotoContentType: d.PhotoContentType,
		Brand:            d.Brand,
		Model:            d.Model,
		Color:            d.Color,
		SerialNumber:     d.SerialNumber,
		Material:         d.Material,
		Size:             d.Size,
		DocumentType:     d.DocumentType,
		IssuingAuthority: d.IssuingAuthority,
		NameOnDocument:   d.NameOnDocument,
		Attributes:       d.Attributes,
		CreatedAt:        d.CreatedAt,
	}
}

func foundModelToDoc(m *models.FoundItem) mongoFoundItemDoc {
	return mongoFoundItemDoc{
		ID:               m.ID,
		UserID:           m.UserID,
		ItemName:         m.ItemName,
		Contact:          m.Contact,
		Location:         m.Location,
		Category:         m.Category,
		Time:             m.Time,
		Date:             m.Date,
		Description:      m.Description,
		Coordinates:      m.Coordinates,
		Photo:            m.Photo,
		PhotoContentType: m.PhotoContentType,
		Brand:            m.Brand,
		Model:            m.Model,
		Color:            m.Color,
		SerialNumber:     m.SerialNumber,
		Material:         m.Material,
		Size:             m.Size,
		DocumentType:     m.DocumentType,
		IssuingAuthority: m.IssuingAuthority,
		NameOnDocument:   m.NameOnDocument,
		Attributes:       m.Attributes,
		CreatedAt:        m.CreatedAt,
	}
}

func (s *MongoItemService) CreateLost(ctx context.Context, item *models.LostItem) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	_, err := s.lostColl.InsertOne(ctx, lostModelToDoc(item))
	return err
}

func (s *MongoItemService) CreateFound(ctx context.Context, item *models.FoundItem) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	_, err := s.foundColl.InsertOne(ctx, foundModelToDoc(item))
	return err
}

func (s *MongoItemService) GetLost(ctx context.Context, id string) (*models.LostItem, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var doc mongoLostItemDoc
	if err := s.lostColl.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrLostItemNotFound
		}
		return nil, err
	}
	return lostDocToModel(doc), nil
}

func (s *MongoItemService) GetFound(ctx context.Context, id string) (*models.FoundItem, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var doc mongoFoundItemDoc
	if err := s.foundColl.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrFoundItemNotFound
		}
		return nil, err
	}
	return foundDocToModel(doc), nil
}

func (s *MongoItemService) ListLostByCategory(ctx context.Context, category string) ([]*models.LostItem, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	cur, err := s.lostColl.Find(ctx, bson.M{"category": category})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := make([]*models.LostItem, 0)
	for cur.Next(ctx) {
		var doc mongoLostItemDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, lostDocToModel(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *MongoItemService) ListFoundByCategory(ctx context.Context, category string) ([]*models.FoundItem, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	cur, err := s.foundColl.Find(ctx, bson.M{"category": category})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := make([]*models.FoundItem, 0)
	for cur.Next(ctx) {
		var doc mongoFoundItemDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, foundDocToModel(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *MongoItemService) UpdateLost(ctx context.Context, item *models.LostItem) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res := s.lostColl.FindOneAndReplace(
		ctx,
		bson.M{"_id": item.ID},
		lostModelToDoc(item),
		options.FindOneAndReplace().SetReturnDocument(options.After),
	)
	if err := res.Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrLostItemNotFound
		}
		return err
	}
	return nil
}

func (s *MongoItemService) DeleteLost(ctx context.Context, id string) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := s.lostColl.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrLostItemNotFound
	}
	return nil
}

func (s *MongoItemService) DeleteFound(ctx context.Context, id string) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := s.foundColl.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrFoundItemNotFound
	}
	return nil
}

func (s *MongoItemService) CountLost(ctx context.Context) (int64, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()
	return s.lostColl.CountDocuments(ctx, bson.M{})
}

func (s *MongoItemService) CountFound(ctx context.Context) (int64, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()
	return s.foundColl.CountDocuments(ctx, bson.M{})
}

func (s *MongoItemService) CountLostInRange(ctx context.Context, start, end time.Time) (int64, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()
	return s.lostColl.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": start, "$lte": end}})
}

func (s *MongoItemService) CountFoundInRange(ctx context.Context, start, end time.Time) (int64, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()
	return s.foundColl.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": start, "$lte": end}})
}
