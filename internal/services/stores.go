package services

import (
	"context"
	"time"

	"github.com/findit/backend/internal/models"
)

// Store interfaces sit between the engine/handlers and MongoDB so the match
// pipeline can be exercised against in-memory fakes.

type ItemStore interface {
	CreateLost(ctx context.Context, item *models.LostItem) error
	CreateFound(ctx context.Context, item *models.FoundItem) error
	GetLost(ctx context.Context, id string) (*models.LostItem, error)
	GetFound(ctx context.Context, id string) (*models.FoundItem, error)

	// Category listings enumerate the full pool; candidate discovery must
	// never truncate.
	ListLostByCategory(ctx context.Context, category string) ([]*models.LostItem, error)
	ListFoundByCategory(ctx context.Context, category string) ([]*models.FoundItem, error)

	UpdateLost(ctx context.Context, item *models.LostItem) error
	DeleteLost(ctx context.Context, id string) error
	DeleteFound(ctx context.Context, id string) error

	CountLost(ctx context.Context) (int64, error)
	CountFound(ctx context.Context) (int64, error)
	CountLostInRange(ctx context.Context, start, end time.Time) (int64, error)
	CountFoundInRange(ctx context.Context, start, end time.Time) (int64, error)
}

type MatchStore interface {
	// Create persists a new match. Returns ErrMatchExists when a match for
	// the same (lost item, found item) pair is already stored.
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	GetByPair(ctx context.Context, lostItemID, foundItemID string) (*models.Match, error)
	UpdateStatus(ctx context.Context, id string, status models.MatchStatus) (*models.Match, error)
	ListByUser(ctx context.Context, userID string, page, limit int) ([]*models.Match, int64, error)

	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.MatchStatus) (int64, error)
	CountInRange(ctx context.Context, start, end time.Time) (int64, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id string) (*models.Notification, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Search(ctx context.Context, query string) ([]*models.User, error)
	// ListIDs returns every registered user id, for report broadcasts.
	ListIDs(ctx context.Context) ([]string, error)
}

type ReturnedItemStore interface {
	Create(ctx context.Context, item *models.ReturnedItem) error
	List(ctx context.Context) ([]*models.ReturnedItem, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.ReturnedItem, error)
}

type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByClientID(ctx context.Context, clientMessageID string) (*models.Message, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Message, error)
	ListBetween(ctx context.Context, userID, partnerID string) ([]*models.Message, error)
	MarkReadBetween(ctx context.Context, senderID, receiverID string) error
}

// SimilarityScorer is the text oracle: it scores how alike two free-text
// item descriptions are, in [0,1].
type SimilarityScorer interface {
	Score(ctx context.Context, lostDesc, foundDesc string) (float64, error)
}

// FaceVerifier is the face oracle: it reports whether two images show the
// same person, plus a distance used for ranking.
type FaceVerifier interface {
	Verify(ctx context.Context, img1, img2 string) (bool, float64, error)
}
