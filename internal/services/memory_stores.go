package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/findit/backend/internal/models"
)

// In-memory store implementations backing local development and tests. They
// honor the same contracts as the Mongo stores, including pair uniqueness
// on matches.

type MemoryItemStore struct {
	mu    sync.RWMutex
	lost  map[string]*models.LostItem
	found map[string]*models.FoundItem
}

func NewMemoryItemStore() *MemoryItemStore {
	return &MemoryItemStore{
		lost:  make(map[string]*models.LostItem),
		found: make(map[string]*models.FoundItem),
	}
}

func (s *MemoryItemStore) CreateLost(_ context.Context, item *models.LostItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	copy := *item
	s.lost[item.ID] = &copy
	return nil
}

func (s *MemoryItemStore) CreateFound(_ context.Context, item *models.FoundItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	copy := *item
	s.found[item.ID] = &copy
	return nil
}

func (s *MemoryItemStore) GetLost(_ context.Context, id string) (*models.LostItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.lost[id]
	if !ok {
		return nil, ErrLostItemNotFound
	}
	copy := *item
	return &copy, nil
}

func (s *MemoryItemStore) GetFound(_ context.Context, id string) (*models.FoundItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.found[id]
	if !ok {
		return nil, ErrFoundItemNotFound
	}
	copy := *item
	return &copy, nil
}

func (s *MemoryItemStore) ListLostByCategory(_ context.Context, category string) ([]*models.LostItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.LostItem, 0)
	for _, item := range s.lost {
		if item.Category == category {
			copy := *item
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryItemStore) ListFoundByCategory(_ context.Context, category string) ([]*models.FoundItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.FoundItem, 0)
	for _, item := range s.found {
		if item.Category == category {
			copy := *item
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryItemStore) UpdateLost(_ context.Context, item *models.LostItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lost[item.ID]; !ok {
		return ErrLostItemNotFound
	}
	copy := *item
	s.lost[item.ID] = &copy
	return nil
}

func (s *MemoryItemStore) DeleteLost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lost[id]; !ok {
		return ErrLostItemNotFound
	}
	delete(s.lost, id)
	return nil
}

func (s *MemoryItemStore) DeleteFound(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.found[id]; !ok {
		return ErrFoundItemNotFound
	}
	delete(s.found, id)
	return nil
}

func (s *MemoryItemStore) CountLost(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.lost)), nil
}

func (s *MemoryItemStore) CountFound(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.found)), nil
}

func (s *MemoryItemStore) CountLostInRange(_ context.Context, start, end time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, item := range s.lost {
		if !item.CreatedAt.Before(start) && !item.CreatedAt.After(end) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryItemStore) CountFoundInRange(_ context.Context, start, end time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, item := range s.found {
		if !item.CreatedAt.Before(start) && !item.CreatedAt.After(end) {
			n++
		}
	}
	return n, nil
}

type MemoryMatchStore struct {
	mu      sync.RWMutex
	matches map[string]*models.Match
	byPair  map[string]string
}

func NewMemoryMatchStore() *MemoryMatchStore {
	return &MemoryMatchStore{
		matches: make(map[string]*models.Match),
		byPair:  make(map[string]string),
	}
}

func pairKey(lostItemID, foundItemID string) string {
	return lostItemID + "|" + foundItemID
}

func (s *MemoryMatchStore) Create(_ context.Context, match *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(match.LostItemID, match.FoundItemID)
	if _, exists := s.byPair[key]; exists {
		return ErrMatchExists
	}

	if match.ID == "" {
		match.ID = uuid.New().String()
	}
	if match.Status == "" {
		match.Status = models.MatchPending
	}
	now := time.Now().UTC()
	if match.CreatedAt.IsZero() {
		match.CreatedAt = now
	}
	match.UpdatedAt = now

	copy := *match
	s.matches[match.ID] = &copy
	s.byPair[key] = match.ID
	return nil
}

func (s *MemoryMatchStore) GetByID(_ context.Context, id string) (*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	match, ok := s.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	copy := *match
	return &copy, nil
}

func (s *MemoryMatchStore) GetByPair(_ context.Context, lostItemID, foundItemID string) (*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPair[pairKey(lostItemID, foundItemID)]
	if !ok {
		return nil, ErrMatchNotFound
	}
	copy := *s.matches[id]
	return &copy, nil
}

func (s *MemoryMatchStore) UpdateStatus(_ context.Context, id string, status models.MatchStatus) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, ok := s.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	match.Status = status
	match.UpdatedAt = time.Now().UTC()
	copy := *match
	return &copy, nil
}

func (s *MemoryMatchStore) ListByUser(_ context.Context, userID string, page, limit int) ([]*models.Match, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*models.Match, 0)
	for _, match := range s.matches {
		if match.LostUserID == userID || match.FoundUserID == userID {
			copy := *match
			all = append(all, &copy)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= len(all) {
		return []*models.Match{}, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *MemoryMatchStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.matches)), nil
}

func (s *MemoryMatchStore) CountByStatus(_ context.Context, status models.MatchStatus) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, match := range s.matches {
		if match.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *MemoryMatchStore) CountInRange(_ context.Context, start, end time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, match := range s.matches {
		if !match.CreatedAt.Before(start) && !match.CreatedAt.After(end) {
			n++
		}
	}
	return n, nil
}

type MemoryNotificationStore struct {
	mu            sync.RWMutex
	notifications map[string]*models.Notification
}

func NewMemoryNotificationStore() *MemoryNotificationStore {
	return &MemoryNotificationStore{notifications: make(map[string]*models.Notification)}
}

func (s *MemoryNotificationStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	copy := *n
	s.notifications[n.ID] = &copy
	return nil
}

func (s *MemoryNotificationStore) ListByUser(_ context.Context, userID string, limit int) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID == userID {
			copy := *n
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryNotificationStore) MarkRead(_ context.Context, id string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	n.Read = true
	copy := *n
	return &copy, nil
}

type MemoryUserStore struct {
	mu      sync.RWMutex
	users   map[string]*models.User
	byEmail map[string]string
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return ErrEmailExists
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	copy := *user
	s.users[user.ID] = &copy
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *MemoryUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copy := *user
	return &copy, nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	copy := *s.users[id]
	return &copy, nil
}

func (s *MemoryUserStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	if old.Email != user.Email {
		delete(s.byEmail, old.Email)
		s.byEmail[user.Email] = user.ID
	}
	copy := *user
	s.users[user.ID] = &copy
	return nil
}

func (s *MemoryUserStore) Search(_ context.Context, query string) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	out := make([]*models.User, 0)
	for _, user := range s.users {
		if strings.Contains(strings.ToLower(user.Name), q) || strings.Contains(strings.ToLower(user.Email), q) {
			copy := *user
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryUserStore) ListIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type MemoryReturnedItemStore struct {
	mu    sync.RWMutex
	items map[string]*models.ReturnedItem
}

func NewMemoryReturnedItemStore() *MemoryReturnedItemStore {
	return &MemoryReturnedItemStore{items: make(map[string]*models.ReturnedItem)}
}

func (s *MemoryReturnedItemStore) Create(_ context.Context, item *models.ReturnedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.ReturnedAt.IsZero() {
		item.ReturnedAt = time.Now().UTC()
	}
	copy := *item
	s.items[item.ID] = &copy
	return nil
}

func (s *MemoryReturnedItemStore) List(_ context.Context) ([]*models.ReturnedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.ReturnedItem, 0, len(s.items))
	for _, item := range s.items {
		copy := *item
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReturnedAt.After(out[j].ReturnedAt) })
	return out, nil
}

func (s *MemoryReturnedItemStore) ListByOwner(_ context.Context, userID string) ([]*models.ReturnedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.ReturnedItem, 0)
	for _, item := range s.items {
		if ownerOfSnapshot(item.OriginalItem) == userID {
			copy := *item
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReturnedAt.After(out[j].ReturnedAt) })
	return out, nil
}

type MemoryMessageStore struct {
	mu         sync.RWMutex
	messages   map[string]*models.Message
	byClientID map[string]string
}

func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{
		messages:   make(map[string]*models.Message),
		byClientID: make(map[string]string),
	}
}

func (s *MemoryMessageStore) Create(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	copy := *msg
	s.messages[msg.ID] = &copy
	if msg.ClientMessageID != "" {
		s.byClientID[msg.ClientMessageID] = msg.ID
	}
	return nil
}

func (s *MemoryMessageStore) GetByClientID(_ context.Context, clientMessageID string) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byClientID[clientMessageID]
	if !ok {
		return nil, ErrMessageNotFound
	}
	copy := *s.messages[id]
	return &copy, nil
}

func (s *MemoryMessageStore) ListByUser(_ context.Context, userID string) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Message, 0)
	for _, msg := range s.messages {
		if msg.SenderID == userID || msg.ReceiverID == userID {
			copy := *msg
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryMessageStore) ListBetween(_ context.Context, userID, partnerID string) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Message, 0)
	for _, msg := range s.messages {
		if (msg.SenderID == userID && msg.ReceiverID == partnerID) ||
			(msg.SenderID == partnerID && msg.ReceiverID == userID) {
			copy := *msg
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryMessageStore) MarkReadBetween(_ context.Context, senderID, receiverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, msg := range s.messages {
		if msg.SenderID == senderID && msg.ReceiverID == receiverID {
			msg.Read = true
		}
	}
	return nil
}
