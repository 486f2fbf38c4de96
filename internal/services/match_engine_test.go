package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findit/backend/internal/models"
)

type scoreFunc func(lostDesc, foundDesc string) (float64, error)

func (f scoreFunc) Score(_ context.Context, lostDesc, foundDesc string) (float64, error) {
	return f(lostDesc, foundDesc)
}

type verifyFunc func(img1, img2 string) (bool, float64, error)

func (f verifyFunc) Verify(_ context.Context, img1, img2 string) (bool, float64, error) {
	return f(img1, img2)
}

func constantScore(score float64) scoreFunc {
	return func(string, string) (float64, error) { return score, nil }
}

type engineFixture struct {
	engine        *MatchEngine
	items         *MemoryItemStore
	matches       *MemoryMatchStore
	notifications *MemoryNotificationStore
	users         *MemoryUserStore
	returned      *MemoryReturnedItemStore
}

func newEngineFixture(t *testing.T, threshold float64, scorer SimilarityScorer, faces FaceVerifier) *engineFixture {
	t.Helper()

	f := &engineFixture{
		items:         NewMemoryItemStore(),
		matches:       NewMemoryMatchStore(),
		notifications: NewMemoryNotificationStore(),
		users:         NewMemoryUserStore(),
		returned:      NewMemoryReturnedItemStore(),
	}
	f.engine = NewMatchEngine(f.items, f.matches, f.notifications, f.users, f.returned, scorer, faces, threshold)
	return f
}

func (f *engineFixture) addUser(t *testing.T, name string) *models.User {
	t.Helper()

	user := &models.User{Name: name, Email: name + "@example.com"}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *engineFixture) addLost(t *testing.T, userID, category, description string) *models.LostItem {
	t.Helper()

	item := &models.LostItem{
		UserID:      userID,
		Category:    category,
		Description: description,
		Contact:     "555-0100",
		Location:    "Main Library",
		Date:        "2026-08-01",
		Time:        "14:00",
		UniquePoint: "scratch on the back",
	}
	require.NoError(t, f.items.CreateLost(context.Background(), item))
	return item
}

func (f *engineFixture) addFound(t *testing.T, userID, category, description string) *models.FoundItem {
	t.Helper()

	item := &models.FoundItem{
		UserID:      userID,
		Category:    category,
		Description: description,
		Contact:     "555-0200",
		Location:    "Cafeteria",
		Date:        "2026-08-02",
		Time:        "09:30",
	}
	require.NoError(t, f.items.CreateFound(context.Background(), item))
	return item
}

func TestMatchFoundItemCreatesPendingMatchAndNotifiesBothSides(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, 0.3, constantScore(0.8), nil)

	owner := f.addUser(t, "alice")
	finder := f.addUser(t, "bob")
	lost := f.addLost(t, owner.ID, "Electronics", "black leather wallet with a broken zipper")
	found := f.addFound(t, finder.ID, "Electronics", "found a black wallet near the cafeteria")

	created := f.engine.MatchFoundItem(ctx, found, finder.ID)
	require.Equal(t, 1, created)

	match, err := f.matches.GetByPair(ctx, lost.ID, found.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchPending, match.Status)
	assert.Equal(t, 0.8, match.SimilarityScore)
	assert.Equal(t, owner.ID, match.LostUserID)
	assert.Equal(t, finder.ID, match.FoundUserID)

	ownerNotifs, err := f.notifications.ListByUser(ctx, owner.ID, 0)
	require.NoError(t, err)
	require.Len(t, ownerNotifs, 1)
	assert.Equal(t, models.NotificationMatchFound, ownerNotifs[0].Type)
	assert.Contains(t, ownerNotifs[0].Message, "Your lost item")
	assert.Equal(t, match.ID, ownerNotifs[0].MatchID)
	require.NotNil(t, ownerNotifs[0].SimilarityScore)
	assert.Equal(t, 0.8, *ownerNotifs[0].SimilarityScore)

	finderNotifs, err := f.notifications.ListByUser(ctx, finder.ID, 0)
	require.NoError(t, err)
	require.Len(t, finderNotifs, 1)
	assert.Contains(t, finderNotifs[0].Message, "matches the item you found")
}

func TestMatchFoundItemThresholdCutoff(t *testing.T) {
	ctx := context.Background()

	scores := map[string]float64{
		"a": 0.05, "b": 0.10, "c": 0.29, "d": 0.30, "e": 0.31,
	}
	scorer := scoreFunc(func(lostDesc, _ string) (float64, error) {
		return scores[lostDesc], nil
	})

	f := newEngineFixture(t, 0.3, scorer, nil)
	owner := f.addUser(t, "owner")
	finder := f.addUser(t, "finder")
	for desc := range scores {
		f.addLost(t, owner.ID, "Documents", desc)
	}
	found := f.addFound(t, finder.ID, "Documents", "a stack of papers")

	created := f.engine.MatchFoundItem(ctx, found, finder.ID)
	assert.Equal(t, 2, created, "only scores at or above the threshold qualify")

	total, err := f.matches.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestMatchFoundItemClampsOutOfRangeScores(t *testing.T) {
	ctx := context.Background()

	scorer := scoreFunc(func(lostDesc, _ string) (float64, error) {
		if lostDesc == "high" {
			return 1.7, nil
		}
		return -0.2, nil
	})

	f := newEngineFixture(t, 0.3, scorer, nil)
	owner := f.addUser(t, "owner")
	finder := f.addUser(t, "finder")
	high := f.addLost(t, owner.ID, "Accessories", "high")
	f.addLost(t, owner.ID, "Accessories", "low")
	found := f.addFound(t, finder.ID, "Accessories", "a silver bracelet")

	created := f.engine.MatchFoundItem(ctx, found, finder.ID)
	require.Equal(t, 1, created)

	match, err := f.matches.GetByPair(ctx, high.ID, found.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, match.SimilarityScore, "scores above 1 clamp to 1")
}

func TestMatchFoundItemIsIdempotentPerPair(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, 0.3, constantScore(0.9), nil)

	owner := f.addUser(t, "owner")
	finder := f.addUser(t, "finder")
	f.addLost(t, owner.ID, "Clothing", "red winter jacket")
	found := f.addFound(t, finder.ID, "Clothing", "red jacket left on a bench")

	assert.Equal(t, 1, f.engine.MatchFoundItem(ctx, found, finder.ID))
	assert.Equal(t, 0, f.engine.MatchFoundItem(ctx, found, finder.ID))

	total, err := f.matches.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	ownerNotifs, err := f.notifications.ListByUser(ctx, owner.ID, 0)
	require.NoError(t, err)
	assert.Len(t, ownerNotifs, 1, "duplicate pass must not re-notify")
}

func TestMatchFoundItemOracleFailureSkipsOnlyThatCandidate(t *testing.T) {
	ctx := context.Background()

	scorer := scoreFunc(func(lostDesc, _ string) (float64, error) {
		if lostDesc == "second" {
			return 0, fmt.Errorf("oracle timeout")
		}
		return 0.5, nil
	})

	f := newEngineFixture(t, 0.3, scorer, nil)
	owner := f.addUser(t, "owner")
	finder := f.addUser(t, "finder")
	f.addLost(t, owner.ID, "Others", "first")
	f.addLost(t, owner.ID, "Others", "second")
	f.addLost(t, owner.ID, "Others", "third")
	found := f.addFound(t, finder.ID, "Others", "an umbrella")

	created := f.engine.MatchFoundItem(ctx, found, finder.ID)
	assert.Equal(t, 2, created)
}

func TestMatchFoundItemSelfMatchCreatesNoNotifications(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, 0.3, constantScore(0.9), nil)

	user := f.addUser(t, "solo")
	lost := f.addLost(t, user.ID, "Electronics", "lost my own phone")
	found := f.addFound(t, user.ID, "Electronics", "found a phone, maybe mine")

	created := f.engine.MatchFoundItem(ctx, found, user.ID)
	require.Equal(t, 1, created)

	_, err := f.matches.GetByPair(ctx, lost.ID, found.ID)
	require.NoError(t, err, "the match itself is still recorded")

	notifs, err := f.notifications.ListByUser(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, notifs)
}

func TestMatchFoundItemSkipsOwnerlessLostItems(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, 0.3, constantScore(0.9), nil)

	finder := f.addUser(t, "finder")
	f.addLost(t, "", "Documents", "a passport with no report owner")
	found := f.addFound(t, finder.ID, "Documents", "found a passport")

	created := f.engine.MatchFoundItem(ctx, found, finder.ID)
	assert.Equal(t, 0, created)
}

func TestMatchRepostedLostFallsBackToActingUser(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, 0.3, constantScore(0.7), nil)

	reposter := f.addUser(t, "reposter")
	finder := f.addUser(t, "finder")
	lost := f.addLost(t, "", "Bags", "brown leather backpack")
	found := f.addFound(t, finder.ID, "Bags", "backpack found at the gym")

	created := f.engine.MatchRepostedLost(ctx, lost, reposter.ID)
	require.Equal(t, 1, created)

	match, err := f.matches.GetByPair(ctx, lost.ID, found.ID)
	require.NoError(t, err)
	assert.Equal(t, reposter.ID, match.LostUserID)
	assert.Equal(t, finder.ID, match.FoundUserID)
}

func TestUpdateMatchStatusAllowsDeclinedToMatched(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, 0.3, constantScore(0.9), nil)

	owner := f.addUser(t, "owner")
	finder := f.addUser(t, "finder")
	match := &models.Match{
		LostItemID:  "lost-1",
		FoundItemID: "found-1",
		LostUserID:  owner.ID,
		FoundUserID: finder.ID,
	}
	require.NoError(t, f.matches.Create(ctx, match))

	_, err := f.engine.UpdateMatchStatus(ctx, match.ID, models.MatchDeclined, owner.ID)
	require.NoError(t, err)

	updated, err := f.engine.UpdateMatchStatus(ctx, match.ID, models.MatchMatched, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchMatched, updated.Status)

	finderNotifs, err := f.notifications.ListByUser(ctx, finder.ID, 0)
	require.NoError(t, err)
	require.NotEmpty(t, finderNotifs)
	assert.Equal(t, models.NotificationMatchUpdate, finderNotifs[0].Type)
	assert.Contains(t, finderNotifs[0].Message, "confirmed the match")
}

func TestUpdateMatchStatusRejectsPending(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, 0.3, constantScore(0.9), nil)

	match := &models.Match{LostItemID: "l", FoundItemID: "f", LostUserID: "u1", FoundUserID: "u2"}
	require.NoError(t, f.matches.Create(ctx, match))
	_, err := f.engine.UpdateMatchStatus(ctx, match.ID, models.MatchMatched, "u1")
	require.NoError(t, err)

	_, err = f.engine.UpdateMatchStatus(ctx, match.ID, models.MatchPending, "u1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	current, err := f.matches.GetByID(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchMatched, current.Status)
}

func TestUpdateMatchStatusUnknownMatch(t *testing.T) {
	f := newEngineFixture(t, 0.3, constantScore(0.9), nil)

	_, err := f.engine.UpdateMatchStatus(context.Background(), "no-such-match", models.MatchMatched, "u1")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestRecordMatchConflictReturnsExistingMatch(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, 0.3, constantScore(0.9), nil)

	owner := f.addUser(t, "owner")
	finder := f.addUser(t, "finder")
	lost := f.addLost(t, owner.ID, "Electronics", "silver laptop")
	found := f.addFound(t, finder.ID, "Electronics", "laptop in a grey sleeve")

	req := &models.RecordMatchRequest{
		LostItemID:      lost.ID,
		FoundItemID:     found.ID,
		SimilarityScore: 0.6,
	}
	first, err := f.engine.RecordMatch(ctx, req, owner.ID)
	require.NoError(t, err)

	second, err := f.engine.RecordMatch(ctx, req, owner.ID)
	assert.ErrorIs(t, err, ErrMatchExists)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
}

func TestReturnItemArchivesAndDeletesOriginal(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, 0.3, constantScore(0.9), nil)

	owner := f.addUser(t, "owner")
	lost := f.addLost(t, owner.ID, "Accessories", "gold ring with initials")

	returned, err := f.engine.ReturnItem(ctx, &models.ReturnItemRequest{
		ItemID:      lost.ID,
		ItemType:    "lost",
		ReturnNotes: "handed over at the front desk",
	}, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemTypeLost, returned.ItemType)
	assert.Equal(t, lost.ID, returned.ItemID)

	_, err = f.items.GetLost(ctx, lost.ID)
	assert.ErrorIs(t, err, ErrLostItemNotFound)

	archive, err := f.returned.List(ctx)
	require.NoError(t, err)
	require.Len(t, archive, 1)

	notifs, err := f.notifications.ListByUser(ctx, owner.ID, 0)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationItemReturned, notifs[0].Type)
	assert.Contains(t, notifs[0].Message, "marked as returned")
}

func TestBroadcastLostReportExcludesReporter(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, 0.3, constantScore(0.9), nil)

	reporter := f.addUser(t, "reporter")
	other1 := f.addUser(t, "neighbor")
	other2 := f.addUser(t, "stranger")
	lost := f.addLost(t, reporter.ID, "Electronics", "blue phone in a clear case")

	sent := f.engine.BroadcastLostReport(ctx, lost, reporter.ID)
	assert.Equal(t, 2, sent)

	reporterNotifs, err := f.notifications.ListByUser(ctx, reporter.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, reporterNotifs)

	for _, u := range []*models.User{other1, other2} {
		notifs, err := f.notifications.ListByUser(ctx, u.ID, 0)
		require.NoError(t, err)
		require.Len(t, notifs, 1)
		assert.Equal(t, models.NotificationLostItemReport, notifs[0].Type)
		assert.Contains(t, notifs[0].Message, "Someone lost a Electronics")
	}
}

func TestRepostLostItemBackfillsOwnerAndStampsTime(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, 0.3, constantScore(0.9), nil)

	reposter := f.addUser(t, "reposter")
	lost := f.addLost(t, "", "Documents", "student id card")

	updated, err := f.engine.RepostLostItem(ctx, lost.ID, reposter.ID)
	require.NoError(t, err)
	assert.Equal(t, reposter.ID, updated.UserID)
	require.NotNil(t, updated.RepostedAt)

	stored, err := f.items.GetLost(ctx, lost.ID)
	require.NoError(t, err)
	assert.Equal(t, reposter.ID, stored.UserID)
	require.NotNil(t, stored.RepostedAt)
}

func TestSearchLostPersonsRanksVerifiedResults(t *testing.T) {
	ctx := context.Background()

	photoA := []byte("photo-a")
	photoB := []byte("photo-b")
	photoC := []byte("photo-c")

	faces := verifyFunc(func(_, img2 string) (bool, float64, error) {
		switch img2 {
		case base64.StdEncoding.EncodeToString(photoA):
			return true, 0.35, nil
		case base64.StdEncoding.EncodeToString(photoB):
			return true, 0.72, nil
		default:
			return false, 0.9, nil
		}
	})

	f := newEngineFixture(t, 0.3, nil, faces)
	owner := f.addUser(t, "owner")

	a := f.addLost(t, owner.ID, models.CategoryLostPerson, "missing since Tuesday")
	a.Photo = photoA
	require.NoError(t, f.items.UpdateLost(ctx, a))

	b := f.addLost(t, owner.ID, models.CategoryLostPerson, "last seen downtown")
	b.Photo = photoB
	require.NoError(t, f.items.UpdateLost(ctx, b))

	c := f.addLost(t, owner.ID, models.CategoryLostPerson, "not a match")
	c.Photo = photoC
	require.NoError(t, f.items.UpdateLost(ctx, c))

	// No photo, never sent to the oracle.
	f.addLost(t, owner.ID, models.CategoryLostPerson, "report without a photo")

	results, err := f.engine.SearchLostPersons(ctx, "query-image")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, b.ID, results[0].ID)
	assert.Equal(t, a.ID, results[1].ID)
	assert.Equal(t, 0.72, results[0].MatchConfidence)
}

func TestDashboardStatsCountsByStatus(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, 0.3, constantScore(0.9), nil)

	owner := f.addUser(t, "owner")
	finder := f.addUser(t, "finder")
	f.addLost(t, owner.ID, "Electronics", "phone")
	f.addLost(t, owner.ID, "Clothing", "scarf")
	f.addFound(t, finder.ID, "Electronics", "a phone")

	pending := &models.Match{LostItemID: "l1", FoundItemID: "f1", LostUserID: owner.ID, FoundUserID: finder.ID}
	require.NoError(t, f.matches.Create(ctx, pending))
	done := &models.Match{LostItemID: "l2", FoundItemID: "f2", LostUserID: owner.ID, FoundUserID: finder.ID}
	require.NoError(t, f.matches.Create(ctx, done))
	_, err := f.matches.UpdateStatus(ctx, done.ID, models.MatchReturned)
	require.NoError(t, err)

	stats, err := f.engine.DashboardStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.LostItems)
	assert.EqualValues(t, 1, stats.FoundItems)
	assert.EqualValues(t, 2, stats.TotalMatches)
	assert.EqualValues(t, 1, stats.PendingItems)
	assert.EqualValues(t, 1, stats.ReturnedItems)
	assert.Len(t, stats.MonthlyData, 12)
}

func TestListUserMatchesResolvesBothSides(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, 0.3, constantScore(0.9), nil)

	owner := f.addUser(t, "owner")
	finder := f.addUser(t, "finder")
	lost := f.addLost(t, owner.ID, "Electronics", "tablet")
	found := f.addFound(t, finder.ID, "Electronics", "a tablet")

	require.Equal(t, 1, f.engine.MatchFoundItem(ctx, found, finder.ID))

	details, total, err := f.engine.ListUserMatches(ctx, owner.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, details, 1)
	require.NotNil(t, details[0].LostItem)
	assert.Equal(t, lost.ID, details[0].LostItem.ID)
	require.NotNil(t, details[0].FoundUser)
	assert.Equal(t, finder.ID, details[0].FoundUser.ID)
}
