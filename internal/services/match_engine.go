package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/findit/backend/internal/models"
)

// MatchEngine owns match discovery and the match lifecycle: it scans the
// opposite item pool for a new report, scores candidate pairs against the
// similarity oracle, persists accepted matches, drives the status state
// machine and fans notifications out to the affected users.
type MatchEngine struct {
	items         ItemStore
	matches       MatchStore
	notifications NotificationStore
	users         UserStore
	returned      ReturnedItemStore
	scorer        SimilarityScorer
	faces         FaceVerifier

	// Minimum clamped similarity score for a pair to become a match.
	threshold float64

	// Deadline for one background discovery/fan-out batch.
	taskTimeout time.Duration
}

func NewMatchEngine(
	items ItemStore,
	matches MatchStore,
	notifications NotificationStore,
	users UserStore,
	returned ReturnedItemStore,
	scorer SimilarityScorer,
	faces FaceVerifier,
	threshold float64,
) *MatchEngine {
	return &MatchEngine{
		items:         items,
		matches:       matches,
		notifications: notifications,
		users:         users,
		returned:      returned,
		scorer:        scorer,
		faces:         faces,
		threshold:     threshold,
		taskTimeout:   2 * time.Minute,
	}
}

// runTask spawns background work detached from any request context. The
// originating HTTP request has already been answered by the time these run,
// so the task gets its own deadline and its own panic boundary.
func (e *MatchEngine) runTask(name string, fn func(ctx context.Context)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[%s] recovered from panic: %v", name, r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), e.taskTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// MatchFoundItem runs candidate discovery for a new found report: every lost
// item in the same category is scored, pairs at or above the threshold are
// persisted, and both reporters are notified. One oracle failure skips only
// that candidate. Returns the number of matches created.
func (e *MatchEngine) MatchFoundItem(ctx context.Context, found *models.FoundItem, actingUserID string) int {
	candidates, err := e.items.ListLostByCategory(ctx, found.Category)
	if err != nil {
		log.Printf("[match] listing lost items in category %q: %v", found.Category, err)
		return 0
	}
	log.Printf("[match] found item %s: %d lost candidates in category %q", found.ID, len(candidates), found.Category)

	created := 0
	for _, lost := range candidates {
		score, err := e.scorer.Score(ctx, lost.Description, found.Description)
		if err != nil {
			log.Printf("[match] oracle error for pair (%s, %s): %v", lost.ID, found.ID, err)
			continue
		}
		score = clampScore(score)
		if score < e.threshold {
			continue
		}

		// The lost side has no fallback on this path: a match without a
		// resolvable owner would be undeliverable.
		lostUserID := lost.UserID
		if lostUserID == "" {
			log.Printf("[match] skipping pair (%s, %s): lost item has no owner", lost.ID, found.ID)
			continue
		}
		foundUserID := found.UserID
		if foundUserID == "" {
			foundUserID = actingUserID
		}

		match := &models.Match{
			LostItemID:      lost.ID,
			FoundItemID:     found.ID,
			LostUserID:      lostUserID,
			FoundUserID:     foundUserID,
			SimilarityScore: score,
			Status:          models.MatchPending,
		}
		if err := e.matches.Create(ctx, match); err != nil {
			if err == ErrMatchExists {
				log.Printf("[match] pair (%s, %s) already matched, skipping", lost.ID, found.ID)
			} else {
				log.Printf("[match] persisting match for pair (%s, %s): %v", lost.ID, found.ID, err)
			}
			continue
		}
		created++
		log.Printf("[match] created match %s (score %.2f) between lost %s and found %s", match.ID, score, lost.ID, found.ID)

		e.notifyMatchFound(ctx, match, lost, found)
	}
	return created
}

// MatchRepostedLost is the repost counterpart of MatchFoundItem: the lost
// item is the trigger and the found pool supplies candidates. Both sides
// fall back to the acting user here, since the reposter is standing in for
// whichever identity the original report failed to capture.
func (e *MatchEngine) MatchRepostedLost(ctx context.Context, lost *models.LostItem, actingUserID string) int {
	candidates, err := e.items.ListFoundByCategory(ctx, lost.Category)
	if err != nil {
		log.Printf("[repost-match] listing found items in category %q: %v", lost.Category, err)
		return 0
	}
	log.Printf("[repost-match] lost item %s: %d found candidates in category %q", lost.ID, len(candidates), lost.Category)

	created := 0
	for _, found := range candidates {
		score, err := e.scorer.Score(ctx, lost.Description, found.Description)
		if err != nil {
			log.Printf("[repost-match] oracle error for pair (%s, %s): %v", lost.ID, found.ID, err)
			continue
		}
		score = clampScore(score)
		if score < e.threshold {
			continue
		}

		lostUserID := lost.UserID
		if lostUserID == "" {
			lostUserID = actingUserID
		}
		foundUserID := found.UserID
		if foundUserID == "" {
			foundUserID = actingUserID
		}
		if lostUserID == "" {
			log.Printf("[repost-match] skipping pair (%s, %s): no resolvable lost-side user", lost.ID, found.ID)
			continue
		}

		match := &models.Match{
			LostItemID:      lost.ID,
			FoundItemID:     found.ID,
			LostUserID:      lostUserID,
			FoundUserID:     foundUserID,
			SimilarityScore: score,
			Status:          models.MatchPending,
		}
		if err := e.matches.Create(ctx, match); err != nil {
			if err == ErrMatchExists {
				log.Printf("[repost-match] pair (%s, %s) already matched, skipping", lost.ID, found.ID)
			} else {
				log.Printf("[repost-match] persisting match for pair (%s, %s): %v", lost.ID, found.ID, err)
			}
			continue
		}
		created++

		e.notifyMatchFound(ctx, match, lost, found)
	}
	log.Printf("[repost-match] completed for lost item %s: created %d matches", lost.ID, created)
	return created
}

// notifyMatchFound sends one match_found notification to each side of a new
// match, with item details snapshotted so the notification outlives the
// items. No notifications when both sides are the same user. Failures are
// logged and swallowed; the match itself is already persisted.
func (e *MatchEngine) notifyMatchFound(ctx context.Context, match *models.Match, lost *models.LostItem, found *models.FoundItem) {
	if match.LostUserID == match.FoundUserID {
		log.Printf("[notify] match %s is a self-match, suppressing notifications", match.ID)
		return
	}

	now := time.Now().UTC()
	score := match.SimilarityScore
	base := models.Notification{
		Type:                 models.NotificationMatchFound,
		Title:                "Match Found!",
		MatchID:              match.ID,
		LostItemID:           lost.ID,
		FoundItemID:          found.ID,
		LostItemName:         lost.DisplayName(),
		LostItemDescription:  lost.Description,
		LostLocation:         lost.Location,
		LostDate:             lost.Date,
		LostTime:             lost.Time,
		LostCategory:         lost.Category,
		FoundItemName:        found.DisplayName(),
		FoundItemDescription: found.Description,
		FoundLocation:        found.Location,
		FoundDate:            found.Date,
		FoundTime:            found.Time,
		FoundCategory:        found.Category,
		MatchDate:            &now,
		SimilarityScore:      &score,
	}

	lostSide := base
	lostSide.UserID = match.LostUserID
	lostSide.Message = fmt.Sprintf("Good news! Your lost item '%s' matches a found item reported by another user.", lost.DisplayName())
	e.notify(ctx, &lostSide)

	foundSide := base
	foundSide.UserID = match.FoundUserID
	foundSide.Message = fmt.Sprintf("A lost item has been reported that matches the item you found: '%s'.", found.DisplayName())
	e.notify(ctx, &foundSide)
}

func (e *MatchEngine) notify(ctx context.Context, n *models.Notification) {
	if n.UserID == "" {
		return
	}
	if err := e.notifications.Create(ctx, n); err != nil {
		log.Printf("[notify] creating %s notification for user %s: %v", n.Type, n.UserID, err)
	}
}

// BroadcastLostReport tells every registered user except the reporter about
// a new lost item. Per-user failures are logged and delivery continues.
// Returns the number of notifications written.
func (e *MatchEngine) BroadcastLostReport(ctx context.Context, lost *models.LostItem, reporterID string) int {
	userIDs, err := e.users.ListIDs(ctx)
	if err != nil {
		log.Printf("[broadcast] listing users: %v", err)
		return 0
	}

	sent := 0
	for _, id := range userIDs {
		if id == reporterID {
			continue
		}
		n := &models.Notification{
			UserID:     id,
			Type:       models.NotificationLostItemReport,
			Title:      "New Lost Item Reported",
			Message:    fmt.Sprintf("Someone lost a %s: %s", lost.Category, lost.DisplayName()),
			LostItemID: lost.ID,
			ItemName:   lost.DisplayName(),
			Location:   lost.Location,
			Date:       lost.Date,
			Time:       lost.Time,
			Category:   lost.Category,
		}
		if err := e.notifications.Create(ctx, n); err != nil {
			log.Printf("[broadcast] notifying user %s about lost item %s: %v", id, lost.ID, err)
			continue
		}
		sent++
	}
	log.Printf("[broadcast] lost item %s announced to %d users", lost.ID, sent)
	return sent
}

// RepostLostItem re-activates an existing lost report: it stamps
// repostedAt and backfills the owner when the original report was made
// without one. The matching pass and owner notification run separately.
func (e *MatchEngine) RepostLostItem(ctx context.Context, id, actingUserID string) (*models.LostItem, error) {
	lost, err := e.items.GetLost(ctx, id)
	if err != nil {
		return nil, err
	}

	if lost.UserID == "" && actingUserID != "" {
		lost.UserID = actingUserID
	}
	now := time.Now().UTC()
	lost.RepostedAt = &now

	if err := e.items.UpdateLost(ctx, lost); err != nil {
		return nil, err
	}
	return lost, nil
}

func (e *MatchEngine) notifyRepost(ctx context.Context, lost *models.LostItem) {
	n := &models.Notification{
		UserID:     lost.UserID,
		Type:       models.NotificationLostItemRepost,
		Title:      "Item Reposted",
		Message:    fmt.Sprintf("Your lost item '%s' has been reposted for continued searching.", lost.DisplayName()),
		LostItemID: lost.ID,
		ItemName:   lost.DisplayName(),
		Location:   lost.Location,
		Date:       lost.Date,
		Time:       lost.Time,
		Category:   lost.Category,
	}
	e.notify(ctx, n)
}

// UpdateMatchStatus drives the match state machine. The status write is
// authoritative; notifying the other party is best effort and never rolls
// the transition back.
func (e *MatchEngine) UpdateMatchStatus(ctx context.Context, matchID string, status models.MatchStatus, actingUserID string) (*models.Match, error) {
	match, err := e.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.CanTransitionTo(status) {
		return nil, ErrInvalidTransition
	}

	updated, err := e.matches.UpdateStatus(ctx, matchID, status)
	if err != nil {
		return nil, err
	}

	other := updated.OtherParty(actingUserID)
	if other != "" && other != actingUserID {
		n := &models.Notification{
			UserID:  other,
			Type:    models.NotificationMatchUpdate,
			Title:   "Match Status Updated",
			Message: fmt.Sprintf("The other user %s for your item.", statusMessage(status)),
			MatchID: updated.ID,
		}
		e.notify(ctx, n)
	}

	return updated, nil
}

func statusMessage(status models.MatchStatus) string {
	switch status {
	case models.MatchMatched:
		return "confirmed the match"
	case models.MatchDeclined:
		return "declined the match"
	case models.MatchReturned:
		return "marked the item as returned"
	case models.MatchClaimed:
		return "claimed the item"
	default:
		return fmt.Sprintf("updated the status to %s", status)
	}
}

// RecordMatch persists a manually confirmed pairing. When the pair is
// already matched it returns the existing match together with
// ErrMatchExists so callers can surface the conflict without treating it
// as a failure.
func (e *MatchEngine) RecordMatch(ctx context.Context, req *models.RecordMatchRequest, actingUserID string) (*models.Match, error) {
	lost, err := e.items.GetLost(ctx, req.LostItemID)
	if err != nil {
		return nil, err
	}
	found, err := e.items.GetFound(ctx, req.FoundItemID)
	if err != nil {
		return nil, err
	}

	lostUserID := lost.UserID
	if lostUserID == "" {
		lostUserID = actingUserID
	}
	foundUserID := found.UserID
	if foundUserID == "" {
		foundUserID = actingUserID
	}

	match := &models.Match{
		LostItemID:      lost.ID,
		FoundItemID:     found.ID,
		LostUserID:      lostUserID,
		FoundUserID:     foundUserID,
		SimilarityScore: clampScore(req.SimilarityScore),
		Status:          models.MatchPending,
	}
	if err := e.matches.Create(ctx, match); err != nil {
		if err == ErrMatchExists {
			existing, lookupErr := e.matches.GetByPair(ctx, lost.ID, found.ID)
			if lookupErr == nil {
				return existing, ErrMatchExists
			}
		}
		return nil, err
	}

	if req.CreateNotifications {
		e.notifyMatchFound(ctx, match, lost, found)
	}
	return match, nil
}

// ReturnItem archives an item and removes the original: snapshot first,
// delete second. If the delete fails the system keeps both records, which
// is an acceptable degraded state; the snapshot is never lost.
func (e *MatchEngine) ReturnItem(ctx context.Context, req *models.ReturnItemRequest, actingUserID string) (*models.ReturnedItem, error) {
	var (
		snapshot interface{}
		itemType string
		ownerID  string
		name     string
		category string
		location string
		date     string
		photo    []byte
	)

	switch req.ItemType {
	case "lost":
		lost, err := e.items.GetLost(ctx, req.ItemID)
		if err != nil {
			return nil, err
		}
		snapshot, itemType, ownerID = lost, models.ItemTypeLost, lost.UserID
		name, category, location, date, photo = lost.DisplayName(), lost.Category, lost.Location, lost.Date, lost.Photo
	case "found":
		found, err := e.items.GetFound(ctx, req.ItemID)
		if err != nil {
			return nil, err
		}
		snapshot, itemType, ownerID = found, models.ItemTypeFound, found.UserID
		name, category, location, date, photo = found.DisplayName(), found.Category, found.Location, found.Date, found.Photo
	default:
		return nil, fmt.Errorf("invalid item type %q", req.ItemType)
	}

	returned := &models.ReturnedItem{
		ItemID:       req.ItemID,
		ItemType:     itemType,
		OriginalItem: snapshot,
		ReturnedBy:   actingUserID,
		ReturnNotes:  req.ReturnNotes,
		ItemName:     name,
		Category:     category,
		Location:     location,
		Date:         date,
		Photo:        photo,
	}
	if err := e.returned.Create(ctx, returned); err != nil {
		return nil, err
	}

	var delErr error
	if req.ItemType == "lost" {
		delErr = e.items.DeleteLost(ctx, req.ItemID)
	} else {
		delErr = e.items.DeleteFound(ctx, req.ItemID)
	}
	if delErr != nil {
		log.Printf("[return] archived item %s but failed to delete original: %v", req.ItemID, delErr)
	}

	if ownerID != "" {
		n := &models.Notification{
			UserID:   ownerID,
			Type:     models.NotificationItemReturned,
			Title:    "Item Returned",
			Message:  fmt.Sprintf("Your %s item \"%s\" has been marked as returned.", req.ItemType, name),
			ItemName: name,
		}
		e.notify(ctx, n)
	}

	return returned, nil
}

// SearchLostPersons compares a query photo against every lost-person report
// with a photo, via the face oracle. Results are a query-time ranking, never
// persisted as matches; verification failures skip the report.
func (e *MatchEngine) SearchLostPersons(ctx context.Context, imageB64 string) ([]models.FaceSearchResult, error) {
	reports, err := e.items.ListLostByCategory(ctx, models.CategoryLostPerson)
	if err != nil {
		return nil, err
	}

	results := make([]models.FaceSearchResult, 0)
	for _, report := range reports {
		if len(report.Photo) == 0 {
			continue
		}
		verified, distance, err := e.faces.Verify(ctx, imageB64, base64.StdEncoding.EncodeToString(report.Photo))
		if err != nil {
			log.Printf("[face-search] verifying against report %s: %v", report.ID, err)
			continue
		}
		if !verified {
			continue
		}
		results = append(results, models.FaceSearchResult{
			LostItem:        report,
			MatchConfidence: distance,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].MatchConfidence > results[j].MatchConfidence
	})
	return results, nil
}

// GetMatchDetail resolves a match plus its items and user summaries for
// display. Missing items or users leave the corresponding field nil rather
// than failing the lookup; the underlying item may have been returned.
func (e *MatchEngine) GetMatchDetail(ctx context.Context, matchID string) (*models.MatchDetail, error) {
	match, err := e.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return e.buildDetail(ctx, match), nil
}

// ListUserMatches pages through every match the user is on either side of.
func (e *MatchEngine) ListUserMatches(ctx context.Context, userID string, page, limit int) ([]*models.MatchDetail, int64, error) {
	matches, total, err := e.matches.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	details := make([]*models.MatchDetail, 0, len(matches))
	for _, match := range matches {
		details = append(details, e.buildDetail(ctx, match))
	}
	return details, total, nil
}

func (e *MatchEngine) buildDetail(ctx context.Context, match *models.Match) *models.MatchDetail {
	detail := &models.MatchDetail{Match: *match}

	if lost, err := e.items.GetLost(ctx, match.LostItemID); err == nil {
		detail.LostItem = lost
	}
	if found, err := e.items.GetFound(ctx, match.FoundItemID); err == nil {
		detail.FoundItem = found
	}
	if user, err := e.users.GetByID(ctx, match.LostUserID); err == nil {
		detail.LostUser = user.Summary()
	}
	if user, err := e.users.GetByID(ctx, match.FoundUserID); err == nil {
		detail.FoundUser = user.Summary()
	}
	return detail
}

// DashboardStats aggregates the read-side counters for the dashboard.
func (e *MatchEngine) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	lostCount, err := e.items.CountLost(ctx)
	if err != nil {
		return nil, err
	}
	foundCount, err := e.items.CountFound(ctx)
	if err != nil {
		return nil, err
	}
	matchCount, err := e.matches.Count(ctx)
	if err != nil {
		return nil, err
	}
	returnedCount, err := e.matches.CountByStatus(ctx, models.MatchReturned)
	if err != nil {
		return nil, err
	}
	pendingCount, err := e.matches.CountByStatus(ctx, models.MatchPending)
	if err != nil {
		return nil, err
	}

	year := time.Now().UTC().Year()
	monthly := make([]models.MonthlyStats, 0, 12)
	for month := time.January; month <= time.December; month++ {
		start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

		lost, err := e.items.CountLostInRange(ctx, start, end)
		if err != nil {
			return nil, err
		}
		found, err := e.items.CountFoundInRange(ctx, start, end)
		if err != nil {
			return nil, err
		}
		matches, err := e.matches.CountInRange(ctx, start, end)
		if err != nil {
			return nil, err
		}
		monthly = append(monthly, models.MonthlyStats{
			Month:   int(month),
			Lost:    lost,
			Found:   found,
			Matches: matches,
		})
	}

	return &models.DashboardStats{
		LostItems:     lostCount,
		FoundItems:    foundCount,
		TotalMatches:  matchCount,
		ReturnedItems: returnedCount,
		PendingItems:  pendingCount,
		MonthlyData:   monthly,
	}, nil
}

// Async entry points used by handlers after the response has been written.

func (e *MatchEngine) MatchFoundItemAsync(found *models.FoundItem, actingUserID string) {
	e.runTask("match-found", func(ctx context.Context) {
		e.MatchFoundItem(ctx, found, actingUserID)
	})
}

func (e *MatchEngine) BroadcastLostReportAsync(lost *models.LostItem, reporterID string) {
	e.runTask("broadcast-lost", func(ctx context.Context) {
		e.BroadcastLostReport(ctx, lost, reporterID)
	})
}

// RepostFanoutAsync notifies the owner about the repost, then reruns
// discovery against the found pool.
func (e *MatchEngine) RepostFanoutAsync(lost *models.LostItem, actingUserID string) {
	e.runTask("repost-fanout", func(ctx context.Context) {
		e.notifyRepost(ctx, lost)
		e.MatchRepostedLost(ctx, lost, actingUserID)
	})
}
