package worker

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"mathclash/internal/models"
	"mathclash/internal/repository"
)

const tickInterval = time.Minute

// Sender delivers a broadcast message to a chat. The transport gateway
// implements it; a nil Sender disables chat delivery.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Mailer delivers admin notifications. *notify.EmailService implements
// it; a nil Mailer disables email delivery.
type Mailer interface {
	SendDailyDigest(ctx context.Context, day time.Time, entries []models.DailyEntry) error
	SendPrizeAnnouncement(ctx context.Context, month time.Time, winner models.RatingEntry) error
}

// BroadcastWorker runs the two periodic announcements: the daily top-3
// at UTC midnight and the monthly prize in the last minute of the month.
// It only reads from the ranking store.
type BroadcastWorker struct {
	ranking  *repository.RankingRepository
	notifier Mailer
	sender   Sender

	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool

	now func() time.Time

	lastDailyDay   string
	lastPrizeMonth string
}

// NewBroadcastWorker creates the worker. sender and notifier may be nil.
func NewBroadcastWorker(ranking *repository.RankingRepository, notifier Mailer, sender Sender) *BroadcastWorker {
	now := time.Now().UTC()
	return &BroadcastWorker{
		ranking:  ranking,
		notifier: notifier,
		sender:   sender,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		now:      time.Now,

		// Starting mid-day must not re-fire today's midnight broadcast
		lastDailyDay: now.Format("2006-01-02"),
	}
}

// Start begins the background broadcast loop
func (w *BroadcastWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	log.Println("Broadcast worker started")
	go w.run(ctx)
}

// Stop stops the loop and waits for it to drain
func (w *BroadcastWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	log.Println("Broadcast worker stopped")
}

func (w *BroadcastWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// tick fires each boundary at most once
func (w *BroadcastWorker) tick(ctx context.Context) {
	now := w.now().UTC()

	if day := now.Format("2006-01-02"); day != w.lastDailyDay {
		w.lastDailyDay = day
		w.broadcastDailyTop(ctx, now)
	}

	if month := now.Format("2006-01"); isLastMinuteOfMonth(now) && month != w.lastPrizeMonth {
		w.lastPrizeMonth = month
		w.announceMonthlyPrize(ctx, now)
	}
}

// broadcastDailyTop sends the all-time top-3 to every known chat and
// mails yesterday's daily leaderboard to the admin. The two are
// independent: the daily board has no qualifying floor, so yesterday can
// have activity while the ranked top is still empty.
func (w *BroadcastWorker) broadcastDailyTop(ctx context.Context, now time.Time) {
	top, err := w.ranking.GlobalRating(3)
	if err != nil {
		log.Printf("Daily broadcast error: %v", err)
		top = nil
	}
	if len(top) > 0 {
		var b strings.Builder
		b.WriteString("🏆 Ежедневный ТОП-3 игроков:\n\n")
		medals := []string{"🥇", "🥈", "🥉"}
		for i, e := range top {
			b.WriteString(fmt.Sprintf("%s %s — %d очков\n", medals[i], entryName(e.DisplayName, e.Username, e.UserID), e.TotalPoints))
		}
		w.sendToAll(ctx, b.String())
	}

	if w.notifier == nil {
		return
	}
	yesterday := now.Add(-24 * time.Hour)
	daily, err := w.ranking.DailyTop(10, yesterday)
	if err != nil {
		log.Printf("Daily digest error: %v", err)
		return
	}
	if err := w.notifier.SendDailyDigest(ctx, yesterday, daily); err != nil {
		log.Printf("Daily digest email error: %v", err)
	}
}

// announceMonthlyPrize congratulates the current leader in their chat
// and mails the admin so the prize can be paid out.
func (w *BroadcastWorker) announceMonthlyPrize(ctx context.Context, now time.Time) {
	top, err := w.ranking.GlobalRating(1)
	if err != nil {
		log.Printf("Monthly prize error: %v", err)
		return
	}
	if len(top) == 0 {
		return
	}
	winner := top[0]

	text := fmt.Sprintf("🎉 Поздравляем! %s занял первое место в месячном рейтинге и получает приз $10! Свяжитесь с админом для получения приза.",
		entryName(winner.DisplayName, winner.Username, winner.UserID))

	if w.sender != nil {
		user, err := w.ranking.GetUser(winner.UserID)
		if err != nil {
			log.Printf("Prize error: %v", err)
		} else if user != nil && user.ChatID != 0 {
			if err := w.sender.Send(ctx, user.ChatID, text); err != nil {
				log.Printf("Prize error: %v", err)
			}
		}
	}

	if w.notifier != nil {
		if err := w.notifier.SendPrizeAnnouncement(ctx, now, winner); err != nil {
			log.Printf("Prize email error: %v", err)
		}
	}
}

func (w *BroadcastWorker) sendToAll(ctx context.Context, text string) {
	if w.sender == nil {
		return
	}
	targets, err := w.ranking.BroadcastTargets()
	if err != nil {
		log.Printf("Broadcast error: %v", err)
		return
	}
	for _, t := range targets {
		if err := w.sender.Send(ctx, t.ChatID, text); err != nil {
			log.Printf("Broadcast error for chat %d: %v", t.ChatID, err)
		}
	}
}

// isLastMinuteOfMonth reports whether t (UTC) falls in the final minute
// of its calendar month
func isLastMinuteOfMonth(t time.Time) bool {
	return t.AddDate(0, 0, 1).Month() != t.Month() && t.Hour() == 23 && t.Minute() == 59
}

func entryName(displayName, username string, userID int64) string {
	if displayName != "" {
		return displayName
	}
	if username != "" {
		return username
	}
	return fmt.Sprintf("Игрок %d", userID)
}
