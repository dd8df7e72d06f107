package service

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mathclash/internal/cache"
	"mathclash/internal/game"
	"mathclash/internal/models"
	"mathclash/internal/repository"
)

const (
	globalTopLimit = 15
	dailyTopLimit  = 10
)

var correctMessages = []string{
	"✅ Правильно! Отлично! 🎉",
	"✅ Верно! Ты математический гений! 🧙‍♂️",
	"✅ Супер! Так держать! 🚀 +%d очков!",
	"✅ Браво! Ты быстро учишься! 🌟 +%d очков!",
	"✅ Фантастика! Звезда математики! ⭐ +%d очков!",
}

var incorrectMessages = []string{
	"❌ Почти! Правильный ответ %d. Попробуй еще! 💪",
	"❌ Не совсем! Это было %d. Следующий получится! 👍",
	"❌ Хорошая попытка! Правильно было %d. Продолжай! 🏃‍♂️",
	"❌ Близко! Ответ %d. Практика ведет к совершенству! 📚",
}

// GameService is the session state machine. It owns the in-memory
// session map, dispatches inbound events, and returns render intents.
// Sessions are created on first contact, never expire on their own, and
// are wiped on reset; they survive nothing past a process restart.
type GameService struct {
	ranking      *repository.RankingRepository
	achievements *repository.AchievementRepository
	topCache     *cache.LeaderboardCache

	mu       sync.Mutex
	sessions map[int64]*models.Session

	now func() time.Time
}

// NewGameService creates the state machine. topCache may be nil.
func NewGameService(ranking *repository.RankingRepository, achievements *repository.AchievementRepository, topCache *cache.LeaderboardCache) *GameService {
	return &GameService{
		ranking:      ranking,
		achievements: achievements,
		topCache:     topCache,
		sessions:     make(map[int64]*models.Session),
		now:          time.Now,
	}
}

// HandleEvent dispatches one inbound event for a user and returns the
// reply to render. A returned error means persistent state could not be
// written and the attempt must be retried by the user; read failures
// degrade to zeroed screens instead.
//
// The mutex guards only the session map: the transport delivers one
// user's events in order, so a session is never touched by two events
// at once, and concurrent users contend only in the store's own
// transactions.
func (s *GameService) HandleEvent(ctx context.Context, userID, chatID int64, identity models.Identity, ev models.Event) (models.Reply, error) {
	sess := s.session(userID)

	switch ev.Type {
	case models.EventStart:
		return s.handleStart(userID, chatID, identity), nil
	case models.EventHelp:
		return helpReply(), nil
	case models.EventMainMenu:
		sess.Mode = models.ModeIdle
		sess.Pending = nil
		return mainMenuReply("Выбери режим игры:"), nil
	case models.EventDifficulty:
		return s.handleDifficulty(sess, ev)
	case models.EventCompetitionMenu:
		return competitionMenuReply(), nil
	case models.EventCompetition:
		return s.handleCompetitionStart(sess, ev)
	case models.EventAnswer:
		return s.handleAnswer(ctx, sess, identity, ev)
	case models.EventNext:
		return s.handleNext(sess, ev)
	case models.EventFinish:
		return s.handleFinish(sess), nil
	case models.EventRating:
		return s.handleRating(userID), nil
	case models.EventTop:
		return s.handleTop(ctx), nil
	case models.EventDaily:
		return s.handleDaily(), nil
	case models.EventAchievements:
		return s.handleAchievements(userID), nil
	case models.EventResetConfirm:
		return resetConfirmReply(), nil
	case models.EventReset:
		return s.handleReset(ctx, sess)
	default:
		return mainMenuReply("Выбери режим игры:"), nil
	}
}

// session returns the user's session, creating it on first contact
func (s *GameService) session(userID int64) *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions[userID]
	if sess == nil {
		sess = &models.Session{UserID: userID, Mode: models.ModeIdle}
		s.sessions[userID] = sess
	}
	return sess
}

func (s *GameService) dropSession(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

func (s *GameService) handleStart(userID, chatID int64, identity models.Identity) models.Reply {
	if chatID != 0 {
		if err := s.ranking.UpdateChatID(userID, chatID); err != nil {
			log.Printf("Error saving chat_id for user %d: %v", userID, err)
		}
	}

	name := identity.DisplayName
	if name == "" {
		name = identity.Username
	}
	text := fmt.Sprintf(
		"Привет %s! 👋\n\n"+
			"Я твой помощник в изучении таблицы умножения! 🧮\n"+
			"Соревнуйся с другими игроками и поднимайся в рейтинге! 🏆\n\n"+
			"Каждый месяц приз $10 за первое место в рейтинге! 🎁\n"+
			"Следи за топом и участвуй!\n\n"+
			"Выбери режим игры:", name)
	return models.Reply{Text: text, Choices: mainMenuChoices()}
}

func (s *GameService) handleDifficulty(sess *models.Session, ev models.Event) (models.Reply, error) {
	difficulty, ok := game.ParseDifficulty(ev.Difficulty)
	if !ok {
		return mainMenuReply("Выбери режим игры:"), nil
	}
	sess.Mode = models.ModePractice
	sess.Difficulty = string(difficulty)
	return s.askQuestion(sess)
}

func (s *GameService) handleCompetitionStart(sess *models.Session, ev models.Event) (models.Reply, error) {
	if ev.DurationSec <= 0 {
		return competitionMenuReply(), nil
	}
	sess.Mode = models.ModeCompetition
	sess.Difficulty = string(game.DifficultyMedium)
	sess.CompetitionStartedAt = s.now()
	sess.CompetitionDuration = time.Duration(ev.DurationSec) * time.Second
	sess.SolvedCount = 0
	return s.askQuestion(sess)
}

func (s *GameService) handleNext(sess *models.Session, ev models.Event) (models.Reply, error) {
	if sess.Mode == models.ModeCompetition {
		return s.askQuestion(sess)
	}
	if difficulty, ok := game.ParseDifficulty(ev.Difficulty); ok {
		sess.Difficulty = string(difficulty)
	}
	if sess.Difficulty == "" {
		return mainMenuReply("Выбери режим игры:"), nil
	}
	sess.Mode = models.ModePractice
	return s.askQuestion(sess)
}

// askQuestion generates and arms the next pending question. In
// competition mode the text carries the remaining time, clamped to zero.
func (s *GameService) askQuestion(sess *models.Session) (models.Reply, error) {
	q, err := game.Generate(game.Difficulty(sess.Difficulty))
	if err != nil {
		return models.Reply{}, err
	}

	sess.Pending = &models.PendingQuestion{
		ID:      uuid.NewString(),
		Text:    q.Text,
		Answer:  q.Answer,
		Choices: q.Choices,
	}
	sess.QuestionStartedAt = s.now()

	text := q.Text
	if sess.Mode == models.ModeCompetition {
		remaining := sess.CompetitionRemaining(s.now())
		text = fmt.Sprintf("⏱️ %dс | %s", int(remaining.Seconds()), text)
	}

	var choices []models.Choice
	for _, answer := range sess.Pending.Choices {
		choices = append(choices, models.Choice{
			Label: fmt.Sprintf("%d", answer),
			Event: models.Event{
				Type:       models.EventAnswer,
				QuestionID: sess.Pending.ID,
				Answer:     answer,
			},
		})
	}
	if sess.Mode != models.ModeCompetition {
		choices = append(choices, mainMenuChoice())
	}

	return models.Reply{Text: text, Choices: choices}, nil
}

func (s *GameService) handleAnswer(ctx context.Context, sess *models.Session, identity models.Identity, ev models.Event) (models.Reply, error) {
	pending := sess.Pending
	if pending == nil || pending.ID != ev.QuestionID {
		// Stale button press: the question was already answered or the
		// session moved on. Not an attempt, not an error.
		return models.Reply{
			Text:    "Этот вопрос уже не активен.",
			Choices: []models.Choice{mainMenuChoice()},
		}, nil
	}
	sess.Pending = nil

	latency := s.now().Sub(sess.QuestionStartedAt)
	if latency < 0 {
		latency = 0
	}
	correct := ev.Answer == pending.Answer
	points := game.Score(correct, latency)
	fast := correct && latency < game.FastAnswerThreshold

	user, err := s.ranking.RecordAttempt(sess.UserID, identity, correct, points, fast)
	if err != nil {
		return models.Reply{}, fmt.Errorf("failed to record attempt: %w", err)
	}

	// Count a competition solve only once it is durably recorded, so the
	// finish summary never reports more than the store holds
	if correct && sess.Mode == models.ModeCompetition {
		sess.SolvedCount++
	}

	var text string
	if correct {
		text = pickMessage(correctMessages, points)
		if latency < game.QuickPraiseThreshold {
			text += " ⚡ Быстро!"
		}
	} else {
		text = pickMessage(incorrectMessages, pending.Answer)
	}

	if correct && user.Qualified() {
		if line := s.rankLine(user.ID); line != "" {
			text += line
		}
	}

	for _, badge := range s.unlockNewBadges(user) {
		text += fmt.Sprintf("\n🏅 Новое достижение: %s — %s", badge.Name, badge.Description)
	}

	return models.Reply{Text: text, Choices: afterAnswerChoices(sess)}, nil
}

// rankLine returns the global-rank suffix, or "" when ranking reads fail
func (s *GameService) rankLine(userID int64) string {
	rank, err := s.ranking.RankOf(userID)
	if err != nil || rank == 0 {
		if err != nil {
			log.Printf("Error showing rank for user %d: %v", userID, err)
		}
		return ""
	}
	total, err := s.ranking.TotalQualifying()
	if err != nil {
		log.Printf("Error counting qualifying users: %v", err)
		return ""
	}
	return fmt.Sprintf("\n\n🏆 Твой ранг: %d/%d", rank, total)
}

// unlockNewBadges persists every badge the user now satisfies but has
// not unlocked yet. Unlock failures are logged and retried naturally on
// the next correct answer; badges are monotonic either way.
func (s *GameService) unlockNewBadges(user *models.User) []game.Badge {
	unlocked, err := s.achievements.ListIDs(user.ID)
	if err != nil {
		log.Printf("Error listing achievements for user %d: %v", user.ID, err)
		return nil
	}
	have := make(map[string]bool, len(unlocked))
	for _, id := range unlocked {
		have[id] = true
	}

	var earned []game.Badge
	for _, id := range game.Evaluate(user) {
		if have[id] {
			continue
		}
		if err := s.achievements.Unlock(user.ID, id); err != nil {
			log.Printf("Error unlocking achievement %s for user %d: %v", id, user.ID, err)
			continue
		}
		if badge, ok := game.BadgeByID(id); ok {
			earned = append(earned, badge)
		}
	}
	return earned
}

func (s *GameService) handleFinish(sess *models.Session) models.Reply {
	solved := sess.SolvedCount
	seconds := int(sess.CompetitionDuration.Seconds())

	rate := 0.0
	if seconds > 0 {
		rate = float64(solved) / float64(seconds)
	}

	text := fmt.Sprintf(
		"🏁 Соревнование завершено!\n\n"+
			"⏱️ Время: %d секунд\n"+
			"✅ Решено примеров: %d\n"+
			"📊 Скорость: %.1f примеров/секунду\n\n", seconds, solved, rate)

	switch {
	case rate > 1:
		text += "⚡ Невероятная скорость! Ты супер! 🚀"
	case rate > 0.5:
		text += "🏃‍♂️ Отличный темп! Так держать! 👍"
	default:
		text += "💪 Хорошая попытка! Тренируйся дальше! 🌟"
	}

	sess.Mode = models.ModeIdle
	sess.Pending = nil
	sess.SolvedCount = 0

	return models.Reply{
		Text: text,
		Choices: []models.Choice{
			{Label: "🎮 Еще раз", Event: models.Event{Type: models.EventCompetitionMenu}},
			mainMenuChoice(),
		},
	}
}

func (s *GameService) handleRating(userID int64) models.Reply {
	user, err := s.ranking.GetUser(userID)
	if err != nil {
		log.Printf("Error getting user rating for %d: %v", userID, err)
		user = nil
	}

	var correct, attempts, points, rank, total int
	var accuracy float64
	level := "🎒 Новичок"
	if user != nil {
		correct = user.TotalCorrect
		attempts = user.TotalAttempts
		points = user.TotalPoints
		accuracy = user.Accuracy()
		if user.Level != "" {
			level = user.Level
		}
		rank, err = s.ranking.RankOf(userID)
		if err != nil {
			log.Printf("Error getting rank for %d: %v", userID, err)
			rank = 0
		}
		total, err = s.ranking.TotalQualifying()
		if err != nil {
			log.Printf("Error counting qualifying users: %v", err)
			total = 0
		}
	}

	text := fmt.Sprintf(
		"📊 ТВОЙ РЕЙТИНГ\n\n"+
			"🎯 Уровень: %s\n"+
			"⭐ Очки: %d\n"+
			"🏆 Глобальный ранг: %d/%d\n"+
			"✅ Правильно: %d\n"+
			"❌ Всего попыток: %d\n"+
			"🎯 Точность: %.1f%%\n\n",
		level, points, rank, total, correct, attempts, accuracy)

	switch {
	case attempts == 0:
		text += "Давай начнем учиться! 🚀"
	case rank >= 1 && rank <= 3:
		text += "Ты в тройке лучших! Супер! 🌟"
	case rank >= 4 && rank <= 10:
		text += "Ты в топ-10! Отлично! ⭐"
	case accuracy < 50:
		text += "Продолжай тренироваться! Ты становишься лучше! 💪"
	case accuracy < 75:
		text += "Хороший прогресс! Так держать! 👍"
	default:
		text += "Отличная работа! Ты звезда математики! 🌟"
	}

	return models.Reply{
		Text: text,
		Choices: []models.Choice{
			{Label: "🏆 Топ игроков", Event: models.Event{Type: models.EventTop}},
			mainMenuChoice(),
			{Label: "🔄 Сбросить", Event: models.Event{Type: models.EventResetConfirm}},
		},
	}
}

func (s *GameService) handleTop(ctx context.Context) models.Reply {
	entries, hit := s.topCache.GetGlobalTop(ctx, globalTopLimit)
	if !hit {
		var err error
		entries, err = s.ranking.GlobalRating(globalTopLimit)
		if err != nil {
			log.Printf("Error getting global rating: %v", err)
			entries = nil
		} else {
			s.topCache.SetGlobalTop(ctx, globalTopLimit, entries)
		}
	}
	total, err := s.ranking.TotalQualifying()
	if err != nil {
		log.Printf("Error counting qualifying users: %v", err)
		total = 0
	}

	var text string
	if len(entries) == 0 {
		text = "🏆 Топ игроков\n\nПока никто не играл достаточно для рейтинга! Будь первым! 🚀"
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, "🏆 ТОП-%d ИГРОКОВ\n\n", globalTopLimit)
		for i, e := range entries {
			fmt.Fprintf(&b, "%s%d. %s - %d очков\n", medal(i+1), i+1, entryName(e.DisplayName, e.Username, e.UserID), e.TotalPoints)
			fmt.Fprintf(&b, "   ✅ %d/%d (%.1f%%)\n\n", e.TotalCorrect, e.TotalAttempts, e.Accuracy)
		}
		fmt.Fprintf(&b, "Всего активных игроков: %d 👥", total)
		text = b.String()
	}

	return models.Reply{
		Text: text,
		Choices: []models.Choice{
			mainMenuChoice(),
			{Label: "📊 Мой рейтинг", Event: models.Event{Type: models.EventRating}},
		},
	}
}

func (s *GameService) handleDaily() models.Reply {
	entries, err := s.ranking.DailyTop(dailyTopLimit, s.now())
	if err != nil {
		log.Printf("Error getting daily rating: %v", err)
		entries = nil
	}

	var text string
	if len(entries) == 0 {
		text = "📅 Сегодня еще никто не играл! Будь первым! 🚀"
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, "📅 ТОП-%d ЗА СЕГОДНЯ\n\n", dailyTopLimit)
		for i, e := range entries {
			fmt.Fprintf(&b, "%s%d. %s - %d очков\n", medal(i+1), i+1, entryName(e.DisplayName, e.Username, e.UserID), e.Points)
		}
		text = b.String()
	}

	return models.Reply{
		Text: text,
		Choices: []models.Choice{
			{Label: "🏆 Общий рейтинг", Event: models.Event{Type: models.EventTop}},
			mainMenuChoice(),
		},
	}
}

func (s *GameService) handleAchievements(userID int64) models.Reply {
	unlocked, err := s.achievements.ListIDs(userID)
	if err != nil {
		log.Printf("Error getting achievements for user %d: %v", userID, err)
		unlocked = nil
	}
	have := make(map[string]bool, len(unlocked))
	for _, id := range unlocked {
		have[id] = true
	}

	var b strings.Builder
	b.WriteString("🏆 ТВОИ ДОСТИЖЕНИЯ\n\n")
	obtained := 0
	for _, badge := range game.Badges {
		if have[badge.ID] {
			fmt.Fprintf(&b, "✅ %s - %s\n", badge.Name, badge.Description)
			obtained++
		} else {
			fmt.Fprintf(&b, "🔒 %s - ???\n", badge.Name)
		}
	}
	fmt.Fprintf(&b, "\n🎯 Получено: %d/%d", obtained, len(game.Badges))

	return models.Reply{
		Text:    b.String(),
		Choices: []models.Choice{mainMenuChoice()},
	}
}

func (s *GameService) handleReset(ctx context.Context, sess *models.Session) (models.Reply, error) {
	if err := s.ranking.ResetUser(sess.UserID); err != nil {
		return models.Reply{}, fmt.Errorf("failed to reset user %d: %w", sess.UserID, err)
	}
	s.dropSession(sess.UserID)
	s.topCache.Invalidate(ctx)

	return models.Reply{
		Text:    "Прогресс сброшен! 🆕\nНачинаем заново! 🚀",
		Choices: mainMenuChoices(),
	}, nil
}

func helpReply() models.Reply {
	text := "🎮 Игра в таблицу умножения\n\n" +
		"Как играть:\n" +
		"• Выбери уровень сложности\n" +
		"• Решай примеры на умножение\n" +
		"• После ответа ты можешь выбрать следующий вопрос или вернуться в меню\n" +
		"• Следи за своим прогрессом в рейтинге\n\n" +
		"📊 Ты можешь проверять свой рейтинг в любое время!\n" +
		"🏆 Соревнуйся с другими игроками!\n\n" +
		"Режимы:\n" +
		"• Обычный - учись в своем темпе\n" +
		"• Соревнование - реши как можно больше за время"
	return models.Reply{Text: text, Choices: []models.Choice{mainMenuChoice()}}
}

func resetConfirmReply() models.Reply {
	return models.Reply{
		Text: "⚠️ Ты уверен, что хочешь сбросить свой прогресс?\nЭто действие нельзя отменить!",
		Choices: []models.Choice{
			{Label: "✅ Да, сбросить", Event: models.Event{Type: models.EventReset}},
			{Label: "❌ Отмена", Event: models.Event{Type: models.EventRating}},
		},
	}
}

func competitionMenuReply() models.Reply {
	return models.Reply{
		Text: "⏱️ Выбери длительность соревнования:",
		Choices: []models.Choice{
			{Label: "30 секунд ⚡", Event: models.Event{Type: models.EventCompetition, DurationSec: 30}},
			{Label: "60 секунд 🏃‍♂️", Event: models.Event{Type: models.EventCompetition, DurationSec: 60}},
			{Label: "120 секунд 🏆", Event: models.Event{Type: models.EventCompetition, DurationSec: 120}},
			{Label: "🔙 Назад", Event: models.Event{Type: models.EventMainMenu}},
		},
	}
}

func mainMenuReply(text string) models.Reply {
	return models.Reply{Text: text, Choices: mainMenuChoices()}
}

func mainMenuChoices() []models.Choice {
	return []models.Choice{
		{Label: fmt.Sprintf("Легкий (%s) 🟢", game.DifficultyEasy.RangeLabel()), Event: models.Event{Type: models.EventDifficulty, Difficulty: string(game.DifficultyEasy)}},
		{Label: fmt.Sprintf("Средний (%s) 🟡", game.DifficultyMedium.RangeLabel()), Event: models.Event{Type: models.EventDifficulty, Difficulty: string(game.DifficultyMedium)}},
		{Label: fmt.Sprintf("Сложный (%s) 🔴", game.DifficultyHard.RangeLabel()), Event: models.Event{Type: models.EventDifficulty, Difficulty: string(game.DifficultyHard)}},
		{Label: fmt.Sprintf("Гений (%s) 🧠", game.DifficultyGenius.RangeLabel()), Event: models.Event{Type: models.EventDifficulty, Difficulty: string(game.DifficultyGenius)}},
		{Label: "Соревнование ⏱️", Event: models.Event{Type: models.EventCompetitionMenu}},
		{Label: "Рейтинг дня 📅", Event: models.Event{Type: models.EventDaily}},
		{Label: "Мой рейтинг 📊", Event: models.Event{Type: models.EventRating}},
		{Label: "Топ игроков 🏆", Event: models.Event{Type: models.EventTop}},
		{Label: "Достижения ⭐", Event: models.Event{Type: models.EventAchievements}},
		{Label: "Помощь ❓", Event: models.Event{Type: models.EventHelp}},
	}
}

func mainMenuChoice() models.Choice {
	return models.Choice{Label: "🔙 Главное меню", Event: models.Event{Type: models.EventMainMenu}}
}

func afterAnswerChoices(sess *models.Session) []models.Choice {
	var choices []models.Choice
	if sess.Difficulty != "" {
		choices = append(choices, models.Choice{
			Label: "➡️ Следующий вопрос",
			Event: models.Event{Type: models.EventNext, Difficulty: sess.Difficulty},
		})
	}
	if sess.Mode == models.ModeCompetition {
		choices = append(choices, models.Choice{
			Label: "🏁 Завершить соревнование",
			Event: models.Event{Type: models.EventFinish},
		})
	}
	return append(choices, mainMenuChoice())
}

// pickMessage picks a random pool entry, formatting the value in when
// the entry has a placeholder
func pickMessage(pool []string, value int) string {
	msg := pool[rand.Intn(len(pool))]
	if strings.Contains(msg, "%d") {
		return fmt.Sprintf(msg, value)
	}
	return msg
}

func medal(position int) string {
	switch position {
	case 1:
		return "🥇 "
	case 2:
		return "🥈 "
	case 3:
		return "🥉 "
	default:
		return ""
	}
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
