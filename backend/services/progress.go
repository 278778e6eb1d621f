package services

import (
	"time"

	"project/backend/models"
)

// quotaWindow is the rolling reset interval for the tutor question counter.
// It is an elapsed-duration policy; the activity streak below deliberately
// uses calendar-date equality instead, and the two must not be unified.
const quotaWindow = 24 * time.Hour

const (
	weakTopicThreshold = 70 // a score below this flags the topic
	weakTopicRecovery  = 85 // a score at or above this clears the flag

	quizProgressIncrement    = 5
	masteryProgressIncrement = 2
)

// ActivityEvent is one completed lesson folded into the profile.
type ActivityEvent struct {
	Topic       string
	Score       int // 0-100; mastery acknowledgements record a literal 100
	Difficulty  string
	MasteryOnly bool
}

// ProfileStore persists the results of profile transitions.
type ProfileStore interface {
	ProgressByUserID(userID uint) (*models.UserProgress, error)
	SaveProgress(p *models.UserProgress) error
	// SaveActivity writes the profile and the appended quiz score atomically.
	SaveActivity(p *models.UserProgress, score *models.QuizScore) error
	UpdateUserTier(userID uint, tier models.Tier) error
}

// ResetDailyQuotaIfExpired returns p with the question counter zeroed when the
// quota window has elapsed, and p unchanged otherwise. Applying it twice with
// the same now is the same as applying it once.
func ResetDailyQuotaIfExpired(p models.UserProgress, now time.Time) models.UserProgress {
	if now.Sub(p.LastQuestionResetDate) >= quotaWindow {
		p.DailyQuestionCount = 0
		p.LastQuestionResetDate = now
	}
	return p
}

// ApplyActivity folds one activity event into the profile and builds the quiz
// score row to append. The streak bumps once per calendar day; learning
// progress moves by 5 for a graded quiz and 2 for a mastery acknowledgement,
// clamped to 100; the topic joins the completed set; weak-topic membership
// follows the score: below 70 flags the topic, 85 or above clears it, and
// anything in between leaves the set exactly as it was.
func ApplyActivity(p models.UserProgress, ev ActivityEvent, now time.Time) (models.UserProgress, models.QuizScore) {
	if p.LastActiveDate == nil {
		p.Streak = 1
	} else if !sameCalendarDay(*p.LastActiveDate, now) {
		p.Streak++
	}

	increment := quizProgressIncrement
	scored := ev.Score
	if ev.MasteryOnly {
		increment = masteryProgressIncrement
		scored = 100
	}
	p.LearningProgress += increment
	if p.LearningProgress > 100 {
		p.LearningProgress = 100
	}

	completed := p.CompletedTopicList()
	if !containsTopic(completed, ev.Topic) {
		completed = append(completed, ev.Topic)
	}
	p.SetCompletedTopicList(completed)

	weak := p.WeakTopicList()
	switch {
	case scored < weakTopicThreshold:
		if !containsTopic(weak, ev.Topic) {
			weak = append(weak, ev.Topic)
		}
	case scored >= weakTopicRecovery:
		weak = removeTopic(weak, ev.Topic)
	}
	p.SetWeakTopicList(weak)

	active := now
	p.LastActiveDate = &active

	score := models.QuizScore{
		UserID:     p.UserID,
		Topic:      ev.Topic,
		Score:      scored,
		Difficulty: ev.Difficulty,
	}
	score.CreatedAt = now
	return p, score
}

// ProgressService loads a profile, applies a transition and persists the
// result. A failed save fails the operation; nothing is kept in memory across
// calls.
type ProgressService struct {
	store ProfileStore
	now   func() time.Time
}

func NewProgressService(store ProfileStore) *ProgressService {
	return &ProgressService{store: store, now: time.Now}
}

// RefreshQuota returns the profile with the quota window applied, persisting
// only when the window actually rolled over.
func (s *ProgressService) RefreshQuota(userID uint) (*models.UserProgress, error) {
	p, err := s.store.ProgressByUserID(userID)
	if err != nil {
		return nil, err
	}
	updated := ResetDailyQuotaIfExpired(*p, s.now())
	if !updated.LastQuestionResetDate.Equal(p.LastQuestionResetDate) {
		if err := s.store.SaveProgress(&updated); err != nil {
			return nil, err
		}
	}
	return &updated, nil
}

// CountQuestion increments the tutor question counter and persists it. The
// free-tier allowance is enforced by callers through CanAskQuestion before
// the provider is invoked, never here.
func (s *ProgressService) CountQuestion(userID uint) (*models.UserProgress, error) {
	p, err := s.store.ProgressByUserID(userID)
	if err != nil {
		return nil, err
	}
	updated := *p
	updated.DailyQuestionCount++
	if err := s.store.SaveProgress(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// RecordActivity folds a completed lesson into the profile and persists the
// profile together with the appended quiz score.
func (s *ProgressService) RecordActivity(userID uint, ev ActivityEvent) (*models.UserProgress, error) {
	p, err := s.store.ProgressByUserID(userID)
	if err != nil {
		return nil, err
	}
	updated, score := ApplyActivity(*p, ev, s.now())
	if err := s.store.SaveActivity(&updated, &score); err != nil {
		return nil, err
	}
	return &updated, nil
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func containsTopic(topics []string, topic string) bool {
	for _, t := range topics {
		if t == topic {
			return true
		}
	}
	return false
}

func removeTopic(topics []string, topic string) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		if t != topic {
			out = append(out, t)
		}
	}
	return out
}
