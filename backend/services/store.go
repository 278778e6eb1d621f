package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"project/backend/models"
)

// GormProfileStore keeps profiles in the relational database. Registration
// creates the progress row; a missing row is recreated empty so accounts that
// predate progress tracking keep working.
type GormProfileStore struct {
	DB *gorm.DB
}

func NewGormProfileStore(db *gorm.DB) *GormProfileStore {
	return &GormProfileStore{DB: db}
}

func (s *GormProfileStore) ProgressByUserID(userID uint) (*models.UserProgress, error) {
	var p models.UserProgress
	err := s.DB.Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p = models.UserProgress{
			UserID:                userID,
			LastQuestionResetDate: time.Now(),
		}
		p.SetCompletedTopicList(nil)
		p.SetWeakTopicList(nil)
		if err := s.DB.Create(&p).Error; err != nil {
			return nil, err
		}
		return &p, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormProfileStore) SaveProgress(p *models.UserProgress) error {
	return s.DB.Save(p).Error
}

func (s *GormProfileStore) SaveActivity(p *models.UserProgress, score *models.QuizScore) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		return tx.Create(score).Error
	})
}

func (s *GormProfileStore) UpdateUserTier(userID uint, tier models.Tier) error {
	return s.DB.Model(&models.User{}).Where("id = ?", userID).Update("tier", tier).Error
}
