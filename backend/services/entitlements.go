package services

import "project/backend/models"

// Capability names a feature that a subscription tier may unlock.
type Capability string

const (
	CapAdvancedDifficulty Capability = "advanced_difficulty"
	CapExamQuiz           Capability = "exam_quiz"
	CapDocumentAnalysis   Capability = "document_analysis"
	CapUnlimitedQuestions Capability = "unlimited_questions"
)

// FreeDailyQuestionLimit bounds tutor questions per quota window on the free
// tier. Paid tiers are exempt from the counter entirely.
const FreeDailyQuestionLimit = 100

// Premium and pro currently unlock the same set. They are kept as separate
// capability lists rather than an ordered enum so the sets can diverge.
var tierCapabilities = map[models.Tier][]Capability{
	models.TierFree: {},
	models.TierPremium: {
		CapAdvancedDifficulty,
		CapExamQuiz,
		CapDocumentAnalysis,
		CapUnlimitedQuestions,
	},
	models.TierPro: {
		CapAdvancedDifficulty,
		CapExamQuiz,
		CapDocumentAnalysis,
		CapUnlimitedQuestions,
	},
}

// TierCapabilities returns the capabilities unlocked by tier. Unknown tiers
// unlock nothing.
func TierCapabilities(tier models.Tier) []Capability {
	return tierCapabilities[tier]
}

func HasCapability(tier models.Tier, capability Capability) bool {
	for _, c := range TierCapabilities(tier) {
		if c == capability {
			return true
		}
	}
	return false
}

// IsFeatureLocked reports whether using capability requires an upgrade for
// tier.
func IsFeatureLocked(tier models.Tier, capability Capability) bool {
	return !HasCapability(tier, capability)
}

// CanAskQuestion applies the free-tier daily allowance. The counter is not
// bounded at increment time; this predicate is the only enforcement point.
func CanAskQuestion(tier models.Tier, dailyQuestionCount int) bool {
	if HasCapability(tier, CapUnlimitedQuestions) {
		return true
	}
	return dailyQuestionCount < FreeDailyQuestionLimit
}

// LockedDifficulty reports whether the requested lesson difficulty is gated
// for tier. Only beginner lessons are open to the free tier.
func LockedDifficulty(tier models.Tier, difficulty string) bool {
	if difficulty == "" || difficulty == "beginner" {
		return false
	}
	return IsFeatureLocked(tier, CapAdvancedDifficulty)
}
