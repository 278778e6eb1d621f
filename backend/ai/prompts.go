package ai

import (
	"fmt"
	"strings"
)

const lessonSystemPrompt = `You are an expert tutor who writes structured lessons.
Respond with a single JSON object using exactly these keys:
"topic", "lesson_text", "summary", "quiz", "next_topics".
"summary" is an array of short key-point strings.
"quiz" is an array of objects with "question", "options" (an array of strings)
and "correct_answer" (the zero-based index of the right option).
"next_topics" is an array of objects with "topic" and "difficulty".
Do not include any text outside the JSON object.`

const examSystemPrompt = `You are an expert examiner who writes timed exams.
Respond with a single JSON object using exactly these keys:
"topic", "lesson_text", "summary", "quiz", "next_topics", "exam_metadata".
"lesson_text" holds brief revision notes for the exam, "summary" an array of
short key-point strings. "quiz" is an array of objects with "question", "options" (an array of strings) and "correct_answer"
(the zero-based index of the right option). "exam_metadata" is an object with
"duration_minutes" and "passing_score". Do not include any text outside the
JSON object.`

func lessonUserPrompt(req LessonRequest) string {
	var b strings.Builder
	if req.Exam {
		fmt.Fprintf(&b, "Prepare an exam on %q at %s difficulty with at least 8 questions.\n", req.Topic, req.Difficulty)
	} else {
		fmt.Fprintf(&b, "Write a lesson on %q at %s difficulty with a 4 question quiz.\n", req.Topic, req.Difficulty)
	}
	writeProfileContext(&b, req.Profile)
	return b.String()
}

func tutorSystemPrompt(req TutorRequest) string {
	var b strings.Builder
	b.WriteString("You are a patient personal tutor. Answer the learner's question clearly and concretely. Prefer short worked examples over abstract explanations.\n")
	if req.LessonText != "" {
		fmt.Fprintf(&b, "The learner is currently studying this lesson:\n%s\n", req.LessonText)
	}
	writeProfileContext(&b, req.Profile)
	return b.String()
}

func documentUserPrompt(fileName string, profile ProfileContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the uploaded study material %q. Summarize what it covers, point out the key concepts, and suggest what the learner should study next.\n", fileName)
	writeProfileContext(&b, profile)
	return b.String()
}

func writeProfileContext(b *strings.Builder, p ProfileContext) {
	fmt.Fprintf(b, "The learner has covered %d%% of their plan.\n", p.LearningProgress)
	if len(p.CompletedTopics) > 0 {
		fmt.Fprintf(b, "Already completed: %s.\n", strings.Join(p.CompletedTopics, ", "))
	}
	if len(p.WeakTopics) > 0 {
		fmt.Fprintf(b, "Struggles with: %s. Reinforce these where relevant.\n", strings.Join(p.WeakTopics, ", "))
	}
}
