// Package nudge generates motivational content from ledger context. The
// hosted model is an enrichment: every path degrades to local templates,
// so a provider outage never fails a request.
package nudge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Mohomed-Zaid/HabitFlow/internal/db"
	"github.com/Mohomed-Zaid/HabitFlow/internal/models"
)

type Service struct {
	client  *openai.Client
	model   string
	habits  *db.HabitRepository
	entries *db.EntryRepository
	nudges  *db.NudgeRepository
}

func NewService(apiKey, model string, habits *db.HabitRepository, entries *db.EntryRepository, nudges *db.NudgeRepository) *Service {
	s := &Service{
		model:   model,
		habits:  habits,
		entries: entries,
		nudges:  nudges,
	}
	if apiKey != "" {
		s.client = openai.NewClient(apiKey)
	} else {
		slog.Warn("no model API key configured, nudges will use local templates", "component", "nudge")
	}
	return s
}

// userContext is the ledger snapshot fed into prompts and templates.
type userContext struct {
	habits            []*models.Habit
	streaks           map[string]int
	completionRates   map[string]int
	todaysCompletions int
}

func (s *Service) buildContext(userID string) (*userContext, error) {
	habits, err := s.habits.FindAllActive(userID)
	if err != nil {
		return nil, err
	}

	ctx := &userContext{
		habits:          habits,
		streaks:         make(map[string]int, len(habits)),
		completionRates: make(map[string]int, len(habits)),
	}

	for _, h := range habits {
		streak, err := s.entries.CurrentStreak(h.ID, userID)
		if err != nil {
			return nil, err
		}
		ctx.streaks[h.ID] = streak

		rate, err := s.entries.CompletionRate(h.ID, userID, 0)
		if err != nil {
			return nil, err
		}
		ctx.completionRates[h.ID] = rate
	}

	todays, err := s.entries.ListForUserOnDate(userID, db.Today())
	if err != nil {
		return nil, err
	}
	for _, e := range todays {
		if e.Completed {
			ctx.todaysCompletions++
		}
	}

	return ctx, nil
}

// GeneratePersonalizedNudge creates and persists a nudge tailored to the
// user's current ledger. Returns nil, nil when the user tracks nothing.
func (s *Service) GeneratePersonalizedNudge(ctx context.Context, userID string) (*models.AiNudge, error) {
	uc, err := s.buildContext(userID)
	if err != nil {
		return nil, err
	}
	if len(uc.habits) == 0 {
		return nil, nil
	}

	params, err := s.complete(ctx, nudgeSystemPrompt, buildNudgePrompt(uc))
	if err != nil {
		slog.Warn("model nudge generation failed, using template", "component", "nudge", "error", err)
		params = templateNudge(uc)
	}
	params.UserID = userID

	return s.nudges.Create(*params)
}

// GenerateMicroChallenge creates a small 5-15 minute challenge.
func (s *Service) GenerateMicroChallenge(ctx context.Context, userID string) (*models.AiNudge, error) {
	uc, err := s.buildContext(userID)
	if err != nil {
		return nil, err
	}
	if len(uc.habits) == 0 {
		return nil, nil
	}

	params, err := s.complete(ctx, challengeSystemPrompt, buildChallengePrompt(uc))
	if err != nil {
		slog.Warn("model challenge generation failed, using template", "component", "nudge", "error", err)
		params = templateChallenge()
	}
	params.UserID = userID
	params.Type = models.NudgeTypeChallenge

	return s.nudges.Create(*params)
}

// GenerateMotivation creates an encouraging message, optionally focused
// on one habit.
func (s *Service) GenerateMotivation(ctx context.Context, userID string, habitID *string) (*models.AiNudge, error) {
	uc, err := s.buildContext(userID)
	if err != nil {
		return nil, err
	}

	var target *models.Habit
	if habitID != nil {
		for _, h := range uc.habits {
			if h.ID == *habitID {
				target = h
				break
			}
		}
	}

	params, err := s.complete(ctx, motivationSystemPrompt, buildMotivationPrompt(uc, target))
	if err != nil {
		slog.Warn("model motivation generation failed, using template", "component", "nudge", "error", err)
		params = templateMotivation(uc, target)
	}
	params.UserID = userID
	params.Type = models.NudgeTypeMotivation
	if target != nil {
		params.HabitID = &target.ID
	}

	return s.nudges.Create(*params)
}

// SuggestHabits returns habit ideas for a category.
func (s *Service) SuggestHabits(ctx context.Context, userID, category string) ([]string, error) {
	uc, err := s.buildContext(userID)
	if err != nil {
		return nil, err
	}

	if s.client == nil {
		return templateSuggestions(category), nil
	}

	raw, err := s.chat(ctx, suggestionSystemPrompt, buildSuggestionPrompt(uc, category))
	if err != nil {
		slog.Warn("model suggestion generation failed, using templates", "component", "nudge", "error", err)
		return templateSuggestions(category), nil
	}

	var parsed struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || len(parsed.Suggestions) == 0 {
		slog.Warn("unparsable suggestion response, using templates", "component", "nudge")
		return templateSuggestions(category), nil
	}
	return parsed.Suggestions, nil
}

// complete asks the model for a nudge-shaped JSON object and validates it.
func (s *Service) complete(ctx context.Context, system, prompt string) (*db.NudgeParams, error) {
	if s.client == nil {
		return nil, fmt.Errorf("no model client configured")
	}

	raw, err := s.chat(ctx, system, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Type        string  `json:"type"`
		Title       string  `json:"title"`
		Message     string  `json:"message"`
		HabitID     *string `json:"habitId"`
		ActionLabel *string `json:"actionLabel"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parsing model response: %w", err)
	}
	if parsed.Title == "" || parsed.Message == "" {
		return nil, fmt.Errorf("model response missing title or message")
	}

	nudgeType := parsed.Type
	switch nudgeType {
	case models.NudgeTypeMotivation, models.NudgeTypeReminder, models.NudgeTypeTip, models.NudgeTypeChallenge:
	default:
		nudgeType = models.NudgeTypeMotivation
	}

	return &db.NudgeParams{
		HabitID:     parsed.HabitID,
		Type:        nudgeType,
		Title:       parsed.Title,
		Message:     parsed.Message,
		ActionLabel: parsed.ActionLabel,
	}, nil
}

func (s *Service) chat(ctx context.Context, system, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty model response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Scheduler periodically generates a nudge for one user, skipping ticks
// where a nudge already landed within the interval. Failures are logged
// and never stop the loop.
type Scheduler struct {
	service  *Service
	nudges   *db.NudgeRepository
	userID   string
	interval time.Duration
	onNudge  func(userID string, nudge *models.AiNudge)
}

func NewScheduler(service *Service, nudges *db.NudgeRepository, userID string, interval time.Duration, onNudge func(string, *models.AiNudge)) *Scheduler {
	return &Scheduler{
		service:  service,
		nudges:   nudges,
		userID:   userID,
		interval: interval,
		onNudge:  onNudge,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	slog.Info("starting nudge scheduler", "component", "nudge", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping nudge scheduler", "component", "nudge")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	recent, err := s.nudges.CountSince(s.userID, time.Now().Add(-s.interval))
	if err != nil {
		slog.Error("error counting recent nudges", "component", "nudge", "error", err)
		return
	}
	if recent > 0 {
		return
	}

	nudge, err := s.service.GeneratePersonalizedNudge(ctx, s.userID)
	if err != nil {
		slog.Error("periodic nudge generation failed", "component", "nudge", "error", err)
		return
	}
	if nudge == nil {
		return
	}

	slog.Info("generated periodic nudge", "component", "nudge", "user_id", s.userID, "nudge_id", nudge.ID)
	if s.onNudge != nil {
		s.onNudge(s.userID, nudge)
	}
}
