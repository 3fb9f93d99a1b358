package api

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hcp-crm/internal/analytics"
	"hcp-crm/internal/storage"
)

// Stats computes the activity of the UTC day containing day.
func (s *Server) Stats(ctx context.Context, day time.Time) (*analytics.DailyStats, error) {
	day = day.UTC()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	var events []storage.Event
	if s.recorder != nil {
		var err error
		events, err = s.recorder.LoadEventsBetween(start, start.AddDate(0, 0, 1))
		if err != nil {
			return nil, fmt.Errorf("failed to load chat events: %w", err)
		}
	}
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	return analytics.AnalyzeDay(events, records, start), nil
}

// DailyDigest logs the current day's activity summary. It is meant to run from
// the scheduler.
func (s *Server) DailyDigest(ctx context.Context) error {
	stats, err := s.Stats(ctx, s.now())
	if err != nil {
		return err
	}
	s.logger.Info("daily digest",
		zap.String("date", stats.Date),
		zap.Int("chat_turns", stats.ChatTurns),
		zap.Int("interactions_logged", stats.InteractionsLogged),
		zap.String("summary", stats.GenerateReportSummary()),
	)
	return nil
}
