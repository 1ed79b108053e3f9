package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/maxviazov/volleyball-scoreboard/internal/match"
)

const scorecardSheet = "Scorecard"

var scorecardHeaders = []string{"Player", "Team", "Points", "Aces", "Attacks", "Blocks", "Digs", "Errors", "MVP score"}

type scorecardService struct {
	history HistoryService
	log     zerolog.Logger
}

func NewScorecardService(history HistoryService, logger zerolog.Logger) ScorecardService {
	l := logger.With().Str("module", "service").Str("component", "scorecard").Logger()
	return &scorecardService{history: history, log: l}
}

// Text renders a heading followed by one line per stat row.
func (s *scorecardService) Text(ctx context.Context, matchID int64) (string, error) {
	d, err := s.history.GetMatch(ctx, matchID)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Match #%d: %s vs %s, winner %s, played %s\n",
		d.Match.ID, d.Match.TeamA, d.Match.TeamB, d.Match.Winner, d.Match.PlayedAt.Format(time.RFC3339))
	for _, r := range d.Stats {
		fmt.Fprintf(&b, "%s (%s): points %d, aces %d, attacks %d, blocks %d, digs %d, errors %d\n",
			r.Player, r.Team, r.Points, r.Aces, r.Attacks, r.Blocks, r.Digs, r.Errors)
	}
	return b.String(), nil
}

// Workbook renders the same scorecard as an XLSX file.
func (s *scorecardService) Workbook(ctx context.Context, matchID int64) ([]byte, error) {
	d, err := s.history.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.log.Warn().Err(err).Msg("close workbook")
		}
	}()
	if err := f.SetSheetName("Sheet1", scorecardSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	title := fmt.Sprintf("%s vs %s, winner %s", d.Match.TeamA, d.Match.TeamB, d.Match.Winner)
	if err := f.SetCellValue(scorecardSheet, "A1", title); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(scorecardSheet, "A2", d.Match.PlayedAt.Format(time.RFC3339)); err != nil {
		return nil, err
	}
	for i, h := range scorecardHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		if err := f.SetCellValue(scorecardSheet, cell, h); err != nil {
			return nil, err
		}
	}
	for i, r := range d.Stats {
		row := []any{r.Player, r.Team, r.Points, r.Aces, r.Attacks, r.Blocks, r.Digs, r.Errors, match.MVPScore(r.StatLine)}
		cell, _ := excelize.CoordinatesToCellName(1, i+5)
		if err := f.SetSheetRow(scorecardSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row for %s: %w", r.Player, err)
		}
	}
	_ = f.SetColWidth(scorecardSheet, "A", "B", 20)
	_ = f.SetColWidth(scorecardSheet, "C", "I", 10)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
