package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/redefine/facility/api/internal/logger"
	"github.com/redefine/facility/api/internal/models"
	"github.com/redefine/facility/api/internal/report"
	"github.com/redefine/facility/api/internal/repository"
)

const defaultAnalysisText = "Keine Analyse vorhanden."

// RenderedReport is a finished cost estimate document plus the totals the
// response headers and callers expose.
type RenderedReport struct {
	Filename string
	PDF      []byte
	Pages    int
	Net      float64
	VAT      float64
	Gross    float64
}

// ReportService renders the cost estimate PDF for a ticket and manages its
// underlying cost table.
type ReportService interface {
	// RenderCostReport renders the ticket's analysis text and cost table
	// into a paginated PDF.
	RenderCostReport(ctx context.Context, ticketID string) (*RenderedReport, error)

	// ReplaceCostTable overwrites the ticket's cost table in full.
	ReplaceCostTable(ctx context.Context, ticketID string, rows []models.CostRow) error
}

type reportService struct {
	repo     repository.TicketRepository
	renderer *report.Renderer
	log      *logger.Logger
}

// NewReportService creates a new instance of ReportService.
func NewReportService(repo repository.TicketRepository, renderer *report.Renderer, log *logger.Logger) ReportService {
	return &reportService{
		repo:     repo,
		renderer: renderer,
		log:      log,
	}
}

func (s *reportService) RenderCostReport(ctx context.Context, ticketID string) (*RenderedReport, error) {
	ticket, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}

	title := ""
	if ticket.Title != nil {
		title = *ticket.Title
	}
	analysis := defaultAnalysisText
	if ticket.CostAnalysisText != nil && strings.TrimSpace(*ticket.CostAnalysisText) != "" {
		analysis = *ticket.CostAnalysisText
	}

	result, err := s.renderer.Render(report.Input{
		TicketID:     ticket.ID,
		Title:        title,
		AnalysisText: analysis,
		Rows:         ticket.CostTable,
		Date:         time.Now(),
	})
	if err != nil {
		s.log.Error("Failed to render cost report", err, map[string]interface{}{
			"ticket_id": ticketID,
		})
		return nil, fmt.Errorf("failed to render cost report: %w", err)
	}

	s.log.Info("Rendered cost report", map[string]interface{}{
		"ticket_id": ticketID,
		"pages":     result.Pages,
		"rows":      len(ticket.CostTable),
	})

	return &RenderedReport{
		Filename: fmt.Sprintf("Kostenschaetzung_%s.pdf", ticket.ID),
		PDF:      result.PDF,
		Pages:    result.Pages,
		Net:      result.Net,
		VAT:      result.VAT,
		Gross:    result.Gross,
	}, nil
}

func (s *reportService) ReplaceCostTable(ctx context.Context, ticketID string, rows []models.CostRow) error {
	if err := s.repo.ReplaceCostTable(ctx, ticketID, rows); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTicketNotFound
		}
		s.log.Error("Failed to replace cost table", err, map[string]interface{}{
			"ticket_id": ticketID,
			"rows":      len(rows),
		})
		return fmt.Errorf("failed to replace cost table: %w", err)
	}
	s.log.Info("Replaced cost table", map[string]interface{}{
		"ticket_id": ticketID,
		"rows":      len(rows),
	})
	return nil
}
