package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/redefine/facility/api/internal/database"
	"github.com/redefine/facility/api/internal/models"
)

// VendorContact holds the contact fields persisted when an operator picks
// an external vendor for a ticket.
type VendorContact struct {
	Name   string
	Street *string
	Zip    *string
	City   *string
	Email  *string
	Phone  *string
}

// TicketRepository defines the data access surface of the ticket store that
// the directory bridge, vendor matching and report rendering need.
type TicketRepository interface {
	// GetTicket loads a ticket by id.
	// Returns nil, nil if the ticket does not exist (not an error).
	GetTicket(ctx context.Context, id string) (*models.Ticket, error)

	// ListAttachments returns the stored attachments of a ticket.
	// Returns an empty slice when the ticket has none.
	ListAttachments(ctx context.Context, ticketID string) ([]models.Attachment, error)

	// ReplaceCostTable overwrites the ticket's cost table with the given
	// list. The list is always written in full; row ids are preserved as
	// provided by the client.
	ReplaceCostTable(ctx context.Context, ticketID string, rows []models.CostRow) error

	// SetChosenVendor stores an external vendor choice on the ticket and
	// clears any previously linked directory partner id.
	SetChosenVendor(ctx context.Context, ticketID string, v VendorContact) (*models.Ticket, error)

	// SetVendorPartnerID links the ticket to a directory partner record.
	SetVendorPartnerID(ctx context.Context, ticketID string, partnerID int64) error

	// ClearVendorPartnerID removes a phantom partner link so the import
	// path recreates the partner.
	ClearVendorPartnerID(ctx context.Context, ticketID string) error

	// ResetVendorPartnerID stores the literal value 0, marking the link as
	// deliberately severed by an operator.
	ResetVendorPartnerID(ctx context.Context, ticketID string) error
}

type ticketRepository struct {
	db *database.Database
}

// NewTicketRepository creates a new instance of TicketRepository.
func NewTicketRepository(db *database.Database) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `
	id, title, description, priority, status,
	odoo_tenancy_id, asset_id, odoo_partner_id, odoo_vendor_id,
	chosen_tgm, tgm_street, tgm_zip, tgm_city, tgm_mail, tgm_phone,
	cost_estimated, expected_enddate, cost_analysis_text, cost_table,
	created_at`

func (r *ticketRepository) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	query := `SELECT` + ticketColumns + ` FROM tickets WHERE id = $1`

	row := r.db.Pool.QueryRow(ctx, query, id)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}
	return ticket, nil
}

func (r *ticketRepository) ListAttachments(ctx context.Context, ticketID string) ([]models.Attachment, error) {
	query := `
		SELECT id, ticket_id, file_path, original_name, mime_type, privacy, created_at
		FROM ticket_attachments
		WHERE ticket_id = $1
		ORDER BY created_at`

	rows, err := r.db.Pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	attachments := make([]models.Attachment, 0)
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.TicketID, &a.FilePath, &a.OriginalName, &a.MimeType, &a.Privacy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attachments: %w", err)
	}

	return attachments, nil
}

func (r *ticketRepository) ReplaceCostTable(ctx context.Context, ticketID string, costRows []models.CostRow) error {
	payload, err := json.Marshal(costRows)
	if err != nil {
		return fmt.Errorf("failed to encode cost table: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE tickets SET cost_table = $1 WHERE id = $2`, payload, ticketID)
	if err != nil {
		return fmt.Errorf("failed to update cost table: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) SetChosenVendor(ctx context.Context, ticketID string, v VendorContact) (*models.Ticket, error) {
	query := `
		UPDATE tickets SET
			chosen_tgm = $1,
			tgm_street = $2,
			tgm_zip = $3,
			tgm_city = $4,
			tgm_mail = $5,
			tgm_phone = $6,
			odoo_vendor_id = NULL
		WHERE id = $7
		RETURNING` + ticketColumns

	row := r.db.Pool.QueryRow(ctx, query,
		v.Name, v.Street, v.Zip, v.City, v.Email, v.Phone, ticketID)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to store chosen vendor: %w", err)
	}
	return ticket, nil
}

func (r *ticketRepository) SetVendorPartnerID(ctx context.Context, ticketID string, partnerID int64) error {
	return r.setVendorID(ctx, ticketID, &partnerID)
}

func (r *ticketRepository) ClearVendorPartnerID(ctx context.Context, ticketID string) error {
	return r.setVendorID(ctx, ticketID, nil)
}

func (r *ticketRepository) ResetVendorPartnerID(ctx context.Context, ticketID string) error {
	zero := int64(0)
	return r.setVendorID(ctx, ticketID, &zero)
}

func (r *ticketRepository) setVendorID(ctx context.Context, ticketID string, partnerID *int64) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE tickets SET odoo_vendor_id = $1 WHERE id = $2`, partnerID, ticketID)
	if err != nil {
		return fmt.Errorf("failed to update vendor link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// scanTicket reads one ticket row including the JSONB cost table.
func scanTicket(row pgx.Row) (*models.Ticket, error) {
	var t models.Ticket
	var costTable []byte

	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status,
		&t.TenancyID, &t.AssetID, &t.TenantPartnerID, &t.VendorPartnerID,
		&t.ChosenVendor, &t.VendorStreet, &t.VendorZip, &t.VendorCity, &t.VendorEmail, &t.VendorPhone,
		&t.CostEstimated, &t.ExpectedEndDate, &t.CostAnalysisText, &costTable,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(costTable) > 0 {
		if err := json.Unmarshal(costTable, &t.CostTable); err != nil {
			return nil, fmt.Errorf("failed to decode cost table: %w", err)
		}
	}

	return &t, nil
}
