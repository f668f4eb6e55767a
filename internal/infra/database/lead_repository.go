package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

const leadColumns = `id, name, email, phone, company, subject, message, source, platform, campaign,
	ad_set, ad_name, status, notes, version, external_event_id, created_at, updated_at`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Company,
		lead.Subject,
		lead.Message,
		string(lead.Source),
		lead.Platform,
		lead.Campaign,
		lead.AdSet,
		lead.AdName,
		string(lead.Status),
		lead.Notes,
		lead.Version,
		nullString(lead.ExternalEventID),
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrDuplicateEvent
		}
		log.Printf("[leads] insert failed: %v", err)
		return fmt.Errorf("insert lead: %w", err)
	}

	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLeadNotFound
		}
		// malformed uuid never matches a row
		if isInvalidText(err) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, fmt.Errorf("find lead: %w", err)
	}
	return lead, nil
}

func (r *LeadRepository) FindByExternalEventID(ctx context.Context, eventID string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE external_event_id = $1`
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, fmt.Errorf("find lead by event: %w", err)
	}
	return lead, nil
}

func (r *LeadRepository) Update(ctx context.Context, id string, upd entity.LeadUpdate, expectedVersion int64, now time.Time) (*entity.Lead, error) {
	var status, notes *string
	if upd.Status != nil {
		s := string(*upd.Status)
		status = &s
	}
	notes = upd.Notes

	query := `
		UPDATE leads SET
			status = COALESCE($2, status),
			notes = COALESCE($3, notes),
			version = version + 1,
			updated_at = $4
		WHERE id = $1 AND ($5::bigint = 0 OR version = $5::bigint)
		RETURNING ` + leadColumns

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id, status, notes, now.UTC(), expectedVersion))
	if err == nil {
		return lead, nil
	}
	if !errors.Is(err, sql.ErrNoRows) && !isInvalidText(err) {
		return nil, fmt.Errorf("update lead: %w", err)
	}

	// No row: either the id is unknown or the version check failed.
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, entity.ErrVersionConflict
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		if isInvalidText(err) {
			return entity.ErrLeadNotFound
		}
		return fmt.Errorf("delete lead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter, page entity.Pagination) ([]*entity.Lead, int, error) {
	where, args := buildLeadWhere(filter)

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}
	if total == 0 {
		return []*entity.Lead{}, 0, nil
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM leads%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		leadColumns, where, n+1, n+2)
	args = append(args, page.Limit, page.Offset())

	leads, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func (r *LeadRepository) ListAll(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	where, args := buildLeadWhere(filter)
	query := `SELECT ` + leadColumns + ` FROM leads` + where + ` ORDER BY created_at DESC, id DESC`
	return r.query(ctx, query, args...)
}

func (r *LeadRepository) query(ctx context.Context, query string, args ...any) ([]*entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

// buildLeadWhere renders the filter as a WHERE clause with positional args.
func buildLeadWhere(filter entity.LeadFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Source != "" {
		args = append(args, string(filter.Source))
		conds = append(conds, fmt.Sprintf("source = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", n, n, n))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		lead    entity.Lead
		source  string
		status  string
		eventID sql.NullString
	)
	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Company,
		&lead.Subject,
		&lead.Message,
		&source,
		&lead.Platform,
		&lead.Campaign,
		&lead.AdSet,
		&lead.AdName,
		&status,
		&lead.Notes,
		&lead.Version,
		&eventID,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	lead.Source = entity.Source(source)
	lead.Status = entity.Status(status)
	lead.ExternalEventID = eventID.String
	lead.CreatedAt = lead.CreatedAt.UTC()
	lead.UpdatedAt = lead.UpdatedAt.UTC()
	return &lead, nil
}

// Errors come from pgx or lib/pq depending on DB_DRIVER.
func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == "23505"
}

func isInvalidText(err error) bool {
	return pgErrorCode(err) == "22P02"
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
