package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/support-copilot/ticket-api/internal/domain"
)

// TicketFilter captures listing parameters. Nil fields are not applied.
type TicketFilter struct {
	Processed *bool
	Category  *string
	Sentiment *string
	Limit     int
	Offset    int
}

// TicketUpdate describes a partial update. Only non-nil fields are written;
// absent fields stay untouched.
type TicketUpdate struct {
	Category         *domain.TicketCategory
	Sentiment        *domain.TicketSentiment
	Confidence       *float64
	Reasoning        *string
	Keywords         []string
	ProcessingTimeMS *int
	LLMModel         *string
	Processed        *bool
}

// TicketStats aggregates ticket counts.
type TicketStats struct {
	Total     int
	Processed int
	Pending   int
}

// TicketRepository is the record gateway the orchestrator and the read-only
// endpoints run against. Any error it returns is fatal for the current
// request; callers never absorb storage failures.
type TicketRepository interface {
	Create(ctx context.Context, description string) (*domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ApplyUpdate(ctx context.Context, id string, update TicketUpdate) (*domain.Ticket, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (TicketStats, error)
}

const ticketColumns = `id, description, category, sentiment, confidence, reasoning, keywords,
               processing_time_ms, llm_model, processed, created_at, updated_at`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the pgx-backed gateway.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, description string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`
        INSERT INTO tickets (description, processed)
        VALUES ($1, FALSE)
        RETURNING %s`, ticketColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, description))
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query, args := buildListQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// buildListQuery assembles the filtered listing statement, ordered newest
// creation time first. Factored out so the clause assembly is testable
// without a database.
func buildListQuery(filter TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Processed != nil {
		args = append(args, *filter.Processed)
		clauses = append(clauses, fmt.Sprintf("processed=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Sentiment != nil {
		args = append(args, *filter.Sentiment)
		clauses = append(clauses, fmt.Sprintf("sentiment=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)
	return query, args
}

func (r *ticketRepository) ApplyUpdate(ctx context.Context, id string, update TicketUpdate) (*domain.Ticket, error) {
	query, args := buildUpdateQuery(id, update)
	return r.scanOne(r.pool.QueryRow(ctx, query, args...))
}

// buildUpdateQuery emits SET clauses only for the fields the caller supplied,
// always bumping updated_at.
func buildUpdateQuery(id string, update TicketUpdate) (string, []any) {
	sets := []string{"updated_at=NOW()"}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if update.Category != nil {
		add("category", *update.Category)
	}
	if update.Sentiment != nil {
		add("sentiment", *update.Sentiment)
	}
	if update.Confidence != nil {
		add("confidence", *update.Confidence)
	}
	if update.Reasoning != nil {
		add("reasoning", *update.Reasoning)
	}
	if update.Keywords != nil {
		add("keywords", update.Keywords)
	}
	if update.ProcessingTimeMS != nil {
		add("processing_time_ms", *update.ProcessingTimeMS)
	}
	if update.LLMModel != nil {
		add("llm_model", *update.LLMModel)
	}
	if update.Processed != nil {
		add("processed", *update.Processed)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), ticketColumns)
	return query, args
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Stats(ctx context.Context) (TicketStats, error) {
	var stats TicketStats
	err := r.pool.QueryRow(ctx, `
        SELECT COUNT(*), COUNT(*) FILTER (WHERE processed)
        FROM tickets`).Scan(&stats.Total, &stats.Processed)
	if err != nil {
		return TicketStats{}, err
	}
	stats.Pending = stats.Total - stats.Processed
	return stats, nil
}

func (r *ticketRepository) scanOne(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Description,
		&ticket.Category,
		&ticket.Sentiment,
		&ticket.Confidence,
		&ticket.Reasoning,
		&ticket.Keywords,
		&ticket.ProcessingTimeMS,
		&ticket.LLMModel,
		&ticket.Processed,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Description,
			&ticket.Category,
			&ticket.Sentiment,
			&ticket.Confidence,
			&ticket.Reasoning,
			&ticket.Keywords,
			&ticket.ProcessingTimeMS,
			&ticket.LLMModel,
			&ticket.Processed,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
