package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fasbit/thesisvault/internal/app/models"
)

const thesisColumns = "id, title, author, student_id, email, abstract, advisor, career, year, thesis_date, keywords, status, hidden, downloads, pdf_filename, approval_filename, fulltext, created_at"

// ThesisRepository handles database operations for thesis records
type ThesisRepository struct {
	db *pgxpool.Pool
}

// NewThesisRepository creates a new ThesisRepository
func NewThesisRepository(db *pgxpool.Pool) *ThesisRepository {
	return &ThesisRepository{db: db}
}

func scanThesis(row pgx.Row) (*models.Thesis, error) {
	var t models.Thesis
	var keywords []byte
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Author,
		&t.StudentID,
		&t.Email,
		&t.Abstract,
		&t.Advisor,
		&t.Career,
		&t.Year,
		&t.ThesisDate,
		&keywords,
		&t.Status,
		&t.Hidden,
		&t.Downloads,
		&t.PDFFilename,
		&t.ApprovalFilename,
		&t.FullText,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(keywords) > 0 {
		if err := json.Unmarshal(keywords, &t.Keywords); err != nil {
			return nil, fmt.Errorf("error decoding keywords: %w", err)
		}
	}
	return &t, nil
}

// List retrieves thesis records newest first. A non-empty search term is
// matched case-insensitively against title, author, abstract and the
// extracted full text. When publicOnly is set, only approved and not hidden
// records are returned.
func (r *ThesisRepository) List(ctx context.Context, search string, publicOnly bool) ([]models.Thesis, error) {
	query := squirrel.Select(thesisColumns).
		From("theses").
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(squirrel.Or{
			squirrel.Like{"lower(title)": like},
			squirrel.Like{"lower(author)": like},
			squirrel.Like{"lower(abstract)": like},
			squirrel.Like{"lower(fulltext)": like},
		})
	}

	if publicOnly {
		query = query.Where(squirrel.Eq{
			"status": models.StatusApproved,
			"hidden": false,
		})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var theses []models.Thesis
	for rows.Next() {
		t, err := scanThesis(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		theses = append(theses, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading rows: %w", err)
	}

	return theses, nil
}

// GetByID retrieves a thesis by ID, nil if it does not exist.
func (r *ThesisRepository) GetByID(ctx context.Context, id int64) (*models.Thesis, error) {
	query := squirrel.Select(thesisColumns).
		From("theses").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	t, err := scanThesis(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return t, nil
}

// Create inserts a new thesis record and returns its ID.
func (r *ThesisRepository) Create(ctx context.Context, t *models.Thesis) (int64, error) {
	keywords := t.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return 0, fmt.Errorf("error encoding keywords: %w", err)
	}

	query := squirrel.Insert("theses").
		Columns("title", "author", "student_id", "email", "abstract", "advisor", "career", "year", "thesis_date", "keywords", "status", "hidden", "downloads", "pdf_filename", "approval_filename", "fulltext", "created_at").
		Values(t.Title, t.Author, t.StudentID, t.Email, t.Abstract, t.Advisor, t.Career, t.Year, t.ThesisDate, keywordsJSON, t.Status, t.Hidden, t.Downloads, t.PDFFilename, t.ApprovalFilename, t.FullText, t.CreatedAt).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// UpdateStatus overwrites the moderation status of a record.
func (r *ThesisRepository) UpdateStatus(ctx context.Context, id int64, status models.ThesisStatus) error {
	return r.exec(ctx, squirrel.Update("theses").
		Set("status", status).
		Where("id = ?", id))
}

// SetHidden overwrites the hidden flag of a record.
func (r *ThesisRepository) SetHidden(ctx context.Context, id int64, hidden bool) error {
	return r.exec(ctx, squirrel.Update("theses").
		Set("hidden", hidden).
		Where("id = ?", id))
}

// Delete removes a thesis row.
func (r *ThesisRepository) Delete(ctx context.Context, id int64) error {
	query := squirrel.Delete("theses").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// IncrementDownloads issues a relative increment of the download counter.
// No read-modify-write: concurrent downloads each add one.
func (r *ThesisRepository) IncrementDownloads(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, "UPDATE theses SET downloads = downloads + 1 WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error incrementing downloads: %w", err)
	}
	return nil
}

// Count returns the total number of thesis records.
func (r *ThesisRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM theses").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting theses: %w", err)
	}
	return count, nil
}

func (r *ThesisRepository) exec(ctx context.Context, builder squirrel.UpdateBuilder) error {
	sql, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}
