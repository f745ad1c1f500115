package duck

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"

	"slidesmith/internal/store"
	"slidesmith/pkg/deck"
)

// Store persists presentations in a DuckDB database. Slides live in a child
// table keyed by presentation and position.
type Store struct {
	db *sql.DB
}

// Open opens the DuckDB database at path, creating it if needed, and applies
// the schema. An empty path opens an in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection. The caller owns the schema.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces a presentation by ID, rewriting its slides.
func (s *Store) Save(ctx context.Context, p deck.Presentation) error {
	if p.ID == "" {
		return fmt.Errorf("presentation id is required")
	}
	colors, err := json.Marshal(p.Colors)
	if err != nil {
		return fmt.Errorf("marshal colors: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO presentations
		 (id, topic, num_slides, custom_content, theme, font, colors, aspect_ratio, custom_width, custom_height, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.Topic,
		p.NumSlides,
		nullableString(p.CustomContent),
		p.Theme,
		p.Font,
		string(colors),
		p.AspectRatio,
		p.CustomWidth,
		p.CustomHeight,
		p.CreatedAt.UTC(),
		p.UpdatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("upsert presentation: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM slides WHERE presentation_id = ?`, p.ID); err != nil {
		return fmt.Errorf("clear slides: %w", err)
	}
	for i, slide := range p.Slides {
		content, err := json.Marshal(slide.Content)
		if err != nil {
			return fmt.Errorf("marshal slide %d content: %w", i, err)
		}
		citations, err := json.Marshal(slide.Citations)
		if err != nil {
			return fmt.Errorf("marshal slide %d citations: %w", i, err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO slides (presentation_id, slide_order, slide_type, title, content, image_suggestion, citations)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID,
			i,
			string(slide.Type),
			slide.Title,
			string(content),
			nullableString(slide.ImageSuggestion),
			string(citations),
		); err != nil {
			return fmt.Errorf("insert slide %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Get returns one presentation, or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (deck.Presentation, error) {
	row := s.db.QueryRowContext(ctx, selectPresentation+` WHERE id = ?`, id)
	p, err := scanPresentation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return deck.Presentation{}, store.ErrNotFound
	}
	if err != nil {
		return deck.Presentation{}, err
	}
	p.Slides, err = s.loadSlides(ctx, p.ID)
	if err != nil {
		return deck.Presentation{}, err
	}
	return p, nil
}

// List returns up to limit presentations in creation order, skipping offset.
func (s *Store) List(ctx context.Context, limit, offset int) ([]deck.Presentation, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, selectPresentation+` ORDER BY created_at, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list presentations: %w", err)
	}
	return s.collect(ctx, rows)
}

// Search returns presentations whose topic contains the fragment,
// case-insensitively, in creation order.
func (s *Store) Search(ctx context.Context, topic string) ([]deck.Presentation, error) {
	rows, err := s.db.QueryContext(
		ctx,
		selectPresentation+` WHERE topic ILIKE '%' || ? || '%' ORDER BY created_at, id`,
		topic,
	)
	if err != nil {
		return nil, fmt.Errorf("search presentations: %w", err)
	}
	return s.collect(ctx, rows)
}

// Delete removes a presentation and its slides, or returns store.ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM slides WHERE presentation_id = ?`, id); err != nil {
		return fmt.Errorf("delete slides: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM presentations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete presentation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return tx.Commit()
}

const selectPresentation = `SELECT id, topic, num_slides, custom_content, theme, font, colors, aspect_ratio, custom_width, custom_height, created_at, updated_at FROM presentations`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPresentation(row rowScanner) (deck.Presentation, error) {
	var (
		p             deck.Presentation
		customContent sql.NullString
		colors        string
	)
	if err := row.Scan(
		&p.ID,
		&p.Topic,
		&p.NumSlides,
		&customContent,
		&p.Theme,
		&p.Font,
		&colors,
		&p.AspectRatio,
		&p.CustomWidth,
		&p.CustomHeight,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return deck.Presentation{}, err
	}
	p.CustomContent = customContent.String
	if err := json.Unmarshal([]byte(colors), &p.Colors); err != nil {
		return deck.Presentation{}, fmt.Errorf("unmarshal colors: %w", err)
	}
	return p, nil
}

func (s *Store) collect(ctx context.Context, rows *sql.Rows) ([]deck.Presentation, error) {
	defer rows.Close()
	out := []deck.Presentation{}
	for rows.Next() {
		p, err := scanPresentation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		slides, err := s.loadSlides(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Slides = slides
	}
	return out, nil
}

func (s *Store) loadSlides(ctx context.Context, presentationID string) ([]deck.Slide, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT slide_type, title, content, image_suggestion, citations
		 FROM slides WHERE presentation_id = ? ORDER BY slide_order`,
		presentationID,
	)
	if err != nil {
		return nil, fmt.Errorf("load slides: %w", err)
	}
	defer rows.Close()

	slides := []deck.Slide{}
	for rows.Next() {
		var (
			slide           deck.Slide
			slideType       string
			content         string
			imageSuggestion sql.NullString
			citations       string
		)
		if err := rows.Scan(&slideType, &slide.Title, &content, &imageSuggestion, &citations); err != nil {
			return nil, err
		}
		slide.Type = deck.SlideType(slideType)
		slide.ImageSuggestion = imageSuggestion.String
		if err := json.Unmarshal([]byte(content), &slide.Content); err != nil {
			return nil, fmt.Errorf("unmarshal slide content: %w", err)
		}
		if err := json.Unmarshal([]byte(citations), &slide.Citations); err != nil {
			return nil, fmt.Errorf("unmarshal slide citations: %w", err)
		}
		slides = append(slides, slide)
	}
	return slides, rows.Err()
}

// nullableString converts an optional string into a SQL argument.
func nullableString(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
