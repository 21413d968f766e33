// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package recipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forkful/forkful/internal/platform/apperr"
	"github.com/forkful/forkful/internal/platform/dberr"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// selectColumns is the shared projection for hydrated recipe rows.
// $1 is always the viewer ID so the edge flags personalize per request.
const selectColumns = `
	r.id, r.title, r.slug, r.description, r.image_url, r.category, r.difficulty,
	r.cook_minutes, r.servings, r.ingredients, r.author_id, a.name,
	r.like_count, r.save_count,
	EXISTS (SELECT 1 FROM recipe.like_edge le WHERE le.recipe_id = r.id AND le.user_id = $1),
	EXISTS (SELECT 1 FROM recipe.save_edge se WHERE se.recipe_id = r.id AND se.user_id = $1),
	r.created_at, r.updated_at`

// listConditions collects the active filter expressions and their values.
// Expressions carry a %d verb for the placeholder index.
func listConditions(filter Filter) (exprs []string, values []any) {
	if filter.Category != "" {
		exprs = append(exprs, "r.category = $%d")
		values = append(values, filter.Category)
	}
	if filter.Query != "" {
		exprs = append(exprs, "r.title ILIKE $%d")
		values = append(values, "%"+filter.Query+"%")
	}
	if filter.AuthorID != 0 {
		exprs = append(exprs, "r.author_id = $%d")
		values = append(values, filter.AuthorID)
	}
	return exprs, values
}

// buildListWhere renders the conditions with placeholders numbered from
// firstPlaceholder upward.
func buildListWhere(exprs []string, firstPlaceholder int) string {
	where := "WHERE TRUE"
	for i, expr := range exprs {
		where += " AND " + fmt.Sprintf(expr, firstPlaceholder+i)
	}
	return where
}

// List returns a filtered page of recipes plus the total match count.
func (repository *PostgresRepository) List(ctx context.Context, filter Filter, viewerID int64, limit, offset int) ([]*Recipe, int, error) {
	// The two statements bind different argument sets: the count query takes
	// only the filter values, the list query prepends the viewer ID for the
	// edge-flag subqueries. buildListWhere renders the same conditions with
	// placeholders starting at either $1 or $2 so both stay in sync.
	conditions, values := listConditions(filter)

	// Search results favor recency, browse pages favor popularity.
	orderBy := "r.like_count DESC, r.id DESC"
	if filter.Query != "" {
		orderBy = "r.created_at DESC"
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM recipe.recipe r %s`, buildListWhere(conditions, 1))
	var total int
	if err := repository.pool.QueryRow(ctx, countQuery, values...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_recipe_count_failed: %w", err)
	}

	where := buildListWhere(conditions, 2)
	args := append([]any{viewerID}, values...)
	args = append(args, limit, offset)
	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM recipe.recipe r
		JOIN auth.account a ON a.id = r.author_id
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		selectColumns, where, orderBy, len(args)-1, len(args))

	rows, err := repository.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_recipe_list_failed: %w", err)
	}
	defer rows.Close()

	recipes := make([]*Recipe, 0)
	for rows.Next() {
		recipe := &Recipe{}
		if err := scanRecipe(rows, recipe); err != nil {
			return nil, 0, fmt.Errorf("postgres_recipe_scan_failed: %w", err)
		}
		recipes = append(recipes, recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_recipe_rows_failed: %w", err)
	}

	return recipes, total, nil
}

// FindByID returns one hydrated recipe by primary key.
func (repository *PostgresRepository) FindByID(ctx context.Context, id int64, viewerID int64) (*Recipe, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM recipe.recipe r
		JOIN auth.account a ON a.id = r.author_id
		WHERE r.id = $2`, selectColumns)

	return repository.findOne(ctx, query, viewerID, id)
}

// FindBySlug returns one hydrated recipe by its URL slug.
func (repository *PostgresRepository) FindBySlug(ctx context.Context, slug string, viewerID int64) (*Recipe, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM recipe.recipe r
		JOIN auth.account a ON a.id = r.author_id
		WHERE r.slug = $2`, selectColumns)

	return repository.findOne(ctx, query, viewerID, slug)
}

// Create persists a new recipe row. Ingredients travel as a JSONB document.
func (repository *PostgresRepository) Create(ctx context.Context, recipe *Recipe) error {
	const query = `
		INSERT INTO recipe.recipe
			(title, slug, description, image_url, category, difficulty,
			 cook_minutes, servings, ingredients, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	now := time.Now()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	err := repository.pool.QueryRow(ctx, query,
		recipe.Title,
		recipe.Slug,
		recipe.Description,
		recipe.ImageURL,
		recipe.Category,
		recipe.Difficulty,
		recipe.CookMinutes,
		recipe.Servings,
		recipe.Ingredients,
		recipe.AuthorID,
		recipe.CreatedAt,
		recipe.UpdatedAt,
	).Scan(&recipe.ID)

	if err != nil {
		return dberr.Wrap(err, "Recipe")
	}

	return nil
}

// Update rewrites the recipe's mutable fields, ingredient list included.
func (repository *PostgresRepository) Update(ctx context.Context, recipe *Recipe) error {
	const query = `
		UPDATE recipe.recipe
		SET title = $2, slug = $3, description = $4, image_url = $5,
		    category = $6, difficulty = $7, cook_minutes = $8, servings = $9,
		    ingredients = $10, updated_at = $11
		WHERE id = $1`

	recipe.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(ctx, query,
		recipe.ID,
		recipe.Title,
		recipe.Slug,
		recipe.Description,
		recipe.ImageURL,
		recipe.Category,
		recipe.Difficulty,
		recipe.CookMinutes,
		recipe.Servings,
		recipe.Ingredients,
		recipe.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Recipe")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Recipe")
	}

	return nil
}

// Delete removes the recipe; edge rows cascade via foreign keys.
func (repository *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := repository.pool.Exec(ctx, "DELETE FROM recipe.recipe WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("postgres_recipe_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Recipe")
	}
	return nil
}

// SetLike toggles the like edge and keeps the denormalized counter in step.
func (repository *PostgresRepository) SetLike(ctx context.Context, userID, recipeID int64, liked bool) error {
	return repository.setEdge(ctx, "like_edge", "like_count", userID, recipeID, liked)
}

// SetSave toggles the save edge and keeps the denormalized counter in step.
func (repository *PostgresRepository) SetSave(ctx context.Context, userID, recipeID int64, saved bool) error {
	return repository.setEdge(ctx, "save_edge", "save_count", userID, recipeID, saved)
}

// setEdge inserts or deletes one (user, recipe) edge row and adjusts the
// matching counter inside a transaction. Redundant toggles affect zero
// edge rows and leave the counter alone.
func (repository *PostgresRepository) setEdge(ctx context.Context, edgeTable, counterColumn string, userID, recipeID int64, active bool) error {
	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres_recipe_edge_begin_failed: %w", err)
	}
	defer tx.Rollback(ctx)

	var edgeQuery, counterQuery string
	if active {
		edgeQuery = fmt.Sprintf(`
			INSERT INTO recipe.%s (user_id, recipe_id, created_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT DO NOTHING`, edgeTable)
		counterQuery = fmt.Sprintf(
			"UPDATE recipe.recipe SET %s = %s + 1 WHERE id = $1", counterColumn, counterColumn)
	} else {
		edgeQuery = fmt.Sprintf(
			"DELETE FROM recipe.%s WHERE user_id = $1 AND recipe_id = $2", edgeTable)
		counterQuery = fmt.Sprintf(
			"UPDATE recipe.recipe SET %s = %s - 1 WHERE id = $1", counterColumn, counterColumn)
	}

	tag, err := tx.Exec(ctx, edgeQuery, userID, recipeID)
	if err != nil {
		return dberr.Wrap(err, "Recipe")
	}

	if tag.RowsAffected() == 1 {
		if _, err := tx.Exec(ctx, counterQuery, recipeID); err != nil {
			return fmt.Errorf("postgres_recipe_counter_failed: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres_recipe_edge_commit_failed: %w", err)
	}

	return nil
}

// ListSavedByUser returns the viewer's saved recipes, newest save first.
func (repository *PostgresRepository) ListSavedByUser(ctx context.Context, userID int64, limit, offset int) ([]*Recipe, int, error) {
	var total int
	err := repository.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM recipe.save_edge WHERE user_id = $1", userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_recipe_saved_count_failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM recipe.save_edge s
		JOIN recipe.recipe r ON r.id = s.recipe_id
		JOIN auth.account a ON a.id = r.author_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC
		LIMIT $2 OFFSET $3`, selectColumns)

	rows, err := repository.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_recipe_saved_list_failed: %w", err)
	}
	defer rows.Close()

	recipes := make([]*Recipe, 0)
	for rows.Next() {
		recipe := &Recipe{}
		if err := scanRecipe(rows, recipe); err != nil {
			return nil, 0, fmt.Errorf("postgres_recipe_scan_failed: %w", err)
		}
		recipes = append(recipes, recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_recipe_rows_failed: %w", err)
	}

	return recipes, total, nil
}

// findOne runs a single-row hydrated query. The viewer ID is always $1.
func (repository *PostgresRepository) findOne(ctx context.Context, query string, viewerID int64, arg any) (*Recipe, error) {
	recipe := &Recipe{}
	err := scanRecipe(repository.pool.QueryRow(ctx, query, viewerID, arg), recipe)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Recipe")
		}
		return nil, fmt.Errorf("postgres_recipe_find_failed: %w", err)
	}

	return recipe, nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner, recipe *Recipe) error {
	return row.Scan(
		&recipe.ID,
		&recipe.Title,
		&recipe.Slug,
		&recipe.Description,
		&recipe.ImageURL,
		&recipe.Category,
		&recipe.Difficulty,
		&recipe.CookMinutes,
		&recipe.Servings,
		&recipe.Ingredients,
		&recipe.AuthorID,
		&recipe.AuthorName,
		&recipe.LikeCount,
		&recipe.SaveCount,
		&recipe.IsLiked,
		&recipe.IsSaved,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
}
