package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marcos-nsantos/asset-pipeline/internal/adapter/repository"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain/entity"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain/valueobject"
	"github.com/marcos-nsantos/asset-pipeline/internal/pkg/pagination"
)

var _ repository.AssetRepository = (*AssetRepo)(nil)

const assetColumns = `id, bucket, key, mime_type, width, height, size, format,
	blurhash, avg_color, alt, kind, entity_slug, created_at`

type AssetRepo struct {
	pool *pgxpool.Pool
}

func NewAssetRepo(pool *pgxpool.Pool) *AssetRepo {
	return &AssetRepo{pool: pool}
}

// Create writes the asset row and its derivatives in one transaction. It is the
// commit point of an upload: either the whole manifest is visible or none of it.
func (r *AssetRepo) Create(ctx context.Context, asset *entity.ImageAsset) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO image_assets (` + assetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = tx.Exec(ctx, query,
		asset.ID, asset.Bucket, asset.Key, asset.MimeType,
		asset.Width, asset.Height, asset.Size, string(asset.Format),
		asset.BlurHash, asset.AvgColor, asset.Alt, asset.Kind, asset.EntitySlug, asset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting asset: %w", err)
	}

	rows := make([][]any, 0, len(asset.Derivatives))
	for i, d := range asset.Derivatives {
		rows = append(rows, []any{asset.ID, i, d.Key, d.URL, d.Width, d.Height, d.Size, d.Suffix})
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"image_derivatives"},
		[]string{"asset_id", "position", "key", "url", "width", "height", "size", "suffix"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting derivatives: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing asset: %w", err)
	}
	return nil
}

func (r *AssetRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ImageAsset, error) {
	query := `SELECT ` + assetColumns + ` FROM image_assets WHERE id = $1`

	asset, err := scanAsset(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAssetNotFound
		}
		return nil, fmt.Errorf("querying asset: %w", err)
	}

	byAsset, err := r.derivatives(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	asset.Derivatives = byAsset[id]

	return asset, nil
}

func (r *AssetRepo) List(ctx context.Context, params repository.AssetListParams) ([]entity.ImageAsset, *pagination.Info, error) {
	conditions := []string{"TRUE"}
	var args []any
	argNum := 1

	if params.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", argNum))
		args = append(args, params.Kind)
		argNum++
	}
	if params.EntitySlug != "" {
		conditions = append(conditions, fmt.Sprintf("entity_slug = $%d", argNum))
		args = append(args, params.EntitySlug)
		argNum++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM image_assets WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, nil, fmt.Errorf("counting assets: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM image_assets
		WHERE %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d
	`, assetColumns, whereClause, argNum, argNum+1)
	args = append(args, params.Pagination.Limit(), params.Pagination.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("querying assets: %w", err)
	}
	defer rows.Close()

	var assets []entity.ImageAsset
	var ids []uuid.UUID
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("scanning asset: %w", err)
		}
		assets = append(assets, *asset)
		ids = append(ids, asset.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating assets: %w", err)
	}

	if len(ids) > 0 {
		byAsset, err := r.derivatives(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
		for i := range assets {
			assets[i].Derivatives = byAsset[assets[i].ID]
		}
	}

	pageInfo := params.Pagination.Info(total)
	return assets, pageInfo, nil
}

func (r *AssetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM image_assets WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting asset: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrAssetNotFound
	}
	return nil
}

func (r *AssetRepo) derivatives(ctx context.Context, assetIDs []uuid.UUID) (map[uuid.UUID][]entity.Derivative, error) {
	query := `
		SELECT asset_id, key, url, width, height, size, suffix
		FROM image_derivatives
		WHERE asset_id = ANY($1)
		ORDER BY asset_id, position
	`
	rows, err := r.pool.Query(ctx, query, assetIDs)
	if err != nil {
		return nil, fmt.Errorf("querying derivatives: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]entity.Derivative, len(assetIDs))
	for rows.Next() {
		var assetID uuid.UUID
		var d entity.Derivative
		if err := rows.Scan(&assetID, &d.Key, &d.URL, &d.Width, &d.Height, &d.Size, &d.Suffix); err != nil {
			return nil, fmt.Errorf("scanning derivative: %w", err)
		}
		result[assetID] = append(result[assetID], d)
	}

	return result, rows.Err()
}

func scanAsset(row pgx.Row) (*entity.ImageAsset, error) {
	var a entity.ImageAsset
	var format string
	err := row.Scan(
		&a.ID, &a.Bucket, &a.Key, &a.MimeType,
		&a.Width, &a.Height, &a.Size, &format,
		&a.BlurHash, &a.AvgColor, &a.Alt, &a.Kind, &a.EntitySlug, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Format = valueobject.Codec(format)
	return &a, nil
}
