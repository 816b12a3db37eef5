package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"artflora/internal/models"
)

const productColumns = `id, name, description, price, image_url, category_id, is_available, created_at`

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.CategoryID, &p.IsAvailable, &p.CreatedAt)
	return p, err
}

// ListProducts возвращает товары каталога. availableOnly скрывает снятые с продажи.
func (s *Store) ListProducts(ctx context.Context, availableOnly bool) ([]models.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products`
	if availableOnly {
		query += ` WHERE is_available = TRUE`
	}
	query += ` ORDER BY id`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки товаров: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования товара: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProductByID возвращает товар по ID.
func (s *Store) GetProductByID(ctx context.Context, id int64) (models.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	p, err := scanProduct(s.DB.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("ошибка получения товара #%d: %w", id, err)
	}
	return p, nil
}

// CreateProduct добавляет товар.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.DB.QueryRowContext(ctx, `
        INSERT INTO products (name, description, price, image_url, category_id, is_available)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`,
		p.Name, p.Description, p.Price, p.ImageURL, p.CategoryID, p.IsAvailable,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка добавления товара: %w", err)
	}
	return nil
}

// UpdateProduct перезаписывает все редактируемые поля товара.
func (s *Store) UpdateProduct(ctx context.Context, p models.Product) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.DB.ExecContext(ctx, `
        UPDATE products
        SET name = $2, description = $3, price = $4, image_url = $5, category_id = $6, is_available = $7
        WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.CategoryID, p.IsAvailable)
	if err != nil {
		return fmt.Errorf("ошибка обновления товара #%d: %w", p.ID, err)
	}
	return expectAffected(res)
}

// DeleteProduct удаляет товар.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.DB.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления товара #%d: %w", id, err)
	}
	return expectAffected(res)
}

// ListCategories возвращает категории в порядке сортировки.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, sort_order FROM categories ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки категорий: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.SortOrder); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
