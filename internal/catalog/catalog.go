package catalog

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/apperr"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/money"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/orders"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrProductNotFound = apperr.New("P001", "produk tidak ditemukan", http.StatusNotFound)
	ErrOptionNotFound  = apperr.New("P005", "opsi produk tidak ditemukan", http.StatusNotFound)
)

type Product struct {
	ID           int64
	Name         string
	SellingPrice money.Money
	Status       string // ACTIVE | SOLD_OUT | DISCONTINUED
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p Product) Purchasable() bool { return p.Status == "ACTIVE" }

type Option struct {
	ID         int64
	ProductID  int64
	Name       string
	ExtraPrice money.Money
}

// PgCatalog: lookup read-only. Core cuma mengonsumsi purchasable + harga.
type PgCatalog struct{ DB *pgxpool.Pool }

func (c *PgCatalog) product(ctx context.Context, id int64) (Product, error) {
	var p Product
	var price int64
	err := c.DB.QueryRow(ctx, `
		SELECT id, name, selling_price, status, created_at, updated_at
		FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &price, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, err
	}
	p.SellingPrice = money.MustNew(price)
	return p, nil
}

func (c *PgCatalog) option(ctx context.Context, productID, optionID int64) (Option, error) {
	var o Option
	var extra int64
	err := c.DB.QueryRow(ctx, `
		SELECT id, product_id, name, extra_price
		FROM product_options WHERE id=$1 AND product_id=$2`, optionID, productID).
		Scan(&o.ID, &o.ProductID, &o.Name, &extra)
	if errors.Is(err, pgx.ErrNoRows) {
		return Option{}, ErrOptionNotFound
	}
	if err != nil {
		return Option{}, err
	}
	o.ExtraPrice = money.MustNew(extra)
	return o, nil
}

// Item memenuhi orders.Catalog. Harga opsi = harga jual + extra.
func (c *PgCatalog) Item(ctx context.Context, productID int64, optionID *int64) (orders.ProductInfo, error) {
	p, err := c.product(ctx, productID)
	if err != nil {
		return orders.ProductInfo{}, err
	}

	info := orders.ProductInfo{
		Purchasable: p.Purchasable(),
		ProductName: p.Name,
		UnitPrice:   p.SellingPrice,
	}
	if optionID != nil {
		opt, err := c.option(ctx, productID, *optionID)
		if err != nil {
			return orders.ProductInfo{}, err
		}
		info.OptionName = &opt.Name
		info.UnitPrice = p.SellingPrice.Add(opt.ExtraPrice)
	}
	return info, nil
}

func (c *PgCatalog) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := c.DB.Query(ctx, `
		SELECT id, name, selling_price, status, created_at, updated_at
		FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		var price int64
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.SellingPrice = money.MustNew(price)
		out = append(out, p)
	}
	return out, rows.Err()
}
