package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Money travels as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductStatus is the publication status of a product.
type ProductStatus string

const (
	ProductActive   ProductStatus = "activo"
	ProductInactive ProductStatus = "inactivo"
)

// Valid reports whether s is a known product status.
func (s ProductStatus) Valid() bool {
	return s == ProductActive || s == ProductInactive
}

// Product represents a listing in the catalogue.
type Product struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	UsuarioID        uuid.UUID       `json:"usuario_id" db:"usuario_id"`
	CategoriaID      uuid.UUID       `json:"categoria_id" db:"categoria_id"`
	Titulo           string          `json:"titulo" db:"titulo"`
	Precio           decimal.Decimal `json:"precio" db:"precio"`
	Descripcion      string          `json:"descripcion" db:"descripcion"`
	Stock            *int            `json:"stock,omitempty" db:"stock"`
	Estado           ProductStatus   `json:"estado" db:"estado"`
	ImageURL         string          `json:"imageUrl,omitempty" db:"image_url"`
	FechaPublicacion time.Time       `json:"fecha_publicacion" db:"fecha_publicacion"`
}

// TracksStock reports whether the product keeps an inventory count.
func (p *Product) TracksStock() bool {
	return p.Stock != nil
}

// CreateProductRequest is the payload of POST /productos.
type CreateProductRequest struct {
	Titulo      string           `json:"titulo" validate:"required"`
	Precio      *decimal.Decimal `json:"precio" validate:"required"`
	Descripcion string           `json:"descripcion"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	CategoriaID uuid.UUID        `json:"categoria_id" validate:"required"`
	Estado      ProductStatus    `json:"estado" validate:"omitempty,oneof=activo inactivo"`
}

// UpdateProductRequest is the payload of PATCH /productos/{id}.
type UpdateProductRequest struct {
	Titulo      *string          `json:"titulo" validate:"omitempty,min=1"`
	Precio      *decimal.Decimal `json:"precio"`
	Descripcion *string          `json:"descripcion"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	CategoriaID *uuid.UUID       `json:"categoria_id"`
	Estado      *ProductStatus   `json:"estado" validate:"omitempty,oneof=activo inactivo"`
}

// ProductFilter narrows a product search. Zero values mean no constraint.
type ProductFilter struct {
	Query       string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	CategoriaID *uuid.UUID
}

// Category groups products.
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Nombre    string    `json:"nombre" db:"nombre"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CategoryRequest is the payload for creating or renaming a category.
type CategoryRequest struct {
	Nombre string `json:"nombre" validate:"required"`
}
