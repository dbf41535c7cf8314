package repository

import (
	"context"

	"github.com/ProyectoSpoon/SPOON-sub003/internal/dto"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComponenteRepository defines the data access contract for catalog
// components. Services depend on this interface, not on the concrete GORM
// implementation, enabling clean unit testing via in-memory stubs.
type ComponenteRepository interface {
	Create(ctx context.Context, c *model.Componente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Componente, error)
	List(ctx context.Context, filter dto.ComponenteFilter) ([]model.Componente, int64, error)
	// ListActivos returns every active component in catalog order (creation
	// order); one call produces the snapshot a generation or settlement pass
	// works against.
	ListActivos(ctx context.Context) ([]model.Componente, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error

	// AjustarStock incrementa o decrementa stock_actual sin transaccion externa.
	AjustarStock(ctx context.Context, id uuid.UUID, delta int) error

	// UpdateStockTx is used inside a settlement transaction — callers must
	// pass the tx instance.
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type componenteRepo struct{ db *gorm.DB }

func NewComponenteRepository(db *gorm.DB) ComponenteRepository { return &componenteRepo{db: db} }

func (r *componenteRepo) Create(ctx context.Context, c *model.Componente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *componenteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Componente, error) {
	var c model.Componente
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *componenteRepo) List(ctx context.Context, filter dto.ComponenteFilter) ([]model.Componente, int64, error) {
	var componentes []model.Componente
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Componente{})

	// Activo filter: "false" = inactivos, "all" = todos, anything else = activos (default)
	switch filter.Activo {
	case "false":
		q = q.Where("activo = false")
	case "all":
		// no filter
	default:
		q = q.Where("activo = true")
	}

	if filter.Categoria != "" {
		q = q.Where("categoria = ?", filter.Categoria)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at ASC").Limit(filter.Limit).Offset(offset).Find(&componentes).Error
	return componentes, total, err
}

func (r *componenteRepo) ListActivos(ctx context.Context) ([]model.Componente, error) {
	var componentes []model.Componente
	err := r.db.WithContext(ctx).
		Where("activo = true").
		Order("created_at ASC").
		Find(&componentes).Error
	return componentes, err
}

func (r *componenteRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Componente{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *componenteRepo) Reactivar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Componente{}).Where("id = ?", id).Update("activo", true).Error
}

func (r *componenteRepo) AjustarStock(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).Model(&model.Componente{}).
		Where("id = ? AND activo = true", id).
		Update("stock_actual", gorm.Expr("stock_actual + ?", delta)).Error
}

func (r *componenteRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Componente{}).Where("id = ?", id).
		Update("stock_actual", gorm.Expr("stock_actual + ?", delta)).Error
}

func (r *componenteRepo) DB() *gorm.DB { return r.db }
