package repository

import (
	"context"

	"github.com/ProyectoSpoon/SPOON-sub003/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AjusteCombinacionRepository persists operator overrides keyed by the
// deterministic combination id.
type AjusteCombinacionRepository interface {
	Save(ctx context.Context, a *model.AjusteCombinacion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.AjusteCombinacion, error)
	ListAll(ctx context.Context) ([]model.AjusteCombinacion, error)
}

type ajusteCombinacionRepo struct{ db *gorm.DB }

func NewAjusteCombinacionRepository(db *gorm.DB) AjusteCombinacionRepository {
	return &ajusteCombinacionRepo{db: db}
}

func (r *ajusteCombinacionRepo) Save(ctx context.Context, a *model.AjusteCombinacion) error {
	// Upsert by combination id — the row may or may not already exist.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(a).Error
}

func (r *ajusteCombinacionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.AjusteCombinacion, error) {
	var a model.AjusteCombinacion
	err := r.db.WithContext(ctx).First(&a, id).Error
	return &a, err
}

func (r *ajusteCombinacionRepo) ListAll(ctx context.Context) ([]model.AjusteCombinacion, error) {
	var ajustes []model.AjusteCombinacion
	err := r.db.WithContext(ctx).Find(&ajustes).Error
	return ajustes, err
}
