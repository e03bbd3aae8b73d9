package companies

import (
	"context"

	"ecocommute-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Names resolves company ids to names in one query. Nil and unknown ids are skipped.
func Names(ctx context.Context, db *gorm.DB, ids ...*uuid.UUID) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	lookup := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == nil || *id == uuid.Nil {
			continue
		}
		if _, ok := seen[*id]; ok {
			continue
		}
		seen[*id] = struct{}{}
		lookup = append(lookup, *id)
	}
	names := make(map[uuid.UUID]string, len(lookup))
	if len(lookup) == 0 {
		return names, nil
	}
	var rows []domain.Company
	if err := db.WithContext(ctx).Select("company_id", "name").Where("company_id IN ?", lookup).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, c := range rows {
		names[c.CompanyID] = c.Name
	}
	return names, nil
}

// NameOr returns the name for id, or fallback when id is nil or unknown.
func NameOr(names map[uuid.UUID]string, id *uuid.UUID, fallback string) string {
	if id == nil {
		return fallback
	}
	if n, ok := names[*id]; ok {
		return n
	}
	return fallback
}
