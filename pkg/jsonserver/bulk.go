package jsonserver

import (
	"context"

	"github.com/bitechdev/RASpec/pkg/logger"
)

// UpdateMany patches every existing entity among ids and returns the whole
// requested id set, including ids that did not exist. All patches are applied
// in memory first, so a coercion failure persists nothing.
func (s *CRUDService[E, T, C, ID]) UpdateMany(ctx context.Context, ids []ID, fields map[string]interface{}) ([]ID, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return ids, nil
	}

	entities, err := s.repo.FindAllByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range entities {
		if err := s.fields.Apply(&entities[i], fields); err != nil {
			return nil, err
		}
	}

	if err := s.repo.SaveAll(ctx, entities); err != nil {
		return nil, err
	}

	logger.Info("Updated %d of %d requested %s, fields %v", len(entities), len(ids), s.resource, s.fields.Known(fields))
	return ids, nil
}

// DeleteMany deletes the existing entities among ids and returns only their ids,
// in request order
func (s *CRUDService[E, T, C, ID]) DeleteMany(ctx context.Context, ids []ID) ([]ID, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return ids, nil
	}

	entities, err := s.repo.FindAllByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteAll(ctx, entities); err != nil {
		return nil, err
	}

	found := make(map[ID]struct{}, len(entities))
	for i := range entities {
		found[s.idOf(&entities[i])] = struct{}{}
	}

	deleted := make([]ID, 0, len(entities))
	for _, id := range ids {
		if _, ok := found[id]; ok {
			deleted = append(deleted, id)
		}
	}

	logger.Info("Deleted %d of %d requested %s", len(deleted), len(ids), s.resource)
	return deleted, nil
}

// dedupe drops repeated ids, keeping the first occurrence
func dedupe[ID comparable](ids []ID) []ID {
	seen := make(map[ID]struct{}, len(ids))
	out := make([]ID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
