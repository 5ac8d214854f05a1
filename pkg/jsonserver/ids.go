package jsonserver

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/bitechdev/RASpec/pkg/common"
)

// IDParser converts a path or query id to the resource key type
type IDParser[ID comparable] func(raw string) (ID, error)

func Int64ID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &common.ValidationError{Field: "id", Value: raw, Cause: err}
	}
	return id, nil
}

func StringID(raw string) (string, error) {
	if raw == "" {
		return "", &common.ValidationError{Field: "id", Value: raw}
	}
	return raw, nil
}

func UUIDID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &common.ValidationError{Field: "id", Value: raw, Cause: err}
	}
	return id, nil
}

// parseIDs parses every raw id, failing on the first bad one
func parseIDs[ID comparable](parse IDParser[ID], raw []string) ([]ID, error) {
	ids := make([]ID, 0, len(raw))
	for _, r := range raw {
		id, err := parse(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
