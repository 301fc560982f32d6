package measurement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrPointsNotFound indica que no hay serie de puntos cargada para la
// medición.
var ErrPointsNotFound = errors.New("no se encontraron mediciones cargadas")

// PointsStore persiste las series de puntos como un documento JSON por
// medición. El separado relacional/documental es deliberado: metadatos
// transaccionales en Postgres, series voluminosas acá.
type PointsStore struct {
	rdb *redis.Client
}

// NewPointsStore crea el almacén sobre el cliente redis compartido.
func NewPointsStore(rdb *redis.Client) *PointsStore {
	return &PointsStore{rdb: rdb}
}

func pointsKey(measurementID int) string {
	return fmt.Sprintf("points:%d", measurementID)
}

// Save guarda el documento de puntos de la medición.
func (s *PointsStore) Save(ctx context.Context, record PointsRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, pointsKey(record.ID), payload, 0).Err()
}

// Get recupera el documento de puntos por id de medición.
func (s *PointsStore) Get(ctx context.Context, measurementID int) (*PointsRecord, error) {
	payload, err := s.rdb.Get(ctx, pointsKey(measurementID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPointsNotFound
		}
		return nil, err
	}

	var record PointsRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
