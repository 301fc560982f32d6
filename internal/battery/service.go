package battery

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/apperr"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/catalog"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/measurement"
)

type batteryRepository interface {
	Create(ctx context.Context, b Battery) (int, error)
	FindByChipID(ctx context.Context, chipID string) (*Battery, error)
	GetByID(ctx context.Context, id int) (*Battery, error)
	UpdateAssociation(ctx context.Context, id int, workOrder string, saleDate time.Time, clientID int) error
	ListWithClient(ctx context.Context, onlySold bool) ([]WithClient, error)
	ReportStatusID(ctx context.Context, batteryID int) (*int, error)
}

type measurementRepository interface {
	Create(ctx context.Context, m measurement.Measurement) (int, error)
	FindByBatteryMagnitudeDate(ctx context.Context, batteryID int, magnitude string, date time.Time) (*measurement.Measurement, error)
	ListByBattery(ctx context.Context, batteryID int) ([]measurement.Measurement, error)
}

type pointsStore interface {
	Save(ctx context.Context, record measurement.PointsRecord) error
	Get(ctx context.Context, measurementID int) (*measurement.PointsRecord, error)
}

// Service reúne las reglas de negocio del registro de baterías.
type Service struct {
	batteries    batteryRepository
	measurements measurementRepository
	points       pointsStore
	catalog      *catalog.Catalog
}

// NewService crea una nueva instancia del servicio.
func NewService(batteries batteryRepository, measurements measurementRepository, points pointsStore, cat *catalog.Catalog) *Service {
	return &Service{batteries: batteries, measurements: measurements, points: points, catalog: cat}
}

// Associate fija la venta de una batería a un cliente. La asociación es de
// una sola vez: con orden de trabajo, fecha de venta y cliente ya fijados,
// se rechaza cualquier re-asociación.
func (s *Service) Associate(ctx context.Context, input AssociateInput) error {
	input.ChipID = strings.TrimSpace(input.ChipID)

	found, err := s.batteries.FindByChipID(ctx, input.ChipID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("No se encuentra la batería registrada.")
		}
		return apperr.Internal(err)
	}

	if found.WorkOrder != nil && found.SaleDate != nil && found.ClientID != nil {
		return apperr.Conflict("La batería ya se encuentra asociada a un cliente.")
	}

	if err := s.batteries.UpdateAssociation(ctx, found.ID, input.WorkOrder, input.SaleDate, input.ClientID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Search devuelve todas las baterías con su cliente.
func (s *Service) Search(ctx context.Context) (*SearchResponse, error) {
	batteries, err := s.batteries.ListWithClient(ctx, false)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	views := make([]View, 0, len(batteries))
	for _, b := range batteries {
		views = append(views, View{
			ID:        b.ID,
			ChipID:    b.ChipID,
			WorkOrder: b.WorkOrder,
			Type:      b.Type,
			SaleDate:  b.SaleDate,
			Client:    b.Client,
		})
	}

	return &SearchResponse{TotalBatteries: len(views), Batteries: views}, nil
}

// SearchWithFilter lista baterías vendidas aplicando los filtros como una
// conjunción; los filtros en blanco no aplican. Cada batería lleva el
// estado de su reporte o "No iniciado".
func (s *Service) SearchWithFilter(ctx context.Context, filter SearchFilter) (*SearchResponse, error) {
	batteries, err := s.batteries.ListWithClient(ctx, true)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	views := make([]View, 0, len(batteries))
	for _, b := range batteries {
		if filter.ChipID != "" && !containsFold(b.ChipID, filter.ChipID) {
			continue
		}
		if filter.ClientName != "" && (b.Client == nil || !containsFold(b.Client.Name, filter.ClientName)) {
			continue
		}
		if filter.SaleDate != nil && (b.SaleDate == nil || !sameDay(*b.SaleDate, *filter.SaleDate)) {
			continue
		}

		reportState := "No iniciado"
		statusID, err := s.batteries.ReportStatusID(ctx, b.ID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if statusID != nil {
			if status, ok := s.catalog.ByID(*statusID); ok {
				reportState = status.Name
			}
		}

		views = append(views, View{
			ID:          b.ID,
			ChipID:      b.ChipID,
			WorkOrder:   b.WorkOrder,
			Type:        b.Type,
			ReportState: reportState,
			SaleDate:    b.SaleDate,
			Client:      b.Client,
		})
	}

	return &SearchResponse{TotalBatteries: len(views), Batteries: views}, nil
}

// Detail devuelve la batería con sus mediciones y las series de puntos
// resueltas desde el almacén de documentos.
func (s *Service) Detail(ctx context.Context, id int) (*DetailResponse, error) {
	found, err := s.batteries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("No se encuentra la batería registrada.")
		}
		return nil, apperr.Internal(err)
	}

	measurements, err := s.measurements.ListByBattery(ctx, found.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	views := make([]MeasurementView, 0, len(measurements))
	for _, m := range measurements {
		record, err := s.points.Get(ctx, m.ID)
		if err != nil {
			if errors.Is(err, measurement.ErrPointsNotFound) {
				return nil, apperr.Conflict("No se encontraron mediciones cargadas para esta batería.")
			}
			return nil, apperr.Internal(err)
		}
		views = append(views, MeasurementView{
			ID:              m.ID,
			Magnitude:       m.Magnitude,
			MeasurementDate: m.MeasurementDate,
			Points:          record.Points,
		})
	}

	return &DetailResponse{
		Battery: View{
			ID:        found.ID,
			ChipID:    found.ChipID,
			WorkOrder: found.WorkOrder,
			Type:      found.Type,
			SaleDate:  found.SaleDate,
		},
		Measurements: views,
	}, nil
}

// IngestRawData registra una medición a partir de datos crudos ya
// parseados. Crea la batería la primera vez que aparece el chip; rechaza
// mediciones duplicadas (misma magnitud y fecha) para una batería existente.
func (s *Service) IngestRawData(ctx context.Context, input RawDataInput) error {
	input.ChipID = strings.TrimSpace(input.ChipID)
	if input.ChipID == "" {
		return apperr.Invalid("chip obligatorio")
	}
	if len(input.Points) == 0 {
		return apperr.Invalid("la carga no contiene puntos de medición")
	}

	found, err := s.batteries.FindByChipID(ctx, input.ChipID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return apperr.Internal(err)
	}

	batteryID := 0
	if found == nil {
		batteryID, err = s.batteries.Create(ctx, Battery{
			ChipID:         input.ChipID,
			Type:           input.Type,
			RegisteredDate: time.Now().UTC(),
		})
		if err != nil {
			return apperr.Internal(err)
		}
		log.Info().Str("chip_id", input.ChipID).Msg("batería registrada por ingesta")
	} else {
		batteryID = found.ID
		existing, err := s.measurements.FindByBatteryMagnitudeDate(ctx, batteryID, input.Magnitude, input.MeasurementDate)
		if err != nil && !errors.Is(err, measurement.ErrNotFound) {
			return apperr.Internal(err)
		}
		if existing != nil {
			return apperr.Conflict("Las mediciones ya se encuentran en el sistema.")
		}
	}

	measurementID, err := s.measurements.Create(ctx, measurement.Measurement{
		Magnitude:       input.Magnitude,
		MeasurementDate: input.MeasurementDate,
		BatteryID:       batteryID,
	})
	if err != nil {
		return apperr.Internal(err)
	}

	if err := s.points.Save(ctx, measurement.PointsRecord{ID: measurementID, Points: input.Points}); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
