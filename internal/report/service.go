package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/apperr"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/catalog"
)

type reportRepository interface {
	GetBatteryByChip(ctx context.Context, chipID string) (*BatteryRef, error)
	HasReport(ctx context.Context, batteryID int) (bool, error)
	Create(ctx context.Context, rep Report) (int, error)
	List(ctx context.Context) ([]ListRow, error)
	Get(ctx context.Context, id int) (*ReportRow, error)
	CountStatuses(ctx context.Context, reportID int) (int, error)
	Finalize(ctx context.Context, reportID, pendingStatusID, newStatusID int, statuses []MeasurementStatus) error
	GetDetail(ctx context.Context, reportID int) (*DetailData, error)
	BatteryRollup(ctx context.Context) ([]RollupRow, error)
}

// Service es el motor del flujo de reportes: garantiza un reporte por
// batería, orquesta la carga de veredictos por medición y la transición
// terminal, y computa las analíticas agregadas.
type Service struct {
	repo    reportRepository
	catalog *catalog.Catalog
}

// NewService crea una nueva instancia del motor.
func NewService(repo reportRepository, cat *catalog.Catalog) *Service {
	return &Service{repo: repo, catalog: cat}
}

// Create abre el reporte de revisión de una batería en estado Pendiente.
// La batería debe existir, estar asociada a un cliente y no tener reporte
// previo.
func (s *Service) Create(ctx context.Context, input CreateInput) (*View, error) {
	chipID := strings.TrimSpace(input.ChipID)

	ref, err := s.repo.GetBatteryByChip(ctx, chipID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("La batería no existe.")
		}
		return nil, apperr.Internal(err)
	}

	if ref.ClientID == nil {
		return nil, apperr.Conflict("La batería no está asociada a un cliente.")
	}

	exists, err := s.repo.HasReport(ctx, ref.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, apperr.Conflict("Ya se hizo un reporte de la batería.")
	}

	pending, ok := s.catalog.ByName(catalog.StatusPending)
	if !ok {
		return nil, apperr.Inconsistency("El estado 'Pendiente' no existe en la base de datos.")
	}

	rep := Report{
		StatusID:   pending.ID,
		ReportDate: time.Now().UTC(),
		FileName:   uuid.New(),
		BatteryID:  ref.ID,
	}

	id, err := s.repo.Create(ctx, rep)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			// perdimos la carrera contra otra creación; el índice único
			// es el respaldo real del invariante
			return nil, apperr.Conflict("Ya se hizo un reporte de la batería.")
		}
		return nil, apperr.Internal(err)
	}

	log.Info().Int("report_id", id).Str("chip_id", ref.ChipID).Msg("reporte creado")

	return &View{
		ID:          id,
		ChipID:      ref.ChipID,
		ClientID:    *ref.ClientID,
		ReportState: pending.Name,
		ReportDate:  rep.ReportDate,
		Client:      ref.Client,
	}, nil
}

// Search lista reportes aplicando los filtros como conjunción; sin
// resultados devuelve la secuencia vacía, nunca un error.
func (s *Service) Search(ctx context.Context, filter SearchFilter) ([]SearchItem, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	items := make([]SearchItem, 0, len(rows))
	for _, row := range rows {
		if filter.ChipID != "" && !containsFold(row.ChipID, filter.ChipID) {
			continue
		}
		if filter.ClientName != "" && !containsFold(row.ClientName, filter.ClientName) {
			continue
		}
		if filter.State != "" && !strings.EqualFold(row.StatusName, filter.State) {
			continue
		}
		if filter.ReportDate != nil && !sameDay(row.ReportDate, *filter.ReportDate) {
			continue
		}

		items = append(items, SearchItem{
			ID:          row.ID,
			ChipID:      row.ChipID,
			ClientName:  row.ClientName,
			ReportState: row.StatusName,
			ReportDate:  row.ReportDate,
		})
	}

	return items, nil
}

// History devuelve el listado completo sin filtros, con el tipo de batería.
func (s *Service) History(ctx context.Context) ([]HistoryItem, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	items := make([]HistoryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, HistoryItem{
			SearchItem: SearchItem{
				ID:          row.ID,
				ChipID:      row.ChipID,
				ClientName:  row.ClientName,
				ReportState: row.StatusName,
				ReportDate:  row.ReportDate,
			},
			BatteryType: row.BatteryType,
		})
	}

	return items, nil
}

// Finalize registra un veredicto por medición y la transición terminal del
// reporte, todo en un único commit. Es estrictamente de un solo disparo:
// un segundo llamado falla aunque el payload sea idéntico.
func (s *Service) Finalize(ctx context.Context, input FinalizeInput) (*View, error) {
	rep, err := s.repo.Get(ctx, input.ReportID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Reporte no encontrado.")
		}
		return nil, apperr.Internal(err)
	}

	count, err := s.repo.CountStatuses(ctx, rep.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if count > 0 {
		return nil, apperr.Conflict("El status de una magnitud ya fue cargada.")
	}

	// todo el lote se valida contra el catálogo antes de escribir nada
	statuses := make([]MeasurementStatus, 0, len(input.Measurements))
	for _, mu := range input.Measurements {
		status, ok := s.catalog.ByName(mu.Status)
		if !ok {
			return nil, apperr.Invalid(fmt.Sprintf("El estado '%s' no existe.", mu.Status))
		}
		statuses = append(statuses, MeasurementStatus{
			MeasurementID: mu.MeasurementID,
			StatusID:      status.ID,
			Comment:       mu.Comment,
			ReportID:      rep.ID,
		})
	}

	newStatus, ok := s.catalog.ByName(input.ReportState)
	if !ok {
		return nil, apperr.Invalid(fmt.Sprintf("El estado '%s' no existe.", input.ReportState))
	}

	pending := s.catalog.Pending()
	if err := s.repo.Finalize(ctx, rep.ID, pending.ID, newStatus.ID, statuses); err != nil {
		if errors.Is(err, ErrAlreadyFinalized) {
			return nil, apperr.Conflict("El status de una magnitud ya fue cargada.")
		}
		return nil, apperr.Internal(err)
	}

	log.Info().Int("report_id", rep.ID).Str("state", newStatus.Name).
		Int("verdicts", len(statuses)).Msg("reporte finalizado")

	return &View{
		ID:          rep.ID,
		ChipID:      rep.ChipID,
		ReportState: newStatus.Name,
		ReportDate:  rep.ReportDate,
	}, nil
}

// Detail devuelve la vista completa del reporte. El join veredicto→
// medición usa la referencia blanda por id: los veredictos sin medición
// correspondiente se omiten, y las relaciones opcionales ausentes se
// presentan con defaults.
func (s *Service) Detail(ctx context.Context, reportID int) (*Detail, error) {
	data, err := s.repo.GetDetail(ctx, reportID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Reporte no encontrado.")
		}
		return nil, apperr.Internal(err)
	}

	byID := make(map[int]MeasurementRow, len(data.Measurements))
	for _, m := range data.Measurements {
		byID[m.ID] = m
	}

	verdicts := make([]MeasurementVerdict, 0, len(data.Statuses))
	for _, sr := range data.Statuses {
		m, ok := byID[sr.MeasurementID]
		if !ok {
			continue
		}
		verdicts = append(verdicts, MeasurementVerdict{
			ID:              m.ID,
			Magnitude:       m.Magnitude,
			Status:          strDefault(sr.StatusName, "Sin estado"),
			Comment:         sr.Comment,
			MeasurementDate: m.MeasurementDate,
		})
	}

	detail := &Detail{
		ID:          data.ID,
		ChipID:      strDefault(data.ChipID, "Desconocido"),
		ReportState: strDefault(data.StatusName, "Sin estado"),
		ReportDate:  data.ReportDate,

		ClientName:  strDefault(data.ClientName, "Desconocido"),
		ClientEmail: strDefault(data.ClientEmail, "Desconocido"),

		BatteryType:      strDefault(data.BatteryType, "N/A"),
		BatteryWorkOrder: strDefault(data.BatteryWorkOrder, "N/A"),
		SaleDate:         data.SaleDate,

		Measurements: verdicts,
	}
	if data.ClientID != nil {
		detail.ClientID = *data.ClientID
	}
	if data.RegisteredDate != nil {
		detail.RegisteredDate = *data.RegisteredDate
	}

	return detail, nil
}

// AnalysisPercentages computa los porcentajes de aprobación sobre las
// baterías evaluadas (reporte en Aprobado o Desaprobado).
func (s *Service) AnalysisPercentages(ctx context.Context) (*Analysis, error) {
	rollup, err := s.repo.BatteryRollup(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	approvedID := s.catalog.Approved().ID
	rejectedID := s.catalog.Rejected().ID

	withReport := 0
	approved := 0
	rejected := 0
	for _, row := range rollup {
		if row.StatusID == nil {
			continue
		}
		withReport++
		switch *row.StatusID {
		case approvedID:
			approved++
		case rejectedID:
			rejected++
		}
	}

	if withReport == 0 {
		return nil, apperr.NotFound("No hay baterías con reportes.")
	}

	evaluated := approved + rejected
	if evaluated == 0 {
		return nil, apperr.NotFound("No hay baterías con reportes evaluados.")
	}

	return &Analysis{
		ApprovedPercentage: round2(float64(approved) / float64(evaluated) * 100),
		RejectedPercentage: round2(float64(rejected) / float64(evaluated) * 100),
	}, nil
}

// MetricsPercentages computa el embudo vendidas → vendidas con reporte.
// El denominador cambia a propósito: vendidas sobre el total, vendidas con
// reporte sobre las vendidas.
func (s *Service) MetricsPercentages(ctx context.Context) (*Metrics, error) {
	rollup, err := s.repo.BatteryRollup(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	total := len(rollup)
	if total == 0 {
		return nil, apperr.NotFound("No hay baterías registradas.")
	}

	sold := 0
	soldWithReport := 0
	for _, row := range rollup {
		if row.ClientID == nil {
			continue
		}
		sold++
		if row.StatusID != nil {
			soldWithReport++
		}
	}

	metrics := &Metrics{}
	metrics.SoldPercentage = round2(float64(sold) / float64(total) * 100)
	if sold > 0 {
		metrics.SoldWithReportPercentage = round2(float64(soldWithReport) / float64(sold) * 100)
	}

	return metrics, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func strDefault(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
