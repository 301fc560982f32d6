package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/apperr"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Status{
		{ID: 1, Name: catalog.StatusPending},
		{ID: 2, Name: catalog.StatusApproved},
		{ID: 3, Name: catalog.StatusRejected},
	})
	if err != nil {
		t.Fatalf("catálogo de prueba: %v", err)
	}
	return cat
}

type stubReportRepo struct {
	battery    *BatteryRef
	hasReport  bool
	createErr  error
	createdID  int
	created    []Report
	rows       []ListRow
	report     *ReportRow
	statuses   int
	finalized  []MeasurementStatus
	finalErr   error
	finalState int
	detail     *DetailData
	rollup     []RollupRow
}

func (s *stubReportRepo) GetBatteryByChip(ctx context.Context, chipID string) (*BatteryRef, error) {
	if s.battery == nil || s.battery.ChipID != chipID {
		return nil, ErrNotFound
	}
	return s.battery, nil
}

func (s *stubReportRepo) HasReport(ctx context.Context, batteryID int) (bool, error) {
	return s.hasReport, nil
}

func (s *stubReportRepo) Create(ctx context.Context, rep Report) (int, error) {
	if s.createErr != nil {
		return 0, s.createErr
	}
	s.created = append(s.created, rep)
	if s.createdID == 0 {
		s.createdID = 1
	}
	return s.createdID, nil
}

func (s *stubReportRepo) List(ctx context.Context) ([]ListRow, error) {
	return s.rows, nil
}

func (s *stubReportRepo) Get(ctx context.Context, id int) (*ReportRow, error) {
	if s.report == nil || s.report.ID != id {
		return nil, ErrNotFound
	}
	return s.report, nil
}

func (s *stubReportRepo) CountStatuses(ctx context.Context, reportID int) (int, error) {
	return s.statuses, nil
}

func (s *stubReportRepo) Finalize(ctx context.Context, reportID, pendingStatusID, newStatusID int, statuses []MeasurementStatus) error {
	if s.finalErr != nil {
		return s.finalErr
	}
	s.finalized = statuses
	s.finalState = newStatusID
	return nil
}

func (s *stubReportRepo) GetDetail(ctx context.Context, reportID int) (*DetailData, error) {
	if s.detail == nil || s.detail.ID != reportID {
		return nil, ErrNotFound
	}
	return s.detail, nil
}

func (s *stubReportRepo) BatteryRollup(ctx context.Context) ([]RollupRow, error) {
	return s.rollup, nil
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestCreateReport(t *testing.T) {
	ctx := context.Background()
	clientID := 7

	t.Run("crea en Pendiente", func(t *testing.T) {
		repo := &stubReportRepo{
			battery:   &BatteryRef{ID: 3, ChipID: "CHIP-1", ClientID: &clientID},
			createdID: 42,
		}
		svc := NewService(repo, testCatalog(t))

		view, err := svc.Create(ctx, CreateInput{ChipID: "CHIP-1"})
		if err != nil {
			t.Fatalf("error inesperado: %v", err)
		}
		if view.ID != 42 || view.ReportState != catalog.StatusPending {
			t.Fatalf("vista inesperada: %+v", view)
		}
		if len(repo.created) != 1 || repo.created[0].StatusID != 1 {
			t.Fatalf("reporte persistido con estado %d", repo.created[0].StatusID)
		}
		if repo.created[0].FileName.String() == "00000000-0000-0000-0000-000000000000" {
			t.Fatal("file_name sin generar")
		}
	})

	t.Run("batería inexistente", func(t *testing.T) {
		svc := NewService(&stubReportRepo{}, testCatalog(t))

		_, err := svc.Create(ctx, CreateInput{ChipID: "NADA"})
		assertAppErr(t, err, 404, "La batería no existe.")
	})

	t.Run("batería sin cliente", func(t *testing.T) {
		repo := &stubReportRepo{battery: &BatteryRef{ID: 3, ChipID: "CHIP-1"}}
		svc := NewService(repo, testCatalog(t))

		_, err := svc.Create(ctx, CreateInput{ChipID: "CHIP-1"})
		assertAppErr(t, err, 409, "La batería no está asociada a un cliente.")
	})

	t.Run("reporte ya existente", func(t *testing.T) {
		repo := &stubReportRepo{
			battery:   &BatteryRef{ID: 3, ChipID: "CHIP-1", ClientID: &clientID},
			hasReport: true,
		}
		svc := NewService(repo, testCatalog(t))

		_, err := svc.Create(ctx, CreateInput{ChipID: "CHIP-1"})
		assertAppErr(t, err, 409, "Ya se hizo un reporte de la batería.")
	})

	t.Run("carrera perdida contra otra creación", func(t *testing.T) {
		repo := &stubReportRepo{
			battery:   &BatteryRef{ID: 3, ChipID: "CHIP-1", ClientID: &clientID},
			createErr: ErrDuplicate,
		}
		svc := NewService(repo, testCatalog(t))

		_, err := svc.Create(ctx, CreateInput{ChipID: "CHIP-1"})
		assertAppErr(t, err, 409, "Ya se hizo un reporte de la batería.")
	})
}

func TestSearchFilters(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	rows := []ListRow{
		{ID: 1, ChipID: "CHIP-A", ClientName: "García", StatusName: "Pendiente", ReportDate: day},
		{ID: 2, ChipID: "CHIP-B", ClientName: "López", StatusName: "Aprobado", ReportDate: day.AddDate(0, 0, 1)},
	}
	svc := NewService(&stubReportRepo{rows: rows}, testCatalog(t))

	cases := []struct {
		name   string
		filter SearchFilter
		want   []int
	}{
		{"sin filtros", SearchFilter{}, []int{1, 2}},
		{"chip parcial sin caso", SearchFilter{ChipID: "chip-a"}, []int{1}},
		{"cliente parcial", SearchFilter{ClientName: "garc"}, []int{1}},
		{"estado exacto", SearchFilter{State: "aprobado"}, []int{2}},
		{"por día calendario", SearchFilter{ReportDate: &day}, []int{1}},
		{"conjunción sin resultados", SearchFilter{ChipID: "CHIP-A", State: "Aprobado"}, []int{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := svc.Search(ctx, tc.filter)
			if err != nil {
				t.Fatalf("error inesperado: %v", err)
			}
			if len(items) != len(tc.want) {
				t.Fatalf("esperaba %d resultados, hubo %d", len(tc.want), len(items))
			}
			for i, id := range tc.want {
				if items[i].ID != id {
					t.Fatalf("resultado %d: esperaba id %d, hubo %d", i, id, items[i].ID)
				}
			}
		})
	}
}

func TestFinalize(t *testing.T) {
	ctx := context.Background()
	pendingReport := func() *ReportRow {
		return &ReportRow{Report: Report{ID: 5, StatusID: 1, ReportDate: time.Now()}, ChipID: "CHIP-1"}
	}

	t.Run("registra veredictos y transición en un commit", func(t *testing.T) {
		repo := &stubReportRepo{report: pendingReport()}
		svc := NewService(repo, testCatalog(t))

		view, err := svc.Finalize(ctx, FinalizeInput{
			ReportID:    5,
			ReportState: catalog.StatusApproved,
			Measurements: []MeasurementUpdate{
				{MeasurementID: 10, Status: catalog.StatusApproved, Comment: "ok"},
				{MeasurementID: 11, Status: catalog.StatusRejected, Comment: "fuera de rango"},
			},
		})
		if err != nil {
			t.Fatalf("error inesperado: %v", err)
		}
		if view.ReportState != catalog.StatusApproved {
			t.Fatalf("estado %q", view.ReportState)
		}
		if len(repo.finalized) != 2 || repo.finalState != 2 {
			t.Fatalf("finalización incompleta: %+v estado %d", repo.finalized, repo.finalState)
		}
		for _, ms := range repo.finalized {
			if ms.ReportID != 5 {
				t.Fatalf("veredicto con report_id %d", ms.ReportID)
			}
		}
	})

	t.Run("reporte inexistente", func(t *testing.T) {
		svc := NewService(&stubReportRepo{}, testCatalog(t))

		_, err := svc.Finalize(ctx, FinalizeInput{ReportID: 99, ReportState: catalog.StatusApproved})
		assertAppErr(t, err, 404, "Reporte no encontrado.")
	})

	t.Run("segundo disparo falla aunque el payload sea idéntico", func(t *testing.T) {
		repo := &stubReportRepo{report: pendingReport(), statuses: 2}
		svc := NewService(repo, testCatalog(t))

		_, err := svc.Finalize(ctx, FinalizeInput{ReportID: 5, ReportState: catalog.StatusApproved})
		assertAppErr(t, err, 409, "El status de una magnitud ya fue cargada.")
	})

	t.Run("carrera perdida contra otra finalización", func(t *testing.T) {
		repo := &stubReportRepo{report: pendingReport(), finalErr: ErrAlreadyFinalized}
		svc := NewService(repo, testCatalog(t))

		_, err := svc.Finalize(ctx, FinalizeInput{ReportID: 5, ReportState: catalog.StatusApproved})
		assertAppErr(t, err, 409, "El status de una magnitud ya fue cargada.")
	})

	t.Run("estado desconocido nombra el valor ofensor sin escribir nada", func(t *testing.T) {
		repo := &stubReportRepo{report: pendingReport()}
		svc := NewService(repo, testCatalog(t))

		_, err := svc.Finalize(ctx, FinalizeInput{
			ReportID:    5,
			ReportState: catalog.StatusApproved,
			Measurements: []MeasurementUpdate{
				{MeasurementID: 10, Status: catalog.StatusApproved},
				{MeasurementID: 11, Status: "Dudoso"},
			},
		})
		assertAppErr(t, err, 400, "El estado 'Dudoso' no existe.")
		if len(repo.finalized) != 0 {
			t.Fatalf("se escribieron %d veredictos con lote inválido", len(repo.finalized))
		}
	})
}

func TestDetail(t *testing.T) {
	ctx := context.Background()
	mdate := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	t.Run("omite veredictos huérfanos y aplica defaults", func(t *testing.T) {
		repo := &stubReportRepo{detail: &DetailData{
			ID:         5,
			StatusName: strPtr("Aprobado"),
			Statuses: []StatusRow{
				{MeasurementID: 10, StatusName: strPtr("Aprobado"), Comment: "ok"},
				{MeasurementID: 99, StatusName: strPtr("Aprobado")},
				{MeasurementID: 11, Comment: "sin estado resuelto"},
			},
			Measurements: []MeasurementRow{
				{ID: 10, Magnitude: "Voltaje", MeasurementDate: mdate},
				{ID: 11, Magnitude: "Corriente", MeasurementDate: mdate},
			},
		}}
		svc := NewService(repo, testCatalog(t))

		detail, err := svc.Detail(ctx, 5)
		if err != nil {
			t.Fatalf("error inesperado: %v", err)
		}
		if len(detail.Measurements) != 2 {
			t.Fatalf("esperaba 2 veredictos, hubo %d", len(detail.Measurements))
		}
		if detail.Measurements[1].Status != "Sin estado" {
			t.Fatalf("default de estado: %q", detail.Measurements[1].Status)
		}
		if detail.ChipID != "Desconocido" || detail.BatteryType != "N/A" {
			t.Fatalf("defaults de batería: %q %q", detail.ChipID, detail.BatteryType)
		}
	})

	t.Run("reporte inexistente", func(t *testing.T) {
		svc := NewService(&stubReportRepo{}, testCatalog(t))

		_, err := svc.Detail(ctx, 99)
		assertAppErr(t, err, 404, "Reporte no encontrado.")
	})
}

func TestAnalysisPercentages(t *testing.T) {
	ctx := context.Background()

	t.Run("suma 100 sobre las evaluadas", func(t *testing.T) {
		repo := &stubReportRepo{rollup: []RollupRow{
			{BatteryID: 1, StatusID: intPtr(2)},
			{BatteryID: 2, StatusID: intPtr(2)},
			{BatteryID: 3, StatusID: intPtr(3)},
			{BatteryID: 4, StatusID: intPtr(1)}, // pendiente: no cuenta
			{BatteryID: 5},                      // sin reporte
		}}
		svc := NewService(repo, testCatalog(t))

		analysis, err := svc.AnalysisPercentages(ctx)
		if err != nil {
			t.Fatalf("error inesperado: %v", err)
		}
		if analysis.ApprovedPercentage != 66.67 || analysis.RejectedPercentage != 33.33 {
			t.Fatalf("porcentajes: %+v", analysis)
		}
	})

	t.Run("sin reportes", func(t *testing.T) {
		repo := &stubReportRepo{rollup: []RollupRow{{BatteryID: 1}, {BatteryID: 2}}}
		svc := NewService(repo, testCatalog(t))

		_, err := svc.AnalysisPercentages(ctx)
		assertAppErr(t, err, 404, "No hay baterías con reportes.")
	})

	t.Run("solo pendientes", func(t *testing.T) {
		repo := &stubReportRepo{rollup: []RollupRow{{BatteryID: 1, StatusID: intPtr(1)}}}
		svc := NewService(repo, testCatalog(t))

		_, err := svc.AnalysisPercentages(ctx)
		assertAppErr(t, err, 404, "No hay baterías con reportes evaluados.")
	})
}

func TestMetricsPercentages(t *testing.T) {
	ctx := context.Background()

	t.Run("denominadores distintos por diseño del embudo", func(t *testing.T) {
		repo := &stubReportRepo{rollup: []RollupRow{
			{BatteryID: 1, ClientID: intPtr(1), StatusID: intPtr(2)},
			{BatteryID: 2, ClientID: intPtr(2)},
			{BatteryID: 3},
			{BatteryID: 4},
		}}
		svc := NewService(repo, testCatalog(t))

		metrics, err := svc.MetricsPercentages(ctx)
		if err != nil {
			t.Fatalf("error inesperado: %v", err)
		}
		if metrics.SoldPercentage != 50 {
			t.Fatalf("vendidas: %v", metrics.SoldPercentage)
		}
		if metrics.SoldWithReportPercentage != 50 {
			t.Fatalf("vendidas con reporte: %v", metrics.SoldWithReportPercentage)
		}
	})

	t.Run("sin baterías", func(t *testing.T) {
		svc := NewService(&stubReportRepo{}, testCatalog(t))

		_, err := svc.MetricsPercentages(ctx)
		assertAppErr(t, err, 404, "No hay baterías registradas.")
	})

	t.Run("sin vendidas no divide por cero", func(t *testing.T) {
		repo := &stubReportRepo{rollup: []RollupRow{{BatteryID: 1}, {BatteryID: 2}}}
		svc := NewService(repo, testCatalog(t))

		metrics, err := svc.MetricsPercentages(ctx)
		if err != nil {
			t.Fatalf("error inesperado: %v", err)
		}
		if metrics.SoldPercentage != 0 || metrics.SoldWithReportPercentage != 0 {
			t.Fatalf("porcentajes: %+v", metrics)
		}
	})
}

func assertAppErr(t *testing.T, err error, code int, message string) {
	t.Helper()
	if err == nil {
		t.Fatal("esperaba error")
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("error sin tipar: %v", err)
	}
	if appErr.Code != code {
		t.Fatalf("código %d, esperaba %d (%v)", appErr.Code, code, err)
	}
	if !strings.Contains(appErr.Message, message) {
		t.Fatalf("mensaje %q, esperaba %q", appErr.Message, message)
	}
}
