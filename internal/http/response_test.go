package http

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/apperr"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decodificar sobre: %v", err)
	}
	return env
}

func TestWriteOK(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteOK(rec, 201, map[string]int{"id": 7}, "Reporte creado.")

	if rec.Code != 201 {
		t.Fatalf("status %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success || env.Code != 201 || env.Message != "Reporte creado." {
		t.Fatalf("sobre: %+v", env)
	}
}

func TestWriteErrDomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErr(rec, apperr.Conflict("Ya se hizo un reporte de la batería."))

	if rec.Code != 409 {
		t.Fatalf("status %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success || env.Response != nil {
		t.Fatalf("sobre: %+v", env)
	}
	if env.Message != "Ya se hizo un reporte de la batería." {
		t.Fatalf("mensaje %q", env.Message)
	}
}

func TestWriteErrSanitizesUnknownErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErr(rec, errors.New("pq: deadlock detected"))

	if rec.Code != 500 {
		t.Fatalf("status %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if strings.Contains(env.Message, "deadlock") {
		t.Fatalf("detalle interno filtrado: %q", env.Message)
	}
	if env.Message != "Error interno del servidor, vuelva a intentarlo." {
		t.Fatalf("mensaje %q", env.Message)
	}
}

func TestParseCSVPoints(t *testing.T) {
	csv := "00:00:01,12.4\n00:00:02,12.3\nbasura\n00:00:03,noesnumero\n"

	points, err := parseCSVPoints(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("esperaba 2 puntos, hubo %d", len(points))
	}
	if points["00:00:01"] != 12.4 || points["00:00:02"] != 12.3 {
		t.Fatalf("puntos: %+v", points)
	}
}
