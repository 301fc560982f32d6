package catalog

import (
	"strings"
	"testing"
)

func TestNewResolvesBothDirections(t *testing.T) {
	cat, err := New([]Status{
		{ID: 10, Name: StatusPending},
		{ID: 20, Name: StatusApproved},
		{ID: 30, Name: StatusRejected},
	})
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}

	byName, ok := cat.ByName(StatusApproved)
	if !ok || byName.ID != 20 {
		t.Fatalf("por nombre: %+v %v", byName, ok)
	}

	byID, ok := cat.ByID(30)
	if !ok || byID.Name != StatusRejected {
		t.Fatalf("por id: %+v %v", byID, ok)
	}

	if cat.Pending().ID != 10 || cat.Approved().ID != 20 || cat.Rejected().ID != 30 {
		t.Fatal("accesos directos inconsistentes")
	}

	if _, ok := cat.ByName("Dudoso"); ok {
		t.Fatal("resolvió un estado fuera del vocabulario")
	}
}

func TestNewRequiresSeededStatuses(t *testing.T) {
	_, err := New([]Status{
		{ID: 1, Name: StatusPending},
		{ID: 2, Name: StatusApproved},
	})
	if err == nil {
		t.Fatal("esperaba error por seed incompleto")
	}
	if !strings.Contains(err.Error(), StatusRejected) {
		t.Fatalf("el error no nombra el estado faltante: %v", err)
	}
}
