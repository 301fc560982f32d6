package auth

import (
	"strings"
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	mgr := NewJWTManager(strings.Repeat("k", 32), time.Hour)

	tokenString, err := mgr.GenerateAccessToken(7, "Ana", "ana@gda.test", "Laboratorio")
	if err != nil {
		t.Fatalf("generar: %v", err)
	}

	claims, err := mgr.ParseAndValidate(tokenString)
	if err != nil {
		t.Fatalf("validar: %v", err)
	}
	if claims.Subject != "7" || claims.Role != "Laboratorio" || claims.Email != "ana@gda.test" {
		t.Fatalf("claims: %+v", claims)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	mgr := NewJWTManager(strings.Repeat("k", 32), time.Hour)
	other := NewJWTManager(strings.Repeat("x", 32), time.Hour)

	tokenString, err := other.GenerateAccessToken(7, "Ana", "ana@gda.test", "Laboratorio")
	if err != nil {
		t.Fatalf("generar: %v", err)
	}

	if _, err := mgr.ParseAndValidate(tokenString); err == nil {
		t.Fatal("aceptó un token firmado con otra clave")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	mgr := NewJWTManager(strings.Repeat("k", 32), -time.Minute)

	tokenString, err := mgr.GenerateAccessToken(7, "Ana", "ana@gda.test", "Laboratorio")
	if err != nil {
		t.Fatalf("generar: %v", err)
	}

	if _, err := mgr.ParseAndValidate(tokenString); err == nil {
		t.Fatal("aceptó un token expirado")
	}
}

func TestVerifyPasswordHashes(t *testing.T) {
	hash, err := Hash("Secreta123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("formato de hash: %q", hash)
	}

	ok, err := Verify("Secreta123", hash)
	if err != nil || !ok {
		t.Fatalf("verificar: %v %v", ok, err)
	}

	ok, err = Verify("otra", hash)
	if err != nil || ok {
		t.Fatalf("aceptó contraseña incorrecta: %v %v", ok, err)
	}
}

func TestOpaqueSecretIsUnique(t *testing.T) {
	a, err := NewOpaqueSecret(32)
	if err != nil {
		t.Fatalf("generar: %v", err)
	}
	b, err := NewOpaqueSecret(32)
	if err != nil {
		t.Fatalf("generar: %v", err)
	}
	if a == b {
		t.Fatal("dos secretos idénticos")
	}
	if len(a) < 32 {
		t.Fatalf("secreto corto: %d", len(a))
	}
}
