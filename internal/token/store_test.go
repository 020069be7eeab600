package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func mintJWT(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestStore_SetPersistsAcrossRestart(t *testing.T) {
	storage := NewMemoryStorage()

	first := NewStore(storage, nil)
	first.Set("opaque-token")

	second := NewStore(storage, nil)
	got, ok := second.Get()
	if !ok {
		t.Fatal("token lost across restart")
	}
	if got != "opaque-token" {
		t.Fatalf("restored token = %q", got)
	}
}

func TestStore_ClearErasesPersistedCopy(t *testing.T) {
	storage := NewMemoryStorage()

	store := NewStore(storage, nil)
	store.Set("opaque-token")
	store.Clear()

	if _, ok := store.Get(); ok {
		t.Fatal("token still present after clear")
	}
	if _, ok, _ := storage.Load("token"); ok {
		t.Fatal("persisted copy survived clear")
	}
	if _, ok := NewStore(storage, nil).Get(); ok {
		t.Fatal("cleared token restored on restart")
	}
}

func TestNewStore_MalformedPersistedValueTreatedAsAbsent(t *testing.T) {
	storage := NewMemoryStorage()
	if err := storage.Save("token", "not json"); err != nil {
		t.Fatalf("seed storage: %v", err)
	}

	store := NewStore(storage, nil)
	if _, ok := store.Get(); ok {
		t.Fatal("malformed persisted value must be treated as absent")
	}
}

func TestStore_ClaimsFromJWT(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	store := NewStore(NewMemoryStorage(), nil)
	store.Set(mintJWT(t, expiry))

	claims, err := store.Claims()
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("subject = %q", claims.Subject)
	}
	if !claims.ExpiresAt.Time.Equal(expiry) {
		t.Fatalf("expiry = %v, want %v", claims.ExpiresAt.Time, expiry)
	}
}

func TestStore_ClaimsRejectsOpaqueAndAbsentTokens(t *testing.T) {
	store := NewStore(NewMemoryStorage(), nil)
	if _, err := store.Claims(); !errors.Is(err, ErrNotJWT) {
		t.Fatalf("absent token: err = %v", err)
	}

	store.Set("opaque-token")
	if _, err := store.Claims(); !errors.Is(err, ErrNotJWT) {
		t.Fatalf("opaque token: err = %v", err)
	}
}

func TestStore_Expired(t *testing.T) {
	now := time.Now()
	store := NewStore(NewMemoryStorage(), nil)

	if store.Expired(now) {
		t.Fatal("absent token must not report expired")
	}

	store.Set(mintJWT(t, now.Add(time.Hour)))
	if store.Expired(now) {
		t.Fatal("live token reported expired")
	}

	store.Set(mintJWT(t, now.Add(-time.Hour)))
	if !store.Expired(now) {
		t.Fatal("stale token not reported expired")
	}

	store.Set("opaque-token")
	if store.Expired(now) {
		t.Fatal("opaque token must not report expired")
	}
}

func TestFileStorage_RoundTrip(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}

	if _, ok, err := storage.Load("token"); err != nil || ok {
		t.Fatalf("empty storage: ok=%v err=%v", ok, err)
	}

	if err := storage.Save("token", `"abc"`); err != nil {
		t.Fatalf("Save: %v", err)
	}
	value, ok, err := storage.Load("token")
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if value != `"abc"` {
		t.Fatalf("value = %q", value)
	}

	if err := storage.Delete("token"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := storage.Delete("token"); err != nil {
		t.Fatalf("Delete of absent key: %v", err)
	}
	if _, ok, _ := storage.Load("token"); ok {
		t.Fatal("value survived delete")
	}
}
