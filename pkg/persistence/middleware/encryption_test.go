package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"
	"time"

	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/persistence/middleware"
	"github.com/arborhq/arbor/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func deliveryRecord(id string) *ports.PlanRecord {
	now := time.Now().UTC()
	return &ports.PlanRecord{
		ID:     id,
		Domain: "delivery",
		Plan: domain.Plan{
			{Unit: "units/load", Params: map[string]any{"bay": 3}},
			{Unit: "units/fly"},
		},
		MTR:       domain.MTR{{Task: "deliver", Method: "by_air", Priority: 10}},
		State:     domain.State{"secret": "my-secret-sauce", "fuel": 50.0},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	// Setup
	underlyingStore := NewMockStore()
	key := generateKey(t)
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	original := deliveryRecord("test-session")

	// 1. Save
	if err := secureStore.Save(ctx, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// 2. Verify Underlying Store directly (Should be encrypted)
	stored, err := underlyingStore.Load(ctx, "test-session")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if val, ok := stored.State["secret"]; ok {
		t.Fatalf("Expected secret to be hidden, found: %v", val)
	}
	if _, ok := stored.State["__encrypted__"]; !ok {
		t.Fatal("Expected __encrypted__ field in stored state")
	}
	if len(stored.Plan) != 0 || len(stored.MTR) != 0 || stored.Domain != "" {
		t.Fatal("Expected plan, traversal record, and domain to be hidden")
	}
	// Identity and timestamps stay readable for listing.
	if stored.ID != "test-session" || stored.CreatedAt.IsZero() {
		t.Error("Expected envelope to keep ID and timestamps")
	}

	// 3. Load via Middleware (Should be decrypted)
	loaded, err := secureStore.Load(ctx, "test-session")
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if loaded.State["secret"] != "my-secret-sauce" {
		t.Errorf("Expected 'my-secret-sauce', got %v", loaded.State["secret"])
	}
	if len(loaded.Plan) != 2 || loaded.Plan[0].Unit != "units/load" {
		t.Errorf("Expected plan to survive the roundtrip, got %v", loaded.Plan.Units())
	}
	if loaded.Domain != "delivery" {
		t.Errorf("Expected domain 'delivery', got %q", loaded.Domain)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	// Setup
	underlyingStore := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	// Create middleware with OLD key to save the initial record
	mwOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})
	secureStoreOld := mwOld(underlyingStore)

	ctx := context.Background()
	original := deliveryRecord("rotation-session")
	original.State["data"] = "encrypted-with-old-key"

	// 1. Save with OLD key
	if err := secureStoreOld.Save(ctx, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// 2. Load with NEW key (Active) + OLD key (Fallback)
	mwNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	secureStoreNew := mwNew(underlyingStore)

	loaded, err := secureStoreNew.Load(ctx, "rotation-session")
	if err != nil {
		t.Fatalf("Load with rotated key failed: %v", err)
	}
	if loaded.State["data"] != "encrypted-with-old-key" {
		t.Error("Decryption with fallback key failed")
	}

	// 3. Save again (Re-encrypts with the NEW key)
	loaded.State["data"] = "encrypted-with-new-key"
	if err := secureStoreNew.Save(ctx, loaded); err != nil {
		t.Fatalf("Save with new key failed: %v", err)
	}

	// 4. Verify we CANNOT load with just the OLD key anymore
	if _, err := secureStoreOld.Load(ctx, "rotation-session"); err == nil {
		t.Error("Expected failure when loading new-key encryption with old-key middleware")
	}
}

func TestEncryptionMiddleware_RejectsPlainRecord(t *testing.T) {
	underlyingStore := NewMockStore()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	// A record written behind the middleware's back carries no envelope.
	if err := underlyingStore.Save(ctx, deliveryRecord("plain-session")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := secureStore.Load(ctx, "plain-session"); err == nil {
		t.Error("Expected failure when loading an unencrypted record")
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for invalid key size")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
}
