package entitlements

import (
	"context"
	"testing"
	"time"
)

func TestExpireDueRevokesOnlyDue(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	// Один просроченный грант и один действующий
	if err := store.Upsert(ctx, 1, KindStickerPackBasic, now.Add(-time.Hour)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := store.Upsert(ctx, 2, KindCustomTitle, now.Add(24*time.Hour)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	svc := NewService(store)
	revoked, err := svc.ExpireDue(ctx, now)
	if err != nil {
		t.Fatalf("ExpireDue: %v", err)
	}
	if revoked != 1 {
		t.Fatalf("отозвано %d, ожидался 1", revoked)
	}

	has, _ := store.HasActive(ctx, 1, KindStickerPackBasic, now)
	if has {
		t.Error("просроченный грант остался активным")
	}
	has, _ = store.HasActive(ctx, 2, KindCustomTitle, now)
	if !has {
		t.Error("действующий грант отозван ошибочно")
	}
}

func TestExpireDueTerminal(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	if err := store.Upsert(ctx, 1, KindStickerPackBasic, now.Add(-time.Minute)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	svc := NewService(store)
	if revoked, _ := svc.ExpireDue(ctx, now); revoked != 1 {
		t.Fatalf("первый цикл отозвал %d", revoked)
	}
	// Повторный цикл не трогает уже отозванный грант
	if revoked, _ := svc.ExpireDue(ctx, now.Add(time.Minute)); revoked != 0 {
		t.Fatalf("второй цикл отозвал %d, ожидался 0", revoked)
	}
}

func TestUpsertReactivatesGrant(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	if err := store.Upsert(ctx, 1, KindStickerPackBasic, now.Add(-time.Hour)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := store.ExpireDue(ctx, now); err != nil {
		t.Fatalf("ExpireDue: %v", err)
	}

	// Повторная покупка продлевает и реактивирует
	if err := store.Upsert(ctx, 1, KindStickerPackBasic, now.Add(24*time.Hour)); err != nil {
		t.Fatalf("повторный Upsert: %v", err)
	}
	has, _ := store.HasActive(ctx, 1, KindStickerPackBasic, now)
	if !has {
		t.Error("грант не реактивирован после повторной покупки")
	}
}

func TestActiveGrantsFiltersExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	store.Upsert(ctx, 1, KindStickerPackBasic, now.Add(time.Hour))
	store.Upsert(ctx, 1, KindCustomTitle, now.Add(-time.Hour))

	grants, err := store.ActiveGrants(ctx, 1, now)
	if err != nil {
		t.Fatalf("ActiveGrants: %v", err)
	}
	if len(grants) != 1 {
		t.Fatalf("активных грантов %d, ожидался 1", len(grants))
	}
	if grants[0].Kind != KindStickerPackBasic {
		t.Errorf("активный грант = %s", grants[0].Kind)
	}
}

func TestGrantExpired(t *testing.T) {
	now := time.Now()
	g := Grant{ExpiresAt: now}
	if !g.Expired(now) {
		t.Error("грант с expires_at == now должен считаться истёкшим")
	}
	g.ExpiresAt = now.Add(time.Second)
	if g.Expired(now) {
		t.Error("грант с будущим expires_at считается истёкшим")
	}
}
