package shop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rolevka.ru/points-bot/internal/common"
	"rolevka.ru/points-bot/internal/entitlements"
	"rolevka.ru/points-bot/internal/ledger"
)

func newTestShop(t *testing.T, balance int64) (*Service, *ledger.MemoryStore, *entitlements.MemoryStore) {
	t.Helper()
	ledgerStore := ledger.NewMemoryStore()
	entStore := entitlements.NewMemoryStore()

	if balance > 0 {
		_, err := ledgerStore.Commit(context.Background(), "fp-seed", []ledger.Entry{{
			UserID:      1,
			Amount:      decimal.NewFromInt(balance),
			Type:        ledger.TypeAdd,
			Description: "стартовый баланс",
		}})
		if err != nil {
			t.Fatalf("посев баланса: %v", err)
		}
	}

	svc := NewService(ledger.NewService(ledgerStore), entitlements.NewService(entStore))
	return svc, ledgerStore, entStore
}

func TestBuySuccess(t *testing.T) {
	ctx := context.Background()
	svc, ledgerStore, entStore := newTestShop(t, 1000)

	item, err := svc.Buy(ctx, "fp-buy-1", 1, "stickers")
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if item.Code != "stickers" {
		t.Errorf("куплен %s", item.Code)
	}

	bal, _ := ledgerStore.Balance(ctx, 1)
	if !bal.Equal(decimal.NewFromInt(700)) {
		t.Errorf("баланс = %s, ожидалось 700 (1000 − 300)", bal)
	}

	has, _ := entStore.HasActive(ctx, 1, entitlements.KindStickerPackBasic, time.Now())
	if !has {
		t.Error("грант не выдан после покупки")
	}
}

func TestBuyIdempotentOnRedelivery(t *testing.T) {
	ctx := context.Background()
	svc, ledgerStore, entStore := newTestShop(t, 1000)

	if _, err := svc.Buy(ctx, "fp-buy", 1, "title"); err != nil {
		t.Fatalf("первая покупка: %v", err)
	}

	// Повтор команды с тем же отпечатком возможен только до выдачи гранта,
	// поэтому сбрасываем грант и повторяем: списание не должно задвоиться.
	if _, err := entStore.ExpireDue(ctx, time.Now().Add(15*24*time.Hour)); err != nil {
		t.Fatalf("ExpireDue: %v", err)
	}

	item, err := svc.Buy(ctx, "fp-buy", 1, "title")
	if err != nil {
		t.Fatalf("повторная покупка: %v", err)
	}
	if item.Code != "title" {
		t.Errorf("куплен %s", item.Code)
	}

	bal, _ := ledgerStore.Balance(ctx, 1)
	if !bal.Equal(decimal.NewFromInt(500)) {
		t.Errorf("баланс = %s, ожидалось 500 (одно списание)", bal)
	}
}

func TestBuyErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown item", func(t *testing.T) {
		svc, _, _ := newTestShop(t, 1000)
		if _, err := svc.Buy(ctx, "fp", 1, "yacht"); !errors.Is(err, common.ErrItemNotFound) {
			t.Errorf("ожидался ErrItemNotFound, получено %v", err)
		}
	})

	t.Run("insufficient balance", func(t *testing.T) {
		svc, ledgerStore, _ := newTestShop(t, 100)
		if _, err := svc.Buy(ctx, "fp", 1, "stickers"); !errors.Is(err, common.ErrInsufficientBalance) {
			t.Errorf("ожидался ErrInsufficientBalance, получено %v", err)
		}
		bal, _ := ledgerStore.Balance(ctx, 1)
		if !bal.Equal(decimal.NewFromInt(100)) {
			t.Errorf("баланс изменился при отказе: %s", bal)
		}
	})

	t.Run("already owned", func(t *testing.T) {
		svc, _, _ := newTestShop(t, 1000)
		if _, err := svc.Buy(ctx, "fp-1", 1, "stickers"); err != nil {
			t.Fatalf("первая покупка: %v", err)
		}
		if _, err := svc.Buy(ctx, "fp-2", 1, "stickers"); !errors.Is(err, common.ErrAlreadyOwned) {
			t.Errorf("ожидался ErrAlreadyOwned, получено %v", err)
		}
	})
}

func TestFindItem(t *testing.T) {
	for _, code := range []string{"stickers", "stickers_plus", "title"} {
		if _, ok := FindItem(code); !ok {
			t.Errorf("товар %s не найден в каталоге", code)
		}
	}
	if _, ok := FindItem("nope"); ok {
		t.Error("найден несуществующий товар")
	}
}
