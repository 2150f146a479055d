package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "delai_travel/internal/adapters/redis"
	"delai_travel/internal/domain"
)

func TestCache_CatalogRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	records := []domain.HotelRecord{
		{HotelName: "Henann Regency", City: "Boracay", Total: 6200, HotelRating: 4},
		{HotelName: "Azalea Residences", City: "Baguio", Total: 3100, HotelRating: 4},
	}

	var miss []domain.HotelRecord
	ok, err := c.Get(ctx, "catalog:boracay", &miss)
	if err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "catalog:boracay", records, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got []domain.HotelRecord
	ok, err = c.Get(ctx, "catalog:boracay", &got)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[0].HotelName != "Henann Regency" || got[1].Total != 3100 {
		t.Fatalf("unexpected payload: %+v", got)
	}

	if err := c.Del(ctx, "catalog:boracay"); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, err = c.Get(ctx, "catalog:boracay", &got)
	if err != nil || ok {
		t.Fatalf("expected miss after del, got ok=%v err=%v", ok, err)
	}
}
