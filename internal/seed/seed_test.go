package seed

import (
	"context"
	"testing"

	productrepo "storefront/internal/repository/product"
)

func TestApply_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := productrepo.NewMemory()

	if err := Apply(ctx, repo); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := Apply(ctx, repo); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != len(Catalog()) {
		t.Fatalf("expected %d products, got %d", len(Catalog()), len(list))
	}

	lamp, err := repo.GetByKey(ctx, "click-and-go-taxi-lamp")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	complete, ok := lamp.Option("complete")
	if !ok || complete.PriceCents != 348000 {
		t.Fatalf("unexpected complete option %+v", complete)
	}
	top, ok := lamp.Option("topOnly")
	if !ok || top.PriceCents != 250000 {
		t.Fatalf("unexpected top option %+v", top)
	}
}
