package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

func TestCreatePackageNumbersPerCut(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)
	ctx := env.processorCtx()

	for want := 1; want <= 3; want++ {
		pkg, err := env.packages.CreatePackage(ctx, sheet.ID, CreatePackageInput{CutID: "ribeye", QuantityInPackage: 2})
		if err != nil {
			t.Fatalf("create ribeye package %d: %v", want, err)
		}
		if pkg.PackageNumber != want {
			t.Fatalf("ribeye package number = %d, want %d", pkg.PackageNumber, want)
		}
	}

	// A different cut has its own independent sequence.
	pkg, err := env.packages.CreatePackage(ctx, sheet.ID, CreatePackageInput{CutID: "brisket_whole", QuantityInPackage: 1})
	if err != nil {
		t.Fatalf("create brisket package: %v", err)
	}
	if pkg.PackageNumber != 1 {
		t.Fatalf("brisket package number = %d, want 1", pkg.PackageNumber)
	}
	// Name resolved from the taxonomy when the caller omits it.
	if pkg.CutName != "Whole Brisket" {
		t.Fatalf("resolved cut name = %q", pkg.CutName)
	}
}

func TestCreatePackageNumbersPastForeignRows(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)

	if _, err := env.packages.CreatePackage(env.processorCtx(), sheet.ID, CreatePackageInput{CutID: "ribeye"}); err != nil {
		t.Fatalf("seed package: %v", err)
	}
	// A row the service did not create still advances the sequence.
	_, err := env.packageRepo.Create(context.Background(), nil, &types.ProducedPackage{
		ID:            uuid.New(),
		CutSheetID:    sheet.ID,
		CutID:         "ribeye",
		CutName:       "Ribeye",
		PackageNumber: 2,
	})
	if err != nil {
		t.Fatalf("pre-insert contender: %v", err)
	}
	pkg, err := env.packages.CreatePackage(env.processorCtx(), sheet.ID, CreatePackageInput{CutID: "ribeye"})
	if err != nil {
		t.Fatalf("create after foreign insert: %v", err)
	}
	if pkg.PackageNumber != 3 {
		t.Fatalf("package number = %d, want 3", pkg.PackageNumber)
	}
}

func TestPackageNumberUniquenessEnforced(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)

	if _, err := env.packages.CreatePackage(env.processorCtx(), sheet.ID, CreatePackageInput{CutID: "ribeye"}); err != nil {
		t.Fatalf("seed package: %v", err)
	}
	// Two concurrent writers computing the same number: the second insert
	// must be rejected by the index, not silently duplicated.
	_, err := env.packageRepo.Create(context.Background(), nil, &types.ProducedPackage{
		ID:            uuid.New(),
		CutSheetID:    sheet.ID,
		CutID:         "ribeye",
		CutName:       "Ribeye",
		PackageNumber: 1,
	})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate package number should hit the unique index, got %v", err)
	}
}

func TestCreatePackageRejectsProducerAndDefaultsQuantity(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)

	if _, err := env.packages.CreatePackage(env.producerCtx(), sheet.ID, CreatePackageInput{CutID: "ribeye"}); !apierr.IsCode(err, apierr.CodeNotAuthorized) {
		t.Fatal("producer package creation should be rejected")
	}
	pkg, err := env.packages.CreatePackage(env.processorCtx(), sheet.ID, CreatePackageInput{CutID: "ribeye"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if pkg.QuantityInPackage != 1 {
		t.Fatalf("quantity defaulted to %d, want 1", pkg.QuantityInPackage)
	}
}

func TestPackageWeightAndDeleteHistory(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)
	ctx := env.processorCtx()

	tick()
	weight := 1.8
	pkg, err := env.packages.CreatePackage(ctx, sheet.ID, CreatePackageInput{CutID: "ribeye", ActualWeightLbs: &weight})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	tick()
	if err := env.packages.UpdatePackageWeight(ctx, sheet.ID, pkg.ID, 2.1); err != nil {
		t.Fatalf("update weight: %v", err)
	}
	tick()
	if err := env.packages.DeletePackage(ctx, sheet.ID, pkg.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	remaining, err := env.packages.ListPackages(ctx, sheet.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no packages after delete, got %d", len(remaining))
	}

	entries := env.entries(t, sheet.ID)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries (create sheet + 3 package ops), got %d", len(entries))
	}
	create, update, del := entries[2], entries[1], entries[0]
	if create.ChangeCategory != types.CategoryPackageCreated {
		t.Fatalf("create category = %q", create.ChangeCategory)
	}
	if create.PreviousState != nil {
		t.Fatal("package creation entry must have null previous state")
	}
	if create.AffectedPackageID == nil || *create.AffectedPackageID != pkg.ID {
		t.Fatalf("create affected package = %v", create.AffectedPackageID)
	}
	if update.ChangeType != types.ChangeTypeUpdated {
		t.Fatalf("update type = %q", update.ChangeType)
	}
	if del.PreviousState == nil {
		t.Fatal("delete entry must snapshot the removed package")
	}
	if del.ChangedByRole != types.OrgTypeProcessor {
		t.Fatalf("delete role = %q", del.ChangedByRole)
	}
}

func TestUpdatePackageWeightCrossSheetGuard(t *testing.T) {
	env := newTestEnv(t)
	sheetA := env.mustCreateSheet(t)
	sheetB := env.mustCreateSheet(t)
	ctx := env.processorCtx()

	pkg, err := env.packages.CreatePackage(ctx, sheetA.ID, CreatePackageInput{CutID: "ribeye"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	err = env.packages.UpdatePackageWeight(ctx, sheetB.ID, pkg.ID, 2.0)
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("package addressed through the wrong sheet should be not_found, got %v", err)
	}
}
