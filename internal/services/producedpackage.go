package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/repos"
	"github.com/pasturelink/pasturelink-backend/internal/requestdata"
	"github.com/pasturelink/pasturelink-backend/internal/taxonomy"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

// packageNumberRetries bounds the insert retry when two workers race to the
// same package number. The unique index on (cut_sheet_id, cut_id,
// package_number) makes the loser's insert fail rather than silently
// duplicating a number.
const packageNumberRetries = 3

type CreatePackageInput struct {
	CutID               string   `json:"cut_id"`
	CutName             string   `json:"cut_name"`
	PrimalID            *string  `json:"primal_id,omitempty"`
	QuantityInPackage   int      `json:"quantity_in_package"`
	ActualWeightLbs     *float64 `json:"actual_weight_lbs,omitempty"`
	Thickness           *string  `json:"thickness,omitempty"`
	ProcessingStyle     *string  `json:"processing_style,omitempty"`
	ProcessorAdded      bool     `json:"processor_added"`
	ProcessorNotes      *string  `json:"processor_notes,omitempty"`
	LivestockTrackingID *string  `json:"livestock_tracking_id,omitempty"`
}

type PackageService interface {
	CreatePackage(ctx context.Context, sheetID uuid.UUID, input CreatePackageInput) (*types.ProducedPackage, error)
	UpdatePackageWeight(ctx context.Context, sheetID, packageID uuid.UUID, weightLbs float64) error
	DeletePackage(ctx context.Context, sheetID, packageID uuid.UUID) error
	ListPackages(ctx context.Context, sheetID uuid.UUID) ([]*types.ProducedPackage, error)
}

type packageService struct {
	db          *gorm.DB
	log         *logger.Logger
	sheetRepo   repos.CutSheetRepo
	packageRepo repos.ProducedPackageRepo
	tax         *taxonomy.Taxonomy
	audit       *auditWriter
}

func NewPackageService(
	db *gorm.DB,
	log *logger.Logger,
	sheetRepo repos.CutSheetRepo,
	packageRepo repos.ProducedPackageRepo,
	historyRepo repos.CutSheetHistoryRepo,
	tax *taxonomy.Taxonomy,
	notifier ChangeNotifier,
) PackageService {
	serviceLog := log.With("service", "PackageService")
	return &packageService{
		db:          db,
		log:         serviceLog,
		sheetRepo:   sheetRepo,
		packageRepo: packageRepo,
		tax:         tax,
		audit:       newAuditWriter(serviceLog, historyRepo, notifier),
	}
}

func (ps *packageService) requireSheetProcessor(ctx context.Context, sheetID uuid.UUID) (*types.CutSheet, *requestdata.RequestData, error) {
	sheet, err := ps.sheetRepo.GetByID(ctx, nil, sheetID)
	if err != nil {
		return nil, nil, apierr.Persistence(fmt.Errorf("load cut sheet: %w", err))
	}
	if sheet == nil {
		return nil, nil, apierr.NotFound(fmt.Errorf("cut sheet %s not found", sheetID))
	}
	if sheet.IsTemplate || sheet.ProcessorOrgID == nil {
		return nil, nil, apierr.InvalidArgument(fmt.Errorf("templates cannot record packages"))
	}
	rd, err := requireProcessor(ctx, *sheet.ProcessorOrgID)
	if err != nil {
		return nil, nil, err
	}
	return sheet, rd, nil
}

// CreatePackage assigns the next package number per (sheet, cut). Numbering
// reads max+1 and retries on a unique-index collision so concurrent inserts
// for the same cut settle on distinct consecutive numbers.
func (ps *packageService) CreatePackage(ctx context.Context, sheetID uuid.UUID, input CreatePackageInput) (*types.ProducedPackage, error) {
	sheet, rd, err := ps.requireSheetProcessor(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if input.CutID == "" {
		return nil, apierr.InvalidArgument(fmt.Errorf("package requires a cut id"))
	}
	cutName := input.CutName
	if cutName == "" {
		if cut, ok := ps.tax.FindCut(input.CutID); ok {
			cutName = cut.Name
		} else {
			cutName = input.CutID
		}
	}
	quantity := input.QuantityInPackage
	if quantity <= 0 {
		quantity = 1
	}

	var pkg *types.ProducedPackage
	var lastErr error
	for attempt := 0; attempt < packageNumberRetries; attempt++ {
		maxNumber, err := ps.packageRepo.MaxPackageNumber(ctx, nil, sheetID, input.CutID)
		if err != nil {
			return nil, apierr.Persistence(fmt.Errorf("read package numbering: %w", err))
		}
		candidate := &types.ProducedPackage{
			ID:                  uuid.New(),
			CutSheetID:          sheetID,
			CutID:               input.CutID,
			PackageNumber:       maxNumber + 1,
			CutName:             cutName,
			PrimalID:            input.PrimalID,
			QuantityInPackage:   quantity,
			ActualWeightLbs:     input.ActualWeightLbs,
			Thickness:           input.Thickness,
			ProcessingStyle:     input.ProcessingStyle,
			ProcessorAdded:      input.ProcessorAdded,
			ProcessorNotes:      input.ProcessorNotes,
			LivestockTrackingID: input.LivestockTrackingID,
		}
		created, err := ps.packageRepo.Create(ctx, nil, candidate)
		if err == nil {
			pkg = created
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			lastErr = err
			continue
		}
		return nil, apierr.Persistence(fmt.Errorf("create package: %w", err))
	}
	if pkg == nil {
		return nil, apierr.Persistence(fmt.Errorf("package numbering contention exceeded %d attempts: %w", packageNumberRetries, lastErr))
	}

	ps.audit.record(ctx, auditRecord{
		Sheet:             sheet,
		Actor:             rd,
		ChangeType:        types.ChangeTypeUpdated,
		Category:          types.CategoryPackageCreated,
		Summary:           fmt.Sprintf("Package %d of %s recorded", pkg.PackageNumber, cutName),
		Previous:          nil,
		New:               packageSnapshot(pkg),
		ChangedFields:     []string{"packages"},
		AffectedCutID:     &pkg.CutID,
		AffectedPackageID: &pkg.ID,
	})
	return pkg, nil
}

func (ps *packageService) UpdatePackageWeight(ctx context.Context, sheetID, packageID uuid.UUID, weightLbs float64) error {
	sheet, rd, err := ps.requireSheetProcessor(ctx, sheetID)
	if err != nil {
		return err
	}
	if weightLbs <= 0 {
		return apierr.InvalidArgument(fmt.Errorf("package weight must be positive"))
	}
	pkg, err := ps.packageRepo.GetByID(ctx, nil, packageID)
	if err != nil {
		return apierr.Persistence(fmt.Errorf("load package: %w", err))
	}
	if pkg == nil || pkg.CutSheetID != sheetID {
		return apierr.NotFound(fmt.Errorf("package %s not found on cut sheet %s", packageID, sheetID))
	}

	previous := map[string]any{"actual_weight_lbs": ptrValue(pkg.ActualWeightLbs)}
	if err := ps.packageRepo.UpdateFields(ctx, nil, packageID, map[string]interface{}{
		"actual_weight_lbs": weightLbs,
	}); err != nil {
		return apierr.Persistence(fmt.Errorf("update package weight: %w", err))
	}

	ps.audit.record(ctx, auditRecord{
		Sheet:             sheet,
		Actor:             rd,
		ChangeType:        types.ChangeTypeUpdated,
		Category:          types.CategoryPackageCreated,
		Summary:           fmt.Sprintf("Package %d of %s weighed: %.2f lbs", pkg.PackageNumber, pkg.CutName, weightLbs),
		Previous:          previous,
		New:               map[string]any{"actual_weight_lbs": weightLbs},
		ChangedFields:     []string{"actual_weight_lbs"},
		AffectedCutID:     &pkg.CutID,
		AffectedPackageID: &pkg.ID,
	})
	return nil
}

// DeletePackage removes a package row. The full prior row is kept as the
// entry's previous state so the deletion stays reconstructible.
func (ps *packageService) DeletePackage(ctx context.Context, sheetID, packageID uuid.UUID) error {
	sheet, rd, err := ps.requireSheetProcessor(ctx, sheetID)
	if err != nil {
		return err
	}
	pkg, err := ps.packageRepo.GetByID(ctx, nil, packageID)
	if err != nil {
		return apierr.Persistence(fmt.Errorf("load package: %w", err))
	}
	if pkg == nil || pkg.CutSheetID != sheetID {
		return apierr.NotFound(fmt.Errorf("package %s not found on cut sheet %s", packageID, sheetID))
	}
	if err := ps.packageRepo.Delete(ctx, nil, packageID); err != nil {
		return apierr.Persistence(fmt.Errorf("delete package: %w", err))
	}

	ps.audit.record(ctx, auditRecord{
		Sheet:             sheet,
		Actor:             rd,
		ChangeType:        types.ChangeTypeUpdated,
		Category:          types.CategoryPackageCreated,
		Summary:           fmt.Sprintf("Package %d of %s deleted", pkg.PackageNumber, pkg.CutName),
		Previous:          packageSnapshot(pkg),
		New:               map[string]any{},
		ChangedFields:     []string{"packages"},
		AffectedCutID:     &pkg.CutID,
		AffectedPackageID: &pkg.ID,
	})
	return nil
}

func (ps *packageService) ListPackages(ctx context.Context, sheetID uuid.UUID) ([]*types.ProducedPackage, error) {
	sheet, err := ps.sheetRepo.GetByID(ctx, nil, sheetID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("load cut sheet: %w", err))
	}
	if sheet == nil {
		return nil, apierr.NotFound(fmt.Errorf("cut sheet %s not found", sheetID))
	}
	if _, err := requireSheetParty(ctx, sheet); err != nil {
		return nil, err
	}
	packages, err := ps.packageRepo.ListBySheet(ctx, nil, sheetID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("list packages: %w", err))
	}
	return packages, nil
}

func packageSnapshot(pkg *types.ProducedPackage) map[string]any {
	snapshot := map[string]any{
		"cut_id":              pkg.CutID,
		"cut_name":            pkg.CutName,
		"package_number":      pkg.PackageNumber,
		"quantity_in_package": pkg.QuantityInPackage,
		"processor_added":     pkg.ProcessorAdded,
	}
	if pkg.ActualWeightLbs != nil {
		snapshot["actual_weight_lbs"] = *pkg.ActualWeightLbs
	}
	if pkg.Thickness != nil {
		snapshot["thickness"] = *pkg.Thickness
	}
	if pkg.ProcessingStyle != nil {
		snapshot["processing_style"] = *pkg.ProcessingStyle
	}
	if pkg.ProcessorNotes != nil {
		snapshot["processor_notes"] = *pkg.ProcessorNotes
	}
	if pkg.LivestockTrackingID != nil {
		snapshot["livestock_tracking_id"] = *pkg.LivestockTrackingID
	}
	return snapshot
}
