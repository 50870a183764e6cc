package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

// Templates are cut sheets with IsTemplate set and no order or processor
// attached. They carry only the producer-editable state: no overlay rows, no
// packages, no ledger beyond the creation entry.

func (cs *cutSheetService) SaveAsTemplate(ctx context.Context, state CutSheetState, name string) (uuid.UUID, error) {
	rd, err := requireProducer(ctx, uuid.Nil)
	if err != nil {
		return uuid.Nil, err
	}
	if name == "" {
		return uuid.Nil, apierr.InvalidArgument(fmt.Errorf("template name is required"))
	}
	if err := cs.validateState(ctx, &state, nil); err != nil {
		return uuid.Nil, err
	}

	sheet := sheetFromState(state)
	sheet.ID = uuid.New()
	sheet.ProducerOrgID = rd.OrganizationID
	sheet.IsTemplate = true
	sheet.TemplateName = &name
	sheet.Status = types.CutSheetStatusDraft
	sheet.HangingWeightLbs = nil
	sheet.LastModifiedByRole = string(rd.OrganizationType)
	sheet.LastModifiedByUserID = &rd.UserID

	items := itemRows(sheet.ID, state.Items)
	sausages := sausageRows(sheet.ID, state.Sausages)

	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.sheetRepo.Create(ctx, tx, sheet); err != nil {
			return err
		}
		if _, err := cs.itemRepo.CreateBatch(ctx, tx, items); err != nil {
			return err
		}
		if _, err := cs.sausageRepo.CreateBatch(ctx, tx, sausages); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, apierr.Persistence(fmt.Errorf("save template: %w", err))
	}

	cs.audit.record(ctx, auditRecord{
		Sheet:         sheet,
		Actor:         rd,
		ChangeType:    types.ChangeTypeCreated,
		Category:      types.CategoryInitialCreation,
		Summary:       fmt.Sprintf("Template %q saved", name),
		Previous:      nil,
		New:           initialSnapshot(sheet, items, sausages),
		ChangedFields: []string{},
	})
	return sheet.ID, nil
}

func (cs *cutSheetService) LoadTemplate(ctx context.Context, templateID uuid.UUID) (*CutSheetState, error) {
	rd, err := requireProducer(ctx, uuid.Nil)
	if err != nil {
		return nil, err
	}
	sheet, err := cs.sheetRepo.GetByIDWithChildren(ctx, nil, templateID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("load template: %w", err))
	}
	if sheet == nil || !sheet.IsTemplate {
		return nil, apierr.NotFound(fmt.Errorf("template %s not found", templateID))
	}
	if sheet.ProducerOrgID != rd.OrganizationID {
		return nil, apierr.NotAuthorized(fmt.Errorf("template belongs to another producer"))
	}

	state := &CutSheetState{
		AnimalType:             sheet.AnimalType,
		GroundType:             sheet.GroundType,
		GroundPackageWeightLbs: sheet.GroundPackageWeightLbs,
		PattySize:              sheet.PattySize,
		KeepHeart:              sheet.KeepHeart,
		KeepLiver:              sheet.KeepLiver,
		KeepTongue:             sheet.KeepTongue,
		KeepOxtail:             sheet.KeepOxtail,
		KeepKidneys:            sheet.KeepKidneys,
		KeepTripe:              sheet.KeepTripe,
		StewMeat:               sheet.StewMeat,
		ShortRibs:              sheet.ShortRibs,
		SoupBones:              sheet.SoupBones,
		BaconPreference:        sheet.BaconPreference,
		HamPreference:          sheet.HamPreference,
		ShoulderPreference:     sheet.ShoulderPreference,
		KeepJowls:              sheet.KeepJowls,
		KeepFatBack:            sheet.KeepFatBack,
		KeepLardFat:            sheet.KeepLardFat,
		SpecialInstructions:    sheet.SpecialInstructions,
	}
	for _, it := range sheet.Items {
		state.Items = append(state.Items, CutSheetItemInput{
			CutID:            it.CutID,
			CutName:          it.CutName,
			Thickness:        it.Thickness,
			WeightLbs:        it.WeightLbs,
			PiecesPerPackage: it.PiecesPerPackage,
			SortOrder:        it.SortOrder,
		})
	}
	for _, s := range sheet.Sausages {
		state.Sausages = append(state.Sausages, SausageInput{
			Flavor: s.Flavor,
			Pounds: s.Pounds,
		})
	}
	return state, nil
}

func (cs *cutSheetService) ListTemplates(ctx context.Context) ([]TemplateSummary, error) {
	rd, err := requireProducer(ctx, uuid.Nil)
	if err != nil {
		return nil, err
	}
	sheets, err := cs.sheetRepo.ListTemplatesForOrg(ctx, nil, rd.OrganizationID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("list templates: %w", err))
	}
	out := make([]TemplateSummary, 0, len(sheets))
	for _, s := range sheets {
		name := ""
		if s.TemplateName != nil {
			name = *s.TemplateName
		}
		out = append(out, TemplateSummary{ID: s.ID, Name: name, AnimalType: s.AnimalType})
	}
	return out, nil
}
