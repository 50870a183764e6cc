package services

import (
	"context"
	"encoding/json"
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

type CutSheetItemInput struct {
	CutID            string   `json:"cut_id"`
	CutName          string   `json:"cut_name"`
	Thickness        *string  `json:"thickness,omitempty"`
	WeightLbs        *float64 `json:"weight_lbs,omitempty"`
	PiecesPerPackage *int     `json:"pieces_per_package,omitempty"`
	SortOrder        int      `json:"sort_order"`
}

type SausageInput struct {
	Flavor string  `json:"flavor"`
	Pounds float64 `json:"pounds"`
}

// CutSheetState is the producer-editable document state: what a draft is
// created from and what LoadTemplate reconstructs.
type CutSheetState struct {
	AnimalType             string   `json:"animal_type"`
	HangingWeightLbs       *float64 `json:"hanging_weight_lbs,omitempty"`
	GroundType             string   `json:"ground_type,omitempty"`
	GroundPackageWeightLbs *float64 `json:"ground_package_weight_lbs,omitempty"`
	PattySize              string   `json:"patty_size,omitempty"`
	KeepHeart              bool     `json:"keep_heart"`
	KeepLiver              bool     `json:"keep_liver"`
	KeepTongue             bool     `json:"keep_tongue"`
	KeepOxtail             bool     `json:"keep_oxtail"`
	KeepKidneys            bool     `json:"keep_kidneys"`
	KeepTripe              bool     `json:"keep_tripe"`
	StewMeat               bool     `json:"stew_meat"`
	ShortRibs              bool     `json:"short_ribs"`
	SoupBones              bool     `json:"soup_bones"`
	BaconPreference        string   `json:"bacon_preference,omitempty"`
	HamPreference          string   `json:"ham_preference,omitempty"`
	ShoulderPreference     string   `json:"shoulder_preference,omitempty"`
	KeepJowls              bool     `json:"keep_jowls"`
	KeepFatBack            bool     `json:"keep_fat_back"`
	KeepLardFat            bool     `json:"keep_lard_fat"`
	SpecialInstructions    *string  `json:"special_instructions,omitempty"`

	Items    []CutSheetItemInput `json:"items"`
	Sausages []SausageInput      `json:"sausages,omitempty"`
}

// CutSheetView is the read-side projection: document fields plus the
// producer's selections and the processor overlay assembled from the keyed
// overlay tables.
type CutSheetView struct {
	Sheet                  *types.CutSheet                        `json:"sheet"`
	Items                  []*types.CutSheetItem                  `json:"items"`
	Sausages               []*types.CutSheetSausage               `json:"sausages"`
	ProcessorModifications map[string]*types.CutSheetModification `json:"processor_modifications"`
	RemovedCuts            []*types.CutSheetRemovedCut            `json:"removed_cuts"`
	AddedCuts              []*types.CutSheetAddedCut              `json:"added_cuts"`
	Packages               []*types.ProducedPackage               `json:"packages"`
}

// CutParameterUpdates is a presence-based patch for one cut's processing
// parameters.
type CutParameterUpdates struct {
	Thickness        *string  `json:"thickness,omitempty"`
	WeightLbs        *float64 `json:"weight_lbs,omitempty"`
	PiecesPerPackage *int     `json:"pieces_per_package,omitempty"`
	ProcessingStyle  *string  `json:"processing_style,omitempty"`
	Note             *string  `json:"note,omitempty"`
}

type AddCutInput struct {
	CutID            string  `json:"cut_id"`
	CutName          string  `json:"cut_name"`
	PrimalID         *string `json:"primal_id,omitempty"`
	Thickness        *string `json:"thickness,omitempty"`
	PiecesPerPackage *int    `json:"pieces_per_package,omitempty"`
	Note             *string `json:"note,omitempty"`
}

type TemplateSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	AnimalType string    `json:"animal_type"`
}

type CutSheetService interface {
	CreateCutSheet(ctx context.Context, orderID uuid.UUID, state CutSheetState) (*types.CutSheet, error)
	GetCutSheet(ctx context.Context, sheetID uuid.UUID) (*CutSheetView, error)
	ListForOrder(ctx context.Context, orderID uuid.UUID) ([]*types.CutSheet, error)

	ReplaceItems(ctx context.Context, sheetID uuid.UUID, items []CutSheetItemInput) error
	ReplaceSausages(ctx context.Context, sheetID uuid.UUID, sausages []SausageInput) error
	SubmitCutSheet(ctx context.Context, sheetID uuid.UUID) error

	UpdateCutParameters(ctx context.Context, sheetID uuid.UUID, cutID string, updates CutParameterUpdates) error
	RemoveCut(ctx context.Context, sheetID uuid.UUID, cutID, cutName, reason string) error
	RestoreCut(ctx context.Context, sheetID uuid.UUID, cutID string) error
	AddCut(ctx context.Context, sheetID uuid.UUID, cut AddCutInput) error
	UpdateProcessorNotes(ctx context.Context, sheetID uuid.UUID, notes string) error
	UpdateHangingWeight(ctx context.Context, sheetID uuid.UUID, weight float64) error

	SaveAsTemplate(ctx context.Context, state CutSheetState, name string) (uuid.UUID, error)
	LoadTemplate(ctx context.Context, templateID uuid.UUID) (*CutSheetState, error)
	ListTemplates(ctx context.Context) ([]TemplateSummary, error)
}

type cutSheetService struct {
	db          *gorm.DB
	log         *logger.Logger
	sheetRepo   repos.CutSheetRepo
	itemRepo    repos.CutSheetItemRepo
	sausageRepo repos.CutSheetSausageRepo
	modRepo     repos.CutSheetModificationRepo
	removedRepo repos.CutSheetRemovedCutRepo
	addedRepo   repos.CutSheetAddedCutRepo
	orderRepo   repos.ProcessingOrderRepo
	configRepo  repos.CutConfigRepo
	packageRepo repos.ProducedPackageRepo
	tax         *taxonomy.Taxonomy
	audit       *auditWriter
}

func NewCutSheetService(
	db *gorm.DB,
	log *logger.Logger,
	sheetRepo repos.CutSheetRepo,
	itemRepo repos.CutSheetItemRepo,
	sausageRepo repos.CutSheetSausageRepo,
	modRepo repos.CutSheetModificationRepo,
	removedRepo repos.CutSheetRemovedCutRepo,
	addedRepo repos.CutSheetAddedCutRepo,
	orderRepo repos.ProcessingOrderRepo,
	configRepo repos.CutConfigRepo,
	packageRepo repos.ProducedPackageRepo,
	historyRepo repos.CutSheetHistoryRepo,
	tax *taxonomy.Taxonomy,
	notifier ChangeNotifier,
) CutSheetService {
	serviceLog := log.With("service", "CutSheetService")
	return &cutSheetService{
		db:          db,
		log:         serviceLog,
		sheetRepo:   sheetRepo,
		itemRepo:    itemRepo,
		sausageRepo: sausageRepo,
		modRepo:     modRepo,
		removedRepo: removedRepo,
		addedRepo:   addedRepo,
		orderRepo:   orderRepo,
		configRepo:  configRepo,
		packageRepo: packageRepo,
		tax:         tax,
		audit:       newAuditWriter(serviceLog, historyRepo, notifier),
	}
}

func (cs *cutSheetService) CreateCutSheet(ctx context.Context, orderID uuid.UUID, state CutSheetState) (*types.CutSheet, error) {
	rd, err := requireProducer(ctx, uuid.Nil)
	if err != nil {
		return nil, err
	}
	order, err := cs.orderRepo.GetByID(ctx, nil, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(fmt.Errorf("processing order %s not found", orderID))
		}
		return nil, apierr.Persistence(fmt.Errorf("load processing order: %w", err))
	}
	if order.ProducerOrgID != rd.OrganizationID {
		return nil, apierr.NotAuthorized(fmt.Errorf("order belongs to another producer"))
	}
	if err := cs.validateState(ctx, &state, &order.ProcessorOrgID); err != nil {
		return nil, err
	}

	sheet := sheetFromState(state)
	sheet.ID = uuid.New()
	sheet.ProcessingOrderID = &order.ID
	sheet.ProducerOrgID = rd.OrganizationID
	sheet.ProcessorOrgID = &order.ProcessorOrgID
	sheet.Status = types.CutSheetStatusDraft
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
		return nil, apierr.Persistence(fmt.Errorf("create cut sheet: %w", err))
	}

	cs.audit.record(ctx, auditRecord{
		Sheet:         sheet,
		Actor:         rd,
		ChangeType:    types.ChangeTypeCreated,
		Category:      types.CategoryInitialCreation,
		Summary:       fmt.Sprintf("Cut sheet created for %s", sheet.AnimalType),
		Previous:      nil,
		New:           initialSnapshot(sheet, items, sausages),
		ChangedFields: []string{},
	})
	return sheet, nil
}

func (cs *cutSheetService) GetCutSheet(ctx context.Context, sheetID uuid.UUID) (*CutSheetView, error) {
	sheet, err := cs.mustGetSheet(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if _, err := requireSheetParty(ctx, sheet); err != nil {
		return nil, err
	}
	items, err := cs.itemRepo.ListBySheet(ctx, nil, sheetID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("load cut sheet items: %w", err))
	}
	sausages, err := cs.sausageRepo.ListBySheet(ctx, nil, sheetID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("load cut sheet sausages: %w", err))
	}
	mods, err := cs.modRepo.ListBySheet(ctx, nil, sheetID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("load cut sheet modifications: %w", err))
	}
	removed, err := cs.removedRepo.ListBySheet(ctx, nil, sheetID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("load removed cuts: %w", err))
	}
	added, err := cs.addedRepo.ListBySheet(ctx, nil, sheetID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("load added cuts: %w", err))
	}
	packages, err := cs.packageRepo.ListBySheet(ctx, nil, sheetID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("load produced packages: %w", err))
	}
	modMap := make(map[string]*types.CutSheetModification, len(mods))
	for _, m := range mods {
		modMap[m.CutID] = m
	}
	return &CutSheetView{
		Sheet:                  sheet,
		Items:                  items,
		Sausages:               sausages,
		ProcessorModifications: modMap,
		RemovedCuts:            removed,
		AddedCuts:              added,
		Packages:               packages,
	}, nil
}

func (cs *cutSheetService) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]*types.CutSheet, error) {
	rd, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	order, err := cs.orderRepo.GetByID(ctx, nil, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(fmt.Errorf("processing order %s not found", orderID))
		}
		return nil, apierr.Persistence(fmt.Errorf("load processing order: %w", err))
	}
	if rd.OrganizationID != order.ProducerOrgID && rd.OrganizationID != order.ProcessorOrgID {
		return nil, apierr.NotAuthorized(fmt.Errorf("organization is not a party to this order"))
	}
	sheets, err := cs.sheetRepo.ListForOrder(ctx, nil, orderID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("list cut sheets: %w", err))
	}
	return sheets, nil
}

// validateState checks every selected cut against the taxonomy, falling back
// to the target processor's custom cut list.
func (cs *cutSheetService) validateState(ctx context.Context, state *CutSheetState, processorID *uuid.UUID) error {
	if _, ok := cs.tax.AnimalSchema(state.AnimalType); !ok {
		return apierr.InvalidArgument(fmt.Errorf("unknown animal type %q", state.AnimalType))
	}
	var custom map[string]bool
	if processorID != nil {
		config, err := cs.configRepo.GetByOrgID(ctx, nil, *processorID)
		if err != nil {
			return apierr.Persistence(fmt.Errorf("load processor cut config: %w", err))
		}
		if config != nil {
			custom = customCutIDs(config)
		}
	}
	for _, item := range state.Items {
		if item.CutID == "" {
			return apierr.InvalidArgument(fmt.Errorf("cut sheet item with empty cut id"))
		}
		if _, ok := cs.tax.FindCut(item.CutID); ok {
			continue
		}
		if custom[item.CutID] {
			continue
		}
		return apierr.InvalidArgument(fmt.Errorf("unknown cut %q", item.CutID))
	}
	return nil
}

func (cs *cutSheetService) mustGetSheet(ctx context.Context, sheetID uuid.UUID) (*types.CutSheet, error) {
	sheet, err := cs.sheetRepo.GetByID(ctx, nil, sheetID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("load cut sheet: %w", err))
	}
	if sheet == nil {
		return nil, apierr.NotFound(fmt.Errorf("cut sheet %s not found", sheetID))
	}
	return sheet, nil
}

// requireAssignedProcessor gates the processor-side operations: templates
// have no processor and are never mutated downstream.
func (cs *cutSheetService) requireAssignedProcessor(ctx context.Context, sheet *types.CutSheet) (*requestdata.RequestData, error) {
	if sheet.IsTemplate || sheet.ProcessorOrgID == nil {
		return nil, apierr.InvalidArgument(fmt.Errorf("templates cannot receive processor changes"))
	}
	return requireProcessor(ctx, *sheet.ProcessorOrgID)
}

func sheetFromState(state CutSheetState) *types.CutSheet {
	return &types.CutSheet{
		AnimalType:             state.AnimalType,
		HangingWeightLbs:       state.HangingWeightLbs,
		GroundType:             state.GroundType,
		GroundPackageWeightLbs: state.GroundPackageWeightLbs,
		PattySize:              state.PattySize,
		KeepHeart:              state.KeepHeart,
		KeepLiver:              state.KeepLiver,
		KeepTongue:             state.KeepTongue,
		KeepOxtail:             state.KeepOxtail,
		KeepKidneys:            state.KeepKidneys,
		KeepTripe:              state.KeepTripe,
		StewMeat:               state.StewMeat,
		ShortRibs:              state.ShortRibs,
		SoupBones:              state.SoupBones,
		BaconPreference:        state.BaconPreference,
		HamPreference:          state.HamPreference,
		ShoulderPreference:     state.ShoulderPreference,
		KeepJowls:              state.KeepJowls,
		KeepFatBack:            state.KeepFatBack,
		KeepLardFat:            state.KeepLardFat,
		SpecialInstructions:    state.SpecialInstructions,
	}
}

func itemRows(sheetID uuid.UUID, inputs []CutSheetItemInput) []*types.CutSheetItem {
	rows := make([]*types.CutSheetItem, 0, len(inputs))
	for i, in := range inputs {
		sortOrder := in.SortOrder
		if sortOrder == 0 {
			sortOrder = i
		}
		rows = append(rows, &types.CutSheetItem{
			ID:               uuid.New(),
			CutSheetID:       sheetID,
			CutID:            in.CutID,
			CutName:          in.CutName,
			Thickness:        in.Thickness,
			WeightLbs:        in.WeightLbs,
			PiecesPerPackage: in.PiecesPerPackage,
			SortOrder:        sortOrder,
		})
	}
	return rows
}

func sausageRows(sheetID uuid.UUID, inputs []SausageInput) []*types.CutSheetSausage {
	rows := make([]*types.CutSheetSausage, 0, len(inputs))
	for _, in := range inputs {
		rows = append(rows, &types.CutSheetSausage{
			ID:         uuid.New(),
			CutSheetID: sheetID,
			Flavor:     in.Flavor,
			Pounds:     in.Pounds,
		})
	}
	return rows
}

// initialSnapshot is the one whole-document snapshot in the ledger: the
// creation entry has no narrower prior state to diff against.
func initialSnapshot(sheet *types.CutSheet, items []*types.CutSheetItem, sausages []*types.CutSheetSausage) map[string]any {
	itemList := make([]any, 0, len(items))
	for _, it := range items {
		itemList = append(itemList, map[string]any{
			"cut_id":             it.CutID,
			"cut_name":           it.CutName,
			"thickness":          ptrValue(it.Thickness),
			"weight_lbs":         ptrValue(it.WeightLbs),
			"pieces_per_package": ptrValue(it.PiecesPerPackage),
		})
	}
	sausageList := make([]any, 0, len(sausages))
	for _, s := range sausages {
		sausageList = append(sausageList, map[string]any{
			"flavor": s.Flavor,
			"pounds": s.Pounds,
		})
	}
	snapshot := map[string]any{
		"animal_type":               sheet.AnimalType,
		"status":                    sheet.Status,
		"is_template":               sheet.IsTemplate,
		"hanging_weight_lbs":        ptrValue(sheet.HangingWeightLbs),
		"ground_type":               sheet.GroundType,
		"ground_package_weight_lbs": ptrValue(sheet.GroundPackageWeightLbs),
		"patty_size":                sheet.PattySize,
		"keep_heart":                sheet.KeepHeart,
		"keep_liver":                sheet.KeepLiver,
		"keep_tongue":               sheet.KeepTongue,
		"keep_oxtail":               sheet.KeepOxtail,
		"keep_kidneys":              sheet.KeepKidneys,
		"keep_tripe":                sheet.KeepTripe,
		"stew_meat":                 sheet.StewMeat,
		"short_ribs":                sheet.ShortRibs,
		"soup_bones":                sheet.SoupBones,
		"special_instructions":      ptrValue(sheet.SpecialInstructions),
		"items":                     itemList,
		"sausages":                  sausageList,
	}
	if sheet.AnimalType == types.AnimalPork {
		snapshot["bacon_preference"] = sheet.BaconPreference
		snapshot["ham_preference"] = sheet.HamPreference
		snapshot["shoulder_preference"] = sheet.ShoulderPreference
		snapshot["keep_jowls"] = sheet.KeepJowls
		snapshot["keep_fat_back"] = sheet.KeepFatBack
		snapshot["keep_lard_fat"] = sheet.KeepLardFat
	}
	if sheet.IsTemplate {
		snapshot["template_name"] = ptrValue(sheet.TemplateName)
	}
	return snapshot
}

func customCutIDs(config *types.ProcessorCutConfig) map[string]bool {
	var defs []types.CustomCutDef
	if len(config.CustomCuts) > 0 {
		_ = json.Unmarshal(config.CustomCuts, &defs)
	}
	out := make(map[string]bool, len(defs))
	for _, def := range defs {
		out[def.CutID] = true
	}
	return out
}

func ptrValue[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
