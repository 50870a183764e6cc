package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/repos"
	"github.com/pasturelink/pasturelink-backend/internal/requestdata"
	"github.com/pasturelink/pasturelink-backend/internal/taxonomy"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

// testEnv wires the whole service stack against an in-memory sqlite database
// so the audited flows run end to end without a postgres instance.
type testEnv struct {
	db          *gorm.DB
	log         *logger.Logger
	tax         *taxonomy.Taxonomy
	sheetRepo   repos.CutSheetRepo
	itemRepo    repos.CutSheetItemRepo
	historyRepo repos.CutSheetHistoryRepo
	packageRepo repos.ProducedPackageRepo
	configRepo  repos.CutConfigRepo
	removedRepo repos.CutSheetRemovedCutRepo

	cutSheets CutSheetService
	configs   CutConfigService
	history   HistoryService
	packages  PackageService
	orders    OrderService

	producerOrg  *types.Organization
	processorOrg *types.Organization
	producerUser *types.User
	processorUsr *types.User
	order        *types.ProcessingOrder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.Organization{},
		&types.User{},
		&types.UserToken{},
		&types.ProcessingOrder{},
		&types.ProcessorCutConfig{},
		&types.CutSheet{},
		&types.CutSheetItem{},
		&types.CutSheetSausage{},
		&types.CutSheetModification{},
		&types.CutSheetRemovedCut{},
		&types.CutSheetAddedCut{},
		&types.CutSheetHistory{},
		&types.ProducedPackage{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	env := &testEnv{db: db, log: log, tax: taxonomy.Default()}

	userRepo := repos.NewUserRepo(db, log)
	orgRepo := repos.NewOrganizationRepo(db, log)
	orderRepo := repos.NewProcessingOrderRepo(db, log)
	env.configRepo = repos.NewCutConfigRepo(db, log)
	env.sheetRepo = repos.NewCutSheetRepo(db, log)
	env.itemRepo = repos.NewCutSheetItemRepo(db, log)
	sausageRepo := repos.NewCutSheetSausageRepo(db, log)
	modRepo := repos.NewCutSheetModificationRepo(db, log)
	env.removedRepo = repos.NewCutSheetRemovedCutRepo(db, log)
	addedRepo := repos.NewCutSheetAddedCutRepo(db, log)
	env.historyRepo = repos.NewCutSheetHistoryRepo(db, log)
	env.packageRepo = repos.NewProducedPackageRepo(db, log)

	env.cutSheets = NewCutSheetService(
		db, log,
		env.sheetRepo, env.itemRepo, sausageRepo,
		modRepo, env.removedRepo, addedRepo,
		orderRepo, env.configRepo, env.packageRepo, env.historyRepo,
		env.tax, nil,
	)
	env.configs = NewCutConfigService(db, log, env.configRepo, env.tax)
	env.history = NewHistoryService(db, log, env.sheetRepo, env.historyRepo)
	env.packages = NewPackageService(db, log, env.sheetRepo, env.packageRepo, env.historyRepo, env.tax, nil)
	env.orders = NewOrderService(db, log, orderRepo, orgRepo, env.tax)

	ctx := context.Background()
	env.producerOrg = &types.Organization{ID: uuid.New(), Name: "Hilltop Ranch", Type: types.OrgTypeProducer}
	env.processorOrg = &types.Organization{ID: uuid.New(), Name: "Valley Meats", Type: types.OrgTypeProcessor}
	for _, org := range []*types.Organization{env.producerOrg, env.processorOrg} {
		if _, err := orgRepo.Create(ctx, nil, org); err != nil {
			t.Fatalf("seed organization: %v", err)
		}
	}
	env.producerUser = &types.User{
		ID: uuid.New(), Email: "rancher@hilltop.test", Password: "x",
		FirstName: "Rae", LastName: "Calder", OrganizationID: env.producerOrg.ID,
	}
	env.processorUsr = &types.User{
		ID: uuid.New(), Email: "cutter@valley.test", Password: "x",
		FirstName: "Jo", LastName: "Marsh", OrganizationID: env.processorOrg.ID,
	}
	for _, u := range []*types.User{env.producerUser, env.processorUsr} {
		if _, err := userRepo.Create(ctx, nil, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	env.order = &types.ProcessingOrder{
		ID:             uuid.New(),
		ProducerOrgID:  env.producerOrg.ID,
		ProcessorOrgID: env.processorOrg.ID,
		AnimalType:     types.AnimalBeef,
		HeadCount:      1,
		Status:         types.OrderStatusScheduled,
	}
	if _, err := orderRepo.Create(ctx, nil, env.order); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return env
}

func (env *testEnv) producerCtx() context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:           env.producerUser.ID,
		OrganizationID:   env.producerOrg.ID,
		OrganizationType: requestdata.OrgTypeProducer,
	})
}

func (env *testEnv) processorCtx() context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:           env.processorUsr.ID,
		OrganizationID:   env.processorOrg.ID,
		OrganizationType: requestdata.OrgTypeProcessor,
	})
}

func (env *testEnv) ctxFor(userID, orgID uuid.UUID, orgType string) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:           userID,
		OrganizationID:   orgID,
		OrganizationType: requestdata.OrgType(orgType),
	})
}

func (env *testEnv) mustCreateSheet(t *testing.T) *types.CutSheet {
	t.Helper()
	sheet, err := env.cutSheets.CreateCutSheet(env.producerCtx(), env.order.ID, beefState())
	if err != nil {
		t.Fatalf("create cut sheet: %v", err)
	}
	return sheet
}

func (env *testEnv) entries(t *testing.T, sheetID uuid.UUID) []*types.CutSheetHistory {
	t.Helper()
	entries, err := env.historyRepo.ListBySheet(context.Background(), nil, sheetID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	return entries
}

func beefState() CutSheetState {
	thickness := "1.5in"
	pieces := 2
	weight := 650.0
	return CutSheetState{
		AnimalType:       types.AnimalBeef,
		HangingWeightLbs: &weight,
		GroundType:       "ground_beef",
		KeepHeart:        true,
		StewMeat:         true,
		Items: []CutSheetItemInput{
			{CutID: "ribeye", CutName: "Ribeye", Thickness: &thickness, PiecesPerPackage: &pieces, SortOrder: 0},
			{CutID: "brisket_whole", CutName: "Whole Brisket", SortOrder: 1},
		},
	}
}

// small waits to keep created_at ordering strict under sqlite's clock
// resolution.
func tick() { time.Sleep(2 * time.Millisecond) }
