package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
)

func TestTemplateRoundtrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.producerCtx()

	state := beefState()
	templateID, err := env.cutSheets.SaveAsTemplate(ctx, state, "Our usual beef")
	if err != nil {
		t.Fatalf("save template: %v", err)
	}

	loaded, err := env.cutSheets.LoadTemplate(ctx, templateID)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if loaded.AnimalType != "beef" {
		t.Fatalf("loaded animal = %q", loaded.AnimalType)
	}
	if len(loaded.Items) != 2 {
		t.Fatalf("loaded items = %d, want 2", len(loaded.Items))
	}
	if loaded.Items[0].CutID != "ribeye" || loaded.Items[0].Thickness == nil || *loaded.Items[0].Thickness != "1.5in" {
		t.Fatalf("first loaded item = %+v", loaded.Items[0])
	}
	// Weight is per animal, not per preference set. Never templated.
	if loaded.HangingWeightLbs != nil {
		t.Fatalf("template must not retain hanging weight, got %v", *loaded.HangingWeightLbs)
	}
	if !loaded.KeepHeart || !loaded.StewMeat {
		t.Fatal("organ and trim preferences lost in roundtrip")
	}

	templates, err := env.cutSheets.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(templates) != 1 || templates[0].Name != "Our usual beef" || templates[0].AnimalType != "beef" {
		t.Fatalf("templates = %+v", templates)
	}
}

func TestTemplateOwnership(t *testing.T) {
	env := newTestEnv(t)

	templateID, err := env.cutSheets.SaveAsTemplate(env.producerCtx(), beefState(), "Private")
	if err != nil {
		t.Fatalf("save template: %v", err)
	}

	otherCtx := env.ctxFor(uuid.New(), uuid.New(), "producer")
	if _, err := env.cutSheets.LoadTemplate(otherCtx, templateID); !apierr.IsCode(err, apierr.CodeNotAuthorized) {
		t.Fatalf("foreign template load should be rejected, got %v", err)
	}
	templates, err := env.cutSheets.ListTemplates(otherCtx)
	if err != nil {
		t.Fatalf("list as other org: %v", err)
	}
	if len(templates) != 0 {
		t.Fatalf("other org sees %d templates, want 0", len(templates))
	}
}

func TestTemplateRequiresName(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.cutSheets.SaveAsTemplate(env.producerCtx(), beefState(), "")
	if !apierr.IsCode(err, apierr.CodeInvalidArgument) {
		t.Fatalf("blank name should be rejected, got %v", err)
	}
}

func TestTemplateCannotBeSubmitted(t *testing.T) {
	env := newTestEnv(t)
	templateID, err := env.cutSheets.SaveAsTemplate(env.producerCtx(), beefState(), "Usual")
	if err != nil {
		t.Fatalf("save template: %v", err)
	}
	if err := env.cutSheets.SubmitCutSheet(env.producerCtx(), templateID); !apierr.IsCode(err, apierr.CodeInvalidArgument) {
		t.Fatalf("template submit should be rejected, got %v", err)
	}
}
