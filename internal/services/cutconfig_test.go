package services

import (
	"testing"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
)

func TestGetConfigFallsBackToDefault(t *testing.T) {
	env := newTestEnv(t)

	resolved, err := env.configs.GetConfig(env.producerCtx(), env.processorOrg.ID)
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if resolved.Source != ConfigSourceDefault {
		t.Fatalf("source = %q, want default", resolved.Source)
	}
	animals := decodeStringSlice(resolved.Config.EnabledAnimals)
	if len(animals) != 4 {
		t.Fatalf("default enabled animals = %v", animals)
	}
	if got := decodeStringSlice(resolved.Config.DisabledCuts); len(got) != 0 {
		t.Fatalf("default disabled cuts = %v", got)
	}
}

func TestUpsertConfigCreatesOnFirstWrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.processorCtx()

	animals := []string{"beef", "pork"}
	if err := env.configs.UpsertConfig(ctx, ConfigPatch{EnabledAnimals: &animals}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	resolved, err := env.configs.GetConfig(ctx, env.processorOrg.ID)
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if resolved.Source != ConfigSourceExplicit {
		t.Fatalf("source = %q, want explicit after write", resolved.Source)
	}
	if got := decodeStringSlice(resolved.Config.EnabledAnimals); len(got) != 2 {
		t.Fatalf("enabled animals = %v", got)
	}
	// Untouched fields keep their defaults on the created row.
	if got := decodeStringSlice(resolved.Config.DisabledCuts); len(got) != 0 {
		t.Fatalf("disabled cuts should still be empty, got %v", got)
	}
}

func TestUpsertConfigExplicitEmptyVsAbsent(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.processorCtx()

	disabled := []string{"ribeye", "flank_steak"}
	if err := env.configs.UpsertConfig(ctx, ConfigPatch{DisabledCuts: &disabled}); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	// A patch that never mentions disabled_cuts leaves it alone.
	notes := "closed sundays"
	if err := env.configs.UpsertConfig(ctx, ConfigPatch{ProducerNotes: &notes}); err != nil {
		t.Fatalf("absent-field patch: %v", err)
	}
	resolved, err := env.configs.GetConfig(ctx, env.processorOrg.ID)
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if got := decodeStringSlice(resolved.Config.DisabledCuts); len(got) != 2 {
		t.Fatalf("absent field must not be cleared, got %v", got)
	}

	// A pointer to an empty slice is an explicit clear.
	empty := []string{}
	if err := env.configs.UpsertConfig(ctx, ConfigPatch{DisabledCuts: &empty}); err != nil {
		t.Fatalf("explicit-empty patch: %v", err)
	}
	resolved, err = env.configs.GetConfig(ctx, env.processorOrg.ID)
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if got := decodeStringSlice(resolved.Config.DisabledCuts); len(got) != 0 {
		t.Fatalf("explicit empty must clear the set, got %v", got)
	}
}

func TestUpsertConfigRejectsProducer(t *testing.T) {
	env := newTestEnv(t)
	notes := "hi"
	err := env.configs.UpsertConfig(env.producerCtx(), ConfigPatch{ProducerNotes: &notes})
	if !apierr.IsCode(err, apierr.CodeNotAuthorized) {
		t.Fatalf("expected not_authorized, got %v", err)
	}
}

func TestToggleCut(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.processorCtx()

	// First toggle creates the config row with the cut disabled.
	if err := env.configs.ToggleCut(ctx, "ribeye"); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	resolved, err := env.configs.GetConfig(ctx, env.processorOrg.ID)
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	disabled := decodeStringSlice(resolved.Config.DisabledCuts)
	if len(disabled) != 1 || disabled[0] != "ribeye" {
		t.Fatalf("disabled after first toggle = %v", disabled)
	}

	// Second toggle re-enables it.
	if err := env.configs.ToggleCut(ctx, "ribeye"); err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	resolved, err = env.configs.GetConfig(ctx, env.processorOrg.ID)
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if got := decodeStringSlice(resolved.Config.DisabledCuts); len(got) != 0 {
		t.Fatalf("disabled after second toggle = %v", got)
	}

	if err := env.configs.ToggleCut(ctx, "unicorn_steak"); !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("unknown cut should be not_found, got %v", err)
	}
	if err := env.configs.ToggleCut(env.producerCtx(), "ribeye"); !apierr.IsCode(err, apierr.CodeNotAuthorized) {
		t.Fatalf("producer toggle should be rejected, got %v", err)
	}
}

func TestCutCountsReflectDisabledCuts(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.processorCtx()

	before, err := env.configs.CutCounts(ctx, env.processorOrg.ID, "beef")
	if err != nil {
		t.Fatalf("counts before: %v", err)
	}
	if before.Total == 0 || before.Enabled != before.Total {
		t.Fatalf("default counts = %+v", before)
	}

	if err := env.configs.ToggleCut(ctx, "ribeye"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	after, err := env.configs.CutCounts(ctx, env.processorOrg.ID, "beef")
	if err != nil {
		t.Fatalf("counts after: %v", err)
	}
	if after.Total != before.Total {
		t.Fatalf("total changed: %d -> %d", before.Total, after.Total)
	}
	if after.Enabled != before.Enabled-1 {
		t.Fatalf("enabled = %d, want %d", after.Enabled, before.Enabled-1)
	}
}
