package taxonomy

import "testing"

func TestDefaultLoadsAllAnimals(t *testing.T) {
	tax := Default()
	animals := tax.Animals()
	want := map[string]bool{"beef": false, "pork": false, "lamb": false, "goat": false}
	for _, a := range animals {
		if _, ok := want[a]; !ok {
			t.Fatalf("unexpected animal %q", a)
		}
		want[a] = true
	}
	for a, seen := range want {
		if !seen {
			t.Fatalf("animal %q missing from taxonomy", a)
		}
	}
}

func TestFindCut(t *testing.T) {
	tax := Default()
	cut, ok := tax.FindCut("ribeye")
	if !ok {
		t.Fatal("ribeye not found")
	}
	if cut.Name == "" {
		t.Fatal("ribeye has no display name")
	}
	if _, ok := tax.FindCut("no_such_cut"); ok {
		t.Fatal("unknown cut id should not resolve")
	}
}

func TestCutIDsGloballyUnique(t *testing.T) {
	data := []byte(`
animals:
  - animal: beef
    primals:
      - id: rib
        name: Rib
        cuts:
          - id: ribeye
            name: Ribeye
  - animal: pork
    primals:
      - id: loin
        name: Loin
        cuts:
          - id: ribeye
            name: Pork Ribeye
`)
	if _, err := Load(data); err == nil {
		t.Fatal("expected duplicate cut id to fail load")
	}
}

func TestCountCuts(t *testing.T) {
	tax := Default()
	all := tax.CountCuts("beef", nil)
	if all.Total == 0 || all.Enabled != all.Total {
		t.Fatalf("expected all beef cuts enabled with empty disabled set, got %+v", all)
	}
	some := tax.CountCuts("beef", map[string]bool{"ribeye": true})
	if some.Total != all.Total {
		t.Fatalf("disabling a cut changed the total: %d vs %d", some.Total, all.Total)
	}
	if some.Enabled != all.Enabled-1 {
		t.Fatalf("expected one fewer enabled cut, got %+v", some)
	}
	none := tax.CountCuts("emu", nil)
	if none.Total != 0 || none.Enabled != 0 {
		t.Fatalf("unknown animal should count zero, got %+v", none)
	}
}

func TestSubSectionCutsRegistered(t *testing.T) {
	tax := Default()
	found := false
	for _, primal := range tax.Primals("pork") {
		for _, sub := range primal.SubSections {
			for _, cut := range sub.Cuts {
				if _, ok := tax.FindCut(cut.ID); !ok {
					t.Fatalf("sub-section cut %q not registered", cut.ID)
				}
				found = true
			}
		}
	}
	if !found {
		t.Fatal("expected pork to carry sub-section cuts")
	}
}
