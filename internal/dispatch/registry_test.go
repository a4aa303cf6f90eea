package dispatch

import "testing"

func TestRegistryRejectsDuplicateID(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("HAUL", &fakeModule{desc: haulDescriptor("haul")}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register("HAUL", &fakeModule{desc: haulDescriptor("haul")}); err == nil {
		t.Fatalf("duplicate id accepted")
	}
}

func TestRegistryRejectsCategoryMismatch(t *testing.T) {
	r := NewRegistry()
	desc := haulDescriptor("haul")
	desc.Category = "BUILD"
	if err := r.Register("HAUL", &fakeModule{desc: desc}); err == nil {
		t.Fatalf("category mismatch accepted")
	}
}

func TestRegistryRejectsEmptyIdentity(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("", &fakeModule{desc: haulDescriptor("haul")}); err == nil {
		t.Fatalf("empty category accepted")
	}
	desc := haulDescriptor("")
	if err := r.Register("HAUL", &fakeModule{desc: desc}); err == nil {
		t.Fatalf("empty module id accepted")
	}
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"b", "a", "c"} {
		if err := r.Register("HAUL", &fakeModule{desc: haulDescriptor(id)}); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}
	mods := r.Modules("HAUL")
	want := []string{"b", "a", "c"}
	for i, m := range mods {
		if m.Descriptor().ID != want[i] {
			t.Fatalf("module %d = %s, want %s", i, m.Descriptor().ID, want[i])
		}
	}
}

func TestRegistryValidate(t *testing.T) {
	r := NewRegistry()
	desc := haulDescriptor("haul")
	desc.CacheInterval = 0
	_ = r.Register("HAUL", &fakeModule{desc: desc})
	if err := r.Validate(); err == nil {
		t.Fatalf("zero cache interval passed validation")
	}

	r = NewRegistry()
	desc = haulDescriptor("haul")
	desc.TargetClasses = nil
	_ = r.Register("HAUL", &fakeModule{desc: desc})
	if err := r.Validate(); err == nil {
		t.Fatalf("missing target classes passed validation")
	}

	r = NewRegistry()
	_ = r.Register("HAUL", &fakeModule{desc: haulDescriptor("haul")})
	if err := r.Validate(); err != nil {
		t.Fatalf("valid registry rejected: %v", err)
	}
}
