package registry

import "testing"

func validDescriptor(name string) Descriptor {
	return Descriptor{
		Name:   name,
		Entry:  "http://localhost:3001/remotes/" + name + "/manifest.json",
		Expose: "./Widget",
		Export: "Widget",
	}
}

func TestDescriptorValidate(t *testing.T) {
	if err := validDescriptor("userApp").Validate(); err != nil {
		t.Fatalf("valid descriptor rejected: %v", err)
	}

	cases := map[string]Descriptor{
		"missing name":   {Entry: "http://x", Expose: "./A", Export: "A"},
		"missing entry":  {Name: "a", Expose: "./A", Export: "A"},
		"missing expose": {Name: "a", Entry: "http://x", Export: "A"},
		"missing export": {Name: "a", Entry: "http://x", Expose: "./A"},
	}
	for label, d := range cases {
		if err := d.Validate(); err == nil {
			t.Errorf("%s: expected validation error", label)
		}
	}
}

func TestFromDescriptorsRejectsDuplicates(t *testing.T) {
	_, err := FromDescriptors([]Descriptor{
		validDescriptor("userApp"),
		validDescriptor("userApp"),
	})
	if err == nil {
		t.Fatal("expected duplicate name to be rejected")
	}
}

func TestGetAndList(t *testing.T) {
	r, err := FromDescriptors([]Descriptor{
		validDescriptor("dataApp"),
		validDescriptor("userApp"),
	})
	if err != nil {
		t.Fatalf("FromDescriptors: %v", err)
	}

	d, ok := r.Get("userApp")
	if !ok {
		t.Fatal("userApp not found")
	}
	if d.Export != "Widget" {
		t.Fatalf("unexpected export %q", d.Export)
	}

	if _, ok := r.Get("ghost"); ok {
		t.Fatal("unknown remote should not resolve")
	}

	names := r.List()
	if len(names) != 2 || names[0] != "dataApp" || names[1] != "userApp" {
		t.Fatalf("unexpected list order: %v", names)
	}
	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}
}

func TestRegisterPanicsOnDuplicate(t *testing.T) {
	r := New()
	r.Register(validDescriptor("userApp"))

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	r.Register(validDescriptor("userApp"))
}
