package synth_test

import (
	"testing"

	"github.com/reoring/typesynth"
	"github.com/reoring/typesynth/ir"
	"github.com/reoring/typesynth/synth"
)

func TestRegistry_PutGet(t *testing.T) {
	r := synth.NewRegistry()
	d := &ir.Scalar{Meta: ir.Meta{ID: "#/a"}, Type: ir.String}
	if _, ok := r.Get("#/a"); ok {
		t.Fatalf("empty registry returned a descriptor")
	}
	if err := r.Put("#/a", d); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := r.Put("#/a", d); err != nil {
		t.Fatalf("re-put of the same descriptor: %v", err)
	}
	if err := r.Put("#/a", &ir.Scalar{Type: ir.String}); err == nil {
		t.Fatalf("expected error storing a second descriptor")
	}
	got, ok := r.Get("#/a")
	if !ok || got != d {
		t.Fatalf("get = %v %v", got, ok)
	}
	if r.Len() != 1 {
		t.Fatalf("len = %d", r.Len())
	}
}

func TestRegistry_InProgress(t *testing.T) {
	r := synth.NewRegistry()
	if err := r.MarkInProgress("#"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !r.IsInProgress("#") || r.Depth() != 1 {
		t.Fatalf("not in progress")
	}
	if err := r.MarkInProgress("#"); err == nil {
		t.Fatalf("double mark should fail")
	}
	r.Unmark("#")
	if r.IsInProgress("#") || r.Depth() != 0 {
		t.Fatalf("still in progress")
	}
}

func TestRegistry_Name(t *testing.T) {
	r := synth.NewRegistry()
	if n := r.Name("#/definitions/pet_owner", "pet_owner"); n != "PetOwner" {
		t.Fatalf("name = %q", n)
	}
	if n := r.Name("#/properties/petOwner", "petOwner"); n != "PetOwner2" {
		t.Fatalf("collision name = %q", n)
	}
	if n := r.Name("#/definitions/pet_owner", "other"); n != "PetOwner" {
		t.Fatalf("repeat name = %q", n)
	}
	if n := r.Name("#/x", ""); n != "Model" {
		t.Fatalf("empty hint name = %q", n)
	}
}

func TestNaming_FromPointer(t *testing.T) {
	res := mustSynth(t, `{
	  "type": "object",
	  "properties": {
	    "line_items": {"type": "array", "items": {"type": "object", "properties": {"sku": {"type": "string"}}}},
	    "meta": {"type": "object", "title": "Metadata", "properties": {"k": {"type": "string"}}}
	  }
	}`, typesynth.Options{})
	root := rootObject(t, res)
	items := field(t, root, "line_items").Type.(*ir.Array).Items
	if items.Info().Name != "LineItemsItem" {
		t.Fatalf("items name = %q", items.Info().Name)
	}
	if n := field(t, root, "meta").Type.Info().Name; n != "Metadata" {
		t.Fatalf("titled name = %q", n)
	}
}
