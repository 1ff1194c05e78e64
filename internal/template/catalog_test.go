package template

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"topodiagram/internal/domain"
)

func TestBuiltinCatalog(t *testing.T) {
	c := builtin(t)

	kinds := c.Kinds()
	want := []domain.TopologyKind{domain.TopologyFiber, domain.TopologyRadio, domain.TopologySDWAN, domain.TopologyWifi}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d kinds, got %v", len(want), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kind %d: expected %s, got %s", i, want[i], kinds[i])
		}
	}

	for _, tmpl := range c.Templates() {
		if tmpl.Title == "" {
			t.Errorf("template %s has no title", tmpl.Kind)
		}
		if err := Validate(&tmpl); err != nil {
			t.Errorf("template %s invalid: %v", tmpl.Kind, err)
		}
	}
}

func TestCatalogGetReturnsCopy(t *testing.T) {
	c := builtin(t)

	first, _ := c.Get(domain.TopologyFiber)
	first.DeviceArchetypes[0].Label = "Mutated"
	first.Title = "Mutated"

	second, _ := c.Get(domain.TopologyFiber)
	if second.DeviceArchetypes[0].Label == "Mutated" || second.Title == "Mutated" {
		t.Error("expected catalog templates to be immutable")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name: "valid template",
			input: `kind: lab
title: Lab
layout: {width: 100, height: 100, padding: 10}
deviceArchetypes:
  - {archetypeId: r, label: R, deviceType: router, quantityKey: routers}
connectionRules:
  - {fromArchetypeId: r, toArchetypeId: ghost}
`,
		},
		{
			name:    "missing kind",
			input:   "layout: {width: 100, height: 100}\n",
			wantErr: "kind is required",
		},
		{
			name:    "non-positive canvas",
			input:   "kind: x\nlayout: {width: 0, height: 100}\n",
			wantErr: "must be positive",
		},
		{
			name: "duplicate archetype",
			input: `kind: x
layout: {width: 10, height: 10}
deviceArchetypes:
  - {archetypeId: a, quantityKey: q}
  - {archetypeId: a, quantityKey: q}
`,
			wantErr: "duplicate archetype",
		},
		{
			name:    "unknown field",
			input:   "kind: x\nlayout: {width: 10, height: 10}\ncolour: red\n",
			wantErr: "failed to parse template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCatalogLoadDir(t *testing.T) {
	dir := t.TempDir()
	custom := `kind: fiber
title: Custom Fiber
layout: {width: 500, height: 300, padding: 20}
deviceArchetypes:
  - {archetypeId: olt, label: OLT, deviceType: olt, quantityKey: olts}
`
	if err := os.WriteFile(filepath.Join(dir, "fiber.yml"), []byte(custom), 0644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	c := builtin(t)
	if err := c.LoadDir(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tmpl, err := c.Get(domain.TopologyFiber)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tmpl.Title != "Custom Fiber" {
		t.Errorf("expected directory template to replace builtin, got %q", tmpl.Title)
	}
	if len(c.Kinds()) != 4 {
		t.Errorf("expected 4 kinds after override, got %d", len(c.Kinds()))
	}
}
