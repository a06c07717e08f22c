package scenario

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
version: "1"
id: checkout-flow
goal:
  description: complete checkout
  success: order confirmation page is shown
context:
  start_url: https://shop.example.com/
preconditions:
  - mcp: cart.seed
    params:
      items: 2
    store_as: cart
constraints:
  max_steps: 20
  max_cost_usd: 1.5
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "checkout.yaml", validYAML)

	spec, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if spec.ID != "checkout-flow" {
		t.Errorf("ID = %q, want checkout-flow", spec.ID)
	}
	if spec.Constraints.MaxSteps != 20 {
		t.Errorf("MaxSteps = %d, want 20", spec.Constraints.MaxSteps)
	}
	if len(spec.Preconditions) != 1 || spec.Preconditions[0].StoreName() != "cart" {
		t.Errorf("Preconditions = %+v", spec.Preconditions)
	}
}

func TestLoad_InvalidSpecFailsValidation(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.yaml", `
id: missing-start-url
goal:
  description: x
  success: y
constraints:
  max_steps: 5
  max_cost_usd: 1
`)
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for missing start_url")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadDir_SkipsNonScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "checkout.yaml", validYAML)
	writeFile(t, dir, "README.md", "not a scenario")

	specs, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(specs) != 1 {
		t.Fatalf("expected 1 scenario, got %d", len(specs))
	}
}
