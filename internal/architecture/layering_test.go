package architecture_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// allowedLayers lists, per layer, which layers of the same module it may
// import. Other modules are reachable through port/in and dto only.
var allowedLayers = map[string][]string{
	"domain":      {"domain"},
	"dto":         {"dto"},
	"port/in":     {"port/in", "dto", "domain"},
	"port/out":    {"port/out", "domain"},
	"service":     {"service", "domain", "port/out", "dto"},
	"usecase":     {"usecase", "service", "domain", "port/in", "port/out", "dto"},
	"adapter/in":  {"port/in", "dto"},
	"adapter/out": {"adapter/out", "domain", "port/out", "dto"},
}

var layerOrder = []string{"adapter/in", "adapter/out", "usecase", "service", "port/in", "port/out", "domain", "dto"}

type moduleImport struct {
	module string
	layer  string
}

func parseModuleImport(path string) (moduleImport, bool) {
	_, rest, ok := strings.Cut(path, "modules/")
	if !ok || !strings.HasPrefix(path, "faceclass/") && !strings.HasPrefix(path, "../") {
		return moduleImport{}, false
	}
	module, sub, _ := strings.Cut(rest, "/")
	sub += "/"
	for _, layer := range layerOrder {
		if strings.HasPrefix(sub, layer+"/") {
			return moduleImport{module: module, layer: layer}, true
		}
	}
	return moduleImport{module: module}, true
}

// walkImports calls fn with every non-test Go file under dir and its
// faceclass module imports.
func walkImports(t *testing.T, dir string, fn func(path string, imports []moduleImport)) {
	t.Helper()
	fset := token.NewFileSet()
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		node, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		var imports []moduleImport
		for _, imp := range node.Imports {
			if mi, ok := parseModuleImport(strings.Trim(imp.Path.Value, `"`)); ok {
				imports = append(imports, mi)
			}
		}
		fn(filepath.ToSlash(path), imports)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
}

func TestHexagonalLayerImports(t *testing.T) {
	t.Parallel()
	walkImports(t, filepath.Join("..", "modules"), func(path string, imports []moduleImport) {
		self, ok := parseModuleImport(path)
		if !ok || self.layer == "" {
			return
		}
		for _, imp := range imports {
			if imp.module != self.module {
				if imp.layer != "port/in" && imp.layer != "dto" {
					t.Errorf("%s (%s) reaches into %s/%s", path, self.layer, imp.module, imp.layer)
				}
				continue
			}
			if !slices.Contains(allowedLayers[self.layer], imp.layer) {
				t.Errorf("%s (%s) imports its own %s", path, self.layer, imp.layer)
			}
		}
	})
}

func TestUIImportsOnlyModuleDTOs(t *testing.T) {
	t.Parallel()
	walkImports(t, filepath.Join("..", "ui"), func(path string, imports []moduleImport) {
		for _, imp := range imports {
			if imp.layer != "dto" {
				t.Errorf("ui file %s imports %s/%s", path, imp.module, imp.layer)
			}
		}
	})
}

func TestParseModuleImport(t *testing.T) {
	t.Parallel()
	cases := map[string]moduleImport{
		"faceclass/internal/modules/device/port/in":         {module: "device", layer: "port/in"},
		"faceclass/internal/modules/device/adapter/out/rpc": {module: "device", layer: "adapter/out"},
		"../modules/attendance/service/engine.go":           {module: "attendance", layer: "service"},
		"faceclass/internal/modules/attendance/dto":         {module: "attendance", layer: "dto"},
	}
	for in, want := range cases {
		got, ok := parseModuleImport(in)
		if !ok || got != want {
			t.Errorf("parseModuleImport(%q) = %+v, %v; want %+v", in, got, ok, want)
		}
	}
	if _, ok := parseModuleImport("faceclass/internal/platform/clock"); ok {
		t.Error("platform packages are not module imports")
	}
}
