package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/canopy/pkg/adapters/process"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/canopy/pkg/registry"
	"gopkg.in/yaml.v3"
)

// LoaderFixture describes a loader. With Command set it runs that process;
// otherwise it returns Data, or fails with Error, after waiting Delay.
type LoaderFixture struct {
	Data  any           `yaml:"data" json:"data"`
	Error string        `yaml:"error" json:"error"`
	Delay time.Duration `yaml:"delay" json:"delay"`

	process.Command `yaml:",inline"`
}

// ModuleFixture binds canned loaders to a component name.
type ModuleFixture struct {
	Name       string         `yaml:"name" json:"name"`
	ServerSide *LoaderFixture `yaml:"serverSide" json:"serverSide"`
	Static     *LoaderFixture `yaml:"static" json:"static"`
}

// ModulesFile represents the structure of modules.yaml.
type ModulesFile struct {
	Components []ModuleFixture `yaml:"components" json:"components"`
}

// LoadModules reads a fixture file (YAML or JSON) and returns a registry of canned
// loaders, for inspecting props aggregation without the real components.
func LoadModules(path string) (*registry.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read modules file: %w", err)
	}

	var file ModulesFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	reg := registry.NewRegistry()
	for _, m := range file.Components {
		if m.Name == "" {
			continue
		}
		module := &ports.ComponentModule{}
		if m.ServerSide != nil {
			module.GetServerSideProps = m.ServerSide.loader(ports.LoaderServerSide, filepath.Dir(path))
		}
		if m.Static != nil {
			module.GetStaticProps = m.Static.loader(ports.LoaderStatic, filepath.Dir(path))
		}
		reg.Register(m.Name, module)
	}
	return reg, nil
}

// loader builds the loader. Process loaders run relative to baseDir unless they
// name their own directory.
func (f LoaderFixture) loader(kind ports.LoaderKind, baseDir string) ports.Loader {
	if f.Command.Command != "" {
		cmd := f.Command
		if cmd.Dir == "" {
			cmd.Dir = baseDir
		}
		return process.NewLoader(kind, cmd)
	}
	return func(ctx context.Context, _ *domain.ComponentRendering, _ any, _ *domain.LayoutServiceData) (any, error) {
		if f.Delay > 0 {
			select {
			case <-time.After(f.Delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if f.Error != "" {
			return nil, errors.New(f.Error)
		}
		return f.Data, nil
	}
}
