package out

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"faceclass/internal/modules/report/domain"
	reportout "faceclass/internal/modules/report/port/out"
)

type rulesFile struct {
	Rules []domain.Rule `yaml:"rules"`
}

// FileRuleStore reads schedule rules from a YAML file. A missing file means
// the built-in defaults.
type FileRuleStore struct {
	path string
}

func NewFileRuleStore(path string) reportout.RuleStore {
	return &FileRuleStore{path: path}
}

func (s *FileRuleStore) Load(_ context.Context) ([]domain.Rule, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DefaultRules(), nil
		}
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var file rulesFile
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Rule{}, nil
		}
		return nil, fmt.Errorf("decode rules %s: %w", filepath.Base(s.path), err)
	}
	if file.Rules == nil {
		return []domain.Rule{}, nil
	}
	return file.Rules, nil
}

// WriteDefaultRules seeds path with the built-in rules so they can be edited.
func WriteDefaultRules(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create rules dir: %w", err)
	}
	raw, err := yaml.Marshal(rulesFile{Rules: domain.DefaultRules()})
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write rules: %w", err)
	}
	return nil
}
