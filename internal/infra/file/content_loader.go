// Package file loads quiz content from a directory of YAML documents:
// questions.yaml (required), timer.yaml, rankings.yaml and general_text.yaml
// (optional, zero-valued when absent).
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/7h3v01c3/PhishBait/internal/domain"
)

type questionsDoc struct {
	Questions []domain.QuestionRecord `yaml:"questions"`
}

type timerDoc struct {
	Timer domain.TimerText `yaml:"timer"`
}

type rankingsDoc struct {
	Rankings domain.Rankings `yaml:"rankings"`
}

type generalTextDoc struct {
	GeneralText domain.GeneralText `yaml:"general_text"`
}

// ContentLoader reads one content pack from a fixed directory; the pack id is
// recorded on the result but does not select a different directory.
type ContentLoader struct {
	dir string
}

func NewContentLoader(dir string) *ContentLoader {
	return &ContentLoader{dir: dir}
}

func (l *ContentLoader) LoadContent(_ context.Context, packID string) (domain.ContentPack, error) {
	pack := domain.ContentPack{ID: packID}

	var questions questionsDoc
	if err := l.readYAML("questions.yaml", &questions); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ContentPack{}, fmt.Errorf("%w: %s", domain.ErrContentNotFound, filepath.Join(l.dir, "questions.yaml"))
		}
		return domain.ContentPack{}, err
	}
	pack.Questions = questions.Questions

	var timer timerDoc
	if err := l.readOptionalYAML("timer.yaml", &timer); err != nil {
		return domain.ContentPack{}, err
	}
	pack.Timer = timer.Timer

	var rankings rankingsDoc
	if err := l.readOptionalYAML("rankings.yaml", &rankings); err != nil {
		return domain.ContentPack{}, err
	}
	pack.Rankings = rankings.Rankings

	var general generalTextDoc
	if err := l.readOptionalYAML("general_text.yaml", &general); err != nil {
		return domain.ContentPack{}, err
	}
	pack.GeneralText = general.GeneralText

	return pack, nil
}

func (l *ContentLoader) readYAML(name string, out any) error {
	path := filepath.Join(l.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// readOptionalYAML treats a missing file as empty content; a present but
// malformed file is still an error, never silently skipped.
func (l *ContentLoader) readOptionalYAML(name string, out any) error {
	err := l.readYAML(name, out)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
