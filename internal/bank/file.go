package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mind-engage/mocktest/internal/exam"
)

// document is the on-disk layout of a question file.
type document struct {
	Questions []exam.Question `json:"questions" yaml:"questions"`
}

// FileSource reads questions from a YAML or JSON file, or from every such
// file in a directory (sorted by name). The file is parsed once.
type FileSource struct {
	questions []exam.Question
}

func LoadFile(path string) (*FileSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("question bank: %w", err)
	}
	paths := []string{path}
	if info.IsDir() {
		paths = nil
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("question bank: %w", err)
		}
		for _, e := range entries {
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".yaml", ".yml", ".json":
				paths = append(paths, filepath.Join(path, e.Name()))
			}
		}
	}
	fs := &FileSource{}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read question file: %w", err)
		}
		doc, err := parseDocument(data, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		for i := range doc.Questions {
			if doc.Questions[i].Difficulty == "" {
				doc.Questions[i].Difficulty = exam.DifficultyMedium
			}
			if err := checkDifficulty(doc.Questions[i]); err != nil {
				return nil, fmt.Errorf("%s: %w", p, err)
			}
		}
		fs.questions = append(fs.questions, doc.Questions...)
	}
	return fs, nil
}

func (f *FileSource) All(context.Context) ([]exam.Question, error) {
	return f.questions, nil
}

func parseDocument(data []byte, path string) (document, error) {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return parseJSON(data)
	}
	return parseYAML(data)
}

func parseJSON(data []byte) (document, error) {
	var doc document
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return document{}, fmt.Errorf("parse json: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return document{}, errors.New("parse json: multiple documents are not supported")
		}
		return document{}, fmt.Errorf("parse json: %w", err)
	}
	return doc, nil
}

func parseYAML(data []byte) (document, error) {
	var doc document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return document{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return document{}, errors.New("parse yaml: multiple documents are not supported")
		}
		return document{}, fmt.Errorf("parse yaml: %w", err)
	}
	return doc, nil
}

func checkDifficulty(q exam.Question) error {
	switch q.Difficulty {
	case exam.DifficultyEasy, exam.DifficultyMedium, exam.DifficultyHard:
		return nil
	}
	return fmt.Errorf("question %s: unknown difficulty %q", q.ID, q.Difficulty)
}
