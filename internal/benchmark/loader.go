package benchmark

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed all:testdata
var embeddedBenchmarks embed.FS

// Load loads a benchmark by id, searching first in the external directory
// (if provided), then in the embedded benchmarks. Unresolvable ids yield an
// *UnknownBenchmarkError.
func Load(id string, externalDir string) (*Definition, error) {
	if externalDir != "" {
		dir := filepath.Join(externalDir, id)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return loadFromFS(os.DirFS(dir), id)
		}
	}

	// Use path.Join (not filepath.Join) because embed.FS always uses forward slashes.
	subFS, err := fs.Sub(embeddedBenchmarks, path.Join("testdata", id))
	if err != nil {
		return nil, &UnknownBenchmarkError{ID: id}
	}
	if _, err := fs.Stat(subFS, "config.yaml"); err != nil {
		return nil, &UnknownBenchmarkError{ID: id}
	}
	return loadFromFS(subFS, id)
}

// List returns the ids of all available benchmarks.
func List(externalDir string) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string

	entries, err := fs.ReadDir(embeddedBenchmarks, "testdata")
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				seen[e.Name()] = true
				ids = append(ids, e.Name())
			}
		}
	}

	if externalDir != "" {
		entries, err := os.ReadDir(externalDir)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() && !seen[e.Name()] {
					ids = append(ids, e.Name())
				}
			}
		}
	}

	return ids, nil
}

func loadFromFS(fsys fs.FS, id string) (*Definition, error) {
	configData, err := fs.ReadFile(fsys, "config.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read config.yaml for benchmark %q: %w", id, err)
	}

	var def Definition
	if err := yaml.Unmarshal(configData, &def); err != nil {
		return nil, fmt.Errorf("failed to parse config.yaml for benchmark %q: %w", id, err)
	}

	if def.ID == "" {
		def.ID = id
	}
	if def.AnswerFormat == "" {
		def.AnswerFormat = FormatAuto
	}
	if def.QuestionsFile == "" {
		def.QuestionsFile = "questions.json"
	}

	questions, err := loadQuestionsFromFS(fsys, def.QuestionsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for benchmark %q: %w", id, err)
	}
	def.Questions = questions

	return &def, nil
}

func loadQuestionsFromFS(fsys fs.FS, filename string) ([]Question, error) {
	data, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%s contains no questions", filename)
	}

	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = fmt.Sprintf("q%d", i+1)
		}
	}

	return questions, nil
}
