package onnx

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModelCard описывает экспортированную модель: имена тензоров, размер входа и классы.
type ModelCard struct {
	InputName  string   `yaml:"input_name"`
	OutputName string   `yaml:"output_name"`
	InputSize  int      `yaml:"input_size"`
	Names      []string `yaml:"names"`
}

// LoadCard читает карточку модели. Пустой путь означает карточку по умолчанию.
func LoadCard(path string) (*ModelCard, error) {
	card := &ModelCard{}
	if path == "" {
		return card, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model card: %w", err)
	}
	if err := yaml.Unmarshal(data, card); err != nil {
		return nil, fmt.Errorf("parse model card: %w", err)
	}
	if card.InputSize < 0 {
		return nil, fmt.Errorf("model card: invalid input_size %d", card.InputSize)
	}
	return card, nil
}
