package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// EventConfig holds what changes from one showdown event to the next.
type EventConfig struct {
	Vote struct {
		Options  []string `yaml:"options"`
		Required int      `yaml:"required"`
	} `yaml:"vote"`
	Answer struct {
		Choices []string `yaml:"choices"`
	} `yaml:"answer"`
}

func DefaultEventConfig() *EventConfig {
	ec := &EventConfig{}
	ec.Vote.Options = []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	ec.Vote.Required = 2
	ec.Answer.Choices = []string{"A", "B", "C", "D"}
	return ec
}

// LoadEventConfig reads the YAML file at path. A missing file gives the
// defaults; missing keys keep their default values.
func LoadEventConfig(path string) (*EventConfig, error) {
	ec := DefaultEventConfig()
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("event config not found, using defaults", "path", path)
		return ec, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LoadEventConfig: %w", err)
	}

	var file EventConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("LoadEventConfig: %s: %w", path, err)
	}
	if len(file.Vote.Options) > 0 {
		ec.Vote.Options = file.Vote.Options
	}
	if file.Vote.Required != 0 {
		ec.Vote.Required = file.Vote.Required
	}
	if len(file.Answer.Choices) > 0 {
		ec.Answer.Choices = file.Answer.Choices
	}

	if ec.Vote.Required < 1 {
		return nil, fmt.Errorf("LoadEventConfig: vote.required must be positive, got %d", ec.Vote.Required)
	}
	// discord allows at most 25 subcommands
	if len(ec.Answer.Choices) > 25 {
		return nil, fmt.Errorf("LoadEventConfig: at most 25 answer choices, got %d", len(ec.Answer.Choices))
	}
	slog.Debug("event config", "vote_options", ec.Vote.Options, "vote_required", ec.Vote.Required, "answer_choices", ec.Answer.Choices)
	return ec, nil
}

func (ec *EventConfig) IsVoteOption(option string) bool {
	return slices.Contains(ec.Vote.Options, option)
}
