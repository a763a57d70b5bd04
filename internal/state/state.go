// Package state persists what duskctl last applied.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// maxHistory bounds the number of past switches kept on disk.
const maxHistory = 50

// Trigger tells who requested a switch.
type Trigger string

const (
	TriggerManual Trigger = "manual"
	TriggerAuto   Trigger = "auto"
)

// Switch records one mode change.
type Switch struct {
	Mode     string    `json:"mode"`
	Theme    string    `json:"theme"`
	Redshift string    `json:"redshift"`
	Trigger  Trigger   `json:"trigger,omitempty"`
	At       time.Time `json:"at"`
}

// Applied records the last redshift values written by hand.
type Applied struct {
	Temperature int       `json:"temperature"`
	Brightness  float64   `json:"brightness"`
	At          time.Time `json:"at"`
}

// State is the on-disk run state.
type State struct {
	Current Switch   `json:"current"`
	History []Switch `json:"history"`
	Applied *Applied `json:"applied,omitempty"`

	path string
	now  func() time.Time
}

// New creates an empty state bound to path.
func New(path string) *State {
	return &State{
		path:    path,
		History: []Switch{},
		now:     time.Now,
	}
}

// Load loads state from file. A missing or empty file yields empty state.
func Load(path string) (*State, error) {
	path = expandPath(path)
	s := New(path)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if s.History == nil {
		s.History = []Switch{}
	}

	return s, nil
}

// Save saves state to file.
func (s *State) Save() error {
	if s.path == "" {
		return fmt.Errorf("state path not set")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// Record makes sw the current switch, moving the previous one to history.
// A zero At is filled with the current time.
func (s *State) Record(sw Switch) {
	if sw.At.IsZero() {
		sw.At = s.clock()
	}
	if s.HasCurrent() {
		// Current counts towards the bound.
		s.History = append(s.History, s.Current)
		if keep := maxHistory - 1; len(s.History) > keep {
			s.History = s.History[len(s.History)-keep:]
		}
	}
	s.Current = sw
}

// RecordApplied stores manually applied redshift values.
func (s *State) RecordApplied(temperature int, brightness float64) {
	s.Applied = &Applied{
		Temperature: temperature,
		Brightness:  brightness,
		At:          s.clock(),
	}
}

// HasCurrent returns true if a switch was recorded.
func (s *State) HasCurrent() bool {
	return s.Current.Mode != ""
}

// Last returns the current switch and whether there is one.
func (s *State) Last() (Switch, bool) {
	return s.Current, s.HasCurrent()
}

// Path returns the state file path.
func (s *State) Path() string {
	return s.path
}

func (s *State) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if path == "" {
		return ""
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
