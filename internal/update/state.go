package update

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	appLog "github.com/sandeepkv93/eventd/internal/log"
	"github.com/sandeepkv93/eventd/internal/model"
)

type viewState struct {
	View      string `json:"view"`
	FocusDate string `json:"focus_date"`
}

func (m Model) currentViewState() viewState {
	return viewState{View: string(m.CurrentView), FocusDate: model.FormatDate(m.FocusDate)}
}

func (m *Model) applyViewState(s viewState) {
	if v, err := model.ParseView(s.View); err == nil {
		m.CurrentView = v
	}
	if d, err := model.ParseDate(s.FocusDate); err == nil {
		m.FocusDate = d
	}
}

func (m Model) persistViewState() {
	if m.stateFilePath == "" {
		return
	}
	if err := saveViewState(m.stateFilePath, m.currentViewState()); err != nil {
		appLog.Error("view state save failed", err, "path", m.stateFilePath)
	}
}

func saveViewState(path string, state viewState) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func loadViewState(path string) (viewState, error) {
	var state viewState
	raw, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return state, err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return state, nil
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return viewState{}, err
	}
	return state, nil
}
