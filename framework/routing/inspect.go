package routing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"slices"
	"strings"

	"github.com/km-arc/getall/framework/capability"
	"github.com/km-arc/getall/framework/container"
)

// CapabilityView is one discovery cache entry as served by /capabilities.
type CapabilityView struct {
	Capability string   `json:"capability"`
	Types      []string `json:"types"`
}

// ModuleView is one module as served by /modules.
type ModuleView struct {
	Name  string      `json:"name"`
	Types []EntryView `json:"types"`
}

// EntryView is one declared module type.
type EntryView struct {
	Type     string `json:"type"`
	Abstract bool   `json:"abstract,omitempty"`
}

type inspector struct {
	scanner *capability.Scanner
}

func (i *inspector) capabilities(w http.ResponseWriter, _ *http.Request) {
	snapshot := i.scanner.Snapshot()
	out := make([]CapabilityView, 0, len(snapshot))
	for c, types := range snapshot {
		out = append(out, CapabilityView{Capability: container.KeyOf(c), Types: keys(types)})
	}
	slices.SortFunc(out, func(a, b CapabilityView) int { return strings.Compare(a.Capability, b.Capability) })
	JSON(w, http.StatusOK, envelope{"data": out})
}

func (i *inspector) modules(w http.ResponseWriter, _ *http.Request) {
	modules := i.scanner.Modules()
	out := make([]ModuleView, 0, len(modules))
	for _, m := range modules {
		view := ModuleView{Name: m.Name(), Types: []EntryView{}}
		for _, e := range m.Entries() {
			view.Types = append(view.Types, EntryView{Type: container.KeyOf(e.Type()), Abstract: e.Abstract()})
		}
		out = append(out, view)
	}
	JSON(w, http.StatusOK, envelope{"data": out})
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope map[string]any

// JSON writes data as a JSON response with status.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func keys(types []reflect.Type) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, container.KeyOf(t))
	}
	return out
}

// ErrEmptyBody is returned by Bind for a request without a body.
var ErrEmptyBody = errors.New("empty request body")

// Bind decodes the JSON request body into v.
func Bind(r *http.Request, v any) error {
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return ErrEmptyBody
	}
	return json.Unmarshal(body, v)
}
