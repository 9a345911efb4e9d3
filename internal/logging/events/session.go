package events

import "github.com/atomicstack/runstrip/internal/logging"

type QueryTracer struct{}

type SelectionTracer struct{}

type LaunchTracer struct{}

type FrequencyTracer struct{}

type CatalogTracer struct{}

var (
	Query     = QueryTracer{}
	Selection = SelectionTracer{}
	Launch    = LaunchTracer{}
	Frequency = FrequencyTracer{}
	Catalog   = CatalogTracer{}
)

func (QueryTracer) Edit(query string, caret, results int) {
	logging.Trace("query.edit", map[string]interface{}{"query": query, "caret": caret, "results": results})
}

func (SelectionTracer) Move(mode string, selected, scroll, last int) {
	logging.Trace("selection.move", map[string]interface{}{
		"mode":     mode,
		"selected": selected,
		"scroll":   scroll,
		"last":     last,
	})
}

func (SelectionTracer) ConfirmDelete(name string) {
	logging.Trace("selection.confirm-delete", map[string]interface{}{"name": name})
}

func (LaunchTracer) Spawn(command, dir string, needsDelay bool) {
	logging.Trace("launch.spawn", map[string]interface{}{"command": command, "dir": dir, "delay": needsDelay})
}

func (LaunchTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("launch.error", map[string]interface{}{"error": err.Error()})
}

func (FrequencyTracer) Save(path string, entries int, err error) {
	payload := map[string]interface{}{"path": path, "entries": entries}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("frequency.save", payload)
}

func (FrequencyTracer) Remove(name string) {
	logging.Trace("frequency.remove", map[string]interface{}{"name": name})
}

func (CatalogTracer) Build(size int, discovered bool) {
	logging.Trace("catalog.build", map[string]interface{}{"size": size, "discovered": discovered})
}

func (CatalogTracer) Refresh(scanned, added int) {
	logging.Trace("catalog.refresh", map[string]interface{}{"scanned": scanned, "added": added})
}

type RenderTracer struct{}

var Render = RenderTracer{}

func (RenderTracer) GlyphError(r rune, px int, err error) {
	logging.Trace("render.glyph-error", map[string]interface{}{"rune": string(r), "px": px, "error": err.Error()})
}
