//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/siteplan/siteplan/backend-go/internal/engine"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(nil)

	// Create the engine API object
	api := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	api.Set("loadFloorplan", js.FuncOf(loadFloorplan))
	api.Set("loadSample", js.FuncOf(loadSample))
	api.Set("setFloor", js.FuncOf(setFloor))
	api.Set("setSelection", js.FuncOf(setSelection))
	api.Set("drop", js.FuncOf(dropDevice))
	api.Set("removePlacement", js.FuncOf(removePlacement))
	api.Set("removeRoom", js.FuncOf(removeRoom))
	api.Set("addStairs", js.FuncOf(addStairs))
	api.Set("removeStairs", js.FuncOf(removeStairs))
	api.Set("undo", js.FuncOf(undo))
	api.Set("redo", js.FuncOf(redo))

	// --- Queries (frontend ← backend) ---
	api.Set("getFloorplan", js.FuncOf(getFloorplan))
	api.Set("getMarkers", js.FuncOf(getMarkers))
	api.Set("validate", js.FuncOf(validate))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("previewSnap", js.FuncOf(previewSnap))
	api.Set("getCatalog", js.FuncOf(getCatalog))
	api.Set("getFloor", js.FuncOf(getFloor))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("canUndo", js.FuncOf(canUndo))
	api.Set("canRedo", js.FuncOf(canRedo))

	js.Global().Set("siteplanEngine", api)
	js.Global().Set("siteplanWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// --- Command Handlers ---

func loadFloorplan(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing floorplan JSON"})
	}
	if err := eng.LoadFloorplan(args[0].String()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func loadSample(this js.Value, args []js.Value) interface{} {
	eng.LoadSample()
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func setFloor(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetFloor(args[0].Int())
	return nil
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		eng.SetSelection("")
		return nil
	}
	eng.SetSelection(args[0].String())
	return nil
}

// dropDevice takes the raw drag payload string and the pointer position in
// floor space. It returns the resolution result as JSON.
func dropDevice(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf("")
	}
	res := eng.Drop(args[0].String(), args[1].Float(), args[2].Float())
	data, _ := json.Marshal(res)
	return js.ValueOf(string(data))
}

func removePlacement(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.RemovePlacement(args[0].String())
	return nil
}

func removeRoom(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.RemoveRoom(args[0].String(), args[1].String())
	return nil
}

func addStairs(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing stairs JSON"})
	}
	if err := eng.AddStairs(args[0].String()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func removeStairs(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.RemoveStairs(args[0].String())
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Redo())
}

// --- Query Handlers ---

func getFloorplan(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetFloorplan())
}

func getMarkers(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Markers())
}

func validate(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Validate())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func previewSnap(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf("null")
	}
	return js.ValueOf(eng.PreviewSnap(args[0].String(), args[1].Float(), args[2].Float()))
}

func getCatalog(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetCatalog())
}

func getFloor(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetFloor())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelection())
}

func canUndo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.CanUndo())
}

func canRedo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.CanRedo())
}
