//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/inamate/skycanvas/internal/engine"
	"github.com/inamate/skycanvas/internal/viewer"
)

var eng *engine.Engine

func main() {
	var err error
	eng, err = engine.NewEngine(viewer.DefaultOptions())
	if err != nil {
		js.Global().Get("console").Call("error", err.Error())
		return
	}

	// Create the engine API object
	skyEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	skyEngine.Set("loadDocument", js.FuncOf(loadDocument))
	skyEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	skyEngine.Set("pointer", js.FuncOf(pointer))
	skyEngine.Set("setMode", js.FuncOf(setMode))
	skyEngine.Set("setKind", js.FuncOf(setKind))
	skyEngine.Set("setSelection", js.FuncOf(setSelection))
	skyEngine.Set("deleteSelection", js.FuncOf(deleteSelection))
	skyEngine.Set("resize", js.FuncOf(resize))
	skyEngine.Set("setZoom", js.FuncOf(setZoom))
	skyEngine.Set("zoomFit", js.FuncOf(zoomFit))

	// --- Queries (frontend ← backend) ---
	skyEngine.Set("tick", js.FuncOf(tick))
	skyEngine.Set("render", js.FuncOf(render))
	skyEngine.Set("hitTest", js.FuncOf(hitTest))
	skyEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	skyEngine.Set("getDocument", js.FuncOf(getDocument))
	skyEngine.Set("getSelection", js.FuncOf(getSelection))
	skyEngine.Set("getState", js.FuncOf(getState))
	skyEngine.Set("cursor", js.FuncOf(cursor))
	skyEngine.Set("drainEvents", js.FuncOf(drainEvents))

	// Register on global scope
	js.Global().Set("skyEngine", skyEngine)

	// Signal that WASM is ready
	js.Global().Set("skyWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func result(err error) interface{} {
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func missing(what string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": "missing " + what})
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("document JSON")
	}
	return result(eng.LoadDocument(args[0].String()))
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	canvasID := "cnv_sample"
	if len(args) > 0 {
		canvasID = args[0].String()
	}
	return result(eng.LoadSampleDocument(canvasID))
}

// pointer(name, x, y, modifier?) feeds one input event in window pixels.
func pointer(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return missing("input name and position")
	}
	modifier := len(args) > 3 && args[3].Truthy()
	bound, err := eng.Pointer(args[0].String(), args[1].Float(), args[2].Float(), modifier)
	if err != nil {
		return result(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "bound": bound})
}

func setMode(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("mode")
	}
	return result(eng.SetMode(args[0].String()))
}

func setKind(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("kind")
	}
	return result(eng.SetKind(args[0].String()))
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("tags")
	}
	arr := args[0]
	tags := make([]string, arr.Length())
	for i := range tags {
		tags[i] = arr.Index(i).String()
	}
	return result(eng.SetSelection(tags))
}

func deleteSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.DeleteSelection())
}

func resize(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("width and height")
	}
	return result(eng.Resize(args[0].Float(), args[1].Float()))
}

func setZoom(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("zoom")
	}
	return result(eng.SetZoom(args[0].Float()))
}

func zoomFit(this js.Value, args []js.Value) interface{} {
	return result(eng.ZoomFit())
}

// --- Query Handlers ---

func tick(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Tick())
}

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.SelectionBounds())
}

func getDocument(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDocument())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelection())
}

func getState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetState())
}

func cursor(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.Cursor(args[0].Float(), args[1].Float()))
}

func drainEvents(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.DrainEvents())
}
