//go:build js && wasm
// +build js,wasm

package main

import (
	"fmt"
	"sync"
	"syscall/js"

	"github.com/himanishpuri/StringTuner/internal/display"
	"github.com/himanishpuri/StringTuner/pkg/stringtuner"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorInvalidConfig
	ErrorUnknownHandle
	ErrorProcessing
)

// tuners holds the engines created by createTuner, keyed by handle.
var (
	mu     sync.Mutex
	tuners = map[int]*tunerHandle{}
	nextID = 1
)

type tunerHandle struct {
	engine   *stringtuner.Engine
	spectrum []uint8
}

// createTuner(sampleRate, fftSize[, tolerance]) builds an engine for one
// AnalyserNode. Returns: {error: number, data: handle | string}
func createTuner(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected arguments: sampleRate, fftSize[, tolerance]")
	}
	if args[0].Type() != js.TypeNumber || args[1].Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "sampleRate and fftSize must be numbers")
	}

	opts := []stringtuner.Option{stringtuner.WithFFTSize(args[1].Int())}
	if len(args) > 2 && args[2].Type() == js.TypeNumber {
		opts = append(opts, stringtuner.WithTolerance(args[2].Float()))
	}

	engine, err := stringtuner.NewEngine(args[0].Float(), opts...)
	if err != nil {
		return makeErrorResponse(ErrorInvalidConfig, err.Error())
	}

	mu.Lock()
	id := nextID
	nextID++
	tuners[id] = &tunerHandle{engine: engine, spectrum: make([]uint8, engine.BinCount())}
	mu.Unlock()

	return makeResponse(id)
}

// analyzeSpectrum(handle, Uint8Array) runs one tick over the bytes from
// getByteFrequencyData. Returns: {error: number, data: reading | string}
func analyzeSpectrum(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected arguments: handle, spectrum")
	}
	if args[0].Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "handle must be a number")
	}

	mu.Lock()
	t, ok := tuners[args[0].Int()]
	mu.Unlock()
	if !ok {
		return makeErrorResponse(ErrorUnknownHandle, fmt.Sprintf("unknown tuner handle %d", args[0].Int()))
	}

	src := args[1]
	if !src.InstanceOf(js.Global().Get("Uint8Array")) {
		return makeErrorResponse(ErrorInvalidArgs, "spectrum must be a Uint8Array")
	}
	if n := src.Length(); n != len(t.spectrum) {
		return makeErrorResponse(ErrorInvalidArgs,
			fmt.Sprintf("spectrum has %d bins, expected %d (frequencyBinCount)", n, len(t.spectrum)))
	}
	js.CopyBytesToGo(t.spectrum, src)

	reading, err := t.engine.Process(t.spectrum)
	if err != nil {
		return makeErrorResponse(ErrorProcessing, err.Error())
	}
	return makeResponse(readingToJS(reading))
}

// releaseTuner(handle) drops an engine. Releasing twice is an error.
func releaseTuner(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "Expected argument: handle")
	}
	id := args[0].Int()

	mu.Lock()
	_, ok := tuners[id]
	delete(tuners, id)
	mu.Unlock()

	if !ok {
		return makeErrorResponse(ErrorUnknownHandle, fmt.Sprintf("unknown tuner handle %d", id))
	}
	return makeResponse(true)
}

// classifyFrequency(hz[, tolerance]) matches a frequency against standard tuning.
func classifyFrequency(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "Expected argument: frequency")
	}
	tolerance := stringtuner.DefaultConfig().Tolerance
	if len(args) > 1 && args[1].Type() == js.TypeNumber {
		tolerance = args[1].Float()
	}
	res := stringtuner.Classify(args[0].Float(), stringtuner.StandardTuning, tolerance)
	return makeResponse(tuningToJS(res))
}

func readingToJS(r stringtuner.Reading) map[string]interface{} {
	peaks := make([]interface{}, len(r.Peaks))
	for i, p := range r.Peaks {
		peaks[i] = map[string]interface{}{
			"frequency": p.Frequency,
			"amplitude": int(p.Amplitude),
		}
	}
	nearest := make([]interface{}, len(r.Nearest))
	for i, n := range r.Nearest {
		nearest[i] = map[string]interface{}{
			"note":       n.Note.Name,
			"frequency":  n.Note.Frequency,
			"difference": n.Difference,
		}
	}
	lines := display.Lines(true, r)
	text := make([]interface{}, len(lines))
	for i, l := range lines {
		text[i] = l
	}

	out := map[string]interface{}{
		"frequency": r.Frequency,
		"detected":  r.Detected,
		"peaks":     peaks,
		"nearest":   nearest,
		"display":   text,
	}
	if r.Detected {
		out["tuning"] = tuningToJS(r.Tuning)
	}
	return out
}

func tuningToJS(t stringtuner.TuningResult) map[string]interface{} {
	return map[string]interface{}{
		"note":        t.Note,
		"inTune":      t.InTune,
		"needsHigher": t.NeedsHigher,
		"difference":  t.Difference,
		"cents":       t.Cents,
		"verdict":     display.Verdict(t),
	}
}

func makeResponse(data interface{}) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", js.ValueOf(data))
	return result
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	if !console.IsUndefined() {
		console.Call("log", "StringTuner WASM module initializing...")
	}

	done := make(chan struct{})

	for name, fn := range map[string]func(js.Value, []js.Value) interface{}{
		"createTuner":       createTuner,
		"analyzeSpectrum":   analyzeSpectrum,
		"releaseTuner":      releaseTuner,
		"classifyFrequency": classifyFrequency,
	} {
		js.Global().Set(name, js.FuncOf(fn))
	}

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		eventInit := js.Global().Get("Object").New()
		event := js.Global().Get("CustomEvent").New("wasmReady", eventInit)
		window.Call("dispatchEvent", event)
	} else if !console.IsUndefined() {
		console.Call("error", "window object is undefined")
	}

	if !console.IsUndefined() {
		console.Call("log", "StringTuner WASM module loaded and ready")
	}

	<-done
}
