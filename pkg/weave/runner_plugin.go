// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

import (
	"context"
	"fmt"
	"sync"

	"github.com/bytecodealliance/wasmtime-go/v3"
)

// PluginRunner runs a formatter compiled to WebAssembly inside a
// wasmtime sandbox, with no ambient filesystem or network access (spec
// §4.2 "in-process sandboxed plugin formatters", §9 "a plugin must not
// be able to reach outside the document it was given").
//
// The module must export a linear memory named "memory", an
// "weave_alloc(size: i32) -> i32" allocator, and a
// "weave_format(in_ptr: i32, in_len: i32, width: i32) -> i64" entry
// point returning a packed (out_ptr<<32 | out_len) result; a negative
// result signals formatter failure and is reported as a FormatterError
// carrying that value as its code; no error message is read from the
// module's memory. This ABI is this runner's own
// convention, not dictated by any upstream plugin ecosystem.
type PluginRunner struct {
	Name      string
	Languages map[string]struct{}

	mu     sync.Mutex
	engine *wasmtime.Engine
	module *wasmtime.Module
}

// NewPluginRunner compiles wasmBytes once; Format instantiates a fresh
// store per call so concurrent invocations never share linear memory.
func NewPluginRunner(name string, wasmBytes []byte, languages map[string]struct{}) (*PluginRunner, error) {
	engine := wasmtime.NewEngine()
	module, err := wasmtime.NewModule(engine, wasmBytes)
	if err != nil {
		return nil, &ConfigurationError{Detail: fmt.Sprintf("plugin %q: failed to compile wasm module", name), Err: err}
	}
	return &PluginRunner{Name: name, Languages: languages, engine: engine, module: module}, nil
}

// CanFormat reports whether r is configured for language.
func (r *PluginRunner) CanFormat(language string) bool {
	if r.Languages == nil {
		return true
	}
	_, ok := r.Languages[language]
	return ok
}

// Format instantiates the compiled module in a fresh, unlinked store (no
// WASI, no host imports beyond what the module needs for arithmetic) and
// invokes its weave_format export.
func (r *PluginRunner) Format(ctx context.Context, text []byte, language string, printWidth int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	store := wasmtime.NewStore(r.engine)
	linker := wasmtime.NewLinker(r.engine)

	instance, err := linker.Instantiate(store, r.module)
	if err != nil {
		return nil, &FormatterError{Kind: FormatterErrorNonZeroExit, Formatter: r.Name, Err: fmt.Errorf("instantiate plugin: %w", err)}
	}

	mem := instance.GetExport(store, "memory").Memory()
	alloc := instance.GetExport(store, "weave_alloc").Func()
	format := instance.GetExport(store, "weave_format").Func()
	if mem == nil || alloc == nil || format == nil {
		return nil, &FormatterError{Kind: FormatterErrorNonZeroExit, Formatter: r.Name, Err: fmt.Errorf("plugin missing memory/weave_alloc/weave_format exports")}
	}

	inPtrVal, err := alloc.Call(store, int32(len(text)))
	if err != nil {
		return nil, &FormatterError{Kind: FormatterErrorNonZeroExit, Formatter: r.Name, Err: err}
	}
	inPtr := inPtrVal.(int32)

	data := mem.UnsafeData(store)
	copy(data[inPtr:], text)

	resultVal, err := format.Call(store, inPtr, int32(len(text)), int32(printWidth))
	if err != nil {
		if ctx.Err() != nil {
			return nil, &FormatterError{Kind: FormatterErrorTimeout, Formatter: r.Name, Err: ctx.Err()}
		}
		return nil, &FormatterError{Kind: FormatterErrorNonZeroExit, Formatter: r.Name, Err: err}
	}

	packed := resultVal.(int64)
	if packed < 0 {
		return nil, &FormatterError{Kind: FormatterErrorNonZeroExit, Formatter: r.Name, Err: fmt.Errorf("plugin reported failure (code %d)", packed)}
	}

	outPtr := uint32(packed >> 32)
	outLen := uint32(packed & 0xffffffff)
	if outLen == 0 && len(text) > 0 {
		return nil, &FormatterError{Kind: FormatterErrorEmptyOutput, Formatter: r.Name}
	}

	data = mem.UnsafeData(store)
	out := make([]byte, outLen)
	copy(out, data[outPtr:outPtr+outLen])
	return out, nil
}
