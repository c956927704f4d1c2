// Package wasmtest assembles tiny guest modules for tests. Every module
// exports memory, a bump allocator named allocate and any number of (ptr,len)
// exports that return a packed i64.
package wasmtest

import "slices"

const (
	valI32 = 0x7f
	valI64 = 0x7e

	heapBase = 1024
	pages    = 4
)

// Behavior is what an export does with its input.
type Behavior int

const (
	// Echo returns the input unchanged.
	Echo Behavior = iota
	// Invoke forwards the input to idb_host.idb_invoke and returns its reply.
	Invoke
	// Log passes the input to idb_host.log_message and returns it unchanged.
	Log
	// Trap executes unreachable.
	Trap
)

// Export is one (ptr,len)->i64 function.
type Export struct {
	Name     string
	Behavior Behavior
}

const (
	typeAllocate = iota // (i32) -> i32
	typeExport          // (i32, i32) -> i64
	typeInvoke          // (i64) -> i64
	typeLog             // (i64) -> ()
)

// Module assembles a module with the given exports. Host imports are only
// declared when an export needs them.
func Module(exports ...Export) []byte {
	needInvoke := slices.ContainsFunc(exports, func(e Export) bool { return e.Behavior == Invoke })
	needLog := slices.ContainsFunc(exports, func(e Export) bool { return e.Behavior == Log })

	var imports [][]byte
	invokeIdx, logIdx := -1, -1
	if needInvoke {
		invokeIdx = len(imports)
		imports = append(imports, importEntry("idb_host", "idb_invoke", typeInvoke))
	}
	if needLog {
		logIdx = len(imports)
		imports = append(imports, importEntry("idb_host", "log_message", typeLog))
	}
	first := len(imports)

	types := [][]byte{
		funcType([]byte{valI32}, []byte{valI32}),
		funcType([]byte{valI32, valI32}, []byte{valI64}),
		funcType([]byte{valI64}, []byte{valI64}),
		funcType([]byte{valI64}, nil),
	}

	funcs := [][]byte{uleb(typeAllocate)}
	bodies := [][]byte{allocateBody()}
	exportEntries := [][]byte{
		exportEntry("memory", 0x02, 0),
		exportEntry("allocate", 0x00, first),
	}
	for i, e := range exports {
		funcs = append(funcs, uleb(typeExport))
		var body []byte
		switch e.Behavior {
		case Invoke:
			body = append(packArgs(), 0x10)
			body = append(body, uleb(uint64(invokeIdx))...)
		case Log:
			body = append(packArgs(), 0x10)
			body = append(body, uleb(uint64(logIdx))...)
			body = append(body, packArgs()...)
		case Trap:
			body = []byte{0x00}
		default:
			body = packArgs()
		}
		bodies = append(bodies, code(body))
		exportEntries = append(exportEntries, exportEntry(e.Name, 0x00, first+1+i))
	}

	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	out = append(out, section(1, vec(types))...)
	if len(imports) > 0 {
		out = append(out, section(2, vec(imports))...)
	}
	out = append(out, section(3, vec(funcs))...)
	out = append(out, section(5, vec([][]byte{{0x00, pages}}))...)
	// mutable i32 heap pointer
	global := append([]byte{valI32, 0x01, 0x41}, sleb(heapBase)...)
	global = append(global, 0x0b)
	out = append(out, section(6, vec([][]byte{global}))...)
	out = append(out, section(7, vec(exportEntries))...)
	out = append(out, section(10, vec(bodies))...)
	return out
}

// allocateBody returns the current heap pointer and advances it by size.
func allocateBody() []byte {
	return code([]byte{
		0x23, 0x00, // global.get 0
		0x23, 0x00, // global.get 0
		0x20, 0x00, // local.get 0
		0x6a,       // i32.add
		0x24, 0x00, // global.set 0
	})
}

// packArgs leaves ptr<<32|len on the stack.
func packArgs() []byte {
	return []byte{
		0x20, 0x00, // local.get 0
		0xad,       // i64.extend_i32_u
		0x42, 0x20, // i64.const 32
		0x86,       // i64.shl
		0x20, 0x01, // local.get 1
		0xad,       // i64.extend_i32_u
		0x84,       // i64.or
	}
}

func code(instrs []byte) []byte {
	body := append([]byte{0x00}, instrs...) // no locals
	body = append(body, 0x0b)
	return append(uleb(uint64(len(body))), body...)
}

func funcType(params, results []byte) []byte {
	out := []byte{0x60}
	out = append(out, uleb(uint64(len(params)))...)
	out = append(out, params...)
	out = append(out, uleb(uint64(len(results)))...)
	return append(out, results...)
}

func importEntry(module, name string, typeIdx int) []byte {
	out := append(str(module), str(name)...)
	out = append(out, 0x00)
	return append(out, uleb(uint64(typeIdx))...)
}

func exportEntry(name string, kind byte, idx int) []byte {
	out := append(str(name), kind)
	return append(out, uleb(uint64(idx))...)
}

func section(id byte, payload []byte) []byte {
	out := append([]byte{id}, uleb(uint64(len(payload)))...)
	return append(out, payload...)
}

func vec(items [][]byte) []byte {
	out := uleb(uint64(len(items)))
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func str(s string) []byte {
	return append(uleb(uint64(len(s))), s...)
}

func uleb(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}
