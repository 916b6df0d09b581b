// Package wazeroengine implements hostbridge.Engine over a WebAssembly
// engine module running under wazero.
//
// The wasm instance is exactly the kind of host the bridge exists for: it
// is not safe for concurrent calls, and the row buffers it hands out live
// in linear memory it is free to reuse. All methods therefore expect to be
// invoked under the bridge's call gate, and every row region is exposed
// through a window whose accessor fails once the cursor advances or closes.
//
// # Engine module ABI
//
// The module must export a linear memory named "memory" and:
//
//	engine_current_user() -> i32         identity of the executing principal
//	engine_session_user() -> i32         identity that began the session
//	engine_name_of(i32) -> i64           packed ptr<<32|len, 0 = unknown id
//	engine_cursor_open(i32) -> i32       cursor handle, 0 = refused; the
//	                                     argument is the fetch-size hint
//	engine_cursor_fetch(i32) -> i64      packed ptr<<32|len of the next row,
//	                                     0 = end of data
//	engine_cursor_close(i32)             release a cursor
//
// Row and name regions are views into the module's memory, valid until the
// next call that may reuse them. An engine module that grows its memory
// mid-iteration moves those views; such engines must not serve rows across
// a grow, and this package treats any out-of-range region as a failed host
// call.
package wazeroengine
