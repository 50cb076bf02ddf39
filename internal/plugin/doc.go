// Package plugin provides the extensibility core: discovery, validation,
// lifecycle, and persistence for user-supplied Lua plugins.
//
// # Plugin Files
//
// One Lua source file per plugin, in a flat directory:
//
//	~/.config/keel/plugins/word_count.lua
//
// The file's base name is the plugin identifier (lower_snake_case). The
// script must define a global table whose name is the PascalCase form of the
// identifier; a file named word_count.lua defines WordCount. A name mismatch
// is a recorded discovery error, never a silent skip.
//
// # Plugin Shape
//
//	WordCount = {
//	    display_name = "Word Count",
//	    description = "counts words in the active tab",
//	    version = "1.0.0",
//	    author = "someone",
//	}
//
//	function WordCount.on_enable(self)
//	    keel.log.info("word count enabled")
//	end
//
//	function WordCount.on_disable(self) end
//
//	function WordCount.on_edit(self)
//	    return { title = "Word Count", fields = {} }
//	end
//
// All three hooks are optional; a missing hook defaults to a no-op and a
// missing on_edit means the plugin has no settings surface. Construction is
// the implicit fourth hook: the file's top level runs in a fresh interpreter
// with the `keel` capability table already installed.
//
// # Lifecycle
//
// Records move through these states:
//
//	Discovered -> Load() -> Loaded
//	Loaded -> Enable() -> Enabled
//	Enabled -> Disable() -> Disabled
//	any state -> removed, when the backing file disappears from a rescan
//
// Enable persists enabled=true only after the hook succeeds. Disable always
// completes and persists enabled=false even when the hook fails. At startup
// every plugin whose persisted flag is true is loaded and enabled in
// discovery order; one failure never stops the rest.
//
// # Trust Model
//
// Plugins execute in-process with full host privileges. There is no sandbox,
// no resource quota, and no hook timeout. Installing a plugin is equivalent
// to running its code as the editor's user.
package plugin
