// Package gitlog acquires revision logs from git repositories.
//
// # Overview
//
// Two [Reader] implementations are provided:
//
//   - [GoGitReader]: walks the object database in-process with go-git. No
//     git binary is needed.
//   - [ExecReader]: runs the git binary with `log -z --topo-order` and
//     parses its raw output with a [Scanner].
//
// Both return revisions children-first, every revision before all of its
// parents, which is the order the lane layout requires. Readers whose
// native order is not topological pass their output through [TopoSort].
//
// # Raw Log Format
//
// [Format] is the pretty-format string handed to git. Each record is
// NUL-terminated (`-z`) and laid out as:
//
//	<40 hex id><40 hex tree><parent ids separated by ' '>\n
//	<author unix time>\n
//	<committer unix time>\n
//	<encoding>\n
//	<author name>\n
//	<author email>\n
//	<committer name>\n
//	<committer email>\n
//	<raw body>
//
// The subject is the first line of the trimmed body. The body is kept only
// for multi-line messages.
//
// # Uncommitted Changes
//
// With [Query.WorkTree] set, a reader prepends an artificial
// [revision.WorkTree] revision whose parent is HEAD when the working tree
// has uncommitted changes, so the graph shows them above the tip.
package gitlog
