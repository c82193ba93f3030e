// Package directory tracks which live connections belong to which user.
//
// A Directory maps a user's channel name to the set of currently open
// connection ids. Connection lifecycle hooks are the only writers: a
// handler registers its connection id on accept and unregisters it on
// disconnect, so directory membership never outlives the handler.
//
// Two implementations exist behind the same capability interface:
//
//   - Memory: a reference-counted in-process map for single-process
//     deployments, development and tests.
//   - Redis: shared sets keyed by channel name, so fan-out from any process
//     reaches connections held by any other process.
//
// Select the implementation through configuration, not at compile time.
package directory
