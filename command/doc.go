// Package command describes store commands and the boundary to whatever
// executes them.
//
// A Command is a name, its key(s) and arguments, tagged with a Shape that
// tells logs and metrics whether it is a point lookup, a batch, a streaming
// read or a cursor continuation. An Executor turns a Command into a
// deferred.Result[Reply]; the Reply decoders check the reply shape and
// report mismatches as REMOTE_PROTOCOL_ERROR.
package command
