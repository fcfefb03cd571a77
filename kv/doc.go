// Package kv is the typed command surface of the store client.
//
// Every operation validates its key arguments before anything is
// dispatched, hands the command to a command.Executor, decodes the reply
// off the completing goroutine and suspends the caller until the outcome
// is known. Cancelling the caller's context cancels the pending command.
//
// Collection reads come in three flavors: materializing (HGetAll),
// streaming into a stream.Sink (HGetAllStream, returning the delivered
// count), and cursor scans (HScan, HScanContinue and their Stream variants),
// which return one page per call together with the cursor to continue from.
package kv
