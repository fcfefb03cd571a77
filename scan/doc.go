// Package scan implements cursor-based incremental iteration over a remote
// collection (SCAN, HSCAN).
//
// A Cursor is an opaque token plus a finished flag. Each step returns a new
// cursor; callers feed it back to continue and stop once Finished reports
// true. Batch sizes are hints: an empty page with an unfinished cursor is
// valid. Elements present for the whole scan are returned at least once, and
// duplicates are possible while the collection mutates.
//
// Iterator drives steps to completion behind the provider.Iterator contract:
//
//	it := scan.NewIterator(func(ctx context.Context, c scan.Cursor) ([]string, scan.Cursor, error) {
//	    page, err := cmds.ScanContinue(ctx, c, &scan.Args{Match: "user:*"})
//	    return page.Keys, page.Cursor, err
//	})
//	keys, err := scan.Collect(ctx, it)
package scan
