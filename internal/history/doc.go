// Package history records evaluated expressions so they can be listed,
// summarized and pruned later.
//
// Two implementations of Store exist: SQLiteStore persists entries in a
// SQLite database (WAL mode) and MemoryStore keeps them in process. Open
// picks one from the [history] configuration section.
//
//	store, err := history.Open(cfg.History)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	res := engine.Evaluate(ctx, "+ 1 2")
//	_ = store.Record(ctx, history.FromResult(history.SourceCLI, res))
package history
