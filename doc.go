// Package tsvdb imports delimited text files into SQLite tables and serves
// paged, filtered and fuzzy-ranked reads over them.
//
// Column types are inferred from a bounded sample of the first rows. Once the
// sample is full the table is created and the remaining rows are streamed in
// fixed-size batches, each written in its own transaction, so memory use does
// not grow with the size of the input.
//
// # Features
//
//   - Import TSV, CSV and plain text files, optionally compressed (gzip, bzip2, xz, zstandard)
//   - Kind inference (INTEGER, REAL, BOOLEAN, TEXT) over the first 1000 rows
//   - Storage-safe table and column names for reserved words and odd characters
//   - Progress reporting as (total, processed) after the schema commit and every batch
//   - Paged select, count and top-N reads with LIKE filters on several fields
//   - Fuzzy search ranked by Levenshtein and Jaro-Winkler similarity
//   - Export of a page, a page range or all pages to CSV, TSV, XLSX or Parquet
//
// # Basic Usage
//
//	store, err := tsvdb.NewStore("data.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	session, err := tsvdb.NewImporter(store, tsvdb.DefaultImportConfig()).
//	    Import(ctx, "users.tsv", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(session.Table, session.Processed)
//
// Several files or whole directories are imported with the ImportBuilder:
//
//	builder, err := tsvdb.NewImportBuilder(store).
//	    AddPath("data/").
//	    WithProgress(func(total, processed int64) {
//	        fmt.Printf("%d/%d\n", processed, total)
//	    }).
//	    Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sessions, err := builder.Import(ctx)
//
// # Reading
//
//	rs, err := store.Select(ctx, "users", tsvdb.NewContainsSearch(
//	    []string{"name"}, []string{"ali"}), 1, tsvdb.DefaultPageSize)
//
//	ranked, _, err := store.Search(ctx, "users", "name", "alice", tsvdb.DefaultRankOptions())
//
// # Exporting
//
//	options := tsvdb.NewExportOptions().
//	    WithFormat(tsvdb.ExportFormatTSV).
//	    WithCompression(tsvdb.CompressionGZ).
//	    WithScope(tsvdb.PageRange(1, 3))
//	err = store.Export(ctx, "users", "out/users.tsv.gz", options)
//
// The store opens a fresh database handle for every operation and closes it
// afterwards. Importer, Store and ranking functions take a context.Context;
// a canceled import keeps every batch committed before the cancellation.
package tsvdb
