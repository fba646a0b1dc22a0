// Package export pre-renders pages into static documents.
//
// Each page is rendered to completion and the chunk sequence is replayed
// with render.Reconstruct, so the stored document is exactly what a
// browser shows once every Suspense boundary has been patched in.
// Documents go to a Store: DiskStore for a local directory or S3Store for
// a bucket.
//
//	store, _ := export.NewDiskStore("dist")
//	exp := export.NewExporter(renderer, store, export.Config{Concurrency: 8})
//	results, err := exp.Export(ctx, pages)
package export
