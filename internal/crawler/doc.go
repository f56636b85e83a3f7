// Package crawler walks a locally mirrored crash database and extracts one
// record per incident page.
//
// The mirror has a fixed three level layout:
//
//	database.htm            links to every year page
//	1922/1922.htm           links to every incident page of the year
//	1922/1922-1.htm         one incident, described by a two column table
//
// # Components
//
//   - LoadPage: reads a Latin-1 encoded file into a queryable model.Page
//   - ExtractRecord: turns the first table of an incident page into a model.Record
//   - ResolveHref and LinkFilter: lexical link resolution and link selection
//   - Walker: the depth-first database, year, incident traversal
//
// Nothing here performs network access. Pages are read from disk once,
// processed, and dropped.
//
// # Usage
//
//	walker := crawler.NewWalker(crawler.WithLogger(logger))
//	err := walker.Walk(ctx, "../wget_planecrashinfo/database.htm",
//		func(ctx context.Context, path, year string) error {
//			page, err := crawler.LoadPage(path)
//			...
//		})
package crawler
