// Package linkdex embeds the linkdex retrieval engine in a Go program, backed by
// Redis for documents, vectors and the cost ledger.
//
// The client runs the same lexical, semantic and hybrid search as the HTTP
// service, with embedding spend governed by daily and monthly caps.
//
//	client, _ := linkdex.New(ctx,
//	    linkdex.WithRedis("localhost:6379", ""),
//	    linkdex.WithEmbedder(myEmbedder),
//	    linkdex.WithCostLimits(1, 30),
//	)
//	_, _ = client.Documents().Upsert(ctx, linkdex.Document{
//	    ID:    "swiftui-guide",
//	    URL:   "https://example.com/swiftui",
//	    Title: "SwiftUI Navigation",
//	})
//	_, _ = client.Backfill().Run(ctx, 0)
//	res, _ := client.Search().Hybrid(ctx, "swiftui navigation")
package linkdex
