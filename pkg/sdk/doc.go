// Package estaterag embeds the listing retrieval pipeline in a Go program
// without running the HTTP server.
//
// The client stores normalized listings in Redis/valkey-search (or in process
// memory), retrieves the closest ones for a natural-language query and asks a
// completion model to rank them.
//
//	client, _ := estaterag.New(ctx,
//	    estaterag.WithRedis("localhost:6379", ""),
//	    estaterag.WithOpenAI(estaterag.OpenAIConfig{APIKey: key}),
//	)
//	defer client.Close()
//
//	report, _ := client.Ingest(ctx, listings)
//	_ = client.BuildIndex(ctx) // optional, search falls back to a full scan
//	answer, _ := client.Query(ctx, "two bedroom flat near the park", 5)
//
// Custom providers plug in through WithEmbedder and WithCompleter.
package estaterag
