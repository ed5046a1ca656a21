// Package slatesearch embeds the casting-directory search core in a Go
// program, for hosts that call search directly instead of over HTTP.
//
// Records of four kinds (people, organizations, locations, productions) are
// canonicalized into descriptive text, embedded, and stored in Valkey or
// Redis with a KNN index per kind. A free-text query is embedded once and
// matched against every kind concurrently.
//
//	client, err := slatesearch.New(ctx,
//	    slatesearch.WithValkey("localhost:6379", ""),
//	    slatesearch.WithEmbedder(emb),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	_, _ = client.EnsureIndexes(ctx)
//	results, _ := client.Index(ctx, slatesearch.KindPerson, records)
//	res, _ := client.Search(ctx, "stunt coordinator in Atlanta")
package slatesearch
