// Package qacache embeds the semantic answer cache in a Go program.
//
// A question is first matched against previously answered questions. When a
// stored question is similar enough the stored answer is returned, otherwise
// the configured generator answers and the result is kept for reuse.
//
//	client, _ := qacache.New(ctx,
//	    qacache.WithRedis("localhost:6379", ""),
//	    qacache.WithEmbedder(embedder),
//	    qacache.WithGenerator(generator),
//	)
//	defer client.Close()
//
//	ans := client.Ask(ctx, qacache.Question{Text: "What is the capital of France?"})
//	fmt.Println(ans.Text, ans.FromMemory)
//
// # Conversations
//
// WithConversation keeps a per-session transcript in process memory and feeds
// it to the generator on cache misses. Calls that share a session id must not
// run concurrently.
package qacache
