// Package astrobio is an in-process Go client for the astrobio research
// discovery engine: search, summarization, chat, gap analysis and mission
// timelines over a corpus of space bioscience studies.
//
// Every call works without an AI provider. When one is configured, the
// capability runs against it and falls back to the deterministic heuristic
// on any provider error. Results report which mode served them.
//
//	client, _ := astrobio.New(ctx, astrobio.WithGemini(os.Getenv("GEMINI_API_KEY")))
//	defer client.Close()
//
//	res, _ := client.Search(ctx, "bone loss in microgravity", astrobio.Filter{Organism: "Human"}, 5)
//	for _, r := range res.Results {
//	    fmt.Println(r.Score, r.Title)
//	}
//	fmt.Println(res.Note, res.Usage.Mode)
package astrobio
