// Package nyaybodh is a Go client for the NyayBodh legal-research API.
//
// A search returns a Page: the result set, the filter options derived from
// it and the active filter selection. Repeating a query within the cache TTL
// is answered without a network call.
//
//	client, _ := nyaybodh.New(ctx, nyaybodh.WithBaseURL("https://api.example.org"))
//	defer client.Close()
//
//	page, _ := client.Search(ctx, nyaybodh.Entity, "land acquisition")
//	for _, judge := range page.Facets().Judges {
//	    fmt.Println(judge)
//	}
//	_, _ = page.Toggle(nyaybodh.DimensionJudge, page.Facets().Judges[0])
//	for _, r := range page.Visible().Entities() {
//	    fmt.Println(r.UUID, r.Petitioner)
//	}
//
// Case documents and recommendations are served by Cases():
//
//	pdf, _ := client.Cases().PDF(ctx, uuid)
package nyaybodh
