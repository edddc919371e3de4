package search

// Result is a single ranked hit as returned by the backend.
type Result struct {
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

// Response mirrors the JSON body of GET /search.
type Response struct {
	Query   string   `json:"query"`
	Count   int      `json:"count"`
	Results []Result `json:"results"`
}
