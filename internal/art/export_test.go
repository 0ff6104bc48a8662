package art

// SetBaseURL points the generator at a test server.
func SetBaseURL(g *Generator, url string) {
	g.baseURL = url
}
