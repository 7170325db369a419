// Package httpclient provides a configurable HTTP client with built-in
// authentication and retry, used by the completion and transcription
// provider adapters.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.example.com",
//	    Timeout: 30 * time.Second,
//	    Auth:    httpclient.BearerAuth("my-token"),
//	    Retry:   httpclient.DefaultRetryConfig(),
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodGet,
//	    Path:   "/users/123",
//	})
//
// Typed helpers decode JSON responses directly:
//
//	out, err := httpclient.Post[CreateResponse](client, ctx, "/items", body)
package httpclient
