// Package api exposes the interview session lifecycle over HTTP.
//
// Routes are registered on a Gin engine:
//
//	handler := api.NewHandler(api.Config{}, manager, recorder, metrics, log)
//	handler.RegisterRoutes(srv.GinEngine())
//
// All endpoints live under /v1/interviews. Answers can arrive either as a
// multipart audio upload or through the server-side recording endpoints
// backed by sox.
package api
