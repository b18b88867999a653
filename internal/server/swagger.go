package server

//go:generate swag init -g internal/server/swagger.go -o internal/server/docs

// @title TrustLens API
// @version 0.1
// @description Multi-signal trust scoring for URLs: behaviour heuristics, text classification and image provenance fused into one verdict.
// @contact.name TrustLens Maintainers
// @contact.url https://github.com/trustlens/trustlens
// @BasePath /
