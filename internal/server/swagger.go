package server

//go:generate swag init -g internal/server/swagger.go -o internal/server/docs

// @title JudolHunter API
// @version 0.1
// @description Scans websites for search-engine cloaking and injected gambling content.
// @contact.name JudolHunter Maintainers
// @contact.url https://github.com/raysh454/judolhunter
// @BasePath /
