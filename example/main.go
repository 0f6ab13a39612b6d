package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"

	canvas "github.com/dpotapov/go-canvas"
	"github.com/dpotapov/go-canvas/catalog"
)

func LoggerMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info("HTTP request", "method", r.Method, "url", r.URL)
		next.ServeHTTP(w, r)
	})
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dir := flag.String("dir", "./example/pages", "directory with markup files")
	catalogFile := flag.String("catalog", "./example/catalog.yaml", "element catalog, empty to disable")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ch := &canvas.Handler{
		FileSystem: os.DirFS(*dir),
		OnError:    nil,
		Logger:     logger,
	}

	if *catalogFile != "" {
		cat, err := catalog.LoadFile(*catalogFile)
		if err != nil {
			logger.Error("Load catalog", "error", err)
			os.Exit(1)
		}
		logger.Info("Loaded catalog", "file", *catalogFile, "elements", cat.Len())
		ch.Catalog = cat
	}

	logger.Info("Starting HTTP server", "address", "http://localhost"+*addr)

	err := http.ListenAndServe(*addr, LoggerMiddleware(ch, logger))

	logger.Error("HTTP server error", "error", err)
}
