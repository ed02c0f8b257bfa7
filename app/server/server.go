package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"docsum/app/api"
	"docsum/chunker"
	"docsum/config"
	"docsum/extract"
	"docsum/ingest"
	"docsum/model"
	"docsum/store"
	"docsum/summarizer"

	"github.com/gofiber/fiber/v2"
)

var fiberConfig = fiber.Config{
	ErrorHandler: api.ErrorHandler,
	// Body limit above the application ceiling so the handler produces the
	// typed too-large error instead of a bare 413.
	BodyLimit: extract.MaxUploadSize + (1 << 20),
}

type Server struct {
	listenAddr string
	logger     *slog.Logger
}

func NewServer(addr string) *Server {
	return &Server{
		listenAddr: addr,
		logger:     slog.Default(),
	}
}

func (s *Server) Stop() {
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	ctx := context.Background()

	cfg, err := config.LoadDefault()
	if err != nil {
		log.Fatal("error loading config file: ", err)
		return
	}

	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
	pool, err := store.NewPostgresStore(ctx, connStr)
	if err != nil {
		log.Fatal("error to connect to Postgres database: ", err)
		return
	}

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error to create tables: ", err)
		return
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploaded_docs"
	}

	var (
		embedder  = model.NewEmbedder()
		llm       = model.NewMistralClient()
		sum       = summarizer.New(llm, cfg.Summarizer)
		splitter  = chunker.NewRecursiveSplitter(cfg.Chunker.Size, cfg.Chunker.Overlap)
		extractor = extract.New(cfg.Converter)
		pipeline  = ingest.New(pool, embedder, sum, splitter, extractor)

		app              = fiber.New(fiberConfig)
		checkHandler     = api.NewCheckHandler()
		uploadHandler    = api.NewUploadHandler(pipeline, uploadDir)
		queryHandler     = api.NewQueryHandler(pool, embedder, sum, cfg.Retrieval)
		summarizeHandler = api.NewSummarizeHandler(pool, extractor, sum, uploadDir)

		check = app.Group("/check")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	check.Get("/ready", checkHandler.HandleReady)
	app.Post("/upload", uploadHandler.HandleUpload)
	app.Post("/query", queryHandler.HandleQuery)
	app.Post("/summarize", summarizeHandler.HandleSummarize)

	err = app.Listen(s.listenAddr)
	if err != nil {
		s.logger.Error("error to start server", "error", err.Error())
		return
	}
}
