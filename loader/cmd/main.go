package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"docsum/chunker"
	"docsum/config"
	"docsum/extract"
	"docsum/ingest"
	"docsum/loader/internal"
	"docsum/loader/service"
	"docsum/model"
	"docsum/store"
	"docsum/summarizer"

	"github.com/joho/godotenv"
)

func init() {
	mustLoadEnvVariables()
}

func main() {
	ctx := context.Background()

	cfg, err := config.LoadDefault()
	if err != nil {
		log.Fatal("error loading config file: ", err)
	}

	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
	pool, err := store.NewPostgresStore(ctx, connStr)
	if err != nil {
		log.Fatal("error to connect to Postgres database: ", err)
	}

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error to create tables: ", err)
	}

	loaderCfg := service.ConfigFromEnv()
	if err := internal.CreateDirectories(loaderCfg.SourceDir, loaderCfg.ArchiveDir, loaderCfg.BadDir); err != nil {
		log.Fatal("error creating loader directories: ", err)
	}

	var (
		embedder  = model.NewEmbedder()
		llm       = model.NewMistralClient()
		sum       = summarizer.New(llm, cfg.Summarizer)
		splitter  = chunker.NewRecursiveSplitter(cfg.Chunker.Size, cfg.Chunker.Overlap)
		extractor = extract.New(cfg.Converter)
		pipeline  = ingest.New(pool, embedder, sum, splitter, extractor)
	)

	service.New(pipeline, loaderCfg).Run()

	log.Println("Closing database connection pool...")
	if err := pool.Close(); err != nil {
		log.Printf("error closing pool: %v\n", err)
	}
}

func mustLoadEnvVariables() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
}
