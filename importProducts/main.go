package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"gitlab.connectwisedev.com/storefront-service/pkg/cache"
	"gitlab.connectwisedev.com/storefront-service/pkg/config"
	"gitlab.connectwisedev.com/storefront-service/pkg/database"
	"gitlab.connectwisedev.com/storefront-service/pkg/gateway"
	"gitlab.connectwisedev.com/storefront-service/pkg/importer"
	"gitlab.connectwisedev.com/storefront-service/pkg/storage"
)

// localCSV stands in for the S3 object when APP_ENV=local.
const localCSV = "products.csv"

var (
	cfg         *config.Config
	dbClient    *database.DBClient
	redisClient *cache.RedisClient
	products    *gateway.CachedProducts
)

func init() {
	config.LoadEnv() // Load environment variables first

	var err error
	cfg, err = config.FromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dbClient, err = database.NewPostgresClient(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize DB client: %v", err)
	}

	redisClient, err = cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize Redis client: %v", err)
	}

	products = gateway.NewCachedProducts(
		gateway.NewProducts(dbClient),
		cache.NewProductCache(redisClient, cfg.Shop.CatalogCacheTTL),
	)
}

// S3EventWrapper is a custom struct to handle either S3 events or direct CSV payload
type S3EventWrapper struct {
	Records []events.S3EventRecord `json:"Records,omitempty"`
	CSVData string                 `json:"csv_data,omitempty"` // For local testing
}

func readObject(ctx context.Context, bucket, key string) ([]byte, error) {
	if cfg.IsLocal() {
		log.Printf("Running in local environment, reading %s instead of s3://%s/%s", localCSV, bucket, key)
		content, err := os.ReadFile(localCSV)
		if err != nil {
			return nil, fmt.Errorf("failed to read local %s for S3 simulation: %w", localCSV, err)
		}
		return content, nil
	}

	store, err := storage.NewS3Store(ctx, bucket, "")
	if err != nil {
		return nil, err
	}
	body, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	content, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object body: %w", err)
	}
	return content, nil
}

func handler(ctx context.Context, event S3EventWrapper) (importer.Result, error) {
	var csvContent []byte

	switch {
	case len(event.Records) > 0:
		s3Record := event.Records[0].S3
		bucketName := s3Record.Bucket.Name
		// Object keys arrive URL-encoded in S3 notifications.
		key, err := url.QueryUnescape(s3Record.Object.Key)
		if err != nil {
			key = s3Record.Object.Key
		}
		log.Printf("Processing S3 event for bucket: %s, key: %s", bucketName, key)

		csvContent, err = readObject(ctx, bucketName, key)
		if err != nil {
			return importer.Result{}, err
		}
	case event.CSVData != "":
		log.Println("Processing direct CSV data payload.")
		csvContent = []byte(event.CSVData)
	default:
		return importer.Result{}, errors.New("no S3 event record or direct CSV data found in the payload")
	}

	res, err := importer.Import(ctx, products, csvContent)
	if err != nil {
		return res, err
	}
	log.Printf("Products processed successfully: %d imported, %d skipped.", res.Imported, res.Skipped)
	return res, nil
}

func main() {
	defer dbClient.Close()
	defer redisClient.Close()
	lambda.Start(handler)
}
