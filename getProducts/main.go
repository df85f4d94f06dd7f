package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"gitlab.connectwisedev.com/storefront-service/models"
	"gitlab.connectwisedev.com/storefront-service/pkg/cache"
	"gitlab.connectwisedev.com/storefront-service/pkg/config"
	"gitlab.connectwisedev.com/storefront-service/pkg/database"
	"gitlab.connectwisedev.com/storefront-service/pkg/gateway"
)

var (
	dbClient    *database.DBClient
	redisClient *cache.RedisClient
	products    *gateway.CachedProducts
)

func init() {
	config.LoadEnv() // Load environment variables first

	cfg, err := config.FromEnv()
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

func errorResponse(status int, message string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(map[string]string{"message": message})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log.Printf("Received request: %v", request.Path)

	categories := models.Categories
	if raw := request.QueryStringParameters["category"]; raw != "" {
		cat, err := models.ParseCategory(raw)
		if err != nil {
			return errorResponse(http.StatusBadRequest, "Unknown category"), nil
		}
		categories = []models.Category{cat}
	}

	list, err := products.ListProducts(ctx, categories)
	if err != nil {
		log.Printf("Error fetching products: %v", err)
		return errorResponse(http.StatusInternalServerError, "Failed to retrieve products"), nil
	}

	responseBody, err := json.Marshal(list)
	if err != nil {
		log.Printf("Error marshaling products to JSON: %v", err)
		return errorResponse(http.StatusInternalServerError, "Failed to format response"), nil
	}

	headers := map[string]string{
		"Content-Type":                 "application/json",
		"Cache-Control":                "public, max-age=300, must-revalidate",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET",
		"Access-Control-Allow-Headers": "Content-Type",
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       string(responseBody),
	}, nil
}

func main() {
	defer dbClient.Close()
	defer redisClient.Close()
	lambda.Start(handler)
}
