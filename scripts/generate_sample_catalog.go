//go:build ignore

package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"supply-desk/internal/config"
	"supply-desk/internal/model"
	"supply-desk/internal/upstream"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Writes a gzipped JSON-lines catalog snapshot for CATALOG_SOURCE=file or s3.
//
//	go run scripts/generate_sample_catalog.go                 # sample products
//	go run scripts/generate_sample_catalog.go -from-upstream  # snapshot of UPSTREAM_BASE_URL
//	go run scripts/generate_sample_catalog.go -upload         # also put it at s3://S3_BUCKET/S3_KEY
func main() {
	out := flag.String("out", "data/catalog.jsonl.gz", "output file")
	fromUpstream := flag.Bool("from-upstream", false, "fetch the product list from the upstream API")
	upload := flag.Bool("upload", false, "upload the snapshot to S3")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	products := sampleProducts()
	var cfg *config.Config
	if *fromUpstream || *upload {
		var err error
		if cfg, err = config.Load(); err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}

	if *fromUpstream {
		client := upstream.New(upstream.Config{
			BaseURL: cfg.Upstream.BaseURL,
			Token:   cfg.Upstream.Token,
			Timeout: cfg.Upstream.Timeout(),
		}, config.NewLogger(cfg.Logger))

		var err error
		if products, err = client.ListProductsBrief(ctx); err != nil {
			log.Fatalf("Failed to fetch products: %v", err)
		}
	}

	data, err := encodeSnapshot(products)
	if err != nil {
		log.Fatalf("Failed to encode snapshot: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	fmt.Printf("Created %s with %d products\n", *out, len(products))

	if *upload {
		if err := uploadSnapshot(ctx, cfg.S3, data); err != nil {
			log.Fatalf("Failed to upload snapshot: %v", err)
		}
		fmt.Printf("Uploaded to s3://%s/%s\n", cfg.S3.Bucket, cfg.S3.Key)
	}
}

func sampleProducts() []model.ProductBrief {
	return []model.ProductBrief{
		{ID: 11, Name: "Sterile Gauze 10x10", Price: "12.75", Barcode: "6291041500213", Slug: "gauze-10"},
		{ID: 12, Name: "Nitrile Gloves M (100)", Price: "4", Barcode: "6291041500220", Slug: "gloves-m"},
		{ID: 13, Name: "Nitrile Gloves L (100)", Price: "4", Barcode: "6291041500237", Slug: "gloves-l"},
		{ID: 14, Name: "Composite Resin A2", Price: "38.50", Barcode: "4015630012345", Slug: "resin-a2"},
		{ID: 15, Name: "Dental Bib", Price: "0.15", Slug: "dental-bib", QuantityType: 1},
		{ID: 16, Name: "Saliva Ejector", Price: "0.08", Slug: "saliva-ejector", QuantityType: 1},
		{ID: 17, Name: "Alginate Impression 500g", Price: "9.90", Barcode: "8003670012340", Slug: "alginate-500"},
	}
}

func encodeSnapshot(products []model.ProductBrief) ([]byte, error) {
	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)

	enc := json.NewEncoder(gzipWriter)
	for _, p := range products {
		if err := enc.Encode(p); err != nil {
			return nil, fmt.Errorf("failed to write product %d: %w", p.ID, err)
		}
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

func uploadSnapshot(ctx context.Context, cfg config.S3Config, data []byte) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	_, err = s3.NewFromConfig(awsCfg).PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(cfg.Bucket),
		Key:             aws.String(cfg.Key),
		Body:            bytes.NewReader(data),
		ContentType:     aws.String("application/x-ndjson"),
		ContentEncoding: aws.String("gzip"),
	})
	return err
}
