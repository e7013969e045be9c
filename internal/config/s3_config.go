package config

import (
	"context"
	"fmt"

	"github.com/jovas-007/Olap-practica-jovas/internal/config_lib"
)

func S3ConfigService(ctx context.Context, s3 S3Config, maxUploadMB int64) (*UploadService, error) {
	if s3.Region == "" || s3.Bucket == "" {
		return nil, fmt.Errorf("faltan variables de entorno: AWS_REGION y/o S3_BUCKET")
	}

	s3Client, uploader, publicBase, err := config_lib.NewS3Client(ctx, s3.Region, s3.Bucket)
	if err != nil {
		return nil, fmt.Errorf("error creando cliente S3: %w", err)
	}

	return &UploadService{
		S3Client:    s3Client,
		Uploader:    uploader,
		Bucket:      s3.Bucket,
		PublicBase:  publicBase,
		MaxUploadMB: maxUploadMB,
	}, nil
}
