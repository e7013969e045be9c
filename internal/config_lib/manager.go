package config_lib

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	sm "github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
)

const defaultVersionStage = "AWSCURRENT"

// Manager lee la configuración sensible (base de datos, S3, RabbitMQ) guardada en Secrets Manager.
type Manager struct {
	client  *sm.Client
	timeout time.Duration
}

func New(ctx context.Context, region string, optFns ...func(*config.LoadOptions) error) (*Manager, error) {
	loadOpts := []func(*config.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	loadOpts = append(loadOpts, optFns...)

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("cargar config AWS: %w", err)
	}
	return &Manager{client: sm.NewFromConfig(cfg), timeout: 5 * time.Second}, nil
}

func (m *Manager) GetSecretString(ctx context.Context, secretID string, versionStage string) (string, error) {
	if versionStage == "" {
		versionStage = defaultVersionStage
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	out, err := m.client.GetSecretValue(ctx, &sm.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionStage: aws.String(versionStage),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("secreto %s (%s): %s: %w", secretID, versionStage, apiErr.ErrorCode(), err)
		}
		return "", fmt.Errorf("secreto %s (%s): %w", secretID, versionStage, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secreto %s sin SecretString", secretID)
	}
	return *out.SecretString, nil
}
