package config

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jovas-007/Olap-practica-jovas/internal/config_lib"
)

// LoadSecretManager lee el secreto JSON de la aplicación desde AWS Secrets Manager.
func LoadSecretManager(ctx context.Context, region, secretID string, log *zap.Logger) (*SecretApp, error) {
	if secretID == "" {
		return nil, fmt.Errorf("APP_SECRET_ID no definido")
	}
	log.Info("leyendo secreto", zap.String("secret_id", secretID), zap.String("region", region))

	sm, err := config_lib.New(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("crear secrets manager: %w", err)
	}

	raw, err := sm.GetSecretString(ctx, secretID, "AWSCURRENT")
	if err != nil {
		return nil, fmt.Errorf("obtener secreto: %w", err)
	}

	var secret SecretApp
	if err := json.Unmarshal([]byte(raw), &secret); err != nil {
		return nil, fmt.Errorf("parsear secreto JSON: %w", err)
	}
	return &secret, nil
}
