package config

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr              string        `envconfig:"ADDR" default:":8080"`
	AWSRegion         string        `envconfig:"AWS_REGION" default:"us-east-1"`
	DynamoTable       string        `envconfig:"DYNAMO_TABLE" default:"rolegate"`
	DynamoEndpoint    string        `envconfig:"DYNAMODB_ENDPOINT"` // optional, e.g. http://localhost:8001 for DynamoDB Local
	DynamoCreateTable bool          `envconfig:"DYNAMO_CREATE_TABLE" default:"false"`
	RedisAddr         string        `envconfig:"REDIS_ADDR"` // optional; empty disables the assignment cache
	RedisPassword     string        `envconfig:"REDIS_PASSWORD" obfuscate:"true"`
	AssignmentTTL     time.Duration `envconfig:"ASSIGNMENT_CACHE_TTL" default:"5m"`
	JWTPublicKeyPath  string        `envconfig:"JWT_PUBLIC_KEY_PATH" required:"true"`
	RoleCatalogPath   string        `envconfig:"ROLE_CATALOG_PATH"` // optional YAML catalog; built-in tables otherwise
}

func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ObfuscateStr returns a masked version of s for safe logging (e.g. secrets).
func ObfuscateStr(s string) string {
	if len(s) <= 2 {
		return "**"
	}
	if len(s) < 8 {
		return s[:1] + "****" + s[len(s)-1:]
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// LogConfigVars logs each field of config that has an envconfig tag.
// Fields with struct tag obfuscate:"true" are masked via ObfuscateStr.
// config must be a struct or pointer to struct.
func LogConfigVars(logger *slog.Logger, config any) {
	v := reflect.ValueOf(config)
	t := reflect.TypeOf(config)

	if v.Kind() == reflect.Pointer {
		v = v.Elem()
		t = t.Elem()
	}

	if v.Kind() != reflect.Struct {
		logger.Error("config must be a struct")
		return
	}

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		envTag := field.Tag.Get("envconfig")
		if envTag == "" {
			continue
		}
		envKey := strings.Fields(envTag)[0]

		var valueStr string
		switch val := fieldValue.Interface().(type) {
		case time.Duration:
			valueStr = val.String()
		case string:
			valueStr = val
		case bool:
			valueStr = fmt.Sprintf("%t", val)
		default:
			valueStr = fmt.Sprintf("%v", val)
		}

		if field.Tag.Get("obfuscate") == "true" && valueStr != "" {
			valueStr = ObfuscateStr(valueStr)
		}

		logger.Info("config", "var", envKey, "value", valueStr)
	}
}
