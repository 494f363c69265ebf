package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
)

const (
	resourceNotFoundException = "ResourceNotFoundException"
	accessDeniedException     = "AccessDeniedException"
)

// ManagerAPI is the subset of the AWS Secrets Manager client used by the AWS store.
type ManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	DeleteSecret(ctx context.Context, params *secretsmanager.DeleteSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DeleteSecretOutput, error)
}

// AWS is a Store backed by AWS Secrets Manager. Secrets are named <prefix>/<service>/<key>.
type AWS struct {
	api     ManagerAPI
	prefix  string
	service string
}

// NewAWS creates an AWS Secrets Manager store using the default AWS credential chain.
func NewAWS(ctx context.Context, region, prefix, service string) (*AWS, error) {
	var options []func(*config.LoadOptions) error
	if region != "" {
		options = append(options, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config (%w)", err)
	}

	return NewAWSWithAPI(secretsmanager.NewFromConfig(cfg), prefix, service), nil
}

func NewAWSWithAPI(api ManagerAPI, prefix, service string) *AWS {
	return &AWS{
		api:     api,
		prefix:  strings.Trim(prefix, "/"),
		service: service,
	}
}

func (s *AWS) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validate(key); err != nil {
		return nil, err
	}

	name := s.name(key)
	output, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})

	if err != nil {
		if code(err) == resourceNotFoundException {
			return nil, nil
		}

		return nil, s.wrap(err, "GetSecretValue", name)
	}

	switch {
	case output.SecretString != nil:
		return []byte(*output.SecretString), nil

	case output.SecretBinary != nil:
		return output.SecretBinary, nil

	default:
		return nil, nil
	}
}

// Set updates the secret value, creating the secret if it does not exist yet.
func (s *AWS) Set(ctx context.Context, key string, value []byte) error {
	if err := validate(key); err != nil {
		return err
	}

	name := s.name(key)
	_, err := s.api.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(name),
		SecretString: aws.String(string(value)),
	})

	if err != nil && code(err) == resourceNotFoundException {
		_, err = s.api.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
			Name:         aws.String(name),
			SecretString: aws.String(string(value)),
		})

		if err != nil {
			return s.wrap(err, "CreateSecret", name)
		}

		return nil
	}

	if err != nil {
		return s.wrap(err, "PutSecretValue", name)
	}

	return nil
}

func (s *AWS) Delete(ctx context.Context, key string) error {
	if err := validate(key); err != nil {
		return err
	}

	name := s.name(key)
	_, err := s.api.DeleteSecret(ctx, &secretsmanager.DeleteSecretInput{
		SecretId:                   aws.String(name),
		ForceDeleteWithoutRecovery: aws.Bool(true),
	})

	if err != nil && code(err) != resourceNotFoundException {
		return s.wrap(err, "DeleteSecret", name)
	}

	return nil
}

func (s *AWS) name(key string) string {
	if s.prefix == "" {
		return fmt.Sprintf("%s/%s", s.service, key)
	}

	return fmt.Sprintf("%s/%s/%s", s.prefix, s.service, key)
}

func (s *AWS) wrap(err error, operation, name string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorCode() == accessDeniedException {
			return fmt.Errorf("%s %s: access denied", operation, name)
		}

		return fmt.Errorf("%s %s failed: %s: %s", operation, name, apiErr.ErrorCode(), apiErr.ErrorMessage())
	}

	return fmt.Errorf("%s %s failed (%w)", operation, name, err)
}

func code(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}

	return ""
}
