// Package secrets resolves configuration values stored in AWS SSM Parameter
// Store. A value of the form "ssm:/path/to/param" is replaced by the
// decrypted parameter; every other value is returned unchanged.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Prefix marks a value as an SSM parameter reference.
const Prefix = "ssm:"

// ssmAPI is the part of *ssm.Client the resolver needs.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Resolver looks up parameter references, caching each name once.
type Resolver struct {
	api   ssmAPI
	cache map[string]string
}

// New wraps an SSM API implementation.
func New(api ssmAPI) (*Resolver, error) {
	if api == nil {
		return nil, errors.New("secrets: api must not be nil")
	}
	return &Resolver{api: api, cache: make(map[string]string)}, nil
}

// NewFromEnvironment builds a resolver from the default AWS credential chain.
func NewFromEnvironment(ctx context.Context) (*Resolver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load aws config: %w", err)
	}
	return New(ssm.NewFromConfig(cfg))
}

// IsReference reports whether v names an SSM parameter.
func IsReference(v string) bool {
	return strings.HasPrefix(strings.TrimSpace(v), Prefix)
}

// Resolve returns the parameter value for a reference, or v itself.
func (r *Resolver) Resolve(ctx context.Context, v string) (string, error) {
	if !IsReference(v) {
		return v, nil
	}
	name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v), Prefix))
	if name == "" {
		return "", errors.New("secrets: parameter name is required")
	}
	if cached, ok := r.cache[name]; ok {
		return cached, nil
	}

	out, err := r.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("secrets: get parameter %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("secrets: parameter %q has no value", name)
	}
	value := aws.ToString(out.Parameter.Value)
	r.cache[name] = value
	return value, nil
}

// ResolveAll resolves every field pointer in place.
func (r *Resolver) ResolveAll(ctx context.Context, fields ...*string) error {
	for _, f := range fields {
		if f == nil {
			continue
		}
		v, err := r.Resolve(ctx, *f)
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}
