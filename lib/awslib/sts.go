package awslib

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Role credentials are renewed this long before they expire.
const expirationBuffer = 10 * time.Minute

type stsAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

type assumeRoleProvider struct {
	client       stsAPI
	roleARN      string
	sessionLabel string
}

func (p assumeRoleProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	output, err := p.client.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(p.roleARN),
		RoleSessionName: aws.String(p.sessionLabel),
	})
	if err != nil {
		return aws.Credentials{}, fmt.Errorf("failed to assume role %q: %w", p.roleARN, err)
	}

	if output.Credentials == nil {
		return aws.Credentials{}, fmt.Errorf("assuming role %q returned no credentials", p.roleARN)
	}

	return aws.Credentials{
		AccessKeyID:     aws.ToString(output.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(output.Credentials.SecretAccessKey),
		SessionToken:    aws.ToString(output.Credentials.SessionToken),
		Source:          "AssumeRole",
		CanExpire:       true,
		Expires:         aws.ToTime(output.Credentials.Expiration),
	}, nil
}

// NewAssumeRoleCredentials returns a provider that assumes [roleARN] lazily and again whenever the credentials are about to expire.
func NewAssumeRoleCredentials(client stsAPI, roleARN, sessionLabel string) aws.CredentialsProvider {
	provider := assumeRoleProvider{client: client, roleARN: roleARN, sessionLabel: sessionLabel}
	return aws.NewCredentialsCache(provider, func(options *aws.CredentialsCacheOptions) {
		options.ExpiryWindow = expirationBuffer
	})
}
