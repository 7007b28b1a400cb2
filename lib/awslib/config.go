package awslib

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/artie-labs/bulksync/lib/config"
	"github.com/artie-labs/bulksync/lib/stringutil"
)

const sessionLabel = "bulksync"

// NewConfig builds the AWS config used to read input objects.
// Without explicit keys it falls back to the default credential chain. A role ARN is assumed on top of either.
func NewConfig(ctx context.Context, settings *config.AWS) (aws.Config, error) {
	if settings == nil {
		settings = &config.AWS{}
	}

	region := stringutil.Override(os.Getenv("AWS_REGION"), settings.Region)

	var cfg aws.Config
	if settings.AccessKeyID == "" || settings.SecretAccessKey == "" {
		loaded, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(region))
		if err != nil {
			return aws.Config{}, fmt.Errorf("failed to load default aws config: %w", err)
		}
		cfg = loaded
	} else {
		creds := credentials.NewStaticCredentialsProvider(settings.AccessKeyID, settings.SecretAccessKey, settings.SessionToken)
		cfg = NewConfigWithCredentialsAndRegion(creds, region)
	}

	if settings.RoleARN != "" {
		cfg.Credentials = NewAssumeRoleCredentials(sts.NewFromConfig(cfg), settings.RoleARN, sessionLabel)
	}

	return cfg, nil
}

func NewConfigWithCredentialsAndRegion(credentials credentials.StaticCredentialsProvider, region string) aws.Config {
	return aws.Config{
		Region:      region,
		Credentials: credentials,
	}
}
