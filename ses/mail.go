package ses

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/pkg/errors"

	"github.com/quantonganh/eventex"
)

const charset = "UTF-8"

type sendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type mailService struct {
	client sendEmailAPI
}

// NewMailService returns a mail service backed by AWS SES.
// Static credentials are used when configured, the default chain otherwise.
func NewMailService(ctx context.Context, config *eventex.Config) (eventex.MailService, error) {
	region := config.SES.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if config.SES.AccessKey != "" && config.SES.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.SES.AccessKey, config.SES.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS config")
	}

	return &mailService{
		client: sesv2.NewFromConfig(awsCfg),
	}, nil
}

// Send delivers the email through SES
func (ms *mailService) Send(ctx context.Context, email *eventex.Email) error {
	if len(email.To) == 0 {
		return errors.New("no recipients")
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(email.From),
		Destination:      &types.Destination{ToAddresses: email.To},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(email.Subject), Charset: aws.String(charset)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(email.Body), Charset: aws.String(charset)},
				},
			},
		},
	}

	if _, err := ms.client.SendEmail(ctx, input); err != nil {
		return errors.Wrapf(err, "failed to send mail to %v", email.To)
	}

	return nil
}
